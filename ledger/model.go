package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger"
	"github.com/splitledger/splitledger/errors"
)

// maxBeneficiaries caps the weight table size. A high number that should
// not be an issue in real life scenarios, but a sane limit avoids
// unbounded iteration.
const maxBeneficiaries = 200

var one = decimal.NewFromInt(1)

// WeightEntry assigns a beneficiary its proportional share of every
// distributed delta. The weight is a fixed-point fraction in [0,1].
type WeightEntry struct {
	Address splitledger.Address `json:"address"`
	Weight  decimal.Decimal     `json:"weight"`
}

// Weights is a complete weight table. A valid table has unique, valid
// beneficiary addresses and weights summing to exactly one.
type Weights []WeightEntry

// Validate returns an error if this table must not be persisted.
func (ws Weights) Validate() error {
	switch n := len(ws); {
	case n == 0:
		return errors.Wrap(errors.ErrWeights, "no beneficiaries")
	case n > maxBeneficiaries:
		return errors.Wrapf(errors.ErrWeights, "more than %d beneficiaries", maxBeneficiaries)
	}

	seen := make(map[splitledger.Address]struct{}, len(ws))
	sum := decimal.Zero
	for i, w := range ws {
		if err := w.Address.Validate(); err != nil {
			return errors.Wrapf(err, "beneficiary %d", i)
		}
		if _, ok := seen[w.Address]; ok {
			return errors.Wrapf(errors.ErrWeights, "beneficiary %q is not unique", w.Address)
		}
		seen[w.Address] = struct{}{}

		if w.Weight.IsNegative() {
			return errors.Wrapf(errors.ErrWeights, "beneficiary %d has a negative weight", i)
		}
		sum = sum.Add(w.Weight)
	}
	if !sum.Equal(one) {
		return errors.Wrapf(errors.ErrWeights, "weights sum up to %s, not 1", sum)
	}
	return nil
}

// BalanceEntry is a single beneficiary's claimable balance.
type BalanceEntry struct {
	Address splitledger.Address `json:"address"`
	Amount  uint64              `json:"amount,string"`
}
