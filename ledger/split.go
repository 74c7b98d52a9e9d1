package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger"
	"github.com/splitledger/splitledger/errors"
)

var half = decimal.New(5, -1)

// roundToNearest returns floor(d + 1/2), rounding ties up. The rule is
// symmetric and deterministic; summing independently rounded shares still
// drifts from the true total, which the distribution corrects afterwards.
func roundToNearest(d decimal.Decimal) (uint64, error) {
	rounded := d.Add(half).Floor().BigInt()
	if !rounded.IsUint64() {
		return 0, errors.Wrapf(errors.ErrOverflow, "rounded share %s", rounded)
	}
	return rounded.Uint64(), nil
}

// share is one beneficiary's cut of a distributed delta.
type share struct {
	Address splitledger.Address
	Amount  uint64
}

// splitByWeights cuts the amount into one share per weight entry, each
// rounded to the nearest integer. The shares may not sum up to the exact
// amount; the caller owns the correction.
func splitByWeights(amount uint64, ws Weights) ([]share, error) {
	total := decimal.NewFromUint64(amount)
	shares := make([]share, 0, len(ws))
	for _, w := range ws {
		cut, err := roundToNearest(w.Weight.Mul(total))
		if err != nil {
			return nil, errors.Wrapf(err, "share of %s", w.Address)
		}
		shares = append(shares, share{Address: w.Address, Amount: cut})
	}
	return shares, nil
}
