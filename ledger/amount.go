package ledger

import (
	"math"
	"strconv"

	"github.com/splitledger/splitledger/errors"
)

// addAmount returns a+b, failing with ErrOverflow instead of wrapping.
// Amounts are never silently saturated, that would corrupt the ledger
// invariant.
func addAmount(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", a, b)
	}
	return a + b, nil
}

// subAmount returns a-b, failing with ErrUnderflow instead of wrapping.
func subAmount(a, b uint64) (uint64, error) {
	if b > a {
		return 0, errors.Wrapf(errors.ErrUnderflow, "%d - %d", a, b)
	}
	return a - b, nil
}

func encodeAmount(a uint64) []byte {
	return strconv.AppendUint(nil, a, 10)
}

func decodeAmount(raw []byte) (uint64, error) {
	a, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrDatabase, "malformed amount %q", raw)
	}
	return a, nil
}
