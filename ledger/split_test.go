package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger/errors"
)

func TestRoundToNearest(t *testing.T) {
	cases := map[string]struct {
		value string
		want  uint64
	}{
		"zero":             {"0", 0},
		"integral":         {"42", 42},
		"below half":       {"1.49", 1},
		"half rounds up":   {"0.5", 1},
		"above half":       {"2.51", 3},
		"large tie":        {"867187.5", 867188},
		"large below half": {"443132812.4", 443132812},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := roundToNearest(dec(t, tc.value))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRoundToNearestOverflow(t *testing.T) {
	tooBig := decimal.NewFromUint64(1 << 63).Mul(decimal.NewFromInt(4))
	_, err := roundToNearest(tooBig)
	assert.True(t, errors.ErrOverflow.Is(err), "unexpected error: %v", err)
}

func TestSplitByWeightsExact(t *testing.T) {
	ws := Weights{
		{Address: testAddr(t, 1), Weight: dec(t, "0.1")},
		{Address: testAddr(t, 2), Weight: dec(t, "0.2")},
		{Address: testAddr(t, 3), Weight: dec(t, "0.3")},
		{Address: testAddr(t, 4), Weight: dec(t, "0.4")},
	}
	shares, err := splitByWeights(444_000_000, ws)
	require.NoError(t, err)
	require.Len(t, shares, 4)
	assert.Equal(t, uint64(44_400_000), shares[0].Amount)
	assert.Equal(t, uint64(88_800_000), shares[1].Amount)
	assert.Equal(t, uint64(133_200_000), shares[2].Amount)
	assert.Equal(t, uint64(177_600_000), shares[3].Amount)
}

func TestSplitByWeightsRoundsEachShare(t *testing.T) {
	ws := Weights{
		{Address: testAddr(t, 1), Weight: ratio(t, 1, 512)},
		{Address: testAddr(t, 2), Weight: ratio(t, 511, 512)},
	}
	// 444000000/512 = 867187.5 and 444000000*511/512 = 443132812.5, so
	// both shares round up and oversubscribe the total by one.
	shares, err := splitByWeights(444_000_000, ws)
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.Equal(t, uint64(867_188), shares[0].Amount)
	assert.Equal(t, uint64(443_132_813), shares[1].Amount)
}

func TestSplitByWeightsZeroDelta(t *testing.T) {
	ws := Weights{
		{Address: testAddr(t, 1), Weight: dec(t, "0.5")},
		{Address: testAddr(t, 2), Weight: dec(t, "0.5")},
	}
	shares, err := splitByWeights(0, ws)
	require.NoError(t, err)
	require.Len(t, shares, 2)
	for _, sh := range shares {
		assert.Equal(t, uint64(0), sh.Amount)
	}
}
