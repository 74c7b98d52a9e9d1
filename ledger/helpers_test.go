package ledger

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger"
	"github.com/splitledger/splitledger/store"
)

func testAddr(t testing.TB, seed byte) splitledger.Address {
	t.Helper()
	addr, err := splitledger.NewAddress("split", bytes.Repeat([]byte{seed}, splitledger.AddressDataLength))
	require.NoError(t, err)
	return addr
}

func dec(t testing.TB, raw string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	return d
}

// ratio builds an exact fixed-point fraction, e.g. ratio(t, 1, 512).
func ratio(t testing.TB, num, den int64) decimal.Decimal {
	t.Helper()
	d := decimal.NewFromInt(num).Div(decimal.NewFromInt(den))
	// The division must be exact or weight sums will not hit 1.
	require.True(t, d.Mul(decimal.NewFromInt(den)).Equal(decimal.NewFromInt(num)))
	return d
}

func newState(t testing.TB) state {
	t.Helper()
	return state{db: store.MemStore()}
}

// testBank is an in-memory host bank used as the denomination querier.
// Holdings are keyed by owner only, the test ledgers manage one
// denomination anyway.
type testBank struct {
	holdings map[splitledger.Address]uint64
}

func newTestBank() *testBank {
	return &testBank{holdings: make(map[splitledger.Address]uint64)}
}

func (b *testBank) NativeBalance(owner splitledger.Address, _ string) (uint64, error) {
	return b.holdings[owner], nil
}

func (b *testBank) TokenBalance(_, owner splitledger.Address) (uint64, error) {
	return b.holdings[owner], nil
}

// deposit simulates an external inflow to the contract account.
func (b *testBank) deposit(owner splitledger.Address, amount uint64) {
	b.holdings[owner] += amount
}

// pay simulates host-side execution of a withdrawal instruction.
func (b *testBank) pay(owner splitledger.Address, amount uint64) {
	b.holdings[owner] -= amount
}
