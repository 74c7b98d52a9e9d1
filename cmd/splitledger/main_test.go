package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger"
	"github.com/splitledger/splitledger/denom"
	"github.com/splitledger/splitledger/errors"
	"github.com/splitledger/splitledger/store"
)

func testAddr(t *testing.T, seed byte) splitledger.Address {
	t.Helper()
	addr, err := splitledger.NewAddress("split", bytes.Repeat([]byte{seed}, splitledger.AddressDataLength))
	require.NoError(t, err)
	return addr
}

func TestParseWeights(t *testing.T) {
	a, b := testAddr(t, 1), testAddr(t, 2)

	ws, err := parseWeights(a.String() + "=0.6, " + b.String() + "=0.4")
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, a, ws[0].Address)
	assert.Equal(t, "0.6", ws[0].Weight.String())
	assert.Equal(t, b, ws[1].Address)
	assert.Equal(t, "0.4", ws[1].Weight.String())

	_, err = parseWeights("nonsense")
	assert.True(t, errors.ErrInput.Is(err), "unexpected error: %v", err)

	_, err = parseWeights("garbage=0.5")
	assert.True(t, errors.ErrAddress.Is(err), "unexpected error: %v", err)

	_, err = parseWeights(a.String() + "=lots")
	assert.True(t, errors.ErrInput.Is(err), "unexpected error: %v", err)
}

func TestHostBankTransfers(t *testing.T) {
	bank := hostBank{db: store.MemStore()}
	from, to := testAddr(t, 1), testAddr(t, 2)

	require.NoError(t, bank.credit(from, 100))
	require.NoError(t, bank.transfer(from, to, 40))

	balance, err := bank.balance(from)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), balance)
	balance, err = bank.balance(to)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), balance)

	err = bank.transfer(from, to, 100)
	assert.True(t, errors.ErrUnderflow.Is(err), "unexpected error: %v", err)
}

func TestHostBankExecutesInstructions(t *testing.T) {
	bank := hostBank{db: store.MemStore()}
	self, payee := testAddr(t, 1), testAddr(t, 2)
	require.NoError(t, bank.credit(self, 100))

	ins, err := denom.NewNative("usplit").TransferInstruction(payee, 30)
	require.NoError(t, err)
	require.NoError(t, bank.execute(self, ins))

	ins, err = denom.NewToken(testAddr(t, 3)).TransferInstruction(payee, 20)
	require.NoError(t, err)
	require.NoError(t, bank.execute(self, ins))

	balance, err := bank.balance(payee)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), balance)

	err = bank.execute(self, denom.Instruction{})
	assert.True(t, errors.ErrInput.Is(err), "unexpected error: %v", err)
}
