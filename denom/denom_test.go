package denom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger"
	"github.com/splitledger/splitledger/errors"
)

func testAddr(t *testing.T, seed byte) splitledger.Address {
	t.Helper()
	addr, err := splitledger.NewAddress("split", bytes.Repeat([]byte{seed}, splitledger.AddressDataLength))
	require.NoError(t, err)
	return addr
}

// memBank is a Querier with fixed holdings.
type memBank struct {
	native map[string]uint64
	tokens map[splitledger.Address]uint64
}

func (b *memBank) NativeBalance(owner splitledger.Address, denom string) (uint64, error) {
	return b.native[denom], nil
}

func (b *memBank) TokenBalance(contract, owner splitledger.Address) (uint64, error) {
	return b.tokens[contract], nil
}

func TestDenomValidate(t *testing.T) {
	token := testAddr(t, 1)

	cases := map[string]struct {
		denom   Denom
		wantErr *errors.Error
	}{
		"native":            {denom: NewNative("uusd")},
		"token":             {denom: NewToken(token)},
		"empty":             {denom: Denom{}, wantErr: errors.ErrInput},
		"both set":          {denom: Denom{Native: "uusd", Token: token}, wantErr: errors.ErrInput},
		"bad native code":   {denom: NewNative("X"), wantErr: errors.ErrInput},
		"bad token address": {denom: NewToken("nope"), wantErr: errors.ErrAddress},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.denom.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %v", err)
			}
		})
	}
}

func TestBalanceDispatch(t *testing.T) {
	owner := testAddr(t, 1)
	token := testAddr(t, 2)
	bank := &memBank{
		native: map[string]uint64{"uusd": 444_000_000},
		tokens: map[splitledger.Address]uint64{token: 21},
	}

	amount, err := NewNative("uusd").Balance(bank, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(444_000_000), amount)

	amount, err = NewToken(token).Balance(bank, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(21), amount)
}

func TestTransferInstructionNative(t *testing.T) {
	recipient := testAddr(t, 3)

	ins, err := NewNative("uusd").TransferInstruction(recipient, 44_400_000)
	require.NoError(t, err)
	require.NotNil(t, ins.Send)
	assert.Nil(t, ins.Execute)
	assert.Equal(t, recipient, ins.Send.Recipient)
	assert.Equal(t, "uusd", ins.Send.Denom)
	assert.Equal(t, uint64(44_400_000), ins.Send.Amount)
}

func TestTransferInstructionToken(t *testing.T) {
	recipient := testAddr(t, 3)
	token := testAddr(t, 4)

	ins, err := NewToken(token).TransferInstruction(recipient, 7)
	require.NoError(t, err)
	require.NotNil(t, ins.Execute)
	assert.Nil(t, ins.Send)
	assert.Equal(t, token, ins.Execute.Contract)
	want := `{"transfer":{"recipient":"` + recipient.String() + `","amount":"7"}}`
	assert.JSONEq(t, want, string(ins.Execute.Msg))
}

func TestTransferInstructionRejectsBadRecipient(t *testing.T) {
	_, err := NewNative("uusd").TransferInstruction("", 1)
	assert.True(t, errors.ErrAddress.Is(err))
}
