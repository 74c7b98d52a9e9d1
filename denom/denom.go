// Package denom models the denomination managed by a ledger instance:
// either a native currency identified by its denomination code, or a
// fungible token identified by the token contract address.
//
// The package only reads balances and builds transfer instructions. Moving
// funds is the host's job.
package denom

import (
	"encoding/json"
	"regexp"

	"github.com/splitledger/splitledger"
	"github.com/splitledger/splitledger/errors"
)

// nativeDenomRx matches the denomination codes accepted for native
// currencies, e.g. "uatom".
var nativeDenomRx = regexp.MustCompile(`^[a-z][a-z0-9/]{2,127}$`)

// Denom is the managed denomination. Exactly one field is set.
type Denom struct {
	Native string              `json:"native,omitempty"`
	Token  splitledger.Address `json:"token,omitempty"`
}

// NewNative returns a native currency denomination.
func NewNative(code string) Denom {
	return Denom{Native: code}
}

// NewToken returns a token contract denomination.
func NewToken(contract splitledger.Address) Denom {
	return Denom{Token: contract}
}

// IsNative reports whether this is a native currency denomination.
func (d Denom) IsNative() bool {
	return d.Native != ""
}

// Validate returns an error unless exactly one variant is set and well
// formed.
func (d Denom) Validate() error {
	switch {
	case d.Native != "" && d.Token != "":
		return errors.Wrap(errors.ErrInput, "both native and token denomination set")
	case d.Native != "":
		if !nativeDenomRx.MatchString(d.Native) {
			return errors.Wrapf(errors.ErrInput, "invalid native denomination %q", d.Native)
		}
		return nil
	case d.Token != "":
		return errors.Wrap(d.Token.Validate(), "token contract")
	default:
		return errors.Wrap(errors.ErrInput, "no denomination set")
	}
}

func (d Denom) String() string {
	if d.IsNative() {
		return "native:" + d.Native
	}
	return "token:" + d.Token.String()
}

// Querier reads account holdings from the host. The ledger uses it to
// learn the contract's actual balance during reconciliation.
type Querier interface {
	// NativeBalance returns the owner's holdings of a native currency.
	NativeBalance(owner splitledger.Address, denom string) (uint64, error)

	// TokenBalance returns the owner's holdings recorded by a token
	// contract.
	TokenBalance(contract, owner splitledger.Address) (uint64, error)
}

// Balance returns the owner's holdings of this denomination.
func (d Denom) Balance(q Querier, owner splitledger.Address) (uint64, error) {
	if d.IsNative() {
		return q.NativeBalance(owner, d.Native)
	}
	return q.TokenBalance(d.Token, owner)
}

// Instruction is a single outbound transfer request for the host to
// execute. Exactly one field is set: Send for a native currency payout,
// Execute for a token contract call.
type Instruction struct {
	Send    *SendMsg    `json:"send,omitempty"`
	Execute *ExecuteMsg `json:"execute,omitempty"`
}

// SendMsg pays out a native currency amount.
type SendMsg struct {
	Recipient splitledger.Address `json:"recipient"`
	Denom     string              `json:"denom"`
	Amount    uint64              `json:"amount,string"`
}

// ExecuteMsg calls into a token contract with a raw message payload.
type ExecuteMsg struct {
	Contract splitledger.Address `json:"contract"`
	Msg      json.RawMessage     `json:"msg"`
}

// tokenTransfer is the transfer call understood by fungible token
// contracts.
type tokenTransfer struct {
	Transfer tokenTransferBody `json:"transfer"`
}

type tokenTransferBody struct {
	Recipient splitledger.Address `json:"recipient"`
	Amount    uint64              `json:"amount,string"`
}

// TransferInstruction builds the outbound transfer of the given amount to
// the recipient, in this denomination.
func (d Denom) TransferInstruction(recipient splitledger.Address, amount uint64) (Instruction, error) {
	if err := recipient.Validate(); err != nil {
		return Instruction{}, errors.Wrap(err, "recipient")
	}
	if d.IsNative() {
		return Instruction{
			Send: &SendMsg{
				Recipient: recipient,
				Denom:     d.Native,
				Amount:    amount,
			},
		}, nil
	}
	raw, err := json.Marshal(tokenTransfer{
		Transfer: tokenTransferBody{
			Recipient: recipient,
			Amount:    amount,
		},
	})
	if err != nil {
		return Instruction{}, errors.Wrap(errors.ErrInput, err.Error())
	}
	return Instruction{
		Execute: &ExecuteMsg{
			Contract: d.Token,
			Msg:      raw,
		},
	}, nil
}
