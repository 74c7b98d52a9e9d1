package main

import (
	"encoding/json"
	"strconv"

	"github.com/splitledger/splitledger"
	"github.com/splitledger/splitledger/denom"
	"github.com/splitledger/splitledger/errors"
	"github.com/splitledger/splitledger/store"
)

// bankPrefix keeps the simulated host holdings apart from the ledger
// state in the shared database.
var bankPrefix = []byte("bank:")

// hostBank simulates the host side of the ledger: per-account holdings
// that the contract queries during reconciliation, and the executor of
// the transfer instructions a withdrawal emits. Holdings are tracked per
// owner only, one deployment manages one denomination.
type hostBank struct {
	db store.KVStore
}

var _ denom.Querier = hostBank{}

func bankKey(owner splitledger.Address) []byte {
	return append(append([]byte{}, bankPrefix...), owner...)
}

func (b hostBank) balance(owner splitledger.Address) (uint64, error) {
	raw, err := b.db.Get(bankKey(owner))
	if err != nil {
		return 0, errors.Wrap(err, "load holdings")
	}
	if raw == nil {
		return 0, nil
	}
	amount, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrDatabase, "malformed holdings %q", raw)
	}
	return amount, nil
}

func (b hostBank) setBalance(owner splitledger.Address, amount uint64) error {
	raw := strconv.AppendUint(nil, amount, 10)
	return errors.Wrap(b.db.Set(bankKey(owner), raw), "save holdings")
}

func (b hostBank) NativeBalance(owner splitledger.Address, _ string) (uint64, error) {
	return b.balance(owner)
}

func (b hostBank) TokenBalance(_, owner splitledger.Address) (uint64, error) {
	return b.balance(owner)
}

// credit simulates an external inflow to an account.
func (b hostBank) credit(owner splitledger.Address, amount uint64) error {
	balance, err := b.balance(owner)
	if err != nil {
		return err
	}
	if balance > ^uint64(0)-amount {
		return errors.Wrapf(errors.ErrOverflow, "holdings of %s", owner)
	}
	return b.setBalance(owner, balance+amount)
}

func (b hostBank) transfer(from, to splitledger.Address, amount uint64) error {
	balance, err := b.balance(from)
	if err != nil {
		return err
	}
	if amount > balance {
		return errors.Wrapf(errors.ErrUnderflow, "holdings of %s", from)
	}
	if err := b.setBalance(from, balance-amount); err != nil {
		return err
	}
	return b.credit(to, amount)
}

// tokenTransfer mirrors the transfer call a token denomination
// instruction carries.
type tokenTransfer struct {
	Transfer struct {
		Recipient splitledger.Address `json:"recipient"`
		Amount    uint64              `json:"amount,string"`
	} `json:"transfer"`
}

// execute applies a withdrawal instruction to the simulated holdings,
// moving the funds out of the contract account.
func (b hostBank) execute(from splitledger.Address, ins denom.Instruction) error {
	switch {
	case ins.Send != nil:
		return b.transfer(from, ins.Send.Recipient, ins.Send.Amount)
	case ins.Execute != nil:
		var call tokenTransfer
		if err := json.Unmarshal(ins.Execute.Msg, &call); err != nil {
			return errors.Wrapf(errors.ErrInput, "token transfer payload: %s", err)
		}
		return b.transfer(from, call.Transfer.Recipient, call.Transfer.Amount)
	default:
		return errors.Wrap(errors.ErrInput, "empty instruction")
	}
}
