package ledger

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger"
	"github.com/splitledger/splitledger/denom"
	"github.com/splitledger/splitledger/errors"
	"github.com/splitledger/splitledger/store"
)

// Key spaces of a ledger instance. Singletons are stored under plain
// keys, per-beneficiary entries under a prefix followed by the bech32
// address, so that range scans iterate beneficiaries in ascending
// address order.
var (
	adminKey   = []byte("admin")
	selfKey    = []byte("self")
	denomKey   = []byte("denom")
	managedKey = []byte("managed")

	balancePrefix = []byte("balance:")
	claimedPrefix = []byte("claimed:")
	weightPrefix  = []byte("weight:")
)

// state gives typed access to the ledger's key spaces. All methods operate
// on the store they are given, which during an operation is the staging
// cache wrap, so a failed operation leaves no writes behind.
type state struct {
	db store.KVStore
}

func prefixedKey(prefix []byte, addr splitledger.Address) []byte {
	return append(append([]byte{}, prefix...), addr...)
}

// prefixRange returns the iteration bounds covering every key starting
// with the given prefix.
func prefixRange(prefix []byte) (start, end []byte) {
	start = prefix
	end = make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return start, end
		}
		end = end[:i]
	}
	return start, nil
}

// ------ admin

// Admin returns the authorized principal, or the empty sentinel when no
// admin is set.
func (s state) Admin() (splitledger.Address, error) {
	raw, err := s.db.Get(adminKey)
	if err != nil {
		return "", errors.Wrap(err, "load admin")
	}
	return splitledger.Address(raw), nil
}

// SetAdmin stores the authorized principal. The empty sentinel is allowed
// and encodes "no admin".
func (s state) SetAdmin(addr splitledger.Address) error {
	if addr != "" {
		if err := addr.Validate(); err != nil {
			return errors.Wrap(err, "admin")
		}
	}
	return errors.Wrap(s.db.Set(adminKey, []byte(addr)), "save admin")
}

// AssertAdmin fails with ErrUnauthorized unless the given address is the
// current admin. With no admin set, every caller is rejected.
func (s state) AssertAdmin(addr splitledger.Address) error {
	admin, err := s.Admin()
	if err != nil {
		return err
	}
	if admin == "" || addr != admin {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not the admin", addr)
	}
	return nil
}

// ------ self

// Self returns the address whose holdings this ledger manages.
func (s state) Self() (splitledger.Address, error) {
	raw, err := s.db.Get(selfKey)
	if err != nil {
		return "", errors.Wrap(err, "load self")
	}
	if raw == nil {
		return "", errors.Wrap(errors.ErrNotFound, "self address")
	}
	return splitledger.Address(raw), nil
}

func (s state) SetSelf(addr splitledger.Address) error {
	if err := addr.Validate(); err != nil {
		return errors.Wrap(err, "self")
	}
	return errors.Wrap(s.db.Set(selfKey, []byte(addr)), "save self")
}

// ------ managed denomination

func (s state) Denom() (denom.Denom, error) {
	raw, err := s.db.Get(denomKey)
	if err != nil {
		return denom.Denom{}, errors.Wrap(err, "load denomination")
	}
	if raw == nil {
		return denom.Denom{}, errors.Wrap(errors.ErrNotFound, "denomination")
	}
	var d denom.Denom
	if err := json.Unmarshal(raw, &d); err != nil {
		return denom.Denom{}, errors.Wrapf(errors.ErrDatabase, "malformed denomination: %s", err)
	}
	return d, nil
}

func (s state) SetDenom(d denom.Denom) error {
	if err := d.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return errors.Wrap(s.db.Set(denomKey, raw), "save denomination")
}

// ------ managed balance

// ManagedBalance returns the total funds currently allocated across
// beneficiary balances.
func (s state) ManagedBalance() (uint64, error) {
	raw, err := s.db.Get(managedKey)
	if err != nil {
		return 0, errors.Wrap(err, "load managed balance")
	}
	if raw == nil {
		return 0, errors.Wrap(errors.ErrNotFound, "managed balance")
	}
	return decodeAmount(raw)
}

func (s state) SetManagedBalance(amount uint64) error {
	return errors.Wrap(s.db.Set(managedKey, encodeAmount(amount)), "save managed balance")
}

// ReduceManagedBalance decrements the managed balance, failing with
// ErrUnderflow if the amount exceeds it.
func (s state) ReduceManagedBalance(amount uint64) error {
	managed, err := s.ManagedBalance()
	if err != nil {
		return err
	}
	managed, err = subAmount(managed, amount)
	if err != nil {
		return errors.Wrap(err, "managed balance")
	}
	return s.SetManagedBalance(managed)
}

// ------ beneficiary balances

// Balance returns the claimable balance of a beneficiary, failing with
// ErrNotFound when no entry exists.
func (s state) Balance(addr splitledger.Address) (uint64, error) {
	raw, err := s.db.Get(prefixedKey(balancePrefix, addr))
	if err != nil {
		return 0, errors.Wrap(err, "load balance")
	}
	if raw == nil {
		return 0, errors.Wrapf(errors.ErrNotFound, "no balance for %s", addr)
	}
	return decodeAmount(raw)
}

// AddBalance credits a beneficiary, creating the entry if absent. Fails
// with ErrOverflow if the credit exceeds the amount range.
func (s state) AddBalance(addr splitledger.Address, amount uint64) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	key := prefixedKey(balancePrefix, addr)
	balance := uint64(0)
	if raw, err := s.db.Get(key); err != nil {
		return errors.Wrap(err, "load balance")
	} else if raw != nil {
		if balance, err = decodeAmount(raw); err != nil {
			return err
		}
	}
	balance, err := addAmount(balance, amount)
	if err != nil {
		return errors.Wrapf(err, "balance of %s", addr)
	}
	return errors.Wrap(s.db.Set(key, encodeAmount(balance)), "save balance")
}

// ReduceBalance debits a beneficiary. Fails with ErrNotFound when no
// entry exists and with ErrUnderflow when the debit exceeds the balance.
func (s state) ReduceBalance(addr splitledger.Address, amount uint64) error {
	balance, err := s.Balance(addr)
	if err != nil {
		return err
	}
	balance, err = subAmount(balance, amount)
	if err != nil {
		return errors.Wrapf(err, "balance of %s", addr)
	}
	return errors.Wrap(s.db.Set(prefixedKey(balancePrefix, addr), encodeAmount(balance)), "save balance")
}

// SumBalances returns the exact total over all beneficiary balances.
func (s state) SumBalances() (uint64, error) {
	var sum uint64
	err := s.forEachAmount(balancePrefix, func(_ splitledger.Address, amount uint64) error {
		var err error
		sum, err = addAmount(sum, amount)
		return errors.Wrap(err, "balance total")
	})
	return sum, err
}

// MaxBalanceAccount returns the beneficiary with the strictly largest
// balance. Ties are broken deterministically: scanning in descending
// address order and keeping only strictly greater balances means among
// equal maxima the lexicographically greatest address wins. With no
// positive balance the empty sentinel is returned.
func (s state) MaxBalanceAccount() (splitledger.Address, error) {
	it, err := s.db.ReverseIterator(prefixRange(balancePrefix))
	if err != nil {
		return "", errors.Wrap(err, "iterate balances")
	}
	defer it.Close()

	var (
		maxAddr    splitledger.Address
		maxBalance uint64
	)
	for it.Valid() {
		balance, err := decodeAmount(it.Value())
		if err != nil {
			return "", err
		}
		if balance > maxBalance {
			maxBalance = balance
			maxAddr = splitledger.Address(it.Key()[len(balancePrefix):])
		}
		if err := it.Next(); err != nil {
			return "", errors.Wrap(err, "iterate balances")
		}
	}
	return maxAddr, nil
}

// Balances returns every beneficiary balance in ascending address order.
func (s state) Balances() ([]BalanceEntry, error) {
	var entries []BalanceEntry
	err := s.forEachAmount(balancePrefix, func(addr splitledger.Address, amount uint64) error {
		entries = append(entries, BalanceEntry{Address: addr, Amount: amount})
		return nil
	})
	return entries, err
}

// ------ claimed totals

// Claimed returns the cumulative amount ever withdrawn by a beneficiary,
// failing with ErrNotFound when nothing was withdrawn yet.
func (s state) Claimed(addr splitledger.Address) (uint64, error) {
	raw, err := s.db.Get(prefixedKey(claimedPrefix, addr))
	if err != nil {
		return 0, errors.Wrap(err, "load claimed")
	}
	if raw == nil {
		return 0, errors.Wrapf(errors.ErrNotFound, "nothing claimed by %s", addr)
	}
	return decodeAmount(raw)
}

// AddClaimed grows a beneficiary's cumulative claimed amount. The value
// only ever grows.
func (s state) AddClaimed(addr splitledger.Address, amount uint64) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	key := prefixedKey(claimedPrefix, addr)
	claimed := uint64(0)
	if raw, err := s.db.Get(key); err != nil {
		return errors.Wrap(err, "load claimed")
	} else if raw != nil {
		if claimed, err = decodeAmount(raw); err != nil {
			return err
		}
	}
	claimed, err := addAmount(claimed, amount)
	if err != nil {
		return errors.Wrapf(err, "claimed by %s", addr)
	}
	return errors.Wrap(s.db.Set(key, encodeAmount(claimed)), "save claimed")
}

// TotalClaimed returns the exact total ever withdrawn by all
// beneficiaries.
func (s state) TotalClaimed() (uint64, error) {
	var sum uint64
	err := s.forEachAmount(claimedPrefix, func(_ splitledger.Address, amount uint64) error {
		var err error
		sum, err = addAmount(sum, amount)
		return errors.Wrap(err, "claimed total")
	})
	return sum, err
}

// ------ weights

// SetWeights atomically replaces the weight table. The previous table is
// cleared first so stale beneficiaries cannot survive a replacement.
func (s state) SetWeights(ws Weights) error {
	if err := ws.Validate(); err != nil {
		return err
	}

	it, err := s.db.Iterator(prefixRange(weightPrefix))
	if err != nil {
		return errors.Wrap(err, "iterate weights")
	}
	var stale [][]byte
	for it.Valid() {
		stale = append(stale, append([]byte{}, it.Key()...))
		if err := it.Next(); err != nil {
			it.Close()
			return errors.Wrap(err, "iterate weights")
		}
	}
	it.Close()
	for _, key := range stale {
		if err := s.db.Delete(key); err != nil {
			return errors.Wrap(err, "clear weights")
		}
	}

	for _, w := range ws {
		key := prefixedKey(weightPrefix, w.Address)
		if err := s.db.Set(key, []byte(w.Weight.String())); err != nil {
			return errors.Wrap(err, "save weight")
		}
	}
	return nil
}

// Weights returns the weight table in ascending address order.
func (s state) Weights() (Weights, error) {
	it, err := s.db.Iterator(prefixRange(weightPrefix))
	if err != nil {
		return nil, errors.Wrap(err, "iterate weights")
	}
	defer it.Close()

	var ws Weights
	for it.Valid() {
		weight, err := decimal.NewFromString(string(it.Value()))
		if err != nil {
			return nil, errors.Wrapf(errors.ErrDatabase, "malformed weight %q", it.Value())
		}
		ws = append(ws, WeightEntry{
			Address: splitledger.Address(it.Key()[len(weightPrefix):]),
			Weight:  weight,
		})
		if err := it.Next(); err != nil {
			return nil, errors.Wrap(err, "iterate weights")
		}
	}
	return ws, nil
}

// forEachAmount scans an amount key space in ascending address order.
func (s state) forEachAmount(prefix []byte, fn func(splitledger.Address, uint64) error) error {
	it, err := s.db.Iterator(prefixRange(prefix))
	if err != nil {
		return errors.Wrap(err, "iterate")
	}
	defer it.Close()

	for it.Valid() {
		amount, err := decodeAmount(it.Value())
		if err != nil {
			return err
		}
		addr := splitledger.Address(it.Key()[len(prefix):])
		if err := fn(addr, amount); err != nil {
			return err
		}
		if err := it.Next(); err != nil {
			return errors.Wrap(err, "iterate")
		}
	}
	return nil
}
