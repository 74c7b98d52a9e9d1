package ledger

import (
	"github.com/splitledger/splitledger"
	"github.com/splitledger/splitledger/denom"
)

// PendingClaims is the full claimable state of the ledger: every
// beneficiary balance in ascending address order plus their exact total.
type PendingClaims struct {
	Claims []BalanceEntry `json:"claims"`
	Total  uint64         `json:"total,string"`
}

// DenomInfo describes the managed denomination together with the amount
// currently under management.
type DenomInfo struct {
	Denom  denom.Denom `json:"denom"`
	Amount uint64      `json:"amount,string"`
}

// Admin returns the current admin, or the empty sentinel when no admin is
// set.
func (c *Contract) Admin() (splitledger.Address, error) {
	return state{db: c.db}.Admin()
}

// SelfAddress returns the account whose holdings the ledger manages.
func (c *Contract) SelfAddress() (splitledger.Address, error) {
	return state{db: c.db}.Self()
}

// PendingClaim returns the claimable balance of one beneficiary.
func (c *Contract) PendingClaim(addr splitledger.Address) (uint64, error) {
	return state{db: c.db}.Balance(addr)
}

// AllPendingClaims returns all claimable balances and their total.
func (c *Contract) AllPendingClaims() (PendingClaims, error) {
	s := state{db: c.db}
	claims, err := s.Balances()
	if err != nil {
		return PendingClaims{}, err
	}
	total, err := s.SumBalances()
	if err != nil {
		return PendingClaims{}, err
	}
	return PendingClaims{Claims: claims, Total: total}, nil
}

// ClaimedTotal returns the cumulative amount ever withdrawn by one
// beneficiary.
func (c *Contract) ClaimedTotal(addr splitledger.Address) (uint64, error) {
	return state{db: c.db}.Claimed(addr)
}

// TotalClaimedAllTime returns the cumulative amount ever withdrawn by all
// beneficiaries.
func (c *Contract) TotalClaimedAllTime() (uint64, error) {
	return state{db: c.db}.TotalClaimed()
}

// DenominationInfo returns the managed denomination and managed balance.
func (c *Contract) DenominationInfo() (DenomInfo, error) {
	s := state{db: c.db}
	d, err := s.Denom()
	if err != nil {
		return DenomInfo{}, err
	}
	managed, err := s.ManagedBalance()
	if err != nil {
		return DenomInfo{}, err
	}
	return DenomInfo{Denom: d, Amount: managed}, nil
}

// Weights returns the weight table in ascending address order.
func (c *Contract) Weights() (Weights, error) {
	return state{db: c.db}.Weights()
}
