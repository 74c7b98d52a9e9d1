// Package ledger implements the split ledger contract: an accounting
// ledger distributing an inflowing pool of funds across a fixed set of
// beneficiaries by pre-registered proportional weights.
//
// The core invariant is exact conservation: after every successful
// distribution the sum of all claimable balances equals the managed
// balance equals the actual holdings, no matter how unevenly the arrived
// delta divides among the weights.
package ledger

import (
	"github.com/rs/zerolog"

	"github.com/splitledger/splitledger"
	"github.com/splitledger/splitledger/denom"
	"github.com/splitledger/splitledger/errors"
	"github.com/splitledger/splitledger/store"
)

// Contract is one ledger instance bound to its store and the host's
// balance querier. Operations are expected to be invoked serially; every
// operation stages its writes on a cache wrap and commits them only on
// full success, so a failed operation never leaves a half-updated ledger
// behind.
type Contract struct {
	db   store.CacheableKVStore
	bank denom.Querier
	log  zerolog.Logger
}

// Option configures a Contract.
type Option func(*Contract)

// WithLogger attaches a structured logger to the contract. Without it all
// operation logging is discarded.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Contract) {
		c.log = log
	}
}

// NewContract returns a contract operating on the given store, asking the
// bank for actual holdings during reconciliation.
func NewContract(db store.CacheableKVStore, bank denom.Querier, opts ...Option) *Contract {
	c := &Contract{
		db:   db,
		bank: bank,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// run executes fn against a staging wrap of the store and commits the
// staged writes only if fn succeeds. Any failure, including a panic,
// discards all writes of the operation.
func (c *Contract) run(fn func(s state) error) (err error) {
	cache := c.db.CacheWrap()
	defer func() {
		if err != nil {
			cache.Discard()
		}
	}()
	defer errors.Recover(&err)

	if err = fn(state{db: cache}); err != nil {
		return err
	}
	return errors.Wrap(cache.Write(), "commit")
}

// InstantiateParams is the complete configuration of a new ledger
// instance.
type InstantiateParams struct {
	// Self is the address whose holdings the ledger manages.
	Self splitledger.Address `json:"self"`
	// Denom is the managed denomination, fixed for the contract
	// lifetime.
	Denom denom.Denom `json:"denom"`
	// Weights is the initial weight table.
	Weights Weights `json:"weights"`
	// Admin is the principal allowed to distribute and re-administer.
	// When empty the instantiating sender becomes the admin.
	Admin splitledger.Address `json:"admin,omitempty"`
}

// Validate returns an error unless the parameters describe a ledger that
// may be created.
func (p InstantiateParams) Validate() error {
	if err := p.Self.Validate(); err != nil {
		return errors.Wrap(err, "self")
	}
	if err := p.Denom.Validate(); err != nil {
		return errors.Wrap(err, "denomination")
	}
	if err := p.Weights.Validate(); err != nil {
		return err
	}
	if p.Admin != "" {
		if err := p.Admin.Validate(); err != nil {
			return errors.Wrap(err, "admin")
		}
	}
	return nil
}

// Instantiate creates the ledger state: the managed denomination and
// weight table are recorded, the managed balance is born at zero and the
// admin defaults to the sender when none is given.
func (c *Contract) Instantiate(sender splitledger.Address, params InstantiateParams) error {
	return c.run(func(s state) error {
		if err := params.Validate(); err != nil {
			return err
		}
		if err := s.SetSelf(params.Self); err != nil {
			return err
		}
		if err := s.SetDenom(params.Denom); err != nil {
			return err
		}
		if err := s.SetManagedBalance(0); err != nil {
			return err
		}
		if err := s.SetWeights(params.Weights); err != nil {
			return err
		}
		admin := params.Admin
		if admin == "" {
			admin = sender
		}
		if err := s.SetAdmin(admin); err != nil {
			return err
		}
		c.log.Info().
			Stringer("denom", params.Denom).
			Int("beneficiaries", len(params.Weights)).
			Str("admin", admin.String()).
			Msg("ledger instantiated")
		return nil
	})
}

// SetAdmin hands the admin role over to another principal. Admin only.
func (c *Contract) SetAdmin(sender, newAdmin splitledger.Address) error {
	return c.run(func(s state) error {
		if err := s.AssertAdmin(sender); err != nil {
			return err
		}
		if err := newAdmin.Validate(); err != nil {
			return errors.Wrap(err, "new admin")
		}
		return s.SetAdmin(newAdmin)
	})
}

// Distribute reconciles the ledger against the actual holdings and
// allocates the newly arrived delta across beneficiaries by weight. Admin
// only.
//
// The managed balance is reset to the actual holdings first, then every
// beneficiary is credited its rounded share of the delta, and finally the
// rounding drift is corrected against the beneficiary holding the largest
// balance, so the same absolute correction distorts the outcome as little
// as possible. Postcondition of every successful call: the sum of all
// claimable balances equals the managed balance equals the actual
// holdings.
func (c *Contract) Distribute(sender splitledger.Address) error {
	return c.run(func(s state) error {
		if err := s.AssertAdmin(sender); err != nil {
			return err
		}

		self, err := s.Self()
		if err != nil {
			return err
		}
		d, err := s.Denom()
		if err != nil {
			return err
		}
		actual, err := d.Balance(c.bank, self)
		if err != nil {
			return errors.Wrap(err, "query actual holdings")
		}
		managed, err := s.ManagedBalance()
		if err != nil {
			return err
		}
		// Funds leaving the contract outside of withdrawals cannot be
		// accounted for. This is not a user error.
		if managed > actual {
			return errors.Wrapf(errors.ErrInconsistency,
				"managed balance %d exceeds actual holdings %d", managed, actual)
		}
		delta := actual - managed

		if err := s.SetManagedBalance(actual); err != nil {
			return err
		}

		ws, err := s.Weights()
		if err != nil {
			return err
		}
		shares, err := splitByWeights(delta, ws)
		if err != nil {
			return err
		}
		for _, sh := range shares {
			if err := s.AddBalance(sh.Address, sh.Amount); err != nil {
				return err
			}
		}

		// Independently rounded shares drift from the exact delta by a
		// bounded amount. Settle the difference against the largest
		// balance.
		sum, err := s.SumBalances()
		if err != nil {
			return err
		}
		if sum != actual {
			carrier, err := s.MaxBalanceAccount()
			if err != nil {
				return err
			}
			if carrier == "" {
				return errors.Wrap(errors.ErrInconsistency, "no balance to carry the rounding correction")
			}
			if sum > actual {
				if err := s.ReduceBalance(carrier, sum-actual); err != nil {
					return err
				}
			} else {
				if err := s.AddBalance(carrier, actual-sum); err != nil {
					return err
				}
			}
			c.log.Debug().
				Str("carrier", carrier.String()).
				Uint64("allocated", sum).
				Uint64("actual", actual).
				Msg("rounding correction applied")
		}

		c.log.Info().
			Uint64("delta", delta).
			Uint64("managed", actual).
			Msg("delta distributed")
		return nil
	})
}

// Withdraw settles the sender's entire claimable balance: the ledger is
// debited, the claimed total credited, and a single transfer instruction
// for the amount is returned for the host to execute. Execution of the
// actual fund movement is the host's responsibility.
func (c *Contract) Withdraw(sender splitledger.Address) (denom.Instruction, error) {
	var ins denom.Instruction
	err := c.run(func(s state) error {
		amount, err := s.Balance(sender)
		if err != nil {
			return err
		}
		if amount == 0 {
			return errors.Wrapf(errors.ErrNothingToClaim, "balance of %s", sender)
		}
		// An underflow here means the ledger invariant is broken.
		if err := s.ReduceManagedBalance(amount); err != nil {
			return errors.Wrap(err, "ledger inconsistency")
		}
		if err := s.ReduceBalance(sender, amount); err != nil {
			return err
		}
		if err := s.AddClaimed(sender, amount); err != nil {
			return err
		}
		d, err := s.Denom()
		if err != nil {
			return err
		}
		if ins, err = d.TransferInstruction(sender, amount); err != nil {
			return err
		}
		c.log.Info().
			Str("beneficiary", sender.String()).
			Uint64("amount", amount).
			Msg("withdrawal")
		return nil
	})
	if err != nil {
		return denom.Instruction{}, err
	}
	return ins, nil
}

// Migrate replaces the weight table. A replacement is only permitted
// while the ledger is provably untouched: nothing was ever claimed and no
// managed balance is outstanding. The two refusal reasons are distinct
// errors because they require different operator remediation. A nil
// weight table is a no-op.
func (c *Contract) Migrate(newWeights Weights) error {
	if newWeights == nil {
		return nil
	}
	return c.run(func(s state) error {
		claimed, err := s.TotalClaimed()
		if err != nil {
			return err
		}
		if claimed != 0 {
			return errors.Wrapf(errors.ErrClaimsExecuted, "%d already claimed", claimed)
		}
		managed, err := s.ManagedBalance()
		if err != nil {
			return err
		}
		if managed != 0 {
			return errors.Wrapf(errors.ErrBalanceOutstanding, "%d still managed", managed)
		}
		if err := s.SetWeights(newWeights); err != nil {
			return err
		}
		c.log.Info().
			Int("beneficiaries", len(newWeights)).
			Msg("weight table migrated")
		return nil
	})
}
