package main

import (
	"github.com/spf13/cobra"

	"github.com/splitledger/splitledger/ledger"
)

var cmdQuery = &cobra.Command{
	Use:   "query",
	Short: "Read ledger state",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Usage()
	},
}

var cmdQueryAdmin = &cobra.Command{
	Use:   "admin",
	Short: "Show the current admin",
	Run: func(cmd *cobra.Command, args []string) {
		withLedger(func(c *ledger.Contract, _ hostBank) error {
			admin, err := c.Admin()
			if err != nil {
				return err
			}
			return printJSON(map[string]string{"admin": admin.String()})
		})
	},
}

var cmdQueryWeights = &cobra.Command{
	Use:   "weights",
	Short: "Show the weight table",
	Run: func(cmd *cobra.Command, args []string) {
		withLedger(func(c *ledger.Contract, _ hostBank) error {
			ws, err := c.Weights()
			if err != nil {
				return err
			}
			return printJSON(ws)
		})
	},
}

var cmdQueryPending = &cobra.Command{
	Use:   "pending [address]",
	Short: "Show claimable balances, all of them or one beneficiary's",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withLedger(func(c *ledger.Contract, _ hostBank) error {
			if len(args) == 0 {
				pending, err := c.AllPendingClaims()
				if err != nil {
					return err
				}
				return printJSON(pending)
			}
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			amount, err := c.PendingClaim(addr)
			if err != nil {
				return err
			}
			return printJSON(ledger.BalanceEntry{Address: addr, Amount: amount})
		})
	},
}

var cmdQueryClaimed = &cobra.Command{
	Use:   "claimed [address]",
	Short: "Show cumulative withdrawn amounts",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withLedger(func(c *ledger.Contract, _ hostBank) error {
			if len(args) == 0 {
				total, err := c.TotalClaimedAllTime()
				if err != nil {
					return err
				}
				return printJSON(map[string]uint64{"total": total})
			}
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			amount, err := c.ClaimedTotal(addr)
			if err != nil {
				return err
			}
			return printJSON(ledger.BalanceEntry{Address: addr, Amount: amount})
		})
	},
}

var cmdQueryDenom = &cobra.Command{
	Use:   "denom",
	Short: "Show the managed denomination and managed balance",
	Run: func(cmd *cobra.Command, args []string) {
		withLedger(func(c *ledger.Contract, _ hostBank) error {
			info, err := c.DenominationInfo()
			if err != nil {
				return err
			}
			return printJSON(info)
		})
	},
}

var cmdQueryHoldings = &cobra.Command{
	Use:   "holdings <address>",
	Short: "Show an account's simulated host holdings",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withLedger(func(c *ledger.Contract, bank hostBank) error {
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			amount, err := bank.balance(addr)
			if err != nil {
				return err
			}
			return printJSON(ledger.BalanceEntry{Address: addr, Amount: amount})
		})
	},
}

func init() {
	cmdMain.AddCommand(cmdQuery)
	cmdQuery.AddCommand(cmdQueryAdmin, cmdQueryWeights, cmdQueryPending,
		cmdQueryClaimed, cmdQueryDenom, cmdQueryHoldings)
}
