package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/splitledger/splitledger/errors"
	"github.com/splitledger/splitledger/ledger"
)

var cmdDistribute = &cobra.Command{
	Use:   "distribute",
	Short: "Reconcile against the actual holdings and allocate the new delta",
	Run: func(cmd *cobra.Command, args []string) {
		sender, err := parseAddr(flagSender)
		check(err)
		withLedger(func(c *ledger.Contract, _ hostBank) error {
			return c.Distribute(sender)
		})
	},
}

var cmdWithdraw = &cobra.Command{
	Use:   "withdraw",
	Short: "Pay out the sender's entire claimable balance",
	Run: func(cmd *cobra.Command, args []string) {
		sender, err := parseAddr(flagSender)
		check(err)
		withLedger(func(c *ledger.Contract, bank hostBank) error {
			ins, err := c.Withdraw(sender)
			if err != nil {
				return err
			}
			self, err := c.SelfAddress()
			if err != nil {
				return err
			}
			if err := bank.execute(self, ins); err != nil {
				return err
			}
			return printJSON(ins)
		})
	},
}

var cmdSetAdmin = &cobra.Command{
	Use:   "set-admin <new-admin>",
	Short: "Hand the admin role over to another address",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sender, err := parseAddr(flagSender)
		check(err)
		newAdmin, err := parseAddr(args[0])
		check(err)
		withLedger(func(c *ledger.Contract, _ hostBank) error {
			return c.SetAdmin(sender, newAdmin)
		})
	},
}

var cmdMigrate = &cobra.Command{
	Use:   "migrate",
	Short: "Replace the weight table of an untouched ledger",
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := parseWeights(flagMigrateWeights)
		check(err)
		withLedger(func(c *ledger.Contract, _ hostBank) error {
			return c.Migrate(ws)
		})
	},
}

var cmdFund = &cobra.Command{
	Use:   "fund <amount>",
	Short: "Simulate an inflow of funds to the managed account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		amount, err := strconv.ParseUint(args[0], 10, 64)
		check(err)
		withLedger(func(c *ledger.Contract, bank hostBank) error {
			to := flagFundTo
			if to == "" {
				self, err := c.SelfAddress()
				if err != nil {
					return err
				}
				to = self.String()
			}
			recipient, err := parseAddr(to)
			if err != nil {
				return err
			}
			return bank.credit(recipient, amount)
		})
	},
}

var (
	flagSender         string
	flagMigrateWeights string
	flagFundTo         string
)

func init() {
	cmdMain.AddCommand(cmdDistribute, cmdWithdraw, cmdSetAdmin, cmdMigrate, cmdFund)
	for _, cmd := range []*cobra.Command{cmdDistribute, cmdWithdraw, cmdSetAdmin} {
		cmd.Flags().StringVar(&flagSender, "sender", "", "Address invoking the operation")
		_ = cmd.MarkFlagRequired("sender")
	}
	cmdMigrate.Flags().StringVar(&flagMigrateWeights, "weights", "", "Replacement weight table as addr=0.6,addr=0.4")
	_ = cmdMigrate.MarkFlagRequired("weights")
	cmdFund.Flags().StringVar(&flagFundTo, "to", "", "Recipient, defaults to the managed account")
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encode output")
}
