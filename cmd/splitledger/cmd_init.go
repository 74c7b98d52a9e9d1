package main

import (
	"github.com/spf13/cobra"

	"github.com/splitledger/splitledger/denom"
	"github.com/splitledger/splitledger/errors"
	"github.com/splitledger/splitledger/ledger"
)

var cmdInit = &cobra.Command{
	Use:   "init",
	Short: "Create the ledger state in the database",
	Run: func(cmd *cobra.Command, args []string) {
		sender, err := parseAddr(flagInit.Sender)
		check(err)
		self, err := parseAddr(flagInit.Self)
		check(err)
		ws, err := parseWeights(flagInit.Weights)
		check(err)

		var d denom.Denom
		switch {
		case flagInit.Native != "" && flagInit.Token != "":
			check(errors.Wrap(errors.ErrInput, "--native and --token are mutually exclusive"))
		case flagInit.Native != "":
			d = denom.NewNative(flagInit.Native)
		case flagInit.Token != "":
			token, err := parseAddr(flagInit.Token)
			check(err)
			d = denom.NewToken(token)
		default:
			check(errors.Wrap(errors.ErrInput, "either --native or --token is required"))
		}

		params := ledger.InstantiateParams{
			Self:    self,
			Denom:   d,
			Weights: ws,
		}
		if flagInit.Admin != "" {
			admin, err := parseAddr(flagInit.Admin)
			check(err)
			params.Admin = admin
		}

		withLedger(func(c *ledger.Contract, _ hostBank) error {
			return c.Instantiate(sender, params)
		})
	},
}

var flagInit struct {
	Sender  string
	Self    string
	Native  string
	Token   string
	Weights string
	Admin   string
}

func init() {
	cmdMain.AddCommand(cmdInit)
	cmdInit.Flags().StringVar(&flagInit.Sender, "sender", "", "Address creating the ledger, becomes the admin unless --admin is given")
	cmdInit.Flags().StringVar(&flagInit.Self, "self", "", "Managed account whose holdings are distributed")
	cmdInit.Flags().StringVar(&flagInit.Native, "native", "", "Native denomination code, e.g. usplit")
	cmdInit.Flags().StringVar(&flagInit.Token, "token", "", "Token contract address instead of a native denomination")
	cmdInit.Flags().StringVar(&flagInit.Weights, "weights", "", "Weight table as addr=0.6,addr=0.4, must sum to 1")
	cmdInit.Flags().StringVar(&flagInit.Admin, "admin", "", "Admin address, defaults to the sender")
	_ = cmdInit.MarkFlagRequired("sender")
	_ = cmdInit.MarkFlagRequired("self")
	_ = cmdInit.MarkFlagRequired("weights")
}
