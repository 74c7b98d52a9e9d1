package main

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splitledger/splitledger"
	"github.com/splitledger/splitledger/errors"
)

var cmdAddr = &cobra.Command{
	Use:   "addr",
	Short: "Generate a fresh random address for local experiments",
	Run: func(cmd *cobra.Command, args []string) {
		payload := make([]byte, splitledger.AddressDataLength)
		if _, err := rand.Read(payload); err != nil {
			check(errors.Wrap(err, "random payload"))
		}
		addr, err := splitledger.NewAddress(flagAddrHRP, payload)
		check(err)
		fmt.Println(addr)
	},
}

var flagAddrHRP string

func init() {
	cmdMain.AddCommand(cmdAddr)
	cmdAddr.Flags().StringVar(&flagAddrHRP, "hrp", "split", "Human readable address prefix")
}
