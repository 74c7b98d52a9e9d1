package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/splitledger/splitledger"
	"github.com/splitledger/splitledger/errors"
	"github.com/splitledger/splitledger/ledger"
	"github.com/splitledger/splitledger/store"
	"github.com/splitledger/splitledger/store/badgerstore"
)

var cmdMain = &cobra.Command{
	Use:   "splitledger",
	Short: "Weighted split ledger over a local database",
	Long: `splitledger keeps an accounting ledger that distributes funds arriving
on a managed account across fixed beneficiaries by proportional weights.
The host side, an account book holding the actual balances, is simulated
in the same database so the full flow can be driven locally.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Usage()
		os.Exit(1)
	},
}

var flagMain struct {
	DBDir   string
	Verbose bool
}

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cmdMain.PersistentFlags().StringVar(&flagMain.DBDir, "db", filepath.Join(home, ".splitledger"), "Database directory")
	cmdMain.PersistentFlags().BoolVarP(&flagMain.Verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func check(err error) {
	if err != nil {
		fatalf("%v", err)
	}
}

// withLedger opens the database and runs fn with the contract and its
// simulated host bank.
func withLedger(fn func(c *ledger.Contract, bank hostBank) error) {
	db, err := badgerstore.Open(flagMain.DBDir)
	check(err)
	defer db.Close()

	level := zerolog.InfoLevel
	if flagMain.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	bank := hostBank{db: db}
	c := ledger.NewContract(store.CacheOnWrite(db), bank, ledger.WithLogger(log))
	check(fn(c, bank))
}

func parseAddr(raw string) (splitledger.Address, error) {
	addr := splitledger.Address(raw)
	if err := addr.Validate(); err != nil {
		return "", err
	}
	return addr, nil
}

// parseWeights turns "addr=0.6,addr=0.4" into a weight table.
func parseWeights(raw string) (ledger.Weights, error) {
	var ws ledger.Weights
	for _, part := range strings.Split(raw, ",") {
		addr, weight, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, errors.Wrapf(errors.ErrInput, "weight entry %q is not address=weight", part)
		}
		a, err := parseAddr(addr)
		if err != nil {
			return nil, err
		}
		w, err := decimal.NewFromString(weight)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "weight of %s: %s", addr, err)
		}
		ws = append(ws, ledger.WeightEntry{Address: a, Weight: w})
	}
	return ws, nil
}
