// Command walletrpc drives the wallet's JSON-RPC controller from a terminal:
// list and probe networks, query balances and receipts, resolve ENS and
// Unstoppable Domains names, and manage the custom chain list.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantumauth-io/quantum-wallet-rpc/config"
	"github.com/quantumauth-io/quantum-wallet-rpc/log"
)

type rootOptions struct {
	configPath string
	chainID    string
	logLevel   string
	timeout    time.Duration
	noColor    bool

	settings *config.Settings
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "walletrpc",
		Short:         "Ethereum wallet JSON-RPC client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(opts.configPath, ".", "./config")
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				settings.Log.Level = opts.logLevel
			}
			if err := log.Init(settings.Log); err != nil {
				return err
			}
			if opts.chainID != "" {
				settings.Network.ChainID = opts.chainID
			}
			if opts.noColor {
				disableColors()
			}
			opts.settings = settings
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default: ./config.yaml when present)")
	flags.StringVar(&opts.chainID, "chain", "", "Chain id to use, overrides network.chainid")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug|info|warn|error")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "How long to wait for an answer")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		networksCmd(opts),
		blockNumberCmd(opts),
		balanceCmd(opts),
		nonceCmd(opts),
		receiptCmd(opts),
		sendRawCmd(opts),
		erc20BalanceCmd(opts),
		ensResolveCmd(opts),
		udRecordsCmd(opts),
		requestCmd(opts),
		chainsCmd(opts),
		devnodeCmd(opts),
	)
	return cmd
}
