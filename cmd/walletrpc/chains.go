package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/quantumauth-io/quantum-wallet-rpc/chainstore"
	"github.com/quantumauth-io/quantum-wallet-rpc/ethrpc"
)

func chainsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chains",
		Short: "Manage the custom chain list",
	}
	cmd.AddCommand(chainsListCmd(opts), chainsAddCmd(opts), chainsRemoveCmd(opts))
	return cmd
}

func withStore(opts *rootOptions, run func(ctx context.Context, store chainstore.Store) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	store, err := opts.settings.OpenChainStore(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to open chain store")
	}
	defer func() { _ = store.Close() }()
	return run(ctx, store)
}

func chainsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show stored custom chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, func(ctx context.Context, store chainstore.Store) error {
				chains, err := store.CustomChains(ctx)
				if err != nil {
					return err
				}
				renderNetworks(chains, "", nil)
				return nil
			})
		},
	}
}

func chainsAddCmd(opts *rootOptions) *cobra.Command {
	var chain ethrpc.EthereumChain
	cmd := &cobra.Command{
		Use:   "add <chain-id> <name> <rpc-url>",
		Short: "Add a custom chain, or replace the one with the same id",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain.ChainID, chain.ChainName = args[0], args[1]
			chain.RPCURLs = []string{args[2]}
			return withStore(opts, func(ctx context.Context, store chainstore.Store) error {
				if err := store.Add(ctx, chain); err != nil {
					return err
				}
				fmt.Println(green("added"), chain.ChainID)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&chain.BlockExplorerURLs, "explorer", nil, "Block explorer URL (repeatable)")
	f.StringSliceVar(&chain.IconURLs, "icon", nil, "Icon URL (repeatable)")
	f.StringVar(&chain.Currency.Name, "currency-name", "Ether", "Native currency name")
	f.StringVar(&chain.Currency.Symbol, "currency-symbol", "ETH", "Native currency symbol")
	f.IntVar(&chain.Currency.Decimals, "currency-decimals", 18, "Native currency decimals")
	return cmd
}

func chainsRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <chain-id>",
		Short: "Remove a custom chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, func(ctx context.Context, store chainstore.Store) error {
				if err := store.Remove(ctx, args[0]); err != nil {
					return err
				}
				fmt.Println(green("removed"), args[0])
				return nil
			})
		},
	}
}
