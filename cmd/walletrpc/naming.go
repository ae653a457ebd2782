package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ENS registry, same address on mainnet and the public testnets.
const defaultENSRegistry = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

func ensResolveCmd(opts *rootOptions) *cobra.Command {
	var registry string
	cmd := &cobra.Command{
		Use:   "ens-resolve <name>",
		Short: "Content hash of an ENS name (registry, then resolver)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, func(ctx context.Context, s *session) error {
				hash, err := await(ctx, func(cb func(bool, string)) {
					s.controller.ResolveNamingResolver(registry, args[0], cb)
				})
				if err != nil {
					return err
				}
				fmt.Println(hash)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&registry, "registry", defaultENSRegistry, "ENS registry contract")
	return cmd
}

func udRecordsCmd(opts *rootOptions) *cobra.Command {
	var reader string
	cmd := &cobra.Command{
		Use:     "ud-records <domain> <key>...",
		Short:   "Unstoppable Domains records through ProxyReader.getMany",
		Example: `  walletrpc ud-records --reader <proxy-reader> brad.crypto crypto.ETH.address ipfs.html.value`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, func(ctx context.Context, s *session) error {
				raw, err := await(ctx, func(cb func(bool, string)) {
					s.controller.GetManyRecords(reader, args[0], args[1:], cb)
				})
				if err != nil {
					return err
				}
				fmt.Println(raw)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reader, "reader", "", "ProxyReader contract")
	_ = cmd.MarkFlagRequired("reader")
	return cmd
}
