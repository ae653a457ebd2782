package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/quantumauth-io/quantum-wallet-rpc/ethrpc"
)

func blockNumberCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "block-number",
		Short: "Latest block number of the selected chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, func(ctx context.Context, s *session) error {
				n, err := await(ctx, func(cb func(bool, *uint256.Int)) { s.controller.GetBlockNumber(cb) })
				if err != nil {
					return err
				}
				fmt.Println(n.Dec())
				return nil
			})
		},
	}
}

func balanceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "Native balance of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, func(ctx context.Context, s *session) error {
				wei, err := await(ctx, func(cb func(bool, string)) { s.controller.GetBalance(args[0], cb) })
				if err != nil {
					return err
				}
				printField("Address", args[0])
				printField("Balance", green(formatUnits(wei, 18)))
				printField("Raw", wei)
				return nil
			})
		},
	}
}

func nonceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nonce <address>",
		Short: "Transaction count of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, func(ctx context.Context, s *session) error {
				n, err := await(ctx, func(cb func(bool, *uint256.Int)) {
					s.controller.GetTransactionCount(args[0], cb)
				})
				if err != nil {
					return err
				}
				fmt.Println(n.Dec())
				return nil
			})
		},
	}
}

func receiptCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <tx-hash>",
		Short: "Receipt of a mined transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, func(ctx context.Context, s *session) error {
				r, err := await(ctx, func(cb func(bool, ethrpc.TransactionReceipt)) {
					s.controller.GetTransactionReceipt(args[0], cb)
				})
				if err != nil {
					return err
				}
				status := red("failed")
				if r.Status {
					status = green("success")
				}
				printField("Transaction", r.TransactionHash)
				printField("Status", status)
				printField("Block", fmt.Sprintf("%d (%s)", r.BlockNumber, r.BlockHash))
				printField("Index", r.TransactionIndex)
				printField("From", r.From)
				if r.To != "" {
					printField("To", r.To)
				}
				if r.ContractAddress != "" {
					printField("Contract", r.ContractAddress)
				}
				printField("Gas used", r.GasUsed)
				printField("Logs", len(r.Logs))
				return nil
			})
		},
	}
}

func sendRawCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send-raw <signed-tx-hex>",
		Short: "Broadcast a signed transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, func(ctx context.Context, s *session) error {
				hash, err := await(ctx, func(cb func(bool, string)) { s.controller.SendRawTransaction(args[0], cb) })
				if err != nil {
					return err
				}
				fmt.Println(hash)
				if explorer := s.controller.BlockTrackerURL(); explorer != "" {
					printField("Explorer", explorer+"/tx/"+hash)
				}
				return nil
			})
		},
	}
}

func erc20BalanceCmd(opts *rootOptions) *cobra.Command {
	var decimals int
	cmd := &cobra.Command{
		Use:   "erc20-balance <token-contract> <address>",
		Short: "ERC-20 balanceOf through eth_call",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, func(ctx context.Context, s *session) error {
				raw, err := await(ctx, func(cb func(bool, string)) {
					s.controller.GetERC20TokenBalance(args[0], args[1], cb)
				})
				if err != nil {
					return err
				}
				printField("Token", args[0])
				printField("Balance", green(formatUnits(raw, decimals)))
				printField("Raw", raw)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&decimals, "decimals", 18, "Token decimals used for display")
	return cmd
}

func requestCmd(opts *rootOptions) *cobra.Command {
	var noRetry bool
	cmd := &cobra.Command{
		Use:   "request [json-rpc-payload|-]",
		Short: "Send a raw JSON-RPC payload and print the body",
		Long: `Send a raw JSON-RPC payload to the selected chain and print the response
body as-is. With "-" or no argument the payload is read from stdin.

Example:
  walletrpc request '{"jsonrpc":"2.0","id":1,"method":"net_version","params":[]}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return withSession(opts, func(ctx context.Context, s *session) error {
				body, err := await(ctx, func(cb func(bool, string)) {
					s.controller.Request(payload, !noRetry, cb)
				})
				fmt.Println(body)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&noRetry, "no-retry", false, "Do not retry when the connection drops")
	return cmd
}

func readPayload(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
