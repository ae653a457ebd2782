package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/quantumauth-io/quantum-wallet-rpc/devnode"
	"github.com/quantumauth-io/quantum-wallet-rpc/log"
)

func devnodeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr     string
		period   time.Duration
		gasLimit uint64
	)
	cmd := &cobra.Command{
		Use:   "devnode",
		Short: "Serve an in-memory chain on the Localhost network (0x539)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			n, err := devnode.New(devnode.Options{Addr: addr, BlockGasLimit: gasLimit})
			if err != nil {
				return err
			}
			defer n.Close()

			dev, key := n.DevAccount()
			printField("url", n.URL())
			printField("chain", n.ChainIDHex())
			printField("account", dev.Hex())
			printField("key", hexutil.Encode(crypto.FromECDSA(key)))

			if period > 0 {
				go n.AutoCommit(ctx, period)
			}

			heads := make(chan *types.Header, 16)
			sub := n.WatchHeads(ctx, heads, 250*time.Millisecond)
			defer sub.Unsubscribe()

			for {
				select {
				case <-ctx.Done():
					log.Info("devnode: shutting down")
					return nil
				case err := <-sub.Err():
					return err
				case h := <-heads:
					log.Info("devnode: head", "number", h.Number.Uint64(), "hash", h.Hash().Hex(), "txs", h.TxHash.Hex())
				}
			}
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "127.0.0.1:8545", "Address to serve JSON-RPC on")
	flags.DurationVar(&period, "block-period", 2*time.Second, "Seal a block this often; 0 seals nothing")
	flags.Uint64Var(&gasLimit, "gas-limit", 0, "Block gas limit (default 100M)")
	return cmd
}
