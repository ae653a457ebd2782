package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/quantumauth-io/quantum-wallet-rpc/ethrpc"
)

type probeResult struct {
	block string
	// reportedID is what eth_chainId answered, empty if it did not.
	reportedID string
	latency    time.Duration
	err        error
}

func networksCmd(opts *rootOptions) *cobra.Command {
	var probe bool
	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List built-in and custom networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, func(ctx context.Context, s *session) error {
				networks := s.controller.AllNetworks()
				var probes []probeResult
				if probe {
					probes = probeNetworks(ctx, s, networks)
				}
				renderNetworks(networks, s.controller.ChainID(), probes)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&probe, "probe", false, "Ask every network for its block number")
	return cmd
}

// probeNetworks queries every network at once, each through its own
// controller bound to that chain.
func probeNetworks(ctx context.Context, s *session, networks []ethrpc.EthereumChain) []probeResult {
	results := make([]probeResult, len(networks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, n := range networks {
		i, n := i, n
		g.Go(func() error {
			r := probeResult{}
			c := s.newController(n.ChainID)
			defer c.Close()

			if c.ChainID() != n.ChainID {
				r.err = errNoAnswer
			} else {
				start := time.Now()
				block, err := await(gctx, func(cb func(bool, *uint256.Int)) { c.GetBlockNumber(cb) })
				r.latency = time.Since(start)
				r.err = err
				if err == nil {
					r.block = block.Dec()
					r.reportedID = reportedChainID(gctx, c)
				}
			}

			mu.Lock()
			results[i] = r
			mu.Unlock()
			// per-network failures are reported in the table, not returned
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// reportedChainID asks the node which chain it serves, so a probe can flag an
// endpoint that answers for the wrong network.
func reportedChainID(ctx context.Context, c *ethrpc.Controller) string {
	body, err := await(ctx, func(cb func(bool, string)) { c.Request(ethrpc.EthChainID(), true, cb) })
	if err != nil {
		return ""
	}
	id, err := ethrpc.ParseChainID(body)
	if err != nil {
		return ""
	}
	return id
}

// chainIDStatus renders the eth_chainId check of one probed network.
func chainIDStatus(expected string, p probeResult) string {
	switch {
	case p.reportedID == "":
		return "-"
	case p.reportedID == expected:
		return green("ok")
	default:
		return red(p.reportedID)
	}
}

func renderNetworks(networks []ethrpc.EthereumChain, active string, probes []probeResult) {
	fmt.Println(bold("Networks"))
	columns := []interface{}{"", "Chain", "Name", "Symbol", "RPC"}
	if probes != nil {
		columns = append(columns, "Block", "Chain ID", "Latency")
	}
	tbl := newTable(columns...)

	for i, n := range networks {
		marker := ""
		if n.ChainID == active {
			marker = green("*")
		}
		row := []interface{}{marker, n.ChainID, n.ChainName, n.Currency.Symbol, strings.Join(n.RPCURLs, ", ")}
		if probes != nil {
			p := probes[i]
			if p.err != nil {
				row = append(row, red("ERROR"), "-", "-")
			} else {
				row = append(row, p.block, chainIDStatus(n.ChainID, p), p.latency.Round(time.Millisecond))
			}
		}
		tbl.AddRow(row...)
	}
	tbl.Print()
}
