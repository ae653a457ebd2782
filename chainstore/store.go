// Package chainstore persists the user's custom chain list. The controller
// only reads it; Add and Remove exist for configuration tooling.
package chainstore

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-wallet-rpc/ethrpc"
)

var (
	ErrInvalidChain = errors.New("chainstore: invalid chain")
	ErrNotFound     = errors.New("chainstore: chain not found")
)

type Store interface {
	ethrpc.CustomChainSource
	// Add inserts chain, or replaces the stored chain with the same id in place.
	Add(ctx context.Context, chain ethrpc.EthereumChain) error
	Remove(ctx context.Context, chainID string) error
	Close() error
}

func validate(chain ethrpc.EthereumChain) error {
	if strings.TrimSpace(chain.ChainID) == "" {
		return errors.Wrap(ErrInvalidChain, "empty chainId")
	}
	if strings.TrimSpace(chain.ChainName) == "" {
		return errors.Wrapf(ErrInvalidChain, "chain %s: empty chainName", chain.ChainID)
	}
	return nil
}

// upsert returns chains with chain added or replacing the entry with its id.
func upsert(chains []ethrpc.EthereumChain, chain ethrpc.EthereumChain) []ethrpc.EthereumChain {
	out := make([]ethrpc.EthereumChain, 0, len(chains)+1)
	replaced := false
	for _, c := range chains {
		if c.ChainID == chain.ChainID {
			out = append(out, chain)
			replaced = true
			continue
		}
		out = append(out, c)
	}
	if !replaced {
		out = append(out, chain)
	}
	return out
}

func remove(chains []ethrpc.EthereumChain, chainID string) ([]ethrpc.EthereumChain, error) {
	out := make([]ethrpc.EthereumChain, 0, len(chains))
	for _, c := range chains {
		if c.ChainID != chainID {
			out = append(out, c)
		}
	}
	if len(out) == len(chains) {
		return chains, errors.Wrapf(ErrNotFound, "chain %s", chainID)
	}
	return out, nil
}

// normalize fills nil slices so stored and returned lists look the same.
func normalize(chain ethrpc.EthereumChain) ethrpc.EthereumChain {
	if chain.RPCURLs == nil {
		chain.RPCURLs = []string{}
	}
	if chain.BlockExplorerURLs == nil {
		chain.BlockExplorerURLs = []string{}
	}
	if chain.IconURLs == nil {
		chain.IconURLs = []string{}
	}
	return chain
}
