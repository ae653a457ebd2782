package chainstore

import (
	"context"
	"sync"

	"github.com/quantumauth-io/quantum-wallet-rpc/ethrpc"
)

type MemoryStore struct {
	mu     sync.RWMutex
	chains []ethrpc.EthereumChain
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(chains ...ethrpc.EthereumChain) *MemoryStore {
	s := &MemoryStore{}
	for _, c := range chains {
		s.chains = upsert(s.chains, normalize(c))
	}
	return s
}

func (s *MemoryStore) CustomChains(context.Context) ([]ethrpc.EthereumChain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ethrpc.EthereumChain, len(s.chains))
	copy(out, s.chains)
	return out, nil
}

func (s *MemoryStore) Add(_ context.Context, chain ethrpc.EthereumChain) error {
	if err := validate(chain); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains = upsert(s.chains, normalize(chain))
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, chainID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chains, err := remove(s.chains, chainID)
	if err != nil {
		return err
	}
	s.chains = chains
	return nil
}

func (s *MemoryStore) Close() error { return nil }
