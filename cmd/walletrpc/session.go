package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/quantumauth-io/quantum-wallet-rpc/chainstore"
	"github.com/quantumauth-io/quantum-wallet-rpc/ethrpc"
)

var errNoAnswer = errors.New("node returned no usable answer")

// session is everything one command invocation needs, torn down by close.
type session struct {
	store      chainstore.Store
	transport  *ethrpc.HTTPTransport
	registry   *ethrpc.Registry
	controller *ethrpc.Controller
}

func openSession(ctx context.Context, opts *rootOptions) (*session, error) {
	store, err := opts.settings.OpenChainStore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open chain store")
	}
	s := &session{
		store:     store,
		transport: ethrpc.NewHTTPTransport(opts.settings.TransportOptions()),
		registry:  ethrpc.NewRegistry(opts.settings.RegistryConfig()),
	}
	s.controller = s.newController(opts.settings.Network.ChainID)
	if s.controller.NetworkURL() == "" {
		s.close()
		return nil, errors.Errorf("chain %s has no usable endpoint", opts.settings.Network.ChainID)
	}
	return s, nil
}

func (s *session) newController(chainID string) *ethrpc.Controller {
	return ethrpc.NewController(chainID, s.transport, s.registry, ethrpc.WithCustomChains(s.store))
}

func (s *session) close() {
	if s.controller != nil {
		s.controller.Close()
	}
	s.transport.Close()
	_ = s.store.Close()
}

// await turns one callback-style controller operation into a blocking call.
func await[T any](ctx context.Context, start func(cb func(bool, T))) (T, error) {
	type answer struct {
		ok bool
		v  T
	}
	ch := make(chan answer, 1)
	start(func(ok bool, v T) { ch <- answer{ok, v} })

	select {
	case a := <-ch:
		if !a.ok {
			return a.v, errNoAnswer
		}
		return a.v, nil
	case <-ctx.Done():
		var zero T
		return zero, errors.Wrap(ctx.Err(), "gave up waiting for the node")
	}
}

func withSession(opts *rootOptions, run func(ctx context.Context, s *session) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()
	return run(ctx, s)
}
