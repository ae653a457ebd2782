package devnode

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
)

// headSub polls for the latest header. The simulated client has no push
// subscriptions over HTTP, so this stands in for SubscribeNewHead.
type headSub struct {
	errCh  chan error
	cancel context.CancelFunc
	once   sync.Once
}

// WatchHeads delivers every new head to out, starting with the current one,
// until the subscription is dropped or a header fetch fails.
func (n *Node) WatchHeads(ctx context.Context, out chan<- *types.Header, every time.Duration) ethereum.Subscription {
	return watchHeads(ctx, n.client, out, every)
}

func watchHeads(ctx context.Context, cli ethereum.ChainReader, out chan<- *types.Header, every time.Duration) ethereum.Subscription {
	subCtx, cancel := context.WithCancel(ctx)
	s := &headSub{
		errCh:  make(chan error, 1),
		cancel: cancel,
	}

	go func() {
		defer close(s.errCh)

		t := time.NewTicker(every)
		defer t.Stop()

		var (
			last uint64
			seen bool
		)
		for {
			select {
			case <-subCtx.Done():
				return
			case <-t.C:
				h, err := cli.HeaderByNumber(subCtx, nil)
				if err != nil {
					if subCtx.Err() == nil {
						s.errCh <- err
					}
					return
				}
				if h == nil || h.Number == nil {
					continue
				}
				num := h.Number.Uint64()
				if seen && num <= last {
					continue
				}
				last, seen = num, true
				select {
				case out <- h:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return s
}

func (s *headSub) Unsubscribe() {
	s.once.Do(func() { s.cancel() })
}

func (s *headSub) Err() <-chan error {
	return s.errCh
}
