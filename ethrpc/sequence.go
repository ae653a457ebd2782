package ethrpc

import (
	"context"
	"sync"
	"sync/atomic"
)

// sequence runs posted tasks one at a time, in order, on its own goroutine.
// It is the controller's owning execution context: every continuation handed
// to a caller runs here. Once stopped, queued and later tasks are dropped.
type sequence struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}

	// exec is held from the stopped check until the task returns. inTask is
	// set while a task body runs, so stop called from that task skips exec.
	exec   sync.Mutex
	inTask atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newSequence() *sequence {
	ctx, cancel := context.WithCancel(context.Background())
	s := &sequence{
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// post queues fn and reports whether the sequence will consider running it.
func (s *sequence) post(fn func()) bool {
	if s.ctx.Err() != nil {
		return false
	}
	s.mu.Lock()
	s.tasks = append(s.tasks, fn)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

func (s *sequence) run() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			if len(s.tasks) == 0 {
				s.mu.Unlock()
				break
			}
			fn := s.tasks[0]
			s.tasks[0] = nil
			s.tasks = s.tasks[1:]
			s.mu.Unlock()

			if !s.runTask(fn) {
				return
			}
		}
	}
}

// runTask runs fn unless the sequence was stopped first.
func (s *sequence) runTask(fn func()) bool {
	s.exec.Lock()
	defer s.exec.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.inTask.Store(true)
	defer s.inTask.Store(false)
	fn()
	return true
}

// stop drops everything not yet started. Called from outside it waits only
// for a task that passed its stopped check but has not begun; called from a
// task it returns at once.
func (s *sequence) stop() {
	s.once.Do(func() {
		s.cancel()
		s.mu.Lock()
		s.tasks = nil
		s.mu.Unlock()
	})
	if !s.inTask.Load() {
		s.exec.Lock()
		// empty section: only waits out a task that is about to start
		s.exec.Unlock()
	}
}

func (s *sequence) stopped() bool {
	return s.ctx.Err() != nil
}
