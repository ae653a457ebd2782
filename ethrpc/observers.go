package ethrpc

import "sync"

// NetworkObserver is told about every successful network switch.
type NetworkObserver interface {
	OnNetworkChanged(chainID string)
}

// NetworkObserverFunc adapts a plain function to NetworkObserver.
type NetworkObserverFunc func(chainID string)

func (f NetworkObserverFunc) OnNetworkChanged(chainID string) { f(chainID) }

type observerList struct {
	mu        sync.RWMutex
	observers []NetworkObserver
}

func (l *observerList) add(o NetworkObserver) {
	if o == nil {
		return
	}
	l.mu.Lock()
	l.observers = append(l.observers, o)
	l.mu.Unlock()
}

// notify calls every observer synchronously, in registration order. The
// list is snapshotted so observers may register others while being notified.
func (l *observerList) notify(chainID string) {
	l.mu.RLock()
	snapshot := make([]NetworkObserver, len(l.observers))
	copy(snapshot, l.observers)
	l.mu.RUnlock()

	for _, o := range snapshot {
		o.OnNetworkChanged(chainID)
	}
}

func (l *observerList) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.observers)
}
