package service

import "sync"

// chainLocks serializes refund/void resolution per originating tx id so two
// concurrent refunds of the same chain can't both pass the lookup inside
// this process. Entries are reference counted and removed on release.
type chainLocks struct {
	mu     sync.Mutex
	chains map[string]*chainLock
}

type chainLock struct {
	sync.Mutex
	refs int
}

func newChainLocks() *chainLocks {
	return &chainLocks{chains: make(map[string]*chainLock)}
}

// lock blocks until the chain is free and returns the release func.
func (l *chainLocks) lock(txID string) func() {
	l.mu.Lock()
	entry, ok := l.chains[txID]
	if !ok {
		entry = &chainLock{}
		l.chains[txID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.chains, txID)
		}
		l.mu.Unlock()
	}
}
