package rag

import "sync"

// keyLocks serializes ingestion per collection name. Retrieval never takes a
// lock; it reads whatever generation is currently live.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: map[string]*sync.Mutex{}}
}

// lock acquires the mutex for key, creating it on first use, and returns the
// matching unlock.
func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
