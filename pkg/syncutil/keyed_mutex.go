package syncutil

import "sync"

// KeyedMutex provides one mutex per string key, created lazily on first
// use. It scopes mutual exclusion per group id instead of serializing
// unrelated groups behind a single lock. Entries are never evicted; the
// map is bounded by the number of groups the process has seen.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the key's mutex and returns the matching unlock func.
func (k *KeyedMutex) Lock(key string) func() {
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
