package engine

import "sync"

// lockTable hands out one mutex per item id. The per-item lock serializes
// the composite append/scan/execute sequence of a submission: two
// submissions for the same item id never interleave, while submissions for
// different items proceed in parallel.
type lockTable struct {
	mu    sync.RWMutex
	locks map[int]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{
		locks: make(map[int]*sync.Mutex),
	}
}

// get returns the mutex for the given item id, creating it if needed.
func (t *lockTable) get(itemID int) *sync.Mutex {
	t.mu.RLock()
	l, ok := t.locks[itemID]
	t.mu.RUnlock()
	if ok {
		return l
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double-check after acquiring write lock.
	if l, ok = t.locks[itemID]; ok {
		return l
	}
	l = &sync.Mutex{}
	t.locks[itemID] = l
	return l
}
