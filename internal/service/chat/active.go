package chat

import "sync"

// ActiveSet remembers which conversation each owner last bound to.
// It is a hint only; ResolveActive validates it on every use.
type ActiveSet struct {
	mu     sync.RWMutex
	active map[string]int64
}

// NewActiveSet creates an empty set.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{active: make(map[string]int64)}
}

// Get returns the bound conversation id, or 0.
func (a *ActiveSet) Get(ownerID string) int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.active[ownerID]
}

// Set binds ownerID to id.
func (a *ActiveSet) Set(ownerID string, id int64) {
	if ownerID == "" || id <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active[ownerID] = id
}
