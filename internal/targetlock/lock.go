package targetlock

import "sync"

// Registry serializes writes to individual physical targets. Two rules that
// resolve to the same registry key or file path take the same lock, so their
// writes never interleave; rules with distinct targets proceed concurrently.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRegistry creates an empty lock registry
func NewRegistry() *Registry {
	return &Registry{
		locks: make(map[string]*sync.Mutex),
	}
}

// Acquire locks the mutex for the given target, creating it on first use.
// The returned function releases the lock.
func (r *Registry) Acquire(target string) func() {
	r.mu.Lock()
	lock, ok := r.locks[target]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[target] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Len returns the number of distinct targets seen so far
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
