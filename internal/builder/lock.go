package builder

import (
	"path/filepath"
	"sync"
)

// destinations serializes builds that target the same base directory
var destinations = &lockRegistry{locks: make(map[string]*sync.Mutex)}

type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// acquire locks dir and returns the matching unlock function
func (r *lockRegistry) acquire(dir string) func() {
	key := destinationKey(dir)

	r.mu.Lock()
	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func destinationKey(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return filepath.Clean(abs)
	}
	return filepath.Clean(dir)
}
