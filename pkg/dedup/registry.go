// Package dedup tracks keys of requests that are still in flight.
//
// Unlike singleflight, a second caller with the same key is not attached to
// the first call: it is turned away. Mutating calls use this so a double
// submit never writes twice.
package dedup

import (
	"sync"
	"time"
)

// Registry is a set of in-flight keys. The zero value is not usable; call New.
type Registry struct {
	mu      sync.Mutex
	pending map[string]time.Time
	now     func() time.Time
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		pending: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Acquire registers key. ok is false when the key is already registered;
// otherwise release must be called exactly once when the call finishes.
func (r *Registry) Acquire(key string) (release func(), ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.pending[key]; busy {
		return nil, false
	}
	r.pending[key] = r.now()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.pending, key)
			r.mu.Unlock()
		})
	}, true
}

// Has reports whether key is currently registered.
func (r *Registry) Has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[key]
	return ok
}

// Len returns the number of in-flight keys.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Oldest returns how long the oldest registered key has been in flight.
func (r *Registry) Oldest() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	var oldest time.Time
	for _, at := range r.pending {
		if oldest.IsZero() || at.Before(oldest) {
			oldest = at
		}
	}
	if oldest.IsZero() {
		return 0
	}
	return r.now().Sub(oldest)
}
