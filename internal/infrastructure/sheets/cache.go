package sheets

import (
	"sync"
	"time"
)

// resourceCache holds the last good copy of one list with its own timestamp.
type resourceCache[T any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	value T
	stamp time.Time
	has   bool
}

func newResourceCache[T any](ttl time.Duration) *resourceCache[T] {
	return &resourceCache[T]{ttl: ttl}
}

// fresh returns the value when it is younger than the ttl.
func (c *resourceCache[T]) fresh(now time.Time) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.has && now.Sub(c.stamp) < c.ttl {
		return c.value, true
	}
	var zero T
	return zero, false
}

// last returns the value regardless of age.
func (c *resourceCache[T]) last() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.has
}

func (c *resourceCache[T]) store(v T, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.stamp = now
	c.has = true
}

// invalidate drops the value so the next read goes to the network.
func (c *resourceCache[T]) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.stamp = time.Time{}
	c.has = false
}
