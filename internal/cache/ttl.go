package cache

import (
	"sync"
	"time"

	"github.com/stackflow-labs/eligibility-engine/internal/adapter"
)

// entry holds a cached value and the time it was stored
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL is a small in-memory cache whose entries expire by absolute age, not by
// invalidation signal. It backs the memoized chain reads (pool total units,
// locker resolution) where the underlying state changes infrequently.
type TTL[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   adapter.Clock
	entries map[string]entry[V]
}

// NewTTL creates a TTL cache with the given entry lifetime
func NewTTL[V any](ttl time.Duration, clock adapter.Clock) *TTL[V] {
	return &TTL[V]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the cached value for key, if present and not expired.
// Expired entries are evicted on access.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}

	if c.clock.Since(e.storedAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it
		if cur, still := c.entries[key]; still && c.clock.Since(cur.storedAt) >= c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()

		var zero V
		return zero, false
	}

	return e.value, true
}

// Set stores a value under key, refreshing its age
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.clock.Now()}
}

// Len returns the number of entries currently stored, including any that
// have expired but not yet been evicted
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
