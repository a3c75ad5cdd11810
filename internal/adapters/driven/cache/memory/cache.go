// Package memory provides the in-memory TTL result cache.
//
// Entries are evicted lazily: an expired entry is removed when it is next
// looked up. There is no background sweep; TTLs are short and results are
// derived, not authoritative, so stale entries simply age out of use.
package memory

import (
	"sync"
	"time"

	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.ResultCache = (*Cache)(nil)

// entry is one cached value with its expiry bookkeeping.
type entry struct {
	value      any
	insertedAt time.Time
	ttl        time.Duration
}

// expired reports whether the entry's TTL has elapsed at now.
func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.insertedAt) > e.ttl
}

// Cache is a thread-safe TTL cache for gateway results.
// Get and Put on the same key are atomic with respect to each other.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value for key, or false if absent or expired.
// An expired entry is evicted before returning.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Put stores value under key, unconditionally overwriting any existing
// entry (last-write-wins).
func (c *Cache) Put(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:      value,
		insertedAt: c.now(),
		ttl:        ttl,
	}
}

// Len returns the number of entries currently held, including entries
// that have expired but not yet been looked up.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
