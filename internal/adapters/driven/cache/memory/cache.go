// Package memory provides an in-memory TTL cache for expensive
// upstream reads such as provider quota lookups.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/babelkb/babelkb/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.Cache = (*Cache)(nil)

// entry is one cached value with its refresh time.
type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache guards upstream reads with per-key TTL expiry. The refresh
// callback runs under the key's lock, so concurrent callers of the
// same key produce a single upstream call.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry

	// now is replaceable for tests.
	now func() time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// GetOrRefresh returns the cached value for key, calling refresh to
// populate it when missing or older than ttl. A failed refresh leaves
// any stale value untouched for the next attempt.
func (c *Cache) GetOrRefresh(ctx context.Context, key string, ttl time.Duration, refresh func(ctx context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && c.now().Sub(e.fetchedAt) < ttl {
		return e.value, nil
	}

	value, err := refresh(ctx)
	if err != nil {
		return nil, err
	}

	c.entries[key] = &entry{value: value, fetchedAt: c.now()}
	return value, nil
}

// Invalidate drops the cached value for key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
