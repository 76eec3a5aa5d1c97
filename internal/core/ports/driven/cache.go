package driven

import (
	"context"
	"time"
)

// Cache guards expensive upstream reads with per-key TTL semantics.
// Entries expire purely by TTL, not by write-through on edit, so
// Invalidate exists for callers that cannot tolerate staleness.
type Cache interface {
	// GetOrRefresh returns the cached value for key, calling refresh to
	// populate it when missing or older than ttl.
	GetOrRefresh(ctx context.Context, key string, ttl time.Duration, refresh func(ctx context.Context) (any, error)) (any, error)

	// Invalidate drops the cached value for key, forcing the next
	// GetOrRefresh to hit the upstream.
	Invalidate(key string)
}
