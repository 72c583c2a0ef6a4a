// Package cache provides a TTL-aware key/value cache over a persistent row
// store. It is used to memoize expensive downstream calls (AI completions,
// analytics aggregates) behind namespaced keys like "brand:123:dna".
package cache

import (
	"context"
	"time"

	"github.com/stratix-ai/stratix/store"
)

// Producer computes a value on a cache miss. It is an arbitrary asynchronous
// operation supplied by the caller, e.g. "call the AI completion endpoint".
type Producer func(ctx context.Context) ([]byte, error)

// CacheService defines the cache service interface. Values are opaque
// JSON-encoded payloads; use the generic Get/Set/GetOrSet helpers for typed
// access.
type CacheService interface {
	// Get retrieves a value from cache.
	// Returns: value, whether a live entry exists. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value in cache, overwriting any prior entry for the key
	// including its expiration. A zero ttl means the configured default.
	// The value must be valid JSON: the postgres column is JSONB, so a
	// non-JSON payload is rejected up front rather than failing on one
	// driver and succeeding on the other. Note JSONB also rejects \u0000
	// escapes inside strings.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry for key if present; absence is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries unconditionally. Maintenance/testing use.
	Clear(ctx context.Context) error

	// InvalidatePattern removes all entries whose key matches the
	// case-insensitive pattern. Supports SQL LIKE wildcards (%) and the
	// "prefix:*" convention. Deletion is per key and not atomic.
	InvalidatePattern(ctx context.Context, pattern string) error

	// GetOrSet returns the cached value for key, or invokes producer,
	// stores its result with the given ttl, and returns it.
	GetOrSet(ctx context.Context, key string, producer Producer, ttl time.Duration) ([]byte, error)

	// GetStats returns a read-only aggregate over the cache table.
	GetStats(ctx context.Context) (*store.CacheStats, error)
}
