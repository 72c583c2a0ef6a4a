package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/stratix-ai/stratix/store"
)

// Config configures the cache service.
type Config struct {
	DefaultTTL time.Duration // Default TTL for entries (default: 5 minutes)
}

// DefaultConfig returns default cache service configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 5 * time.Minute,
	}
}

// Service implements CacheService over a persistent row store.
//
// Expired entries are evicted lazily: the Get that discovers an expired row
// deletes it. There is no background sweeper; this keeps the service stateless
// apart from the shared store.
type Service struct {
	store      *store.Store
	defaultTTL time.Duration

	// group collapses concurrent GetOrSet misses on the same key so the
	// producer runs once per key at a time instead of once per caller.
	group singleflight.Group

	// now is the clock; overridable in tests.
	now func() time.Time
}

// NewService creates a new cache service with an injected store.
func NewService(st *store.Store, cfg Config) *Service {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultConfig().DefaultTTL
	}
	return &Service{
		store:      st,
		defaultTTL: cfg.DefaultTTL,
		now:        time.Now,
	}
}

// Get retrieves a value from cache. An expired row is deleted on discovery and
// reported as a miss.
func (s *Service) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, newError("get", key, "key cannot be empty", nil)
	}

	entry, err := s.store.GetCacheEntry(ctx, &store.FindCacheEntry{Key: key})
	if err != nil {
		return nil, false, newError("get", key, "failed to read cache entry", err)
	}
	if entry == nil {
		return nil, false, nil
	}

	if entry.ExpiresTs <= s.now().Unix() {
		if err := s.store.DeleteCacheEntry(ctx, &store.DeleteCacheEntry{Key: key}); err != nil {
			return nil, false, newError("get", key, "failed to evict expired cache entry", err)
		}
		return nil, false, nil
	}

	return entry.Value, true, nil
}

// Set upserts the entry for key, resetting its expiration. There is no
// "extend" or "merge"; the prior entry is completely overwritten. The value
// must be valid JSON (see CacheService.Set).
func (s *Service) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return newError("set", key, "key cannot be empty", nil)
	}
	if !json.Valid(value) {
		return newError("set", key, "value is not valid JSON", nil)
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	_, err := s.store.UpsertCacheEntry(ctx, &store.UpsertCacheEntry{
		Key:       key,
		Value:     value,
		ExpiresTs: s.now().Add(ttl).Unix(),
	})
	if err != nil {
		return newError("set", key, "failed to write cache entry", err)
	}
	return nil
}

// Delete removes the entry for key. Deleting an absent key is a no-op.
func (s *Service) Delete(ctx context.Context, key string) error {
	if key == "" {
		return newError("delete", key, "key cannot be empty", nil)
	}

	if err := s.store.DeleteCacheEntry(ctx, &store.DeleteCacheEntry{Key: key}); err != nil {
		return newError("delete", key, "failed to delete cache entry", err)
	}
	return nil
}

// Clear removes all entries unconditionally.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.DeleteAllCacheEntries(ctx); err != nil {
		return newError("clear", "", "failed to clear cache", err)
	}
	return nil
}

// InvalidatePattern removes all entries whose key matches the pattern,
// case-insensitively. A trailing "*" is accepted as an alias for the SQL "%"
// wildcard, so "brand:123:*" and "brand:123:%" are equivalent. Matching keys
// are listed first and deleted one by one; a failure mid-way leaves a
// partially invalidated set.
func (s *Service) InvalidatePattern(ctx context.Context, pattern string) error {
	if pattern == "" {
		return newError("invalidate_pattern", "", "pattern cannot be empty", nil)
	}

	normalized := strings.ReplaceAll(pattern, "*", "%")
	keys, err := s.store.ListCacheKeysByPattern(ctx, &store.FindCacheKeys{Pattern: normalized})
	if err != nil {
		return newError("invalidate_pattern", "", "failed to list cache keys", err)
	}

	for _, key := range keys {
		if err := s.store.DeleteCacheEntry(ctx, &store.DeleteCacheEntry{Key: key}); err != nil {
			return newError("invalidate_pattern", key, "failed to delete cache entry", err)
		}
	}
	return nil
}

// GetOrSet returns the cached value for key if present; otherwise it invokes
// producer, stores the result with the given ttl, and returns it.
//
// Concurrent misses on the same key are collapsed: only one caller invokes
// producer, the rest share its result. A producer error is returned as-is
// (it is the caller's failure, not a store fault) and nothing is stored.
func (s *Service) GetOrSet(ctx context.Context, key string, producer Producer, ttl time.Duration) ([]byte, error) {
	value, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		return value, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have stored
		// the value between our miss and entering the group.
		value, ok, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			return value, nil
		}

		produced, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.Set(ctx, key, produced, ttl); err != nil {
			return nil, err
		}
		return produced, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// GetStats returns a read-only aggregate over the cache table. Informational
// only; not used by any correctness-critical path.
func (s *Service) GetStats(ctx context.Context) (*store.CacheStats, error) {
	stats, err := s.store.GetCacheStats(ctx)
	if err != nil {
		return nil, newError("get_stats", "", "failed to get cache stats", err)
	}
	return stats, nil
}

// Ensure Service implements CacheService.
var _ CacheService = (*Service)(nil)
