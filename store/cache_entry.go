package store

// CacheEntry is a single persisted cache row. The value is an opaque
// JSON-encoded payload; the store never interprets or mutates it.
type CacheEntry struct {
	Key       string
	Value     []byte
	ExpiresTs int64
	CreatedTs int64
}

// UpsertCacheEntry is the parameter object for UpsertCacheEntry.
type UpsertCacheEntry struct {
	Key       string
	Value     []byte
	ExpiresTs int64
}

// FindCacheEntry is the parameter object for GetCacheEntry.
type FindCacheEntry struct {
	Key string
}

// DeleteCacheEntry is the parameter object for DeleteCacheEntry.
type DeleteCacheEntry struct {
	Key string
}

// FindCacheKeys is the parameter object for ListCacheKeysByPattern.
// Pattern uses SQL LIKE wildcards (% and _) and matches case-insensitively.
type FindCacheKeys struct {
	Pattern string
}

// CacheStats is a read-only aggregate over the cache table.
// Informational only; not used by any correctness-critical path.
type CacheStats struct {
	TotalEntries   int64 `json:"total_entries"`
	ExpiredEntries int64 `json:"expired_entries"`
	MemoryUsage    int64 `json:"memory_usage"`
}
