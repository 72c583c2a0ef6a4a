package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// CacheEntry model related methods.
	GetCacheEntry(ctx context.Context, find *FindCacheEntry) (*CacheEntry, error)
	UpsertCacheEntry(ctx context.Context, upsert *UpsertCacheEntry) (*CacheEntry, error)
	DeleteCacheEntry(ctx context.Context, delete *DeleteCacheEntry) error
	ListCacheKeysByPattern(ctx context.Context, find *FindCacheKeys) ([]string, error)
	DeleteAllCacheEntries(ctx context.Context) error

	// GetCacheStats returns a server-side aggregate over the cache table.
	GetCacheStats(ctx context.Context) (*CacheStats, error)
}
