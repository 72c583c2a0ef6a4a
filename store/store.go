package store

import (
	"context"

	"github.com/stratix-ai/stratix/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) GetCacheEntry(ctx context.Context, find *FindCacheEntry) (*CacheEntry, error) {
	return s.driver.GetCacheEntry(ctx, find)
}

func (s *Store) UpsertCacheEntry(ctx context.Context, upsert *UpsertCacheEntry) (*CacheEntry, error) {
	return s.driver.UpsertCacheEntry(ctx, upsert)
}

func (s *Store) DeleteCacheEntry(ctx context.Context, delete *DeleteCacheEntry) error {
	return s.driver.DeleteCacheEntry(ctx, delete)
}

func (s *Store) ListCacheKeysByPattern(ctx context.Context, find *FindCacheKeys) ([]string, error) {
	return s.driver.ListCacheKeysByPattern(ctx, find)
}

func (s *Store) DeleteAllCacheEntries(ctx context.Context) error {
	return s.driver.DeleteAllCacheEntries(ctx)
}

func (s *Store) GetCacheStats(ctx context.Context) (*CacheStats, error) {
	return s.driver.GetCacheStats(ctx)
}
