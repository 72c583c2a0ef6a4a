// Package teststore provides an in-memory store.Driver double so cache tests
// can run against an isolated store without a database.
package teststore

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/stratix-ai/stratix/store"
)

// Driver is an in-memory implementation of store.Driver.
type Driver struct {
	mu      sync.RWMutex
	entries map[string]*store.CacheEntry

	// Err, when set, is returned by every store operation. Used to exercise
	// the cache error-wrapping paths.
	Err error
}

// New creates an empty in-memory driver.
func New() *Driver {
	return &Driver{
		entries: make(map[string]*store.CacheEntry),
	}
}

func (d *Driver) GetDB() *sql.DB {
	return nil
}

func (d *Driver) Close() error {
	return nil
}

func (d *Driver) IsInitialized(_ context.Context) (bool, error) {
	return true, d.Err
}

func (d *Driver) GetCacheEntry(_ context.Context, find *store.FindCacheEntry) (*store.CacheEntry, error) {
	if d.Err != nil {
		return nil, d.Err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	entry, ok := d.entries[find.Key]
	if !ok {
		return nil, nil
	}
	copied := *entry
	return &copied, nil
}

func (d *Driver) UpsertCacheEntry(_ context.Context, upsert *store.UpsertCacheEntry) (*store.CacheEntry, error) {
	if d.Err != nil {
		return nil, d.Err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	entry := &store.CacheEntry{
		Key:       upsert.Key,
		Value:     append([]byte(nil), upsert.Value...),
		ExpiresTs: upsert.ExpiresTs,
		CreatedTs: time.Now().Unix(),
	}
	d.entries[upsert.Key] = entry

	copied := *entry
	return &copied, nil
}

func (d *Driver) DeleteCacheEntry(_ context.Context, del *store.DeleteCacheEntry) error {
	if d.Err != nil {
		return d.Err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.entries, del.Key)
	return nil
}

func (d *Driver) ListCacheKeysByPattern(_ context.Context, find *store.FindCacheKeys) ([]string, error) {
	if d.Err != nil {
		return nil, d.Err
	}

	matcher, err := compileLikePattern(find.Pattern)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	keys := []string{}
	for key := range d.entries {
		if matcher.MatchString(key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (d *Driver) DeleteAllCacheEntries(_ context.Context) error {
	if d.Err != nil {
		return d.Err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = make(map[string]*store.CacheEntry)
	return nil
}

func (d *Driver) GetCacheStats(_ context.Context) (*store.CacheStats, error) {
	if d.Err != nil {
		return nil, d.Err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := &store.CacheStats{}
	now := time.Now().Unix()
	for _, entry := range d.entries {
		stats.TotalEntries++
		if entry.ExpiresTs <= now {
			stats.ExpiredEntries++
		}
		stats.MemoryUsage += int64(len(entry.Key) + len(entry.Value))
	}
	return stats, nil
}

// Size returns the number of rows currently held (for testing).
func (d *Driver) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// compileLikePattern converts a SQL LIKE pattern (% and _) into a
// case-insensitive regexp, mirroring the ILIKE matching of the SQL drivers.
func compileLikePattern(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("(?i)^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

// Ensure Driver implements store.Driver.
var _ store.Driver = (*Driver)(nil)
