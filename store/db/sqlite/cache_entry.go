package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stratix-ai/stratix/store"
)

func (d *DB) UpsertCacheEntry(ctx context.Context, upsert *store.UpsertCacheEntry) (*store.CacheEntry, error) {
	if upsert == nil {
		return nil, fmt.Errorf("upsert parameter cannot be nil")
	}

	now := time.Now().Unix()

	stmt := `
		INSERT INTO cache_entry (key, value, expires_ts, created_ts)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			expires_ts = EXCLUDED.expires_ts,
			created_ts = EXCLUDED.created_ts
		RETURNING key, value, expires_ts, created_ts
	`

	entry := &store.CacheEntry{}
	err := d.db.QueryRowContext(ctx, stmt, upsert.Key, upsert.Value, upsert.ExpiresTs, now).Scan(
		&entry.Key,
		&entry.Value,
		&entry.ExpiresTs,
		&entry.CreatedTs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cache_entry: %w", err)
	}

	return entry, nil
}

func (d *DB) GetCacheEntry(ctx context.Context, find *store.FindCacheEntry) (*store.CacheEntry, error) {
	if find == nil || find.Key == "" {
		return nil, fmt.Errorf("key is required")
	}

	query := `SELECT key, value, expires_ts, created_ts FROM cache_entry WHERE key = ?`

	entry := &store.CacheEntry{}
	err := d.db.QueryRowContext(ctx, query, find.Key).Scan(
		&entry.Key,
		&entry.Value,
		&entry.ExpiresTs,
		&entry.CreatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get cache_entry: %w", err)
	}

	return entry, nil
}

func (d *DB) DeleteCacheEntry(ctx context.Context, delete *store.DeleteCacheEntry) error {
	if delete == nil || delete.Key == "" {
		return fmt.Errorf("key is required")
	}

	if _, err := d.db.ExecContext(ctx, `DELETE FROM cache_entry WHERE key = ?`, delete.Key); err != nil {
		return fmt.Errorf("failed to delete cache_entry: %w", err)
	}
	return nil
}

// ListCacheKeysByPattern matches keys with SQLite LIKE, which is
// case-insensitive for ASCII by default, mirroring ILIKE on postgres.
func (d *DB) ListCacheKeysByPattern(ctx context.Context, find *store.FindCacheKeys) ([]string, error) {
	if find == nil || find.Pattern == "" {
		return nil, fmt.Errorf("pattern is required")
	}

	rows, err := d.db.QueryContext(ctx, `SELECT key FROM cache_entry WHERE key LIKE ?`, find.Pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache_entry keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan cache_entry key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cache_entry keys: %w", err)
	}

	return keys, nil
}

func (d *DB) DeleteAllCacheEntries(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM cache_entry`); err != nil {
		return fmt.Errorf("failed to clear cache_entry: %w", err)
	}
	return nil
}

func (d *DB) GetCacheStats(ctx context.Context) (*store.CacheStats, error) {
	stats := &store.CacheStats{}

	now := time.Now().Unix()
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(CASE WHEN expires_ts <= ? THEN 1 END) FROM cache_entry`, now,
	).Scan(&stats.TotalEntries, &stats.ExpiredEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to get cache stats: %w", err)
	}

	// Approximate on-disk footprint of the whole database file.
	var pageCount, pageSize int64
	if err := d.db.QueryRowContext(ctx, `PRAGMA page_count`).Scan(&pageCount); err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if err := d.db.QueryRowContext(ctx, `PRAGMA page_size`).Scan(&pageSize); err != nil {
		return nil, fmt.Errorf("failed to get page size: %w", err)
	}
	stats.MemoryUsage = pageCount * pageSize

	return stats, nil
}
