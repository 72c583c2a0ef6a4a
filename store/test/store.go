// Package test runs the store.Driver contract against real database drivers.
// SQLite is pure Go and always runs against a temp-dir database file; the
// postgres variant is gated on POSTGRES_TEST_DSN.
package test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratix-ai/stratix/internal/profile"
	"github.com/stratix-ai/stratix/store"
	"github.com/stratix-ai/stratix/store/db"
)

// NewSQLiteStore creates a migrated store backed by a fresh sqlite file.
func NewSQLiteStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	p := &profile.Profile{
		Mode:     "dev",
		Driver:   "sqlite",
		Data:     t.TempDir(),
		CacheTTL: 60,
	}
	require.NoError(t, p.Validate())

	return newTestingStore(ctx, t, p)
}

// NewPostgresStore creates a migrated store backed by the database named in
// POSTGRES_TEST_DSN, skipping the test when the variable is unset.
func NewPostgresStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN is not set; skipping postgres driver tests")
	}

	p := &profile.Profile{
		Mode:     "dev",
		Driver:   "postgres",
		DSN:      dsn,
		CacheTTL: 60,
	}
	require.NoError(t, p.Validate())

	return newTestingStore(ctx, t, p)
}

func newTestingStore(ctx context.Context, t *testing.T, p *profile.Profile) *store.Store {
	t.Helper()

	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)

	st := store.New(driver, p)
	t.Cleanup(func() {
		_ = st.Close()
	})

	require.NoError(t, st.Migrate(ctx))
	// A shared postgres database may carry rows from earlier runs.
	require.NoError(t, st.DeleteAllCacheEntries(ctx))
	return st
}
