package db

import (
	"github.com/pkg/errors"

	"github.com/stratix-ai/stratix/internal/profile"
	"github.com/stratix-ai/stratix/store"
	"github.com/stratix-ai/stratix/store/db/postgres"
	"github.com/stratix-ai/stratix/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
//
// PostgreSQL is the production driver; the cache table relies on its ILIKE
// pattern matching and pg_total_relation_size stats. SQLite covers
// development and single-node deployments.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
