package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the cache service.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Data is the data directory
	Data string
	// DSN points to where stratix stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of the service
	Version string

	// CacheTTL is the default time-to-live for cache entries, in seconds.
	// Every cache operation may override it per call.
	CacheTTL int
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// defaultCacheTTL is used when STRATIX_CACHE_TTL is unset or invalid.
const defaultCacheTTL = 300

// FromEnv loads configuration from STRATIX_* environment variables.
func (p *Profile) FromEnv() {
	p.Mode = getEnvOrDefault("STRATIX_MODE", p.Mode)
	p.Data = getEnvOrDefault("STRATIX_DATA", p.Data)
	p.Driver = getEnvOrDefault("STRATIX_DRIVER", p.Driver)
	p.DSN = getEnvOrDefault("STRATIX_DSN", p.DSN)

	// Keep a caller-supplied TTL (e.g. from a CLI flag); the env var still
	// wins when set, like the fields above.
	if p.CacheTTL <= 0 {
		p.CacheTTL = defaultCacheTTL
	}
	if raw := os.Getenv("STRATIX_CACHE_TTL"); raw != "" {
		ttl, err := strconv.Atoi(raw)
		if err != nil || ttl <= 0 {
			slog.Warn("invalid STRATIX_CACHE_TTL, using default", slog.String("value", raw), slog.Int("default", defaultCacheTTL))
		} else {
			p.CacheTTL = ttl
		}
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}

	if p.CacheTTL <= 0 {
		p.CacheTTL = defaultCacheTTL
	}

	if p.Driver == "sqlite" {
		if p.Data == "" {
			p.Data = "."
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			dbFile := fmt.Sprintf("stratix_%s.db", p.Mode)
			p.DSN = filepath.Join(dataDir, dbFile)
		}
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("STRATIX_DSN is required for the postgres driver")
	}

	return nil
}
