package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stratix-ai/stratix/cache"
	"github.com/stratix-ai/stratix/internal/profile"
	"github.com/stratix-ai/stratix/store"
	"github.com/stratix-ai/stratix/store/db"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "stratix-cache",
	Short:   "Ops tool for the Stratix cache table",
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().String("mode", "dev", `mode of the service, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("data", "", "data directory (sqlite)")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database connection string")
	rootCmd.PersistentFlags().Int("ttl", 0, "default cache TTL in seconds")

	for _, flag := range []string{"mode", "data", "driver", "dsn", "ttl"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("stratix")
	viper.AutomaticEnv()

	rootCmd.AddCommand(getCmd, setCmd, deleteCmd, clearCmd, invalidateCmd, statsCmd)
}

// newCacheService builds a cache service from flags and STRATIX_* env vars.
// The returned close func releases the store.
func newCacheService(ctx context.Context) (*cache.Service, func(), error) {
	p := &profile.Profile{
		Mode:     viper.GetString("mode"),
		Data:     viper.GetString("data"),
		Driver:   viper.GetString("driver"),
		DSN:      viper.GetString("dsn"),
		Version:  version,
		CacheTTL: viper.GetInt("ttl"),
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, nil, err
	}

	st := store.New(dbDriver, p)
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}

	service := cache.NewService(st, cache.Config{
		DefaultTTL: time.Duration(p.CacheTTL) * time.Second,
	})
	closeFunc := func() {
		if err := st.Close(); err != nil {
			slog.Error("failed to close store", slog.String("error", err.Error()))
		}
	}
	return service, closeFunc, nil
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the cached value for a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		service, closeFunc, err := newCacheService(ctx)
		if err != nil {
			return err
		}
		defer closeFunc()

		value, ok, err := service.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("(absent)")
			return nil
		}
		fmt.Println(string(value))
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <key> <json-value>",
	Short: "Store a JSON value under a key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		service, closeFunc, err := newCacheService(ctx)
		if err != nil {
			return err
		}
		defer closeFunc()

		if !json.Valid([]byte(args[1])) {
			return fmt.Errorf("value is not valid JSON")
		}
		ttl, err := cmd.Flags().GetInt("entry-ttl")
		if err != nil {
			return err
		}
		return service.Set(ctx, args[0], []byte(args[1]), time.Duration(ttl)*time.Second)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove the entry for a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		service, closeFunc, err := newCacheService(ctx)
		if err != nil {
			return err
		}
		defer closeFunc()

		return service.Delete(ctx, args[0])
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		service, closeFunc, err := newCacheService(ctx)
		if err != nil {
			return err
		}
		defer closeFunc()

		return service.Clear(ctx)
	},
}

var invalidateCmd = &cobra.Command{
	Use:   "invalidate <pattern>",
	Short: `Remove all entries matching a key pattern, e.g. "brand:123:*"`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		service, closeFunc, err := newCacheService(ctx)
		if err != nil {
			return err
		}
		defer closeFunc()

		return service.InvalidatePattern(ctx, args[0])
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print cache table statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		service, closeFunc, err := newCacheService(ctx)
		if err != nil {
			return err
		}
		defer closeFunc()

		stats, err := service.GetStats(ctx)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func main() {
	setCmd.Flags().Int("entry-ttl", 0, "TTL for this entry in seconds (0 uses the default)")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
