package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"analyticsadmin/internal/analytics"
	"analyticsadmin/internal/cache"
	"analyticsadmin/internal/config"
	"analyticsadmin/internal/dashboard"
	"analyticsadmin/internal/google"
	"analyticsadmin/internal/logging"
	"analyticsadmin/internal/metrics"
	"analyticsadmin/internal/persistence"
	"analyticsadmin/internal/server"
)

const (
	loggerName      = "analyticsadmin"
	reportNamespace = "reports"
)

// app wires the configured stores, drivers and services for one command run
type app struct {
	config   *config.AppConfig
	db       *sql.DB
	cacheDB  *sql.DB
	store    cache.Store
	duckdb   *cache.DuckDBStore
	redis    *cache.RedisStore
	logs     io.Closer
	registry *analytics.Registry
	configs  *analytics.ConfigService
	embed    *analytics.EmbedCodeService
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	appConfig, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{config: appConfig}
	verbose, _ := cmd.Flags().GetBool("verbose")
	loggerType := "stdout"
	if appConfig.Logging.FileDir != "" {
		loggerType = "file"
	}
	a.logs, err = logging.InitGlobalLogger(logging.Config{
		LoggerName: loggerName,
		LoggerType: loggerType,
		FileDir:    appConfig.Logging.FileDir,
		MaxBackups: appConfig.Logging.MaxBackups,
		Debug:      appConfig.Logging.Debug || verbose,
	})
	if err != nil {
		return nil, err
	}

	metrics.Init(appConfig.Metrics.Enabled)

	a.db, err = persistence.Open(appConfig.DatabasePath)
	if err != nil {
		a.Close()
		return nil, err
	}

	if err := a.openCache(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.registry = analytics.NewRegistry()
	a.registry.Register(google.DriverName, func() (analytics.Driver, error) {
		return google.NewDriver(a.store,
			google.WithLookbackDays(appConfig.DefaultLookbackDays),
			google.WithReportTTL(appConfig.Cache.ReportTTL),
		), nil
	})

	repository, err := persistence.NewRepository(ctx, a.db, persistence.NewCodec(a.registry))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.configs = analytics.NewConfigService(a.registry, repository)
	a.embed = analytics.NewEmbedCodeService(a.registry, repository)

	return a, nil
}

func (a *app) openCache(ctx context.Context) error {
	switch a.config.Cache.Backend {
	case config.CacheBackendRedis:
		store, err := cache.NewRedisStore(a.config.Cache.RedisURL, reportNamespace)
		if err != nil {
			return err
		}
		a.redis = store
		a.store = store
	default:
		db := a.db
		if a.config.Cache.Path != a.config.DatabasePath {
			cacheDB, err := persistence.Open(a.config.Cache.Path)
			if err != nil {
				return fmt.Errorf("failed to open cache database: %w", err)
			}
			a.cacheDB = cacheDB
			db = cacheDB
		}
		store, err := cache.NewDuckDBStore(ctx, db, reportNamespace)
		if err != nil {
			return err
		}
		a.duckdb = store
		a.store = store
	}
	logging.Debugf("Report cache backend: %s", a.config.Cache.Backend)
	return nil
}

// module registers the widgets of every configured driver
func (a *app) module(ctx context.Context) (*dashboard.Module, error) {
	module := dashboard.NewModule("analytics")
	if err := a.configs.RegisterWidgets(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

func (a *app) services() server.Services {
	return server.Services{Registry: a.registry, Configs: a.configs, Embed: a.embed}
}

// Close releases the stores; it is safe to call more than once
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
		a.redis = nil
	}
	if a.cacheDB != nil {
		a.cacheDB.Close()
		a.cacheDB = nil
	}
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.logs != nil {
		a.logs.Close()
		a.logs = nil
	}
}

// mustApp builds the app or exits; callers defer Close
func mustApp(ctx context.Context, cmd *cobra.Command) *app {
	a, err := newApp(ctx, cmd)
	exitOnError("Failed to initialize", err)
	return a
}

func exitOnError(msg string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, color.Red.Sprintf("Error: %s: %v", msg, err))
	os.Exit(1)
}
