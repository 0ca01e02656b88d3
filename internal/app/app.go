// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package app builds the ingestion core from a [config.Config].

Both entry points (the HTTP server and komikctl) share this wiring.

# Startup Sequence

 1. Tracing (no-op unless an OTLP endpoint is configured).
 2. Record store for STORE_DRIVER, migrated to the latest version.
 3. Optional Redis page mirror.
 4. Fetcher, adapter registry and the ingest services.
*/
package app

import (
	stdctx "context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/komikflow/internal/admin"
	"github.com/taibuivan/komikflow/internal/api"
	"github.com/taibuivan/komikflow/internal/catalog"
	"github.com/taibuivan/komikflow/internal/crawler/adapter"
	"github.com/taibuivan/komikflow/internal/crawler/fetch"
	"github.com/taibuivan/komikflow/internal/ingest/catalogsync"
	"github.com/taibuivan/komikflow/internal/ingest/comicsync"
	"github.com/taibuivan/komikflow/internal/ingest/pagecache"
	"github.com/taibuivan/komikflow/internal/platform/config"
	"github.com/taibuivan/komikflow/internal/platform/constants"
	"github.com/taibuivan/komikflow/internal/platform/migration"
	"github.com/taibuivan/komikflow/internal/platform/postgres"
	"github.com/taibuivan/komikflow/internal/platform/redis"
	"github.com/taibuivan/komikflow/internal/platform/sqlite"
	"github.com/taibuivan/komikflow/internal/platform/telemetry"
)

// # Logger

// NewLogger returns the JSON logger tagged with the app name.
func NewLogger(writer io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(logger)
	return logger
}

// # Application

// App holds the constructed services and the resources they share.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Store    *catalog.Store
	Registry *adapter.Registry
	Fetcher  *fetch.Fetcher

	CatalogSync *catalogsync.Service
	ComicSync   *comicsync.Service
	PageCache   *pagecache.Service
	Admin       *admin.Service

	// Checks feed the readiness probe.
	Checks []api.Check

	closers []func() error
}

/*
New opens every dependency and constructs the services.

Parameters:
  - context: context.Context (bounds the startup connections)
  - cfg: *config.Config
  - logger: *slog.Logger

Returns:
  - *App: Ready to serve; call Close when done
  - error: Connection, migration or telemetry failures
*/
func New(context stdctx.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	shutdownTracing, err := telemetry.Setup(context, cfg.OTLPEndpoint, cfg.ServiceName, logger)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() error {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), constants.ShutdownTimeout)
		defer cancel()
		return shutdownTracing(ctx)
	})

	if err := app.openStore(context); err != nil {
		app.Close()
		return nil, err
	}

	var pageOptions []pagecache.Option
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(context, cfg.RedisURL, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		app.Checks = append(app.Checks, api.Check{Name: "redis", Ping: func(ctx stdctx.Context) error {
			return redis.Ping(ctx, client)
		}})
		pageOptions = append(pageOptions, pagecache.WithMirror(pagecache.NewRedisMirror(client)))
	}

	app.Registry = adapter.DefaultRegistry()
	app.Fetcher = fetch.New(cfg.FetchMinDelay, logger, fetch.WithTimeout(cfg.FetchTimeout))

	app.CatalogSync = catalogsync.NewService(app.Store, app.Registry, app.Fetcher, cfg.CatalogMaxPages, logger)
	app.ComicSync = comicsync.NewService(app.Store, app.Registry, app.Fetcher, logger)
	app.PageCache = pagecache.NewService(app.Store, app.Registry, app.Fetcher, cfg.PageCacheTTL, logger, pageOptions...)
	app.Admin = admin.NewService(app.Store, app.Registry, logger)

	logger.Info("app_initialized",
		slog.String("store_driver", cfg.StoreDriver),
		slog.Bool("page_mirror", cfg.RedisURL != ""),
		slog.Duration("fetch_min_delay", cfg.FetchMinDelay),
	)
	return app, nil
}

// openStore connects the configured record store and applies migrations.
func (app *App) openStore(context stdctx.Context) error {
	cfg, logger := app.Config, app.Logger

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if err := migration.RunPostgres(cfg.DatabaseURL, logger); err != nil {
			return err
		}

		pool, err := postgres.NewPool(context, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, closePool(pool))
		app.Checks = append(app.Checks, api.Check{Name: config.DriverPostgres, Ping: func(ctx stdctx.Context) error {
			return postgres.Ping(ctx, pool)
		}})
		app.Store = catalog.NewPostgresStore(pool)

	case config.DriverSQLite:
		db, err := sqlite.Open(context, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, db.Close)

		if err := migration.RunSQLite(db, logger); err != nil {
			return err
		}
		app.Checks = append(app.Checks, api.Check{Name: config.DriverSQLite, Ping: pingSQLite(db)})
		app.Store = catalog.NewSQLiteStore(db)

	default:
		return fmt.Errorf("app: unsupported store driver %q", cfg.StoreDriver)
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil

	err := errors.Join(errs...)
	if err != nil {
		app.Logger.Error("app_close_failed", slog.Any("error", err))
	}
	return err
}

// # Helpers

func closePool(pool *pgxpool.Pool) func() error {
	return func() error {
		pool.Close()
		return nil
	}
}

func pingSQLite(db *sql.DB) func(stdctx.Context) error {
	return func(ctx stdctx.Context) error {
		return sqlite.Ping(ctx, db)
	}
}
