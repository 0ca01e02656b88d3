// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Komikflow ingest HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Build the application (store, migrations, mirror, services).
//  4. Wire HTTP handlers.
//  5. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/komikflow/internal/admin"
	"github.com/taibuivan/komikflow/internal/api"
	"github.com/taibuivan/komikflow/internal/app"
	"github.com/taibuivan/komikflow/internal/ingest/catalogsync"
	"github.com/taibuivan/komikflow/internal/ingest/comicsync"
	"github.com/taibuivan/komikflow/internal/ingest/pagecache"
	"github.com/taibuivan/komikflow/internal/platform/config"
	"github.com/taibuivan/komikflow/internal/platform/constants"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := app.NewLogger(os.Stdout, false)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = app.NewLogger(os.Stdout, true)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
	)

	// ── 3. Application ────────────────────────────────────────────────────
	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	application, err := app.New(startupCtx, cfg, log)
	startupCancel()
	must(log, err, "build application")
	defer application.Close()

	// ── 4. HTTP Handlers ──────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(log, application.Checks...)

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		CatalogSync: catalogsync.NewHandler(application.CatalogSync),
		ComicSync:   comicsync.NewHandler(application.ComicSync),
		PageCache:   pagecache.NewHandler(application.PageCache),
		Admin:       admin.NewHandler(application.Admin),
	})

	// ── 5. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
	}

	log.Info("server_stopped")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup every error is returned.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
