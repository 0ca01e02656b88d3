// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package app_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/komikflow/internal/app"
	"github.com/taibuivan/komikflow/internal/platform/config"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		StoreDriver:     driver,
		DatabaseURL:     ":memory:",
		FetchMinDelay:   2 * time.Second,
		FetchTimeout:    time.Second,
		PageCacheTTL:    24 * time.Hour,
		CatalogMaxPages: 5,
		ServiceName:     "komikflow-test",
	}
}

/*
TestNew_SQLite wires every service over a migrated in-memory store.
*/
func TestNew_SQLite(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	application, err := app.New(ctx, testConfig(config.DriverSQLite), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	// 1. Seeded sources are reachable through the admin service
	sources, err := application.Admin.ListSources(ctx)
	require.NoError(t, err)
	assert.Len(t, sources, 3)

	// 2. One readiness check for the store, none for Redis
	require.Len(t, application.Checks, 1)
	assert.Equal(t, config.DriverSQLite, application.Checks[0].Name)
	assert.NoError(t, application.Checks[0].Ping(ctx))

	assert.NotNil(t, application.CatalogSync)
	assert.NotNil(t, application.ComicSync)
	assert.NotNil(t, application.PageCache)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	_, err := app.New(context.Background(), testConfig("mysql"), logger)
	assert.ErrorContains(t, err, "unsupported store driver")
}
