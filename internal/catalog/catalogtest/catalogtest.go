// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package catalogtest provides a migrated in-memory record store for tests.
package catalogtest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/komikflow/internal/catalog"
	"github.com/taibuivan/komikflow/internal/platform/migration"
	"github.com/taibuivan/komikflow/internal/platform/sqlite"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// NewStore opens a fresh in-memory SQLite database, applies the migrations
// and closes it when the test ends. The seeded sources are all inactive.
func NewStore(t testing.TB) *catalog.Store {
	t.Helper()

	db, err := sqlite.Open(context.Background(), ":memory:", Logger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migration.RunSQLite(db, Logger()))
	return catalog.NewSQLiteStore(db)
}

// ActivateSource points a seeded source at baseURL and marks it active.
func ActivateSource(t testing.TB, store *catalog.Store, code, baseURL string) *catalog.Source {
	t.Helper()

	source, err := store.Sources.FindByCode(context.Background(), code)
	require.NoError(t, err)

	source.BaseURL = baseURL
	source.IsActive = true
	require.NoError(t, store.Sources.Upsert(context.Background(), source))
	return source
}
