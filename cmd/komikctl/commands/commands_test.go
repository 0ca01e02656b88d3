// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/komikflow/cmd/komikctl/commands"
	"github.com/taibuivan/komikflow/internal/catalog"
	"github.com/taibuivan/komikflow/internal/ingest"
	"github.com/taibuivan/komikflow/internal/platform/apperr"
)

// run executes komikctl against a SQLite file and returns its stdout.
func run(t *testing.T, database string, args ...string) (string, error) {
	t.Helper()

	root := commands.NewRootCommand()
	stdout := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--driver", "sqlite", "--database-url", database}, args...))

	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func isolate(t *testing.T) string {
	t.Setenv("REDIS_URL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	return filepath.Join(t.TempDir(), "komikflow.db")
}

/*
TestSources lists the seeded sources and persists a toggle across invocations.
*/
func TestSources(t *testing.T) {
	database := isolate(t)

	// 1. Seeded sources start inactive
	out, err := run(t, database, "sources", "list")
	require.NoError(t, err)

	var sources []catalog.Source
	require.NoError(t, json.Unmarshal([]byte(out), &sources))
	require.Len(t, sources, 3)
	for _, source := range sources {
		assert.False(t, source.IsActive, source.Code)
	}

	// 2. Lower-case codes are accepted
	out, err = run(t, database, "sources", "set-active", "manhwalist")
	require.NoError(t, err)

	var toggled catalog.Source
	require.NoError(t, json.Unmarshal([]byte(out), &toggled))
	assert.Equal(t, "MANHWALIST", toggled.Code)
	assert.True(t, toggled.IsActive)

	// 3. A fresh process sees the change
	out, err = run(t, database, "sources", "list")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &sources))

	active := 0
	for _, source := range sources {
		if source.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestMigrate(t *testing.T) {
	out, err := run(t, isolate(t), "migrate")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"migrated","driver":"sqlite"}`, out)
}

/*
TestFailures covers the operations that fail before any request leaves the process.
*/
func TestFailures(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"catalog_without_active_sources", []string{"catalog"}, ingest.ErrNoActiveSources.Code},
		{"comic_without_url", []string{"comic", "--source", "MANHWALIST"}, "VALIDATION_ERROR"},
		{"comic_inactive_source", []string{"comic", "--source", "MANHWALIST", "--url", "https://manhwalist.com/manga/x/"}, ingest.ErrSourceNotFound.Code},
		{"pages_invalid_chapter", []string{"pages", "--chapter", "not-a-uuid"}, "VALIDATION_ERROR"},
		{"toggle_unknown_source", []string{"sources", "set-active", "MANGADEX"}, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, isolate(t), tt.args...)
			require.Error(t, err)
			assert.Empty(t, out)

			appErr := apperr.As(err)
			require.NotNil(t, appErr, err.Error())
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}
