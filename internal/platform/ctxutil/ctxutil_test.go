// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/komikflow/internal/platform/ctxutil"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies the lookup order: context logger, explicit
fallback, then the process default.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	serviceLogger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	requestLogger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	// 1. Nothing configured
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Fallback only
	assert.Same(t, serviceLogger, ctxutil.GetLogger(ctx, serviceLogger))

	// 3. Context wins over the fallback
	ctx = ctxutil.WithLogger(ctx, requestLogger)
	assert.Same(t, requestLogger, ctxutil.GetLogger(ctx, serviceLogger))
}
