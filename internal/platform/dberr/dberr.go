// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors for both record-store drivers.
package dberr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/taibuivan/komikflow/internal/platform/apperr"
)

// IsNoRows reports whether err means the query matched nothing, for pgx and database/sql alike.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// Wrap inspects a database error and converts it into an [apperr.AppError].
//
// Missing rows become a 404 for resource, everything else a 500 whose cause
// keeps the action for the server log.
func Wrap(err error, resource, action string) error {
	if err == nil {
		return nil
	}

	if IsNoRows(err) {
		return apperr.NotFound(resource)
	}

	if apperr.As(err) != nil {
		return err
	}

	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// UniqueViolation reports whether err is a unique-constraint failure and,
// if so, which constraint fired.
//
// PostgreSQL reports the constraint name (e.g. "comic_slug_key"); SQLite
// reports the column list (e.g. "comic.slug").
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		const prefix = "UNIQUE constraint failed: "
		message := liteErr.Error()
		if index := strings.Index(message, prefix); index >= 0 {
			rest := message[index+len(prefix):]
			if end := strings.IndexAny(rest, " ()"); end >= 0 {
				rest = rest[:end]
			}
			return rest, true
		}
		return "", true
	}

	return "", false
}
