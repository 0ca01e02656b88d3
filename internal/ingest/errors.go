// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/taibuivan/komikflow/internal/crawler/adapter"
	"github.com/taibuivan/komikflow/internal/crawler/fetch"
	"github.com/taibuivan/komikflow/internal/platform/apperr"
)

// # Domain Errors

var (
	// ErrSourceNotFound means the requested source code is unknown or inactive.
	ErrSourceNotFound = &apperr.AppError{
		Code:       "SOURCE_NOT_FOUND",
		Message:    "Source not found or inactive",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrSourceNotConfigured means a chapter cannot be traced back to a scrapeable source.
	ErrSourceNotConfigured = &apperr.AppError{
		Code:       "SOURCE_NOT_CONFIGURED",
		Message:    "Source not configured",
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	// ErrNoPagesFound means the chapter reader page yielded no images.
	ErrNoPagesFound = &apperr.AppError{
		Code:       "NO_PAGES_FOUND",
		Message:    "No pages found",
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	// ErrNoActiveSources means a catalog sync found nothing to crawl.
	ErrNoActiveSources = &apperr.AppError{
		Code:       "NO_ACTIVE_SOURCES",
		Message:    "No active sources found",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
)

// ParseError reports a page whose markup lacks a required element.
type ParseError struct {
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.URL, e.Reason)
}

/*
Classify converts a scrape failure into an [apperr.AppError] for the client.

Fetch failures become 502 and parse failures 422, both keeping the triggering
message. Existing AppErrors and context errors pass through unchanged.

Parameters:
  - err: error

Returns:
  - error: nil when err is nil
*/
func Classify(err error) error {
	if err == nil {
		return nil
	}

	if apperr.As(err) != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var networkErr *fetch.NetworkError
	var statusErr *fetch.HTTPStatusError
	if errors.As(err, &networkErr) || errors.As(err, &statusErr) {
		return apperr.BadGateway(err)
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		appErr := apperr.Unprocessable("PARSE_ERROR", parseErr.Error())
		appErr.Cause = err
		return appErr
	}

	if errors.Is(err, adapter.ErrUnsupportedSource) {
		return ErrSourceNotConfigured
	}

	return apperr.Internal(err)
}

// Message returns the text recorded in the scrape log for err.
//
// Internal errors keep their cause rather than the generic client message.
func Message(err error) string {
	if appErr := apperr.As(err); appErr != nil && appErr.Cause != nil && appErr.Code == "INTERNAL_ERROR" {
		return appErr.Cause.Error()
	}
	return err.Error()
}
