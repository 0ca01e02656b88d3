// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package admin is the operator surface of the ingestion core: source
// configuration, the scrape-log feed and catalog totals.
package admin

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/komikflow/internal/catalog"
	"github.com/taibuivan/komikflow/internal/crawler/adapter"
	"github.com/taibuivan/komikflow/internal/platform/validate"
)

// Field names used in validation errors.
const (
	FieldCode    = "code"
	FieldName    = "name"
	FieldBaseURL = "baseUrl"
)

// # Service Layer

// Service manages sources and reads the audit trail.
type Service struct {
	store    *catalog.Store
	registry *adapter.Registry
	logger   *slog.Logger
}

// NewService constructs a new admin [Service].
func NewService(store *catalog.Store, registry *adapter.Registry, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		registry: registry,
		logger:   logger,
	}
}

// # Sources

// ListSources returns every configured source ordered by code.
func (service *Service) ListSources(context context.Context) ([]*catalog.Source, error) {
	return service.store.Sources.List(context)
}

/*
UpsertSource creates a source or updates the one with the same code.

Only codes with a registered adapter are accepted, since nothing else could
ever be crawled.

Parameters:
  - context: context.Context
  - source: *catalog.Source (ID and timestamps are filled on return)

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) UpsertSource(context context.Context, source *catalog.Source) error {
	source.Code = strings.ToUpper(strings.TrimSpace(source.Code))
	source.Name = strings.TrimSpace(source.Name)
	source.BaseURL = strings.TrimSpace(source.BaseURL)

	validator := &validate.Validator{}
	validator.SourceCode(FieldCode, source.Code)
	validator.Required(FieldName, source.Name).MaxLen(FieldName, source.Name, 100)
	validator.HTTPURL(FieldBaseURL, source.BaseURL)
	if !validator.HasErrors() {
		_, err := service.registry.Lookup(source.Code)
		validator.Custom(FieldCode, err != nil, "No adapter for this source")
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.store.Sources.Upsert(context, source); err != nil {
		return err
	}

	service.logger.Info("source_upserted",
		slog.String("source_code", source.Code),
		slog.String("base_url", source.BaseURL),
		slog.Bool("is_active", source.IsActive),
	)
	return nil
}

// SetSourceActive enables or disables a source by code.
func (service *Service) SetSourceActive(context context.Context, code string, active bool) (*catalog.Source, error) {
	source, err := service.store.Sources.SetActive(context, strings.ToUpper(strings.TrimSpace(code)), active)
	if err != nil {
		return nil, err
	}

	service.logger.Info("source_toggled",
		slog.String("source_code", source.Code),
		slog.Bool("is_active", source.IsActive),
	)
	return source, nil
}

// # Activity

/*
RecentLogs returns the newest scrape-log rows first.

Parameters:
  - context: context.Context
  - limit, offset: int

Returns:
  - []*catalog.ScrapeLogView: Rows joined with their source
  - int: Total row count
  - error: Retrieval errors
*/
func (service *Service) RecentLogs(context context.Context, limit, offset int) ([]*catalog.ScrapeLogView, int, error) {
	return service.store.Logs.ListRecent(context, limit, offset)
}

// Stats returns catalog totals.
func (service *Service) Stats(context context.Context) (*catalog.Stats, error) {
	return service.store.Stats.Stats(context)
}
