// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package comicsync refreshes one comic and its chapter list from the
// source's detail page.
package comicsync

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/taibuivan/komikflow/internal/catalog"
	"github.com/taibuivan/komikflow/internal/crawler/adapter"
	"github.com/taibuivan/komikflow/internal/ingest"
	"github.com/taibuivan/komikflow/internal/platform/apperr"
	"github.com/taibuivan/komikflow/internal/platform/ctxutil"
	"github.com/taibuivan/komikflow/internal/platform/validate"
	"github.com/taibuivan/komikflow/pkg/pointer"
	"github.com/taibuivan/komikflow/pkg/slice"
)

var tracer = otel.Tracer("komikflow/ingest/comicsync")

// Request names the detail page to sync. ComicID targets an existing comic.
type Request struct {
	SourceURL  string `json:"sourceUrl"`
	SourceCode string `json:"sourceCode"`
	ComicID    string `json:"komikId,omitempty"`
}

// Result reports the synced comic and how many chapters were written.
type Result struct {
	Success         bool   `json:"success"`
	ComicID         string `json:"komikId"`
	ChaptersWritten int    `json:"chaptersCount"`
}

// # Service

// Service syncs comic detail pages.
type Service struct {
	store    *catalog.Store
	registry *adapter.Registry
	fetcher  ingest.Fetcher
	recorder *ingest.Recorder
	logger   *slog.Logger
}

// Option configures a [Service].
type Option func(*Service)

// WithClock sets the clock used for scrape-log timestamps.
func WithClock(now func() time.Time) Option {
	return func(service *Service) {
		service.recorder = ingest.NewRecorder(service.store.Logs, service.logger, now)
	}
}

// NewService constructs a [Service].
func NewService(store *catalog.Store, registry *adapter.Registry, fetcher ingest.Fetcher, logger *slog.Logger, opts ...Option) *Service {
	service := &Service{
		store:    store,
		registry: registry,
		fetcher:  fetcher,
		recorder: ingest.NewRecorder(store.Logs, logger, nil),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

/*
Run scrapes a detail page and writes the comic and its chapters.

Once the source is resolved exactly one SYNC_COMIC row is recorded, FAILED
rows carrying the error message.

Parameters:
  - context: context.Context
  - request: Request

Returns:
  - *Result: Comic ID and the number of distinct chapters written
  - error: Validation, ingest.ErrSourceNotFound, fetch or parse failures
*/
func (service *Service) Run(context context.Context, request Request) (*Result, error) {
	context, span := tracer.Start(context, "comicsync.Run")
	defer span.End()

	request.SourceCode = strings.ToUpper(strings.TrimSpace(request.SourceCode))
	request.SourceURL = strings.TrimSpace(request.SourceURL)

	validator := &validate.Validator{}
	validator.Required("sourceUrl", request.SourceURL)
	validator.Required("sourceCode", request.SourceCode)
	if request.SourceURL != "" {
		validator.HTTPURL("sourceUrl", request.SourceURL)
	}
	if request.ComicID != "" {
		validator.UUID("komikId", request.ComicID)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("source_code", request.SourceCode), attribute.String("url", request.SourceURL))
	logger := ctxutil.GetLogger(context, service.logger).With(
		slog.String("source_code", request.SourceCode),
		slog.String("url", request.SourceURL),
	)

	source, err := service.activeSource(context, request.SourceCode)
	if err != nil {
		return nil, err
	}

	result, err := service.sync(context, source, request)
	if err != nil {
		logger.Error("comic_sync_failed", slog.Any("error", err))
		service.recorder.Failure(context, source.ID, request.SourceURL, catalog.ActionSyncComic, err)
		return nil, err
	}

	service.recorder.Success(context, source.ID, request.SourceURL, catalog.ActionSyncComic)
	logger.Info("comic_synced",
		slog.String("comic_id", result.ComicID),
		slog.Int("chapters", result.ChaptersWritten),
	)
	return result, nil
}

// activeSource resolves code to an active source.
func (service *Service) activeSource(context context.Context, code string) (*catalog.Source, error) {
	source, err := service.store.Sources.FindByCode(context, code)
	if err != nil {
		if appErr := apperr.As(err); appErr != nil && appErr.Code == "NOT_FOUND" {
			return nil, ingest.ErrSourceNotFound
		}
		return nil, err
	}
	if !source.IsActive {
		return nil, ingest.ErrSourceNotFound
	}
	return source, nil
}

func (service *Service) sync(context context.Context, source *catalog.Source, request Request) (*Result, error) {
	sourceAdapter, err := service.registry.Lookup(source.Code)
	if err != nil {
		return nil, err
	}

	html, err := service.fetcher.Fetch(context, request.SourceURL)
	if err != nil {
		return nil, err
	}

	detail, err := sourceAdapter.ExtractDetail(html, request.SourceURL)
	if err != nil {
		return nil, &ingest.ParseError{URL: request.SourceURL, Reason: err.Error()}
	}
	if detail.Comic.Title == "" {
		return nil, &ingest.ParseError{URL: request.SourceURL, Reason: "comic title not found"}
	}

	comic := ingest.NewComic(detail.Comic, source.ID)
	if request.ComicID != "" {
		comic.ID = request.ComicID
		err = service.store.Comics.UpdateScraped(context, comic)
	} else {
		err = ingest.SaveComic(context, service.store.Comics, comic, source.Code)
	}
	if err != nil {
		return nil, err
	}

	chapters := slice.Map(
		slice.UniqueBy(detail.Chapters, func(chapter adapter.ChapterSummary) float64 { return chapter.ChapterNumber }),
		func(chapter adapter.ChapterSummary) *catalog.Chapter {
			return &catalog.Chapter{
				ComicID:         comic.ID,
				ChapterNumber:   chapter.ChapterNumber,
				Title:           chapter.Title,
				SourceChapterID: pointer.NonEmpty(chapter.SourceChapterID),
				SourceURL:       pointer.NonEmpty(chapter.SourceURL),
			}
		},
	)

	if err := service.store.Chapters.UpsertByNumber(context, chapters); err != nil {
		return nil, err
	}

	return &Result{Success: true, ComicID: comic.ID, ChaptersWritten: len(chapters)}, nil
}
