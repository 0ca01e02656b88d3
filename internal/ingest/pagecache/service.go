// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pagecache serves the reader image list of a chapter.

Pages scraped less than one TTL ago are answered from the record store, or
from the optional mirror in front of it, without any outbound request.
Otherwise the chapter's reader page is scraped again and the cached rows are
replaced as a whole.
*/
package pagecache

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/taibuivan/komikflow/internal/catalog"
	"github.com/taibuivan/komikflow/internal/crawler/adapter"
	"github.com/taibuivan/komikflow/internal/ingest"
	"github.com/taibuivan/komikflow/internal/platform/apperr"
	"github.com/taibuivan/komikflow/internal/platform/ctxutil"
	"github.com/taibuivan/komikflow/internal/platform/validate"
	"github.com/taibuivan/komikflow/pkg/slice"
)

var tracer = otel.Tracer("komikflow/ingest/pagecache")

// Result is a chapter's page list. ServedFromCache is false right after a scrape.
type Result struct {
	ChapterID       string         `json:"chapterId"`
	ServedFromCache bool           `json:"cached"`
	Pages           []adapter.Page `json:"pages"`
}

// # Service

// Service resolves chapter pages through the cache.
type Service struct {
	store    *catalog.Store
	registry *adapter.Registry
	fetcher  ingest.Fetcher
	recorder *ingest.Recorder
	ttl      time.Duration
	mirror   Mirror
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a [Service].
type Option func(*Service)

// WithMirror puts mirror in front of the record store.
func WithMirror(mirror Mirror) Option {
	return func(service *Service) {
		service.mirror = mirror
	}
}

// WithClock sets the clock used for freshness checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(service *Service) {
		service.now = now
		service.recorder = ingest.NewRecorder(service.store.Logs, service.logger, now)
	}
}

// NewService constructs a [Service]. Cached pages older than ttl are scraped again.
func NewService(store *catalog.Store, registry *adapter.Registry, fetcher ingest.Fetcher, ttl time.Duration, logger *slog.Logger, opts ...Option) *Service {
	service := &Service{
		store:    store,
		registry: registry,
		fetcher:  fetcher,
		recorder: ingest.NewRecorder(store.Logs, logger, nil),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

/*
GetPages returns the pages of a chapter, scraping them when the cache is stale.

A failed scrape leaves the previous rows in place and records a FAILED
FETCH_CHAPTER row.

Parameters:
  - context: context.Context
  - chapterID: string (UUID)

Returns:
  - *Result: Pages ordered by page number
  - error: apperr.NotFound, ingest.ErrSourceNotConfigured, ingest.ErrNoPagesFound, fetch or parse failures
*/
func (service *Service) GetPages(context context.Context, chapterID string) (*Result, error) {
	context, span := tracer.Start(context, "pagecache.GetPages")
	defer span.End()
	span.SetAttributes(attribute.String("chapter_id", chapterID))

	validator := &validate.Validator{}
	validator.Required("chapterId", chapterID)
	if chapterID != "" {
		validator.UUID("chapterId", chapterID)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	logger := ctxutil.GetLogger(context, service.logger).With(slog.String("chapter_id", chapterID))
	now := service.now()

	// 1. Mirror
	if snapshot := service.recall(context, chapterID, logger); snapshot != nil && service.fresh(snapshot.CachedAt, now) {
		span.SetAttributes(attribute.String("cache", "mirror"))
		return &Result{ChapterID: chapterID, ServedFromCache: true, Pages: snapshot.Pages}, nil
	}

	// 2. Record store
	entries, err := service.store.Pages.ListByChapter(context, chapterID)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		cachedAt := oldest(entries)
		if service.fresh(cachedAt, now) {
			span.SetAttributes(attribute.String("cache", "store"))
			snapshot := &Snapshot{ChapterID: chapterID, Pages: toPages(entries), CachedAt: cachedAt}
			service.remember(context, snapshot, now, logger)
			return &Result{ChapterID: chapterID, ServedFromCache: true, Pages: snapshot.Pages}, nil
		}
	}

	// 3. Scrape
	span.SetAttributes(attribute.String("cache", "miss"))
	chapter, source, err := service.resolve(context, chapterID)
	if err != nil {
		return nil, err
	}

	pages, err := service.scrape(context, chapter, source, now)
	if err != nil {
		logger.Error("chapter_pages_failed", slog.String("url", *chapter.SourceURL), slog.Any("error", err))
		service.recorder.Failure(context, source.ID, *chapter.SourceURL, catalog.ActionFetchChapter, err)
		return nil, err
	}

	service.recorder.Success(context, source.ID, *chapter.SourceURL, catalog.ActionFetchChapter)
	service.remember(context, &Snapshot{ChapterID: chapterID, Pages: pages, CachedAt: now}, now, logger)

	logger.Info("chapter_pages_scraped", slog.Int("pages", len(pages)))
	return &Result{ChapterID: chapterID, Pages: pages}, nil
}

// resolve walks chapter, comic and source. Any missing link means the
// chapter cannot be scraped.
func (service *Service) resolve(context context.Context, chapterID string) (*catalog.Chapter, *catalog.Source, error) {
	chapter, err := service.store.Chapters.FindByID(context, chapterID)
	if err != nil {
		return nil, nil, err
	}
	if chapter.SourceURL == nil || *chapter.SourceURL == "" {
		return nil, nil, ingest.ErrSourceNotConfigured
	}

	comic, err := service.store.Comics.FindByID(context, chapter.ComicID)
	if err != nil {
		return nil, nil, notConfigured(err)
	}

	source, err := service.store.Sources.FindByID(context, comic.SourceID)
	if err != nil {
		return nil, nil, notConfigured(err)
	}
	return chapter, source, nil
}

// scrape fetches the reader page and replaces the cached rows.
func (service *Service) scrape(context context.Context, chapter *catalog.Chapter, source *catalog.Source, now time.Time) ([]adapter.Page, error) {
	sourceAdapter, err := service.registry.Lookup(source.Code)
	if err != nil {
		return nil, ingest.ErrSourceNotConfigured
	}

	pageURL := *chapter.SourceURL
	html, err := service.fetcher.Fetch(context, pageURL)
	if err != nil {
		return nil, err
	}

	pages, err := sourceAdapter.ExtractPages(html)
	if err != nil {
		return nil, &ingest.ParseError{URL: pageURL, Reason: err.Error()}
	}
	if len(pages) == 0 {
		return nil, ingest.ErrNoPagesFound
	}

	cachedAt := now.UTC()
	entries := slice.Map(pages, func(page adapter.Page) *catalog.PageCacheEntry {
		return &catalog.PageCacheEntry{
			ChapterID:      chapter.ID,
			PageNumber:     page.PageNumber,
			SourceImageURL: page.ImageURL,
			CachedAt:       cachedAt,
		}
	})

	if err := service.store.Pages.Replace(context, chapter.ID, entries); err != nil {
		return nil, err
	}
	return pages, nil
}

// # Mirror

func (service *Service) recall(context context.Context, chapterID string, logger *slog.Logger) *Snapshot {
	if service.mirror == nil {
		return nil
	}

	snapshot, found, err := service.mirror.Get(context, chapterID)
	if err != nil {
		logger.Warn("page_mirror_read_failed", slog.Any("error", err))
		return nil
	}
	if !found {
		return nil
	}
	return snapshot
}

// remember refreshes the mirror for the time the snapshot has left.
func (service *Service) remember(context context.Context, snapshot *Snapshot, now time.Time, logger *slog.Logger) {
	if service.mirror == nil {
		return
	}

	remaining := snapshot.CachedAt.Add(service.ttl).Sub(now)
	if remaining <= 0 {
		return
	}

	if err := service.mirror.Set(context, snapshot, remaining); err != nil {
		logger.Warn("page_mirror_write_failed", slog.Any("error", err))
	}
}

// # Helpers

func (service *Service) fresh(cachedAt, now time.Time) bool {
	return now.Sub(cachedAt) < service.ttl
}

// oldest returns the earliest cachedAt of entries.
func oldest(entries []*catalog.PageCacheEntry) time.Time {
	cachedAt := entries[0].CachedAt
	for _, entry := range entries[1:] {
		if entry.CachedAt.Before(cachedAt) {
			cachedAt = entry.CachedAt
		}
	}
	return cachedAt
}

func toPages(entries []*catalog.PageCacheEntry) []adapter.Page {
	return slice.Map(entries, func(entry *catalog.PageCacheEntry) adapter.Page {
		return adapter.Page{PageNumber: entry.PageNumber, ImageURL: entry.SourceImageURL}
	})
}

func notConfigured(err error) error {
	if appErr := apperr.As(err); appErr != nil && appErr.Code == "NOT_FOUND" {
		return ingest.ErrSourceNotConfigured
	}
	return err
}
