// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalogsync crawls the paginated catalog of every active source and
upserts the comics it lists.

Sources are crawled one after another and pages strictly in order. A page
failure is recorded and ends that source only; the run as a whole still
succeeds and reports the failure in its error list.
*/
package catalogsync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/taibuivan/komikflow/internal/catalog"
	"github.com/taibuivan/komikflow/internal/crawler/adapter"
	"github.com/taibuivan/komikflow/internal/ingest"
	"github.com/taibuivan/komikflow/internal/platform/ctxutil"
)

var tracer = otel.Tracer("komikflow/ingest/catalogsync")

// AllSources selects every active source.
const AllSources = "ALL"

// Termination says why the crawl of one source stopped.
type Termination string

const (
	EndOfPagination Termination = "end_of_pagination"
	EmptyPage       Termination = "empty_page"
	PageLimit       Termination = "page_limit"
	Failed          Termination = "failed"
	Unsupported     Termination = "unsupported"
)

// Request selects the sources and the page budget of a run.
type Request struct {
	SourceCode string `json:"sourceCode"`
	MaxPages   int    `json:"maxPages"`
}

// SourceOutcome is the result of crawling one source.
type SourceOutcome struct {
	Code          string      `json:"code"`
	PagesCrawled  int         `json:"pagesCrawled"`
	ComicsWritten int         `json:"comicsWritten"`
	Termination   Termination `json:"termination"`
	Err           error       `json:"-"`
}

// Result is the outcome of a run.
type Result struct {
	Success     bool            `json:"success"`
	TotalComics int             `json:"totalComics"`
	Errors      []string        `json:"errors,omitempty"`
	Sources     []SourceOutcome `json:"-"`
}

// # Service

// Service drives catalog crawls.
type Service struct {
	store    *catalog.Store
	registry *adapter.Registry
	fetcher  ingest.Fetcher
	recorder *ingest.Recorder
	maxPages int
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

// NewService constructs a [Service]. maxPages is the default page budget per source.
func NewService(store *catalog.Store, registry *adapter.Registry, fetcher ingest.Fetcher, maxPages int, logger *slog.Logger, opts ...Option) *Service {
	service := &Service{
		store:    store,
		registry: registry,
		fetcher:  fetcher,
		recorder: ingest.NewRecorder(store.Logs, logger, nil),
		maxPages: maxPages,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

/*
Run crawls the selected active sources.

Parameters:
  - context: context.Context
  - request: Request (SourceCode "" or "ALL" for every source, MaxPages <= 0 for the default)

Returns:
  - *Result: Totals and per-page error messages
  - error: ingest.ErrNoActiveSources, or a storage failure listing sources
*/
func (service *Service) Run(context context.Context, request Request) (*Result, error) {
	context, span := tracer.Start(context, "catalogsync.Run")
	defer span.End()

	logger := ctxutil.GetLogger(context, service.logger)

	sources, err := service.store.Sources.ListActive(context)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, ingest.ErrNoActiveSources
	}

	maxPages := request.MaxPages
	if maxPages <= 0 {
		maxPages = service.maxPages
	}

	filter := strings.ToUpper(strings.TrimSpace(request.SourceCode))
	span.SetAttributes(attribute.String("source_code", filter), attribute.Int("max_pages", maxPages))
	logger.Info("catalog_sync_started", slog.String("source_code", filter), slog.Int("max_pages", maxPages))

	result := &Result{Success: true}
	for _, source := range sources {
		if filter != "" && filter != AllSources && source.Code != filter {
			continue
		}

		outcome := service.crawl(context, source, maxPages, result, logger)
		result.TotalComics += outcome.ComicsWritten
		result.Sources = append(result.Sources, outcome)

		logger.Info("catalog_source_finished",
			slog.String("source_code", outcome.Code),
			slog.Int("pages", outcome.PagesCrawled),
			slog.Int("comics", outcome.ComicsWritten),
			slog.String("termination", string(outcome.Termination)),
		)
	}

	span.SetAttributes(attribute.Int("total_comics", result.TotalComics))
	logger.Info("catalog_sync_completed",
		slog.Int("total_comics", result.TotalComics),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// crawl walks one source's catalog until a stop condition.
func (service *Service) crawl(context context.Context, source *catalog.Source, maxPages int, result *Result, logger *slog.Logger) SourceOutcome {
	outcome := SourceOutcome{Code: source.Code, Termination: PageLimit}

	sourceAdapter, err := service.registry.Lookup(source.Code)
	if err != nil {
		logger.Warn("catalog_source_unsupported", slog.String("source_code", source.Code))
		outcome.Termination = Unsupported
		outcome.Err = err
		return outcome
	}

	for page := 1; page <= maxPages; page++ {
		pageURL := sourceAdapter.ListingURL(source.BaseURL, page)

		listing, err := service.fetchListing(context, sourceAdapter, pageURL)
		if err != nil {
			logger.Error("catalog_page_failed",
				slog.String("source_code", source.Code),
				slog.Int("page", page),
				slog.String("url", pageURL),
				slog.Any("error", err),
			)
			service.recorder.Failure(context, source.ID, pageURL, catalog.ActionFetchComicList, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s page %d: %s", source.Code, page, ingest.Message(err)))

			outcome.Termination = Failed
			outcome.Err = err
			return outcome
		}

		if len(listing.Comics) == 0 {
			outcome.Termination = EmptyPage
			return outcome
		}

		outcome.PagesCrawled++
		outcome.ComicsWritten += service.saveListing(context, source, listing, result, logger)
		service.recorder.Success(context, source.ID, pageURL, catalog.ActionFetchComicList)

		if !listing.HasNextPage {
			outcome.Termination = EndOfPagination
			return outcome
		}
	}

	return outcome
}

func (service *Service) fetchListing(context context.Context, sourceAdapter adapter.Adapter, pageURL string) (*adapter.Listing, error) {
	html, err := service.fetcher.Fetch(context, pageURL)
	if err != nil {
		return nil, err
	}
	return sourceAdapter.ExtractListing(html, pageURL)
}

// saveListing upserts every comic of a page and returns how many were written.
func (service *Service) saveListing(context context.Context, source *catalog.Source, listing *adapter.Listing, result *Result, logger *slog.Logger) int {
	written := 0
	for _, summary := range listing.Comics {
		comic := ingest.NewComic(summary, source.ID)

		if err := ingest.SaveComic(context, service.store.Comics, comic, source.Code); err != nil {
			logger.Error("catalog_comic_save_failed",
				slog.String("source_code", source.Code),
				slog.String("title", summary.Title),
				slog.Any("error", err),
			)
			result.Errors = append(result.Errors, fmt.Sprintf("%s comic %q: %s", source.Code, summary.Title, ingest.Message(err)))
			continue
		}
		written++
	}
	return written
}
