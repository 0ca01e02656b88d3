// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ingest holds what the three sync drivers share: the fetch contract,
the error taxonomy, the scrape-log recorder and comic persistence.

The drivers themselves live in the catalogsync, comicsync and pagecache
sub-packages.
*/
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/komikflow/internal/catalog"
	"github.com/taibuivan/komikflow/internal/crawler/adapter"
	"github.com/taibuivan/komikflow/internal/platform/apperr"
	"github.com/taibuivan/komikflow/pkg/pointer"
	"github.com/taibuivan/komikflow/pkg/slug"
)

// slugAttempts bounds the candidates tried for a colliding slug.
const slugAttempts = 5

// Fetcher retrieves a page's HTML. *fetch.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// # Scrape Log

// Recorder appends scrape-log rows. A failed write is logged and swallowed
// so that it never masks the outcome being recorded.
type Recorder struct {
	logs   catalog.ScrapeLogRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder builds a recorder. A nil now uses the wall clock.
func NewRecorder(logs catalog.ScrapeLogRepository, logger *slog.Logger, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{logs: logs, logger: logger, now: now}
}

// Success records a successful action.
func (recorder *Recorder) Success(context context.Context, sourceID, targetURL string, action catalog.ScrapeAction) {
	recorder.append(context, &catalog.ScrapeLog{
		SourceID:  sourceID,
		TargetURL: targetURL,
		Action:    action,
		Status:    catalog.StatusSuccess,
	})
}

// Failure records a failed action with the error's message.
func (recorder *Recorder) Failure(context context.Context, sourceID, targetURL string, action catalog.ScrapeAction, err error) {
	recorder.append(context, &catalog.ScrapeLog{
		SourceID:     sourceID,
		TargetURL:    targetURL,
		Action:       action,
		Status:       catalog.StatusFailed,
		ErrorMessage: pointer.To(Message(err)),
	})
}

func (recorder *Recorder) append(context context.Context, entry *catalog.ScrapeLog) {
	entry.CreatedAt = recorder.now().UTC()

	if err := recorder.logs.Append(context, entry); err != nil {
		recorder.logger.Error("scrape_log_write_failed",
			slog.String("action", string(entry.Action)),
			slog.String("target_url", entry.TargetURL),
			slog.Any("error", err),
		)
	}
}

// # Comic Persistence

// NewComic maps a scraped summary onto a comic record of source.
func NewComic(summary adapter.ComicSummary, sourceID string) *catalog.Comic {
	return &catalog.Comic{
		Title:       summary.Title,
		Description: summary.Description,
		CoverURL:    summary.CoverURL,
		Status:      pointer.NonEmpty(summary.Status),
		Genres:      summary.Genres,
		SourceID:    sourceID,
		SourceSlug:  summary.SourceSlug,
		SourceURL:   summary.SourceURL,
	}
}

/*
SaveComic upserts comic by its natural key.

A new comic gets a slug derived from its title. When that slug belongs to
another comic the source code is appended, then a counter.

Parameters:
  - context: context.Context
  - comics: catalog.ComicRepository
  - comic: *catalog.Comic (Slug is ignored)
  - sourceCode: string

Returns:
  - error: apperr.Conflict once every candidate is taken
*/
func SaveComic(context context.Context, comics catalog.ComicRepository, comic *catalog.Comic, sourceCode string) error {
	for _, candidate := range slug.Candidates(comic.Title, comic.SourceSlug, sourceCode, slugAttempts) {
		comic.Slug = candidate

		err := comics.UpsertBySourceKey(context, comic)
		if errors.Is(err, catalog.ErrSlugTaken) {
			continue
		}
		return err
	}

	return apperr.Conflict(fmt.Sprintf("no free slug for %q", comic.Title))
}
