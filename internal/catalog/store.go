// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
)

// ErrSlugTaken is returned when a new comic's slug already belongs to another comic.
var ErrSlugTaken = errors.New("catalog: slug already taken")

// # Source Data Access

// SourceRepository defines the data access contract for sources.
type SourceRepository interface {

	/*
		FindByCode returns the source with the given code.

		Parameters:
		  - context: context.Context
		  - code: string (e.g. "KOMIKCAST")

		Returns:
		  - *Source: The source
		  - error: apperr.NotFound if missing
	*/
	FindByCode(context context.Context, code string) (*Source, error)

	// FindByID returns the source with the given ID, or apperr.NotFound.
	FindByID(context context.Context, id string) (*Source, error)

	// List returns every source ordered by code.
	List(context context.Context) ([]*Source, error)

	// ListActive returns the active sources ordered by code.
	ListActive(context context.Context) ([]*Source, error)

	/*
		Upsert creates a source or updates the one with the same code.

		The ID and timestamps of source are filled from the stored row.

		Parameters:
		  - context: context.Context
		  - source: *Source

		Returns:
		  - error: Storage failure
	*/
	Upsert(context context.Context, source *Source) error

	// SetActive toggles a source by code and returns the updated row.
	SetActive(context context.Context, code string, active bool) (*Source, error)
}

// # Comic Data Access

// ComicRepository defines the data access contract for comics.
type ComicRepository interface {

	/*
		UpsertBySourceKey inserts comic or updates the row with the same
		(sourceId, sourceSlug).

		An existing row keeps its ID and slug. Title, cover, status, genres and
		source URL are always overwritten, empty values included; a missing
		description leaves the stored one untouched since listings carry none.
		ID, Slug and CreatedAt are filled from the stored row.

		Parameters:
		  - context: context.Context
		  - comic: *Comic (Slug is the candidate for a new row)

		Returns:
		  - error: ErrSlugTaken when the candidate slug belongs to another comic
	*/
	UpsertBySourceKey(context context.Context, comic *Comic) error

	/*
		UpdateScraped overwrites the scraped metadata of an existing comic.

		Title, description, cover, status and genres are overwritten as given;
		the slug and the source key never change.

		Returns:
		  - error: apperr.NotFound if comic.ID is unknown
	*/
	UpdateScraped(context context.Context, comic *Comic) error

	// FindByID returns the comic with the given ID, or apperr.NotFound.
	FindByID(context context.Context, id string) (*Comic, error)

	// FindBySourceKey returns the comic with the given natural key, or apperr.NotFound.
	FindBySourceKey(context context.Context, sourceID, sourceSlug string) (*Comic, error)
}

// # Chapter Data Access

// ChapterRepository defines the data access contract for chapters.
type ChapterRepository interface {

	/*
		UpsertByNumber writes chapters in one transaction, matching existing
		rows on (comicId, chapterNumber).

		Existing rows keep their ID; title and source fields are overwritten.
		Each chapter's ID and CreatedAt are filled from the stored row.

		Parameters:
		  - context: context.Context
		  - chapters: []*Chapter (distinct numbers per comic)

		Returns:
		  - error: Storage failure, nothing is written
	*/
	UpsertByNumber(context context.Context, chapters []*Chapter) error

	// FindByID returns the chapter with the given ID, or apperr.NotFound.
	FindByID(context context.Context, id string) (*Chapter, error)

	// ListByComic returns a comic's chapters ordered by number.
	ListByComic(context context.Context, comicID string) ([]*Chapter, error)
}

// # Page Cache Data Access

// PageCacheRepository defines the data access contract for cached chapter pages.
type PageCacheRepository interface {

	// ListByChapter returns a chapter's cached pages ordered by page number.
	ListByChapter(context context.Context, chapterID string) ([]*PageCacheEntry, error)

	/*
		Replace swaps a chapter's cached pages for entries in one transaction.

		Parameters:
		  - context: context.Context
		  - chapterID: string
		  - entries: []*PageCacheEntry (sharing one CachedAt)

		Returns:
		  - error: Storage failure, the previous rows are kept
	*/
	Replace(context context.Context, chapterID string, entries []*PageCacheEntry) error
}

// # Scrape Log Data Access

// ScrapeLogRepository defines the data access contract for the audit trail.
type ScrapeLogRepository interface {

	// Append writes one log row. ID and CreatedAt are filled when empty.
	Append(context context.Context, entry *ScrapeLog) error

	/*
		ListRecent returns the newest log rows first.

		Returns:
		  - []*ScrapeLogView: Rows joined with their source
		  - int: Total row count
		  - error: Storage failure
	*/
	ListRecent(context context.Context, limit, offset int) ([]*ScrapeLogView, int, error)
}

// StatsRepository computes catalog totals.
type StatsRepository interface {
	Stats(context context.Context) (*Stats, error)
}

// # Store

// Store bundles the repositories of one record store.
type Store struct {
	Sources  SourceRepository
	Comics   ComicRepository
	Chapters ChapterRepository
	Pages    PageCacheRepository
	Logs     ScrapeLogRepository
	Stats    StatsRepository
}
