// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog holds the persisted records of the ingestion core and the
repositories that read and write them.

Two record stores implement the same contracts: PostgreSQL through pgx for
server deployments, and an embedded SQLite file for the single-binary CLI
and for service tests. Natural keys keep every sync idempotent:

  - Comic: (sourceId, sourceSlug)
  - Chapter: (comicId, chapterNumber)
  - Page cache: (chapterId, pageNumber), replaced per chapter as a whole

Scrape-log rows are append-only.
*/
package catalog

import "time"

// # Sources

// Source is a configured comic site.
type Source struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	BaseURL   string    `json:"baseUrl"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// # Comics and Chapters

// Comic is a mirrored series. Slug is assigned once, at creation.
type Comic struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	CoverURL    *string   `json:"coverUrl,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Genres      []string  `json:"genres,omitempty"`
	SourceID    string    `json:"sourceId"`
	SourceSlug  string    `json:"sourceSlug"`
	SourceURL   string    `json:"sourceUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Chapter is one installment of a comic.
type Chapter struct {
	ID              string    `json:"id"`
	ComicID         string    `json:"comicId"`
	ChapterNumber   float64   `json:"chapterNumber"`
	Title           *string   `json:"title,omitempty"`
	SourceChapterID *string   `json:"sourceChapterId,omitempty"`
	SourceURL       *string   `json:"sourceUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PageCacheEntry is one cached reader image of a chapter.
type PageCacheEntry struct {
	ChapterID      string    `json:"chapterId"`
	PageNumber     int       `json:"pageNumber"`
	SourceImageURL string    `json:"sourceImageUrl"`
	CachedAt       time.Time `json:"cachedAt"`
}

// # Scrape Log

// ScrapeAction names the operation a scrape-log row records.
type ScrapeAction string

const (
	ActionFetchComicList ScrapeAction = "FETCH_COMIC_LIST"
	ActionFetchChapter   ScrapeAction = "FETCH_CHAPTER"
	ActionSyncComic      ScrapeAction = "SYNC_COMIC"
)

// ScrapeStatus is the outcome recorded for a scrape.
type ScrapeStatus string

const (
	StatusSuccess ScrapeStatus = "SUCCESS"
	StatusFailed  ScrapeStatus = "FAILED"
)

// ScrapeLog is an immutable audit row.
type ScrapeLog struct {
	ID           string       `json:"id"`
	SourceID     string       `json:"sourceId"`
	TargetURL    string       `json:"targetUrl"`
	Action       ScrapeAction `json:"action"`
	Status       ScrapeStatus `json:"status"`
	ErrorMessage *string      `json:"errorMessage,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// ScrapeLogView is a log row joined with its source for the activity feed.
type ScrapeLogView struct {
	ScrapeLog
	SourceCode string `json:"sourceCode"`
	SourceName string `json:"sourceName"`
}

// # Statistics

// Stats summarises the mirrored catalog.
type Stats struct {
	Sources       int        `json:"sources"`
	ActiveSources int        `json:"activeSources"`
	Comics        int        `json:"comics"`
	Chapters      int        `json:"chapters"`
	CachedPages   int        `json:"cachedPages"`
	FailedScrapes int        `json:"failedScrapes"`
	LastScrapeAt  *time.Time `json:"lastScrapeAt,omitempty"`
}
