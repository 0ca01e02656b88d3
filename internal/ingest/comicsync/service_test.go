// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comicsync_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/komikflow/internal/catalog"
	"github.com/taibuivan/komikflow/internal/catalog/catalogtest"
	"github.com/taibuivan/komikflow/internal/crawler/adapter"
	"github.com/taibuivan/komikflow/internal/ingest"
	"github.com/taibuivan/komikflow/internal/ingest/comicsync"
	"github.com/taibuivan/komikflow/internal/ingest/ingesttest"
	"github.com/taibuivan/komikflow/internal/platform/apperr"
	"github.com/taibuivan/komikflow/pkg/uuid"
)

const detailURL = "https://manhwalist.test/manga/solo-leveling/"

const detailPage = `<html><body>
	<div class="thumb"><img src="https://cdn.manhwalist.test/solo.jpg"></div>
	<h1 class="entry-title">Solo Leveling</h1>
	<div class="series-status">Ongoing</div>
	<div class="series-genres"><a href="#">Action</a><a href="#">Fantasy</a></div>
	<div class="entry-content"><p>Ten years ago, the Gate opened.</p></div>
	<div class="eplister"><ul>
		<li><a href="https://manhwalist.test/solo-leveling-chapter-2/">Chapter 2</a></li>
		<li><a href="/solo-leveling-chapter-1-5/">Chapter 1.5</a></li>
		<li><a href="https://manhwalist.test/solo-leveling-chapter-1/">Chapter 1</a></li>
	</ul></div>
</body></html>`

type fixture struct {
	store   *catalog.Store
	fetcher *ingesttest.Fetcher
	service *comicsync.Service
	source  *catalog.Source
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := catalogtest.NewStore(t)
	fetcher := ingesttest.NewFetcher()
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	return &fixture{
		store:   store,
		fetcher: fetcher,
		service: comicsync.NewService(store, adapter.DefaultRegistry(), fetcher, catalogtest.Logger(),
			comicsync.WithClock(func() time.Time { return now })),
		source: catalogtest.ActivateSource(t, store, "MANHWALIST", "https://manhwalist.test/"),
	}
}

func (f *fixture) logs(t *testing.T) []*catalog.ScrapeLogView {
	t.Helper()
	views, _, err := f.store.Logs.ListRecent(context.Background(), 50, 0)
	require.NoError(t, err)
	return views
}

/*
TestRun_CreatesComicAndChapters syncs a new comic twice and checks that the
second run reuses every row.
*/
func TestRun_CreatesComicAndChapters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fetcher.Serve(detailURL, detailPage)

	// 1. First sync creates the comic
	result, err := f.service.Run(ctx, comicsync.Request{SourceURL: detailURL, SourceCode: "manhwalist"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.ChaptersWritten)

	comic, err := f.store.Comics.FindByID(ctx, result.ComicID)
	require.NoError(t, err)
	assert.Equal(t, "Solo Leveling", comic.Title)
	assert.Equal(t, "solo-leveling", comic.Slug)
	assert.Equal(t, "solo-leveling", comic.SourceSlug)
	assert.Equal(t, []string{"Action", "Fantasy"}, comic.Genres)
	assert.Equal(t, "Ten years ago, the Gate opened.", *comic.Description)

	chapters, err := f.store.Chapters.ListByComic(ctx, comic.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 3)
	assert.Equal(t, 1.5, chapters[1].ChapterNumber)
	assert.Equal(t, "https://manhwalist.test/solo-leveling-chapter-1-5/", *chapters[1].SourceURL)
	assert.Equal(t, "solo-leveling-chapter-1-5", *chapters[1].SourceChapterID)

	// 2. Second sync reuses the rows
	again, err := f.service.Run(ctx, comicsync.Request{SourceURL: detailURL, SourceCode: "MANHWALIST"})
	require.NoError(t, err)
	assert.Equal(t, result.ComicID, again.ComicID)

	chaptersAgain, err := f.store.Chapters.ListByComic(ctx, comic.ID)
	require.NoError(t, err)
	require.Len(t, chaptersAgain, 3)
	assert.Equal(t, chapters[0].ID, chaptersAgain[0].ID)

	// 3. One SUCCESS row per run
	logs := f.logs(t)
	require.Len(t, logs, 2)
	for _, entry := range logs {
		assert.Equal(t, catalog.ActionSyncComic, entry.Action)
		assert.Equal(t, catalog.StatusSuccess, entry.Status)
		assert.Equal(t, detailURL, entry.TargetURL)
	}
}

/*
TestRun_DuplicateOrdinalsCountOnce keeps the last link of a repeated number.
*/
func TestRun_DuplicateOrdinalsCountOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fetcher.Serve(detailURL, `<h1 class="entry-title">Solo Leveling</h1>
		<div class="eplister"><ul>
			<li><a href="https://manhwalist.test/chapter-5-raw/">Chapter 5</a></li>
			<li><a href="https://manhwalist.test/chapter-5/">Chapter 5</a></li>
		</ul></div>`)

	result, err := f.service.Run(ctx, comicsync.Request{SourceURL: detailURL, SourceCode: "MANHWALIST"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChaptersWritten)

	chapters, err := f.store.Chapters.ListByComic(ctx, result.ComicID)
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	assert.Equal(t, "https://manhwalist.test/chapter-5/", *chapters[0].SourceURL)
}

/*
TestRun_UpdatesExistingComic overwrites scraped fields in place and keeps the slug.
*/
func TestRun_UpdatesExistingComic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fetcher.Serve(detailURL, detailPage)

	created, err := f.service.Run(ctx, comicsync.Request{SourceURL: detailURL, SourceCode: "MANHWALIST"})
	require.NoError(t, err)

	f.fetcher.Serve(detailURL, `<h1 class="entry-title">Solo Leveling: Ragnarok</h1>
		<div class="series-status">Completed</div>`)

	updated, err := f.service.Run(ctx, comicsync.Request{
		SourceURL:  detailURL,
		SourceCode: "MANHWALIST",
		ComicID:    created.ComicID,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ComicID, updated.ComicID)
	assert.Zero(t, updated.ChaptersWritten)

	comic, err := f.store.Comics.FindByID(ctx, created.ComicID)
	require.NoError(t, err)
	assert.Equal(t, "Solo Leveling: Ragnarok", comic.Title)
	assert.Equal(t, "solo-leveling", comic.Slug)
	assert.Equal(t, "Completed", *comic.Status)
	assert.Nil(t, comic.Description)
	assert.Empty(t, comic.Genres)
}

/*
TestRun_Failures checks the error returned and the log row left behind.
*/
func TestRun_Failures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		request  comicsync.Request
		page     string
		code     string
		wantLogs int
	}{
		{
			name:     "unknown_comic_id",
			request:  comicsync.Request{SourceURL: detailURL, SourceCode: "MANHWALIST", ComicID: uuid.New()},
			page:     detailPage,
			code:     "NOT_FOUND",
			wantLogs: 1,
		},
		{
			name:     "missing_title",
			request:  comicsync.Request{SourceURL: detailURL, SourceCode: "MANHWALIST"},
			page:     `<html><body><p>Maintenance</p></body></html>`,
			code:     "PARSE_ERROR",
			wantLogs: 1,
		},
		{
			name:     "upstream_404",
			request:  comicsync.Request{SourceURL: "https://manhwalist.test/manga/gone/", SourceCode: "MANHWALIST"},
			code:     "UPSTREAM_ERROR",
			wantLogs: 1,
		},
		{
			name:    "inactive_source",
			request: comicsync.Request{SourceURL: detailURL, SourceCode: "KOMIKCAST"},
			code:    "SOURCE_NOT_FOUND",
		},
		{
			name:    "unknown_source",
			request: comicsync.Request{SourceURL: detailURL, SourceCode: "MANGADEX"},
			code:    "SOURCE_NOT_FOUND",
		},
		{
			name:    "validation",
			request: comicsync.Request{SourceURL: "not a url"},
			code:    "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.page != "" {
				f.fetcher.Serve(detailURL, tt.page)
			}

			result, err := f.service.Run(ctx, tt.request)
			require.Error(t, err)
			assert.Nil(t, result)

			appErr := apperr.As(ingest.Classify(err))
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code)

			logs := f.logs(t)
			require.Len(t, logs, tt.wantLogs)
			for _, entry := range logs {
				assert.Equal(t, catalog.StatusFailed, entry.Status)
				assert.Equal(t, catalog.ActionSyncComic, entry.Action)
				assert.Equal(t, f.source.ID, entry.SourceID)
				assert.NotEmpty(t, *entry.ErrorMessage)
			}
		})
	}
}
