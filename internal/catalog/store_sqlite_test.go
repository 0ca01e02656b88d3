// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/komikflow/internal/catalog"
	"github.com/taibuivan/komikflow/internal/catalog/catalogtest"
	"github.com/taibuivan/komikflow/internal/platform/apperr"
	"github.com/taibuivan/komikflow/pkg/pointer"
)

func newComic(source *catalog.Source, sourceSlug, title, slug string) *catalog.Comic {
	return &catalog.Comic{
		Title:      title,
		Slug:       slug,
		Status:     pointer.To("Ongoing"),
		SourceID:   source.ID,
		SourceSlug: sourceSlug,
		SourceURL:  source.BaseURL + "komik/" + sourceSlug + "/",
	}
}

/*
TestSources_SeedAndActivate checks the seeded rows and the active filter.
*/
func TestSources_SeedAndActivate(t *testing.T) {
	ctx := context.Background()
	store := catalogtest.NewStore(t)

	// 1. Three seeded sources, none active
	sources, err := store.Sources.List(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, "KOMIKCAST", sources[0].Code)

	active, err := store.Sources.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	// 2. Toggle one on
	updated, err := store.Sources.SetActive(ctx, "SHINIGAMI", true)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)

	active, err = store.Sources.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "SHINIGAMI", active[0].Code)

	// 3. Unknown code
	_, err = store.Sources.SetActive(ctx, "MANGADEX", true)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

/*
TestSources_UpsertKeepsID updates an existing source in place by code.
*/
func TestSources_UpsertKeepsID(t *testing.T) {
	ctx := context.Background()
	store := catalogtest.NewStore(t)

	original, err := store.Sources.FindByCode(ctx, "KOMIKCAST")
	require.NoError(t, err)

	replacement := &catalog.Source{Code: "KOMIKCAST", Name: "KomikCast", BaseURL: "https://komikcast.test/", IsActive: true}
	require.NoError(t, store.Sources.Upsert(ctx, replacement))

	assert.Equal(t, original.ID, replacement.ID)

	found, err := store.Sources.FindByID(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "KomikCast", found.Name)
	assert.Equal(t, "https://komikcast.test/", found.BaseURL)
	assert.True(t, found.IsActive)
}

/*
TestComics_UpsertBySourceKey verifies the natural key, the stable slug and
the overwrite rules of a re-scrape.
*/
func TestComics_UpsertBySourceKey(t *testing.T) {
	ctx := context.Background()
	store := catalogtest.NewStore(t)
	source := catalogtest.ActivateSource(t, store, "KOMIKCAST", "https://komikcast.test/")

	// 1. First insert
	first := newComic(source, "one-piece", "One Piece", "one-piece")
	first.Description = pointer.To("Pirates.")
	first.Genres = []string{"Action", "Adventure"}
	require.NoError(t, store.Comics.UpsertBySourceKey(ctx, first))
	require.NotEmpty(t, first.ID)

	// 2. Re-scrape with a new title, no description and a different slug candidate
	second := newComic(source, "one-piece", "One Piece (Remastered)", "one-piece-remastered")
	require.NoError(t, store.Comics.UpsertBySourceKey(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "one-piece", second.Slug)

	stored, err := store.Comics.FindBySourceKey(ctx, source.ID, "one-piece")
	require.NoError(t, err)
	assert.Equal(t, "One Piece (Remastered)", stored.Title)
	assert.Equal(t, "Pirates.", pointer.Val(stored.Description))
	assert.Nil(t, stored.Genres)

	stats, err := store.Stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Comics)
}

/*
TestComics_SlugTaken reports a slug collision between different comics.
*/
func TestComics_SlugTaken(t *testing.T) {
	ctx := context.Background()
	store := catalogtest.NewStore(t)
	komikcast := catalogtest.ActivateSource(t, store, "KOMIKCAST", "https://komikcast.test/")
	shinigami := catalogtest.ActivateSource(t, store, "SHINIGAMI", "https://shinigami.test/")

	require.NoError(t, store.Comics.UpsertBySourceKey(ctx, newComic(komikcast, "solo-leveling", "Solo Leveling", "solo-leveling")))

	err := store.Comics.UpsertBySourceKey(ctx, newComic(shinigami, "solo-leveling", "Solo Leveling", "solo-leveling"))
	assert.ErrorIs(t, err, catalog.ErrSlugTaken)
}

/*
TestComics_UpdateScraped overwrites metadata by ID and keeps the slug.
*/
func TestComics_UpdateScraped(t *testing.T) {
	ctx := context.Background()
	store := catalogtest.NewStore(t)
	source := catalogtest.ActivateSource(t, store, "MANHWALIST", "https://manhwalist.test/")

	comic := newComic(source, "nano-machine", "Nano Machine", "nano-machine")
	require.NoError(t, store.Comics.UpsertBySourceKey(ctx, comic))

	update := &catalog.Comic{
		ID:     comic.ID,
		Title:  "Nano Machine S2",
		Status: pointer.To("Completed"),
		Genres: []string{"Martial Arts"},
	}
	require.NoError(t, store.Comics.UpdateScraped(ctx, update))

	assert.Equal(t, "Nano Machine S2", update.Title)
	assert.Equal(t, "nano-machine", update.Slug)
	assert.Equal(t, source.ID, update.SourceID)
	assert.Equal(t, []string{"Martial Arts"}, update.Genres)

	err := store.Comics.UpdateScraped(ctx, &catalog.Comic{ID: "0190f3a0-ffff-7000-8000-000000000000", Title: "x"})
	require.NotNil(t, apperr.As(err))
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestChapters_UpsertByNumber keeps one row per chapter number across runs.
*/
func TestChapters_UpsertByNumber(t *testing.T) {
	ctx := context.Background()
	store := catalogtest.NewStore(t)
	source := catalogtest.ActivateSource(t, store, "SHINIGAMI", "https://shinigami.test/")

	comic := newComic(source, "nano-machine", "Nano Machine", "nano-machine")
	require.NoError(t, store.Comics.UpsertBySourceKey(ctx, comic))

	batch := func(title string) []*catalog.Chapter {
		return []*catalog.Chapter{
			{ComicID: comic.ID, ChapterNumber: 2, Title: pointer.To(title)},
			{ComicID: comic.ID, ChapterNumber: 1},
			{ComicID: comic.ID, ChapterNumber: 1.5},
		}
	}

	// 1. Two runs over the same list
	first := batch("Chapter 2")
	require.NoError(t, store.Chapters.UpsertByNumber(ctx, first))
	second := batch("Chapter 2 (fixed)")
	require.NoError(t, store.Chapters.UpsertByNumber(ctx, second))

	assert.Equal(t, first[0].ID, second[0].ID)

	// 2. Ordered by number, overwritten title
	chapters, err := store.Chapters.ListByComic(ctx, comic.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 3)
	assert.Equal(t, []float64{1, 1.5, 2}, []float64{chapters[0].ChapterNumber, chapters[1].ChapterNumber, chapters[2].ChapterNumber})
	assert.Equal(t, "Chapter 2 (fixed)", pointer.Val(chapters[2].Title))

	found, err := store.Chapters.FindByID(ctx, first[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, found.ChapterNumber)
}

/*
TestPages_Replace swaps the cached pages of one chapter only.
*/
func TestPages_Replace(t *testing.T) {
	ctx := context.Background()
	store := catalogtest.NewStore(t)
	source := catalogtest.ActivateSource(t, store, "KOMIKCAST", "https://komikcast.test/")

	comic := newComic(source, "one-piece", "One Piece", "one-piece")
	require.NoError(t, store.Comics.UpsertBySourceKey(ctx, comic))
	chapters := []*catalog.Chapter{{ComicID: comic.ID, ChapterNumber: 1}, {ComicID: comic.ID, ChapterNumber: 2}}
	require.NoError(t, store.Chapters.UpsertByNumber(ctx, chapters))

	entries := func(chapterID string, cachedAt time.Time, urls ...string) []*catalog.PageCacheEntry {
		out := make([]*catalog.PageCacheEntry, 0, len(urls))
		for i, url := range urls {
			out = append(out, &catalog.PageCacheEntry{ChapterID: chapterID, PageNumber: i + 1, SourceImageURL: url, CachedAt: cachedAt})
		}
		return out
	}

	firstAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	secondAt := firstAt.Add(25 * time.Hour)

	require.NoError(t, store.Pages.Replace(ctx, chapters[0].ID, entries(chapters[0].ID, firstAt, "a.jpg", "b.jpg", "c.jpg")))
	require.NoError(t, store.Pages.Replace(ctx, chapters[1].ID, entries(chapters[1].ID, firstAt, "z.jpg")))
	require.NoError(t, store.Pages.Replace(ctx, chapters[0].ID, entries(chapters[0].ID, secondAt, "x.jpg", "y.jpg")))

	pages, err := store.Pages.ListByChapter(ctx, chapters[0].ID)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "x.jpg", pages[0].SourceImageURL)
	assert.True(t, pages[0].CachedAt.Equal(secondAt))
	assert.True(t, pages[1].CachedAt.Equal(secondAt))

	other, err := store.Pages.ListByChapter(ctx, chapters[1].ID)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

/*
TestScrapeLogs_ListRecent returns the newest rows first with the total.
*/
func TestScrapeLogs_ListRecent(t *testing.T) {
	ctx := context.Background()
	store := catalogtest.NewStore(t)
	source := catalogtest.ActivateSource(t, store, "MANHWALIST", "https://manhwalist.test/")

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := &catalog.ScrapeLog{
			SourceID:  source.ID,
			TargetURL: "https://manhwalist.test/manga/?page=1",
			Action:    catalog.ActionFetchComicList,
			Status:    catalog.StatusSuccess,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if i == 2 {
			entry.Status = catalog.StatusFailed
			entry.ErrorMessage = pointer.To("HTTP 503")
		}
		require.NoError(t, store.Logs.Append(ctx, entry))
	}

	views, total, err := store.Logs.ListRecent(ctx, 2, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, total)
	require.Len(t, views, 2)
	assert.Equal(t, catalog.StatusFailed, views[0].Status)
	assert.Equal(t, "HTTP 503", pointer.Val(views[0].ErrorMessage))
	assert.Equal(t, "MANHWALIST", views[0].SourceCode)
	assert.True(t, views[0].CreatedAt.After(views[1].CreatedAt))

	stats, err := store.Stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FailedScrapes)
	assert.Equal(t, 1, stats.ActiveSources)
	require.NotNil(t, stats.LastScrapeAt)
	assert.True(t, stats.LastScrapeAt.Equal(base.Add(2*time.Minute)))
}
