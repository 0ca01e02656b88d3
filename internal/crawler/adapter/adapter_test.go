// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package adapter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/komikflow/internal/crawler/adapter"
	"github.com/taibuivan/komikflow/pkg/pointer"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(body)
}

func lookup(t *testing.T, code adapter.Code) adapter.Adapter {
	t.Helper()
	source, err := adapter.DefaultRegistry().Lookup(string(code))
	require.NoError(t, err)
	return source
}

/*
TestExtractListing_Manhwalist skips the card without a link and fills
defaults for the sparse one.
*/
func TestExtractListing_Manhwalist(t *testing.T) {
	listing, err := lookup(t, adapter.Manhwalist).ExtractListing(fixture(t, "manhwalist_listing.html"), "https://manhwalist.test/manga/?page=1")
	require.NoError(t, err)

	want := []adapter.ComicSummary{
		{
			SourceCode:    adapter.Manhwalist,
			SourceSlug:    "solo-leveling",
			SourceURL:     "https://manhwalist.test/manga/solo-leveling/",
			Title:         "Solo Leveling",
			CoverURL:      pointer.To("https://cdn.manhwalist.test/covers/solo.jpg"),
			Genres:        []string{"Action", "Fantasy"},
			Status:        "Completed",
			LatestChapter: pointer.To(200.0),
		},
		{
			SourceCode:    adapter.Manhwalist,
			SourceSlug:    "the-beginning-after-the-end",
			SourceURL:     "https://manhwalist.test/manga/the-beginning-after-the-end/",
			Title:         "The Beginning After The End",
			CoverURL:      pointer.To("https://cdn.manhwalist.test/covers/tbate.jpg"),
			Status:        adapter.StatusOngoing,
			LatestChapter: pointer.To(175.5),
		},
	}

	if diff := cmp.Diff(want, listing.Comics); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, listing.HasNextPage)
}

/*
TestExtractListing_OtherSources covers the SHINIGAMI and KOMIKCAST card layouts.
*/
func TestExtractListing_OtherSources(t *testing.T) {
	t.Run("shinigami", func(t *testing.T) {
		listing, err := lookup(t, adapter.Shinigami).ExtractListing(fixture(t, "shinigami_listing.html"), "https://shinigami.test/manga/?page=1")
		require.NoError(t, err)

		require.Len(t, listing.Comics, 1)
		comic := listing.Comics[0]
		assert.Equal(t, "Nano Machine", comic.Title)
		assert.Equal(t, "nano-machine", comic.SourceSlug)
		assert.Equal(t, "https://cdn.shinigami.test/nano.webp", pointer.Val(comic.CoverURL))
		assert.Nil(t, comic.Genres)
		assert.Equal(t, 180.0, pointer.Val(comic.LatestChapter))
		assert.True(t, listing.HasNextPage)
	})

	t.Run("komikcast", func(t *testing.T) {
		listing, err := lookup(t, adapter.Komikcast).ExtractListing(fixture(t, "komikcast_listing.html"), "https://komikcast.test/komik/")
		require.NoError(t, err)

		require.Len(t, listing.Comics, 1)
		comic := listing.Comics[0]
		assert.Equal(t, "One Piece", comic.Title)
		assert.Equal(t, "one-piece", comic.SourceSlug)
		assert.Equal(t, adapter.StatusOngoing, comic.Status)
		assert.Equal(t, 1120.0, pointer.Val(comic.LatestChapter))
		assert.False(t, listing.HasNextPage)
	})

	t.Run("relative_links_resolved", func(t *testing.T) {
		html := `<div class="bs"><div class="bsx">
			<a href="/manga/solo-leveling/" title="Solo Leveling"><div class="tt">Solo Leveling</div></a>
		</div></div>`

		listing, err := lookup(t, adapter.Manhwalist).ExtractListing(html, "https://manhwalist.test/manga/?page=2")
		require.NoError(t, err)

		require.Len(t, listing.Comics, 1)
		assert.Equal(t, "https://manhwalist.test/manga/solo-leveling/", listing.Comics[0].SourceURL)
		assert.Equal(t, "solo-leveling", listing.Comics[0].SourceSlug)
	})

	t.Run("empty_document", func(t *testing.T) {
		listing, err := lookup(t, adapter.Komikcast).ExtractListing("", "https://komikcast.test/komik/")
		require.NoError(t, err)

		assert.Empty(t, listing.Comics)
		assert.False(t, listing.HasNextPage)
	})
}

/*
TestExtractDetail_Manhwalist resolves relative chapter links and skips
anchors without an href.
*/
func TestExtractDetail_Manhwalist(t *testing.T) {
	const pageURL = "https://manhwalist.test/manga/solo-leveling/"

	detail, err := lookup(t, adapter.Manhwalist).ExtractDetail(fixture(t, "manhwalist_detail.html"), pageURL)
	require.NoError(t, err)

	// 1. Comic fields
	assert.Equal(t, "Solo Leveling", detail.Comic.Title)
	assert.Equal(t, "solo-leveling", detail.Comic.SourceSlug)
	assert.Equal(t, pageURL, detail.Comic.SourceURL)
	assert.Equal(t, adapter.StatusOngoing, detail.Comic.Status)
	assert.Equal(t, []string{"Action", "Fantasy"}, detail.Comic.Genres)
	assert.Equal(t, "Ten years ago, after the Gate opened.", pointer.Val(detail.Comic.Description))

	// 2. Chapters in document order
	want := []adapter.ChapterSummary{
		{
			SourceChapterID: "solo-leveling-chapter-2",
			SourceURL:       "https://manhwalist.test/solo-leveling-chapter-2/",
			ChapterNumber:   2,
			Title:           pointer.To("Chapter 2"),
		},
		{
			SourceChapterID: "solo-leveling-chapter-1-5",
			SourceURL:       "https://manhwalist.test/solo-leveling-chapter-1-5/",
			ChapterNumber:   1.5,
			Title:           pointer.To("Chapter 1.5"),
		},
		{
			SourceChapterID: "solo-leveling-chapter-1",
			SourceURL:       "https://manhwalist.test/solo-leveling-chapter-1/",
			ChapterNumber:   1,
			Title:           pointer.To("Chapter 1"),
		},
	}
	if diff := cmp.Diff(want, detail.Chapters); diff != "" {
		t.Errorf("chapters mismatch (-want +got):\n%s", diff)
	}
}

/*
TestExtractDetail_Shinigami prefers the chapter label span and reads a
non-ongoing status as Completed.
*/
func TestExtractDetail_Shinigami(t *testing.T) {
	detail, err := lookup(t, adapter.Shinigami).ExtractDetail(
		fixture(t, "shinigami_detail.html"),
		"https://shinigami.test/series/nano-machine/",
	)
	require.NoError(t, err)

	assert.Equal(t, adapter.StatusCompleted, detail.Comic.Status)
	assert.Equal(t, "https://cdn.shinigami.test/nano.webp", pointer.Val(detail.Comic.CoverURL))
	assert.Equal(t, []string{"Action", "Martial Arts"}, detail.Comic.Genres)

	require.Len(t, detail.Chapters, 2)
	assert.Equal(t, 12.0, detail.Chapters[0].ChapterNumber)
	assert.Equal(t, "Chapter 12", pointer.Val(detail.Chapters[0].Title))
	assert.Equal(t, 11.0, detail.Chapters[1].ChapterNumber)
}

/*
TestExtractDetail_MissingMarkup degrades to empty values instead of failing.
*/
func TestExtractDetail_MissingMarkup(t *testing.T) {
	detail, err := lookup(t, adapter.Komikcast).ExtractDetail("<html><body></body></html>", "https://komikcast.test/komik/x/")
	require.NoError(t, err)

	assert.Empty(t, detail.Comic.Title)
	assert.Nil(t, detail.Comic.CoverURL)
	assert.Nil(t, detail.Comic.Description)
	assert.Nil(t, detail.Comic.Genres)
	assert.Equal(t, adapter.StatusCompleted, detail.Comic.Status)
	assert.Empty(t, detail.Chapters)
}

/*
TestExtractPages filters decoration images and renumbers the rest.
*/
func TestExtractPages(t *testing.T) {
	t.Run("komikcast_reader", func(t *testing.T) {
		pages, err := lookup(t, adapter.Komikcast).ExtractPages(fixture(t, "komikcast_chapter.html"))
		require.NoError(t, err)

		want := []adapter.Page{
			{PageNumber: 1, ImageURL: "https://cdn.komikcast.test/one-piece/1120/01.jpg"},
			{PageNumber: 2, ImageURL: "https://cdn.komikcast.test/one-piece/1120/02.jpg"},
			{PageNumber: 3, ImageURL: "https://cdn.komikcast.test/one-piece/1120/03.jpg"},
		}
		if diff := cmp.Diff(want, pages); diff != "" {
			t.Errorf("pages mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("logo_between_pages", func(t *testing.T) {
		html := `<div id="readerarea">
			<img src="a.jpg">
			<img src="https://x.test/Logo.png">
			<img data-src="b.jpg">
		</div>`

		pages, err := lookup(t, adapter.Manhwalist).ExtractPages(html)
		require.NoError(t, err)

		assert.Equal(t, []adapter.Page{
			{PageNumber: 1, ImageURL: "a.jpg"},
			{PageNumber: 2, ImageURL: "b.jpg"},
		}, pages)
	})

	t.Run("no_reader", func(t *testing.T) {
		pages, err := lookup(t, adapter.Shinigami).ExtractPages("<html></html>")
		require.NoError(t, err)
		assert.Empty(t, pages)
	})
}

/*
TestListingURL checks each source's pagination convention.
*/
func TestListingURL(t *testing.T) {
	tests := []struct {
		name    string
		code    adapter.Code
		baseURL string
		page    int
		want    string
	}{
		{"manhwalist_first", adapter.Manhwalist, "https://manhwalist.test/", 1, "https://manhwalist.test/manga/?page=1"},
		{"shinigami_third", adapter.Shinigami, "https://shinigami.test/", 3, "https://shinigami.test/manga/?page=3"},
		{"komikcast_first", adapter.Komikcast, "https://komikcast.test/", 1, "https://komikcast.test/komik/"},
		{"komikcast_second", adapter.Komikcast, "https://komikcast.test/", 2, "https://komikcast.test/komik/page/2/"},
		{"missing_trailing_slash", adapter.Manhwalist, "https://manhwalist.test", 2, "https://manhwalist.test/manga/?page=2"},
		{"page_below_one", adapter.Komikcast, "https://komikcast.test/", 0, "https://komikcast.test/komik/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lookup(t, tt.code).ListingURL(tt.baseURL, tt.page))
		})
	}
}

/*
TestSlugFromURL takes the last non-empty path segment.
*/
func TestSlugFromURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://x.test/komik/solo-leveling/", "solo-leveling"},
		{"https://x.test/komik/solo-leveling", "solo-leveling"},
		{"https://x.test/chapter-1/?ref=home", "chapter-1"},
		{"/relative/path//", "path"},
		{"https://x.test/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, adapter.SlugFromURL(tt.in))
		})
	}
}

/*
TestRegistry resolves codes case-insensitively and rejects unknown ones.
*/
func TestRegistry(t *testing.T) {
	registry := adapter.DefaultRegistry()

	source, err := registry.Lookup("komikcast")
	require.NoError(t, err)
	assert.Equal(t, adapter.Komikcast, source.Code())

	_, err = registry.Lookup("MANGADEX")
	assert.ErrorIs(t, err, adapter.ErrUnsupportedSource)

	assert.Equal(t, []adapter.Code{adapter.Komikcast, adapter.Manhwalist, adapter.Shinigami}, registry.Codes())
}
