// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package adapter turns the HTML of a supported comic site into the common
comic, chapter and page records.

Each source is described by a set of CSS selector rules; extraction itself is
shared. Adapters never fail on missing markup: absent fields degrade to empty
values and listing items without a title or link are skipped. Only a document
that cannot be parsed at all is an error.

Sources are looked up by code through a [Registry].
*/
package adapter

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Code identifies a supported source site.
type Code string

const (
	Manhwalist Code = "MANHWALIST"
	Shinigami  Code = "SHINIGAMI"
	Komikcast  Code = "KOMIKCAST"
)

// Status values assigned by adapters.
const (
	StatusOngoing   = "Ongoing"
	StatusCompleted = "Completed"
)

// ErrUnsupportedSource is returned by [Registry.Lookup] for unknown codes.
var ErrUnsupportedSource = errors.New("unsupported source")

// # Records

// ComicSummary is a comic as seen on a listing or detail page.
type ComicSummary struct {
	SourceCode  Code
	SourceSlug  string
	SourceURL   string
	Title       string
	CoverURL    *string
	Description *string
	Genres      []string
	Status      string

	// LatestChapter is the newest chapter ordinal shown on a listing card, when any.
	LatestChapter *float64
}

// ChapterSummary is one chapter link on a comic detail page.
type ChapterSummary struct {
	SourceChapterID string
	SourceURL       string
	ChapterNumber   float64
	Title           *string
}

// Page is one reader image. Numbers are 1-based and contiguous.
type Page struct {
	PageNumber int    `json:"pageNumber"`
	ImageURL   string `json:"imageUrl"`
}

// Listing is the result of one catalog page.
type Listing struct {
	Comics      []ComicSummary
	HasNextPage bool
}

// Detail is the result of one comic detail page.
type Detail struct {
	Comic    ComicSummary
	Chapters []ChapterSummary
}

// # Contract

// Adapter extracts records from one source's markup.
type Adapter interface {
	// Code returns the source code this adapter serves.
	Code() Code

	// ListingURL returns the catalog URL for a 1-based page under baseURL.
	ListingURL(baseURL string, page int) string

	// ExtractListing parses a catalog page fetched from pageURL. Card links
	// are resolved against it.
	ExtractListing(html, pageURL string) (*Listing, error)

	// ExtractDetail parses a comic detail page fetched from pageURL.
	ExtractDetail(html, pageURL string) (*Detail, error)

	// ExtractPages parses a chapter reader page.
	ExtractPages(html string) ([]Page, error)
}

// # Registry

// Registry resolves adapters by source code.
type Registry struct {
	adapters map[Code]Adapter
}

// NewRegistry builds a registry from the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	registry := &Registry{adapters: make(map[Code]Adapter, len(adapters))}
	for _, adapter := range adapters {
		registry.adapters[adapter.Code()] = adapter
	}
	return registry
}

// DefaultRegistry returns a registry with every supported source.
func DefaultRegistry() *Registry {
	return NewRegistry(NewManhwalist(), NewShinigami(), NewKomikcast())
}

// Lookup returns the adapter for code, or an error wrapping [ErrUnsupportedSource].
func (registry *Registry) Lookup(code string) (Adapter, error) {
	adapter, ok := registry.adapters[Code(strings.ToUpper(strings.TrimSpace(code)))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, code)
	}
	return adapter, nil
}

// Codes lists the registered source codes in sorted order.
func (registry *Registry) Codes() []Code {
	codes := make([]Code, 0, len(registry.adapters))
	for code := range registry.adapters {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// # Helpers

// SlugFromURL returns the last non-empty path segment of rawURL.
//
//	SlugFromURL("https://x.test/komik/solo-leveling/") // "solo-leveling"
func SlugFromURL(rawURL string) string {
	path := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		path = parsed.Path
	}

	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segment := strings.TrimSpace(segments[i]); segment != "" {
			return segment
		}
	}
	return ""
}

// joinPath appends a relative path to a base URL, tolerating a missing
// trailing slash on the base.
func joinPath(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
