// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ingesttest provides an in-memory fetcher for sync driver tests.
package ingesttest

import (
	"context"
	"net/http"
	"sync"

	"github.com/taibuivan/komikflow/internal/crawler/fetch"
)

// Fetcher serves canned HTML by URL. Unknown URLs answer 404.
type Fetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errors map[string]error
	calls  []string
}

// NewFetcher returns an empty fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{pages: map[string]string{}, errors: map[string]error{}}
}

// Serve registers html for url.
func (fetcher *Fetcher) Serve(url, html string) *Fetcher {
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	fetcher.pages[url] = html
	delete(fetcher.errors, url)
	return fetcher
}

// Fail makes url answer with err.
func (fetcher *Fetcher) Fail(url string, err error) *Fetcher {
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	fetcher.errors[url] = err
	return fetcher
}

// Calls returns the URLs fetched so far, in order.
func (fetcher *Fetcher) Calls() []string {
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	return append([]string(nil), fetcher.calls...)
}

// Fetch implements ingest.Fetcher.
func (fetcher *Fetcher) Fetch(_ context.Context, url string) (string, error) {
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()

	fetcher.calls = append(fetcher.calls, url)
	if err, ok := fetcher.errors[url]; ok {
		return "", err
	}
	if html, ok := fetcher.pages[url]; ok {
		return html, nil
	}
	return "", &fetch.HTTPStatusError{URL: url, StatusCode: http.StatusNotFound}
}
