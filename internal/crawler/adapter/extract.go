// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package adapter

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/taibuivan/komikflow/internal/crawler/chapternum"
	"github.com/taibuivan/komikflow/pkg/pointer"
)

// # Selector Rules

// listingRules locate fields inside each catalog card.
type listingRules struct {
	item    string
	title   string
	cover   string
	status  string
	genres  string
	latest  string
	hasNext string
}

// detailRules locate fields on a comic detail page.
type detailRules struct {
	title        string
	cover        string
	description  string
	status       string
	genres       string
	chapters     string
	chapterLabel string
}

// rules fully describe one source.
type rules struct {
	code       Code
	listingURL func(baseURL string, page int) string
	listing    listingRules
	detail     detailRules
	pages      string
}

// ruleAdapter implements [Adapter] for any source described by [rules].
type ruleAdapter struct {
	rules rules
}

func (adapter *ruleAdapter) Code() Code { return adapter.rules.code }

func (adapter *ruleAdapter) ListingURL(baseURL string, page int) string {
	if page < 1 {
		page = 1
	}
	return adapter.rules.listingURL(baseURL, page)
}

// # Listing

func (adapter *ruleAdapter) ExtractListing(html, pageURL string) (*Listing, error) {
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	selectors := adapter.rules.listing
	listing := &Listing{Comics: []ComicSummary{}}
	base, _ := url.Parse(pageURL)

	doc.Find(selectors.item).Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a").First()
		href := resolve(base, link.AttrOr("href", ""))

		title := text(item.Find(selectors.title).First())
		if title == "" {
			title = strings.TrimSpace(link.AttrOr("title", ""))
		}

		if href == "" || title == "" {
			return
		}

		status := text(item.Find(selectors.status).First())
		if status == "" {
			status = StatusOngoing
		}

		comic := ComicSummary{
			SourceCode: adapter.rules.code,
			SourceSlug: SlugFromURL(href),
			SourceURL:  href,
			Title:      title,
			CoverURL:   pointer.NonEmpty(imageSource(item.Find(selectors.cover).First())),
			Status:     status,
		}

		if selectors.genres != "" {
			comic.Genres = texts(item.Find(selectors.genres))
		}

		if selectors.latest != "" {
			if label := text(item.Find(selectors.latest).First()); label != "" {
				if number := chapternum.ParseListing(label); number > 0 {
					comic.LatestChapter = &number
				}
			}
		}

		listing.Comics = append(listing.Comics, comic)
	})

	listing.HasNextPage = doc.Find(selectors.hasNext).Length() > 0
	return listing, nil
}

// # Detail

func (adapter *ruleAdapter) ExtractDetail(html, pageURL string) (*Detail, error) {
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	selectors := adapter.rules.detail

	status := StatusCompleted
	if strings.Contains(text(doc.Find(selectors.status).First()), StatusOngoing) {
		status = StatusOngoing
	}

	detail := &Detail{
		Comic: ComicSummary{
			SourceCode:  adapter.rules.code,
			SourceSlug:  SlugFromURL(pageURL),
			SourceURL:   pageURL,
			Title:       text(doc.Find(selectors.title).First()),
			CoverURL:    pointer.NonEmpty(imageSource(doc.Find(selectors.cover).First())),
			Description: pointer.NonEmpty(text(doc.Find(selectors.description).First())),
			Genres:      texts(doc.Find(selectors.genres)),
			Status:      status,
		},
		Chapters: []ChapterSummary{},
	}

	base, _ := url.Parse(pageURL)

	doc.Find(selectors.chapters).Each(func(_ int, anchor *goquery.Selection) {
		href := resolve(base, anchor.AttrOr("href", ""))
		if href == "" {
			return
		}

		label := ""
		if selectors.chapterLabel != "" {
			label = text(anchor.Find(selectors.chapterLabel).First())
		}
		if label == "" {
			label = text(anchor)
		}

		detail.Chapters = append(detail.Chapters, ChapterSummary{
			SourceChapterID: SlugFromURL(href),
			SourceURL:       href,
			ChapterNumber:   chapternum.Parse(label),
			Title:           pointer.NonEmpty(label),
		})
	})

	return detail, nil
}

// # Reader Pages

func (adapter *ruleAdapter) ExtractPages(html string) ([]Page, error) {
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	pages := []Page{}
	doc.Find(adapter.rules.pages).Each(func(_ int, image *goquery.Selection) {
		source := imageSource(image)
		if source == "" || isDecoration(source) {
			return
		}
		pages = append(pages, Page{PageNumber: len(pages) + 1, ImageURL: source})
	})

	return pages, nil
}

// # Helpers

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("adapter: parse html: %w", err)
	}
	return doc, nil
}

// text returns the whitespace-collapsed text of a selection.
func text(selection *goquery.Selection) string {
	return strings.Join(strings.Fields(selection.Text()), " ")
}

// texts returns the non-empty texts of every node in selection, or nil.
func texts(selection *goquery.Selection) []string {
	var values []string
	selection.Each(func(_ int, node *goquery.Selection) {
		if value := text(node); value != "" {
			values = append(values, value)
		}
	})
	return values
}

// imageSource prefers src and falls back to the lazy-loading data-src.
func imageSource(image *goquery.Selection) string {
	if source := strings.TrimSpace(image.AttrOr("src", "")); source != "" {
		return source
	}
	return strings.TrimSpace(image.AttrOr("data-src", ""))
}

// isDecoration drops site chrome that reader selectors also match.
func isDecoration(source string) bool {
	lower := strings.ToLower(source)
	return strings.Contains(lower, "logo") || strings.Contains(lower, "icon")
}

// resolve makes href absolute against base when possible.
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == nil {
		return href
	}
	reference, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(reference).String()
}
