// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package adapter

import "fmt"

// NewShinigami returns the adapter for SHINIGAMI. Listing cards carry no genres.
func NewShinigami() Adapter {
	return &ruleAdapter{rules: rules{
		code: Shinigami,
		listingURL: func(baseURL string, page int) string {
			return joinPath(baseURL, fmt.Sprintf("manga/?page=%d", page))
		},
		listing: listingRules{
			item:    ".listupd .utao",
			title:   ".luf h4, .luf h3",
			cover:   ".limit img",
			status:  ".status",
			latest:  ".luf ul li a",
			hasNext: ".pagination .next, .hpage .r",
		},
		detail: detailRules{
			title:        ".entry-title, h1",
			cover:        ".thumb img, .series-thumb img",
			description:  ".entry-content, .series-synops",
			status:       ".status",
			genres:       ".genxed a",
			chapters:     ".eplister li a, #chapterlist li a",
			chapterLabel: ".chapternum",
		},
		pages: "#readerarea img, .reader-area img, .chapter-images img",
	}}
}
