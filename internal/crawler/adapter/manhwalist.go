// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package adapter

import "fmt"

// NewManhwalist returns the adapter for the MANHWALIST theme.
func NewManhwalist() Adapter {
	return &ruleAdapter{rules: rules{
		code: Manhwalist,
		listingURL: func(baseURL string, page int) string {
			return joinPath(baseURL, fmt.Sprintf("manga/?page=%d", page))
		},
		listing: listingRules{
			item:    ".bs .bsx",
			title:   ".tt",
			cover:   "img",
			status:  ".status",
			genres:  ".limit .genre a",
			latest:  ".epxs",
			hasNext: ".pagination .next",
		},
		detail: detailRules{
			title:       ".entry-title, h1.title",
			cover:       ".thumb img, .series-thumb img",
			description: ".entry-content p, .series-synops",
			status:      ".series-status",
			genres:      ".series-genres a",
			chapters:    ".chapter-list li a, .eplister li a",
		},
		pages: "#readerarea img, .reader-area img, .chapter-content img",
	}}
}
