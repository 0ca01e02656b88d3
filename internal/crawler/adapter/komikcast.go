// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package adapter

import "fmt"

// NewKomikcast returns the adapter for KOMIKCAST, whose first catalog page has
// no page segment in its path.
func NewKomikcast() Adapter {
	return &ruleAdapter{rules: rules{
		code: Komikcast,
		listingURL: func(baseURL string, page int) string {
			if page == 1 {
				return joinPath(baseURL, "komik/")
			}
			return joinPath(baseURL, fmt.Sprintf("komik/page/%d/", page))
		},
		listing: listingRules{
			item:    ".list-update_item, .list-update .animepost",
			title:   ".list-title, .data .title",
			cover:   ".list-cover img, img",
			status:  ".status",
			latest:  ".chapter",
			hasNext: ".pagination .next, .pagination a.next",
		},
		detail: detailRules{
			title:       ".komik_info-content-body-title, h1",
			cover:       ".komik_info-content-thumbnail img",
			description: ".komik_info-description-sinopsis",
			status:      ".komik_info-content-info-status",
			genres:      ".komik_info-content-genre a",
			chapters:    ".komik_info-chapters-item a",
		},
		pages: "#chapter_body img, .main-reading-area img, .chapter-area img",
	}}
}
