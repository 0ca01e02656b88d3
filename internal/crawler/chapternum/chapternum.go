// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package chapternum extracts a numeric chapter ordinal from free text such
// as "Chapter 12", "Ch. 10.5" or "Episode 5".
//
// Patterns are tried in order and the first match wins. Text with no number
// yields 0.
package chapternum

import (
	"regexp"
	"strconv"
)

var (
	chapterPattern = regexp.MustCompile(`(?i)chapter[:\s-]*(\d+\.?\d*)`)
	chPattern      = regexp.MustCompile(`(?i)ch\.?\s*(\d+\.?\d*)`)
	episodePattern = regexp.MustCompile(`(?i)ep\.?\s*(\d+\.?\d*)`)
	barePattern    = regexp.MustCompile(`(\d+\.?\d*)`)
)

// detail is used on comic detail pages, where labels are chapter-style.
var detail = []*regexp.Regexp{chapterPattern, chPattern, barePattern}

// listing also accepts episode labels, which some listing cards show.
var listing = []*regexp.Regexp{chapterPattern, chPattern, episodePattern, barePattern}

// Parse returns the chapter ordinal of a detail-page chapter label.
func Parse(text string) float64 {
	return match(detail, text)
}

// ParseListing returns the ordinal of a listing-card label, accepting
// "Ep"/"Episode" in addition to the chapter forms.
func ParseListing(text string) float64 {
	return match(listing, text)
}

func match(patterns []*regexp.Regexp, text string) float64 {
	for _, pattern := range patterns {
		groups := pattern.FindStringSubmatch(text)
		if len(groups) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(groups[1], 64)
		if err != nil {
			continue
		}
		return value
	}
	return 0
}
