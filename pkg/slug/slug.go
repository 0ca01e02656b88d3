// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// Comic slugs are derived from the scraped title once, at creation, and used
// as the public identifier (e.g. "solo-leveling").
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches any sequence of non-alphanumeric, non-hyphen characters.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	// multiHyphen collapses multiple consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Replaces non-alphanumeric characters with hyphens.
// 5. Collapses multiple hyphens and trims leading/trailing hyphens.
func From(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Replace whitespace and special chars with hyphens
	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, result)

	// 4. Clean up hyphenation
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	return result
}

// Candidates returns the slugs to try for base, in order: base itself, base
// with the suffix, then base-suffix-2 ... base-suffix-n.
//
// An empty base falls back to fallback so a title made only of non-Latin
// characters still yields a usable slug.
func Candidates(base, fallback, suffix string, n int) []string {
	base = From(base)
	if base == "" {
		base = From(fallback)
	}
	if base == "" {
		base = "comic"
	}

	suffix = From(suffix)
	candidates := []string{base}
	if suffix == "" || n < 2 {
		return candidates
	}

	candidates = append(candidates, base+"-"+suffix)
	for i := 2; len(candidates) < n; i++ {
		candidates = append(candidates, fmt.Sprintf("%s-%s-%d", base, suffix, i))
	}
	return candidates
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
