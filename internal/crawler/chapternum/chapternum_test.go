// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapternum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/komikflow/internal/crawler/chapternum"
)

/*
TestParse covers the detail-page label forms.
*/
func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"Chapter 12", 12},
		{"chapter: 7", 7},
		{"Chapter-003", 3},
		{"Ch. 10.5", 10.5},
		{"CH 4", 4},
		{"Episode 5", 5},
		{"Bab 88 - Akhir", 88},
		{"", 0},
		{"Prologue", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, chapternum.Parse(tt.text))
		})
	}
}

/*
TestParse_FirstPatternWins prefers the "chapter" label over earlier bare numbers.
*/
func TestParse_FirstPatternWins(t *testing.T) {
	assert.Equal(t, 42.0, chapternum.Parse("Season 2 Chapter 42"))
	assert.Equal(t, 2.0, chapternum.Parse("Season 2"))
}

/*
TestParseListing accepts episode labels.
*/
func TestParseListing(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"Ep. 9", 9},
		{"Episode 5", 5},
		{"Chapter 120", 120},
		{"Ch.33.5", 33.5},
		{"Season 3 Ep 14", 14},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, chapternum.ParseListing(tt.text))
		})
	}
}
