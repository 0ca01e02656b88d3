// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/komikflow/pkg/slug"
)

/*
TestFrom covers accent folding, punctuation and whitespace collapsing.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Solo Leveling", "solo-leveling"},
		{"  The Beginning After The End!! ", "the-beginning-after-the-end"},
		{"Pokémon: Adventures", "pokemon-adventures"},
		{"나 혼자만 레벨업", ""},
		{"Chapter 10.5", "chapter-10-5"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.in))
		})
	}
}

/*
TestCandidates lists the collision fallbacks in order.
*/
func TestCandidates(t *testing.T) {
	assert.Equal(t,
		[]string{"solo-leveling", "solo-leveling-komikcast", "solo-leveling-komikcast-2", "solo-leveling-komikcast-3"},
		slug.Candidates("Solo Leveling", "solo-leveling-x", "KOMIKCAST", 4),
	)

	// Non-Latin titles fall back to the source slug
	assert.Equal(t,
		[]string{"na-honjaman-level-up", "na-honjaman-level-up-shinigami"},
		slug.Candidates("나 혼자만 레벨업", "na-honjaman-level-up", "SHINIGAMI", 2),
	)

	assert.Equal(t, []string{"comic"}, slug.Candidates("", "", "", 1))
}
