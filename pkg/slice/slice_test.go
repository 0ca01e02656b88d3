// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/komikflow/pkg/slice"
)

/*
TestUniqueBy keeps the position of the first element and the value of the last.
*/
func TestUniqueBy(t *testing.T) {
	type chapter struct {
		number float64
		title  string
	}

	input := []chapter{{1, "a"}, {2, "b"}, {1, "c"}, {3, "d"}}
	got := slice.UniqueBy(input, func(c chapter) float64 { return c.number })

	assert.Equal(t, []chapter{{1, "c"}, {2, "b"}, {3, "d"}}, got)
	assert.Nil(t, slice.UniqueBy[chapter, float64](nil, func(c chapter) float64 { return c.number }))
}

/*
TestMapFilter exercises the basic transforms.
*/
func TestMapFilter(t *testing.T) {
	doubled := slice.Map([]int{1, 2, 3}, func(v int) int { return v * 2 })
	assert.Equal(t, []int{2, 4, 6}, doubled)

	even := slice.Filter([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 })
	assert.Equal(t, []int{2, 4}, even)
}
