// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with small generic
helpers used when converting between scraped and stored records.
*/
package slice

// Map maps a slice of type T to a slice of type U using the provided transformation function.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}

	return result
}

// Filter filters a slice, returning only elements where the predicate function evaluates to true.
func Filter[T any](input []T, predicate func(T) bool) []T {
	if input == nil {
		return nil
	}

	// Not pre-allocating to full length to avoid excessive memory on heavy filters
	var result []T
	for _, v := range input {
		if predicate(v) {
			result = append(result, v)
		}
	}

	return result
}

// UniqueBy keeps the last element for each key, in order of first appearance.
func UniqueBy[T any, K comparable](input []T, key func(T) K) []T {
	if input == nil {
		return nil
	}

	positions := make(map[K]int, len(input))
	result := make([]T, 0, len(input))
	for _, v := range input {
		k := key(v)
		if at, seen := positions[k]; seen {
			result[at] = v
			continue
		}
		positions[k] = len(result)
		result = append(result, v)
	}

	return result
}
