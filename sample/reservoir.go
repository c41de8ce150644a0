// Package sample draws uniform random subsets of indices and streams.
//
// Every function takes an explicit *rand.Rand so callers control seeding;
// nothing here touches a global source.
package sample

import (
	"iter"

	"golang.org/x/exp/rand"
)

// Reservoir returns k items drawn uniformly without replacement from seq.
// The length of seq need not be known in advance. If seq yields fewer than k
// items, everything read is returned.
//
// The first k items fill the reservoir. The item at 1-indexed position
// p > k replaces slot j, with j uniform in [0, p), when j < k.
func Reservoir[T any](seq iter.Seq[T], k int, r *rand.Rand) []T {
	if k <= 0 {
		return nil
	}
	out := make([]T, 0, k)
	count := 0
	for v := range seq {
		count++
		if count <= k {
			out = append(out, v)
			continue
		}
		if j := r.Intn(count); j < k {
			out[j] = v
		}
	}
	return out
}

// Indices yields 0, 1, ..., n-1.
func Indices(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// Slice yields the elements of items in order.
func Slice[T any](items []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range items {
			if !yield(v) {
				return
			}
		}
	}
}
