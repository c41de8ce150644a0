package entropyForest

import (
	"cmp"
	"math"
	"slices"
)

// splitter finds the best binary split of a row range on one column.
// Its histograms are reused across calls, so a splitter belongs to a single
// tree build and must not be shared between goroutines.
type splitter[L Label] struct {
	labels       []L
	lower, upper histogram[L]
}

func newSplitter[L Label](labels []L, classes []L) *splitter[L] {
	return &splitter[L]{
		labels: labels,
		lower:  newHistogram(classes),
		upper:  newHistogram(classes),
	}
}

// balancedEntropy scores rows [0,i) against [i,n): each side's entropy is
// divided by its size, and the sum by n.
func (s *splitter[L]) balancedEntropy(i, n int) float64 {
	lower := s.lower.entropy(i) / float64(i)
	upper := s.upper.entropy(n-i) / float64(n-i)
	return (lower + upper) / float64(n)
}

// bestSplit sorts rows in place by column and returns the position p that
// minimises the balanced entropy of rows[:p] against rows[p:], together with
// that entropy. Position 1 is the baseline and is returned unless a later
// position scores strictly lower. Positions whose value equals the previous
// row's value are not candidates. The search stops at the first zero.
//
// rows must hold at least two indices; otherwise (0, +Inf) is returned.
func (s *splitter[L]) bestSplit(column []float64, rows []int) (int, float64) {
	n := len(rows)
	if n < 2 {
		return 0, math.Inf(1)
	}
	slices.SortFunc(rows, func(a, b int) int {
		return cmp.Compare(column[a], column[b])
	})

	s.lower.reset()
	s.upper.reset()
	for _, r := range rows {
		s.upper.add(s.labels[r], 1)
	}

	first := s.labels[rows[0]]
	s.lower.add(first, 1)
	s.upper.add(first, -1)
	pos, best := 1, s.balancedEntropy(1, n)
	if best == 0 {
		return pos, best
	}

	for i := 2; i < n; i++ {
		moved := s.labels[rows[i-1]]
		s.lower.add(moved, 1)
		s.upper.add(moved, -1)
		if column[rows[i]] == column[rows[i-1]] {
			continue
		}
		if e := s.balancedEntropy(i, n); e < best {
			pos, best = i, e
			if e == 0 {
				break
			}
		}
	}
	return pos, best
}

// FindBestSplit sorts rows in place by column and returns the split position
// within rows and its balanced entropy. The threshold of the split is
// column[rows[position]]. labels is indexed by row.
func FindBestSplit[L Label](column []float64, rows []int, labels []L) (int, float64) {
	sub := make([]L, len(rows))
	for i, r := range rows {
		sub[i] = labels[r]
	}
	return newSplitter(labels, classesOf(sub)).bestSplit(column, rows)
}
