package sample

import (
	"math"

	"golang.org/x/exp/rand"
)

// InBagSize is the number of rows kept in-bag when drawing fraction of n rows.
// It is at least 1 and at most n for n > 0.
func InBagSize(n int, fraction float64) int {
	if n <= 0 {
		return 0
	}
	k := int(math.Ceil(fraction * float64(n)))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return k
}

// Shuffle draws a uniform permutation of 0..n-1 and splits it into the first
// InBagSize(n, fraction) rows and the remainder.
func Shuffle(n int, fraction float64, r *rand.Rand) (inBag, outOfBag []int) {
	perm := r.Perm(n)
	k := InBagSize(n, fraction)
	return perm[:k:k], perm[k:]
}

// ReservoirSplit draws the in-bag rows with Reservoir and returns the rows it
// left out, in ascending order.
func ReservoirSplit(n int, fraction float64, r *rand.Rand) (inBag, outOfBag []int) {
	inBag = Reservoir(Indices(n), InBagSize(n, fraction), r)
	used := make([]bool, n)
	for _, i := range inBag {
		used[i] = true
	}
	outOfBag = make([]int, 0, n-len(inBag))
	for i := 0; i < n; i++ {
		if !used[i] {
			outOfBag = append(outOfBag, i)
		}
	}
	return inBag, outOfBag
}
