package sample_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/zeidlermicha/entropyForest/sample"
)

func TestReservoir_ShortStream(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	got := sample.Reservoir(sample.Slice([]string{"a", "b"}), 5, r)
	assert.Equal(t, []string{"a", "b"}, got, "short stream returns everything read")
}

func TestReservoir_ZeroK(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	assert.Empty(t, sample.Reservoir(sample.Indices(10), 0, r))
}

func TestReservoir_DistinctItems(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 100; trial++ {
		got := sample.Reservoir(sample.Indices(50), 10, r)
		require.Len(t, got, 10)
		seen := make(map[int]bool)
		for _, v := range got {
			assert.False(t, seen[v], "item %d drawn twice", v)
			assert.True(t, v >= 0 && v < 50)
			seen[v] = true
		}
	}
}

// TestReservoir_Uniformity samples k=2 from five items and checks that each
// item's inclusion frequency approaches 2/5.
func TestReservoir_Uniformity(t *testing.T) {
	const trials = 200000
	r := rand.New(rand.NewSource(42))
	items := []int{10, 20, 30, 40, 50}
	hits := make(map[int]int)
	for i := 0; i < trials; i++ {
		for _, v := range sample.Reservoir(sample.Slice(items), 2, r) {
			hits[v]++
		}
	}
	for _, v := range items {
		freq := float64(hits[v]) / trials
		assert.InDelta(t, 0.4, freq, 0.01, "inclusion frequency of %d", v)
	}
}

func TestIndices_StopsEarly(t *testing.T) {
	var got []int
	for i := range sample.Indices(100) {
		if i == 3 {
			break
		}
		got = append(got, i)
	}
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestInBagSize(t *testing.T) {
	assert.Equal(t, 0, sample.InBagSize(0, 0.5))
	assert.Equal(t, 1, sample.InBagSize(10, 0.01))
	assert.Equal(t, 7, sample.InBagSize(10, 0.63))
	assert.Equal(t, 10, sample.InBagSize(10, 1))
}

func TestShuffle_Partition(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	in, out := sample.Shuffle(20, 0.63, r)
	assert.Len(t, in, 13)
	assert.Len(t, out, 7)
	all := append(append([]int{}, in...), out...)
	sort.Ints(all)
	for i, v := range all {
		assert.Equal(t, i, v)
	}
}

func TestReservoirSplit_Partition(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	in, out := sample.ReservoirSplit(30, 0.5, r)
	assert.Len(t, in, 15)
	assert.Len(t, out, 15)
	assert.True(t, sort.IntsAreSorted(out))
	all := append(append([]int{}, in...), out...)
	sort.Ints(all)
	for i, v := range all {
		assert.Equal(t, i, v)
	}
}
