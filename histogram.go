package entropyForest

import (
	"slices"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat"
)

// Label is the class type a forest predicts.
type Label interface {
	constraints.Integer
}

// Labels in [0, denseLabelLimit) are counted in a flat slice.
const denseLabelLimit = 1024

// histogram counts labels of a row range. entropy and majority visit labels
// in ascending order so results do not depend on map iteration.
type histogram[L Label] interface {
	reset()
	add(label L, n int)
	entropy(total int) float64
	majority() L
}

func newHistogram[L Label](classes []L) histogram[L] {
	if len(classes) > 0 && classes[0] >= 0 && uint64(classes[len(classes)-1]) < denseLabelLimit {
		size := int(classes[len(classes)-1]) + 1
		return &denseHistogram[L]{counts: make([]int, size), probs: make([]float64, size)}
	}
	return &sparseHistogram[L]{counts: make(map[L]int, len(classes))}
}

type denseHistogram[L Label] struct {
	counts []int
	probs  []float64
}

func (h *denseHistogram[L]) reset() { clear(h.counts) }

func (h *denseHistogram[L]) add(label L, n int) { h.counts[int(label)] += n }

func (h *denseHistogram[L]) entropy(total int) float64 {
	if total <= 0 {
		return 0
	}
	inv := 1 / float64(total)
	for i, c := range h.counts {
		h.probs[i] = float64(c) * inv
	}
	return stat.Entropy(h.probs)
}

func (h *denseHistogram[L]) majority() L {
	best := 0
	for i, c := range h.counts {
		if c > h.counts[best] {
			best = i
		}
	}
	return L(best)
}

type sparseHistogram[L Label] struct {
	counts map[L]int
	order  []L
	probs  []float64
}

func (h *sparseHistogram[L]) reset() {
	clear(h.counts)
	h.order = h.order[:0]
}

func (h *sparseHistogram[L]) add(label L, n int) {
	if _, ok := h.counts[label]; !ok {
		i, _ := slices.BinarySearch(h.order, label)
		h.order = slices.Insert(h.order, i, label)
	}
	h.counts[label] += n
}

func (h *sparseHistogram[L]) entropy(total int) float64 {
	if total <= 0 {
		return 0
	}
	inv := 1 / float64(total)
	h.probs = h.probs[:0]
	for _, l := range h.order {
		h.probs = append(h.probs, float64(h.counts[l])*inv)
	}
	return stat.Entropy(h.probs)
}

func (h *sparseHistogram[L]) majority() L {
	var best L
	top := -1
	for _, l := range h.order {
		if c := h.counts[l]; c > top {
			best, top = l, c
		}
	}
	return best
}

// classesOf returns the distinct labels in ascending order.
func classesOf[L Label](labels []L) []L {
	classes := slices.Clone(labels)
	slices.Sort(classes)
	return slices.Compact(classes)
}
