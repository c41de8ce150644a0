package entropyForest

import (
	"math"
	"slices"
)

// ConfusionMatrix counts predictions against true labels. Counts is indexed
// [predicted][actual] by the position of each label in Classes.
type ConfusionMatrix[L Label] struct {
	Classes []L
	Counts  [][]int
}

// NewConfusionMatrix returns an empty matrix over classes, which must be
// sorted and distinct.
func NewConfusionMatrix[L Label](classes []L) *ConfusionMatrix[L] {
	counts := make([][]int, len(classes))
	for i := range counts {
		counts[i] = make([]int, len(classes))
	}
	return &ConfusionMatrix[L]{Classes: slices.Clone(classes), Counts: counts}
}

func (m *ConfusionMatrix[L]) index(l L) (int, bool) {
	return slices.BinarySearch(m.Classes, l)
}

// Add records one prediction. Labels outside Classes are ignored.
func (m *ConfusionMatrix[L]) Add(predicted, actual L) {
	p, ok := m.index(predicted)
	if !ok {
		return
	}
	a, ok := m.index(actual)
	if !ok {
		return
	}
	m.Counts[p][a]++
}

// At returns how often actual was predicted as predicted.
func (m *ConfusionMatrix[L]) At(predicted, actual L) int {
	p, ok := m.index(predicted)
	if !ok {
		return 0
	}
	a, ok := m.index(actual)
	if !ok {
		return 0
	}
	return m.Counts[p][a]
}

// Merge adds the counts of o, which must share the same classes.
func (m *ConfusionMatrix[L]) Merge(o *ConfusionMatrix[L]) {
	for i := range o.Counts {
		for j, c := range o.Counts[i] {
			m.Counts[i][j] += c
		}
	}
}

func (m *ConfusionMatrix[L]) Total() int {
	total := 0
	for _, row := range m.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// Correct returns the diagonal sum.
func (m *ConfusionMatrix[L]) Correct() int {
	correct := 0
	for i := range m.Counts {
		correct += m.Counts[i][i]
	}
	return correct
}

// ErrorRate is 1 - Correct/Total, or NaN when nothing was recorded.
func (m *ConfusionMatrix[L]) ErrorRate() float64 {
	total := m.Total()
	if total == 0 {
		return math.NaN()
	}
	return 1 - float64(m.Correct())/float64(total)
}
