package entropyForest

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/exp/rand"

	"github.com/zeidlermicha/entropyForest/sample"
)

// builder grows one tree. Everything it holds is owned by that tree, so
// builders for different trees can run concurrently over a shared Dataset.
type builder[L Label] struct {
	ds     Dataset
	labels []L
	opts   *Options
	rng    *rand.Rand
	tree   *Tree[L]
	split  *splitter[L]
	votes  histogram[L]
	subset int

	// oob collects leaf predictions for out-of-bag rows; nil skips it.
	oob        *ConfusionMatrix[L]
	oobCorrect int
	oobTotal   int
}

func newBuilder[L Label](ds Dataset, labels, classes []L, opts *Options, r *rand.Rand) *builder[L] {
	return &builder[L]{
		ds:     ds,
		labels: labels,
		opts:   opts,
		rng:    r,
		split:  newSplitter(labels, classes),
		votes:  newHistogram(classes),
		subset: columnSubset(ds.Cols(), opts.ColumnFraction),
	}
}

// columnSubset is ceil(fraction * cols), kept within [1, cols].
func columnSubset(cols int, fraction float64) int {
	k := int(math.Ceil(fraction * float64(cols)))
	return min(max(k, 1), cols)
}

// grow builds a fresh tree over rows, routing oob through it for scoring.
func (b *builder[L]) grow(rows, oob []int) *Tree[L] {
	b.tree = NewTree[L](len(rows))
	root := b.tree.InsertRoot()
	b.buildNode(root, rows, oob, 0)
	return b.tree
}

func (b *builder[L]) buildNode(id NodeID, rows, oob []int, height int) {
	b.tree.nodes[id].Size = len(rows)

	if label, ok := b.pure(rows); ok {
		b.genLeafNode(id, label, oob)
		return
	}
	majority := b.majority(rows)
	if height >= b.opts.MaxHeight || b.tooSmall(len(rows)) {
		b.genLeafNode(id, majority, oob)
		return
	}

	column, pos, entropy, sorted := b.bestSplit(rows)
	threshold := b.ds.At(sorted[pos], column)
	b.tree.SetSplit(id, column, threshold)
	b.tree.nodes[id].Label = majority
	b.tree.nodes[id].Entropy = entropy

	left, right := sorted[:pos:pos], sorted[pos:]
	oobLeft, oobRight := b.partition(oob, column, threshold)
	if len(left) > 0 {
		b.buildNode(b.tree.InsertLeftChild(id), left, oobLeft, height+1)
	} else {
		b.score(majority, oobLeft)
	}
	if len(right) > 0 {
		b.buildNode(b.tree.InsertRightChild(id), right, oobRight, height+1)
	} else {
		b.score(majority, oobRight)
	}
}

// bestSplit runs the split search on a random column subset and keeps the
// lowest entropy. sorted is a fresh copy of rows ordered by the winning column.
func (b *builder[L]) bestSplit(rows []int) (column, pos int, entropy float64, sorted []int) {
	entropy = math.Inf(1)
	sorted = make([]int, len(rows))
	for _, c := range sample.Reservoir(sample.Indices(b.ds.Cols()), b.subset, b.rng) {
		p, e := b.split.bestSplit(b.ds.Column(c), rows)
		if e < entropy {
			column, pos, entropy = c, p, e
			copy(sorted, rows)
		}
	}
	return column, pos, entropy, sorted
}

func (b *builder[L]) tooSmall(n int) bool {
	if b.opts.LogLeafRows {
		return float64(n) < math.Log(float64(b.ds.Rows()))
	}
	return n <= b.opts.MaxLeafRows
}

func (b *builder[L]) pure(rows []int) (L, bool) {
	first := b.labels[rows[0]]
	for _, r := range rows[1:] {
		if b.labels[r] != first {
			return first, false
		}
	}
	return first, true
}

// majority returns the most frequent label in rows; ties go to the smallest.
func (b *builder[L]) majority(rows []int) L {
	b.votes.reset()
	for _, r := range rows {
		b.votes.add(b.labels[r], 1)
	}
	return b.votes.majority()
}

func (b *builder[L]) genLeafNode(id NodeID, label L, oob []int) {
	b.tree.SetLeaf(id, label)
	b.score(label, oob)
}

// partition reorders oob in place so rows routed left come first.
func (b *builder[L]) partition(oob []int, column int, threshold float64) ([]int, []int) {
	i := 0
	for j, r := range oob {
		if b.ds.At(r, column) < threshold {
			oob[i], oob[j] = oob[j], oob[i]
			i++
		}
	}
	return oob[:i:i], oob[i:]
}

func (b *builder[L]) score(predicted L, oob []int) {
	for _, r := range oob {
		actual := b.labels[r]
		if b.oob != nil {
			b.oob.Add(predicted, actual)
		}
		if predicted == actual {
			b.oobCorrect++
		}
		b.oobTotal++
	}
}

// BuildTree grows a single tree over the given rows of ds. rows is reordered
// in place. Only ColumnFraction, MaxHeight, MaxLeafRows and LogLeafRows of
// opts are used.
func BuildTree[L Label](ds Dataset, labels []L, rows []int, opts Options, r *rand.Rand) (*Tree[L], error) {
	if err := checkData(ds, labels); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.MaxHeight = min(opts.MaxHeight, MaxTreeHeight)
	b := newBuilder(ds, labels, classesOf(labels), &opts, r)
	return b.grow(rows, nil), nil
}

func checkData[L Label](ds Dataset, labels []L) error {
	if ds.Rows() == 0 {
		return ErrNoRows
	}
	if ds.Cols() == 0 {
		return ErrNoColumns
	}
	if len(labels) != ds.Rows() {
		return fmt.Errorf("%w: %d labels for %d rows", ErrLabelCount, len(labels), ds.Rows())
	}
	return checkNaN(ds)
}

// growTree draws a bootstrap sample with its own generator and grows one tree
// on it. The returned matrix holds per-tree leaf scores of the out-of-bag rows
// when collect is set.
func growTree[L Label](ds Dataset, labels, classes []L, opts *Options, seed uint64, collect bool) (*Tree[L], *ConfusionMatrix[L]) {
	r := rand.New(rand.NewSource(seed))
	var inBag, outOfBag []int
	switch opts.Bootstrap {
	case ReservoirBootstrap:
		inBag, outOfBag = sample.ReservoirSplit(ds.Rows(), opts.RowFraction, r)
	default:
		inBag, outOfBag = sample.Shuffle(ds.Rows(), opts.RowFraction, r)
	}

	b := newBuilder(ds, labels, classes, opts, r)
	if collect {
		b.oob = NewConfusionMatrix(classes)
	}
	t := b.grow(inBag, outOfBag)
	if b.oobTotal > 0 {
		t.Validation = float64(b.oobCorrect) / float64(b.oobTotal)
	}
	t.outOfBag = slices.Clone(outOfBag)
	slices.Sort(t.outOfBag)
	return t, b.oob
}
