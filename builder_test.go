package entropyForest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func mustColumns(t *testing.T, rows [][]float64) *ColumnMajor {
	t.Helper()
	ds, err := FromRows(rows)
	require.NoError(t, err)
	return ds
}

func oneColumn(values ...float64) [][]float64 {
	rows := make([][]float64, len(values))
	for i, v := range values {
		rows[i] = []float64{v}
	}
	return rows
}

func allColumns() Options {
	o := DefaultOptions()
	o.ColumnFraction = 1
	return o
}

func TestBuildTree_SeparableStump(t *testing.T) {
	ds := mustColumns(t, oneColumn(1, 1, 1, 1, 9, 9, 9, 9))
	labels := []int{0, 0, 0, 0, 1, 1, 1, 1}

	tree, err := BuildTree(ds, labels, identity(8), allColumns(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	root, err := tree.Node(0)
	require.NoError(t, err)
	require.True(t, root.Split)
	assert.Equal(t, 0, root.Column)
	assert.Equal(t, 9.0, root.Threshold)
	assert.Equal(t, 0.0, root.Entropy)
	assert.Equal(t, 8, root.Size)
	assert.Equal(t, 3, tree.Len())

	for _, x := range []float64{-5, 1, 8.99} {
		got, err := tree.Vote([]float64{x})
		require.NoError(t, err)
		assert.Equal(t, 0, got, "x=%v", x)
	}
	for _, x := range []float64{9, 20} {
		got, err := tree.Vote([]float64{x})
		require.NoError(t, err)
		assert.Equal(t, 1, got, "x=%v", x)
	}
}

func TestBuildTree_PureLabelsGiveSingleLeaf(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	rows := make([][]float64, 40)
	labels := make([]int, 40)
	for i := range rows {
		rows[i] = []float64{r.Float64(), r.NormFloat64(), float64(i)}
		labels[i] = 3
	}
	ds := mustColumns(t, rows)

	for _, height := range []int{1, 5, 30} {
		o := allColumns()
		o.MaxHeight = height
		tree, err := BuildTree(ds, labels, identity(40), o, r)
		require.NoError(t, err)
		assert.Equal(t, 1, tree.Len())
		for i := 0; i < 40; i++ {
			got, err := tree.Vote(ds.Row(i))
			require.NoError(t, err)
			assert.Equal(t, 3, got)
		}
	}
}

func TestBuildTree_MajorityLeafAtCutoff(t *testing.T) {
	ds := mustColumns(t, oneColumn(1, 2, 3, 4, 5))
	tree, err := BuildTree(ds, []int{1, 0, 1, 0, 1}, identity(5), allColumns(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Equal(t, 1, tree.Len(), "five rows never split with MaxLeafRows=5")
	n, _ := tree.Node(0)
	assert.True(t, n.IsLeaf())
	assert.Equal(t, 1, n.Label)

	ds = mustColumns(t, oneColumn(1, 2, 3, 4))
	tree, err = BuildTree(ds, []int{1, 0, 0, 1}, identity(4), allColumns(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	n, _ = tree.Node(0)
	assert.Equal(t, 0, n.Label, "ties go to the smallest label")
}

func TestBuildTree_HeightLimit(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	rows := make([][]float64, 200)
	labels := make([]int, 200)
	for i := range rows {
		rows[i] = []float64{r.Float64(), r.Float64()}
		labels[i] = r.Intn(2)
	}
	ds := mustColumns(t, rows)

	o := allColumns()
	o.MaxHeight = 1
	o.MaxLeafRows = 0
	tree, err := BuildTree(ds, labels, identity(200), o, r)
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Height())
	assert.Equal(t, 3, tree.Len())

	o.MaxHeight = 50
	tree, err = BuildTree(ds, labels, identity(200), o, r)
	require.NoError(t, err)
	assert.LessOrEqual(t, tree.Height(), MaxTreeHeight, "height is clamped to the ceiling")
}

func TestBuildTree_StructuralInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	rows := make([][]float64, 300)
	labels := make([]int, 300)
	for i := range rows {
		rows[i] = []float64{float64(r.Intn(10)), r.Float64(), float64(r.Intn(3))}
		labels[i] = r.Intn(3)
	}
	ds := mustColumns(t, rows)
	o := allColumns()
	o.MaxLeafRows = 1

	tree, err := BuildTree(ds, labels, identity(300), o, r)
	require.NoError(t, err)
	for id, n := range tree.Nodes() {
		if n.IsLeaf() {
			assert.Equal(t, NoChild, n.Left, "leaf %d", id)
			assert.Equal(t, NoChild, n.Right, "leaf %d", id)
			continue
		}
		assert.True(t, n.Left != NoChild || n.Right != NoChild, "split %d has no child", id)
		sizes := 0
		for _, c := range []NodeID{n.Left, n.Right} {
			if c != NoChild {
				child, err := tree.Node(c)
				require.NoError(t, err)
				sizes += child.Size
			}
		}
		assert.Equal(t, n.Size, sizes, "children partition the rows of split %d", id)
	}

	// Every training row lands in a leaf; no vote may fail.
	for i := 0; i < 300; i++ {
		_, err := tree.Vote(ds.Row(i))
		require.NoError(t, err)
	}
}

func TestBuildTree_LogLeafRows(t *testing.T) {
	// ln(8) ~ 2.08, so ranges of two rows or fewer become leaves.
	ds := mustColumns(t, oneColumn(1, 2, 3, 4, 5, 6, 7, 8))
	labels := []int{0, 1, 0, 1, 0, 1, 0, 1}
	o := allColumns()
	o.LogLeafRows = true

	tree, err := BuildTree(ds, labels, identity(8), o, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	for _, n := range tree.Nodes() {
		if n.IsLeaf() {
			assert.LessOrEqual(t, n.Size, 2)
		} else {
			assert.Greater(t, n.Size, 2)
		}
	}
}

func TestBuildTree_RootTakesBestColumn(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	const n, cols = 120, 4
	rows := make([][]float64, n)
	labels := make([]int, n)
	for i := range rows {
		labels[i] = r.Intn(3)
		rows[i] = make([]float64, cols)
		for j := range rows[i] {
			rows[i][j] = r.Float64() + float64(j*labels[i])*0.2
		}
	}
	ds := mustColumns(t, rows)

	want := math.Inf(1)
	for c := 0; c < cols; c++ {
		_, e := FindBestSplit(ds.Column(c), identity(n), labels)
		want = min(want, e)
	}

	tree, err := BuildTree(ds, labels, identity(n), allColumns(), r)
	require.NoError(t, err)
	root, err := tree.Node(0)
	require.NoError(t, err)
	require.True(t, root.Split)
	assert.InDelta(t, want, root.Entropy, 1e-12)

	_, e := FindBestSplit(ds.Column(root.Column), identity(n), labels)
	assert.InDelta(t, e, root.Entropy, 1e-12, "root entropy is its column's best")
}

func TestBuildTree_RejectsNaN(t *testing.T) {
	nan := math.NaN()
	ds := &ColumnMajor{rows: 8, cols: 1, data: []float64{nan, nan, nan, 1, 1, 1, 9, 9}}
	_, err := BuildTree(ds, []int{0, 0, 0, 0, 0, 0, 1, 1}, identity(8), allColumns(), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrNaN)
}

func TestBuildTree_Errors(t *testing.T) {
	ds := mustColumns(t, oneColumn(1, 2))
	r := rand.New(rand.NewSource(1))

	_, err := BuildTree(ds, []int{0}, identity(2), allColumns(), r)
	assert.ErrorIs(t, err, ErrLabelCount)
	_, err = BuildTree(ds, []int{0, 1}, nil, allColumns(), r)
	assert.ErrorIs(t, err, ErrNoRows)

	o := allColumns()
	o.ColumnFraction = 0
	_, err = BuildTree(ds, []int{0, 1}, identity(2), o, r)
	assert.ErrorIs(t, err, ErrColumnFraction)
}

func TestGrowTree_OutOfBagScoring(t *testing.T) {
	rows := make([][]float64, 60)
	labels := make([]int, 60)
	for i := range rows {
		labels[i] = i % 2
		rows[i] = []float64{1 + 8*float64(labels[i])}
	}
	ds := mustColumns(t, rows)
	o := allColumns()

	for _, mode := range []BootstrapMode{ShuffleBootstrap, ReservoirBootstrap} {
		o.Bootstrap = mode
		tree, m := growTree(ds, labels, []int{0, 1}, &o, 99, true)
		require.NotNil(t, m)
		assert.Len(t, tree.outOfBag, 60-38)
		assert.Equal(t, 60-38, m.Total())
		assert.Equal(t, 0.0, m.ErrorRate())
		assert.Equal(t, 1.0, tree.Validation)
	}
}

func TestColumnSubset(t *testing.T) {
	assert.Equal(t, 1, columnSubset(10, 0.01))
	assert.Equal(t, 3, columnSubset(10, 0.3))
	assert.Equal(t, 4, columnSubset(10, 0.31))
	assert.Equal(t, 10, columnSubset(10, 1))
}
