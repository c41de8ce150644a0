package entropyForest

import (
	"fmt"
	"slices"
)

// NodeID addresses a node inside its Tree. The root is always 0 and is never
// a child, so NoChild marks an absent child reference.
type NodeID int

const NoChild NodeID = 0

// Node is either a leaf carrying Label, or a split on Column at Threshold.
// Rows with row[Column] < Threshold go Left, the others go Right.
// A split node keeps the majority Label of the rows that reached it; Vote
// returns it when the chosen side was never grown.
type Node[L Label] struct {
	Split     bool
	Column    int
	Threshold float64
	Label     L
	Left      NodeID
	Right     NodeID
	Size      int
	Entropy   float64
}

// IsLeaf reports whether the node carries a prediction instead of a split.
func (n Node[L]) IsLeaf() bool { return !n.Split }

// Tree is a flat, append-only binary decision tree. Nodes reference their
// children by position. The mutators index nodes directly and panic on ids
// the tree never returned; use Node to look up an untrusted id.
type Tree[L Label] struct {
	nodes []Node[L]

	// Validation is the accuracy of this tree on its out-of-bag rows.
	Validation float64
	outOfBag   []int
}

// NewTree returns an empty tree with room for capacity nodes.
func NewTree[L Label](capacity int) *Tree[L] {
	if capacity < 1 {
		capacity = 1
	}
	return &Tree[L]{nodes: make([]Node[L], 0, capacity)}
}

// Len returns the number of nodes.
func (t *Tree[L]) Len() int { return len(t.nodes) }

// Node returns a copy of node id.
func (t *Tree[L]) Node(id NodeID) (Node[L], error) {
	if int(id) < 0 || int(id) >= len(t.nodes) {
		return Node[L]{}, fmt.Errorf("%w: %d of %d", ErrUnknownNode, id, len(t.nodes))
	}
	return t.nodes[id], nil
}

// Nodes returns a copy of the node sequence.
func (t *Tree[L]) Nodes() []Node[L] { return slices.Clone(t.nodes) }

// Root returns the root id, or ErrEmptyTree.
func (t *Tree[L]) Root() (NodeID, error) {
	if len(t.nodes) == 0 {
		return NoChild, ErrEmptyTree
	}
	return 0, nil
}

// InsertRoot adds the root if the tree is empty and returns it.
func (t *Tree[L]) InsertRoot() NodeID {
	if len(t.nodes) == 0 {
		return t.insert()
	}
	return 0
}

// InsertLeftChild allocates the left child of parent, or returns the
// existing one. parent must be a node of t; unknown ids panic.
func (t *Tree[L]) InsertLeftChild(parent NodeID) NodeID {
	if t.nodes[parent].Left == NoChild {
		id := t.insert()
		t.nodes[parent].Left = id
		return id
	}
	return t.nodes[parent].Left
}

// InsertRightChild allocates the right child of parent, or returns the
// existing one. parent must be a node of t.
func (t *Tree[L]) InsertRightChild(parent NodeID) NodeID {
	if t.nodes[parent].Right == NoChild {
		id := t.insert()
		t.nodes[parent].Right = id
		return id
	}
	return t.nodes[parent].Right
}

// InsertChildren allocates both children of parent.
func (t *Tree[L]) InsertChildren(parent NodeID) (left, right NodeID) {
	return t.InsertLeftChild(parent), t.InsertRightChild(parent)
}

func (t *Tree[L]) insert() NodeID {
	t.nodes = append(t.nodes, Node[L]{})
	return NodeID(len(t.nodes) - 1)
}

// SetLeaf turns node id into a leaf predicting label. id must be a node of t.
func (t *Tree[L]) SetLeaf(id NodeID, label L) {
	n := &t.nodes[id]
	n.Split = false
	n.Label = label
}

// SetSplit turns node id into a split on column at threshold. id must be a
// node of t.
func (t *Tree[L]) SetSplit(id NodeID, column int, threshold float64) {
	n := &t.nodes[id]
	n.Split = true
	n.Column = column
	n.Threshold = threshold
}

// Vote walks the tree with row and returns the label of the leaf it reaches.
func (t *Tree[L]) Vote(row []float64) (L, error) {
	var zero L
	if len(t.nodes) == 0 {
		return zero, ErrEmptyTree
	}
	n := &t.nodes[0]
	for n.Split {
		if n.Column >= len(row) {
			return zero, fmt.Errorf("%w: column %d, row has %d", ErrFeatureCount, n.Column, len(row))
		}
		next := n.Right
		if row[n.Column] < n.Threshold {
			next = n.Left
		}
		if next == NoChild {
			return n.Label, nil
		}
		n = &t.nodes[next]
	}
	return n.Label, nil
}

// Equal reports whether both trees hold the same node sequence.
func (t *Tree[L]) Equal(o *Tree[L]) bool {
	return slices.Equal(t.nodes, o.nodes)
}

// Clone returns a deep copy of t.
func (t *Tree[L]) Clone() *Tree[L] {
	return &Tree[L]{
		nodes:      slices.Clone(t.nodes),
		Validation: t.Validation,
		outOfBag:   slices.Clone(t.outOfBag),
	}
}

// Height returns the number of edges on the longest root-to-leaf path,
// or -1 for an empty tree.
func (t *Tree[L]) Height() int {
	if len(t.nodes) == 0 {
		return -1
	}
	return t.height(0)
}

func (t *Tree[L]) height(id NodeID) int {
	n := t.nodes[id]
	h := 0
	if n.Left != NoChild {
		h = max(h, 1+t.height(n.Left))
	}
	if n.Right != NoChild {
		h = max(h, 1+t.height(n.Right))
	}
	return h
}

// Leaves returns the number of leaf nodes.
func (t *Tree[L]) Leaves() int {
	count := 0
	for _, n := range t.nodes {
		if n.IsLeaf() {
			count++
		}
	}
	return count
}

// importance adds the rows routed through each split to imp[column],
// normalised so the tree's contributions sum to 1.
func (t *Tree[L]) importance(nFeatures int) []float64 {
	imp := make([]float64, nFeatures)
	sum := 0.0
	for _, n := range t.nodes {
		if n.Split && n.Column < nFeatures {
			imp[n.Column] += float64(n.Size)
			sum += float64(n.Size)
		}
	}
	if sum > 0 {
		for i := range imp {
			imp[i] /= sum
		}
	}
	return imp
}
