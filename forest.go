// Package entropyForest trains random forests of binary decision trees that
// split on the column and threshold minimising a size-balanced entropy, and
// classifies rows by majority vote.
package entropyForest

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/zeidlermicha/entropyForest"

// Forest is an ensemble of independently grown trees.
type Forest[L Label] struct {
	Options
	Trees    []*Tree[L]
	Classes  []L
	Features int
	// OOB holds the out-of-bag confusion matrix of the last Train.
	OOB *ConfusionMatrix[L]
}

// New returns an untrained forest. Options are applied over DefaultOptions.
func New[L Label](opts ...Option) (*Forest[L], error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	f := &Forest[L]{Options: o}
	f.SetMaxTreeHeight(o.MaxHeight)
	return f, nil
}

// SetMaxTreeHeight sets MaxHeight, clamped to [1, MaxTreeHeight], and reports
// whether h was used unchanged.
func (f *Forest[L]) SetMaxTreeHeight(h int) bool {
	f.MaxHeight = min(max(h, 1), MaxTreeHeight)
	if f.MaxHeight != h {
		f.Logger.Warn().Int("requested", h).Int("height", f.MaxHeight).Msg("max tree height clamped")
		return false
	}
	return true
}

// treeSeed derives the seed of tree i so that a tree does not depend on
// which worker grows it.
func treeSeed(seed uint64, i int) uint64 {
	return seed ^ (uint64(i)+1)*0x9e3779b97f4a7c15
}

// Train grows TreeCount trees on bootstrap samples of ds and fills OOB.
// Options are validated again, so changes made after New are checked.
// On error, including cancellation of ctx, the forest is left unchanged.
func (f *Forest[L]) Train(ctx context.Context, ds Dataset, labels []L) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "entropyForest.Forest.Train",
		trace.WithAttributes(
			attribute.Int("trees", f.TreeCount),
			attribute.Int("rows", ds.Rows()),
			attribute.Int("columns", ds.Cols()),
		))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "training failed")
		}
	}()

	if err = f.Options.Validate(); err != nil {
		return err
	}
	if err = checkData(ds, labels); err != nil {
		return err
	}
	opts := f.Options
	opts.MaxHeight = min(opts.MaxHeight, MaxTreeHeight)
	classes := classesOf(labels)
	seed := f.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	f.Logger.Info().
		Int("trees", f.TreeCount).
		Int("rows", ds.Rows()).
		Int("columns", ds.Cols()).
		Int("classes", len(classes)).
		Int("workers", f.Workers).
		Uint64("seed", seed).
		Msg("training forest")

	trees := make([]*Tree[L], f.TreeCount)
	scores := make([]*ConfusionMatrix[L], f.TreeCount)
	collect := f.OOBMode == TreeOOB

	progCounter := 0
	mutex := &sync.Mutex{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.Workers)
	for i := range trees {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, m := growTree(ds, labels, classes, &opts, treeSeed(seed, i), collect)
			trees[i], scores[i] = t, m

			mutex.Lock()
			progCounter++
			progress := float64(progCounter) / float64(len(trees)) * 100
			mutex.Unlock()
			f.Logger.Debug().
				Int("tree", i).
				Int("nodes", t.Len()).
				Int("height", t.Height()).
				Float64("validation", t.Validation).
				Float64("progress", progress).
				Msg("tree built")
			span.AddEvent("tree built", trace.WithAttributes(attribute.Int("tree", i), attribute.Int("nodes", t.Len())))
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	f.Trees = trees
	f.Classes = classes
	f.Features = ds.Cols()
	if collect {
		f.OOB = NewConfusionMatrix(classes)
		for _, m := range scores {
			f.OOB.Merge(m)
		}
	} else {
		f.OOB = f.ensembleOOB(ds, labels)
	}
	span.SetAttributes(attribute.Float64("oob_error", f.OOB.ErrorRate()))
	f.Logger.Info().
		Int("trees", len(f.Trees)).
		Int("oob_rows", f.OOB.Total()).
		Float64("oob_error", f.OOB.ErrorRate()).
		Msg("training complete")
	return nil
}

// ensembleOOB scores every row that at least one tree left out against the
// majority vote of those trees.
func (f *Forest[L]) ensembleOOB(ds Dataset, labels []L) *ConfusionMatrix[L] {
	m := NewConfusionMatrix(f.Classes)
	votes := newHistogram(f.Classes)
	for r := 0; r < ds.Rows(); r++ {
		row := rowOf(ds, r)
		votes.reset()
		n := 0
		for _, t := range f.Trees {
			if _, ok := slices.BinarySearch(t.outOfBag, r); !ok {
				continue
			}
			l, err := t.Vote(row)
			if err != nil {
				continue
			}
			votes.add(l, 1)
			n++
		}
		if n > 0 {
			m.Add(votes.majority(), labels[r])
		}
	}
	return m
}

// OOBError is the out-of-bag error rate of the last Train, or NaN before it.
func (f *Forest[L]) OOBError() float64 {
	if f.OOB == nil {
		return math.NaN()
	}
	return f.OOB.ErrorRate()
}

// Votes tallies one vote per tree for row.
func (f *Forest[L]) Votes(row []float64) (map[L]int, error) {
	if len(f.Trees) == 0 {
		return nil, ErrUntrained
	}
	counter := make(map[L]int, len(f.Classes))
	for _, t := range f.Trees {
		l, err := t.Vote(row)
		if err != nil {
			return nil, err
		}
		counter[l]++
	}
	return counter, nil
}

// Predict returns the label most trees vote for. Ties go to the smallest label.
func (f *Forest[L]) Predict(row []float64) (L, error) {
	var zero L
	if len(f.Trees) == 0 {
		return zero, ErrUntrained
	}
	votes := newHistogram(f.Classes)
	for _, t := range f.Trees {
		l, err := t.Vote(row)
		if err != nil {
			return zero, err
		}
		votes.add(l, 1)
	}
	return votes.majority(), nil
}

// PredictBatch predicts every row of ds.
func (f *Forest[L]) PredictBatch(ds Dataset) ([]L, error) {
	out := make([]L, ds.Rows())
	for r := range out {
		l, err := f.Predict(rowOf(ds, r))
		if err != nil {
			return nil, err
		}
		out[r] = l
	}
	return out, nil
}

// WeightedPredict weights each tree by 0.5*ln((K-1)(1-e)/e), with
// e = 1.0001 - Validation and K classes, ignoring trees with a non-positive
// weight. With no positive weight it falls back to Predict.
func (f *Forest[L]) WeightedPredict(row []float64) (L, error) {
	var zero L
	if len(f.Trees) == 0 {
		return zero, ErrUntrained
	}
	counter := make(map[L]float64, len(f.Classes))
	for _, t := range f.Trees {
		e := 1.0001 - t.Validation
		w := 0.5 * math.Log(float64(len(f.Classes)-1)*(1-e)/e)
		if !(w > 0) {
			continue
		}
		l, err := t.Vote(row)
		if err != nil {
			return zero, err
		}
		counter[l] += w
	}
	if len(counter) == 0 {
		return f.Predict(row)
	}
	l, _ := maxLabel(f.Classes, counter)
	return l, nil
}

// maxLabel returns the label with the largest value, scanning classes in order.
func maxLabel[L Label](classes []L, votes map[L]float64) (L, float64) {
	var best L
	maxValue := math.Inf(-1)
	for _, l := range classes {
		if v, ok := votes[l]; ok && v > maxValue {
			best, maxValue = l, v
		}
	}
	return best, maxValue
}

// Importance returns, per column, the mean over trees of the share of rows
// routed through splits on that column.
func (f *Forest[L]) Importance() []float64 {
	imp := make([]float64, f.Features)
	if len(f.Trees) == 0 {
		return imp
	}
	for _, t := range f.Trees {
		z := t.importance(f.Features)
		for i := range imp {
			imp[i] += z[i]
		}
	}
	for i := range imp {
		imp[i] /= float64(len(f.Trees))
	}
	return imp
}
