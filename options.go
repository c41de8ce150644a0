package entropyForest

import (
	"fmt"

	"github.com/rs/zerolog"
)

// MaxTreeHeight is the hard ceiling on Options.MaxHeight.
const MaxTreeHeight = 30

// BootstrapMode selects how the in-bag rows of a tree are drawn.
type BootstrapMode int

const (
	// ShuffleBootstrap permutes all rows and keeps a prefix.
	ShuffleBootstrap BootstrapMode = iota
	// ReservoirBootstrap streams the row indices through a reservoir sampler.
	ReservoirBootstrap
)

// OOBMode selects which prediction out-of-bag rows are scored against.
type OOBMode int

const (
	// TreeOOB scores each out-of-bag row against the leaf of the tree that
	// left it out, once per tree.
	TreeOOB OOBMode = iota
	// EnsembleOOB scores each row once against the majority vote of the trees
	// that left it out.
	EnsembleOOB
)

// Options configures a Forest.
type Options struct {
	TreeCount      int
	ColumnFraction float64
	MaxHeight      int
	RowFraction    float64
	// MaxLeafRows is the largest row range that becomes a majority leaf
	// without attempting a split.
	MaxLeafRows int
	// LogLeafRows replaces MaxLeafRows with ln(dataset rows).
	LogLeafRows bool
	Bootstrap   BootstrapMode
	OOBMode     OOBMode
	Workers     int
	// Seed seeds every random draw. Zero picks a seed from the clock.
	Seed   uint64
	Logger zerolog.Logger
}

// DefaultOptions returns the settings used when New gets no options.
func DefaultOptions() Options {
	return Options{
		TreeCount:      500,
		ColumnFraction: 0.3,
		MaxHeight:      MaxTreeHeight,
		RowFraction:    0.63,
		MaxLeafRows:    5,
		Bootstrap:      ShuffleBootstrap,
		OOBMode:        TreeOOB,
		Workers:        1,
		Logger:         zerolog.Nop(),
	}
}

// Validate checks every field. MaxHeight above MaxTreeHeight is accepted;
// New clamps it.
func (o Options) Validate() error {
	if o.TreeCount <= 0 {
		return fmt.Errorf("%w: %d", ErrTreeCount, o.TreeCount)
	}
	if !(o.ColumnFraction > 0 && o.ColumnFraction <= 1) {
		return fmt.Errorf("%w: %g", ErrColumnFraction, o.ColumnFraction)
	}
	if !(o.RowFraction > 0 && o.RowFraction <= 1) {
		return fmt.Errorf("%w: %g", ErrRowFraction, o.RowFraction)
	}
	if o.MaxHeight <= 0 {
		return fmt.Errorf("%w: %d", ErrTreeHeight, o.MaxHeight)
	}
	if o.MaxLeafRows < 0 {
		return fmt.Errorf("%w: %d", ErrLeafRows, o.MaxLeafRows)
	}
	if o.Workers <= 0 {
		return fmt.Errorf("%w: %d", ErrWorkers, o.Workers)
	}
	return nil
}

// Option changes one setting.
type Option func(*Options)

// WithTreeCount sets the number of trees.
func WithTreeCount(n int) Option { return func(o *Options) { o.TreeCount = n } }

// WithColumnFraction sets the share of columns sampled at every split.
func WithColumnFraction(f float64) Option { return func(o *Options) { o.ColumnFraction = f } }

// WithMaxHeight limits tree height; values above MaxTreeHeight are clamped.
func WithMaxHeight(h int) Option { return func(o *Options) { o.MaxHeight = h } }

// WithRowFraction sets the share of rows kept in-bag per tree.
func WithRowFraction(f float64) Option { return func(o *Options) { o.RowFraction = f } }

// WithMaxLeafRows sets the row count at or below which a range becomes a leaf.
func WithMaxLeafRows(n int) Option { return func(o *Options) { o.MaxLeafRows = n } }

// WithLogLeafRows makes ranges smaller than ln(rows) leaves.
func WithLogLeafRows() Option { return func(o *Options) { o.LogLeafRows = true } }

// WithBootstrap selects how in-bag rows are drawn.
func WithBootstrap(m BootstrapMode) Option { return func(o *Options) { o.Bootstrap = m } }

// WithOOBMode selects how out-of-bag rows are scored.
func WithOOBMode(m OOBMode) Option { return func(o *Options) { o.OOBMode = m } }

// WithWorkers sets how many trees are grown concurrently.
func WithWorkers(n int) Option { return func(o *Options) { o.Workers = n } }

// WithSeed fixes the seed; zero seeds from the clock.
func WithSeed(seed uint64) Option { return func(o *Options) { o.Seed = seed } }

// WithLogger sets the logger training events are written to.
func WithLogger(l zerolog.Logger) Option { return func(o *Options) { o.Logger = l } }
