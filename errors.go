package entropyForest

import "errors"

// Configuration errors. Options.Validate and Forest.Train return these
// (possibly wrapped); match them with errors.Is.
var (
	ErrNoRows         = errors.New("entropyForest: dataset has no rows")
	ErrNoColumns      = errors.New("entropyForest: dataset has no columns")
	ErrLabelCount     = errors.New("entropyForest: label count does not match row count")
	ErrShape          = errors.New("entropyForest: data length does not match shape")
	ErrNaN            = errors.New("entropyForest: dataset holds NaN")
	ErrTreeCount      = errors.New("entropyForest: tree count must be positive")
	ErrColumnFraction = errors.New("entropyForest: column fraction must be in (0, 1]")
	ErrRowFraction    = errors.New("entropyForest: row fraction must be in (0, 1]")
	ErrTreeHeight     = errors.New("entropyForest: max tree height must be positive")
	ErrLeafRows       = errors.New("entropyForest: max leaf rows must not be negative")
	ErrWorkers        = errors.New("entropyForest: workers must be positive")
)

// Precondition errors on trained structures.
var (
	ErrEmptyTree    = errors.New("entropyForest: tree has no nodes")
	ErrUnknownNode  = errors.New("entropyForest: node id out of range")
	ErrFeatureCount = errors.New("entropyForest: row has fewer features than the split column")
	ErrUntrained    = errors.New("entropyForest: forest has no trees")
)
