package types

import "github.com/pkg/errors"

// Error classes shared by every stage of an analysis. Wrap one of these with
// errors.Wrapf to add context; test with errors.Is.
var (
	// ErrConfig is a missing selection or a malformed option (inverted bounds, bad family).
	ErrConfig = errors.New("configuration error")
	// ErrConsistency is a Sobol estimate with a first order index above its total order index.
	ErrConsistency = errors.New("sobol indices are inconsistent")
	// ErrEvaluator is a failed or non finite model evaluation.
	ErrEvaluator = errors.New("model evaluation failed")
	// ErrGatherSize is a worker contribution whose size differs from the agreed one.
	ErrGatherSize = errors.New("gather size mismatch")
)
