package sensitivity

import (
	"context"
	"math"
	"slices"

	"github.com/notargets/sobolsa/results"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Sweep evaluates the model along n evenly spaced values of one parameter
// from lo to hi, every other parameter held at base. A NaN bound defaults to
// the model bound. n = 1 evaluates lo alone.
func Sweep(ctx context.Context, model types.Model, base types.ParameterVector, param string, lo, hi float64, n int, opts EvalOptions) (sw *results.Sweep, err error) {
	var (
		idx = slices.Index(model.ParameterNames(), param)
	)
	if idx < 0 {
		return nil, errors.Wrapf(types.ErrConfig, "model %s has no parameter %q, parameters are %v",
			model.Name(), param, model.ParameterNames())
	}
	if len(base) != model.Dimension() {
		return nil, errors.Wrapf(types.ErrConfig, "baseline has %d parameters, model %d", len(base), model.Dimension())
	}
	if math.IsNaN(lo) {
		lo = model.Min()[idx]
	}
	if math.IsNaN(hi) {
		hi = model.Max()[idx]
	}
	switch {
	case lo > hi:
		return nil, errors.Wrapf(types.ErrConfig, "sweep of %s: min %g > max %g", param, lo, hi)
	case n < 0:
		return nil, errors.Wrapf(types.ErrConfig, "sweep of %d points", n)
	}
	values := make([]float64, n)
	switch n {
	case 0:
	case 1:
		values[0] = lo
	default:
		floats.Span(values, lo, hi)
	}
	X := make([]types.ParameterVector, n)
	for k, v := range values {
		X[k] = base.Copy()
		X[k][idx] = v
	}
	var (
		ps *types.PairedSample
	)
	if ps, _, err = Evaluate(ctx, model, X, opts); err != nil {
		return nil, errors.Wrapf(err, "sweep of %s", param)
	}
	sw = &results.Sweep{Param: param, Values: values, Outputs: ps.Outputs}
	return
}
