package sensitivity

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/notargets/sobolsa/model_problems"
	"github.com/notargets/sobolsa/results"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep(t *testing.T) {
	var (
		ctx   = context.Background()
		model = model_problems.NewAdditive()
		base  = types.ParameterVector{0.5, 0.5, 0.5}
		nan   = math.NaN()
	)
	sw, err := Sweep(ctx, model, base, "x2", nan, nan, 5, EvalOptions{Threads: 2})
	require.NoError(t, err)
	assert.Equal(t, "x2", sw.Param)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1}, sw.Values, 1.e-15)
	assert.InDeltaSlice(t, []float64{2, 2.5, 3, 3.5, 4}, sw.Outputs, 1.e-14)
	// The baseline is not modified
	assert.Equal(t, types.ParameterVector{0.5, 0.5, 0.5}, base)
	{ // Explicit bounds and a single point
		sw, err := Sweep(ctx, model, base, "x3", 0.2, 0.4, 1, EvalOptions{})
		require.NoError(t, err)
		assert.Equal(t, []float64{0.2}, sw.Values)
		assert.InDelta(t, 0.5+1+0.6, sw.Outputs[0], 1.e-14)
		empty, err := Sweep(ctx, model, base, "x3", nan, nan, 0, EvalOptions{})
		require.NoError(t, err)
		assert.Empty(t, empty.Values)
	}
	{ // The CSV artifact round trips
		path := filepath.Join(t.TempDir(), results.SweepFileName(sw.Param))
		require.NoError(t, sw.Write(path))
		back, err := results.ReadSweep(path)
		require.NoError(t, err)
		assert.InDeltaSlice(t, sw.Outputs, back.Outputs, 1.e-6)
	}
	for _, bad := range []func() error{
		func() error { _, err := Sweep(ctx, model, base, "h_bl", nan, nan, 3, EvalOptions{}); return err },
		func() error { _, err := Sweep(ctx, model, base, "x1", 0.8, 0.2, 3, EvalOptions{}); return err },
		func() error { _, err := Sweep(ctx, model, base[:2], "x1", nan, nan, 3, EvalOptions{}); return err },
		func() error { _, err := Sweep(ctx, model, base, "x1", nan, nan, -1, EvalOptions{}); return err },
	} {
		err := bad()
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrConfig))
	}
}
