package distribution

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/notargets/sobolsa/polychaos"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	e2bNames = []string{"h_bl", "h_amb", "h_tau", "T_bl", "T_amb", "E"}
	e2bMin   = []float64{50, 8, 2, 308.3, 283.15, 20}
	e2bMax   = []float64{110, 100, 10, 312, 303.15, 320}
)

func TestBuildDefaultsToUniform(t *testing.T) {
	joint, err := Build([]string{"a", "b"}, []float64{0, -1}, []float64{1, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, joint.Dimension())
	for _, m := range joint.Marginals {
		assert.Equal(t, Uniform, m.Family())
		assert.Equal(t, polychaos.Legendre, m.Basis())
	}
	lo, hi := joint.Marginals[1].Bounds()
	assert.Equal(t, -1., lo)
	assert.Equal(t, 3., hi)
	assert.InDelta(t, 1., joint.Marginals[1].Quantile(0.5), 1.e-14)
	assert.InDelta(t, 0., joint.Marginals[1].Standardize(1), 1.e-14)
	assert.Equal(t, 2, len(joint.Germs()))
}

func TestBuildEye2Brain(t *testing.T) {
	joint, err := Build(e2bNames, e2bMin, e2bMax, Eye2BrainTable())
	require.NoError(t, err)
	families := []Family{TruncatedLogNormal, TruncatedLogNormal, Uniform, Uniform, Uniform, LogUniform}
	for i, m := range joint.Marginals {
		assert.Equal(t, families[i], m.Family(), e2bNames[i])
	}
	{ // Truncation interval of h_amb is intersected with the model range
		lo, hi := joint.Marginals[1].Bounds()
		assert.Equal(t, 8., lo)
		assert.Equal(t, 100., hi)
	}
	{ // Every draw lies inside its declared support
		rng := rand.New(rand.NewPCG(3, 4))
		u := make([]float64, joint.Dimension())
		for n := 0; n < 2000; n++ {
			for i := range u {
				u[i] = rng.Float64()
			}
			x := joint.Transform(u)
			require.True(t, joint.Contains(x), "%v", x)
		}
	}
	{ // CDF and quantile invert each other
		for _, m := range joint.Marginals {
			for _, p := range []float64{0.01, 0.3, 0.77, 0.99} {
				assert.InDelta(t, p, m.CDF(m.Quantile(p)), 1.e-9, m.String())
			}
		}
	}
	{ // Log-uniform median is the geometric mean of its bounds
		assert.InDelta(t, math.Sqrt(20*320), joint.Marginals[5].Quantile(0.5), 1.e-9)
	}
}

func TestBuildFreeLaws(t *testing.T) {
	table := Table{
		"x": {Family: Normal, Mu: 1, Sigma: 2, Free: true},
		"y": {Family: LogNormal, Mu: 0, Sigma: 0.5, Gamma: 1, Free: true},
		"z": {Family: Normal, Mu: 0, Sigma: 1},
	}
	joint, err := Build([]string{"x", "y", "z"}, []float64{-10, 1, -2}, []float64{10, 10, 2}, table)
	require.NoError(t, err)
	assert.Equal(t, polychaos.Hermite, joint.Marginals[0].Basis())
	assert.InDelta(t, 0.5, joint.Marginals[0].Standardize(2), 1.e-14)
	assert.Equal(t, polychaos.Hermite, joint.Marginals[1].Basis())
	assert.InDelta(t, 0., joint.Marginals[1].Standardize(2), 1.e-14)
	assert.InDelta(t, 2., joint.Marginals[1].Quantile(0.5), 1.e-12)
	{ // Without Free the normal law is clamped to the model range
		m := joint.Marginals[2]
		assert.Equal(t, polychaos.Legendre, m.Basis())
		lo, hi := m.Bounds()
		assert.Equal(t, -2., lo)
		assert.Equal(t, 2., hi)
		assert.InDelta(t, 0., m.Quantile(0.5), 1.e-12)
		assert.InDelta(t, 0., m.Standardize(0), 1.e-12)
	}
}

func TestBuildErrors(t *testing.T) {
	isConfig := func(err error) bool { return errors.Is(err, types.ErrConfig) }
	{ // inverted model bounds
		_, err := Build([]string{"a"}, []float64{2}, []float64{1}, nil)
		assert.True(t, isConfig(err), "%v", err)
	}
	{ // inverted table bounds
		_, err := Build([]string{"a"}, []float64{0}, []float64{1}, Table{"a": {Min: ptr(3), Max: ptr(2)}})
		assert.True(t, isConfig(err), "%v", err)
	}
	{ // log-uniform on a range touching zero
		_, err := Build([]string{"a"}, []float64{0}, []float64{1}, Table{"a": {Family: LogUniform}})
		assert.True(t, isConfig(err), "%v", err)
	}
	{ // empty intersection of truncation and model range
		_, err := Build([]string{"a"}, []float64{0}, []float64{1},
			Table{"a": {Family: TruncatedLogNormal, Sigma: 1, Lower: ptr(2), Upper: ptr(3)}})
		assert.True(t, isConfig(err), "%v", err)
	}
	{ // unknown family and unknown name
		_, err := Build([]string{"a"}, []float64{0}, []float64{1}, Table{"a": {Family: "cauchy"}})
		assert.True(t, isConfig(err), "%v", err)
		_, err = Build([]string{"a"}, []float64{0}, []float64{1}, Table{"b": {}})
		assert.True(t, isConfig(err), "%v", err)
	}
	{ // Restrict keeps only declared names
		r := Eye2BrainTable().Restrict([]string{"E", "x"})
		assert.Equal(t, 1, len(r))
		_, ok := r["E"]
		assert.True(t, ok)
	}
}

func TestBuildBorehole(t *testing.T) {
	var (
		names = []string{"rw", "r", "Tu", "Hu", "Tl", "Hl", "L", "Kw"}
		min   = []float64{0.05, 100, 63070, 990, 63.1, 700, 1120, 9855}
		max   = []float64{0.15, 50000, 115600, 1110, 116, 820, 1680, 12045}
	)
	joint, err := Build(names, min, max, BoreholeTable())
	require.NoError(t, err)
	assert.Equal(t, Normal, joint.Marginals[0].Family())
	assert.Equal(t, LogNormal, joint.Marginals[1].Family())
	lo, hi := joint.Marginals[1].Bounds()
	assert.Equal(t, 100., lo)
	assert.Equal(t, 50000., hi)
}
