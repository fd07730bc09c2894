package polychaos

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

type unitGerm struct{}

func (unitGerm) Basis() BasisFamily             { return Legendre }
func (unitGerm) Standardize(x float64) float64 { return 2*x - 1 }

func uniformSample(n, d int, seed uint64) (X *mat.Dense) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	X = mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			X.Set(i, j, rng.Float64())
		}
	}
	return
}

func germs(d int) (g []Germ) {
	for i := 0; i < d; i++ {
		g = append(g, unitGerm{})
	}
	return
}

func TestBasisValues(t *testing.T) {
	{ // Orthonormal Legendre under U(-1,1)
		p := Legendre.Evaluate(0.5, 3, nil)
		assert.InDelta(t, 1., p[0], 1.e-14)
		assert.InDelta(t, math.Sqrt(3)*0.5, p[1], 1.e-14)
		assert.InDelta(t, math.Sqrt(5)*(3*0.25-1)/2, p[2], 1.e-14)
		assert.InDelta(t, math.Sqrt(7)*(5*0.125-3*0.5)/2, p[3], 1.e-14)
	}
	{ // Normalized Hermite under N(0,1)
		p := Hermite.Evaluate(1.5, 3, nil)
		assert.InDelta(t, 1., p[0], 1.e-14)
		assert.InDelta(t, 1.5, p[1], 1.e-14)
		assert.InDelta(t, (1.5*1.5-1)/math.Sqrt2, p[2], 1.e-14)
		assert.InDelta(t, (1.5*1.5*1.5-3*1.5)/math.Sqrt(6), p[3], 1.e-14)
	}
	{ // Storage is reused when large enough
		buf := make([]float64, 10)
		p := Legendre.Evaluate(0.1, 4, buf)
		assert.Equal(t, 5, len(p))
		assert.Equal(t, &buf[0], &p[0])
	}
	{ // Second moments through Gauss-Legendre quadrature, 4 points integrate degree 7 exactly
		z := []float64{-0.8611363115940526, -0.33998104358485626, 0.33998104358485626, 0.8611363115940526}
		w := []float64{0.34785484513745385, 0.6521451548625461, 0.6521451548625461, 0.34785484513745385}
		for m := 0; m <= 3; m++ {
			for n := 0; n <= 3; n++ {
				var sum float64
				for q := range z {
					p := Legendre.Evaluate(z[q], 3, nil)
					sum += 0.5 * w[q] * p[m] * p[n]
				}
				if m == n {
					assert.InDelta(t, 1., sum, 1.e-12)
				} else {
					assert.InDelta(t, 0., sum, 1.e-12)
				}
			}
		}
	}
}

func TestTotalDegreeBasis(t *testing.T) {
	assert.Equal(t, 20, BasisSize(3, 3))
	assert.Equal(t, 10, BasisSize(2, 3))
	assert.Equal(t, 45, BasisSize(8, 2))
	for _, dd := range [][2]int{{1, 4}, {2, 3}, {3, 3}, {5, 2}} {
		dim, deg := dd[0], dd[1]
		basis := TotalDegreeBasis(dim, deg)
		require.Equal(t, BasisSize(dim, deg), len(basis))
		assert.Equal(t, 0, basis[0].Degree())
		seen := make(map[[8]int]bool)
		for k, mi := range basis {
			assert.Equal(t, dim, len(mi))
			assert.LessOrEqual(t, mi.Degree(), deg)
			if k > 0 {
				assert.LessOrEqual(t, basis[k-1].Degree(), mi.Degree())
			}
			var key [8]int
			copy(key[:], mi)
			assert.False(t, seen[key], "duplicate term %v", mi)
			seen[key] = true
		}
	}
	{
		mi := MultiIndex{0, 2, 1}
		assert.Equal(t, []int{1, 2}, mi.Support())
		assert.True(t, mi.Involves(1))
		assert.False(t, mi.Involves(0))
		assert.False(t, mi.OnlyInvolves(1))
		assert.True(t, MultiIndex{0, 3, 0}.OnlyInvolves(1))
	}
}

func TestFitAdditive(t *testing.T) {
	var (
		n = 200
		X = uniformSample(n, 3, 11)
		y = make([]float64, n)
	)
	for i := 0; i < n; i++ {
		y[i] = X.At(i, 0) + 2*X.At(i, 1) + 3*X.At(i, 2)
	}
	pce, err := Fit(X, y, germs(3), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 20, pce.Candidates)
	assert.InDelta(t, 3., pce.Mean(), 1.e-8)
	assert.InDelta(t, 14./12., pce.Variance(), 1.e-8)
	first, total, err := pce.SobolIndices()
	require.NoError(t, err)
	exact := []float64{1. / 14, 4. / 14, 9. / 14}
	assert.InDeltaSlice(t, exact, first, 1.e-6)
	assert.InDeltaSlice(t, exact, total, 1.e-6)
	assert.InDelta(t, 2.9, pce.Predict([]float64{0.1, 0.2, 0.8}), 1.e-8)

	Xv := uniformSample(50, 3, 99)
	yv := make([]float64, 50)
	for i := range yv {
		yv[i] = Xv.At(i, 0) + 2*Xv.At(i, 1) + 3*Xv.At(i, 2)
	}
	assert.InDelta(t, 1., pce.Predictivity(Xv, yv), 1.e-8)
}

func TestFitInteraction(t *testing.T) {
	var (
		n = 150
		X = uniformSample(n, 2, 5)
		y = make([]float64, n)
	)
	for i := 0; i < n; i++ {
		y[i] = X.At(i, 0) * X.At(i, 1)
	}
	for _, full := range []bool{false, true} {
		pce, err := Fit(X, y, germs(2), Options{TotalDegree: 2, FullBasis: full})
		require.NoError(t, err)
		first, total, err := pce.SobolIndices()
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{3. / 7, 3. / 7}, first, 1.e-6)
		assert.InDeltaSlice(t, []float64{4. / 7, 4. / 7}, total, 1.e-6)
		assert.InDelta(t, 1./7, pce.GroupIndex([]int{0, 1}), 1.e-6)
		assert.InDelta(t, 3./7, pce.GroupIndex([]int{1}), 1.e-6)
		for i := range first {
			assert.LessOrEqual(t, first[i], total[i])
		}
	}
}

func TestFitErrors(t *testing.T) {
	X := uniformSample(20, 2, 1)
	{ // mismatched lengths
		_, err := Fit(X, make([]float64, 19), germs(2), DefaultOptions())
		assert.Error(t, err)
	}
	{ // germ count
		_, err := Fit(X, make([]float64, 20), germs(3), DefaultOptions())
		assert.Error(t, err)
	}
	{ // degree
		_, err := Fit(X, make([]float64, 20), germs(2), Options{})
		assert.Error(t, err)
	}
	{ // constant output has no variance to decompose
		y := make([]float64, 20)
		for i := range y {
			y[i] = 4
		}
		pce, err := Fit(X, y, germs(2), DefaultOptions())
		require.NoError(t, err)
		assert.InDelta(t, 4., pce.Mean(), 1.e-12)
		_, _, err = pce.SobolIndices()
		assert.Error(t, err)
	}
}

func TestCorrectedLOO(t *testing.T) {
	{ // Zero residual is zero error
		assert.Equal(t, 0., correctedLOO(make([]float64, 5), make([]float64, 5), 0.2, 2))
	}
	{ // Unit leverage cannot be left out
		assert.True(t, math.IsInf(correctedLOO([]float64{1, 1}, []float64{1, 0}, 0, 1), 1))
	}
	{ // Back substitution against a small triangle stored by column
		R := [][]float64{{2}, {1, 4}}
		beta := backSubstitute(R, []float64{4, 8})
		assert.InDeltaSlice(t, []float64{1, 2}, beta, 1.e-14)
		// tr((R^T R)^-1) = ||R^-1||_F^2 with R^-1 = [[1/2, -1/8], [0, 1/4]]
		assert.InDelta(t, 0.25+1./64+1./16, traceInverseGram(R), 1.e-14)
	}
}
