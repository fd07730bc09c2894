package sensitivity

import (
	"math"

	"github.com/notargets/sobolsa/sampling"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// SaltelliIndices estimates the indices from the outputs of a design built by
// sampling.SaltelliDesign with base size N in D dimensions. Each index is a
// ratio of sample means U/Q, with Q the variance estimate over A and B, and
// its interval comes from the delta method at the given confidence level.
func SaltelliIndices(y []float64, N, D int, secondOrder bool, confidence float64) (is types.IndexSet, err error) {
	if want := sampling.DesignSize(N, D, secondOrder); len(y) != want || N < 2 {
		return is, errors.Errorf("saltelli: %d outputs, design of base %d in %d dimensions has %d", len(y), N, D, want)
	}
	if !(confidence > 0 && confidence < 1) {
		return is, errors.Wrapf(types.ErrConfig, "confidence level %g outside (0,1)", confidence)
	}
	var (
		yA = sampling.Block(y, N, 0)
		yB = sampling.Block(y, N, 1)
		m  = 0.5 * (stat.Mean(yA, nil) + stat.Mean(yB, nil))
		Q  = make([]float64, N)
		U  = make([]float64, N)
		z  = distuv.UnitNormal.Quantile(0.5 + 0.5*confidence)
	)
	for k := 0; k < N; k++ {
		a, b := yA[k]-m, yB[k]-m
		Q[k] = 0.5 * (a*a + b*b)
	}
	if V := stat.Mean(Q, nil); !(V > 0) {
		return is, errors.Errorf("saltelli: output variance is %v", V)
	}
	is = types.IndexSet{
		First:          make([]float64, D),
		Total:          make([]float64, D),
		FirstIntervals: make([]types.Interval, D),
		TotalIntervals: make([]types.Interval, D),
	}
	for i := 0; i < D; i++ {
		yE := sampling.Block(y, N, 2+i)
		for k := 0; k < N; k++ {
			U[k] = (yB[k] - m) * (yE[k] - yA[k])
		}
		is.First[i], is.FirstIntervals[i] = ratioOfMeans(U, Q, z)
		for k := 0; k < N; k++ {
			d := yA[k] - yE[k]
			U[k] = 0.5 * d * d
		}
		is.Total[i], is.TotalIntervals[i] = ratioOfMeans(U, Q, z)
	}
	if secondOrder {
		V := stat.Mean(Q, nil)
		is.Second = make([][]float64, D)
		for i := range is.Second {
			is.Second[i] = make([]float64, D)
		}
		for i := 0; i < D; i++ {
			yE := sampling.Block(y, N, 2+i)
			for j := i + 1; j < D; j++ {
				yC := sampling.Block(y, N, 2+D+j)
				for k := 0; k < N; k++ {
					U[k] = (yE[k] - m) * (yC[k] - m)
				}
				Sij := stat.Mean(U, nil)/V - is.First[i] - is.First[j]
				is.Second[i][j], is.Second[j][i] = Sij, Sij
			}
		}
	}
	return
}

// ratioOfMeans returns mean(U)/mean(Q) and its delta method interval
func ratioOfMeans(U, Q []float64, z float64) (r float64, iv types.Interval) {
	var (
		n      = float64(len(U))
		mU, vU = stat.MeanVariance(U, nil)
		mQ, vQ = stat.MeanVariance(Q, nil)
		cUQ    = stat.Covariance(U, Q, nil)
	)
	r = mU / mQ
	v := (vU/(mQ*mQ) - 2*mU*cUQ/(mQ*mQ*mQ) + mU*mU*vQ/(mQ*mQ*mQ*mQ)) / n
	hw := z * math.Sqrt(math.Max(v, 0))
	iv = types.Interval{r - hw, r + hw}
	return
}

// saltelliBlocks is the number of N row blocks of a design
func saltelliBlocks(D int, secondOrder bool) int {
	if secondOrder {
		return 2*D + 2
	}
	return D + 2
}

// interleaveDesign turns W rank-ordered designs of base N, K blocks each,
// into a single design of base W*N: block k of the result is block k of rank
// 0, then block k of rank 1, and so on.
func interleaveDesign(X []types.ParameterVector, y []float64, W, K, N int) (Xo []types.ParameterVector, yo []float64) {
	Xo = make([]types.ParameterVector, 0, len(X))
	yo = make([]float64, 0, len(y))
	for k := 0; k < K; k++ {
		for r := 0; r < W; r++ {
			lo := r*K*N + k*N
			Xo = append(Xo, X[lo:lo+N]...)
			yo = append(yo, y[lo:lo+N]...)
		}
	}
	return
}
