package ReducedBasis

import (
	"math"

	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Run solves the reduced problem at mu. With a positive RBDim the leading
// RBDim basis functions are used; otherwise the dimension grows until the
// relative change of the output falls below Tolerance. The error bound is the
// magnitude of the last change.
func (m *Model) Run(mu types.ParameterVector, opts types.RunOptions) (res types.Result, err error) {
	if len(mu) != m.Dimension() {
		return res, errors.Wrapf(types.ErrEvaluator, "%d parameters given, model has %d", len(mu), m.Dimension())
	}
	var (
		ops      = m.assemble(mu)
		prev     = math.NaN()
		s        float64
		adaptive = opts.RBDim <= 0
		Nmin, N  = 1, m.Nmax
	)
	if !adaptive {
		N = min(opts.RBDim, m.Nmax)
		Nmin = max(N-1, 1)
	}
	for n := Nmin; n <= N; n++ {
		if s, err = ops.solve(n); err != nil {
			return res, errors.Wrapf(types.ErrEvaluator, "reduced solve at N=%d, mu=%v: %v", n, mu, err)
		}
		if opts.ExportMatrices {
			ops.export(m.Logger, n)
		}
		if !math.IsNaN(prev) {
			res.ErrorBound = math.Abs(s - prev)
			if adaptive && res.ErrorBound <= opts.Tolerance*math.Abs(s) {
				break
			}
		}
		prev = s
	}
	res.Output = s
	return
}

type operators struct {
	A    *mat.Dense
	F, L *mat.VecDense
}

func (m *Model) assemble(mu []float64) (ops operators) {
	ops.A = mat.NewDense(m.Nmax, m.Nmax, nil)
	ops.F = mat.NewVecDense(m.Nmax, nil)
	ops.L = mat.NewVecDense(m.Nmax, nil)
	for q, Aq := range m.aQ {
		var tmp mat.Dense
		tmp.Scale(evalTheta(m.tA[q], mu), Aq)
		ops.A.Add(ops.A, &tmp)
	}
	for q, Fq := range m.fQ {
		ops.F.AddScaledVec(ops.F, evalTheta(m.tF[q], mu), Fq)
	}
	for q, Lq := range m.lQ {
		ops.L.AddScaledVec(ops.L, evalTheta(m.tL[q], mu), Lq)
	}
	return
}

// solve on the leading n basis functions
func (ops operators) solve(n int) (s float64, err error) {
	var (
		A = ops.A.Slice(0, n, 0, n)
		F = ops.F.SliceVec(0, n)
		L = ops.L.SliceVec(0, n)
		u mat.VecDense
	)
	if err = u.SolveVec(A, F); err != nil {
		return
	}
	s = mat.Dot(L, &u)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		err = errors.Errorf("output is %v", s)
	}
	return
}

func (ops operators) export(logger *zap.Logger, n int) {
	logger.Debug("reduced operators",
		zap.Int("N", n),
		zap.Float64s("A", mat.DenseCopyOf(ops.A.Slice(0, n, 0, n)).RawMatrix().Data),
		zap.Float64s("F", mat.VecDenseCopyOf(ops.F.SliceVec(0, n)).RawVector().Data),
		zap.Float64s("L", mat.VecDenseCopyOf(ops.L.SliceVec(0, n)).RawVector().Data),
	)
}
