// Package sensitivity computes Sobol indices: it maps parameter samples
// through a model, estimates indices by the Saltelli or polynomial chaos
// method, and drives the bootstrap and adaptive refinement loops.
package sensitivity

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/notargets/sobolsa/types"
	"github.com/notargets/sobolsa/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type EvalOptions struct {
	Threads int // goroutines, <= 0 for one per CPU
	Run     types.RunOptions
	Logger  *zap.Logger
}

// Diagnostics accumulates the timing of the model calls of one batch.
type Diagnostics struct {
	Evaluations   int
	Elapsed       time.Duration
	CallTime      time.Duration // summed over all calls
	MaxErrorBound float64
}

func (d Diagnostics) MeanCall() time.Duration {
	if d.Evaluations == 0 {
		return 0
	}
	return d.CallTime / time.Duration(d.Evaluations)
}

// Evaluate runs the model on every row of X and returns the frozen paired
// sample in the order of X. Each goroutine owns a contiguous range of rows and
// writes only its own output slots. The first failure cancels the batch.
func Evaluate(ctx context.Context, model types.Model, X []types.ParameterVector, opts EvalOptions) (ps *types.PairedSample, diag Diagnostics, err error) {
	var (
		n        = len(X)
		logger   = opts.Logger
		Y        = make([]float64, n)
		bounds   = make([]float64, n)
		done     atomic.Int64
		callTime atomic.Int64
		start    = time.Now()
	)
	if logger == nil {
		logger = zap.NewNop()
	}
	if n == 0 {
		ps, err = types.NewPairedSampleFrom(model.ParameterNames(), X, Y)
		return
	}
	var (
		np   = utils.ParallelDegree(opts.Threads, n)
		pm   = utils.NewPartitionMap(np, n)
		step = int64(max(n/10, 1))
	)
	g, gctx := errgroup.WithContext(ctx)
	for b := 0; b < np; b++ {
		kMin, kMax := pm.GetBucketRange(b)
		g.Go(func() error {
			for k := kMin; k < kMax; k++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				t0 := time.Now()
				res, err := model.Run(X[k], opts.Run)
				callTime.Add(int64(time.Since(t0)))
				if err != nil {
					if errors.Is(err, types.ErrEvaluator) {
						return errors.Wrapf(err, "row %d", k)
					}
					return errors.Wrapf(types.ErrEvaluator, "row %d, mu=%v: %v", k, X[k], err)
				}
				if !utils.IsFinite(res.Output) {
					return errors.Wrapf(types.ErrEvaluator, "row %d, mu=%v: output is %v", k, X[k], res.Output)
				}
				Y[k], bounds[k] = res.Output, res.ErrorBound
				if c := done.Add(1); c%step == 0 || c == int64(n) {
					logger.Debug("evaluated", zap.Int64("evaluated", c), zap.Int("total", n),
						zap.Duration("elapsed", time.Since(start)))
				}
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, diag, err
	}
	diag = Diagnostics{
		Evaluations: n,
		Elapsed:     time.Since(start),
		CallTime:    time.Duration(callTime.Load()),
	}
	for _, eb := range bounds {
		diag.MaxErrorBound = max(diag.MaxErrorBound, eb)
	}
	if ps, err = types.NewPairedSampleFrom(model.ParameterNames(), X, Y); err != nil {
		return nil, diag, err
	}
	logger.Info("batch evaluated", zap.Int("evaluations", n), zap.Int("goroutines", np),
		zap.Duration("elapsed", diag.Elapsed), zap.Duration("mean-call", diag.MeanCall()),
		zap.Float64("max-error-bound", diag.MaxErrorBound))
	return
}
