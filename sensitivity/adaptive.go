package sensitivity

import (
	"context"

	"github.com/montanaflynn/stats"
	"github.com/notargets/sobolsa/results"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// adapt runs batches of NRun estimates on fresh samples. After a batch the
// coordinator measures the spread of the first order indices across runs and
// broadcasts its decision, so every rank leaves the loop on the same batch.
// A batch with spread at or above AdaptTol doubles the sampling size, up to
// MaxIterations batches. The reported indices are the mean of the last batch.
func (w *worker) adapt(ctx context.Context) (o *outcome, err error) {
	var (
		N      = w.cfg.SamplingSize
		W      = w.c.Size()
		coord  = w.c.IsCoordinator()
		batch  []results.Snapshot
		spread float64
	)
	o = &outcome{}
	for it := 1; ; it++ {
		batch = batch[:0]
		for run := 0; run < w.cfg.NRun; run++ {
			ps, err := w.draw(ctx, N)
			if err != nil {
				return nil, errors.Wrapf(err, "iteration %d, run %d", it, run)
			}
			if !coord {
				continue
			}
			is, pce, err := w.estimate(ps, N)
			if err != nil {
				return nil, errors.Wrapf(err, "iteration %d, run %d, sampling size %d", it, run, N*W)
			}
			batch = append(batch, results.Snapshot{SamplingSize: N * W, Indices: is})
			o.sample, o.expansion = ps, pce
		}
		decision := []float64{0, 0}
		if coord {
			if spread, err = firstOrderSpread(batch); err != nil {
				return nil, err
			}
			if spread < w.cfg.AdaptTol {
				decision[0] = 1
			}
			decision[1] = spread
		}
		if decision, err = w.c.Broadcast(ctx, decision); err != nil {
			return nil, errors.Wrapf(err, "iteration %d", it)
		}
		converged := decision[0] == 1
		w.logger.Info("adaptive iteration", zap.Int("iteration", it), zap.Int("sampling-size", N*W),
			zap.Float64("spread", decision[1]), zap.Bool("converged", converged))
		if converged || it >= w.cfg.MaxIterations {
			if !coord {
				return nil, nil
			}
			o.final = results.Combine(batch)
			o.samplingSize = N * W
			o.iterations = it
			o.converged = converged
			if !converged {
				w.logger.Warn("adaptive loop stopped before convergence", zap.Int("iterations", it),
					zap.Float64("spread", spread), zap.Float64("tolerance", w.cfg.AdaptTol))
			}
			return
		}
		N *= 2
	}
}

// firstOrderSpread is the largest run to run sample standard deviation of a
// first order index over the batch
func firstOrderSpread(batch []results.Snapshot) (spread float64, err error) {
	if len(batch) < 2 {
		return 0, errors.Errorf("spread of %d runs", len(batch))
	}
	var (
		D   = batch[0].Indices.Dim()
		col = make([]float64, len(batch))
	)
	for i := 0; i < D; i++ {
		for r, s := range batch {
			col[r] = s.Indices.First[i]
		}
		var sd float64
		if sd, err = stats.StandardDeviationSample(col); err != nil {
			return
		}
		spread = max(spread, sd)
	}
	return
}
