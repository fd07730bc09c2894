package sensitivity

import (
	"context"
	"slices"

	"github.com/montanaflynn/stats"
	"github.com/notargets/sobolsa/polychaos"
	"github.com/notargets/sobolsa/sampling"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	gstat "gonum.org/v1/gonum/stat"
)

type BootstrapOptions struct {
	Replicates int     // resamples drawn, B
	Alpha      float64 // interval coverage
	Eps        float64 // replicates with an index outside (Eps, 1-Eps) are dropped
	Threads    int
	Seed       uint64
	Chaos      polychaos.Options
	Logger     *zap.Logger
}

type BootstrapResult struct {
	Indices             types.IndexSet // replicate means with quantile intervals
	Accepted, Requested int
}

// Bootstrap refits the chaos expansion on Replicates resamples of ps drawn
// with replacement. Replicate b draws from its own stream seeded from Seed
// and b, so the outcome does not depend on scheduling. A replicate whose fit
// fails or whose indices leave (Eps, 1-Eps) is dropped and not redrawn.
func Bootstrap(ctx context.Context, ps *types.PairedSample, germs []polychaos.Germ, opts BootstrapOptions) (br BootstrapResult, err error) {
	var (
		n      = ps.Len()
		D      = ps.Dim()
		B      = opts.Replicates
		slots  = make([]*types.IndexSet, B)
		logger = opts.Logger
	)
	if logger == nil {
		logger = zap.NewNop()
	}
	if B < 1 {
		return br, errors.Wrapf(types.ErrConfig, "bootstrap size %d", B)
	}
	if !(opts.Alpha > 0 && opts.Alpha < 1) {
		return br, errors.Wrapf(types.ErrConfig, "bootstrap alpha %g outside (0,1)", opts.Alpha)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Threads, 1))
	for b := 0; b < B; b++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var (
				rng = sampling.Stream(sampling.SeedFor(opts.Seed, b))
				idx = make([]int, n)
			)
			for k := range idx {
				idx[k] = rng.IntN(n)
			}
			is, _, err := ChaosIndices(ps.Select(idx), germs, opts.Chaos, false)
			if err != nil {
				logger.Debug("bootstrap replicate rejected", zap.Int("replicate", b), zap.Error(err))
				return nil
			}
			if !is.Inside(opts.Eps) {
				logger.Debug("bootstrap replicate rejected", zap.Int("replicate", b),
					zap.Float64s("first", is.First), zap.Float64s("total", is.Total))
				return nil
			}
			slots[b] = &is
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return
	}
	var (
		first = make([][]float64, D)
		total = make([][]float64, D)
	)
	br.Requested = B
	for _, is := range slots {
		if is == nil {
			continue
		}
		br.Accepted++
		for i := 0; i < D; i++ {
			first[i] = append(first[i], is.First[i])
			total[i] = append(total[i], is.Total[i])
		}
	}
	if br.Accepted == 0 {
		return br, errors.Errorf("bootstrap: none of %d replicates gave indices inside (%g, %g)", B, opts.Eps, 1-opts.Eps)
	}
	br.Indices = types.IndexSet{
		First:          make([]float64, D),
		Total:          make([]float64, D),
		FirstIntervals: make([]types.Interval, D),
		TotalIntervals: make([]types.Interval, D),
	}
	for i := 0; i < D; i++ {
		if br.Indices.First[i], br.Indices.FirstIntervals[i], err = summarize(first[i], opts.Alpha); err != nil {
			return
		}
		if br.Indices.Total[i], br.Indices.TotalIntervals[i], err = summarize(total[i], opts.Alpha); err != nil {
			return
		}
	}
	logger.Info("bootstrap done", zap.Int("accepted", br.Accepted), zap.Int("requested", br.Requested))
	return
}

// summarize returns the mean of the replicates and their empirical
// (1-alpha)/2 and 1-(1-alpha)/2 quantiles
func summarize(values []float64, alpha float64) (mean float64, iv types.Interval, err error) {
	if mean, err = stats.Mean(values); err != nil {
		return
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	lo := 0.5 * (1 - alpha)
	iv = types.Interval{
		gstat.Quantile(lo, gstat.LinInterp, sorted, nil),
		gstat.Quantile(1-lo, gstat.LinInterp, sorted, nil),
	}
	return
}
