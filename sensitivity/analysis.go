package sensitivity

import (
	"context"
	"runtime"

	"github.com/notargets/sobolsa/comm"
	"github.com/notargets/sobolsa/distribution"
	"github.com/notargets/sobolsa/polychaos"
	"github.com/notargets/sobolsa/results"
	"github.com/notargets/sobolsa/sampling"
	"github.com/notargets/sobolsa/types"
	"github.com/notargets/sobolsa/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	AlgoChaos    = "polynomial-chaos"
	AlgoSaltelli = "saltelli"

	SamplingRandom = "random"
	SamplingDesign = "design"

	// consistencyEps is the slack allowed between first and total order
	// indices on top of any interval half widths
	consistencyEps = 1.e-9
)

// Config selects the estimator and the refinement policy of one analysis.
// SamplingSize is the per worker size of the first batch: the base size of
// the design for Saltelli, the number of points for polynomial chaos.
type Config struct {
	Algo           string
	SamplingSize   int
	SamplingType   string // empty follows Algo
	SecondOrder    bool
	NRun           int
	AdaptTol       float64
	MaxIterations  int
	Bootstrap      bool
	BootstrapSize  int
	BootstrapAlpha float64
	BootstrapEps   float64
	Degree         int
	ValidationSize int
	Confidence     float64
	Workers        int
	Threads        int
	Seed           uint64 // zero draws a time based seed
	Run            types.RunOptions
	DumpSample     string
}

func DefaultConfig() Config {
	return Config{
		Algo:           AlgoChaos,
		SamplingSize:   2000,
		NRun:           5,
		AdaptTol:       0.01,
		MaxIterations:  10,
		BootstrapSize:  100,
		BootstrapAlpha: 0.95,
		BootstrapEps:   1.e-9,
		Degree:         3,
		Confidence:     0.95,
		Workers:        1,
		Threads:        runtime.NumCPU(),
		Run:            types.RunOptions{Tolerance: 1.e-2, RBDim: -1},
	}
}

func (cfg Config) design() bool { return cfg.Algo == AlgoSaltelli }

func (cfg Config) Validate() (err error) {
	bad := func(format string, args ...any) error {
		return errors.Wrapf(types.ErrConfig, format, args...)
	}
	switch cfg.Algo {
	case AlgoChaos, AlgoSaltelli:
	default:
		return bad("unknown algorithm %q, want %s or %s", cfg.Algo, AlgoChaos, AlgoSaltelli)
	}
	switch {
	case cfg.SamplingType != "" && cfg.SamplingType != SamplingRandom && cfg.SamplingType != SamplingDesign:
		return bad("unknown sampling type %q", cfg.SamplingType)
	case cfg.design() && cfg.SamplingType == SamplingRandom:
		return bad("%s needs the %s sampling type", AlgoSaltelli, SamplingDesign)
	case !cfg.design() && cfg.SamplingType == SamplingDesign:
		return bad("%s needs the %s sampling type", AlgoChaos, SamplingRandom)
	case cfg.SamplingSize < 2:
		return bad("sampling size %d, need at least 2", cfg.SamplingSize)
	case cfg.Workers < 1:
		return bad("%d workers", cfg.Workers)
	case !(cfg.Confidence > 0 && cfg.Confidence < 1):
		return bad("confidence level %g outside (0,1)", cfg.Confidence)
	case !cfg.design() && cfg.Degree < 1:
		return bad("chaos degree %d", cfg.Degree)
	case cfg.ValidationSize < 0 || cfg.ValidationSize == 1:
		return bad("validation size %d, need 0 or at least 2", cfg.ValidationSize)
	}
	if cfg.Bootstrap {
		switch {
		case cfg.design():
			return bad("bootstrap is only available with %s", AlgoChaos)
		case cfg.BootstrapSize < 1:
			return bad("bootstrap size %d", cfg.BootstrapSize)
		case !(cfg.BootstrapAlpha > 0 && cfg.BootstrapAlpha < 1):
			return bad("bootstrap alpha %g outside (0,1)", cfg.BootstrapAlpha)
		case !(cfg.BootstrapEps >= 0 && cfg.BootstrapEps < 0.5):
			return bad("bootstrap eps %g outside [0,0.5)", cfg.BootstrapEps)
		}
		return
	}
	switch {
	case cfg.NRun < 2:
		return bad("%d runs per iteration, need at least 2 to measure the spread", cfg.NRun)
	case !(cfg.AdaptTol > 0):
		return bad("adaptive tolerance %g", cfg.AdaptTol)
	case cfg.MaxIterations < 1:
		return bad("%d adaptive iterations", cfg.MaxIterations)
	}
	return
}

// outcome is what the coordinator knows at the end of an analysis
type outcome struct {
	final        types.IndexSet
	samplingSize int
	iterations   int
	converged    bool
	sample       *types.PairedSample // last merged sample
	expansion    *polychaos.Expansion
	bootstrap    *BootstrapResult
}

// worker is the state of one rank
type worker struct {
	cfg     Config
	model   types.Model
	joint   *distribution.Joint
	c       comm.Communicator
	sampler *sampling.Sampler
	seed    uint64
	logger  *zap.Logger
}

// Analyze estimates the Sobol indices of model under joint. The work is split
// over cfg.Workers ranks, each drawing its own stream and evaluating its own
// points on cfg.Threads goroutines; the coordinator merges the samples in rank
// order and estimates. With cfg.Bootstrap a single sample is drawn and
// resampled, otherwise batches are refined until the run to run spread of
// the first order indices falls below cfg.AdaptTol.
func Analyze(ctx context.Context, cfg Config, model types.Model, joint *distribution.Joint, logger *zap.Logger) (r *results.Results, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err = cfg.Validate(); err != nil {
		return
	}
	if joint.Dimension() != model.Dimension() {
		return nil, errors.Wrapf(types.ErrConfig, "distribution has %d parameters, model %s has %d",
			joint.Dimension(), model.Name(), model.Dimension())
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = sampling.TimeSeed()
	}
	logger.Info("analysis", zap.String("algo", cfg.Algo), zap.String("model", model.Name()),
		zap.Int("sampling-size", cfg.SamplingSize), zap.Int("workers", cfg.Workers),
		zap.Bool("bootstrap", cfg.Bootstrap), zap.Uint64("seed", seed))
	var (
		out *outcome
	)
	err = comm.Launch(ctx, cfg.Workers, func(ctx context.Context, c comm.Communicator) (err error) {
		w := &worker{
			cfg:     cfg,
			model:   model,
			joint:   joint,
			c:       c,
			sampler: sampling.NewSampler(joint, sampling.SeedFor(seed, c.Rank())),
			seed:    seed,
			logger:  logger.With(zap.Int("rank", c.Rank())),
		}
		var o *outcome
		if cfg.Bootstrap {
			o, err = w.fixed(ctx)
		} else {
			o, err = w.adapt(ctx)
		}
		if err == nil && c.IsCoordinator() {
			if err = w.finish(o); err == nil {
				out = o
			}
		}
		return
	})
	if err != nil {
		return nil, err
	}
	r = results.New(cfg.Algo, model.ParameterNames(), out.samplingSize, out.final)
	r.Meta.Converged = out.converged
	r.Meta.Iterations = out.iterations
	r.Meta.Workers = cfg.Workers
	r.Meta.Seed = seed
	r.Meta.SampleDigest = results.Digest(out.sample)
	if out.bootstrap != nil {
		r.Meta.BootstrapAccepted, r.Meta.BootstrapRequested = out.bootstrap.Accepted, out.bootstrap.Requested
	}
	if out.expansion != nil && cfg.ValidationSize > 0 {
		if r.Meta.Q2, err = validate(ctx, cfg, model, joint, seed, out.expansion, logger); err != nil {
			return nil, err
		}
	}
	logger.Info("analysis done", zap.Int("iterations", out.iterations), zap.Bool("converged", out.converged),
		zap.String("sample-digest", r.Meta.SampleDigest), zap.String("memory", utils.GetMemUsage()))
	return
}

// draw samples N points (or a design of base N) on this rank, evaluates them
// and merges every rank's sample on the coordinator. Other ranks get nil.
func (w *worker) draw(ctx context.Context, N int) (merged *types.PairedSample, err error) {
	var (
		X     []types.ParameterVector
		local *types.PairedSample
		W     = w.c.Size()
	)
	if w.cfg.design() {
		X = w.sampler.SaltelliDesign(N, w.cfg.SecondOrder)
	} else {
		X = w.sampler.Direct(N)
	}
	if local, _, err = Evaluate(ctx, w.model, X, EvalOptions{Threads: w.cfg.Threads, Run: w.cfg.Run, Logger: w.logger}); err != nil {
		return
	}
	if merged, err = GatherSample(ctx, w.c, local); err != nil || merged == nil {
		return
	}
	if w.cfg.design() && W > 1 {
		Xo, yo := interleaveDesign(merged.Inputs, merged.Outputs, W, saltelliBlocks(merged.Dim(), w.cfg.SecondOrder), N)
		merged, err = types.NewPairedSampleFrom(merged.Names, Xo, yo)
	}
	return
}

// estimate computes the indices of a merged sample drawn at per rank size N
// and checks first <= total order
func (w *worker) estimate(ps *types.PairedSample, N int) (is types.IndexSet, pce *polychaos.Expansion, err error) {
	if w.cfg.design() {
		is, err = SaltelliIndices(ps.Outputs, N*w.c.Size(), ps.Dim(), w.cfg.SecondOrder, w.cfg.Confidence)
	} else {
		is, pce, err = ChaosIndices(ps, w.joint.Germs(), polychaos.Options{TotalDegree: w.cfg.Degree}, w.cfg.SecondOrder)
	}
	if err != nil {
		return
	}
	if utils.IsNan(is.First) || utils.IsNan(is.Total) {
		return is, nil, errors.Errorf("%s estimate on %d points is NaN", w.cfg.Algo, ps.Len())
	}
	err = is.CheckConsistency(ps.Names, consistencyEps)
	return
}

// fixed draws one sample of the configured size and bootstraps the chaos fit
func (w *worker) fixed(ctx context.Context) (o *outcome, err error) {
	var (
		ps  *types.PairedSample
		is  types.IndexSet
		pce *polychaos.Expansion
		br  BootstrapResult
	)
	if ps, err = w.draw(ctx, w.cfg.SamplingSize); err != nil || ps == nil {
		return
	}
	if is, pce, err = w.estimate(ps, w.cfg.SamplingSize); err != nil {
		return
	}
	w.logger.Info("point estimate", zap.Int("points", ps.Len()), zap.Int("terms", len(pce.Terms)),
		zap.Float64s("first", is.First), zap.Float64s("total", is.Total))
	br, err = Bootstrap(ctx, ps, w.joint.Germs(), BootstrapOptions{
		Replicates: w.cfg.BootstrapSize,
		Alpha:      w.cfg.BootstrapAlpha,
		Eps:        w.cfg.BootstrapEps,
		Threads:    w.cfg.Threads,
		Seed:       sampling.SeedFor(w.seed, w.c.Size()+1),
		Chaos:      polychaos.Options{TotalDegree: w.cfg.Degree},
		Logger:     w.logger,
	})
	if err != nil {
		return
	}
	final := br.Indices
	final.Second = is.Second
	if err = final.CheckConsistency(ps.Names, consistencyEps); err != nil {
		return
	}
	o = &outcome{
		final:        final,
		samplingSize: ps.Len(),
		iterations:   1,
		converged:    true,
		sample:       ps,
		expansion:    pce,
		bootstrap:    &br,
	}
	return
}

// finish runs on the coordinator once the indices are known
func (w *worker) finish(o *outcome) (err error) {
	if o == nil {
		return errors.New("coordinator finished without an estimate")
	}
	if w.cfg.DumpSample != "" {
		if err = results.DumpSample(w.cfg.DumpSample, o.sample); err != nil {
			return
		}
		w.logger.Info("sample written", zap.String("path", w.cfg.DumpSample), zap.Int("rows", o.sample.Len()))
	}
	return
}

// validate evaluates a held out sample on its own stream and returns the
// predictivity factor of the expansion on it, nil when it is not finite
func validate(ctx context.Context, cfg Config, model types.Model, joint *distribution.Joint, seed uint64,
	pce *polychaos.Expansion, logger *zap.Logger) (q2 *float64, err error) {
	var (
		vs = sampling.NewSampler(joint, sampling.SeedFor(seed, cfg.Workers))
		ps *types.PairedSample
	)
	if ps, _, err = Evaluate(ctx, model, vs.Direct(cfg.ValidationSize), EvalOptions{Threads: cfg.Threads, Run: cfg.Run, Logger: logger}); err != nil {
		return nil, errors.Wrap(err, "validation sample")
	}
	v := pce.Predictivity(ps.InputMatrix(), ps.Outputs)
	if !utils.IsFinite(v) {
		logger.Warn("validation q2 is not finite, not reported", zap.Int("points", ps.Len()),
			zap.Float64("q2", v))
		return
	}
	logger.Info("validation", zap.Int("points", ps.Len()), zap.Float64("q2", v))
	return &v, nil
}
