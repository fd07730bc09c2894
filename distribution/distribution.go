// Package distribution builds the joint law of the model parameters from a
// per-parameter table and the bounds reported by the model.
package distribution

import (
	"fmt"
	"math"

	"github.com/notargets/sobolsa/polychaos"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Spec configures the marginal of one parameter. Bounds left unset default to
// the model's range; a truncation interval is intersected with that range.
type Spec struct {
	Family Family   `json:"family"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Mu     float64  `json:"mu,omitempty"`
	Sigma  float64  `json:"sigma,omitempty"`
	Gamma  float64  `json:"gamma,omitempty"`
	Lower  *float64 `json:"lower,omitempty"`
	Upper  *float64 `json:"upper,omitempty"`
	// Free leaves a normal or log-normal law untruncated
	Free bool `json:"free,omitempty"`
}

// Table maps parameter names to their marginal. Absent names are uniform on the model bounds.
type Table map[string]Spec

// Joint is the independent product of the marginals, in parameter order.
type Joint struct {
	Names     []string
	Marginals []Marginal
}

func (j *Joint) Dimension() int { return len(j.Marginals) }

func (j *Joint) Germs() (g []polychaos.Germ) {
	g = make([]polychaos.Germ, len(j.Marginals))
	for i, m := range j.Marginals {
		g[i] = m
	}
	return
}

// Transform maps a point u of the unit cube onto the parameter space through the marginal quantiles.
func (j *Joint) Transform(u []float64) (x types.ParameterVector) {
	x = make(types.ParameterVector, len(j.Marginals))
	for i, m := range j.Marginals {
		x[i] = m.Quantile(u[i])
	}
	return
}

// Contains reports whether x lies inside every marginal's support.
func (j *Joint) Contains(x types.ParameterVector) bool {
	for i, m := range j.Marginals {
		lo, hi := m.Bounds()
		if x[i] < lo || x[i] > hi {
			return false
		}
	}
	return true
}

func (j *Joint) Print() {
	for i, m := range j.Marginals {
		fmt.Printf("%-10s\t= %s\n", j.Names[i], m)
	}
}

// Build constructs the joint distribution over the named parameters.
func Build(names []string, min, max []float64, table Table) (joint *Joint, err error) {
	if len(min) != len(names) || len(max) != len(names) {
		return nil, errors.Wrapf(types.ErrConfig, "%d names with %d/%d bounds", len(names), len(min), len(max))
	}
	for name := range table {
		if indexOf(names, name) < 0 {
			return nil, errors.Wrapf(types.ErrConfig, "distribution given for unknown parameter %q", name)
		}
	}
	joint = &Joint{Names: names, Marginals: make([]Marginal, len(names))}
	for i, name := range names {
		if min[i] > max[i] {
			return nil, errors.Wrapf(types.ErrConfig, "parameter %s: min %g > max %g", name, min[i], max[i])
		}
		spec, ok := table[name]
		if !ok {
			spec = Spec{Family: Uniform}
		}
		if joint.Marginals[i], err = spec.marginal(min[i], max[i]); err != nil {
			return nil, errors.Wrapf(err, "parameter %s", name)
		}
	}
	return
}

func (s Spec) marginal(modelMin, modelMax float64) (m Marginal, err error) {
	var (
		lo, hi = modelMin, modelMax
	)
	if s.Min != nil {
		lo = *s.Min
	}
	if s.Max != nil {
		hi = *s.Max
	}
	if lo > hi {
		return nil, errors.Wrapf(types.ErrConfig, "min %g > max %g", lo, hi)
	}
	switch s.Family {
	case "", Uniform:
		if !(lo < hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			return nil, errors.Wrapf(types.ErrConfig, "uniform law needs a finite non empty range, have [%g, %g]", lo, hi)
		}
		return newUniform(lo, hi), nil
	case LogUniform:
		if !(lo > 0) || !(lo < hi) || math.IsInf(hi, 0) {
			return nil, errors.Wrapf(types.ErrConfig, "log-uniform law needs 0 < min < max < inf, have [%g, %g]", lo, hi)
		}
		return newLogUniform(lo, hi), nil
	case Normal, LogNormal, TruncatedLogNormal:
		if !(s.Sigma > 0) {
			return nil, errors.Wrapf(types.ErrConfig, "%s law needs sigma > 0, have %g", s.Family, s.Sigma)
		}
	default:
		return nil, errors.Wrapf(types.ErrConfig, "unknown family %q", s.Family)
	}

	var base Marginal
	if s.Family == Normal {
		base = &normal{distuv.Normal{Mu: s.Mu, Sigma: s.Sigma}}
	} else {
		base = &logNormal{ln: distuv.LogNormal{Mu: s.Mu, Sigma: s.Sigma}, gamma: s.Gamma}
	}
	if s.Free && s.Family != TruncatedLogNormal {
		return base, nil
	}
	if s.Lower != nil {
		lo = math.Max(lo, *s.Lower)
	}
	if s.Upper != nil {
		hi = math.Min(hi, *s.Upper)
	}
	if blo, _ := base.Bounds(); lo < blo {
		lo = blo
	}
	if !(lo < hi) {
		return nil, errors.Wrapf(types.ErrConfig, "truncation of %s to the model range is empty: [%g, %g]", base, lo, hi)
	}
	t, ok := newTruncated(base, s.Family, lo, hi)
	if !ok {
		return nil, errors.Wrapf(types.ErrConfig, "%s carries no mass on [%g, %g]", base, lo, hi)
	}
	return t, nil
}

// Restrict drops the entries naming parameters outside names.
func (t Table) Restrict(names []string) (r Table) {
	r = make(Table)
	for name, s := range t {
		if indexOf(names, name) >= 0 {
			r[name] = s
		}
	}
	return
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func ptr(v float64) *float64 { return &v }

// Eye2BrainTable is the distribution policy of the eye2brain heat transfer model.
func Eye2BrainTable() Table {
	var (
		sAmb = 0.4
		sBl  = 0.15
	)
	return Table{
		"h_amb": {Family: TruncatedLogNormal, Mu: 2.222585092994046, Sigma: sAmb, Lower: ptr(8), Upper: ptr(100)},
		"E":     {Family: LogUniform},
		"h_bl":  {Family: TruncatedLogNormal, Mu: math.Log(65) - sBl*sBl/2, Sigma: sBl, Lower: ptr(50), Upper: ptr(110)},
	}
}

// BoreholeTable is the usual law of the borehole function inputs, the others are uniform on their range.
func BoreholeTable() Table {
	return Table{
		"rw": {Family: Normal, Mu: 0.1, Sigma: 0.0161812},
		"r":  {Family: LogNormal, Mu: 7.71, Sigma: 1.0056},
	}
}
