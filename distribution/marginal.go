package distribution

import (
	"fmt"
	"math"

	"github.com/notargets/sobolsa/polychaos"
	"gonum.org/v1/gonum/stat/distuv"
)

// Family tags the law of one marginal.
type Family string

const (
	Uniform            Family = "uniform"
	LogUniform         Family = "loguniform"
	Normal             Family = "normal"
	LogNormal          Family = "lognormal"
	TruncatedLogNormal Family = "truncated-lognormal"
)

// Marginal is the law of a single parameter. Besides its CDF and quantile
// function it carries the germ used to build the chaos basis for it.
type Marginal interface {
	polychaos.Germ
	Family() Family
	CDF(x float64) float64
	Quantile(p float64) float64
	Bounds() (lo, hi float64)
	String() string
}

type uniform struct {
	distuv.Uniform
}

func newUniform(lo, hi float64) *uniform {
	return &uniform{distuv.Uniform{Min: lo, Max: hi}}
}

func (u *uniform) Family() Family                    { return Uniform }
func (u *uniform) Bounds() (lo, hi float64)          { return u.Min, u.Max }
func (u *uniform) Basis() polychaos.BasisFamily       { return polychaos.Legendre }
func (u *uniform) Standardize(x float64) float64     { return 2*(x-u.Min)/(u.Max-u.Min) - 1 }
func (u *uniform) String() string                    { return fmt.Sprintf("Uniform(%g, %g)", u.Min, u.Max) }

// logUniform has ln(x) uniform on [ln(lo), ln(hi)]
type logUniform struct {
	lo, hi       float64
	logLo, logHi float64
}

func newLogUniform(lo, hi float64) *logUniform {
	return &logUniform{lo: lo, hi: hi, logLo: math.Log(lo), logHi: math.Log(hi)}
}

func (l *logUniform) Family() Family           { return LogUniform }
func (l *logUniform) Bounds() (lo, hi float64) { return l.lo, l.hi }
func (l *logUniform) CDF(x float64) float64 {
	switch {
	case x <= l.lo:
		return 0
	case x >= l.hi:
		return 1
	}
	return (math.Log(x) - l.logLo) / (l.logHi - l.logLo)
}
func (l *logUniform) Quantile(p float64) float64 {
	return math.Exp(l.logLo + p*(l.logHi-l.logLo))
}
func (l *logUniform) Basis() polychaos.BasisFamily   { return polychaos.Legendre }
func (l *logUniform) Standardize(x float64) float64 { return 2*l.CDF(x) - 1 }
func (l *logUniform) String() string                { return fmt.Sprintf("LogUniform(%g, %g)", l.lo, l.hi) }

type normal struct {
	distuv.Normal
}

func (n *normal) Family() Family                    { return Normal }
func (n *normal) Bounds() (lo, hi float64)          { return math.Inf(-1), math.Inf(1) }
func (n *normal) Basis() polychaos.BasisFamily       { return polychaos.Hermite }
func (n *normal) Standardize(x float64) float64     { return (x - n.Mu) / n.Sigma }
func (n *normal) String() string                    { return fmt.Sprintf("Normal(%g, %g)", n.Mu, n.Sigma) }

// logNormal is gamma + exp(mu + sigma*Z)
type logNormal struct {
	ln    distuv.LogNormal
	gamma float64
}

func (l *logNormal) Family() Family           { return LogNormal }
func (l *logNormal) Bounds() (lo, hi float64) { return l.gamma, math.Inf(1) }
func (l *logNormal) CDF(x float64) float64 {
	if x <= l.gamma {
		return 0
	}
	return l.ln.CDF(x - l.gamma)
}
func (l *logNormal) Quantile(p float64) float64   { return l.gamma + l.ln.Quantile(p) }
func (l *logNormal) Basis() polychaos.BasisFamily { return polychaos.Hermite }
func (l *logNormal) Standardize(x float64) float64 {
	return (math.Log(x-l.gamma) - l.ln.Mu) / l.ln.Sigma
}
func (l *logNormal) String() string {
	return fmt.Sprintf("LogNormal(%g, %g, %g)", l.ln.Mu, l.ln.Sigma, l.gamma)
}

// truncated restricts base to [lo, hi] and renormalizes. Its germ is the
// Legendre basis applied to the probability integral transform 2F(x)-1.
type truncated struct {
	base     Marginal
	family   Family
	lo, hi   float64
	cLo, cHi float64
}

func newTruncated(base Marginal, family Family, lo, hi float64) (t *truncated, ok bool) {
	t = &truncated{base: base, family: family, lo: lo, hi: hi, cLo: base.CDF(lo), cHi: base.CDF(hi)}
	return t, t.cHi-t.cLo > 0
}

func (t *truncated) Family() Family           { return t.family }
func (t *truncated) Bounds() (lo, hi float64) { return t.lo, t.hi }
func (t *truncated) CDF(x float64) float64 {
	switch {
	case x <= t.lo:
		return 0
	case x >= t.hi:
		return 1
	}
	return (t.base.CDF(x) - t.cLo) / (t.cHi - t.cLo)
}
func (t *truncated) Quantile(p float64) float64 {
	x := t.base.Quantile(t.cLo + p*(t.cHi-t.cLo))
	return math.Min(math.Max(x, t.lo), t.hi)
}
func (t *truncated) Basis() polychaos.BasisFamily   { return polychaos.Legendre }
func (t *truncated) Standardize(x float64) float64 { return 2*t.CDF(x) - 1 }
func (t *truncated) String() string {
	return fmt.Sprintf("Truncated %s on [%g, %g]", t.base, t.lo, t.hi)
}
