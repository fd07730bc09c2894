package model_problems

import (
	"math"

	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
)

// Analytic is a closed form test function with known sensitivity behavior.
type Analytic struct {
	name     string
	names    []string
	min, max []float64
	f        func(x []float64) float64
}

func (a *Analytic) Name() string             { return a.name }
func (a *Analytic) Dimension() int           { return len(a.names) }
func (a *Analytic) ParameterNames() []string { return a.names }
func (a *Analytic) Min() []float64           { return a.min }
func (a *Analytic) Max() []float64           { return a.max }

func (a *Analytic) Run(mu types.ParameterVector, _ types.RunOptions) (res types.Result, err error) {
	if len(mu) != len(a.names) {
		return res, errors.Wrapf(types.ErrEvaluator, "%s: %d parameters given, model has %d", a.name, len(mu), len(a.names))
	}
	res.Output = a.f(mu)
	return
}

// NewAdditive is x1 + 2 x2 + 3 x3 on the unit cube. Its first and total
// order indices are 1/14, 4/14 and 9/14 under uniform inputs.
func NewAdditive() *Analytic {
	return &Analytic{
		name:  "additive",
		names: []string{"x1", "x2", "x3"},
		min:   []float64{0, 0, 0},
		max:   []float64{1, 1, 1},
		f:     func(x []float64) float64 { return x[0] + 2*x[1] + 3*x[2] },
	}
}

// NewIshigami is sin(x1) + a sin^2(x2) + b x3^4 sin(x1) on [-pi, pi]^3 with a=7, b=0.1
func NewIshigami() *Analytic {
	var (
		a, b = 7., 0.1
	)
	return &Analytic{
		name:  "ishigami",
		names: []string{"x1", "x2", "x3"},
		min:   []float64{-math.Pi, -math.Pi, -math.Pi},
		max:   []float64{math.Pi, math.Pi, math.Pi},
		f: func(x []float64) float64 {
			s2 := math.Sin(x[1])
			return math.Sin(x[0]) + a*s2*s2 + b*math.Pow(x[2], 4)*math.Sin(x[0])
		},
	}
}

// IshigamiIndices returns the exact first and total order indices for a=7, b=0.1
func IshigamiIndices() (first, total []float64) {
	var (
		a, b = 7., 0.1
		pi4  = math.Pow(math.Pi, 4)
		pi8  = pi4 * pi4
		V1   = 0.5 * math.Pow(1+b*pi4/5, 2)
		V2   = a * a / 8
		V13  = b * b * pi8 * (1./18 - 1./50)
		V    = V1 + V2 + V13
	)
	first = []float64{V1 / V, V2 / V, 0}
	total = []float64{(V1 + V13) / V, V2 / V, V13 / V}
	return
}

// NewBorehole is the water flow rate through a borehole, in m^3/yr
func NewBorehole() *Analytic {
	return &Analytic{
		name:  "borehole",
		names: []string{"rw", "r", "Tu", "Hu", "Tl", "Hl", "L", "Kw"},
		min:   []float64{0.05, 100, 63070, 990, 63.1, 700, 1120, 9855},
		max:   []float64{0.15, 50000, 115600, 1110, 116, 820, 1680, 12045},
		f: func(x []float64) float64 {
			var (
				rw, r, Tu, Hu = x[0], x[1], x[2], x[3]
				Tl, Hl, L, Kw = x[4], x[5], x[6], x[7]
				lr            = math.Log(r / rw)
			)
			return 2 * math.Pi * Tu * (Hu - Hl) / (lr * (1 + 2*L*Tu/(lr*rw*rw*Kw) + Tu/Tl))
		},
	}
}
