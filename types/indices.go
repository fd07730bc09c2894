package types

import (
	"github.com/pkg/errors"
)

// Interval is a confidence interval [lo, hi].
type Interval [2]float64

func (iv Interval) Contains(v float64) bool { return v >= iv[0] && v <= iv[1] }
func (iv Interval) HalfWidth() float64      { return 0.5 * (iv[1] - iv[0]) }

// IndexSet holds one estimate of the Sobol indices of every parameter.
// Interval slices and Second are nil when the estimator does not provide them.
type IndexSet struct {
	First, Total                   []float64
	FirstIntervals, TotalIntervals []Interval
	Second                         [][]float64 // Second[i][j], i < j
}

func (is IndexSet) Dim() int { return len(is.First) }

func (is IndexSet) Copy() (c IndexSet) {
	c.First = append([]float64(nil), is.First...)
	c.Total = append([]float64(nil), is.Total...)
	if is.FirstIntervals != nil {
		c.FirstIntervals = append([]Interval(nil), is.FirstIntervals...)
	}
	if is.TotalIntervals != nil {
		c.TotalIntervals = append([]Interval(nil), is.TotalIntervals...)
	}
	if is.Second != nil {
		c.Second = make([][]float64, len(is.Second))
		for i, row := range is.Second {
			c.Second[i] = append([]float64(nil), row...)
		}
	}
	return
}

// CheckConsistency fails when a first order index exceeds its total order
// index by more than eps plus, when intervals are present, the sum of both
// half widths.
func (is IndexSet) CheckConsistency(names []string, eps float64) error {
	for i := range is.First {
		slack := eps
		if is.FirstIntervals != nil && is.TotalIntervals != nil {
			slack += is.FirstIntervals[i].HalfWidth() + is.TotalIntervals[i].HalfWidth()
		}
		if is.First[i] > is.Total[i]+slack {
			name := ""
			if i < len(names) {
				name = names[i]
			}
			return errors.Wrapf(ErrConsistency, "parameter %d (%s): first order %g > total order %g",
				i, name, is.First[i], is.Total[i])
		}
	}
	return nil
}

// Inside is true when every first and total order index lies in (eps, 1-eps).
func (is IndexSet) Inside(eps float64) bool {
	for i := range is.First {
		if !(is.First[i] > eps && is.First[i] < 1-eps) || !(is.Total[i] > eps && is.Total[i] < 1-eps) {
			return false
		}
	}
	return true
}
