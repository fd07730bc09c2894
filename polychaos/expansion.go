// Package polychaos fits sparse polynomial chaos expansions by least squares
// and derives variance based sensitivity indices from their coefficients.
package polychaos

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type Options struct {
	TotalDegree int  // maximum total degree of the candidate basis
	FullBasis   bool // skip model selection and keep every candidate term
}

func DefaultOptions() Options {
	return Options{TotalDegree: 3}
}

// Expansion is y(x) ~ sum_k Coefs[k] * Psi_k(x) with Psi_k orthonormal under
// the input distribution described by Germs.
type Expansion struct {
	Germs       []Germ
	TotalDegree int
	Terms       []MultiIndex
	Coefs       []float64
	Candidates  int     // size of the candidate basis before selection
	LOOError    float64 // corrected leave-one-out error relative to the output variance
	SampleSize  int
}

// Fit computes the expansion from the rows of X and the outputs y.
func Fit(X mat.Matrix, y []float64, germs []Germ, opts Options) (pce *Expansion, err error) {
	var (
		n, d = X.Dims()
	)
	switch {
	case n != len(y):
		return nil, errors.Errorf("polychaos: %d input rows for %d outputs", n, len(y))
	case d != len(germs):
		return nil, errors.Errorf("polychaos: input dimension %d, %d germs", d, len(germs))
	case opts.TotalDegree < 1:
		return nil, errors.Errorf("polychaos: total degree must be positive, have %d", opts.TotalDegree)
	case n < 2:
		return nil, errors.Errorf("polychaos: need at least 2 samples, have %d", n)
	}
	candidates := TotalDegreeBasis(d, opts.TotalDegree)
	Psi := designMatrix(X, germs, candidates, opts.TotalDegree)

	var cols []int
	if opts.FullBasis {
		cols = make([]int, len(candidates))
		for k := range cols {
			cols[k] = k
		}
	} else {
		cols = append([]int{0}, larsOrder(Psi, y, n-2)...)
	}
	sel := selectNested(Psi, y, cols)
	if len(sel.Columns) == 0 {
		return nil, errors.New("polychaos: no basis term could be fitted")
	}
	pce = &Expansion{
		Germs:       germs,
		TotalDegree: opts.TotalDegree,
		Terms:       make([]MultiIndex, len(sel.Columns)),
		Coefs:       sel.Coefs,
		Candidates:  len(candidates),
		LOOError:    sel.LOO,
		SampleSize:  n,
	}
	for k, cj := range sel.Columns {
		pce.Terms[k] = candidates[cj]
	}
	return
}

func designMatrix(X mat.Matrix, germs []Germ, terms []MultiIndex, degree int) (Psi *mat.Dense) {
	var (
		n, d = X.Dims()
		uni  = make([][]float64, d)
	)
	Psi = mat.NewDense(n, len(terms), nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			uni[j] = germs[j].Basis().Evaluate(germs[j].Standardize(X.At(i, j)), degree, uni[j])
		}
		row := Psi.RawRowView(i)
		for k, mi := range terms {
			row[k] = product(mi, uni)
		}
	}
	return
}

func product(mi MultiIndex, uni [][]float64) (v float64) {
	v = 1.
	for j, dj := range mi {
		if dj > 0 {
			v *= uni[j][dj]
		}
	}
	return
}

// Predict evaluates the expansion at x.
func (pce *Expansion) Predict(x []float64) (y float64) {
	var (
		d   = len(pce.Germs)
		uni = make([][]float64, d)
	)
	for j := 0; j < d; j++ {
		uni[j] = pce.Germs[j].Basis().Evaluate(pce.Germs[j].Standardize(x[j]), pce.TotalDegree, nil)
	}
	for k, mi := range pce.Terms {
		y += pce.Coefs[k] * product(mi, uni)
	}
	return
}

func (pce *Expansion) Mean() float64 {
	for k, mi := range pce.Terms {
		if mi.Degree() == 0 {
			return pce.Coefs[k]
		}
	}
	return 0
}

func (pce *Expansion) Variance() (v float64) {
	for k, mi := range pce.Terms {
		if mi.Degree() > 0 {
			v += pce.Coefs[k] * pce.Coefs[k]
		}
	}
	return
}

// SobolIndices returns the first and total order indices of every input.
// Total order is accumulated as first order plus the interaction terms, so
// first <= total holds term by term.
func (pce *Expansion) SobolIndices() (first, total []float64, err error) {
	var (
		d = len(pce.Germs)
		V = pce.Variance()
	)
	if !(V > 0) {
		return nil, nil, errors.Errorf("polychaos: expansion variance is %v", V)
	}
	first = make([]float64, d)
	interaction := make([]float64, d)
	for k, mi := range pce.Terms {
		if mi.Degree() == 0 {
			continue
		}
		c2 := pce.Coefs[k] * pce.Coefs[k]
		support := mi.Support()
		if len(support) == 1 {
			first[support[0]] += c2
			continue
		}
		for _, i := range support {
			interaction[i] += c2
		}
	}
	total = make([]float64, d)
	for i := range first {
		first[i] /= V
		total[i] = first[i] + interaction[i]/V
	}
	return
}

// GroupIndex is the share of variance carried by terms whose support is exactly group.
func (pce *Expansion) GroupIndex(group []int) float64 {
	var (
		V   = pce.Variance()
		sum float64
	)
	for k, mi := range pce.Terms {
		s := mi.Support()
		if len(s) != len(group) || len(s) == 0 {
			continue
		}
		same := true
		for _, i := range group {
			if !mi.Involves(i) {
				same = false
				break
			}
		}
		if same {
			sum += pce.Coefs[k] * pce.Coefs[k]
		}
	}
	return sum / V
}

// Predictivity is the Q2 factor 1 - sum (y - yhat)^2 / sum (y - mean(y))^2 on a held out sample.
func (pce *Expansion) Predictivity(X mat.Matrix, y []float64) (q2 float64) {
	var (
		n, d  = X.Dims()
		x     = make([]float64, d)
		ssRes float64
	)
	if n == 0 {
		return math.NaN()
	}
	for i := 0; i < n; i++ {
		mat.Row(x, i, X)
		r := y[i] - pce.Predict(x)
		ssRes += r * r
	}
	ssTot := stat.Variance(y, nil) * float64(n-1)
	return 1 - ssRes/ssTot
}
