package polychaos

import (
	"gonum.org/v1/gonum/stat/combin"
)

// MultiIndex holds the per-input degrees of one tensor product polynomial.
type MultiIndex []int

func (mi MultiIndex) Degree() (deg int) {
	for _, d := range mi {
		deg += d
	}
	return
}

// Involves is true when input i appears in the term.
func (mi MultiIndex) Involves(i int) bool { return mi[i] > 0 }

// OnlyInvolves is true when input i is the single input of a non constant term.
func (mi MultiIndex) OnlyInvolves(i int) bool {
	if mi[i] == 0 {
		return false
	}
	for j, d := range mi {
		if j != i && d != 0 {
			return false
		}
	}
	return true
}

// Support lists the inputs appearing in the term.
func (mi MultiIndex) Support() (s []int) {
	for j, d := range mi {
		if d > 0 {
			s = append(s, j)
		}
	}
	return
}

// BasisSize is the number of terms of total degree at most degree in dim inputs.
func BasisSize(dim, degree int) int {
	return combin.Binomial(dim+degree, degree)
}

// TotalDegreeBasis enumerates all multi-indices with total degree <= degree,
// graded by degree, starting with the constant term.
func TotalDegreeBasis(dim, degree int) (basis []MultiIndex) {
	basis = make([]MultiIndex, 0, BasisSize(dim, degree))
	for deg := 0; deg <= degree; deg++ {
		basis = append(basis, exactDegree(dim, deg)...)
	}
	return
}

// exactDegree uses stars and bars: each choice of dim-1 bar positions among
// deg+dim-1 slots splits deg stars into dim groups
func exactDegree(dim, deg int) (terms []MultiIndex) {
	if dim == 1 {
		return []MultiIndex{{deg}}
	}
	var (
		slots = deg + dim - 1
	)
	for _, bars := range combin.Combinations(slots, dim-1) {
		mi := make(MultiIndex, dim)
		prev := -1
		for j, b := range bars {
			mi[j] = b - prev - 1
			prev = b
		}
		mi[dim-1] = slots - 1 - prev
		terms = append(terms, mi)
	}
	return
}
