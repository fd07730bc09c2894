package polychaos

import (
	"math"
)

// BasisFamily selects the univariate orthonormal polynomials used for one input.
type BasisFamily uint8

const (
	Legendre BasisFamily = iota // orthonormal under U(-1,1)
	Hermite                     // orthonormal under N(0,1)
)

func (bf BasisFamily) String() string {
	switch bf {
	case Legendre:
		return "Legendre"
	case Hermite:
		return "Hermite"
	}
	return "unknown"
}

// Germ maps a physical input value onto the standard variable of its basis family.
type Germ interface {
	Basis() BasisFamily
	Standardize(x float64) float64
}

// Evaluate returns the orthonormal polynomials of degree 0..N at z, stored into p when it is large enough
func (bf BasisFamily) Evaluate(z float64, N int, p []float64) []float64 {
	if cap(p) < N+1 {
		p = make([]float64, N+1)
	}
	p = p[:N+1]
	switch bf {
	case Hermite:
		return hermite(z, N, p)
	default:
		// JacobiP is normalized for the Lebesgue measure on [-1,1], the
		// probability measure carries an extra 1/2
		p = jacobiP(z, 0, 0, N, p)
		for i := range p {
			p[i] *= math.Sqrt2
		}
		return p
	}
}

// jacobiP evaluates the orthonormal Jacobi polynomials P_0..P_N at a single x
func jacobiP(x, alpha, beta float64, N int, p []float64) []float64 {
	p[0] = 1. / math.Sqrt(gamma0(alpha, beta))
	if N == 0 {
		return p
	}
	ab := alpha + beta
	p[1] = ((ab+2.0)*x/2.0 + (alpha-beta)/2.0) / math.Sqrt(gamma1(alpha, beta))
	if N == 1 {
		return p
	}
	var (
		a1   = alpha + 1.
		b1   = beta + 1.
		ab1  = ab + 1.
		aold = 2.0 * math.Sqrt(a1*b1/(ab+3.0)) / (ab + 2.0)
	)
	for i := 0; i < N-1; i++ {
		ip1 := float64(i + 1)
		ip2 := ip1 + 1
		h1 := 2.0*ip1 + ab
		anew := 2.0 / (h1 + 2.0) * math.Sqrt(ip2*(ip1+ab1)*(ip1+a1)*(ip1+b1)/(h1+1.0)/(h1+3.0))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2.0)
		p[i+2] = (-aold*p[i] + (x-bnew)*p[i+1]) / anew
		aold = anew
	}
	return p
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func gamma1(alpha, beta float64) float64 {
	ab := alpha + beta
	a1 := alpha + 1.
	b1 := beta + 1.
	return a1 * b1 * gamma0(alpha, beta) / (ab + 3.0)
}

// hermite evaluates the normalized probabilists' Hermite polynomials He_n/sqrt(n!)
func hermite(z float64, N int, p []float64) []float64 {
	p[0] = 1
	if N == 0 {
		return p
	}
	p[1] = z
	for n := 1; n < N; n++ {
		fn := float64(n)
		// He_{n+1} = z He_n - n He_{n-1}, rescaled by sqrt((n+1)!)
		p[n+1] = (z*p[n] - math.Sqrt(fn)*p[n-1]) / math.Sqrt(fn+1)
	}
	return p
}
