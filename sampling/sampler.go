// Package sampling draws parameter vectors from a joint distribution, either
// i.i.d. or as a Saltelli pick-freeze design.
package sampling

import (
	"math/rand/v2"
	"time"

	"github.com/notargets/sobolsa/distribution"
	"github.com/notargets/sobolsa/types"
)

const golden = 0x9E3779B97F4A7C15

type Sampler struct {
	Joint *distribution.Joint
	rng   *rand.Rand
}

func NewSampler(joint *distribution.Joint, seed uint64) (s *Sampler) {
	s = &Sampler{Joint: joint}
	s.Reseed(seed)
	return
}

// Reseed restarts the stream, two samplers with the same seed draw the same sequence.
func (s *Sampler) Reseed(seed uint64) {
	s.rng = Stream(seed)
}

// Stream is a PCG generator seeded from a single value.
func Stream(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^golden))
}

// TimeSeed is the default base seed when none is configured.
func TimeSeed() uint64 { return uint64(time.Now().UnixNano()) }

// SeedFor decorrelates worker streams derived from one base seed. Rank 0 is perturbed too.
func SeedFor(base uint64, rank int) uint64 {
	return base ^ (uint64(rank+1) * golden)
}

// unit draws from the open interval (0,1) so unbounded quantiles stay finite
func (s *Sampler) unit() (u float64) {
	for u == 0 {
		u = s.rng.Float64()
	}
	return
}

func (s *Sampler) draw() types.ParameterVector {
	var (
		u = make([]float64, s.Joint.Dimension())
	)
	for i := range u {
		u[i] = s.unit()
	}
	return s.Joint.Transform(u)
}

// Direct draws N independent parameter vectors.
func (s *Sampler) Direct(N int) (X []types.ParameterVector) {
	X = make([]types.ParameterVector, N)
	for n := range X {
		X[n] = s.draw()
	}
	return
}

// DesignSize is the number of rows of a Saltelli design of base size N in D dimensions.
func DesignSize(N, D int, secondOrder bool) int {
	if secondOrder {
		return N * (2*D + 2)
	}
	return N * (D + 2)
}

// SaltelliDesign returns the blocks A, B, E_1..E_D and, with secondOrder,
// C_1..C_D, each of N rows. E_i is A with column i taken from B and C_i is B
// with column i taken from A.
func (s *Sampler) SaltelliDesign(N int, secondOrder bool) (X []types.ParameterVector) {
	var (
		D = s.Joint.Dimension()
		A = s.Direct(N)
		B = s.Direct(N)
	)
	X = make([]types.ParameterVector, 0, DesignSize(N, D, secondOrder))
	X = append(X, A...)
	X = append(X, B...)
	X = appendSwapped(X, A, B, D)
	if secondOrder {
		X = appendSwapped(X, B, A, D)
	}
	return
}

func appendSwapped(X, base, donor []types.ParameterVector, D int) []types.ParameterVector {
	for i := 0; i < D; i++ {
		for n := range base {
			x := base[n].Copy()
			x[i] = donor[n][i]
			X = append(X, x)
		}
	}
	return X
}

// Block returns rows [k*N, (k+1)*N) of a design, k=0 is A, k=1 is B, k=2+i is E_i and k=2+D+i is C_i.
func Block(y []float64, N, k int) []float64 {
	return y[k*N : (k+1)*N]
}
