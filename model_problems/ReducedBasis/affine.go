package ReducedBasis

import (
	"fmt"
	"math"
	"os"

	"github.com/ghodss/yaml"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

/*
	Online stage of an affinely parametrized reduced basis model:
		A(mu) = sum_q theta^A_q(mu) A_q,  F(mu) = sum_q theta^F_q(mu) F_q,  L(mu) = sum_q theta^L_q(mu) L_q
	The reduced solution u_N solves A_N(mu) u_N = F_N(mu) on the leading N basis
	functions and the output is s_N(mu) = L_N(mu) . u_N.
*/

// Monomial is Coef * prod_p mu[p]^Powers[p]
type Monomial struct {
	Coef   float64            `json:"Coef"`
	Powers map[string]float64 `json:"Powers,omitempty"`
}

type MatrixTerm struct {
	Theta  []Monomial  `json:"Theta"`
	Matrix [][]float64 `json:"Matrix"`
}

type VectorTerm struct {
	Theta  []Monomial `json:"Theta"`
	Vector []float64  `json:"Vector"`
}

type Parameter struct {
	Name string  `json:"Name"`
	Min  float64 `json:"Min"`
	Max  float64 `json:"Max"`
}

// Affine is the YAML form of a reduced basis model.
type Affine struct {
	Title      string       `json:"Title"`
	Output     string       `json:"Output"`
	Parameters []Parameter  `json:"Parameters"`
	A          []MatrixTerm `json:"A"`
	F          []VectorTerm `json:"F"`
	L          []VectorTerm `json:"L"`
}

// compiled theta: coefficient and (parameter index, power) pairs
type theta struct {
	coef   float64
	index  []int
	powers []float64
}

type Model struct {
	Affine
	Logger *zap.Logger
	Nmax   int
	names  []string
	min    []float64
	max    []float64
	aQ     []*mat.Dense
	fQ, lQ []*mat.VecDense
	tA     [][]theta
	tF, tL [][]theta
}

func ReadModel(path string, logger *zap.Logger) (m *Model, err error) {
	var (
		data []byte
	)
	if data, err = os.ReadFile(path); err != nil {
		return nil, errors.Wrapf(types.ErrConfig, "reading reduced basis file: %v", err)
	}
	if m, err = ParseModel(data, logger); err != nil {
		return nil, errors.Wrapf(err, "reduced basis file %s", path)
	}
	return
}

func ParseModel(data []byte, logger *zap.Logger) (m *Model, err error) {
	m = &Model{Logger: logger}
	if m.Logger == nil {
		m.Logger = zap.NewNop()
	}
	if err = yaml.Unmarshal(data, &m.Affine); err != nil {
		return nil, errors.Wrapf(types.ErrConfig, "parsing reduced basis model: %v", err)
	}
	if err = m.compile(); err != nil {
		return nil, err
	}
	return
}

func (m *Model) compile() (err error) {
	if len(m.Parameters) == 0 {
		return errors.Wrap(types.ErrConfig, "reduced basis model declares no parameters")
	}
	if len(m.A) == 0 || len(m.F) == 0 || len(m.L) == 0 {
		return errors.Wrap(types.ErrConfig, "reduced basis model needs at least one A, F and L term")
	}
	index := make(map[string]int)
	for i, p := range m.Parameters {
		if p.Min > p.Max {
			return errors.Wrapf(types.ErrConfig, "parameter %s: min %g > max %g", p.Name, p.Min, p.Max)
		}
		index[p.Name] = i
		m.names = append(m.names, p.Name)
		m.min = append(m.min, p.Min)
		m.max = append(m.max, p.Max)
	}
	m.Nmax = len(m.A[0].Matrix)
	if m.Nmax == 0 {
		return errors.Wrap(types.ErrConfig, "reduced basis model has dimension 0")
	}
	compileThetas := func(mons []Monomial) (th []theta, err error) {
		for _, mon := range mons {
			t := theta{coef: mon.Coef}
			for name, p := range mon.Powers {
				i, ok := index[name]
				if !ok {
					return nil, errors.Wrapf(types.ErrConfig, "theta term uses unknown parameter %q", name)
				}
				t.index = append(t.index, i)
				t.powers = append(t.powers, p)
			}
			th = append(th, t)
		}
		return
	}
	for q, term := range m.A {
		if len(term.Matrix) != m.Nmax {
			return errors.Wrapf(types.ErrConfig, "A_%d has %d rows, expected %d", q, len(term.Matrix), m.Nmax)
		}
		A := mat.NewDense(m.Nmax, m.Nmax, nil)
		for i, row := range term.Matrix {
			if len(row) != m.Nmax {
				return errors.Wrapf(types.ErrConfig, "A_%d row %d has %d entries, expected %d", q, i, len(row), m.Nmax)
			}
			A.SetRow(i, row)
		}
		m.aQ = append(m.aQ, A)
		th, err := compileThetas(term.Theta)
		if err != nil {
			return err
		}
		m.tA = append(m.tA, th)
	}
	vectors := func(label string, terms []VectorTerm) (vQ []*mat.VecDense, tQ [][]theta, err error) {
		for q, term := range terms {
			if len(term.Vector) != m.Nmax {
				return nil, nil, errors.Wrapf(types.ErrConfig, "%s_%d has %d entries, expected %d", label, q, len(term.Vector), m.Nmax)
			}
			vQ = append(vQ, mat.NewVecDense(m.Nmax, term.Vector))
			th, err := compileThetas(term.Theta)
			if err != nil {
				return nil, nil, err
			}
			tQ = append(tQ, th)
		}
		return
	}
	if m.fQ, m.tF, err = vectors("F", m.F); err != nil {
		return
	}
	if m.lQ, m.tL, err = vectors("L", m.L); err != nil {
		return
	}
	return
}

func evalTheta(th []theta, mu []float64) (v float64) {
	for _, t := range th {
		p := t.coef
		for k, i := range t.index {
			p *= math.Pow(mu[i], t.powers[k])
		}
		v += p
	}
	return
}

func (m *Model) Name() string {
	if len(m.Title) == 0 {
		return "rb"
	}
	return m.Title
}
func (m *Model) Dimension() int           { return len(m.names) }
func (m *Model) ParameterNames() []string { return m.names }
func (m *Model) Min() []float64           { return m.min }
func (m *Model) Max() []float64           { return m.max }

func (m *Model) Print() {
	fmt.Printf("\"%s\"\t\t= Reduced basis model\n", m.Name())
	fmt.Printf("[%d]\t\t\t= Maximum dimension\n", m.Nmax)
	fmt.Printf("[%d, %d, %d]\t\t= Affine terms A, F, L\n", len(m.A), len(m.F), len(m.L))
	for i, name := range m.names {
		fmt.Printf("%-10s\t= [%g, %g]\n", name, m.min[i], m.max[i])
	}
}
