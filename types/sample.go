package types

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ParameterVector is one point of the parameter space. Component order follows
// the names declared by the distribution for the whole run.
type ParameterVector []float64

func (pv ParameterVector) Copy() (c ParameterVector) {
	c = make(ParameterVector, len(pv))
	copy(c, pv)
	return
}

// PairedSample holds (input, output) pairs in generation order. It grows by
// Append while outputs are computed and is frozen before any estimator reads it.
type PairedSample struct {
	Names   []string
	Inputs  []ParameterVector
	Outputs []float64
	frozen  bool
}

func NewPairedSample(names []string, capacity int) (ps *PairedSample) {
	ps = &PairedSample{
		Names:   names,
		Inputs:  make([]ParameterVector, 0, capacity),
		Outputs: make([]float64, 0, capacity),
	}
	return
}

// NewPairedSampleFrom pairs already computed inputs and outputs and freezes the result.
func NewPairedSampleFrom(names []string, X []ParameterVector, Y []float64) (ps *PairedSample, err error) {
	if len(X) != len(Y) {
		err = errors.Errorf("inputs and outputs differ in length: %d != %d", len(X), len(Y))
		return
	}
	ps = NewPairedSample(names, len(X))
	for i := range X {
		if err = ps.Append(X[i], Y[i]); err != nil {
			return nil, err
		}
	}
	ps.Freeze()
	return
}

func (ps *PairedSample) Append(x ParameterVector, y float64) error {
	if ps.frozen {
		return errors.New("paired sample is frozen")
	}
	if len(x) != len(ps.Names) {
		return errors.Errorf("parameter vector has dimension %d, expected %d", len(x), len(ps.Names))
	}
	ps.Inputs = append(ps.Inputs, x)
	ps.Outputs = append(ps.Outputs, y)
	return nil
}

func (ps *PairedSample) Freeze() *PairedSample { ps.frozen = true; return ps }
func (ps *PairedSample) Frozen() bool          { return ps.frozen }
func (ps *PairedSample) Len() int              { return len(ps.Outputs) }
func (ps *PairedSample) Dim() int              { return len(ps.Names) }

// Select builds a new frozen sample from rows picked by index, repeats allowed.
func (ps *PairedSample) Select(indices []int) (sel *PairedSample) {
	sel = NewPairedSample(ps.Names, len(indices))
	for _, k := range indices {
		sel.Inputs = append(sel.Inputs, ps.Inputs[k])
		sel.Outputs = append(sel.Outputs, ps.Outputs[k])
	}
	sel.frozen = true
	return
}

// Column returns a copy of the values taken by parameter j.
func (ps *PairedSample) Column(j int) (col []float64) {
	col = make([]float64, ps.Len())
	for i, x := range ps.Inputs {
		col[i] = x[j]
	}
	return
}

// FlatInputs packs the inputs row major, N x D.
func (ps *PairedSample) FlatInputs() (flat []float64) {
	var (
		D = ps.Dim()
	)
	flat = make([]float64, ps.Len()*D)
	for i, x := range ps.Inputs {
		copy(flat[i*D:(i+1)*D], x)
	}
	return
}

func (ps *PairedSample) InputMatrix() *mat.Dense {
	return mat.NewDense(ps.Len(), ps.Dim(), ps.FlatInputs())
}

// UnflattenInputs is the inverse of FlatInputs.
func UnflattenInputs(flat []float64, D int) (X []ParameterVector, err error) {
	if D <= 0 || len(flat)%D != 0 {
		err = errors.Errorf("cannot split %d values into rows of dimension %d", len(flat), D)
		return
	}
	X = make([]ParameterVector, len(flat)/D)
	for i := range X {
		X[i] = ParameterVector(flat[i*D : (i+1)*D]).Copy()
	}
	return
}

// CheckFinite reports the first row whose output is NaN or infinite.
func (ps *PairedSample) CheckFinite() error {
	for i, y := range ps.Outputs {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return errors.Errorf("output %d is not finite: %v", i, y)
		}
	}
	return nil
}
