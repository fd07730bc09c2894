// Package model_problems provides the models an analysis can be run against:
// closed form test functions and the online stage of reduced basis models.
package model_problems

import (
	"sort"

	"github.com/notargets/sobolsa/distribution"
	"github.com/notargets/sobolsa/model_problems/ReducedBasis"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var analytic = map[string]func() *Analytic{
	"additive": NewAdditive,
	"ishigami": NewIshigami,
	"borehole": NewBorehole,
}

// Names lists the selectable model identifiers.
func Names() (names []string) {
	for name := range analytic {
		names = append(names, name)
	}
	names = append(names, "rb")
	sort.Strings(names)
	return
}

// NewModel selects a model by identifier, "rb" reads the reduced basis model in rbFile.
func NewModel(name, rbFile string, logger *zap.Logger) (m types.Model, err error) {
	if ctor, ok := analytic[name]; ok {
		return ctor(), nil
	}
	switch name {
	case "rb":
		if len(rbFile) == 0 {
			return nil, errors.Wrap(types.ErrConfig, "model rb needs a reduced basis file")
		}
		return ReducedBasis.ReadModel(rbFile, logger)
	case "":
		return nil, errors.Wrapf(types.ErrConfig, "no model selected, choose one of %v", Names())
	}
	return nil, errors.Wrapf(types.ErrConfig, "unknown model %q, choose one of %v", name, Names())
}

var eye2brainBaseline = map[string]float64{
	"h_bl":  65,  // [W / m^2 / K]
	"h_amb": 10,  // [W / m^2 / K]
	"h_tau": 6,   // [W / m^2 / K]
	"T_bl":  310, // [K]
	"T_amb": 294, // [K]
	"E":     40,  // [W / m^2]
}

// Baseline is the reference point of a one parameter sweep: the eye2brain
// reference values for the parameters that have one, the middle of the range otherwise.
func Baseline(m types.Model) (mu types.ParameterVector) {
	var (
		min, max = m.Min(), m.Max()
	)
	mu = make(types.ParameterVector, m.Dimension())
	for i, name := range m.ParameterNames() {
		if v, ok := eye2brainBaseline[name]; ok && v >= min[i] && v <= max[i] {
			mu[i] = v
			continue
		}
		mu[i] = 0.5 * (min[i] + max[i])
	}
	return
}

// DefaultTable is the distribution policy used when the input file gives none.
func DefaultTable(m types.Model) distribution.Table {
	switch m.Name() {
	case "borehole":
		return distribution.BoreholeTable()
	case "additive", "ishigami":
		return nil
	}
	return distribution.Eye2BrainTable().Restrict(m.ParameterNames())
}
