package sensitivity

import (
	"github.com/notargets/sobolsa/polychaos"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
)

// ChaosIndices fits a polynomial chaos expansion to the sample and returns its
// analytic indices. Second order indices are the variance shares of the terms
// involving exactly the pair.
func ChaosIndices(ps *types.PairedSample, germs []polychaos.Germ, opts polychaos.Options, secondOrder bool) (is types.IndexSet, pce *polychaos.Expansion, err error) {
	if !ps.Frozen() {
		return is, nil, errors.New("chaos fit on a sample that is still growing")
	}
	if pce, err = polychaos.Fit(ps.InputMatrix(), ps.Outputs, germs, opts); err != nil {
		return is, nil, errors.Wrapf(err, "fitting chaos expansion on %d points", ps.Len())
	}
	if is.First, is.Total, err = pce.SobolIndices(); err != nil {
		return is, nil, err
	}
	if secondOrder {
		D := ps.Dim()
		is.Second = make([][]float64, D)
		for i := range is.Second {
			is.Second[i] = make([]float64, D)
		}
		for i := 0; i < D; i++ {
			for j := i + 1; j < D; j++ {
				s := pce.GroupIndex([]int{i, j})
				is.Second[i][j], is.Second[j][i] = s, s
			}
		}
	}
	return
}
