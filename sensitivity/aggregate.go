package sensitivity

import (
	"context"

	"github.com/notargets/sobolsa/comm"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
)

// GatherSample merges the local samples of every rank onto the coordinator in
// rank order: rank 0's rows first, then rank 1's. Inputs travel row major in
// one gather and outputs in a second. Every rank must contribute the same
// number of rows. Ranks other than the coordinator get nil.
func GatherSample(ctx context.Context, c comm.Communicator, local *types.PairedSample) (merged *types.PairedSample, err error) {
	var (
		X, Y []float64
	)
	if X, err = c.Gather(ctx, local.FlatInputs()); err != nil {
		return nil, errors.Wrap(err, "gathering inputs")
	}
	if Y, err = c.Gather(ctx, local.Outputs); err != nil {
		return nil, errors.Wrap(err, "gathering outputs")
	}
	if !c.IsCoordinator() {
		return nil, nil
	}
	if want := c.Size() * local.Len(); len(Y) != want {
		return nil, errors.Wrapf(types.ErrGatherSize, "merged %d outputs, expected %d", len(Y), want)
	}
	var (
		rows []types.ParameterVector
	)
	if rows, err = types.UnflattenInputs(X, local.Dim()); err != nil {
		return nil, err
	}
	return types.NewPairedSampleFrom(local.Names, rows, Y)
}
