package comm

import (
	"context"
	"sync"
	"testing"

	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestGatherRankOrder(t *testing.T) {
	for _, W := range []int{1, 2, 5} {
		var (
			N, D   = 4, 3
			merged []float64
			mu     sync.Mutex
		)
		err := Launch(context.Background(), W, func(ctx context.Context, c Communicator) error {
			assert.Equal(t, W, c.Size())
			local := make([]float64, N*D)
			for i := range local {
				local[i] = float64(c.Rank()*1000 + i)
			}
			out, err := c.Gather(ctx, local)
			if err != nil {
				return err
			}
			if c.IsCoordinator() {
				mu.Lock()
				merged = out
				mu.Unlock()
			} else {
				assert.Nil(t, out)
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, W*N*D, len(merged))
		for r := 0; r < W; r++ {
			for i := 0; i < N*D; i++ {
				assert.Equal(t, float64(r*1000+i), merged[r*N*D+i])
			}
		}
	}
}

func TestGatherSizeMismatch(t *testing.T) {
	err := Launch(context.Background(), 3, func(ctx context.Context, c Communicator) error {
		local := make([]float64, 4)
		if c.Rank() == 2 {
			local = make([]float64, 3)
		}
		_, err := c.Gather(ctx, local)
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrGatherSize))
	// Every rank learns about the mismatch
	assert.Equal(t, 3, len(multierr.Errors(err)))
}

func TestBroadcastAndRounds(t *testing.T) {
	var (
		W       = 4
		decided = make([][]float64, W)
	)
	err := Launch(context.Background(), W, func(ctx context.Context, c Communicator) error {
		for round := 0; round < 3; round++ {
			if _, err := c.Gather(ctx, []float64{float64(c.Rank()), float64(round)}); err != nil {
				return err
			}
			var data []float64
			if c.IsCoordinator() {
				data = []float64{float64(round), 42}
			}
			out, err := c.Broadcast(ctx, data)
			if err != nil {
				return err
			}
			assert.Equal(t, []float64{float64(round), 42}, out)
			decided[c.Rank()] = out
		}
		return nil
	})
	require.NoError(t, err)
	for _, d := range decided {
		assert.Equal(t, []float64{2, 42}, d)
	}
}

func TestLaunchFailureReleasesPeers(t *testing.T) {
	boom := errors.New("boom")
	err := Launch(context.Background(), 3, func(ctx context.Context, c Communicator) error {
		if c.Rank() == 1 {
			return boom
		}
		_, err := c.Gather(ctx, []float64{1})
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 1, len(multierr.Errors(err)))
}
