package comm

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Launch runs fn once per rank of a new local group of the given size and
// waits for all of them. The first failure cancels the context seen by the
// other ranks so none stays blocked in a collective; the returned error
// combines the failures, leaving out the cancellations they caused.
func Launch(ctx context.Context, size int, fn func(ctx context.Context, c Communicator) error) error {
	var (
		comms       = NewLocalGroup(size)
		wg          sync.WaitGroup
		errs        = make([]error, len(comms))
		cctx, abort = context.WithCancel(ctx)
	)
	defer abort()
	for r, c := range comms {
		wg.Add(1)
		go func(r int, c Communicator) {
			defer wg.Done()
			if errs[r] = fn(cctx, c); errs[r] != nil {
				errs[r] = errors.Wrapf(errs[r], "rank %d", r)
				abort()
			}
		}(r, c)
	}
	wg.Wait()
	var (
		primary, cancelled []error
	)
	for _, err := range errs {
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled) && ctx.Err() == nil:
			cancelled = append(cancelled, err)
		default:
			primary = append(primary, err)
		}
	}
	if len(primary) == 0 {
		return multierr.Combine(cancelled...)
	}
	return multierr.Combine(primary...)
}
