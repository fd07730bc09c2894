// Package comm provides the collective operations used when an analysis is
// split across several workers: a rank ordered gather onto a coordinator and
// a broadcast from it.
package comm

import (
	"context"

	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
)

// Communicator is one rank's handle on a worker group. Every rank must enter
// the same sequence of collective calls. Calls block until the collective
// completes or ctx is done; there is no timeout of their own.
type Communicator interface {
	Rank() int
	Size() int
	IsCoordinator() bool
	// Gather concatenates every rank's contribution in rank order on the
	// coordinator. All contributions must have the same length. Other ranks
	// receive nil once the coordinator holds the merged data.
	Gather(ctx context.Context, local []float64) ([]float64, error)
	// Broadcast returns a copy of the coordinator's data on every rank.
	Broadcast(ctx context.Context, data []float64) ([]float64, error)
}

const Coordinator = 0

type message struct {
	rank int
	data []float64
}

type reply struct {
	data []float64
	err  error
}

// group carries the channels shared by the ranks of one in-process group:
// one inbox on the coordinator and one reply box per rank.
type group struct {
	size    int
	inbox   chan message
	replies []chan reply
}

type member struct {
	g    *group
	rank int
}

// NewLocalGroup returns the handles of a group of size goroutine workers, indexed by rank.
func NewLocalGroup(size int) (comms []Communicator) {
	if size < 1 {
		size = 1
	}
	g := &group{
		size:    size,
		inbox:   make(chan message, size),
		replies: make([]chan reply, size),
	}
	comms = make([]Communicator, size)
	for r := 0; r < size; r++ {
		g.replies[r] = make(chan reply, 1)
		comms[r] = &member{g: g, rank: r}
	}
	return
}

func (m *member) Rank() int           { return m.rank }
func (m *member) Size() int           { return m.g.size }
func (m *member) IsCoordinator() bool { return m.rank == Coordinator }

func copyOf(v []float64) (c []float64) {
	c = make([]float64, len(v))
	copy(c, v)
	return
}

func (m *member) Gather(ctx context.Context, local []float64) (merged []float64, err error) {
	if !m.IsCoordinator() {
		select {
		case m.g.inbox <- message{rank: m.rank, data: copyOf(local)}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		_, err = m.wait(ctx)
		return
	}
	var (
		size  = m.g.size
		slots = make([][]float64, size) // scoped to this call
	)
	slots[m.rank] = local
	for received := 1; received < size; received++ {
		select {
		case msg := <-m.g.inbox:
			slots[msg.rank] = msg.data
			if len(msg.data) != len(local) && err == nil {
				err = errors.Wrapf(types.ErrGatherSize, "rank %d contributed %d values, coordinator %d",
					msg.rank, len(msg.data), len(local))
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err == nil {
		merged = make([]float64, 0, size*len(local))
		for _, s := range slots {
			merged = append(merged, s...)
		}
	}
	// Release the other ranks, they learn about a size mismatch too
	if rerr := m.release(ctx, func(int) reply { return reply{err: err} }); rerr != nil {
		return nil, rerr
	}
	return
}

func (m *member) Broadcast(ctx context.Context, data []float64) (out []float64, err error) {
	if !m.IsCoordinator() {
		r, err := m.wait(ctx)
		return r.data, err
	}
	err = m.release(ctx, func(int) reply { return reply{data: copyOf(data)} })
	return copyOf(data), err
}

func (m *member) wait(ctx context.Context) (r reply, err error) {
	select {
	case r = <-m.g.replies[m.rank]:
		return r, r.err
	case <-ctx.Done():
		// A reply sent before the cancellation still wins
		select {
		case r = <-m.g.replies[m.rank]:
			return r, r.err
		default:
		}
		return r, ctx.Err()
	}
}

func (m *member) release(ctx context.Context, build func(rank int) reply) error {
	for r := 0; r < m.g.size; r++ {
		if r == m.rank {
			continue
		}
		select {
		case m.g.replies[r] <- build(r):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
