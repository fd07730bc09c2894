// Package results holds the outcome of an analysis and writes it out: a
// summary table, the JSON artifact and the sweep and sample exports.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
)

type IndexValues struct {
	Values    []float64        `json:"values"`
	Intervals []types.Interval `json:"intervals,omitempty"`
}

type Meta struct {
	ID                 string   `json:"id"`
	Converged          bool     `json:"converged"`
	Iterations         int      `json:"iterations"`
	BootstrapAccepted  int      `json:"bootstrap-accepted,omitempty"`
	BootstrapRequested int      `json:"bootstrap-requested,omitempty"`
	Q2                 *float64 `json:"q2,omitempty"`
	Workers            int      `json:"workers"`
	SampleDigest       string   `json:"sample-digest,omitempty"`
	Seed               uint64   `json:"seed"`
}

// Results is the JSON artifact of a run. N is the number of parameters.
type Results struct {
	N            int         `json:"N"`
	SamplingSize int         `json:"sampling-size"`
	Algo         string      `json:"algo"`
	Names        []string    `json:"Names"`
	FirstOrder   IndexValues `json:"FirstOrder"`
	TotalOrder   IndexValues `json:"TotalOrder"`
	SecondOrder  [][]float64 `json:"SecondOrder,omitempty"`
	Meta         Meta        `json:"meta"`
}

// Snapshot is the estimate of one run at a given sampling size.
type Snapshot struct {
	SamplingSize int
	Indices      types.IndexSet
}

func New(algo string, names []string, samplingSize int, final types.IndexSet) (r *Results) {
	r = &Results{
		N:            len(names),
		SamplingSize: samplingSize,
		Algo:         algo,
		Names:        names,
		FirstOrder:   IndexValues{Values: final.First, Intervals: final.FirstIntervals},
		TotalOrder:   IndexValues{Values: final.Total, Intervals: final.TotalIntervals},
		SecondOrder:  final.Second,
		Meta:         Meta{ID: uuid.NewString()},
	}
	return
}

// Combine averages snapshots component by component. Intervals and second
// order indices are averaged only when every snapshot carries them.
func Combine(snapshots []Snapshot) (final types.IndexSet) {
	var (
		n = len(snapshots)
	)
	if n == 0 {
		return
	}
	var (
		D         = snapshots[0].Indices.Dim()
		intervals = true
		second    = true
	)
	for _, s := range snapshots {
		intervals = intervals && s.Indices.FirstIntervals != nil && s.Indices.TotalIntervals != nil
		second = second && s.Indices.Second != nil
	}
	final.First, final.Total = make([]float64, D), make([]float64, D)
	if intervals {
		final.FirstIntervals, final.TotalIntervals = make([]types.Interval, D), make([]types.Interval, D)
	}
	if second {
		final.Second = make([][]float64, D)
		for i := range final.Second {
			final.Second[i] = make([]float64, D)
		}
	}
	w := 1. / float64(n)
	for _, s := range snapshots {
		is := s.Indices
		for i := 0; i < D; i++ {
			final.First[i] += w * is.First[i]
			final.Total[i] += w * is.Total[i]
			if intervals {
				for k := 0; k < 2; k++ {
					final.FirstIntervals[i][k] += w * is.FirstIntervals[i][k]
					final.TotalIntervals[i][k] += w * is.TotalIntervals[i][k]
				}
			}
			if second {
				for j := 0; j < D; j++ {
					final.Second[i][j] += w * is.Second[i][j]
				}
			}
		}
	}
	return
}

// Indices rebuilds the index set held by the artifact.
func (r *Results) Indices() types.IndexSet {
	return types.IndexSet{
		First:          r.FirstOrder.Values,
		Total:          r.TotalOrder.Values,
		FirstIntervals: r.FirstOrder.Intervals,
		TotalIntervals: r.TotalOrder.Intervals,
		Second:         r.SecondOrder,
	}
}

func (r *Results) WriteJSON(path string) (err error) {
	var (
		data []byte
	)
	if data, err = json.MarshalIndent(r, "", "    "); err != nil {
		return errors.Wrap(err, "encoding results")
	}
	if err = os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return
}

func ReadJSON(path string) (r *Results, err error) {
	var (
		data []byte
	)
	if data, err = os.ReadFile(path); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	r = &Results{}
	if err = json.Unmarshal(data, r); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return
}

// Print writes the summary table to stdout.
func (r *Results) Print() {
	var (
		ci    = r.FirstOrder.Intervals != nil && r.TotalOrder.Intervals != nil
		width = 32
	)
	if ci {
		width = 84
	}
	fmt.Printf("Sobol indices, %s, sampling size %d\n", r.Algo, r.SamplingSize)
	if ci {
		fmt.Printf("%-10s %10s %25s %10s %25s\n", "Parameter", "First", "interval", "Total", "interval")
	} else {
		fmt.Printf("%-10s %10s %10s\n", "Parameter", "First", "Total")
	}
	fmt.Println(strings.Repeat("-", width))
	for i, name := range r.Names {
		if ci {
			fi, ti := r.FirstOrder.Intervals[i], r.TotalOrder.Intervals[i]
			fmt.Printf("%-10s %10.5f [%10.5f, %10.5f] %10.5f [%10.5f, %10.5f]\n",
				name, r.FirstOrder.Values[i], fi[0], fi[1], r.TotalOrder.Values[i], ti[0], ti[1])
			continue
		}
		fmt.Printf("%-10s %10.5f %10.5f\n", name, r.FirstOrder.Values[i], r.TotalOrder.Values[i])
	}
	if r.SecondOrder != nil {
		fmt.Printf("Second order indices:\n")
		for i := range r.Names {
			for j := i + 1; j < len(r.Names); j++ {
				fmt.Printf("(%s, %s) = %10.5f\n", r.Names[i], r.Names[j], r.SecondOrder[i][j])
			}
		}
	}
	m := r.Meta
	fmt.Printf("id %s, iterations %d, converged %v, workers %d\n", m.ID, m.Iterations, m.Converged, m.Workers)
	if m.BootstrapRequested > 0 {
		fmt.Printf("bootstrap replicates accepted %d / %d\n", m.BootstrapAccepted, m.BootstrapRequested)
	}
	if m.Q2 != nil {
		fmt.Printf("Q2 = %8.5f\n", *m.Q2)
	}
}
