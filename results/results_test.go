package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/sobolsa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombine(t *testing.T) {
	snaps := []Snapshot{
		{SamplingSize: 10, Indices: types.IndexSet{First: []float64{0.1, 0.5}, Total: []float64{0.2, 0.7},
			FirstIntervals: []types.Interval{{0, 0.2}, {0.4, 0.6}}, TotalIntervals: []types.Interval{{0.1, 0.3}, {0.6, 0.8}}}},
		{SamplingSize: 10, Indices: types.IndexSet{First: []float64{0.3, 0.3}, Total: []float64{0.4, 0.5},
			FirstIntervals: []types.Interval{{0.2, 0.4}, {0.2, 0.4}}, TotalIntervals: []types.Interval{{0.3, 0.5}, {0.4, 0.6}}}},
	}
	final := Combine(snaps)
	assert.InDeltaSlice(t, []float64{0.2, 0.4}, final.First, 1.e-14)
	assert.InDeltaSlice(t, []float64{0.3, 0.6}, final.Total, 1.e-14)
	assert.InDelta(t, 0.1, final.FirstIntervals[0][0], 1.e-14)
	assert.InDelta(t, 0.7, final.TotalIntervals[1][1], 1.e-14)
	assert.Nil(t, final.Second)
	// Inputs are left untouched
	assert.Equal(t, 0.1, snaps[0].Indices.First[0])
	{ // Dropping one snapshot's intervals drops them from the reduction
		snaps[1].Indices.FirstIntervals = nil
		assert.Nil(t, Combine(snaps).FirstIntervals)
	}
	assert.Nil(t, Combine(nil).First)
}

func TestJSONRoundTrip(t *testing.T) {
	var (
		dir  = t.TempDir()
		path = filepath.Join(dir, "sensitivity.json")
		set  = types.IndexSet{
			First:          []float64{0.1, 0.6},
			Total:          []float64{0.3, 0.8},
			FirstIntervals: []types.Interval{{0.05, 0.15}, {0.5, 0.7}},
			TotalIntervals: []types.Interval{{0.25, 0.35}, {0.7, 0.9}},
		}
		q2 = 0.97
	)
	r := New("polynomial-chaos", []string{"a", "b"}, 256, set)
	r.Meta.Q2 = &q2
	r.Meta.Converged = true
	r.Meta.BootstrapAccepted, r.Meta.BootstrapRequested = 95, 100
	require.NoError(t, r.WriteJSON(path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, key := range []string{`"N": 2`, `"sampling-size": 256`, `"algo": "polynomial-chaos"`, `"Names"`,
		`"FirstOrder"`, `"TotalOrder"`, `"values"`, `"intervals"`, `"bootstrap-accepted": 95`} {
		assert.Contains(t, string(raw), key)
	}
	assert.NotContains(t, string(raw), "SecondOrder")
	back, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, r, back)
	assert.Equal(t, set, back.Indices())
	assert.Len(t, r.Meta.ID, 36)
	r.Print()
}

func TestSweep(t *testing.T) {
	sw := &Sweep{Param: "h_bl", Values: []float64{50, 80, 110}, Outputs: []float64{300.1, 301.25, 302.5}}
	assert.Equal(t, "deterministic_analysis_h_bl.csv", SweepFileName("h_bl"))
	for _, name := range []string{SweepFileName("h_bl"), "sweep.xlsx"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, sw.Write(path))
		back, err := ReadSweep(path)
		require.NoError(t, err)
		assert.InDeltaSlice(t, sw.Values, back.Values, 1.e-9)
		assert.InDeltaSlice(t, sw.Outputs, back.Outputs, 1.e-9)
	}
	raw, err := os.ReadFile(func() string {
		p := filepath.Join(t.TempDir(), "s.csv")
		require.NoError(t, sw.Write(p))
		return p
	}())
	require.NoError(t, err)
	assert.Equal(t, "param,output\n5.000000e+01,3.001000e+02\n8.000000e+01,3.012500e+02\n1.100000e+02,3.025000e+02\n", string(raw))
}

func TestSampleDump(t *testing.T) {
	ps, err := types.NewPairedSampleFrom([]string{"a", "b"},
		[]types.ParameterVector{{0.1, 0.2}, {1. / 3, 4}}, []float64{1.5, -2})
	require.NoError(t, err)
	for _, name := range []string{"sample.csv", "sample.csv.zst"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, DumpSample(path, ps))
		back, err := LoadSample(path)
		require.NoError(t, err)
		assert.Equal(t, ps.Names, back.Names)
		assert.Equal(t, ps.Inputs, back.Inputs)
		assert.Equal(t, ps.Outputs, back.Outputs)
		assert.Equal(t, Digest(ps), Digest(back))
	}
	{ // The digest follows row order
		swapped, err := types.NewPairedSampleFrom(ps.Names,
			[]types.ParameterVector{ps.Inputs[1], ps.Inputs[0]}, []float64{ps.Outputs[1], ps.Outputs[0]})
		require.NoError(t, err)
		assert.NotEqual(t, Digest(ps), Digest(swapped))
		assert.Len(t, Digest(ps), 16)
	}
}
