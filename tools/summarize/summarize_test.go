package main

import (
	"path/filepath"
	"testing"

	"github.com/notargets/sobolsa/results"
	"github.com/notargets/sobolsa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	var (
		path = filepath.Join(t.TempDir(), "sensitivity.json")
	)
	r := results.New("saltelli", []string{"x1", "x2"}, 1024, types.IndexSet{
		First:          []float64{0.25, 0.5},
		Total:          []float64{0.375, 0.625},
		FirstIntervals: []types.Interval{{0.125, 0.375}, {0.25, 0.75}},
		TotalIntervals: []types.Interval{{0.25, 0.5}, {0.5, 0.75}},
	})
	require.NoError(t, r.WriteJSON(path))
	s, err := summarize(path)
	require.NoError(t, err)
	assert.Equal(t, 0.75, s.FirstSum)
	assert.Equal(t, 1., s.TotalSum)
	assert.Equal(t, 0.5, s.WidestFirstInterval)
	assert.Equal(t, 1024, s.SamplingSize)
	s.Print()
	_, err = summarize(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
