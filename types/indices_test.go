package types

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIndexSet(t *testing.T) {
	is := IndexSet{
		First: []float64{0.2, 0.5},
		Total: []float64{0.3, 0.45},
	}
	names := []string{"h_amb", "E"}
	{ // Without intervals only eps is tolerated
		err := is.CheckConsistency(names, 1.e-9)
		assert.True(t, errors.Is(err, ErrConsistency))
		assert.Contains(t, err.Error(), "(E)")
		assert.NoError(t, is.CheckConsistency(names, 0.06))
	}
	{ // Interval half widths widen the tolerance
		is.FirstIntervals = []Interval{{0.1, 0.3}, {0.45, 0.55}}
		is.TotalIntervals = []Interval{{0.2, 0.4}, {0.43, 0.47}}
		assert.NoError(t, is.CheckConsistency(names, 0))
		is.FirstIntervals[1] = Interval{0.5, 0.5}
		is.TotalIntervals[1] = Interval{0.44, 0.46}
		assert.Error(t, is.CheckConsistency(names, 0))
	}
	{
		assert.True(t, is.Inside(1.e-9))
		assert.False(t, is.Inside(0.25))
		edge := IndexSet{First: []float64{0}, Total: []float64{0.5}}
		assert.False(t, edge.Inside(0))
	}
	{ // Copy is deep
		is.Second = [][]float64{{0, 0.1}, {0.1, 0}}
		c := is.Copy()
		c.First[0], c.FirstIntervals[0][0], c.Second[0][1] = 9, 9, 9
		assert.Equal(t, 0.2, is.First[0])
		assert.Equal(t, 0.1, is.FirstIntervals[0][0])
		assert.Equal(t, 0.1, is.Second[0][1])
		assert.Equal(t, 2, c.Dim())
	}
	{
		iv := Interval{1, 3}
		assert.True(t, iv.Contains(1))
		assert.False(t, iv.Contains(3.5))
		assert.Equal(t, 1., iv.HalfWidth())
	}
}
