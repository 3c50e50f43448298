package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		q      float64
		want   float64
	}{
		{"median odd", []float64{1, 2, 3}, 0.5, 2},
		{"interpolated", []float64{1, 2, 3, 4}, 0.25, 1.75},
		{"upper", []float64{1, 2, 3, 4}, 0.75, 3.25},
		{"single", []float64{5}, 0.25, 5},
		{"min", []float64{1, 9}, 0, 1},
		{"max", []float64{1, 9}, 1, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.sorted, tt.q), 1e-9)
		})
	}

	assert.True(t, math.IsNaN(Percentile(nil, 0.5)))
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{3, 1, 2})
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 2.0, s.Mean, 1e-9)
	assert.InDelta(t, 1.0, s.Std, 1e-9)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 1.5, s.P25)
	assert.Equal(t, 2.0, s.Median)
	assert.Equal(t, 2.5, s.P75)
	assert.Equal(t, 3.0, s.Max)
}

func TestDescribeSingle(t *testing.T) {
	s := Describe([]float64{5})
	assert.Equal(t, 1, s.Count)

	v, ok := s.Get(Mean)
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)

	_, ok = s.Get(Std)
	assert.False(t, ok, "std of one observation is undefined")
}

func TestDescribeIgnoresNaN(t *testing.T) {
	s := Describe([]float64{math.NaN(), 4})
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 4.0, s.Max)

	empty := Describe(nil)
	assert.Equal(t, 0, empty.Count)
	_, ok := empty.Get(Min)
	assert.False(t, ok)
}
