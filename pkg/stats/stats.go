// Package stats provides the descriptive statistics used to aggregate method
// features per class.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Percentile calculates the q-th quantile (0 <= q <= 1) of a sorted slice using linear
// interpolation between closest ranks, h = (n-1)q.
// The slice must already be sorted in ascending order.
// Returns NaN if the slice is empty.
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	h := float64(n-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= n {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Stat names one descriptive statistic.
type Stat string

const (
	Count  Stat = "count"
	Mean   Stat = "mean"
	Std    Stat = "std"
	Min    Stat = "min"
	P25    Stat = "25%"
	Median Stat = "50%"
	P75    Stat = "75%"
	Max    Stat = "max"
)

// All lists the statistics in output order.
var All = []Stat{Count, Mean, Std, Min, P25, Median, P75, Max}

// Summary is the descriptive summary of one sample. Std is undefined for a single
// observation and every field but Count is undefined for an empty sample.
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	P25    float64
	Median float64
	P75    float64
	Max    float64
}

// Describe summarizes the sample. NaN observations are ignored.
func Describe(values []float64) Summary {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			xs = append(xs, v)
		}
	}
	nan := math.NaN()
	s := Summary{Count: len(xs), Mean: nan, Std: nan, Min: nan, P25: nan, Median: nan, P75: nan, Max: nan}
	if len(xs) == 0 {
		return s
	}
	sort.Float64s(xs)

	s.Mean = stat.Mean(xs, nil)
	if len(xs) > 1 {
		s.Std = stat.StdDev(xs, nil)
	}
	s.Min = floats.Min(xs)
	s.Max = floats.Max(xs)
	s.P25 = Percentile(xs, 0.25)
	s.Median = Percentile(xs, 0.5)
	s.P75 = Percentile(xs, 0.75)
	return s
}

// Get returns one statistic and whether it is defined.
func (s Summary) Get(which Stat) (float64, bool) {
	var v float64
	switch which {
	case Count:
		return float64(s.Count), true
	case Mean:
		v = s.Mean
	case Std:
		v = s.Std
	case Min:
		v = s.Min
	case P25:
		v = s.P25
	case Median:
		v = s.Median
	case P75:
		v = s.P75
	case Max:
		v = s.Max
	default:
		return 0, false
	}
	return v, !math.IsNaN(v)
}
