package data

import (
	"math"

	"github.com/DataDog/sketches-go/ddsketch"
)

// Stats holds running statistics over one series, with optional
// percentiles via DDSketch.
type Stats struct {
	count int64
	sum   float64
	min   float64
	max   float64

	sketch *ddsketch.DDSketch
}

// NewStats creates an empty collector. accuracy is the sketch's relative
// accuracy; percentiles are disabled if the sketch cannot be built.
func NewStats(accuracy float64) *Stats {
	st := &Stats{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
	if sketch, err := ddsketch.NewDefaultDDSketch(accuracy); err == nil {
		st.sketch = sketch
	}
	return st
}

// Add feeds one value.
func (st *Stats) Add(v float64) {
	st.count++
	st.sum += v
	if v < st.min {
		st.min = v
	}
	if v > st.max {
		st.max = v
	}
	if st.sketch != nil {
		st.sketch.Add(v)
	}
}

// Count returns the number of values fed.
func (st *Stats) Count() int64 { return st.count }

// Avg returns the arithmetic mean, zero when empty.
func (st *Stats) Avg() float64 {
	if st.count == 0 {
		return 0
	}
	return st.sum / float64(st.count)
}

// Min returns the smallest value fed.
func (st *Stats) Min() float64 { return st.min }

// Max returns the largest value fed.
func (st *Stats) Max() float64 { return st.max }

// Quantile returns the requested percentile. ok is false when empty or
// when the sketch was disabled.
func (st *Stats) Quantile(q float64) (float64, bool) {
	if st.sketch == nil || st.count == 0 {
		return 0, false
	}
	v, err := st.sketch.GetValueAtQuantile(q)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CollectStats runs a collector over every sample of a series.
func CollectStats[T Number](s *TimeSeries[T], accuracy float64) *Stats {
	st := NewStats(accuracy)
	s.Each(func(_ float64, v T) {
		st.Add(float64(v))
	})
	return st
}
