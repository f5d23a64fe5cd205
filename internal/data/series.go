package data

import (
	"sort"

	"github.com/xtxerr/flightlog/internal/errors"
)

// Sample is one (time, value) pair of a series. Time is relative seconds on
// the channel's own axis, anchored by EpochStart.
type Sample[T Number] struct {
	Time  float64
	Value T
}

// TimeSeries holds ordered-by-time samples of one numeric type.
type TimeSeries[T Number] struct {
	meta
	samples []Sample[T]
	min     T
	max     T
	bad     bool
}

// NewSeries creates an empty series at the given full path.
func NewSeries[T Number](fullpath, units string) *TimeSeries[T] {
	return &TimeSeries[T]{meta: newMeta(fullpath, units)}
}

// Append adds one sample. The fast path is in-order arrival; late samples
// are inserted at their time position so the series stays sorted.
func (s *TimeSeries[T]) Append(v T, t float64) {
	if len(s.samples) == 0 || v < s.min {
		s.min = v
	}
	if len(s.samples) == 0 || v > s.max {
		s.max = v
	}
	smp := Sample[T]{Time: t, Value: v}
	n := len(s.samples)
	if n == 0 || t >= s.samples[n-1].Time {
		s.samples = append(s.samples, smp)
		return
	}
	i := sort.Search(n, func(k int) bool { return s.samples[k].Time > t })
	s.samples = append(s.samples, Sample[T]{})
	copy(s.samples[i+1:], s.samples[i:])
	s.samples[i] = smp
}

func (s *TimeSeries[T]) Len() int    { return len(s.samples) }
func (s *TimeSeries[T]) Empty() bool { return len(s.samples) == 0 }

// Get returns the k-th sample in time order.
func (s *TimeSeries[T]) Get(k int) (Sample[T], bool) {
	if k < 0 || k >= len(s.samples) {
		return Sample[T]{}, false
	}
	return s.samples[k], true
}

// Last returns the most recent sample.
func (s *TimeSeries[T]) Last() (Sample[T], bool) {
	if len(s.samples) == 0 {
		return Sample[T]{}, false
	}
	return s.samples[len(s.samples)-1], true
}

// Min returns the smallest value seen so far.
func (s *TimeSeries[T]) Min() T { return s.min }

// Max returns the largest value seen so far.
func (s *TimeSeries[T]) Max() T { return s.max }

// ValueAt returns the sample value nearest to time t.
func (s *TimeSeries[T]) ValueAt(t float64) (T, bool) {
	var zero T
	n := len(s.samples)
	if n == 0 {
		return zero, false
	}
	i := sort.Search(n, func(k int) bool { return s.samples[k].Time >= t })
	switch {
	case i == 0:
		return s.samples[0].Value, true
	case i == n:
		return s.samples[n-1].Value, true
	}
	if t-s.samples[i-1].Time <= s.samples[i].Time-t {
		return s.samples[i-1].Value, true
	}
	return s.samples[i].Value, true
}

// TimeBounds reports the covered relative time span.
func (s *TimeSeries[T]) TimeBounds() (float64, float64, bool) {
	if len(s.samples) == 0 {
		return 0, 0, false
	}
	return s.samples[0].Time, s.samples[len(s.samples)-1].Time, true
}

// EpochEnd is the absolute microsecond timestamp of the last sample.
func (s *TimeSeries[T]) EpochEnd() uint64 {
	if len(s.samples) == 0 {
		return 0
	}
	last := s.samples[len(s.samples)-1].Time
	if last < 0 {
		return s.epochStart
	}
	return s.epochStart + uint64(last*1e6)
}

func (s *TimeSeries[T]) BadTimestamps() bool { return s.bad }
func (s *TimeSeries[T]) MarkBadTimestamps()  { s.bad = true }

// MakePeriodic assumes the samples were produced periodically and rewrites
// their timestamps equidistantly over the observed span. Values and sample
// count are untouched.
func (s *TimeSeries[T]) MakePeriodic() {
	n := len(s.samples)
	if n < 2 {
		s.bad = false
		return
	}
	t0 := s.samples[0].Time
	span := s.samples[n-1].Time - t0
	step := span / float64(n-1)
	for k := range s.samples {
		s.samples[k].Time = t0 + float64(k)*step
	}
	s.bad = false
}

// MovingAverage fills dst with the trailing-window mean of this series.
// dst is cleared first and stamped with this channel's epoch.
func (s *TimeSeries[T]) MovingAverage(dst *TimeSeries[T], windowSec float64) {
	dst.Clear()
	dst.SetEpochStart(s.epochStart)
	var sum float64
	lo := 0
	for k, smp := range s.samples {
		sum += float64(smp.Value)
		for s.samples[lo].Time < smp.Time-windowSec {
			sum -= float64(s.samples[lo].Value)
			lo++
		}
		dst.Append(T(sum/float64(k-lo+1)), smp.Time)
	}
}

// Clear drops all samples but keeps metadata and flags.
func (s *TimeSeries[T]) Clear() {
	s.samples = nil
	var zero T
	s.min, s.max = zero, zero
}

// Clone returns a deep copy.
func (s *TimeSeries[T]) Clone() Channel {
	cp := *s
	cp.samples = make([]Sample[T], len(s.samples))
	copy(cp.samples, s.samples)
	return &cp
}

// Merge interleaves another series of the same element type by timestamp.
// A sample identical in both time and value to one already present is
// dropped, so merging a clone of this series back in is lossless.
func (s *TimeSeries[T]) Merge(other Channel) error {
	o, ok := other.(*TimeSeries[T])
	if !ok {
		return errors.Wrap(errors.ErrTypeMismatch, "merge %q", s.path)
	}
	for _, smp := range o.samples {
		if s.contains(smp) {
			continue
		}
		s.Append(smp.Value, smp.Time)
	}
	if o.bad {
		s.bad = true
	}
	return nil
}

func (s *TimeSeries[T]) contains(smp Sample[T]) bool {
	n := len(s.samples)
	i := sort.Search(n, func(k int) bool { return s.samples[k].Time >= smp.Time })
	for ; i < n && s.samples[i].Time == smp.Time; i++ {
		if s.samples[i].Value == smp.Value {
			return true
		}
	}
	return false
}

// Each calls fn for every sample in time order.
func (s *TimeSeries[T]) Each(fn func(t float64, v T)) {
	for _, smp := range s.samples {
		fn(smp.Time, smp.Value)
	}
}
