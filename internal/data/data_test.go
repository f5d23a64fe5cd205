package data

import (
	"math"
	"testing"
)

func TestSeriesAppendAndBounds(t *testing.T) {
	s := NewSeries[float64]("flight/altitude", "m")
	for _, v := range []struct{ val, tm float64 }{
		{10, 1}, {30, 2}, {20, 3},
	} {
		s.Append(v.val, v.tm)
	}

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	if s.Min() != 10 || s.Max() != 30 {
		t.Errorf("min/max = %v/%v, want 10/30", s.Min(), s.Max())
	}
	lo, hi, ok := s.TimeBounds()
	if !ok || lo != 1 || hi != 3 {
		t.Errorf("TimeBounds = %v..%v (%v), want 1..3", lo, hi, ok)
	}
	if s.Name() != "altitude" {
		t.Errorf("Name = %q, want altitude", s.Name())
	}
	if s.FullPath() != "flight/altitude" {
		t.Errorf("FullPath = %q", s.FullPath())
	}
}

func TestSeriesOutOfOrderAppend(t *testing.T) {
	s := NewSeries[float64]("x", "")
	s.Append(1, 1)
	s.Append(3, 3)
	s.Append(2, 2) // late sample must land in order
	want := []float64{1, 2, 3}
	for i, w := range want {
		smp, ok := s.Get(i)
		if !ok || smp.Time != w {
			t.Errorf("sample %d time = %v, want %v", i, smp.Time, w)
		}
	}
}

func TestSeriesValueAtNearest(t *testing.T) {
	s := NewSeries[float64]("x", "")
	s.Append(1, 10)
	s.Append(2, 20)
	s.Append(3, 30)

	cases := []struct {
		at   float64
		want float64
	}{
		{5, 1},  // before first
		{10, 1}, // exact
		{14, 1}, // nearer left
		{16, 2}, // nearer right
		{35, 3}, // after last
	}
	for _, c := range cases {
		got, ok := s.ValueAt(c.at)
		if !ok || got != c.want {
			t.Errorf("ValueAt(%v) = %v (%v), want %v", c.at, got, ok, c.want)
		}
	}

	empty := NewSeries[float64]("y", "")
	if _, ok := empty.ValueAt(1); ok {
		t.Error("ValueAt on empty series should report not-ok")
	}
}

func TestSeriesMinMaxAfterClear(t *testing.T) {
	s := NewSeries[float64]("x", "")
	s.Append(100, 1)
	s.Clear()
	s.Append(-5, 2)
	if s.Min() != -5 || s.Max() != -5 {
		t.Errorf("min/max after clear = %v/%v, want -5/-5", s.Min(), s.Max())
	}
}

func TestSeriesMakePeriodic(t *testing.T) {
	s := NewSeries[float64]("x", "")
	s.Append(0, 0)
	s.Append(1, 0) // duplicate timestamps from a broken clock
	s.Append(2, 0)
	s.Append(3, 9)
	s.MarkBadTimestamps()

	s.MakePeriodic()
	if s.BadTimestamps() {
		t.Error("bad-timestamp flag should clear after MakePeriodic")
	}
	for i := 0; i < s.Len(); i++ {
		smp, _ := s.Get(i)
		want := float64(i) * 3 // (9-0)/(4-1)
		if math.Abs(smp.Time-want) > 1e-9 {
			t.Errorf("sample %d time = %v, want %v", i, smp.Time, want)
		}
	}
}

func TestSeriesMovingAverage(t *testing.T) {
	s := NewSeries[float64]("x", "")
	for i := 0; i < 5; i++ {
		s.Append(float64(i), float64(i))
	}
	dst := NewSeries[float64]("x_avg", "")
	s.MovingAverage(dst, 2.0)
	if dst.Len() != s.Len() {
		t.Fatalf("avg len = %d, want %d", dst.Len(), s.Len())
	}
	// at t=4 the trailing 2s window holds the samples at t=2,3,4 -> mean 3
	got, _ := dst.ValueAt(4)
	if math.Abs(got-3) > 1e-9 {
		t.Errorf("avg at t=4 = %v, want 3", got)
	}
}

func TestSeriesMergeDropsExactDuplicates(t *testing.T) {
	a := NewSeries[float64]("x", "")
	a.Append(1, 1)
	a.Append(2, 2)

	b := NewSeries[float64]("x", "")
	b.Append(2, 2)  // exact duplicate
	b.Append(99, 2) // same time, different value: keep
	b.Append(3, 3)

	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if a.Len() != 4 {
		t.Errorf("merged len = %d, want 4", a.Len())
	}

	// self-merge must be lossless
	c := a.Clone()
	if err := a.Merge(c); err != nil {
		t.Fatalf("self-merge: %v", err)
	}
	if a.Len() != 4 {
		t.Errorf("self-merged len = %d, want 4", a.Len())
	}
}

func TestSeriesMergeTypeMismatch(t *testing.T) {
	a := NewSeries[float64]("x", "")
	b := NewSeries[uint32]("x", "")
	b.Append(1, 1)
	if err := a.Merge(b); err == nil {
		t.Error("merging differing sample types should fail")
	}
}

func TestSeriesEpochEnd(t *testing.T) {
	s := NewSeries[float64]("x", "")
	s.SetEpochStart(1_000_000)
	s.Append(1, 2.5)
	if got := s.EpochEnd(); got != 3_500_000 {
		t.Errorf("EpochEnd = %d, want 3500000", got)
	}
}

func TestEventLogChangeOnlyAppend(t *testing.T) {
	e := NewEvents("state/flightstate", "")
	e.Append("on_ground", 1)
	e.Append("on_ground", 2) // unchanged: dropped
	e.Append("flying", 3)
	e.Append("on_ground", 4)

	if e.Len() != 3 {
		t.Fatalf("Len = %d, want 3", e.Len())
	}
	label, ok := e.Latest()
	if !ok || label != "on_ground" {
		t.Errorf("Latest = %q (%v)", label, ok)
	}
	last, _ := e.Get(2)
	if last.Time != 4 {
		t.Errorf("last entry time = %v, want 4", last.Time)
	}
}

func TestEventLogMergeIdempotent(t *testing.T) {
	a := NewEvents("x", "")
	a.Append("a", 1)
	a.Append("b", 3)

	b := NewEvents("x", "")
	b.Append("mid", 2)

	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if a.Len() != 3 {
		t.Fatalf("merged len = %d, want 3", a.Len())
	}
	got, _ := a.Get(1)
	if got.Label != "mid" {
		t.Errorf("entry 1 = %+v, want mid", got)
	}

	c := a.Clone()
	if err := a.Merge(c); err != nil {
		t.Fatalf("self-merge: %v", err)
	}
	if a.Len() != 3 {
		t.Errorf("self-merged len = %d, want 3", a.Len())
	}
}

func TestParamLastWriteWins(t *testing.T) {
	p := NewParam[float64]("params/RATE_P", "")
	if _, ok := p.Value(); ok {
		t.Error("unset param should report not-ok")
	}
	p.Set(1.5)
	p.Set(2.5)
	v, ok := p.Value()
	if !ok || v != 2.5 {
		t.Errorf("Value = %v (%v), want 2.5", v, ok)
	}
	if p.Len() != 1 {
		t.Errorf("Len = %d, want 1", p.Len())
	}

	q := NewParam[float64]("params/RATE_P", "")
	q.Set(9)
	if err := p.Merge(q); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if v, _ := p.Value(); v != 9 {
		t.Errorf("merged value = %v, want 9", v)
	}

	empty := NewParam[float64]("params/RATE_P", "")
	if err := p.Merge(empty); err != nil {
		t.Fatalf("Merge empty: %v", err)
	}
	if v, _ := p.Value(); v != 9 {
		t.Errorf("merge of unset param must not clobber, got %v", v)
	}
}

func TestSetNameRewritesPath(t *testing.T) {
	s := NewSeries[float64]("a/b/c", "")
	s.SetName("c_orig")
	if s.FullPath() != "a/b/c_orig" {
		t.Errorf("FullPath = %q, want a/b/c_orig", s.FullPath())
	}
	if s.Name() != "c_orig" {
		t.Errorf("Name = %q", s.Name())
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewSeries[float64]("x", "")
	s.Append(1, 1)
	c := s.Clone().(*TimeSeries[float64])
	c.Append(2, 2)
	if s.Len() != 1 {
		t.Errorf("clone append leaked into original, len = %d", s.Len())
	}
}
