package timesync

import (
	"testing"
	"time"

	"github.com/xtxerr/flightlog/internal/errors"
)

func TestAdvanceAcceptsFirstAndMonotonic(t *testing.T) {
	s := New(5, 100, nil)
	for _, tm := range []float64{10, 11, 12.5} {
		res, err := s.Advance(tm, false)
		if err != nil || res != Accepted {
			t.Fatalf("Advance(%v) = %v, %v", tm, res, err)
		}
	}
	now, ok := s.Now()
	if !ok || now != 12.5 {
		t.Errorf("Now = %v (%v), want 12.5", now, ok)
	}
}

func TestAdvanceJumpClassification(t *testing.T) {
	s := New(5, 100, nil)
	s.Advance(50, false)

	// small regression within tolerance is accepted and becomes current
	if res, err := s.Advance(46, false); err != nil || res != Accepted {
		t.Errorf("small backward = %v, %v", res, err)
	}
	if now, _ := s.Now(); now != 46 {
		t.Errorf("Now = %v after tolerated regression, want 46", now)
	}

	res, err := s.Advance(40, false)
	if res != BackwardJump || !errors.IsRejectedTime(err) {
		t.Errorf("backward jump = %v, %v", res, err)
	}
	res, err = s.Advance(200, false)
	if res != ForwardJump || !errors.IsRejectedTime(err) {
		t.Errorf("forward jump = %v, %v", res, err)
	}

	// clock untouched by rejections
	if now, _ := s.Now(); now != 46 {
		t.Errorf("Now = %v after rejections, want 46", now)
	}

	// replays across reboots may jump when allowed
	if res, err := s.Advance(200, true); err != nil || res != Accepted {
		t.Errorf("allowed jump = %v, %v", res, err)
	}
	if now, _ := s.Now(); now != 200 {
		t.Errorf("Now = %v after allowed jump, want 200", now)
	}
}

func TestAdvanceBoundsTrackMin(t *testing.T) {
	s := New(5, 100, nil)
	s.Advance(10, false)
	s.Advance(7, false) // within backward tolerance
	min, max, ok := s.Bounds()
	if !ok || min != 7 || max != 10 {
		t.Errorf("Bounds = %v..%v (%v)", min, max, ok)
	}
	// jump checks compare against the regressed time, not the maximum
	if res, err := s.Advance(3, false); err != nil || res != Accepted {
		t.Errorf("Advance(3) after regression to 7 = %v, %v", res, err)
	}
}

func TestResolveOffsetMeanOfReferences(t *testing.T) {
	s := New(0, 0, nil)
	base := 1_700_000_000.0
	s.RecordReference(10, time.Unix(int64(base)+10, 0))
	s.RecordReference(20, time.Unix(int64(base)+20, 0))

	got, err := s.ResolveOffset()
	if err != nil {
		t.Fatalf("ResolveOffset: %v", err)
	}
	if got.UnixMicro() != 1_700_000_000_000_000 {
		t.Errorf("offset = %d usec, want 1700000000000000", got.UnixMicro())
	}
}

func TestResolveOffsetFallsBackToGuess(t *testing.T) {
	s := New(0, 0, nil)
	if _, err := s.ResolveOffset(); err == nil {
		t.Error("resolve without input should fail")
	}

	s2 := New(0, 0, nil)
	guess := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	s2.SetGuess(guess)
	got, err := s2.ResolveOffset()
	if err != nil || !got.Equal(guess) {
		t.Errorf("guess fallback = %v, %v", got, err)
	}
}

func TestRecordReferenceRejectsRelativeStamps(t *testing.T) {
	s := New(0, 0, nil)
	s.RecordReference(10, time.Unix(3600, 0)) // 1970: a boot-relative stamp
	if s.References() != 0 {
		t.Errorf("relative reference accepted, refs = %d", s.References())
	}
}

func TestShiftMovesOffset(t *testing.T) {
	s := New(0, 0, nil)
	s.RecordReference(0, time.Unix(1_700_000_000, 0))
	if _, err := s.ResolveOffset(); err != nil {
		t.Fatal(err)
	}
	s.Shift(10 * time.Second)
	got, _ := s.ResolveOffset()
	if got.Unix() != 1_700_000_010 {
		t.Errorf("shifted offset = %v", got.Unix())
	}
}

func TestEpochAt(t *testing.T) {
	s := New(0, 0, nil)
	s.RecordReference(0, time.Unix(1_700_000_000, 0))
	got, err := s.EpochAt(2.5)
	if err != nil {
		t.Fatal(err)
	}
	want := time.UnixMicro(1_700_000_002_500_000).UTC()
	if !got.Equal(want) {
		t.Errorf("EpochAt(2.5) = %v, want %v", got, want)
	}
}

func TestIsAbsolute(t *testing.T) {
	if IsAbsolute(time.Unix(0, 0)) {
		t.Error("1970 must not count as absolute")
	}
	if !IsAbsolute(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("2024 must count as absolute")
	}
}
