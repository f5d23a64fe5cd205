package system

import (
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/xtxerr/flightlog/internal/registry"
)

func advanceTo(t *testing.T, s *System, usec uint64) {
	t.Helper()
	if _, err := s.Advance(usec, false); err != nil {
		t.Fatalf("Advance(%d): %v", usec, err)
	}
}

func TestTrackAttitudeConvertsToDegrees(t *testing.T) {
	s := New(1, nil)
	advanceTo(t, s, 1_000_000)
	s.TrackAttitude(math.Pi/2, -math.Pi/4, 0, 0, 0, 0)

	roll := s.f64(PathRoll)
	if roll == nil || roll.Len() != 1 {
		t.Fatal("roll series missing")
	}
	smp, _ := roll.Last()
	if math.Abs(smp.Value-90) > 1e-9 || smp.Time != 1 {
		t.Errorf("roll sample = %+v, want 90 deg at t=1", smp)
	}
	pitch := s.f64(PathPitch)
	p, _ := pitch.Last()
	if math.Abs(p.Value+45) > 1e-9 {
		t.Errorf("pitch = %v, want -45", p.Value)
	}
}

func TestToleratedRegressionStampsAtCandidateTime(t *testing.T) {
	s := New(1, nil)
	advanceTo(t, s, 50_000_000)
	advanceTo(t, s, 47_000_000) // within the backward tolerance
	s.TrackBattery(12, 1, 90)

	v := s.f64(PathVoltage)
	if v == nil || v.Len() != 1 {
		t.Fatal("voltage series missing")
	}
	smp, _ := v.Last()
	if smp.Time != 47 {
		t.Errorf("sample appended at t=%v, want 47", smp.Time)
	}
}

func TestHeadingAbove360Skipped(t *testing.T) {
	s := New(1, nil)
	advanceTo(t, s, 0)
	s.TrackPosition(10, 20, 100, 50, 400)
	if _, ok := s.reg.Find(PathHeading); ok {
		t.Error("heading > 360 must not create a sample")
	}
	s.TrackPosition(10, 20, 100, 50, 180)
	if ch, ok := s.reg.Find(PathHeading); !ok || ch.Len() != 1 {
		t.Error("valid heading not recorded")
	}
}

func TestSystemPerformanceSkipsAbsentSensors(t *testing.T) {
	s := New(1, nil)
	advanceTo(t, s, 0)
	s.TrackSystemPerformance(42, 0, -1)
	if _, ok := s.reg.Find(PathBoardVoltage); ok {
		t.Error("zero board voltage should be skipped")
	}
	if _, ok := s.reg.Find(PathBoardCurrent); ok {
		t.Error("negative board current should be skipped")
	}
	if ch, ok := s.reg.Find(PathCPULoad); !ok || ch.Len() != 1 {
		t.Error("load must always be recorded")
	}
}

func TestHeartbeatClassificationIsSticky(t *testing.T) {
	s := New(1, nil)
	advanceTo(t, s, 0)
	s.TrackHeartbeat("quadrotor", "ardupilot", Mode{}, "standby")
	s.TrackHeartbeat("fixed wing", "px4", Mode{Armed: true}, "active")

	if s.Vehicle() != "quadrotor" || s.Autopilot() != "ardupilot" {
		t.Errorf("classification changed: %s/%s", s.Vehicle(), s.Autopilot())
	}
	if !s.EverArmed() {
		t.Error("ever-armed flag not set")
	}

	// disarm later: events recorded, flag stays
	s.TrackHeartbeat("", "", Mode{}, "standby")
	if !s.EverArmed() {
		t.Error("ever-armed flag must be monotone")
	}
	armed, _ := s.reg.Find(PathStateArmed)
	if armed.Len() != 3 { // disarmed, armed, disarmed
		t.Errorf("armed transitions = %d, want 3", armed.Len())
	}
}

func TestTrackLinkThroughput(t *testing.T) {
	s := New(1, nil)
	advanceTo(t, s, 0)
	s.TrackLink(100, 0, Interpreted)
	advanceTo(t, s, 2_000_000)
	s.TrackLink(156, 1, Uninterpreted)

	tp := s.f64(PathThroughput)
	if tp == nil || tp.Len() != 2 {
		t.Fatal("throughput samples missing")
	}
	// each time-having message flushes the accumulator over 128
	first, _ := tp.Get(0)
	if math.Abs(first.Value-100.0/128) > 1e-9 || first.Time != 0 {
		t.Errorf("first sample = %+v, want 100/128 at t=0", first)
	}
	smp, _ := tp.Last()
	if math.Abs(smp.Value-156.0/128) > 1e-9 || smp.Time != 2 {
		t.Errorf("second sample = %+v, want 156/128 at t=2", smp)
	}

	l := s.Link()
	if l.Received != 2 || l.Interpreted != 1 || l.Uninterpreted != 1 {
		t.Errorf("counters = %+v", l)
	}
	if l.BytesTotal != 256 || l.InterpretedIDs != 1 || l.UninterpretedIDs != 1 {
		t.Errorf("bytes/ids = %+v", l)
	}
}

func TestTrackLinkBeforeTimeAccumulates(t *testing.T) {
	s := New(1, nil)
	s.TrackLink(500, 0, Errored) // no clock yet
	if _, ok := s.reg.Find(PathThroughput); ok {
		t.Error("throughput emitted without a valid time")
	}
	if s.Link().Errored != 1 {
		t.Error("error counter not bumped")
	}

	// accumulated bytes flush with the first time-having message
	advanceTo(t, s, 0)
	s.TrackLink(12, 1, Interpreted)
	tp := s.f64(PathThroughput)
	if tp == nil || tp.Len() != 1 {
		t.Fatal("throughput sample missing after clock became valid")
	}
	smp, _ := tp.Last()
	if math.Abs(smp.Value-512.0/128) > 1e-9 {
		t.Errorf("flushed sample = %v, want 4", smp.Value)
	}
}

func TestResolveTimeStampsChannels(t *testing.T) {
	s := New(1, nil)
	advanceTo(t, s, 0)
	s.TrackBattery(12, 1, 90)
	s.RecordTimeReference(0, 1_700_000_000_000_000)
	if err := s.ResolveTime(); err != nil {
		t.Fatalf("ResolveTime: %v", err)
	}
	ch, _ := s.reg.Find(PathVoltage)
	if ch.EpochStart() != 1_700_000_000_000_000 {
		t.Errorf("epoch = %d", ch.EpochStart())
	}
}

type countingPP struct{ runs int }

func (c *countingPP) Process(_ *registry.Registry, _ *slog.Logger) error {
	c.runs++
	return nil
}

func TestMergeFrom(t *testing.T) {
	a := New(1, nil)
	pp := &countingPP{}
	a.SetPostprocessor(pp)
	advanceTo(t, a, 0)
	a.TrackBattery(12, 1, 90)
	a.RecordTimeReference(0, 1_700_000_000_000_000)

	b := New(1, nil)
	advanceTo(t, b, 0)
	b.TrackAttitude(0.1, 0.1, 0, 0, 0, 0)
	b.TrackHeartbeat("quadrotor", "px4", Mode{Armed: true}, "active")
	b.TrackLink(100, 7, Interpreted)

	if err := a.MergeFrom(b); err != nil {
		t.Fatalf("MergeFrom: %v", err)
	}
	if _, ok := a.reg.Find(PathRoll); !ok {
		t.Error("merged channel missing")
	}
	if pp.runs != 1 {
		t.Errorf("postprocess runs = %d, want 1", pp.runs)
	}
	if !a.EverArmed() || a.Vehicle() != "quadrotor" {
		t.Error("classification/armed not absorbed")
	}
	if a.Link().Received != 1 {
		t.Errorf("link stats not absorbed: %+v", a.Link())
	}
}

func TestMergeFromCloneIsIdempotent(t *testing.T) {
	a := New(1, nil)
	advanceTo(t, a, 0)
	a.TrackBattery(12, 1, 90)
	a.TrackHeartbeat("quadrotor", "", Mode{}, "standby")
	a.RecordTimeReference(0, 1_700_000_000_000_000)

	voltBefore := mustLen(t, a.reg, PathVoltage)
	armedBefore := mustLen(t, a.reg, PathStateArmed)

	if err := a.MergeFrom(a.Clone()); err != nil {
		t.Fatalf("MergeFrom: %v", err)
	}
	if got := mustLen(t, a.reg, PathVoltage); got != voltBefore {
		t.Errorf("voltage len %d -> %d after self-merge", voltBefore, got)
	}
	if got := mustLen(t, a.reg, PathStateArmed); got != armedBefore {
		t.Errorf("armed len %d -> %d after self-merge", armedBefore, got)
	}
}

func mustLen(t *testing.T, r *registry.Registry, path string) int {
	t.Helper()
	ch, ok := r.Find(path)
	if !ok {
		t.Fatalf("channel %q missing", path)
	}
	return ch.Len()
}

func TestCloneIsDeep(t *testing.T) {
	a := New(3, nil)
	advanceTo(t, a, 0)
	a.TrackBattery(12, 1, 90)

	c := a.Clone()
	if c.ID() != 3 {
		t.Errorf("clone id = %d", c.ID())
	}
	advanceTo(t, c, 1_000_000)
	c.TrackBattery(11, 1, 85)
	if mustLen(t, a.reg, PathVoltage) != 1 {
		t.Error("clone write leaked into original")
	}
	if mustLen(t, c.reg, PathVoltage) != 2 {
		t.Error("clone did not keep copied samples")
	}
}

func TestSummarySections(t *testing.T) {
	s := New(1, nil)
	advanceTo(t, s, 0)
	s.TrackBattery(12.6, 2, 95)
	s.TrackPosition(48.1, 11.5, 520, 10, 90)
	s.TrackLink(100, 0, Interpreted)

	out := s.Summary()
	for _, want := range []string{"General", "Power", "Last position", "Link"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q section:\n%s", want, out)
		}
	}

	s.SetDeferred(true)
	out = s.Summary()
	if strings.Contains(out, "Power") {
		t.Error("deferred summary must omit channel sections")
	}
	if !strings.Contains(out, "Link") {
		t.Error("deferred summary must keep the Link section")
	}
}

func TestGenericTracking(t *testing.T) {
	s := New(1, nil)
	advanceTo(t, s, 0)
	TrackSeries[uint32](s, "onboard/NKF1/seq", "", 7)
	s.TrackEvent("onboard/MSG", "hello")

	if ch, ok := s.reg.Find("onboard/NKF1/seq"); !ok || ch.Len() != 1 {
		t.Error("generic series missing")
	}
	if ch, ok := s.reg.Find("onboard/MSG"); !ok || ch.Len() != 1 {
		t.Error("generic event missing")
	}

	// same path, different type: dropped with a warning
	TrackSeries[float64](s, "onboard/NKF1/seq", "", 1.5)
	ch, _ := s.reg.Find("onboard/NKF1/seq")
	if ch.Len() != 1 {
		t.Error("type clash write must be dropped")
	}
}
