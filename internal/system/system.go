// Package system models one tracked vehicle or ground station.
//
// A System owns the data registry for its id, the clock synchronizer, the
// protocol-traffic counters and the classification state. The protocol
// decoder drives it message by message: one clock advance, zero or one
// absolute time reference, one ingestion call, one traffic-accounting
// call. Ingestion is logically single-threaded per system; callers
// serialize externally.
package system

import (
	"log/slog"
	"time"

	"github.com/xtxerr/flightlog/config"
	"github.com/xtxerr/flightlog/internal/data"
	"github.com/xtxerr/flightlog/internal/logging"
	"github.com/xtxerr/flightlog/internal/registry"
	"github.com/xtxerr/flightlog/internal/timesync"
)

// Postprocessor recomputes derived channels over a registry. Implemented
// by the postprocessing pipeline; held as an interface so merges can
// trigger a re-run without this package depending on the passes.
type Postprocessor interface {
	Process(reg *registry.Registry, log *slog.Logger) error
}

// System is the per-vehicle telemetry model.
type System struct {
	id  uint8
	cfg *config.Config
	log *slog.Logger

	reg   *registry.Registry
	clock *timesync.Synchronizer
	pp    Postprocessor

	vehicle   string
	autopilot string
	everArmed bool

	// deferred systems carry metadata and traffic stats only
	deferred bool

	link linkStats
}

// New creates a system with the given id. A nil cfg uses the defaults.
func New(id uint8, cfg *config.Config) *System {
	if cfg == nil {
		cfg = config.Default()
	}
	log := logging.System(id)
	return &System{
		id:    id,
		cfg:   cfg,
		log:   log,
		reg:   registry.New(log.With("component", "registry")),
		clock: timesync.New(cfg.Time.MaxBackJumpSec, cfg.Time.MaxForwardJumpSec, log),
		link:  newLinkStats(),
	}
}

// ID returns the numeric system id from the telemetry stream.
func (s *System) ID() uint8 { return s.id }

// Registry exposes the channel tree for read-only traversal.
func (s *System) Registry() *registry.Registry { return s.reg }

// Clock exposes the time synchronizer.
func (s *System) Clock() *timesync.Synchronizer { return s.clock }

// Log returns the system-tagged logger.
func (s *System) Log() *slog.Logger { return s.log }

// SetPostprocessor installs the pipeline re-run after merges.
func (s *System) SetPostprocessor(pp Postprocessor) { s.pp = pp }

// Vehicle returns the classified vehicle type, empty until known.
func (s *System) Vehicle() string { return s.vehicle }

// Autopilot returns the classified autopilot type, empty until known.
func (s *System) Autopilot() string { return s.autopilot }

// EverArmed reports whether the system was seen armed at least once.
func (s *System) EverArmed() bool { return s.everArmed }

// SetDeferred marks the system as loaded metadata-only.
func (s *System) SetDeferred(v bool) { s.deferred = v }

// Deferred reports metadata-only mode.
func (s *System) Deferred() bool { return s.deferred }

// Advance feeds the next relative timestamp in microseconds. Rejections
// are logged and reported back so the caller can skip the message body.
func (s *System) Advance(relUsec uint64, allowJumps bool) (timesync.Result, error) {
	res, err := s.clock.Advance(float64(relUsec)/1e6, allowJumps)
	if err != nil {
		s.log.Warn("timestamp rejected", "outcome", res.String(), "t_usec", relUsec)
	}
	return res, err
}

// RecordTimeReference notes an in-stream absolute timestamp for the given
// relative time, both in microseconds.
func (s *System) RecordTimeReference(relUsec, absEpochUsec uint64) {
	s.clock.RecordReference(float64(relUsec)/1e6, time.UnixMicro(int64(absEpochUsec)).UTC())
}

// rel returns the current logical time in seconds, zero before the first
// accepted timestamp.
func (s *System) rel() float64 {
	t, ok := s.clock.Now()
	if !ok {
		return 0
	}
	return t
}

// ResolveTime computes the absolute epoch of relative time zero and stamps
// it onto every channel, anchoring the whole registry to one timeline.
func (s *System) ResolveTime() error {
	epoch, err := s.clock.ResolveOffset()
	if err != nil {
		s.log.Warn("no absolute time reference in stream", "error", err)
		return err
	}
	us := uint64(epoch.UnixMicro())
	s.reg.Each(func(_ string, ch data.Channel) {
		ch.SetEpochStart(us)
	})
	s.log.Debug("registry anchored", "epoch", epoch)
	return nil
}

// MergeFrom folds another system's channels into this one. Individual
// channel conflicts are logged and skipped; the pass always completes.
// When anything was added or merged, the derived channels are recomputed
// and the time offset re-resolved against the combined references.
func (s *System) MergeFrom(other *System) error {
	if other == nil || other == s {
		return nil
	}
	added := 0
	other.reg.Each(func(path string, ch data.Channel) {
		ok, err := s.reg.InsertOrMerge(ch)
		if err != nil {
			s.log.Warn("channel merge failed", "path", path, "error", err)
			return
		}
		if ok {
			added++
		}
	})

	if other.everArmed {
		s.everArmed = true
	}
	if s.vehicle == "" {
		s.vehicle = other.vehicle
	}
	if s.autopilot == "" {
		s.autopilot = other.autopilot
	}
	s.link.absorb(&other.link)
	s.clock.Absorb(other.clock)

	if added > 0 {
		s.Postprocess()
		if err := s.ResolveTime(); err == nil {
			s.log.Info("merge complete", "channels", added)
		}
	}
	return nil
}

// Postprocess recomputes all derived channels if a pipeline is installed.
func (s *System) Postprocess() {
	if s.pp == nil {
		return
	}
	if err := s.pp.Process(s.reg, s.log); err != nil {
		s.log.Warn("postprocessing", "error", err)
	}
}

// Clone returns a deep copy: every channel cloned and re-registered,
// tree rebuilt, counters and clock state copied.
func (s *System) Clone() *System {
	cp := New(s.id, s.cfg)
	cp.vehicle = s.vehicle
	cp.autopilot = s.autopilot
	cp.everArmed = s.everArmed
	cp.deferred = s.deferred
	cp.clock = s.clock.Clone()
	cp.link = s.link.clone()
	cp.pp = s.pp
	s.reg.Each(func(path string, ch data.Channel) {
		cp.reg.Register(path, ch.Clone())
	})
	return cp
}

// Teardown drops every channel and resets the tree.
func (s *System) Teardown() {
	s.reg.Clear()
}
