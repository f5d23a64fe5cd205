// Package timesync reconciles the relative timebase of a log stream with
// absolute wall-clock time.
//
// Telemetry arrives stamped with boot-relative seconds. A synchronizer
// tracks the furthest point reached, rejects implausible jumps, collects
// (relative, absolute) reference pairs whenever the stream carries both,
// and resolves a single epoch offset from them.
package timesync

import (
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/xtxerr/flightlog/config"
	"github.com/xtxerr/flightlog/internal/errors"
	"github.com/xtxerr/flightlog/internal/logging"
)

// Result classifies one Advance call.
type Result int

const (
	Accepted Result = iota
	BackwardJump
	ForwardJump
)

func (r Result) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case BackwardJump:
		return "backward-jump"
	case ForwardJump:
		return "forward-jump"
	default:
		return "unknown"
	}
}

// Synchronizer tracks one vehicle's relative clock.
type Synchronizer struct {
	maxBack    float64
	maxForward float64

	cur   float64
	min   float64
	max   float64
	valid bool

	guess    time.Time
	resolved time.Time
	haveRes  bool

	// microsecond offsets (absolute - relative) from reference pairs
	refs []float64

	log *slog.Logger
}

// New creates a synchronizer with the given jump tolerances in seconds.
// Non-positive tolerances fall back to the defaults.
func New(maxBackSec, maxForwardSec float64, log *slog.Logger) *Synchronizer {
	if maxBackSec <= 0 {
		maxBackSec = config.DefaultMaxBackJumpSec
	}
	if maxForwardSec <= 0 {
		maxForwardSec = config.DefaultMaxForwardJumpSec
	}
	if log == nil {
		log = logging.Component("timesync")
	}
	return &Synchronizer{maxBack: maxBackSec, maxForward: maxForwardSec, log: log}
}

// Advance feeds the next relative timestamp. The first timestamp is always
// accepted and seeds the clock. Later ones are rejected when they fall more
// than the backward tolerance behind the last accepted time, or more than
// the forward tolerance ahead of it, unless allowJumps is set (log replays
// across reboots legitimately jump). Every accepted timestamp becomes the
// current time, a tolerated regression included. Rejections return a typed
// error so callers can quarantine the sample without losing the clock.
func (s *Synchronizer) Advance(t float64, allowJumps bool) (Result, error) {
	if !s.valid {
		s.cur, s.min, s.max, s.valid = t, t, t, true
		return Accepted, nil
	}
	if !allowJumps {
		if t < s.cur-s.maxBack {
			return BackwardJump, errors.Wrap(errors.ErrBackwardJump, "t=%.3f cur=%.3f", t, s.cur)
		}
		if t > s.cur+s.maxForward {
			return ForwardJump, errors.Wrap(errors.ErrForwardJump, "t=%.3f cur=%.3f", t, s.cur)
		}
	}
	s.cur = t
	if t > s.max {
		s.max = t
	}
	if t < s.min {
		s.min = t
	}
	return Accepted, nil
}

// Now returns the last accepted relative time.
func (s *Synchronizer) Now() (float64, bool) { return s.cur, s.valid }

// Bounds returns the relative time span observed so far.
func (s *Synchronizer) Bounds() (min, max float64, ok bool) {
	return s.min, s.max, s.valid
}

// Valid reports whether at least one timestamp was accepted.
func (s *Synchronizer) Valid() bool { return s.valid }

// RecordReference notes that relative time rel corresponds to the absolute
// instant abs. References that are not plausibly absolute are ignored.
func (s *Synchronizer) RecordReference(rel float64, abs time.Time) {
	if !IsAbsolute(abs) {
		return
	}
	s.Advance(rel, false) // a reference also moves the clock
	off := float64(abs.UnixMicro()) - rel*1e6
	s.refs = append(s.refs, off)
}

// References returns the number of reference pairs collected.
func (s *Synchronizer) References() int { return len(s.refs) }

// SetGuess supplies a fallback epoch, typically parsed from the log file
// name. Used only when the stream itself carried no absolute time.
func (s *Synchronizer) SetGuess(t time.Time) { s.guess = t }

// Guess returns the fallback epoch, zero if none was set.
func (s *Synchronizer) Guess() time.Time { return s.guess }

// ResolveOffset computes the epoch of relative time zero. With reference
// pairs it is their mean offset, rounded to whole microseconds; without
// any it falls back to the guess. The result is cached.
func (s *Synchronizer) ResolveOffset() (time.Time, error) {
	if s.haveRes {
		return s.resolved, nil
	}
	if len(s.refs) == 0 {
		if s.guess.IsZero() {
			return time.Time{}, errors.Wrap(errors.ErrMissingInput, "no time references")
		}
		s.resolved = s.guess
		s.haveRes = true
		s.log.Debug("time offset from filename guess", "epoch", s.resolved)
		return s.resolved, nil
	}
	usec := int64(math.Round(stat.Mean(s.refs, nil)))
	s.resolved = time.UnixMicro(usec).UTC()
	s.haveRes = true
	s.log.Debug("time offset resolved",
		"epoch", s.resolved, "references", len(s.refs))
	return s.resolved, nil
}

// Resolved reports whether an offset has been computed already.
func (s *Synchronizer) Resolved() bool { return s.haveRes }

// Shift moves the resolved offset and the guess by delta. Used when a
// whole scenario is re-based onto another clock.
func (s *Synchronizer) Shift(delta time.Duration) {
	if s.haveRes {
		s.resolved = s.resolved.Add(delta)
	}
	if !s.guess.IsZero() {
		s.guess = s.guess.Add(delta)
	}
	for i := range s.refs {
		s.refs[i] += float64(delta.Microseconds())
	}
}

// Clone returns an independent copy of the synchronizer state.
func (s *Synchronizer) Clone() *Synchronizer {
	cp := *s
	cp.refs = append([]float64(nil), s.refs...)
	return &cp
}

// Absorb takes over another synchronizer's reference pairs and, when this
// one has none, its guess. The cached offset is discarded so the next
// ResolveOffset sees the combined references. Used when merging systems.
func (s *Synchronizer) Absorb(o *Synchronizer) {
	if o == nil {
		return
	}
	s.refs = append(s.refs, o.refs...)
	if s.guess.IsZero() {
		s.guess = o.guess
	}
	s.haveRes = false
}

// EpochAt maps a relative timestamp to absolute time. Fails until the
// offset can be resolved.
func (s *Synchronizer) EpochAt(rel float64) (time.Time, error) {
	base, err := s.ResolveOffset()
	if err != nil {
		return time.Time{}, err
	}
	return base.Add(time.Duration(rel * float64(time.Second))), nil
}

// IsAbsolute reports whether t looks like real wall-clock time rather
// than a boot-relative stamp. Anything before the cutoff year is treated
// as relative.
func IsAbsolute(t time.Time) bool {
	return t.Year() > config.AbsoluteTimeYear
}
