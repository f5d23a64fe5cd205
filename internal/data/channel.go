// Package data defines the typed data channels collected for one system.
//
// A channel is one named container of values: a time series, a discrete
// event log, or a scalar parameter. Channels are the leaves of the registry
// tree; everything else in the core reads and writes them.
package data

import (
	"strings"
	"time"
)

// Number constrains the element types a time series or parameter may hold.
type Number interface {
	~float32 | ~float64 | ~uint32 | ~int32 | ~uint64
}

// Channel is the closed variant set of collected data containers.
// Concrete types: TimeSeries[T], EventLog, Param[T].
type Channel interface {
	// Name is the last segment of the full path.
	Name() string
	SetName(string)

	// FullPath is the slash-delimited location inside the registry.
	FullPath() string
	SetFullPath(string)

	// Units is out-of-band metadata attached at creation, never validated
	// on later appends.
	Units() string

	// Derived marks channels produced by postprocessing rather than
	// ingested from the log.
	Derived() bool
	MarkDerived()

	// EpochStart anchors the channel's relative time axis: microseconds
	// since the Unix epoch at relative time zero.
	EpochStart() uint64
	SetEpochStart(uint64)

	// EpochEnd is the absolute microsecond timestamp of the last datum,
	// zero when the channel is empty or has no time axis.
	EpochEnd() uint64

	Len() int
	Empty() bool

	// Clone returns a deep copy, detached from any registry.
	Clone() Channel

	// Merge folds another channel of the same concrete type into this one.
	Merge(other Channel) error

	// Clear drops all collected values but keeps the metadata.
	Clear()
}

// Timed is implemented by channel variants with a time axis.
type Timed interface {
	Channel

	// BadTimestamps marks series whose source carried unreliable time.
	BadTimestamps() bool
	MarkBadTimestamps()

	// MakePeriodic redistributes the samples evenly over the observed
	// time span, repairing unreliable timestamps in place.
	MakePeriodic()

	// TimeBounds returns the relative time span covered, in seconds.
	TimeBounds() (min, max float64, ok bool)
}

// meta carries the fields shared by all channel variants.
type meta struct {
	name       string
	path       string
	units      string
	derived    bool
	epochStart uint64
}

func newMeta(fullpath, units string) meta {
	fullpath = strings.TrimSpace(fullpath)
	return meta{
		name:  baseName(fullpath),
		path:  fullpath,
		units: units,
	}
}

func (m *meta) Name() string     { return m.name }
func (m *meta) FullPath() string { return m.path }
func (m *meta) Units() string    { return m.units }
func (m *meta) Derived() bool    { return m.derived }
func (m *meta) MarkDerived()     { m.derived = true }

func (m *meta) SetName(name string) {
	m.name = name
	if i := strings.LastIndex(m.path, "/"); i >= 0 {
		m.path = m.path[:i+1] + name
	} else {
		m.path = name
	}
}

func (m *meta) SetFullPath(p string) {
	m.path = strings.TrimSpace(p)
	m.name = baseName(m.path)
}

func (m *meta) EpochStart() uint64      { return m.epochStart }
func (m *meta) SetEpochStart(us uint64) { m.epochStart = us }

// EpochTime converts a relative time on this channel to wall-clock time.
func (m *meta) EpochTime(relSec float64) time.Time {
	us := int64(m.epochStart) + int64(relSec*1e6)
	return time.UnixMicro(us).UTC()
}

func baseName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
