package data

import (
	"sort"

	"github.com/xtxerr/flightlog/internal/errors"
)

// Event is one (time, label) entry of an event log.
type Event struct {
	Time  float64
	Label string
}

// EventLog records discrete state transitions. Appending a label equal to
// the latest entry is a no-op: only changes are stored.
type EventLog struct {
	meta
	entries []Event
	bad     bool
}

// NewEvents creates an empty event log at the given full path.
func NewEvents(fullpath, units string) *EventLog {
	return &EventLog{meta: newMeta(fullpath, units)}
}

// Append records label at time t unless it equals the latest entry.
func (e *EventLog) Append(label string, t float64) {
	if n := len(e.entries); n > 0 && e.entries[n-1].Label == label {
		return
	}
	e.entries = append(e.entries, Event{Time: t, Label: label})
}

func (e *EventLog) Len() int    { return len(e.entries) }
func (e *EventLog) Empty() bool { return len(e.entries) == 0 }

// Get returns the k-th entry.
func (e *EventLog) Get(k int) (Event, bool) {
	if k < 0 || k >= len(e.entries) {
		return Event{}, false
	}
	return e.entries[k], true
}

// Latest returns the label of the most recent entry.
func (e *EventLog) Latest() (string, bool) {
	if len(e.entries) == 0 {
		return "", false
	}
	return e.entries[len(e.entries)-1].Label, true
}

// TimeBounds reports the covered relative time span.
func (e *EventLog) TimeBounds() (float64, float64, bool) {
	if len(e.entries) == 0 {
		return 0, 0, false
	}
	return e.entries[0].Time, e.entries[len(e.entries)-1].Time, true
}

// EpochEnd is the absolute microsecond timestamp of the last entry.
func (e *EventLog) EpochEnd() uint64 {
	if len(e.entries) == 0 {
		return 0
	}
	last := e.entries[len(e.entries)-1].Time
	if last < 0 {
		return e.epochStart
	}
	return e.epochStart + uint64(last*1e6)
}

func (e *EventLog) BadTimestamps() bool { return e.bad }
func (e *EventLog) MarkBadTimestamps()  { e.bad = true }

// MakePeriodic redistributes the entries evenly over the observed span.
func (e *EventLog) MakePeriodic() {
	n := len(e.entries)
	if n < 2 {
		e.bad = false
		return
	}
	t0 := e.entries[0].Time
	step := (e.entries[n-1].Time - t0) / float64(n-1)
	for k := range e.entries {
		e.entries[k].Time = t0 + float64(k)*step
	}
	e.bad = false
}

// Clear drops all entries but keeps metadata.
func (e *EventLog) Clear() { e.entries = nil }

// Clone returns a deep copy.
func (e *EventLog) Clone() Channel {
	cp := *e
	cp.entries = make([]Event, len(e.entries))
	copy(cp.entries, e.entries)
	return &cp
}

// Merge appends the other log's entries in time order, keeping only label
// changes. Merging a clone of this log back in changes nothing.
func (e *EventLog) Merge(other Channel) error {
	o, ok := other.(*EventLog)
	if !ok {
		return errors.Wrap(errors.ErrTypeMismatch, "merge %q", e.path)
	}
	merged := make([]Event, 0, len(e.entries)+len(o.entries))
	merged = append(merged, e.entries...)
	merged = append(merged, o.entries...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Time < merged[j].Time })
	e.entries = e.entries[:0]
	for _, ev := range merged {
		if n := len(e.entries); n > 0 && e.entries[n-1].Label == ev.Label {
			continue
		}
		e.entries = append(e.entries, ev)
	}
	return nil
}

// Each calls fn for every entry in time order.
func (e *EventLog) Each(fn func(t float64, label string)) {
	for _, ev := range e.entries {
		fn(ev.Time, ev.Label)
	}
}
