package system

import (
	"github.com/xtxerr/flightlog/internal/data"
)

// seriesAt resolves the series at path, creating it on first use. A path
// already occupied by a different channel shape is a decoder bug; it is
// logged and the write dropped.
func seriesAt[T data.Number](s *System, path, units string) *data.TimeSeries[T] {
	if ch, ok := s.reg.Find(path); ok {
		ts, ok := ch.(*data.TimeSeries[T])
		if !ok {
			s.log.Warn("channel type clash", "path", path)
			return nil
		}
		return ts
	}
	ts := data.NewSeries[T](path, units)
	s.reg.Register(path, ts)
	return ts
}

// eventsAt resolves the event log at path, creating it on first use.
func eventsAt(s *System, path, units string) *data.EventLog {
	if ch, ok := s.reg.Find(path); ok {
		ev, ok := ch.(*data.EventLog)
		if !ok {
			s.log.Warn("channel type clash", "path", path)
			return nil
		}
		return ev
	}
	ev := data.NewEvents(path, units)
	s.reg.Register(path, ev)
	return ev
}

// paramAt resolves the parameter at path, creating it on first use.
func paramAt[T data.Number](s *System, path, units string) *data.Param[T] {
	if ch, ok := s.reg.Find(path); ok {
		p, ok := ch.(*data.Param[T])
		if !ok {
			s.log.Warn("channel type clash", "path", path)
			return nil
		}
		return p
	}
	p := data.NewParam[T](path, units)
	s.reg.Register(path, p)
	return p
}

// track appends one sample at the current logical time.
func track[T data.Number](s *System, path, units string, v T) {
	if ts := seriesAt[T](s, path, units); ts != nil {
		ts.Append(v, s.rel())
	}
}

// trackEvent records a state transition at the current logical time.
// Unchanged labels are dropped by the event log itself.
func trackEvent(s *System, path, units, label string) {
	if ev := eventsAt(s, path, units); ev != nil {
		ev.Append(label, s.rel())
	}
}

// TrackSeries appends a typed sample under an arbitrary path. Onboard-log
// style feeds with free-form field names come in through here.
func TrackSeries[T data.Number](s *System, path, units string, v T) {
	track(s, path, units, v)
}

// TrackEvent records a free-form event under an arbitrary path.
func (s *System) TrackEvent(path, label string) {
	trackEvent(s, path, "", label)
}
