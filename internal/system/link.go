package system

import (
	"github.com/xtxerr/flightlog/config"
)

// Verdict classifies one inbound message for traffic accounting.
type Verdict int

const (
	Interpreted Verdict = iota
	Uninterpreted
	Errored
)

// linkStats is the running protocol-traffic summary of one system.
type linkStats struct {
	received      uint64
	interpreted   uint64
	uninterpreted uint64
	errored       uint64
	bytesTotal    uint64

	// bytes seen since the last throughput sample
	accum uint64

	seenInterpreted   map[uint32]struct{}
	seenUninterpreted map[uint32]struct{}
}

func newLinkStats() linkStats {
	return linkStats{
		seenInterpreted:   make(map[uint32]struct{}),
		seenUninterpreted: make(map[uint32]struct{}),
	}
}

func (l *linkStats) clone() linkStats {
	cp := *l
	cp.seenInterpreted = make(map[uint32]struct{}, len(l.seenInterpreted))
	for id := range l.seenInterpreted {
		cp.seenInterpreted[id] = struct{}{}
	}
	cp.seenUninterpreted = make(map[uint32]struct{}, len(l.seenUninterpreted))
	for id := range l.seenUninterpreted {
		cp.seenUninterpreted[id] = struct{}{}
	}
	return cp
}

func (l *linkStats) absorb(o *linkStats) {
	l.received += o.received
	l.interpreted += o.interpreted
	l.uninterpreted += o.uninterpreted
	l.errored += o.errored
	l.bytesTotal += o.bytesTotal
	for id := range o.seenInterpreted {
		l.seenInterpreted[id] = struct{}{}
	}
	for id := range o.seenUninterpreted {
		l.seenUninterpreted[id] = struct{}{}
	}
}

// TrackLink accounts one inbound message: byte length, message identifier
// and decode outcome. Bytes accumulate while no logical time exists; once
// the clock is valid every call emits one throughput sample (accumulated
// bytes over 128, labeled kbit/s at the stream's sampling cadence) and
// resets the accumulator.
func (s *System) TrackLink(lengthBytes uint32, msgID uint32, v Verdict) {
	l := &s.link
	l.received++
	l.bytesTotal += uint64(lengthBytes)
	l.accum += uint64(lengthBytes)

	switch v {
	case Interpreted:
		l.interpreted++
		l.seenInterpreted[msgID] = struct{}{}
	case Uninterpreted:
		l.uninterpreted++
		l.seenUninterpreted[msgID] = struct{}{}
	case Errored:
		l.errored++
	}

	if !s.clock.Valid() {
		return
	}
	track(s, PathThroughput, "kbit/s", float64(l.accum)/config.ThroughputDivisor)
	l.accum = 0
}

// LinkStats reports the traffic counters for the summary.
type LinkStats struct {
	Received         uint64
	Interpreted      uint64
	Uninterpreted    uint64
	Errored          uint64
	BytesTotal       uint64
	InterpretedIDs   int
	UninterpretedIDs int
}

// Link returns a snapshot of the traffic counters.
func (s *System) Link() LinkStats {
	return LinkStats{
		Received:         s.link.received,
		Interpreted:      s.link.interpreted,
		Uninterpreted:    s.link.uninterpreted,
		Errored:          s.link.errored,
		BytesTotal:       s.link.bytesTotal,
		InterpretedIDs:   len(s.link.seenInterpreted),
		UninterpretedIDs: len(s.link.seenUninterpreted),
	}
}
