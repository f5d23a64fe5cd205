package postproc

import (
	"log/slog"

	"github.com/xtxerr/flightlog/internal/data"
	"github.com/xtxerr/flightlog/internal/errors"
	"github.com/xtxerr/flightlog/internal/registry"
	"github.com/xtxerr/flightlog/internal/system"
)

// flightBook extracts takeoff/landing events and the flight totals from
// the altitude and throttle series. Flying means altitude above the
// configured floor with throttle applied.
func (p *Pipeline) flightBook(reg *registry.Registry, log *slog.Logger) error {
	alt := f64Series(reg, system.PathAltitude)
	thr := f64Series(reg, system.PathThrottle)
	if alt == nil || thr == nil || alt.Empty() || thr.Empty() {
		return errors.Wrap(errors.ErrMissingInput, "flight book needs altitude and throttle")
	}
	if alt.EpochStart() != thr.EpochStart() {
		log.Warn("altitude and throttle epochs differ, flight book skipped",
			"altitude", alt.EpochStart(), "throttle", thr.EpochStart())
		return nil
	}
	epoch := alt.EpochStart()

	events := derivedEvents(reg, system.PathFlightEvents, epoch)

	var (
		flying       bool
		flights      uint32
		flightTime   float64
		takeoffAt    float64
		firstTakeoff float64 = -1
		lastLanding  float64 = -1
	)
	alt.Each(func(t, altitude float64) {
		throttle, ok := thr.ValueAt(t)
		if !ok {
			return
		}
		now := altitude > p.cfg.Flightbook.AltMin && throttle > p.cfg.Flightbook.ThrottleMin
		switch {
		case now && !flying:
			events.Append("takeoff", t)
			flights++
			takeoffAt = t
			if firstTakeoff < 0 {
				firstTakeoff = t
			}
		case !now && flying:
			events.Append("landing", t)
			flightTime += t - takeoffAt
			lastLanding = t
		}
		flying = now
	})
	// a log that ends mid-air leaves the open flight out of the totals

	derivedParam[uint32](reg, system.PathFlightCount, "", epoch).Set(flights)
	derivedParam[float64](reg, system.PathFlightTime, "s", epoch).Set(flightTime)
	first := derivedParam[uint64](reg, system.PathFirstTakeoff, "us", epoch)
	if firstTakeoff >= 0 {
		first.Set(epoch + uint64(firstTakeoff*1e6))
	}
	last := derivedParam[uint64](reg, system.PathLastLanding, "us", epoch)
	if lastLanding >= 0 {
		last.Set(epoch + uint64(lastLanding*1e6))
	}

	log.Info("flight book", "flights", flights, "flight_time_sec", flightTime)
	return nil
}

// derivedEvents resolves a derived event log, cleared and restamped.
func derivedEvents(reg *registry.Registry, path string, epoch uint64) *data.EventLog {
	var ev *data.EventLog
	if ch, ok := reg.Find(path); ok {
		ev, _ = ch.(*data.EventLog)
	}
	if ev == nil {
		ev = data.NewEvents(path, "")
		reg.Register(path, ev)
	}
	ev.Clear()
	ev.MarkDerived()
	ev.SetEpochStart(epoch)
	return ev
}

// derivedParam resolves a derived parameter, restamped with the epoch.
func derivedParam[T data.Number](reg *registry.Registry, path, units string, epoch uint64) *data.Param[T] {
	var pr *data.Param[T]
	if ch, ok := reg.Find(path); ok {
		pr, _ = ch.(*data.Param[T])
	}
	if pr == nil {
		pr = data.NewParam[T](path, units)
		reg.Register(path, pr)
	}
	pr.Clear()
	pr.MarkDerived()
	pr.SetEpochStart(epoch)
	return pr
}
