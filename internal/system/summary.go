package system

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/xtxerr/flightlog/internal/data"
)

// Summary renders the human-readable multi-section report for the
// presentation layer. Sections whose channels are absent are omitted;
// systems loaded metadata-only render General and Link only.
func (s *System) Summary() string {
	var b strings.Builder

	s.summaryGeneral(&b)
	if !s.deferred {
		s.summaryPower(&b)
		s.summaryFlightBook(&b)
		s.summaryPerformance(&b)
		s.summaryPosition(&b)
		s.summaryComputer(&b)
	}
	s.summaryLink(&b)

	return b.String()
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "--- %s ---\n", title)
}

func (s *System) summaryGeneral(b *strings.Builder) {
	section(b, "General")
	fmt.Fprintf(b, "System id: %d\n", s.id)
	fmt.Fprintf(b, "Vehicle: %s\n", orUnknown(s.vehicle))
	fmt.Fprintf(b, "Autopilot: %s\n", orUnknown(s.autopilot))
	fmt.Fprintf(b, "Ever armed: %s\n", onOff(s.everArmed, "yes", "no"))
	if min, max, ok := s.clock.Bounds(); ok {
		fmt.Fprintf(b, "Log span: %.1f s\n", max-min)
	}
	if s.clock.Resolved() {
		if epoch, err := s.clock.ResolveOffset(); err == nil {
			fmt.Fprintf(b, "Start time: %s\n", epoch.Format(time.RFC3339))
		}
	}
	fmt.Fprintf(b, "Channels: %d\n", s.reg.Len())
}

func (s *System) summaryPower(b *strings.Builder) {
	volt := s.f64(PathVoltage)
	if volt == nil {
		return
	}
	section(b, "Power")
	last, _ := volt.Last()
	fmt.Fprintf(b, "Voltage: %.2f V (min %.2f, max %.2f)\n", last.Value, volt.Min(), volt.Max())
	if cur := s.f64(PathCurrent); cur != nil {
		last, _ := cur.Last()
		fmt.Fprintf(b, "Current: %.2f A (min %.2f, max %.2f)\n", last.Value, cur.Min(), cur.Max())
	}
	if ch := s.f64(PathChargeTotal); ch != nil {
		if last, ok := ch.Last(); ok {
			fmt.Fprintf(b, "Charge used: %.3f Ah\n", last.Value)
		}
	}
	if ws := s.f64(PathConsumedTotal); ws != nil {
		if last, ok := ws.Last(); ok {
			fmt.Fprintf(b, "Energy used: %.2f Wh\n", last.Value)
		}
	}
}

func (s *System) summaryFlightBook(b *strings.Builder) {
	flights, ok := paramValue[uint32](s, PathFlightCount)
	if !ok {
		return
	}
	section(b, "Flight Book")
	fmt.Fprintf(b, "Flights: %d\n", flights)
	if tsec, ok := paramValue[float64](s, PathFlightTime); ok {
		fmt.Fprintf(b, "Flight time: %s\n", time.Duration(tsec*float64(time.Second)).Round(time.Second))
	}
	if us, ok := paramValue[uint64](s, PathFirstTakeoff); ok && us > 0 {
		fmt.Fprintf(b, "First takeoff: %s\n", time.UnixMicro(int64(us)).UTC().Format(time.RFC3339))
	}
	if us, ok := paramValue[uint64](s, PathLastLanding); ok && us > 0 {
		fmt.Fprintf(b, "Last landing: %s\n", time.UnixMicro(int64(us)).UTC().Format(time.RFC3339))
	}
}

func (s *System) summaryPerformance(b *strings.Builder) {
	ratio := s.f64(PathGlideRatio)
	if ratio == nil || ratio.Empty() {
		return
	}
	section(b, "Flight performance")
	st := data.CollectStats(ratio, s.cfg.Stats.SketchAccuracy)
	fmt.Fprintf(b, "Glide ratio: max %.1f, avg %.1f\n", st.Max(), st.Avg())
	if p50, ok := st.Quantile(0.50); ok {
		p90, _ := st.Quantile(0.90)
		fmt.Fprintf(b, "Glide ratio p50/p90: %.1f / %.1f\n", p50, p90)
	}
	if spd := s.f64(PathAirspeed); spd != nil && !spd.Empty() {
		fmt.Fprintf(b, "Airspeed: min %.1f, max %.1f m/s\n", spd.Min(), spd.Max())
	}
}

func (s *System) summaryPosition(b *strings.Builder) {
	lat := s.f64(PathLat)
	lon := s.f64(PathLon)
	if lat == nil || lon == nil || lat.Empty() || lon.Empty() {
		return
	}
	section(b, "Last position")
	la, _ := lat.Last()
	lo, _ := lon.Last()
	fmt.Fprintf(b, "Lat/Lon: %.7f, %.7f\n", la.Value, lo.Value)
	if alt := s.f64(PathAltMSL); alt != nil && !alt.Empty() {
		a, _ := alt.Last()
		fmt.Fprintf(b, "Altitude: %.1f m MSL\n", a.Value)
	}
}

func (s *System) summaryComputer(b *strings.Builder) {
	load := s.f64(PathCPULoad)
	if load == nil || load.Empty() {
		return
	}
	section(b, "Computer")
	st := data.CollectStats(load, s.cfg.Stats.SketchAccuracy)
	line := fmt.Sprintf("Load: avg %.1f%%", st.Avg())
	if p95, ok := st.Quantile(0.95); ok {
		line += fmt.Sprintf(", p95 %.1f%%", p95)
	}
	b.WriteString(line + "\n")
}

func (s *System) summaryLink(b *strings.Builder) {
	l := s.Link()
	if l.Received == 0 {
		return
	}
	section(b, "Link")
	fmt.Fprintf(b, "Messages: %s received, %s interpreted, %s uninterpreted, %s errors\n",
		humanize.Comma(int64(l.Received)), humanize.Comma(int64(l.Interpreted)),
		humanize.Comma(int64(l.Uninterpreted)), humanize.Comma(int64(l.Errored)))
	fmt.Fprintf(b, "Traffic: %s\n", humanize.Bytes(l.BytesTotal))
	fmt.Fprintf(b, "Message ids: %d interpreted, %d uninterpreted\n",
		l.InterpretedIDs, l.UninterpretedIDs)
	if tp := s.f64(PathThroughput); tp != nil && !tp.Empty() {
		fmt.Fprintf(b, "Throughput: avg %.1f kbit/s\n",
			data.CollectStats(tp, s.cfg.Stats.SketchAccuracy).Avg())
	}
}

// f64 returns the float64 series at path, nil when absent or differently
// typed.
func (s *System) f64(path string) *data.TimeSeries[float64] {
	ch, ok := s.reg.Find(path)
	if !ok {
		return nil
	}
	ts, _ := ch.(*data.TimeSeries[float64])
	return ts
}

func paramValue[T data.Number](s *System, path string) (T, bool) {
	var zero T
	ch, ok := s.reg.Find(path)
	if !ok {
		return zero, false
	}
	p, ok := ch.(*data.Param[T])
	if !ok {
		return zero, false
	}
	return p.Value()
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
