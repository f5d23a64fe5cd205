// Package replay feeds already-decoded telemetry records into a scenario.
//
// Records arrive as JSON lines, one message per line, each carrying the
// system id, the relative timestamp, the semantic type, the typed field
// values and the per-message envelope (byte length, message id). Known
// types map onto the dedicated ingestion operations; unknown types fall
// back to generic per-field tracking, the way onboard logs with free-form
// field names are handled.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/xtxerr/flightlog/internal/logging"
	"github.com/xtxerr/flightlog/internal/scenario"
	"github.com/xtxerr/flightlog/internal/system"
)

// Record is one decoded message.
type Record struct {
	SysID   uint8  `json:"sysid"`
	TUsec   uint64 `json:"t_usec"`
	AbsUsec uint64 `json:"abs_usec,omitempty"`

	Type string `json:"type"`
	ID   uint32 `json:"id"`
	Len  uint32 `json:"len"`

	Fields map[string]float64 `json:"fields,omitempty"`
	Text   string             `json:"text,omitempty"`

	// heartbeat / statustext extras
	Vehicle   string `json:"vehicle,omitempty"`
	Autopilot string `json:"autopilot,omitempty"`
	Severity  string `json:"severity,omitempty"`
}

func (r *Record) f(name string) float64 { return r.Fields[name] }

func (r *Record) flag(name string) bool { return r.Fields[name] != 0 }

// Stats summarizes one feed run.
type Stats struct {
	Lines     int
	Applied   int
	Generic   int
	Rejected  int // timestamps outside jump bounds
	BadRecord int
}

// Feed reads JSON lines from r and applies each record to the scenario.
// Undecodable lines are counted and skipped; a rejected timestamp skips
// the record body but still accounts the traffic.
func Feed(r io.Reader, sc *scenario.Scenario, allowJumps bool) (Stats, error) {
	log := logging.Component("replay")
	var st Stats

	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scan.Scan() {
		st.Lines++
		line := scan.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			st.BadRecord++
			log.Debug("undecodable record", "line", st.Lines, "error", err)
			continue
		}
		apply(sc.GetOrCreate(rec.SysID), &rec, allowJumps, &st)
	}
	if err := scan.Err(); err != nil {
		return st, fmt.Errorf("read records: %w", err)
	}
	return st, nil
}

// FeedFile feeds a JSONL file.
func FeedFile(path string, sc *scenario.Scenario, allowJumps bool) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	return Feed(f, sc, allowJumps)
}

func apply(sys *system.System, rec *Record, allowJumps bool, st *Stats) {
	if _, err := sys.Advance(rec.TUsec, allowJumps); err != nil {
		st.Rejected++
		sys.TrackLink(rec.Len, rec.ID, system.Errored)
		return
	}
	if rec.AbsUsec > 0 {
		sys.RecordTimeReference(rec.TUsec, rec.AbsUsec)
	}

	known := dispatch(sys, rec, st)
	if known {
		st.Applied++
		sys.TrackLink(rec.Len, rec.ID, system.Interpreted)
	} else {
		sys.TrackLink(rec.Len, rec.ID, system.Uninterpreted)
	}
}

// dispatch maps a record type to its ingestion operation. Returns false
// for types handled only generically.
func dispatch(sys *system.System, rec *Record, st *Stats) bool {
	switch rec.Type {
	case "attitude":
		sys.TrackAttitude(rec.f("roll"), rec.f("pitch"), rec.f("yaw"),
			rec.f("rollspeed"), rec.f("pitchspeed"), rec.f("yawspeed"))
	case "position":
		sys.TrackPosition(rec.f("lat"), rec.f("lon"),
			rec.f("alt_msl"), rec.f("alt_rel"), rec.f("heading"))
	case "speed":
		sys.TrackSpeedNED(rec.f("vn"), rec.f("ve"), rec.f("vd"))
	case "vfr":
		sys.TrackFlightPerformance(rec.f("airspeed"), rec.f("groundspeed"),
			rec.f("climb"), rec.f("throttle"), rec.f("alt"), rec.f("heading"))
	case "gps":
		sys.TrackGPS(rec.f("lat"), rec.f("lon"), rec.f("alt"),
			rec.f("hdop"), rec.f("vdop"), rec.f("speed"), rec.f("course"))
	case "gps_status":
		sys.TrackGPSStatus(uint32(rec.f("satellites")), uint32(rec.f("fix_type")))
	case "imu":
		sys.TrackIMU(int(rec.f("index")),
			[3]float64{rec.f("accx"), rec.f("accy"), rec.f("accz")},
			[3]float64{rec.f("gyrox"), rec.f("gyroy"), rec.f("gyroz")},
			[3]float64{rec.f("magx"), rec.f("magy"), rec.f("magz")})
	case "imu_highres":
		sys.TrackIMUHighRes(
			[3]float64{rec.f("accx"), rec.f("accy"), rec.f("accz")},
			[3]float64{rec.f("gyrox"), rec.f("gyroy"), rec.f("gyroz")},
			[3]float64{rec.f("magx"), rec.f("magy"), rec.f("magz")},
			rec.f("press_abs"), rec.f("press_diff"), rec.f("temperature"))
	case "radio":
		sys.TrackRadio(rec.f("rssi"), rec.f("remrssi"),
			rec.f("noise"), rec.f("remnoise"),
			uint32(rec.f("rxerrors")), uint32(rec.f("fixed")))
	case "rssi":
		sys.TrackRadioRSSI(rec.f("rssi"))
	case "drop_rate":
		sys.TrackRadioDropRate(rec.f("rate"))
	case "battery":
		sys.TrackBattery(rec.f("voltage"), rec.f("current"), rec.f("remaining"))
	case "power_rails":
		sys.TrackPowerRails(rec.f("vcc"), rec.f("vservo"))
	case "sysperf":
		sys.TrackSystemPerformance(rec.f("load"), rec.f("voltage"), rec.f("current"))
	case "ambient":
		sys.TrackAmbient(rec.f("temperature"), rec.f("pressure"))
	case "mission_item":
		sys.TrackMissionItem(uint32(rec.f("seq")))
	case "mission_current":
		sys.TrackMissionCurrent(uint32(rec.f("seq")))
	case "mission_request":
		sys.TrackMissionRequest(uint32(rec.f("seq")))
	case "sensors":
		sys.TrackSensors(uint32(rec.f("present")),
			uint32(rec.f("enabled")), uint32(rec.f("health")))
	case "nav":
		sys.TrackNavigation(rec.f("nav_roll"), rec.f("nav_pitch"),
			rec.f("nav_bearing"), rec.f("target_bearing"), rec.f("wp_distance"),
			rec.f("alt_error"), rec.f("aspd_error"), rec.f("xtrack_error"))
	case "statustext":
		sys.TrackStatusText(rec.Severity, rec.Text)
	case "heartbeat":
		sys.TrackHeartbeat(rec.Vehicle, rec.Autopilot, system.Mode{
			Armed:      rec.flag("armed"),
			Stabilized: rec.flag("stabilized"),
			Guided:     rec.flag("guided"),
			Manual:     rec.flag("manual"),
		}, rec.Text)
	default:
		generic(sys, rec, st)
		return false
	}
	return true
}

// generic tracks unknown record types field by field under an
// onboard/<type> group.
func generic(sys *system.System, rec *Record, st *Stats) {
	if rec.Type == "" {
		return
	}
	base := "onboard/" + rec.Type
	for name, v := range rec.Fields {
		system.TrackSeries[float64](sys, base+"/"+name, "", v)
	}
	if rec.Text != "" {
		sys.TrackEvent(base, rec.Text)
	}
	if len(rec.Fields) > 0 || rec.Text != "" {
		st.Generic++
	}
}
