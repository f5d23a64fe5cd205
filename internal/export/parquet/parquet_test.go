package parquet

import (
	"testing"

	"github.com/xtxerr/flightlog/internal/data"
	"github.com/xtxerr/flightlog/internal/system"
)

func TestRowsFromSeries(t *testing.T) {
	ts := data.NewSeries[float64]("power/voltage", "V")
	ts.SetEpochStart(1_700_000_000_000_000)
	ts.Append(12.5, 0)
	ts.Append(12.4, 1)

	rows := Rows(3, ts)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	r := rows[1]
	if r.SystemID != 3 || r.Path != "power/voltage" || r.Units != "V" {
		t.Errorf("row meta = %+v", r)
	}
	if r.TimeSec != 1 || r.Value != 12.4 {
		t.Errorf("row sample = %+v", r)
	}
	if r.EpochStartUs != 1_700_000_000_000_000 {
		t.Errorf("row epoch = %d", r.EpochStartUs)
	}
}

func TestRowsFromEventsAndParams(t *testing.T) {
	ev := data.NewEvents("state/armed", "")
	ev.Append("armed", 5)
	rows := Rows(1, ev)
	if len(rows) != 1 || rows[0].Label != "armed" || rows[0].TimeSec != 5 {
		t.Errorf("event rows = %+v", rows)
	}

	p := data.NewParam[uint32]("flightbook/flights", "")
	p.Set(2)
	p.MarkDerived()
	rows = Rows(1, p)
	if len(rows) != 1 || rows[0].Value != 2 || !rows[0].Derived {
		t.Errorf("param rows = %+v", rows)
	}

	empty := data.NewParam[uint32]("flightbook/unset", "")
	if rows := Rows(1, empty); len(rows) != 0 {
		t.Errorf("empty param produced rows: %+v", rows)
	}
}

func TestWriteSystemRoundTrip(t *testing.T) {
	sys := system.New(9, nil)
	sys.Advance(0, false)
	sys.TrackBattery(12.6, 1.5, 95)
	sys.TrackHeartbeat("quadrotor", "px4", system.Mode{Armed: true}, "active")

	dir := t.TempDir()
	path, err := WriteSystem(dir, sys, DefaultOptions())
	if err != nil {
		t.Fatalf("WriteSystem: %v", err)
	}

	rows, err := ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("no rows read back")
	}

	var sawVoltage, sawArmed bool
	for _, r := range rows {
		if r.SystemID != 9 {
			t.Fatalf("row with wrong system id: %+v", r)
		}
		if r.Path == system.PathVoltage && r.Value == 12.6 {
			sawVoltage = true
		}
		if r.Path == system.PathStateArmed && r.Label == "armed" {
			sawArmed = true
		}
	}
	if !sawVoltage || !sawArmed {
		t.Errorf("rows missing expected data (voltage %v, armed %v)", sawVoltage, sawArmed)
	}
}

func TestParseCompressionType(t *testing.T) {
	cases := map[string]CompressionType{
		"zstd":   CompressionZstd,
		"snappy": CompressionSnappy,
		"gzip":   CompressionGzip,
		"lz4":    CompressionLZ4,
		"none":   CompressionNone,
		"bogus":  CompressionZstd,
	}
	for in, want := range cases {
		if got := ParseCompressionType(in); got != want {
			t.Errorf("ParseCompressionType(%q) = %v, want %v", in, got, want)
		}
	}
}
