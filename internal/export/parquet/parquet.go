// Package parquet dumps a system's registry to Parquet files, one row per
// collected sample, for analysis outside the tool.
package parquet

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/xtxerr/flightlog/internal/data"
	"github.com/xtxerr/flightlog/internal/system"
)

// Options configures the Parquet export.
type Options struct {
	// Compression algorithm
	Compression CompressionType

	// RowGroupSize is the target number of rows per row group
	RowGroupSize int
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

// DefaultOptions returns default export options.
func DefaultOptions() Options {
	return Options{
		Compression:  CompressionZstd,
		RowGroupSize: 100000,
	}
}

// ParseCompressionType parses a compression type string.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	case "gzip":
		return CompressionGzip
	case "none":
		return CompressionNone
	default:
		return CompressionZstd
	}
}

// getCompression returns the parquet-go compression codec.
func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// SampleRow is one collected datum in Parquet format. Numeric samples
// carry Value, event entries carry Label.
type SampleRow struct {
	SystemID     int32   `parquet:"system_id"`
	Path         string  `parquet:"path,zstd"`
	Units        string  `parquet:"units,zstd"`
	Derived      bool    `parquet:"derived"`
	EpochStartUs int64   `parquet:"epoch_start_us"`
	TimeSec      float64 `parquet:"time_sec"`
	Value        float64 `parquet:"value"`
	Label        string  `parquet:"label,optional,zstd"`
}

// Writer writes sample rows to one Parquet file.
type Writer struct {
	path     string
	file     *os.File
	writer   *parquet.GenericWriter[SampleRow]
	rowCount int64
	closed   bool
}

// NewWriter creates a Parquet writer at path, creating directories as
// needed.
func NewWriter(path string, opts Options) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	writer := parquet.NewGenericWriter[SampleRow](f,
		parquet.Compression(getCompression(opts.Compression)))
	return &Writer{path: path, file: f, writer: writer}, nil
}

// Write appends rows to the file.
func (w *Writer) Write(rows []SampleRow) error {
	if len(rows) == 0 {
		return nil
	}
	if w.closed {
		return fmt.Errorf("writer closed: %s", w.path)
	}
	n, err := w.writer.Write(rows)
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	w.rowCount += int64(n)
	return nil
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close writer: %w", err)
	}
	return w.file.Close()
}

// RowCount returns the number of rows written.
func (w *Writer) RowCount() int64 { return w.rowCount }

// Path returns the file path.
func (w *Writer) Path() string { return w.path }

// Rows flattens one channel into sample rows.
func Rows(systemID uint8, ch data.Channel) []SampleRow {
	base := SampleRow{
		SystemID:     int32(systemID),
		Path:         ch.FullPath(),
		Units:        ch.Units(),
		Derived:      ch.Derived(),
		EpochStartUs: int64(ch.EpochStart()),
	}
	var rows []SampleRow

	switch c := ch.(type) {
	case *data.TimeSeries[float64]:
		c.Each(func(t float64, v float64) {
			r := base
			r.TimeSec, r.Value = t, v
			rows = append(rows, r)
		})
	case *data.TimeSeries[float32]:
		c.Each(func(t float64, v float32) {
			r := base
			r.TimeSec, r.Value = t, float64(v)
			rows = append(rows, r)
		})
	case *data.TimeSeries[uint32]:
		c.Each(func(t float64, v uint32) {
			r := base
			r.TimeSec, r.Value = t, float64(v)
			rows = append(rows, r)
		})
	case *data.TimeSeries[int32]:
		c.Each(func(t float64, v int32) {
			r := base
			r.TimeSec, r.Value = t, float64(v)
			rows = append(rows, r)
		})
	case *data.TimeSeries[uint64]:
		c.Each(func(t float64, v uint64) {
			r := base
			r.TimeSec, r.Value = t, float64(v)
			rows = append(rows, r)
		})
	case *data.EventLog:
		c.Each(func(t float64, label string) {
			r := base
			r.TimeSec, r.Label = t, label
			rows = append(rows, r)
		})
	case *data.Param[float64]:
		if v, ok := c.Value(); ok {
			r := base
			r.Value = v
			rows = append(rows, r)
		}
	case *data.Param[float32]:
		if v, ok := c.Value(); ok {
			r := base
			r.Value = float64(v)
			rows = append(rows, r)
		}
	case *data.Param[uint32]:
		if v, ok := c.Value(); ok {
			r := base
			r.Value = float64(v)
			rows = append(rows, r)
		}
	case *data.Param[int32]:
		if v, ok := c.Value(); ok {
			r := base
			r.Value = float64(v)
			rows = append(rows, r)
		}
	case *data.Param[uint64]:
		if v, ok := c.Value(); ok {
			r := base
			r.Value = float64(v)
			rows = append(rows, r)
		}
	}
	return rows
}

// WriteSystem dumps every channel of a system into dir, one file per
// system id.
func WriteSystem(dir string, sys *system.System, opts Options) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("system-%d.parquet", sys.ID()))
	w, err := NewWriter(path, opts)
	if err != nil {
		return "", err
	}
	var werr error
	sys.Registry().Each(func(_ string, ch data.Channel) {
		if werr != nil {
			return
		}
		werr = w.Write(Rows(sys.ID(), ch))
	})
	if werr != nil {
		w.Close()
		return "", werr
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// ReadRows loads every row of an exported file, mainly for verification.
func ReadRows(path string) ([]SampleRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[SampleRow](f)
	defer reader.Close()

	rows := make([]SampleRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows[:n], nil
}
