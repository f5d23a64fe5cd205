// Package postproc derives secondary metrics from the raw channels of a
// system: timing repair, the flight book, power integration and glide
// performance estimation.
//
// The pipeline is an ordered sequence of idempotent passes. Each pass
// clears its own derived outputs before recomputing and no-ops with a log
// entry when its inputs are missing, so the pipeline can re-run after
// every merge.
package postproc

import (
	stderrors "errors"
	"log/slog"

	"github.com/xtxerr/flightlog/config"
	"github.com/xtxerr/flightlog/internal/data"
	"github.com/xtxerr/flightlog/internal/errors"
	"github.com/xtxerr/flightlog/internal/registry"
)

// Pipeline runs the derived-metric passes in order.
type Pipeline struct {
	cfg *config.Config
}

// New creates a pipeline. A nil cfg uses the defaults.
func New(cfg *config.Config) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pipeline{cfg: cfg}
}

type pass struct {
	name string
	run  func(reg *registry.Registry, log *slog.Logger) error
}

// Process runs every pass over the registry. Timing repair goes first so
// later passes see well-formed timestamps; a missing-input pass is skipped,
// nothing aborts the sequence.
func (p *Pipeline) Process(reg *registry.Registry, log *slog.Logger) error {
	passes := []pass{
		{"timing repair", p.repairTiming},
		{"flight book", p.flightBook},
		{"power statistics", p.powerStats},
		{"glide distance", p.glideDistance},
		{"glide performance", p.glidePerformance},
	}
	for _, ps := range passes {
		err := ps.run(reg, log)
		switch {
		case stderrors.Is(err, errors.ErrMissingInput):
			log.Info("postprocess pass skipped", "pass", ps.name, "reason", err)
		case err != nil:
			log.Warn("postprocess pass failed", "pass", ps.name, "error", err)
		default:
			log.Debug("postprocess pass done", "pass", ps.name)
		}
	}
	return nil
}

// f64Series returns the float64 series at the exact path.
func f64Series(reg *registry.Registry, path string) *data.TimeSeries[float64] {
	ch, ok := reg.Find(path)
	if !ok {
		return nil
	}
	ts, _ := ch.(*data.TimeSeries[float64])
	return ts
}

// searchSeries tries the given regular expressions in order and returns
// the first float64 series whose path matches.
func searchSeries(reg *registry.Registry, patterns ...string) *data.TimeSeries[float64] {
	for _, pat := range patterns {
		ch, ok := reg.FindPattern(pat)
		if !ok {
			continue
		}
		if ts, ok := ch.(*data.TimeSeries[float64]); ok {
			return ts
		}
	}
	return nil
}

// derivedSeries resolves a derived output series, clearing any previous
// run's samples and stamping it with the source epoch.
func derivedSeries(reg *registry.Registry, path, units string, epoch uint64) *data.TimeSeries[float64] {
	ts := f64Series(reg, path)
	if ts == nil {
		ts = data.NewSeries[float64](path, units)
		reg.Register(path, ts)
	}
	ts.Clear()
	ts.MarkDerived()
	ts.SetEpochStart(epoch)
	return ts
}
