// Package scenario holds every system found in one or more log sources
// and drives cross-log merging and postprocessing.
package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/flightlog/config"
	"github.com/xtxerr/flightlog/internal/errors"
	"github.com/xtxerr/flightlog/internal/logging"
	"github.com/xtxerr/flightlog/internal/postproc"
	"github.com/xtxerr/flightlog/internal/system"
)

// filenameLayout is the timestamp convention of ground-station log file
// names, e.g. "2014-05-10 15-04-11.tlog".
const filenameLayout = "2006-01-02 15-04-05"

// Scenario is the set of systems observed in a log, keyed by id.
type Scenario struct {
	cfg *config.Config
	log *slog.Logger
	pp  *postproc.Pipeline

	mu      sync.Mutex
	systems map[uint8]*system.System

	startGuess time.Time
}

// New creates an empty scenario. A nil cfg uses the defaults.
func New(cfg *config.Config) *Scenario {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Scenario{
		cfg:     cfg,
		log:     logging.Component("scenario"),
		pp:      postproc.New(cfg),
		systems: make(map[uint8]*system.System),
	}
}

// GetOrCreate returns the system with the given id, creating it with the
// scenario's configuration and pipeline on first sight.
func (sc *Scenario) GetOrCreate(id uint8) *system.System {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sys, ok := sc.systems[id]; ok {
		return sys
	}
	sys := system.New(id, sc.cfg)
	sys.SetPostprocessor(sc.pp)
	sc.systems[id] = sys
	sc.log.Debug("system discovered", "id", id)
	return sys
}

// System returns the system with the given id.
func (sc *Scenario) System(id uint8) (*system.System, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sys, ok := sc.systems[id]
	return sys, ok
}

// IDs returns all known system ids in ascending order.
func (sc *Scenario) IDs() []uint8 {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	ids := make([]uint8, 0, len(sc.systems))
	for id := range sc.systems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of systems.
func (sc *Scenario) Len() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.systems)
}

// SetStartGuess supplies a fallback epoch, typically parsed from the log
// file name, used by systems whose stream carried no absolute time.
func (sc *Scenario) SetStartGuess(t time.Time) { sc.startGuess = t }

// Process finishes ingestion: every system gets the start-time fallback,
// runs its postprocessing pipeline and resolves its absolute timeline.
// Systems are independent, so they are processed concurrently.
func (sc *Scenario) Process(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for _, id := range sc.IDs() {
		sys, _ := sc.System(id)
		g.Go(func() error {
			if !sc.startGuess.IsZero() && sys.Clock().Guess().IsZero() {
				sys.Clock().SetGuess(sc.startGuess)
			}
			sys.Postprocess()
			if err := sys.ResolveTime(); err != nil {
				// no time reference at all: data stays relative
				sys.Log().Warn("timeline stays relative", "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// MergeFrom folds another scenario into this one: systems seen before are
// merged channel by channel, unseen ones are deep-copied over.
func (sc *Scenario) MergeFrom(other *Scenario) error {
	if other == nil || other == sc {
		return nil
	}
	for _, id := range other.IDs() {
		src, _ := other.System(id)
		if dst, ok := sc.System(id); ok {
			if err := dst.MergeFrom(src); err != nil {
				sc.log.Warn("system merge failed", "id", id, "error", err)
			}
			continue
		}
		cp := src.Clone()
		cp.SetPostprocessor(sc.pp)
		sc.mu.Lock()
		sc.systems[id] = cp
		sc.mu.Unlock()
		sc.log.Info("system adopted from merge", "id", id)
	}
	if sc.startGuess.IsZero() {
		sc.startGuess = other.startGuess
	}
	return nil
}

// ShiftTime moves every system's absolute timeline by delta and restamps
// the channels. Channel-local sample times are untouched.
func (sc *Scenario) ShiftTime(delta time.Duration) {
	for _, id := range sc.IDs() {
		sys, _ := sc.System(id)
		sys.Clock().Shift(delta)
		if err := sys.ResolveTime(); err != nil {
			sys.Log().Debug("shift without resolved timeline", "error", err)
		}
	}
}

// Overview writes every system's summary to w, separated by headers.
func (sc *Scenario) Overview(w io.Writer) {
	for _, id := range sc.IDs() {
		sys, _ := sc.System(id)
		fmt.Fprintf(w, "=== System %d ===\n%s\n", id, sys.Summary())
	}
}

// StartGuessFromFilename parses the recording timestamp a ground station
// encodes in its log file names.
func StartGuessFromFilename(path string) (time.Time, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if len(base) < len(filenameLayout) {
		return time.Time{}, errors.Wrap(errors.ErrMissingInput, "no timestamp in %q", base)
	}
	t, err := time.Parse(filenameLayout, base[:len(filenameLayout)])
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrMissingInput, "no timestamp in %q", base)
	}
	return t.UTC(), nil
}
