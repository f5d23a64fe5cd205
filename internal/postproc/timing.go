package postproc

import (
	"log/slog"
	"strings"

	"github.com/xtxerr/flightlog/internal/data"
	"github.com/xtxerr/flightlog/internal/registry"
)

const origSuffix = "_orig"

// repairTiming rebuilds the time axis of every channel flagged as having
// unreliable timestamps: the raw samples are preserved under a "_orig"
// sibling, then the channel's timestamps are redistributed evenly over the
// observed span. Backups are never repaired themselves.
func (p *Pipeline) repairTiming(reg *registry.Registry, log *slog.Logger) error {
	var broken []data.Timed
	reg.Each(func(path string, ch data.Channel) {
		if strings.HasSuffix(path, origSuffix) {
			return
		}
		td, ok := ch.(data.Timed)
		if !ok || !td.BadTimestamps() {
			return
		}
		broken = append(broken, td)
	})

	for _, td := range broken {
		backupPath := td.FullPath() + origSuffix
		if _, exists := reg.Find(backupPath); !exists {
			backup := td.Clone()
			backup.SetName(td.Name() + origSuffix)
			reg.Register(backup.FullPath(), backup)
		}
		td.MakePeriodic()
		log.Info("timestamps repaired", "path", td.FullPath(), "samples", td.Len())
	}
	return nil
}
