package postproc

import (
	"log/slog"

	"github.com/xtxerr/flightlog/internal/errors"
	"github.com/xtxerr/flightlog/internal/registry"
	"github.com/xtxerr/flightlog/internal/system"
)

// powerStats derives instantaneous power and the integrated charge and
// energy consumption from the battery voltage and current series.
func (p *Pipeline) powerStats(reg *registry.Registry, log *slog.Logger) error {
	volt := f64Series(reg, system.PathVoltage)
	cur := f64Series(reg, system.PathCurrent)
	if volt == nil || cur == nil || volt.Empty() || cur.Empty() {
		return errors.Wrap(errors.ErrMissingInput, "power stats need voltage and current")
	}
	if volt.EpochStart() != cur.EpochStart() {
		log.Warn("voltage and current epochs differ, power stats skipped",
			"voltage", volt.EpochStart(), "current", cur.EpochStart())
		return nil
	}
	epoch := volt.EpochStart()

	power := derivedSeries(reg, system.PathPower, "W", epoch)
	charge := derivedSeries(reg, system.PathCharge, "As", epoch)
	chargeTotal := derivedSeries(reg, system.PathChargeTotal, "Ah", epoch)
	consumed := derivedSeries(reg, system.PathConsumed, "Ws", epoch)
	consumedTotal := derivedSeries(reg, system.PathConsumedTotal, "Wh", epoch)

	// instantaneous power at the voltage sample times
	volt.Each(func(t, v float64) {
		if i, ok := cur.ValueAt(t); ok {
			power.Append(v*i, t)
		}
	})

	// trapezoidal charge integral over the current samples
	var (
		as        float64
		prevT     float64
		prevI     float64
		havePrevI bool
	)
	cur.Each(func(t, i float64) {
		if havePrevI {
			as += (i + prevI) / 2 * (t - prevT)
		}
		charge.Append(as, t)
		chargeTotal.Append(as/3600, t)
		prevT, prevI, havePrevI = t, i, true
	})

	// trapezoidal energy integral over the derived power samples
	var (
		ws        float64
		prevPT    float64
		prevP     float64
		havePrevP bool
	)
	power.Each(func(t, pw float64) {
		if havePrevP {
			ws += (pw + prevP) / 2 * (t - prevPT)
		}
		consumed.Append(ws, t)
		consumedTotal.Append(ws/3600, t)
		prevPT, prevP, havePrevP = t, pw, true
	})

	log.Info("power stats", "charge_as", as, "energy_ws", ws)
	return nil
}
