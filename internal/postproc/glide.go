package postproc

import (
	"log/slog"
	"math"

	"github.com/xtxerr/flightlog/config"
	"github.com/xtxerr/flightlog/internal/data"
	"github.com/xtxerr/flightlog/internal/errors"
	"github.com/xtxerr/flightlog/internal/registry"
	"github.com/xtxerr/flightlog/internal/system"
)

const deg2rad = math.Pi / 180.0

// glideDistance accumulates the horizontal path flown from the local
// position axes, found by name so differently-labelled logs still work.
func (p *Pipeline) glideDistance(reg *registry.Registry, log *slog.Logger) error {
	north := searchSeries(reg, `position/north$`, `(?i)\bpn\b`)
	east := searchSeries(reg, `position/east$`, `(?i)\bpe\b`)
	down := searchSeries(reg, `position/down$`, `(?i)\bpd\b`)
	if north == nil || east == nil || down == nil || north.Empty() || east.Empty() {
		return errors.Wrap(errors.ErrMissingInput, "glide distance needs local position axes")
	}

	dist := derivedSeries(reg, system.PathGlideDistance, "m", north.EpochStart())
	var (
		total    float64
		prevN    float64
		prevE    float64
		havePrev bool
	)
	north.Each(func(t, n float64) {
		e, ok := east.ValueAt(t)
		if !ok {
			return
		}
		if havePrev {
			total += math.Hypot(n-prevN, e-prevE)
		}
		dist.Append(total, t)
		prevN, prevE, havePrev = n, e, true
	})

	log.Info("glide distance", "total_m", total)
	return nil
}

// glideInputs is the source-selection result for the performance pass.
type glideInputs struct {
	roll  *data.TimeSeries[float64]
	pitch *data.TimeSeries[float64]
	accX  *data.TimeSeries[float64]
	sink  *data.TimeSeries[float64] // positive down
	speed *data.TimeSeries[float64] // airspeed, or estimate source
	// set when speed is ground speed needing wind compensation
	speedIsGround bool

	windE *data.TimeSeries[float64]
	windN *data.TimeSeries[float64]
	yaw   *data.TimeSeries[float64]
}

// glidePerformance estimates the glide ratio with wind compensation. It
// locates its inputs by whole-word search and degrades per missing
// optional input; a missing mandatory input skips the pass.
func (p *Pipeline) glidePerformance(reg *registry.Registry, log *slog.Logger) error {
	in, err := p.selectGlideInputs(reg, log)
	if err != nil {
		return err
	}

	epoch := in.sink.EpochStart()

	var wind *windField
	if in.windE != nil && in.windN != nil && in.yaw != nil {
		wind = deriveWind(reg, in, epoch)
	} else {
		log.Info("no wind data, glide ratio is uncompensated")
	}

	speedAt := func(t float64) (float64, bool) {
		v, ok := in.speed.ValueAt(t)
		if !ok {
			return 0, false
		}
		if in.speedIsGround && wind != nil {
			if hw, ok := wind.headAt(t); ok {
				v += hw
			}
		}
		return v, true
	}

	if in.speedIsGround && wind != nil {
		est := derivedSeries(reg, system.PathAirspeedEst, "m/s", epoch)
		in.speed.Each(func(t, _ float64) {
			if v, ok := speedAt(t); ok {
				est.Append(v, t)
			}
		})
	}

	ratio := derivedSeries(reg, system.PathGlideRatio, "", epoch)
	var (
		maxRatio float64
		maxSpeed float64
	)
	in.sink.Each(func(t, sink float64) {
		if sink <= 0 {
			return // climbing or level
		}
		spd, ok := speedAt(t)
		if !ok || spd <= config.GlideSpeedMin {
			return
		}
		pitch, ok := in.pitch.ValueAt(t)
		if !ok || math.Abs(pitch) >= config.GlidePitchMaxDeg {
			return
		}
		roll, ok := in.roll.ValueAt(t)
		if !ok || math.Abs(roll) >= config.GlideRollMaxDeg {
			return
		}
		accX, ok := in.accX.ValueAt(t)
		if !ok || math.Abs(accX) >= config.GlideAccXMax {
			return
		}
		r := spd / sink / math.Cos(math.Abs(roll)*deg2rad)
		ratio.Append(r, t)
		if r > maxRatio {
			maxRatio, maxSpeed = r, spd
		}
	})

	if ratio.Empty() {
		log.Info("no stabilized descent found, glide ratio empty")
		return nil
	}

	avg := derivedSeries(reg, system.PathGlideRatioAvg, "", epoch)
	ratio.MovingAverage(avg, config.GlideAvgWindowSec)

	log.Info("glide performance", "max_ratio", maxRatio, "at_speed", maxSpeed)
	return nil
}

// selectGlideInputs picks the best available source for every input by
// name-pattern search, so generic onboard-log channels qualify too.
func (p *Pipeline) selectGlideInputs(reg *registry.Registry, log *slog.Logger) (*glideInputs, error) {
	in := &glideInputs{
		roll:  searchSeries(reg, `^attitude/roll$`, `(?i)\broll\b`),
		pitch: searchSeries(reg, `^attitude/pitch$`, `(?i)\bpitch\b`),
		accX:  searchSeries(reg, `(?i)\baccx\b`),
		windE: searchSeries(reg, `(?i)\bvwe\b`, `(?i)\bwind east\b`),
		windN: searchSeries(reg, `(?i)\bvwn\b`, `(?i)\bwind north\b`),
		yaw:   searchSeries(reg, `^attitude/yaw$`, `(?i)\byaw\b`),
	}

	// sink: a direct vertical speed first, then a GPS-derived one
	in.sink = searchSeries(reg, `^speed/down$`, `(?i)\bvd\b`)
	if in.sink == nil || in.sink.Empty() {
		in.sink = searchSeries(reg, `(?i)gps/vz\b`, `(?i)\bvz\b`)
		if in.sink != nil {
			log.Info("sink rate taken from GPS vertical speed", "path", in.sink.FullPath())
		}
	}

	// speed: true airspeed only if its dynamic range clears the gate,
	// then fused NE ground speed, then a GPS ground speed behind the
	// same gate
	as := searchSeries(reg, `^flightperf/airspeed$`, `(?i)\btruespeed\b`)
	if as != nil && as.Max()-as.Min() > config.GlideSpeedMin {
		in.speed = as
	} else {
		if as != nil {
			log.Warn("ignoring airspeed series, low variance", "path", as.FullPath())
		}
		vn := searchSeries(reg, `^speed/north$`, `(?i)\bvn\b`)
		ve := searchSeries(reg, `^speed/east$`, `(?i)\bve\b`)
		if vn != nil && ve != nil && !vn.Empty() && !ve.Empty() {
			fused := derivedSeries(reg, system.PathGroundspeedNE, "m/s", vn.EpochStart())
			vn.Each(func(t, n float64) {
				if e, ok := ve.ValueAt(t); ok {
					fused.Append(math.Hypot(n, e), t)
				}
			})
			in.speed = fused
			in.speedIsGround = true
			log.Info("ground speed fused from NE velocity components")
		} else if gs := searchSeries(reg, `^flightperf/groundspeed$`, `^GPS/speed$`, `(?i)gps/spd\b`); gs != nil && gs.Max()-gs.Min() > config.GlideSpeedMin {
			in.speed = gs
			in.speedIsGround = true
			log.Info("falling back to GPS ground speed")
		}
	}

	if in.speed == nil || in.sink == nil || in.pitch == nil || in.roll == nil || in.accX == nil {
		return nil, errors.Wrap(errors.ErrMissingInput,
			"glide performance needs speed, sink, pitch, roll and longitudinal acceleration")
	}
	return in, nil
}

// windField carries the derived wind channels for lookups.
type windField struct {
	head *data.TimeSeries[float64]
}

func (w *windField) headAt(t float64) (float64, bool) {
	return w.head.ValueAt(t)
}

// deriveWind computes wind direction, speed, the angle between the
// vehicle's heading and the wind, and the head-wind component.
func deriveWind(reg *registry.Registry, in *glideInputs, epoch uint64) *windField {
	dir := derivedSeries(reg, system.PathWindDirection, "deg", epoch)
	spd := derivedSeries(reg, system.PathWindSpeed, "m/s", epoch)
	rel := derivedSeries(reg, system.PathWindRelative, "deg", epoch)
	head := derivedSeries(reg, system.PathHeadWind, "m/s", epoch)

	in.windE.Each(func(t, e float64) {
		n, ok := in.windN.ValueAt(t)
		if !ok {
			return
		}
		// aeronautic convention: direction the wind comes FROM, 0 = north
		d := math.Atan2(-e, -n) / deg2rad
		if d < 0 {
			d += 360
		}
		w := math.Hypot(e, n)
		dir.Append(d, t)
		spd.Append(w, t)

		yaw, ok := in.yaw.ValueAt(t)
		if !ok {
			return
		}
		// angle between heading and where the wind blows to
		recip := (d + 180) * deg2rad
		yawR := yaw * deg2rad
		a := math.Acos(math.Cos(yawR)*math.Cos(recip) + math.Sin(yawR)*math.Sin(recip))
		rel.Append(a/deg2rad, t)
		head.Append(-math.Cos(a)*w, t)
	})

	return &windField{head: head}
}
