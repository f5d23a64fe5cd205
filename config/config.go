package config

// Config collects the tunables of the telemetry model. Zero values mean
// "use the documented default"; Normalize fills them in.
type Config struct {
	Time struct {
		// Jump tolerances in seconds, see DefaultMaxBackJumpSec.
		MaxBackJumpSec    float64 `yaml:"max_back_jump_sec"`
		MaxForwardJumpSec float64 `yaml:"max_forward_jump_sec"`
	} `yaml:"time"`

	Flightbook struct {
		AltMin      float64 `yaml:"alt_min"`      // m above ground
		ThrottleMin float64 `yaml:"throttle_min"` // percent
	} `yaml:"flightbook"`

	Stats struct {
		// Relative accuracy of the percentile sketches in the summary.
		SketchAccuracy float64 `yaml:"sketch_accuracy"`
	} `yaml:"stats"`

	Export struct {
		Dir         string `yaml:"dir"`
		Compression string `yaml:"compression"` // zstd, snappy, gzip, none
	} `yaml:"export"`

	Log struct {
		Level string `yaml:"level"` // debug, info, warn, error
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
}

// Default returns a Config with every field at its documented default.
func Default() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize replaces unset fields with defaults.
func (c *Config) Normalize() {
	if c.Time.MaxBackJumpSec <= 0 {
		c.Time.MaxBackJumpSec = DefaultMaxBackJumpSec
	}
	if c.Time.MaxForwardJumpSec <= 0 {
		c.Time.MaxForwardJumpSec = DefaultMaxForwardJumpSec
	}
	if c.Flightbook.AltMin == 0 {
		c.Flightbook.AltMin = DefaultFlyingAltMin
	}
	if c.Flightbook.ThrottleMin == 0 {
		c.Flightbook.ThrottleMin = DefaultFlyingThrottleMin
	}
	if c.Stats.SketchAccuracy <= 0 {
		c.Stats.SketchAccuracy = DefaultSketchAccuracy
	}
	if c.Export.Compression == "" {
		c.Export.Compression = "zstd"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
