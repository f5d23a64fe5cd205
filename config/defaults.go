// Package config provides configuration defaults and utilities
// for the flightlog application.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via config.yaml or command line flags.
package config

// =============================================================================
// Time Synchronization Defaults
// =============================================================================

const (
	// DefaultMaxBackJumpSec is the largest backward step between two
	// consecutive relative timestamps that is still accepted.
	// Override via config: time.max_back_jump_sec
	DefaultMaxBackJumpSec = 5.0

	// DefaultMaxForwardJumpSec is the largest forward step between two
	// consecutive relative timestamps that is still accepted. Log files
	// recorded across several flights legitimately exceed this; callers
	// pass allowJumps for those.
	// Override via config: time.max_forward_jump_sec
	DefaultMaxForwardJumpSec = 100.0

	// AbsoluteTimeYear separates absolute epoch timestamps from relative
	// (since boot) ones: a timestamp whose calendar year is later than this
	// is treated as absolute.
	AbsoluteTimeYear = 2000
)

// =============================================================================
// Flight Detection Defaults
// =============================================================================

const (
	// DefaultFlyingAltMin is the altitude above ground (m) above which the
	// flight book considers the vehicle airborne.
	// Override via config: flightbook.alt_min
	DefaultFlyingAltMin = 1.0

	// DefaultFlyingThrottleMin is the throttle (%) above which the flight
	// book considers the vehicle airborne.
	// Override via config: flightbook.throttle_min
	DefaultFlyingThrottleMin = 20.0
)

// =============================================================================
// Glide Performance Defaults
// =============================================================================

const (
	// GlideSpeedMin is both the minimum dynamic range (m/s) a speed series
	// must show to count as sensor data, and the minimum airspeed at which
	// a glide ratio sample is taken.
	GlideSpeedMin = 5.0

	// GlideAccXMax is the largest longitudinal acceleration magnitude
	// (m/s/s) at which flight still counts as stationary; above it kinetic
	// energy is being exchanged and the ratio would be bogus.
	GlideAccXMax = 2.0

	// GlidePitchMaxDeg and GlideRollMaxDeg bound the attitude envelope for
	// glide ratio samples.
	GlidePitchMaxDeg = 20.0
	GlideRollMaxDeg  = 45.0

	// GlideAvgWindowSec is the moving average window for the smoothed
	// glide ratio series.
	GlideAvgWindowSec = 5.0
)

// =============================================================================
// Link Accounting Defaults
// =============================================================================

const (
	// ThroughputDivisor converts the byte count accumulated since the last
	// throughput sample into the kbps-labeled rate series. Bytes/128
	// approximates kbit/s at the usual one-second sampling cadence.
	ThroughputDivisor = 128.0

	// HeadingMaxDeg marks the largest plausible heading; larger values are
	// "no data" and skipped.
	HeadingMaxDeg = 360.0
)

// =============================================================================
// Summary Defaults
// =============================================================================

const (
	// DefaultSketchAccuracy is the DDSketch relative accuracy used for the
	// percentile figures in system summaries.
	// Override via config: summary.sketch_accuracy
	DefaultSketchAccuracy = 0.01
)
