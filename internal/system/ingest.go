package system

import (
	"fmt"
	"math"

	"github.com/xtxerr/flightlog/config"
)

// Ingestion operations, one per semantic message category. Each resolves
// its channels (created with units on first write) and appends one sample
// per field at the current logical time.

const rad2deg = 180.0 / math.Pi

// TrackAttitude records body angles and angular rates, both in radians.
func (s *System) TrackAttitude(roll, pitch, yaw, rollSpeed, pitchSpeed, yawSpeed float64) {
	track(s, PathRoll, "deg", roll*rad2deg)
	track(s, PathPitch, "deg", pitch*rad2deg)
	track(s, PathYaw, "deg", yaw*rad2deg)
	track(s, PathRollSpeed, "deg/s", rollSpeed*rad2deg)
	track(s, PathPitchSpeed, "deg/s", pitchSpeed*rad2deg)
	track(s, PathYawSpeed, "deg/s", yawSpeed*rad2deg)
}

// TrackPosition records the fused global position. Headings above 360
// mean "no data" and are skipped.
func (s *System) TrackPosition(latDeg, lonDeg, altMSL, altRel, headingDeg float64) {
	track(s, PathLat, "deg", latDeg)
	track(s, PathLon, "deg", lonDeg)
	track(s, PathAltMSL, "m", altMSL)
	track(s, PathAltRel, "m", altRel)
	if headingDeg <= config.HeadingMaxDeg {
		track(s, PathHeading, "deg", headingDeg)
	}
}

// TrackSpeedNED records velocity in the local north/east/down frame.
func (s *System) TrackSpeedNED(vn, ve, vd float64) {
	track(s, PathSpeedNorth, "m/s", vn)
	track(s, PathSpeedEast, "m/s", ve)
	track(s, PathSpeedDown, "m/s", vd)
}

// TrackFlightPerformance records the HUD-style flight data. Headings
// above 360 are skipped like in TrackPosition.
func (s *System) TrackFlightPerformance(airspeed, groundspeed, climb, throttlePct, alt, headingDeg float64) {
	track(s, PathAirspeed, "m/s", airspeed)
	track(s, PathGroundspeed, "m/s", groundspeed)
	track(s, PathClimb, "m/s", climb)
	track(s, PathThrottle, "%", throttlePct)
	track(s, PathAltitude, "m", alt)
	if headingDeg <= config.HeadingMaxDeg {
		track(s, PathHeading, "deg", headingDeg)
	}
}

// TrackGPS records one position fix.
func (s *System) TrackGPS(latDeg, lonDeg, altM, hdop, vdop, speed, courseDeg float64) {
	track(s, PathGPSLat, "deg", latDeg)
	track(s, PathGPSLon, "deg", lonDeg)
	track(s, PathGPSAlt, "m", altM)
	track(s, PathGPSHDOP, "", hdop)
	track(s, PathGPSVDOP, "", vdop)
	track(s, PathGPSSpeed, "m/s", speed)
	if courseDeg <= config.HeadingMaxDeg {
		track(s, PathGPSCourse, "deg", courseDeg)
	}
}

// TrackGPSStatus records fix quality.
func (s *System) TrackGPSStatus(satellites, fixType uint32) {
	track(s, PathGPSSats, "", satellites)
	track(s, PathGPSFixType, "", fixType)
}

// TrackIMU records one raw inertial triad set. index distinguishes
// multiple IMUs (1-based).
func (s *System) TrackIMU(index int, acc, gyro, mag [3]float64) {
	group := fmt.Sprintf("IMU%d", index)
	axes := [3]string{"X", "Y", "Z"}
	for i, ax := range axes {
		track(s, group+"/acc"+ax, "mg", acc[i])
		track(s, group+"/gyro"+ax, "mrad/s", gyro[i])
		track(s, group+"/mag"+ax, "mGauss", mag[i])
	}
}

// TrackIMUHighRes records the calibrated high-resolution IMU set.
func (s *System) TrackIMUHighRes(acc, gyro, mag [3]float64, absPress, diffPress, temp float64) {
	axes := [3]string{"X", "Y", "Z"}
	for i, ax := range axes {
		track(s, "IMU/acc"+ax, "m/s/s", acc[i])
		track(s, "IMU/gyro"+ax, "rad/s", gyro[i])
		track(s, "IMU/mag"+ax, "Gauss", mag[i])
	}
	track(s, "IMU/pressure abs", "hPa", absPress)
	track(s, "IMU/pressure diff", "hPa", diffPress)
	track(s, "IMU/temperature", "degC", temp)
}

// TrackRadio records full link quality telemetry.
func (s *System) TrackRadio(rssi, remRSSI, noise, remNoise float64, rxErrors, fixed uint32) {
	track(s, PathRadioRSSI, "", rssi)
	track(s, PathRadioRemRSSI, "", remRSSI)
	track(s, PathRadioNoise, "", noise)
	track(s, PathRadioRemNoise, "", remNoise)
	track(s, PathRadioRxErrors, "", rxErrors)
	track(s, PathRadioFixed, "", fixed)
}

// TrackRadioRSSI records a bare signal-strength reading.
func (s *System) TrackRadioRSSI(rssi float64) {
	track(s, PathRadioRSSI, "", rssi)
}

// TrackRadioDropRate records the reported packet drop rate.
func (s *System) TrackRadioDropRate(pct float64) {
	track(s, PathRadioDropRate, "%", pct)
}

// TrackBattery records battery telemetry.
func (s *System) TrackBattery(voltage, current, remainingPct float64) {
	track(s, PathVoltage, "V", voltage)
	track(s, PathCurrent, "A", current)
	track(s, PathRemaining, "%", remainingPct)
}

// TrackPowerRails records the avionics supply rails.
func (s *System) TrackPowerRails(vcc, vservo float64) {
	track(s, PathRailVCC, "V", vcc)
	track(s, PathRailServo, "V", vservo)
}

// TrackSystemPerformance records autopilot board health. Zero or negative
// electrical readings mean the sensor is absent and are skipped.
func (s *System) TrackSystemPerformance(loadPct, boardVoltage, boardCurrent float64) {
	track(s, PathCPULoad, "%", loadPct)
	if boardVoltage > 0 {
		track(s, PathBoardVoltage, "V", boardVoltage)
	}
	if boardCurrent > 0 {
		track(s, PathBoardCurrent, "A", boardCurrent)
	}
}

// TrackAmbient records environmental readings.
func (s *System) TrackAmbient(tempC, pressureHPa float64) {
	track(s, PathAmbientTemp, "degC", tempC)
	track(s, PathAmbientPress, "hPa", pressureHPa)
}

// TrackMissionItem records a mission item upload.
func (s *System) TrackMissionItem(seq uint32) {
	track(s, PathMissionItem, "", seq)
}

// TrackMissionCurrent records the active mission item.
func (s *System) TrackMissionCurrent(seq uint32) {
	track(s, PathMissionCur, "", seq)
}

// TrackMissionRequest records a mission item request.
func (s *System) TrackMissionRequest(seq uint32) {
	track(s, PathMissionReq, "", seq)
}

// TrackRC records raw remote-control channel values, channel numbers
// starting at 1.
func (s *System) TrackRC(values []float64) {
	for i, v := range values {
		track(s, fmt.Sprintf("RC/channel %d", i+1), "us", v)
	}
}

// TrackActuators records servo/motor outputs, output numbers starting
// at 1.
func (s *System) TrackActuators(values []float64) {
	for i, v := range values {
		track(s, fmt.Sprintf("actuators/out %d", i+1), "us", v)
	}
}

// TrackErrorCounts records the autopilot's error counters.
func (s *System) TrackErrorCounts(counts [4]uint32) {
	for i, c := range counts {
		track(s, fmt.Sprintf("state/errors %d", i+1), "", c)
	}
}

// TrackSensors records the sensor presence/enable/health bitmasks.
func (s *System) TrackSensors(present, enabled, health uint32) {
	track(s, "state/sensors present", "bitmask", present)
	track(s, "state/sensors enabled", "bitmask", enabled)
	track(s, "state/sensors health", "bitmask", health)
}

// TrackNavigation records the navigation controller output.
func (s *System) TrackNavigation(navRoll, navPitch, navBearing, targetBearing, wpDistance, altError, aspdError, xtrackError float64) {
	track(s, PathNavRoll, "deg", navRoll)
	track(s, PathNavPitch, "deg", navPitch)
	track(s, PathNavBearing, "deg", navBearing)
	track(s, PathTargetBearing, "deg", targetBearing)
	track(s, PathWPDistance, "m", wpDistance)
	track(s, PathAltError, "m", altError)
	track(s, PathAspdError, "m/s", aspdError)
	track(s, PathXtrackError, "m", xtrackError)
}

// TrackStatusText records a free-text status message with its severity.
func (s *System) TrackStatusText(severity string, text string) {
	trackEvent(s, PathStatusText, "", severity+": "+text)
}

// Mode carries the decoded flight-mode flags of a heartbeat.
type Mode struct {
	Armed      bool
	Stabilized bool
	Guided     bool
	Manual     bool
}

// TrackHeartbeat records state transitions as change-only events and
// performs the one-shot vehicle/autopilot classification. A type change
// after classification is suspicious (two vehicles sharing an id) and is
// logged, but the recorded events still reflect the stream.
func (s *System) TrackHeartbeat(vehicle, autopilot string, mode Mode, status string) {
	if vehicle != "" {
		if s.vehicle == "" {
			s.vehicle = vehicle
			s.log.Info("vehicle classified", "type", vehicle)
		} else if s.vehicle != vehicle {
			s.log.Warn("vehicle type changed mid-stream", "was", s.vehicle, "now", vehicle)
		}
		trackEvent(s, PathStateVehicle, "", vehicle)
	}
	if autopilot != "" {
		if s.autopilot == "" {
			s.autopilot = autopilot
			s.log.Info("autopilot classified", "type", autopilot)
		} else if s.autopilot != autopilot {
			s.log.Warn("autopilot type changed mid-stream", "was", s.autopilot, "now", autopilot)
		}
		trackEvent(s, PathStateAutopilot, "", autopilot)
	}

	trackEvent(s, PathStateArmed, "", onOff(mode.Armed, "armed", "disarmed"))
	trackEvent(s, PathStateStabilized, "", onOff(mode.Stabilized, "stabilized", "free"))
	trackEvent(s, PathStateGuided, "", onOff(mode.Guided, "guided", "unguided"))
	trackEvent(s, PathStateManual, "", onOff(mode.Manual, "manual", "auto"))
	if status != "" {
		trackEvent(s, PathStateStatus, "", status)
	}
	if mode.Armed {
		s.everArmed = true
	}
}

func onOff(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}
