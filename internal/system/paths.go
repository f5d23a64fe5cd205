package system

// Registry paths written by ingestion. Postprocessing reads the raw ones
// and writes the derived ones; keeping them in one place keeps the two
// sides in sync.
const (
	PathRoll       = "attitude/roll"
	PathPitch      = "attitude/pitch"
	PathYaw        = "attitude/yaw"
	PathRollSpeed  = "attitude/rollspeed"
	PathPitchSpeed = "attitude/pitchspeed"
	PathYawSpeed   = "attitude/yawspeed"

	PathLat     = "position/lat"
	PathLon     = "position/lon"
	PathAltMSL  = "position/alt msl"
	PathAltRel  = "position/alt rel"
	PathHeading = "position/heading"

	PathSpeedNorth = "speed/north"
	PathSpeedEast  = "speed/east"
	PathSpeedDown  = "speed/down"

	PathAirspeed    = "flightperf/airspeed"
	PathGroundspeed = "flightperf/groundspeed"
	PathClimb       = "flightperf/climb"
	PathThrottle    = "flightperf/throttle"
	PathAltitude    = "flightperf/altitude"

	PathGPSLat     = "GPS/lat"
	PathGPSLon     = "GPS/lon"
	PathGPSAlt     = "GPS/alt"
	PathGPSHDOP    = "GPS/hdop"
	PathGPSVDOP    = "GPS/vdop"
	PathGPSSpeed   = "GPS/speed"
	PathGPSCourse  = "GPS/course"
	PathGPSSats    = "GPS/satellites"
	PathGPSFixType = "GPS/fix type"

	PathVoltage   = "power/voltage"
	PathCurrent   = "power/current"
	PathRemaining = "power/remaining"
	PathRailVCC   = "power/vcc"
	PathRailServo = "power/servo rail"

	PathRadioRSSI     = "radio/rssi"
	PathRadioRemRSSI  = "radio/rssi remote"
	PathRadioNoise    = "radio/noise"
	PathRadioRemNoise = "radio/noise remote"
	PathRadioRxErrors = "radio/rx errors"
	PathRadioFixed    = "radio/packets fixed"
	PathRadioDropRate = "radio/drop rate"
	PathThroughput    = "radio/throughput"

	PathCPULoad       = "computer/load"
	PathBoardVoltage  = "computer/voltage"
	PathBoardCurrent  = "computer/current"
	PathAmbientTemp   = "ambient/temperature"
	PathAmbientPress  = "ambient/pressure"
	PathMissionItem   = "mission/item"
	PathMissionCur    = "mission/current"
	PathMissionReq    = "mission/request"
	PathNavRoll       = "navigation/nav roll"
	PathNavPitch      = "navigation/nav pitch"
	PathNavBearing    = "navigation/nav bearing"
	PathTargetBearing = "navigation/target bearing"
	PathWPDistance    = "navigation/wp distance"
	PathAltError      = "navigation/alt error"
	PathAspdError     = "navigation/aspd error"
	PathXtrackError   = "navigation/xtrack error"

	PathStateArmed      = "state/armed"
	PathStateStabilized = "state/stabilized"
	PathStateGuided     = "state/guided"
	PathStateManual     = "state/manual"
	PathStateStatus     = "state/status"
	PathStateVehicle    = "state/vehicle type"
	PathStateAutopilot  = "state/autopilot"
	PathStatusText      = "state/statustext"

	// written by postprocessing
	PathFlightEvents  = "flightbook/events"
	PathFlightCount   = "flightbook/flights"
	PathFlightTime    = "flightbook/flight time"
	PathFirstTakeoff  = "flightbook/first takeoff"
	PathLastLanding   = "flightbook/last landing"
	PathPower         = "power/power"
	PathCharge        = "power/charge"
	PathChargeTotal   = "power/charge total"
	PathConsumed      = "power/consumption"
	PathConsumedTotal = "power/consumption total"
	PathGlideDistance = "glide/path distance"
	PathGlideRatio    = "glide/ratio"
	PathGlideRatioAvg = "glide/ratio avg"
	PathGroundspeedNE = "glide/groundspeed ne"
	PathWindDirection = "glide/wind direction"
	PathWindSpeed     = "glide/wind speed"
	PathWindRelative  = "glide/wind relative"
	PathHeadWind      = "glide/head wind"
	PathAirspeedEst   = "glide/airspeed estimate"
)
