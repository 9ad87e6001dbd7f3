package check

// Config holds the analysis tolerances and thresholds. It is an immutable
// value passed explicitly into every analysis call; there are no
// module-level mutable defaults.
//
// For each dynamics category the error threshold is strictly above the
// warning threshold and supersedes it: a sample meeting both reports only
// the Error.
type Config struct {
	// PositionEpsilon is the center distance below which two initial
	// positions count as duplicates rather than overlaps.
	PositionEpsilon float64

	// SpeedWarn and SpeedError bound derived speed in m/s.
	SpeedWarn  float64
	SpeedError float64

	// AccelWarn and AccelError bound the magnitude of derived
	// acceleration in m/s^2.
	AccelWarn  float64
	AccelError float64

	// SwimAngleWarn and SwimAngleError bound the magnitude of the swim
	// angle in radians.
	SwimAngleWarn  float64
	SwimAngleError float64
}

// DefaultConfig returns the documented stable defaults:
//
//	PositionEpsilon 1e-3 m
//	Speed           warn 55 m/s, error 83 m/s (roughly 200/300 km/h)
//	Acceleration    warn 9.8 m/s^2, error 19.6 m/s^2 (1g / 2g)
//	SwimAngle       warn 0.1 rad, error 0.2 rad
//
// The defaults are constants, never environment-dependent.
func DefaultConfig() Config {
	return Config{
		PositionEpsilon: 1e-3,
		SpeedWarn:       55.0,
		SpeedError:      83.0,
		AccelWarn:       9.8,
		AccelError:      19.6,
		SwimAngleWarn:   0.1,
		SwimAngleError:  0.2,
	}
}

// classify maps a derived value onto the two-level threshold pair.
// A value exactly at a threshold meets it. Returns (SeverityInfo, false)
// when neither threshold is met.
func classify(value, warn, err float64) (Severity, bool) {
	switch {
	case value >= err:
		return SeverityError, true
	case value >= warn:
		return SeverityWarning, true
	default:
		return SeverityInfo, false
	}
}
