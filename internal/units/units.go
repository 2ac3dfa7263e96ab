// Package units provides shared constants and conversions for the speed and
// angle units launch settings are reported in.
package units

import "math"

// Speed unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
	FPS  = "fps"
)

// Angle unit constants
const (
	Radians = "rad"
	Degrees = "deg"
)

// ValidUnits contains all valid speed unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH, FPS}

// IsValid checks if the given unit is in the list of valid speed units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "mps, mph, kmph, kph, fps"
}

// ConvertSpeed converts a speed from meters per second to the target units.
// The solver works in m/s throughout.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPS:
		return speedMPS
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	case FPS:
		return speedMPS / 0.3048
	default:
		return speedMPS
	}
}

// ConvertToMPS is the inverse of ConvertSpeed.
func ConvertToMPS(speed float64, fromUnits string) float64 {
	switch fromUnits {
	case MPH:
		return speed / 2.2369362920544
	case KMPH, KPH:
		return speed / 3.6
	case FPS:
		return speed * 0.3048
	default:
		return speed
	}
}

// ConvertAngle converts an angle in radians to the target units.
func ConvertAngle(rad float64, targetUnits string) float64 {
	if targetUnits == Degrees {
		return rad * 180 / math.Pi
	}
	return rad
}

// DegreesToRadians converts degrees to radians.
func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
