// Package units provides shared constants and conversion for the angle and
// frequency units used on command lines and plot axes
package units

import "math"

// Angle unit constants
const (
	Rad = "rad"
	Deg = "deg"
)

// Frequency unit constants
const (
	Hz  = "hz"
	GHz = "ghz"
	THz = "thz"
)

// ValidAngleUnits contains all valid angle unit values
var ValidAngleUnits = []string{Rad, Deg}

// ValidFrequencyUnits contains all valid frequency unit values
var ValidFrequencyUnits = []string{Hz, GHz, THz}

// IsValidAngle checks if the given unit is in the list of valid angle units
func IsValidAngle(unit string) bool {
	for _, validUnit := range ValidAngleUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// IsValidFrequency checks if the given unit is in the list of valid frequency units
func IsValidFrequency(unit string) bool {
	for _, validUnit := range ValidFrequencyUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidAngleUnitsString returns a comma-separated string of valid angle units for error messages
func GetValidAngleUnitsString() string {
	return "rad, deg"
}

// GetValidFrequencyUnitsString returns a comma-separated string of valid frequency units for error messages
func GetValidFrequencyUnitsString() string {
	return "hz, ghz, thz"
}

// ConvertAngle converts an angle from radians to the target units.
// Grids store angles in radians.
func ConvertAngle(angleRad float64, targetUnits string) float64 {
	switch targetUnits {
	case Deg:
		return angleRad * 180 / math.Pi
	case Rad:
		return angleRad // no conversion needed
	default:
		return angleRad // default to radians if unknown unit
	}
}

// ConvertFrequency converts a frequency from Hz to the target units.
// Grids store frequencies in Hz.
func ConvertFrequency(freqHz float64, targetUnits string) float64 {
	switch targetUnits {
	case GHz:
		return freqHz * 1e-9
	case THz:
		return freqHz * 1e-12
	case Hz:
		return freqHz // no conversion needed
	default:
		return freqHz // default to Hz if unknown unit
	}
}

// Degrees converts radians to degrees
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Radians converts degrees to radians
func Radians(deg float64) float64 { return deg * math.Pi / 180 }
