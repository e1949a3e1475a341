package units

import (
	"math"
	"testing"
)

func TestConvertAngle(t *testing.T) {
	tests := []struct {
		name     string
		angleRad float64
		units    string
		expected float64
	}{
		{"pi to deg", math.Pi, Deg, 180.0},
		{"pi/2 to deg", math.Pi / 2, Deg, 90.0},
		{"pi to rad", math.Pi, Rad, math.Pi},
		{"unknown units default to rad", 1.5, "unknown", 1.5},
		{"zero", 0.0, Deg, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertAngle(tt.angleRad, tt.units)
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("ConvertAngle(%f, %s) = %f, want %f", tt.angleRad, tt.units, result, tt.expected)
			}
		})
	}
}

func TestConvertFrequency(t *testing.T) {
	tests := []struct {
		name     string
		freqHz   float64
		units    string
		expected float64
	}{
		{"89 GHz band", 89e9, GHz, 89.0},
		{"183 GHz band", 183e9, GHz, 183.0},
		{"1 THz", 1e12, THz, 1.0},
		{"pass through Hz", 5e9, Hz, 5e9},
		{"unknown units default to Hz", 5e9, "unknown", 5e9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertFrequency(tt.freqHz, tt.units)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ConvertFrequency(%g, %s) = %g, want %g", tt.freqHz, tt.units, result, tt.expected)
			}
		})
	}
}

func TestIsValidAngle(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid rad", Rad, true},
		{"valid deg", Deg, true},
		{"invalid unit", "invalid", false},
		{"empty string", "", false},
		{"case sensitive", "DEG", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidAngle(tt.unit); got != tt.expected {
				t.Errorf("IsValidAngle(%q) = %v, want %v", tt.unit, got, tt.expected)
			}
		})
	}
}

func TestIsValidFrequency(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid hz", Hz, true},
		{"valid ghz", GHz, true},
		{"valid thz", THz, true},
		{"invalid unit", "mhz", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidFrequency(tt.unit); got != tt.expected {
				t.Errorf("IsValidFrequency(%q) = %v, want %v", tt.unit, got, tt.expected)
			}
		})
	}
}

func TestRoundTripDegreesRadians(t *testing.T) {
	for _, deg := range []float64{0, 30, 90, 180, 359.9} {
		if got := Degrees(Radians(deg)); math.Abs(got-deg) > 1e-12 {
			t.Errorf("Degrees(Radians(%f)) = %f", deg, got)
		}
	}
}
