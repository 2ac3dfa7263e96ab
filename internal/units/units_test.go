package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid mps", MPS, true},
		{"valid mph", MPH, true},
		{"valid kmph", KMPH, true},
		{"valid kph", KPH, true},
		{"valid fps", FPS, true},
		{"invalid unit", "invalid", false},
		{"empty unit", "", false},
		{"uppercase MPS", "MPS", false}, // Case-sensitive
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValid(tt.unit))
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	assert.Equal(t, "mps, mph, kmph, kph, fps", GetValidUnitsString())
}

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		name  string
		mps   float64
		unit  string
		want  float64
		delta float64
	}{
		{"mps passthrough", 6.75, MPS, 6.75, 0},
		{"mph", 10, MPH, 22.369362920544, 1e-9},
		{"kmph", 10, KMPH, 36, 1e-9},
		{"kph alias", 10, KPH, 36, 1e-9},
		{"fps", 0.3048, FPS, 1, 1e-12},
		{"unknown defaults to mps", 5, "furlongs", 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ConvertSpeed(tt.mps, tt.unit), tt.delta)
		})
	}
}

func TestConvertToMPSRoundTrip(t *testing.T) {
	for _, unit := range ValidUnits {
		got := ConvertToMPS(ConvertSpeed(7, unit), unit)
		assert.InDelta(t, 7, got, 1e-9, unit)
	}
}

func TestConvertAngle(t *testing.T) {
	assert.InDelta(t, 90, ConvertAngle(math.Pi/2, Degrees), 1e-12)
	assert.Equal(t, 1.1, ConvertAngle(1.1, Radians))
	assert.InDelta(t, math.Pi/180*14, DegreesToRadians(14), 1e-15)
}
