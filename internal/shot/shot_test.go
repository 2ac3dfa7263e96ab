package shot

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sciborgs1155/aion/internal/dynamics"
	"github.com/sciborgs1155/aion/internal/field"
	"github.com/sciborgs1155/aion/internal/units"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		v         r3.Vec
		wantSpeed float64
		wantAngle float64
	}{
		{"horizontal", r3.Vec{X: 5}, 5, 0},
		{"vertical", r3.Vec{Z: 3}, 3, math.Pi / 2},
		{"45 degrees", r3.Vec{X: 1, Z: 1}, math.Sqrt2, math.Pi / 4},
		{"3-4-5 in plane", r3.Vec{X: -3, Y: 0, Z: 4}, 5, math.Atan2(4, 3)},
		{"off axis", r3.Vec{X: -2, Y: 2, Z: 1}, 3, math.Asin(1.0 / 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Extract(tt.v)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantSpeed, s.Speed, 1e-12)
			assert.InDelta(t, tt.wantAngle, s.Angle, 1e-12)
		})
	}
}

func TestExtractZeroVelocity(t *testing.T) {
	_, err := Extract(r3.Vec{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrZeroVelocity))
}

func TestExtractRejectsNonFinite(t *testing.T) {
	for _, v := range []r3.Vec{
		{X: math.NaN(), Z: 1},
		{X: math.Inf(1), Z: 1},
		{Z: math.Inf(-1)},
	} {
		_, err := Extract(v)
		assert.Error(t, err, "%+v", v)
	}
}

func TestExtractMatchesPitch(t *testing.T) {
	for _, v := range []r3.Vec{{X: -4.2, Y: 0.3, Z: 5.3}, {X: 1, Y: -1, Z: 0.2}, {X: 0.01, Z: 9}} {
		s, err := Extract(v)
		require.NoError(t, err)
		assert.InDelta(t, dynamics.Pitch(v), s.Angle, 1e-12)
	}
}

func TestVelocityVectorRoundTrip(t *testing.T) {
	heading, pitch, speed := 2.9, 0.9, 6.8
	v := VelocityVector(heading, pitch, speed)

	assert.InDelta(t, heading, Heading(v), 1e-12)
	assert.InDelta(t, pitch, dynamics.Pitch(v), 1e-12)
	assert.InDelta(t, speed, r3.Norm(v), 1e-12)

	s, err := Extract(v)
	require.NoError(t, err)
	assert.InDelta(t, speed, s.Speed, 1e-12)
	assert.InDelta(t, pitch, s.Angle, 1e-12)
}

func TestHeadingTo(t *testing.T) {
	from := r3.Vec{X: 2, Y: 4.1148}
	to := r3.Vec{X: 0, Y: 4.1148, Z: 2}
	assert.InDelta(t, math.Pi, math.Abs(HeadingTo(from, to)), 1e-12)
}

func TestFlywheelConversions(t *testing.T) {
	const radius = 0.0508
	v := r3.Vec{X: 3, Z: 4}
	w := FlywheelSpeed(v, radius)
	assert.InDelta(t, 5/radius, w, 1e-9)
	assert.InDelta(t, 5, NoteSpeed(w, radius), 1e-12)
}

func TestRobotRelative(t *testing.T) {
	got := RobotRelative(r3.Vec{X: -5, Y: 1, Z: 4}, -1, 0.5)
	assert.Equal(t, r3.Vec{X: -4, Y: 0.5, Z: 4}, got)
}

func TestStationaryPitch(t *testing.T) {
	const g = 9.81
	shooter := r3.Vec{X: 3, Y: 4.1148, Z: 0.635}
	target := r3.Vec{X: 0, Y: 4.1148, Z: 2}
	speed := 9.0

	pitch, ok := StationaryPitch(shooter, target, speed, g)
	require.True(t, ok)

	// vacuum flight to the target's horizontal distance lands at its height
	d := math.Hypot(target.X-shooter.X, target.Y-shooter.Y)
	tFlight := d / (speed * math.Cos(pitch))
	z := shooter.Z + speed*math.Sin(pitch)*tFlight - g*tFlight*tFlight/2
	assert.InDelta(t, target.Z, z, 1e-9)

	// lower arc: the other root is steeper
	assert.Less(t, pitch, math.Pi/4+math.Atan2(target.Z-shooter.Z, d)/2)
}

func TestStationaryPitchUnreachable(t *testing.T) {
	shooter := r3.Vec{X: 12, Y: 4, Z: 0.6}
	target := r3.Vec{X: 0, Y: 4, Z: 2}
	_, ok := StationaryPitch(shooter, target, 3, 9.81)
	assert.False(t, ok)

	_, ok = StationaryPitch(target, target, 7, 9.81)
	assert.False(t, ok)
}

func TestCanShoot(t *testing.T) {
	limits := field.Limits{MaxLaunchVelocity: 7, MinLaunchAngle: 0, MaxLaunchAngle: 1.1}

	assert.True(t, CanShoot(VelocityVector(math.Pi, 0.9, 6.5), limits))
	assert.False(t, CanShoot(VelocityVector(math.Pi, 0.9, 7.5), limits), "too fast")
	assert.False(t, CanShoot(VelocityVector(math.Pi, 1.2, 6.5), limits), "too steep")
	assert.False(t, CanShoot(VelocityVector(math.Pi, 0, 6.5), limits), "bounds are exclusive")
}

func TestSettingsUnits(t *testing.T) {
	s := Settings{Speed: 10, Angle: math.Pi / 3}
	assert.InDelta(t, 36, s.SpeedIn(units.KPH), 1e-9)
	assert.InDelta(t, 10, s.SpeedIn(units.MPS), 0)
	assert.InDelta(t, 60, s.AngleDegrees(), 1e-9)
	assert.Equal(t, "10.000 m/s @ 60.00°", s.String())
}
