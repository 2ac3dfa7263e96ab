// Package shot converts between launch velocity vectors and the settings a
// shooter mechanism is commanded with: speed, pitch and heading.
package shot

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sciborgs1155/aion/internal/dynamics"
	"github.com/sciborgs1155/aion/internal/field"
	"github.com/sciborgs1155/aion/internal/units"
)

// ErrZeroVelocity is returned when a launch vector has no magnitude.
var ErrZeroVelocity = errors.New("launch velocity is zero")

// Settings are the launch speed (m/s) and elevation angle (radians above
// the horizontal).
type Settings struct {
	Speed float64
	Angle float64
}

// SpeedIn returns the speed in the given unit (see package units).
func (s Settings) SpeedIn(unit string) float64 {
	return units.ConvertSpeed(s.Speed, unit)
}

// AngleDegrees returns the angle in degrees.
func (s Settings) AngleDegrees() float64 {
	return units.ConvertAngle(s.Angle, units.Degrees)
}

func (s Settings) String() string {
	return fmt.Sprintf("%.3f m/s @ %.2f°", s.Speed, s.AngleDegrees())
}

// Extract returns the speed and elevation of launch velocity v. The angle is
// π/2 − asin(|v_xy|/|v|): 0 for a horizontal vector, π/2 for a vertical
// one. The angle is unsigned; a downward vector reports its depression.
func Extract(v r3.Vec) (Settings, error) {
	speed := r3.Norm(v)
	if speed == 0 || math.IsNaN(speed) {
		return Settings{}, ErrZeroVelocity
	}
	if math.IsInf(speed, 0) {
		return Settings{}, fmt.Errorf("launch velocity %+v is not finite", v)
	}
	horizontal := math.Hypot(v.X, v.Y)
	// clamp guards asin against rounding just above 1
	ratio := math.Min(horizontal/speed, 1)
	return Settings{Speed: speed, Angle: math.Pi/2 - math.Asin(ratio)}, nil
}

// VelocityVector builds a launch vector from a heading (radians about +z,
// from +x), a pitch and a speed.
func VelocityVector(heading, pitch, speed float64) r3.Vec {
	xy := speed * math.Cos(pitch)
	sin, cos := math.Sincos(heading)
	return r3.Vec{X: xy * cos, Y: xy * sin, Z: speed * math.Sin(pitch)}
}

// Heading returns the direction of v projected on the ground.
func Heading(v r3.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// HeadingTo returns the ground heading from a point towards a target.
func HeadingTo(from, to r3.Vec) float64 {
	return Heading(r3.Sub(to, from))
}

// FlywheelSpeed returns the wheel angular speed (rad/s) that launches a
// note at |v| with a wheel of the given radius.
func FlywheelSpeed(v r3.Vec, radius float64) float64 {
	return r3.Norm(v) / radius
}

// NoteSpeed returns the launch speed produced by a wheel spinning at
// flywheel rad/s.
func NoteSpeed(flywheel, radius float64) float64 {
	return flywheel * radius
}

// RobotRelative subtracts the shooter's own ground velocity from a field
// relative launch vector, giving the vector the mechanism must produce.
func RobotRelative(fieldRelative r3.Vec, vx, vy float64) r3.Vec {
	return r3.Vec{X: fieldRelative.X - vx, Y: fieldRelative.Y - vy, Z: fieldRelative.Z}
}

// StationaryPitch is the drag-free launch pitch that carries a projectile
// from shooter to target at the given speed, taking the lower of the two
// ballistic arcs. ok is false when the target is out of reach.
func StationaryPitch(shooter, target r3.Vec, speed, gravity float64) (pitch float64, ok bool) {
	d := math.Hypot(target.X-shooter.X, target.Y-shooter.Y)
	h := target.Z - shooter.Z
	if d == 0 || gravity <= 0 {
		return 0, false
	}
	v2 := speed * speed
	rad := d*d*v2*v2 - gravity*d*d*(gravity*d*d+2*h*v2)
	if rad < 0 {
		return 0, false
	}
	return math.Atan((d*v2 - math.Sqrt(rad)) / (gravity * d * d)), true
}

// CanShoot reports whether launch vector v is within the pitch bounds
// (exclusive) and speed limit of a shooter.
func CanShoot(v r3.Vec, limits field.Limits) bool {
	p := dynamics.Pitch(v)
	return limits.MinLaunchAngle < p && p < limits.MaxLaunchAngle && r3.Norm(v) <= limits.MaxLaunchVelocity
}
