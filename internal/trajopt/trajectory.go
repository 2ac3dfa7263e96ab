package trajopt

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sciborgs1155/aion/internal/dynamics"
	"github.com/sciborgs1155/aion/internal/shot"
)

// Trajectory is a solved flight: N knots spaced Duration/N apart.
type Trajectory struct {
	Duration float64
	Knots    []dynamics.State
}

// Step returns the integration step between knots.
func (t *Trajectory) Step() float64 {
	return t.Duration / float64(len(t.Knots))
}

// InitialVelocity returns the launch velocity.
func (t *Trajectory) InitialVelocity() r3.Vec {
	return t.Knots[0].Velocity()
}

// Final returns the last knot.
func (t *Trajectory) Final() dynamics.State {
	return t.Knots[len(t.Knots)-1]
}

// Positions returns the knot positions in order.
func (t *Trajectory) Positions() []r3.Vec {
	out := make([]r3.Vec, len(t.Knots))
	for i, s := range t.Knots {
		out[i] = s.Position()
	}
	return out
}

// LaunchSettings converts the launch velocity to speed and angle.
func (t *Trajectory) LaunchSettings() (shot.Settings, error) {
	return shot.Extract(t.InitialVelocity())
}
