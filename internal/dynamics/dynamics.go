// Package dynamics models the note in flight: gravity, quadratic drag and a
// vertical lift term driven by a fixed attack angle, plus the integrators
// used to step it.
package dynamics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sciborgs1155/aion/internal/field"
)

// State is [px, py, pz, vx, vy, vz] in the field frame.
type State [6]float64

// Position returns the position part of s.
func (s State) Position() r3.Vec { return r3.Vec{X: s[0], Y: s[1], Z: s[2]} }

// Velocity returns the velocity part of s.
func (s State) Velocity() r3.Vec { return r3.Vec{X: s[3], Y: s[4], Z: s[5]} }

// NewState assembles a State from position and velocity.
func NewState(p, v r3.Vec) State {
	return State{p.X, p.Y, p.Z, v.X, v.Y, v.Z}
}

// add returns s + h·d.
func (s State) add(h float64, d State) State {
	var out State
	for i := range s {
		out[i] = s[i] + h*d[i]
	}
	return out
}

// Coefficients are the attack-angle dependent terms of the model. They are
// constant for a whole solve, so callers stepping many times compute them
// once.
type Coefficients struct {
	Gravity float64
	// drag acceleration is DragK·v|v| per horizontal component
	DragK float64
	// lift acceleration is LiftK·v_h²
	LiftK float64
}

// CoefficientsFor evaluates the drag and lift factors at attack angle alpha.
func CoefficientsFor(a field.Aero, alpha float64) Coefficients {
	cd := a.DragCoeffBase + a.DragCoeffAngle*alpha*alpha
	sin, cos := math.Sincos(alpha)
	ring := a.RingArea()
	rect := a.RectangleArea()
	dragArea := rect*cos + ring*sin
	liftArea := rect*sin + ring*cos
	cl := (a.LiftCoeffBase + a.LiftCoeffAngle*alpha) / 2

	return Coefficients{
		Gravity: a.Gravity,
		DragK:   0.5 * a.AirDensity * cd * dragArea / a.Mass,
		LiftK:   0.5 * a.AirDensity * liftArea * cl / a.Mass,
	}
}

// Eval returns the time derivative of s.
func (c Coefficients) Eval(s State) State {
	vx, vy, vz := s[3], s[4], s[5]
	return State{
		vx,
		vy,
		vz,
		-c.DragK * vx * math.Abs(vx),
		-c.DragK * vy * math.Abs(vy),
		-c.Gravity + c.LiftK*(vx*vx+vy*vy),
	}
}

// Derivative returns ds/dt for state s flying at attack angle alpha.
func Derivative(a field.Aero, s State, alpha float64) State {
	return CoefficientsFor(a, alpha).Eval(s)
}

// RK4Step advances s by h with the classical fourth-order Runge-Kutta scheme.
func (c Coefficients) RK4Step(s State, h float64) State {
	k1 := c.Eval(s)
	k2 := c.Eval(s.add(h/2, k1))
	k3 := c.Eval(s.add(h/2, k2))
	k4 := c.Eval(s.add(h, k3))

	var out State
	for i := range s {
		out[i] = s[i] + h/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out
}

// EulerStep advances s by h with explicit Euler. Only accurate for small h;
// used as an independent reference for RK4.
func (c Coefficients) EulerStep(s State, h float64) State {
	return s.add(h, c.Eval(s))
}

// RK4Step advances s by h at attack angle alpha.
func RK4Step(a field.Aero, s State, alpha, h float64) State {
	return CoefficientsFor(a, alpha).RK4Step(s, h)
}

// Rollout integrates n knots starting at s0 with step dt. The first knot
// is s0 itself.
func (c Coefficients) Rollout(s0 State, dt float64, n int) []State {
	if n <= 0 {
		return nil
	}
	knots := make([]State, n)
	knots[0] = s0
	for k := 1; k < n; k++ {
		knots[k] = c.RK4Step(knots[k-1], dt)
	}
	return knots
}

// Pitch returns the elevation of velocity v above the horizontal plane.
func Pitch(v r3.Vec) float64 {
	return math.Atan2(v.Z, math.Hypot(v.X, v.Y))
}
