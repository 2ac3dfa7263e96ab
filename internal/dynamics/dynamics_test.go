package dynamics

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sciborgs1155/aion/internal/field"
)

func vacuum() field.Aero {
	a := field.Default().Aero
	a.AirDensity = 0
	return a
}

func TestDerivative_VacuumIsProjectileMotion(t *testing.T) {
	a := vacuum()
	s := State{1, 2, 3, -4, 0.5, 6}

	got := Derivative(a, s, 0)
	want := State{-4, 0.5, 6, 0, 0, -a.Gravity}
	assert.Equal(t, want, got)
}

func TestDerivative_DragOpposesEachComponent(t *testing.T) {
	a := field.Default().Aero
	s := State{0, 0, 0, -5, 3, 0}

	d := Derivative(a, s, 0.4)
	assert.Greater(t, d[3], 0.0, "negative vx must be decelerated toward zero")
	assert.Less(t, d[4], 0.0, "positive vy must be decelerated toward zero")

	// magnitude follows ½ρv²C_D A_D/m
	alpha := 0.4
	cd := a.DragCoeffBase + a.DragCoeffAngle*alpha*alpha
	area := a.RectangleArea()*math.Cos(alpha) + a.RingArea()*math.Sin(alpha)
	want := 0.5 * a.AirDensity * 25 * cd * area / a.Mass
	assert.InDelta(t, want, d[3], 1e-12)
}

func TestDerivative_LiftUsesHorizontalSpeed(t *testing.T) {
	a := field.Default().Aero
	alpha := 0.6
	s := State{0, 0, 0, 3, 4, 10}

	d := Derivative(a, s, alpha)
	cl := (0.15 + 1.4*alpha) / 2
	area := a.RectangleArea()*math.Sin(alpha) + a.RingArea()*math.Cos(alpha)
	lift := 0.5 * a.AirDensity * 25 * area * cl / a.Mass
	assert.InDelta(t, -a.Gravity+lift, d[5], 1e-12)
}

func TestRK4Step_ExactForVacuum(t *testing.T) {
	c := CoefficientsFor(vacuum(), 0)
	s := State{0, 0, 1, 3, -1, 4}
	h := 0.3

	got := c.RK4Step(s, h)
	g := c.Gravity
	want := State{
		3 * h,
		-h,
		1 + 4*h - g*h*h/2,
		3,
		-1,
		4 - g*h,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("RK4Step mismatch (-want +got):\n%s", diff)
	}
}

func TestRK4Step_MatchesFineEuler(t *testing.T) {
	a := field.Default().Aero
	alpha := 0.7
	c := CoefficientsFor(a, alpha)
	s0 := State{2, 4, 0.635, -4.5, 0.3, 5}
	dt := 0.05

	rk := c.RK4Step(s0, dt)

	const substeps = 20000
	ref := s0
	for i := 0; i < substeps; i++ {
		ref = c.EulerStep(ref, dt/substeps)
	}

	for i := range rk {
		assert.InDelta(t, ref[i], rk[i], 1e-5, "component %d", i)
	}
}

func TestRollout(t *testing.T) {
	c := CoefficientsFor(field.Default().Aero, 0.5)
	s0 := State{3, 4, 0.635, -5, 0, 4}

	knots := c.Rollout(s0, 0.04, 10)
	require.Len(t, knots, 10)
	assert.Equal(t, s0, knots[0])
	for k := 1; k < len(knots); k++ {
		assert.Equal(t, c.RK4Step(knots[k-1], 0.04), knots[k])
	}
	assert.Nil(t, c.Rollout(s0, 0.04, 0))
}

func TestRK4Step_PackageFunctionMatchesCoefficients(t *testing.T) {
	a := field.Default().Aero
	s := State{1, 1, 1, -2, 0, 3}
	assert.Equal(t, CoefficientsFor(a, 0.3).RK4Step(s, 0.1), RK4Step(a, s, 0.3, 0.1))
}

func TestPitch(t *testing.T) {
	assert.InDelta(t, math.Pi/4, Pitch(r3.Vec{X: -3, Y: 4, Z: 5}), 1e-12)
	assert.InDelta(t, 0, Pitch(r3.Vec{X: 1}), 1e-12)
	assert.InDelta(t, math.Pi/2, Pitch(r3.Vec{Z: 2}), 1e-12)
}

func TestStateAccessors(t *testing.T) {
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	v := r3.Vec{X: 4, Y: 5, Z: 6}
	s := NewState(p, v)
	assert.Equal(t, p, s.Position())
	assert.Equal(t, v, s.Velocity())
}
