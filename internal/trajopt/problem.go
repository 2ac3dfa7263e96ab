package trajopt

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sciborgs1155/aion/internal/collision"
	"github.com/sciborgs1155/aion/internal/dynamics"
	"github.com/sciborgs1155/aion/internal/field"
)

// Number of state components per knot.
const stateDim = 6

// Number of inequality rows that do not depend on the collision checks:
// speed, wall, four window edges, terminal vx, two pitch bounds, and T ≥ 0.
const pathIneqs = 10

// Problem is the transcribed trajectory program for one shooter position.
//
// The decision vector is z = [T, x_0, ..., x_{N-1}] where each x_k is a
// six-component state. Equality rows are the launch-point pin (3) followed
// by the RK4 defects (6 per interval). Inequality rows are written g ≤ 0:
// the path rows in the order listed by pathIneqs, then one clearance row
// per interval.
type Problem struct {
	params  field.Params
	shooter r3.Vec
	knots   int
	margin  float64
	tau     float64
}

// NewProblem validates the shooter position and builds the program.
func NewProblem(params field.Params, shooter r3.Vec, margin, tau float64) (*Problem, error) {
	if !finiteVec(shooter) {
		return nil, fmt.Errorf("shooter position %+v is not finite", shooter)
	}
	if params.KnotCount < 2 {
		return nil, fmt.Errorf("knot count must be at least 2, got %d", params.KnotCount)
	}
	if r3.Norm(r3.Sub(shooter, params.Target.Position)) < 1e-9 {
		return nil, errors.New("shooter position coincides with the target")
	}
	if margin < 0 || tau <= 0 {
		return nil, fmt.Errorf("invalid margin %g or smoothing %g", margin, tau)
	}
	return &Problem{
		params:  params,
		shooter: shooter,
		knots:   params.KnotCount,
		margin:  margin,
		tau:     tau,
	}, nil
}

// Knots returns N.
func (p *Problem) Knots() int { return p.knots }

// Shooter returns the pinned launch point.
func (p *Problem) Shooter() r3.Vec { return p.shooter }

// Dim returns len(z).
func (p *Problem) Dim() int { return 1 + stateDim*p.knots }

// NumEq returns the number of equality rows.
func (p *Problem) NumEq() int { return 3 + stateDim*(p.knots-1) }

// NumIneq returns the number of inequality rows.
func (p *Problem) NumIneq() int { return pathIneqs + p.knots - 1 }

// knotOffset is the index of knot k's first component in z.
func knotOffset(k int) int { return 1 + stateDim*k }

func stateAt(z []float64, k int) dynamics.State {
	var s dynamics.State
	copy(s[:], z[knotOffset(k):knotOffset(k)+stateDim])
	return s
}

// coefficients fixes the drag and lift factors for a launch velocity; the
// attack angle is the launch pitch for the whole flight.
func (p *Problem) coefficients(v0 r3.Vec) dynamics.Coefficients {
	return dynamics.CoefficientsFor(p.params.Aero, dynamics.Pitch(v0))
}

// InitialGuess returns the straight-line warm start: T = 1, positions on the
// segment from shooter to target, and every velocity at the speed limit
// pointing at the target.
func (p *Problem) InitialGuess() []float64 {
	z := make([]float64, p.Dim())
	z[0] = 1
	target := p.params.Target.Position
	dir := r3.Sub(target, p.shooter)
	scale := p.params.Limits.MaxLaunchVelocity / r3.Norm(dir)
	for k := 0; k < p.knots; k++ {
		pos := r3.Add(p.shooter, r3.Scale(float64(k)/float64(p.knots), dir))
		o := knotOffset(k)
		z[o+0], z[o+1], z[o+2] = pos.X, pos.Y, pos.Z
		z[o+3], z[o+4], z[o+5] = dir.X*scale, dir.Y*scale, dir.Z*scale
	}
	return z
}

// Objective is the summed squared distance of every knot to the target.
func (p *Problem) Objective(z []float64) float64 {
	t := p.params.Target.Position
	var sum float64
	for k := 0; k < p.knots; k++ {
		o := knotOffset(k)
		dx, dy, dz := z[o]-t.X, z[o+1]-t.Y, z[o+2]-t.Z
		sum += dx*dx + dy*dy + dz*dz
	}
	return sum
}

// ObjectiveGrad writes ∇f into grad.
func (p *Problem) ObjectiveGrad(grad, z []float64) {
	for i := range grad {
		grad[i] = 0
	}
	t := p.params.Target.Position
	for k := 0; k < p.knots; k++ {
		o := knotOffset(k)
		grad[o] = 2 * (z[o] - t.X)
		grad[o+1] = 2 * (z[o+1] - t.Y)
		grad[o+2] = 2 * (z[o+2] - t.Z)
	}
}

// defect writes x_{k+1} - RK4(x_k, T/N) into out.
func (p *Problem) defect(out []float64, z []float64, k int) {
	c := p.coefficients(stateAt(z, 0).Velocity())
	next := c.RK4Step(stateAt(z, k), z[0]/float64(p.knots))
	o := knotOffset(k + 1)
	for i := 0; i < stateDim; i++ {
		out[i] = z[o+i] - next[i]
	}
}

// pathConstraints writes the pathIneqs rows for duration T, launch velocity
// v0 and final state.
func (p *Problem) pathConstraints(out []float64, duration float64, v0 r3.Vec, final dynamics.State) {
	lim := p.params.Limits
	win := p.params.Window
	m := p.margin
	pitch := dynamics.Pitch(v0)

	out[0] = v0.X*v0.X + v0.Y*v0.Y + v0.Z*v0.Z - lim.MaxLaunchVelocity*lim.MaxLaunchVelocity
	out[1] = final[0] - (win.WallX - m)
	out[2] = (win.YMin + m) - final[1]
	out[3] = final[1] - (win.YMax - m)
	out[4] = (win.ZMin + m) - final[2]
	out[5] = final[2] - (win.ZMax - m)
	out[6] = final[3] + m
	out[7] = lim.MinLaunchAngle - pitch
	out[8] = pitch - lim.MaxLaunchAngle
	out[9] = -duration
}

// clearanceRow is the smoothed collision row for segment (a, b).
func (p *Problem) clearanceRow(a, b r3.Vec) float64 {
	return collision.Clearance(p.params.Geometry, a, b, p.tau) + p.margin
}

// Constraints evaluates every equality and inequality row at z.
func (p *Problem) Constraints(eq, ineq, z []float64) {
	s0 := stateAt(z, 0)
	eq[0] = s0[0] - p.shooter.X
	eq[1] = s0[1] - p.shooter.Y
	eq[2] = s0[2] - p.shooter.Z
	for k := 0; k < p.knots-1; k++ {
		p.defect(eq[3+stateDim*k:3+stateDim*(k+1)], z, k)
	}

	p.pathConstraints(ineq[:pathIneqs], z[0], s0.Velocity(), stateAt(z, p.knots-1))
	for k := 0; k < p.knots-1; k++ {
		ineq[pathIneqs+k] = p.clearanceRow(stateAt(z, k).Position(), stateAt(z, k+1).Position())
	}
}

// rollout integrates the dynamics from the pinned launch point.
func (p *Problem) rollout(duration float64, v0 r3.Vec) []dynamics.State {
	c := p.coefficients(v0)
	return c.Rollout(dynamics.NewState(p.shooter, v0), duration/float64(p.knots), p.knots)
}

// vectorFrom packs a trajectory into z.
func (p *Problem) vectorFrom(t *Trajectory) []float64 {
	z := make([]float64, p.Dim())
	z[0] = t.Duration
	for k, s := range t.Knots {
		copy(z[knotOffset(k):], s[:])
	}
	return z
}

// trajectoryFrom unpacks z.
func (p *Problem) trajectoryFrom(z []float64) *Trajectory {
	t := &Trajectory{Duration: z[0], Knots: make([]dynamics.State, p.knots)}
	for k := range t.Knots {
		t.Knots[k] = stateAt(z, k)
	}
	return t
}

// Verify checks a candidate trajectory against every constraint using the
// exact collision predicate instead of its smoothed encoding. tol bounds
// the allowed residual on the equality rows and on the speed and pitch
// limits; the window and the collision checks are strict.
func (p *Problem) Verify(t *Trajectory, tol float64) error {
	if t == nil || len(t.Knots) != p.knots {
		return errors.New("trajectory has the wrong number of knots")
	}
	if !(t.Duration > 0) || math.IsInf(t.Duration, 0) {
		return fmt.Errorf("duration %g is not positive", t.Duration)
	}
	for k, s := range t.Knots {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("knot %d is not finite", k)
			}
		}
	}

	if d := r3.Norm(r3.Sub(t.Knots[0].Position(), p.shooter)); d > tol {
		return fmt.Errorf("launch point is %.3g m from the shooter", d)
	}
	z := p.vectorFrom(t)
	def := make([]float64, stateDim)
	for k := 0; k < p.knots-1; k++ {
		p.defect(def, z, k)
		for i, v := range def {
			if math.Abs(v) > tol {
				return fmt.Errorf("dynamics defect %.3g at interval %d component %d", v, k, i)
			}
		}
	}

	v0 := t.InitialVelocity()
	lim := p.params.Limits
	if speed := r3.Norm(v0); speed > lim.MaxLaunchVelocity+tol {
		return fmt.Errorf("launch speed %.4f exceeds limit %.4f", speed, lim.MaxLaunchVelocity)
	}
	if pitch := dynamics.Pitch(v0); pitch < lim.MinLaunchAngle-tol || pitch > lim.MaxLaunchAngle+tol {
		return fmt.Errorf("launch pitch %.4f outside [%.4f, %.4f]", pitch, lim.MinLaunchAngle, lim.MaxLaunchAngle)
	}

	final := t.Final()
	if !p.params.Window.Contains(final.Position()) {
		return fmt.Errorf("final position %+v is outside the opening", final.Position())
	}
	if !(final[3] < 0) {
		return fmt.Errorf("final vx %.4f is not towards the wall", final[3])
	}
	if k := collision.FirstCrossing(p.params.Geometry, t.Positions()); k >= 0 {
		return fmt.Errorf("segment %d crosses an obstruction", k)
	}
	return nil
}

func vec(s []float64) r3.Vec { return r3.Vec{X: s[0], Y: s[1], Z: s[2]} }

func finiteVec(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
