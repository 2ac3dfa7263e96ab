package trajopt

import (
	"context"
	"math"
	"time"

	"github.com/sciborgs1155/aion/internal/monitoring"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// program is a smooth constrained minimisation in the form
//
//	min f(x)  s.t.  h(x) = 0,  g(x) ≤ 0.
type program interface {
	Dim() int
	NumEq() int
	NumIneq() int
	Objective(x []float64) float64
	ObjectiveGrad(grad, x []float64)
	Constraints(eq, ineq, x []float64)
	// AccumulateJacT adds J_hᵀ·we + J_gᵀ·wi to grad.
	AccumulateJacT(grad, x, we, wi []float64)
}

// almSettings bounds one augmented Lagrangian run.
type almSettings struct {
	MaxOuter       int
	MaxInner       int
	Tolerance      float64
	InitialPenalty float64
	PenaltyGrowth  float64
	MaxPenalty     float64
	// Budget is the wall time left for this run.
	Budget time.Duration
}

// almOutcome is the last iterate of a run and how the run ended.
type almOutcome struct {
	X            []float64
	Objective    float64
	MaxViolation float64
	Iterations   int
	Status       Status
}

// Relative objective change below which a feasible iterate is final.
const objectiveStall = 1e-4

// augmentedLagrangian minimises prog from x0 with the Powell-Hestenes-
// Rockafellar method:
//
//	L(x) = f + Σ λ_i h_i + ρ/2 Σ h_i² + 1/(2ρ) Σ (max(0, μ_j + ρ g_j)² − μ_j²)
//
// Each outer iteration minimises L with LBFGS and then updates the
// multipliers. ρ grows when the violation fails to shrink by a factor of
// four. The clock and ctx are checked before every inner solve.
func (s *Solver) augmentedLagrangian(ctx context.Context, prog program, x0 []float64, cfg almSettings) almOutcome {
	start := s.clock.Now()
	nEq, nIn := prog.NumEq(), prog.NumIneq()

	x := append([]float64(nil), x0...)
	lambda := make([]float64, nEq)
	mu := make([]float64, nIn)
	rho := cfg.InitialPenalty

	eq := make([]float64, nEq)
	in := make([]float64, nIn)
	we := make([]float64, nEq)
	wi := make([]float64, nIn)

	lagrangian := func(z []float64) float64 {
		f := prog.Objective(z)
		prog.Constraints(eq, in, z)
		l := f
		for i, h := range eq {
			l += lambda[i]*h + rho/2*h*h
		}
		for j, g := range in {
			t := math.Max(0, mu[j]+rho*g)
			l += (t*t - mu[j]*mu[j]) / (2 * rho)
		}
		if math.IsNaN(l) || math.IsInf(l, 0) {
			// steers the line search back towards finite states
			return math.Inf(1)
		}
		return l
	}
	gradient := func(grad, z []float64) {
		prog.ObjectiveGrad(grad, z)
		prog.Constraints(eq, in, z)
		for i, h := range eq {
			we[i] = lambda[i] + rho*h
		}
		for j, g := range in {
			wi[j] = math.Max(0, mu[j]+rho*g)
		}
		prog.AccumulateJacT(grad, z, we, wi)
		for i, v := range grad {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				grad[i] = 0
			}
		}
	}

	out := almOutcome{X: x, Status: StatusIterationLimit}
	prevViolation := math.Inf(1)
	prevObjective := math.NaN()

	for iter := 1; iter <= cfg.MaxOuter; iter++ {
		if ctx.Err() != nil {
			out.Status = StatusCancelled
			return out
		}
		remaining := cfg.Budget - s.clock.Since(start)
		if remaining <= 0 {
			out.Status = StatusTimeout
			return out
		}

		res, err := optimize.Minimize(
			optimize.Problem{Func: lagrangian, Grad: gradient},
			x,
			&optimize.Settings{
				MajorIterations:   cfg.MaxInner,
				GradientThreshold: 1e-8,
				Runtime:           remaining,
				Converger: &optimize.FunctionConverge{
					Absolute:   1e-10,
					Relative:   1e-10,
					Iterations: 20,
				},
			},
			&optimize.LBFGS{},
		)
		if res == nil {
			monitoring.Logf("[trajopt] inner solve failed: %v", err)
			out.Status = StatusNumericalError
			return out
		}
		// A line search failure still leaves a usable best point; an
		// infinite F means no finite point was found and x is kept.
		if !math.IsInf(res.F, 0) && !math.IsNaN(res.F) && allFinite(res.X) {
			copy(x, res.X)
		}

		f := prog.Objective(x)
		prog.Constraints(eq, in, x)
		viol := maxViolation(eq, in)
		out.X, out.Objective, out.MaxViolation, out.Iterations = x, f, viol, iter
		if math.IsNaN(f) || math.IsNaN(viol) || math.IsInf(viol, 0) {
			out.Status = StatusNumericalError
			return out
		}

		for i, h := range eq {
			lambda[i] += rho * h
		}
		for j, g := range in {
			mu[j] = math.Max(0, mu[j]+rho*g)
		}

		if viol <= cfg.Tolerance && iter >= 2 &&
			math.Abs(f-prevObjective) <= objectiveStall*(1+math.Abs(f)) {
			out.Status = StatusSolved
			return out
		}
		if viol > 0.25*prevViolation {
			rho = math.Min(rho*cfg.PenaltyGrowth, cfg.MaxPenalty)
		}
		prevViolation, prevObjective = viol, f
	}

	if out.MaxViolation <= cfg.Tolerance {
		out.Status = StatusIterationLimit
	} else {
		out.Status = StatusInfeasible
	}
	return out
}

// maxViolation is the largest |h_i| or positive g_j.
func maxViolation(eq, in []float64) float64 {
	var v float64
	if len(eq) > 0 {
		v = math.Max(v, floats.Norm(eq, math.Inf(1)))
	}
	if len(in) > 0 {
		v = math.Max(v, floats.Max(in))
	}
	return v
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
