package trajopt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/sciborgs1155/aion/internal/config"
	"github.com/sciborgs1155/aion/internal/field"
	"github.com/sciborgs1155/aion/internal/monitoring"
	"github.com/sciborgs1155/aion/internal/shot"
	"github.com/sciborgs1155/aion/internal/timeutil"
)

// ErrNoSolution is returned by Result.Err when a solve ended without a
// verified trajectory.
var ErrNoSolution = errors.New("no feasible trajectory found")

// Status is how a solve ended.
type Status string

const (
	StatusSolved         Status = "solved"
	StatusInfeasible     Status = "infeasible"      // ended with constraint violation above tolerance
	StatusIterationLimit Status = "iteration_limit" // feasible but not converged
	StatusTimeout        Status = "timeout"
	StatusCancelled      Status = "cancelled"
	StatusNumericalError Status = "numerical_error"
)

// Options configures a Solver.
type Options struct {
	Method             string
	MaxOuterIterations int
	MaxInnerIterations int
	Timeout            time.Duration
	Tolerance          float64
	// Margin turns the strict inequalities into g + Margin ≤ 0.
	Margin         float64
	InitialPenalty float64
	PenaltyGrowth  float64
	MaxPenalty     float64
	// Smoothing is the log-sum-exp temperature of the clearance rows.
	Smoothing float64
}

// OptionsFromConfig builds Options from a loaded ShotConfig.
func OptionsFromConfig(cfg *config.ShotConfig) Options {
	return Options{
		Method:             cfg.GetSolverMethod(),
		MaxOuterIterations: cfg.GetMaxOuterIterations(),
		MaxInnerIterations: cfg.GetMaxInnerIterations(),
		Timeout:            cfg.GetSolveTimeout(),
		Tolerance:          cfg.GetConstraintTolerance(),
		Margin:             cfg.GetStrictMargin(),
		InitialPenalty:     cfg.GetInitialPenalty(),
		PenaltyGrowth:      cfg.GetPenaltyGrowth(),
		MaxPenalty:         cfg.GetMaxPenalty(),
		Smoothing:          cfg.GetClearanceSmoothing(),
	}
}

// DefaultOptions returns Options built from the built-in defaults.
func DefaultOptions() Options {
	return OptionsFromConfig(config.EmptyShotConfig())
}

// Result describes one solve. Trajectory is set only when Status is
// StatusSolved.
type Result struct {
	RunID           string
	Status          Status
	Method          string
	Trajectory      *Trajectory
	Objective       float64
	MaxViolation    float64
	OuterIterations int
	Elapsed         time.Duration
}

// Err returns nil for a solved result and an error wrapping ErrNoSolution
// otherwise.
func (r Result) Err() error {
	if r.Status == StatusSolved {
		return nil
	}
	return fmt.Errorf("%w: %s after %d iterations (violation %.3g)",
		ErrNoSolution, r.Status, r.OuterIterations, r.MaxViolation)
}

// Solver computes launch trajectories for one field configuration. It
// holds no per-solve state and is safe for concurrent use.
type Solver struct {
	params field.Params
	opts   Options
	clock  timeutil.Clock
}

// NewSolver returns a Solver using the real clock.
func NewSolver(params field.Params, opts Options) *Solver {
	return &Solver{params: params, opts: opts, clock: timeutil.RealClock{}}
}

// WithClock returns a copy of s that measures budgets with c.
func (s *Solver) WithClock(c timeutil.Clock) *Solver {
	cp := *s
	cp.clock = c
	return &cp
}

// Params returns the field configuration.
func (s *Solver) Params() field.Params { return s.params }

// Options returns the solver options.
func (s *Solver) Options() Options { return s.opts }

func (s *Solver) almSettings(budget time.Duration) almSettings {
	return almSettings{
		MaxOuter:       s.opts.MaxOuterIterations,
		MaxInner:       s.opts.MaxInnerIterations,
		Tolerance:      s.opts.Tolerance,
		InitialPenalty: s.opts.InitialPenalty,
		PenaltyGrowth:  s.opts.PenaltyGrowth,
		MaxPenalty:     s.opts.MaxPenalty,
		Budget:         budget,
	}
}

// Solve finds the launch trajectory from ground position (x, y) that ends
// inside the opening, avoids the obstructions, and stays closest to the
// target. Invalid arguments return an error; an unsuccessful search is
// reported through Result.Status.
func (s *Solver) Solve(ctx context.Context, x, y float64) (Result, error) {
	p, err := NewProblem(s.params, s.params.Shooter(x, y), s.opts.Margin, s.opts.Smoothing)
	if err != nil {
		return Result{}, fmt.Errorf("invalid solve request at (%g, %g): %w", x, y, err)
	}

	start := s.clock.Now()
	res := Result{RunID: uuid.New().String(), Method: s.opts.Method}

	// behind the wall or off the carpet: nothing to search
	if !s.params.OnField(x, y) {
		res.Status = StatusInfeasible
		res.MaxViolation = math.Inf(1)
		res.Elapsed = s.clock.Since(start)
		monitoring.Logf("[trajopt] run=%s method=%s shooter=(%.3f, %.3f) status=%s off field",
			res.RunID, res.Method, x, y, res.Status)
		return res, nil
	}

	var out solveOutcome
	switch s.opts.Method {
	case config.MethodShooting:
		out = s.solveShooting(ctx, p, start)
	case config.MethodCollocation:
		out = s.solveCollocation(ctx, p, p.InitialGuess(), start)
	case config.MethodHybrid:
		out = s.solveHybrid(ctx, p, start)
	default:
		return Result{}, fmt.Errorf("unknown solver method %q", s.opts.Method)
	}

	res.Status = out.status
	res.Objective = out.objective
	res.MaxViolation = out.violation
	res.OuterIterations = out.iterations
	if out.status == StatusSolved {
		res.Trajectory = out.trajectory
	}
	res.Elapsed = s.clock.Since(start)

	monitoring.Logf("[trajopt] run=%s method=%s shooter=(%.3f, %.3f) status=%s objective=%.4f violation=%.2e outer=%d elapsed=%s",
		res.RunID, res.Method, x, y, res.Status, res.Objective, res.MaxViolation, res.OuterIterations, res.Elapsed)
	return res, nil
}

// OptimalSettings solves from (x, y) and returns the launch speed and angle,
// or ok=false when no verified trajectory was found.
func (s *Solver) OptimalSettings(ctx context.Context, x, y float64) (shot.Settings, bool) {
	res, err := s.Solve(ctx, x, y)
	if err != nil || res.Status != StatusSolved {
		return shot.Settings{}, false
	}
	settings, err := res.Trajectory.LaunchSettings()
	if err != nil {
		return shot.Settings{}, false
	}
	return settings, true
}

type solveOutcome struct {
	status     Status
	trajectory *Trajectory
	objective  float64
	violation  float64
	iterations int
}

func (s *Solver) remaining(start time.Time) time.Duration {
	return s.opts.Timeout - s.clock.Since(start)
}

// accept downgrades a converged run whose trajectory fails the exact checks.
func (s *Solver) accept(p *Problem, out solveOutcome) solveOutcome {
	if out.status != StatusSolved {
		return out
	}
	if err := p.Verify(out.trajectory, s.opts.Tolerance); err != nil {
		monitoring.Logf("[trajopt] converged point rejected: %v", err)
		out.status = StatusInfeasible
		out.trajectory = nil
	}
	return out
}

func (s *Solver) solveShooting(ctx context.Context, p *Problem, start time.Time) solveOutcome {
	prog := newShooting(p)
	r := s.augmentedLagrangian(ctx, prog, prog.warmStart(p.InitialGuess()), s.almSettings(s.remaining(start)))
	traj := prog.expand(r.X)
	return s.accept(p, solveOutcome{
		status:     r.Status,
		trajectory: traj,
		objective:  r.Objective,
		violation:  r.MaxViolation,
		iterations: r.Iterations,
	})
}

func (s *Solver) solveCollocation(ctx context.Context, p *Problem, z0 []float64, start time.Time) solveOutcome {
	prog := newCollocation(p)
	r := s.augmentedLagrangian(ctx, prog, z0, s.almSettings(s.remaining(start)))
	return s.accept(p, solveOutcome{
		status:     r.Status,
		trajectory: p.trajectoryFrom(r.X),
		objective:  r.Objective,
		violation:  r.MaxViolation,
		iterations: r.Iterations,
	})
}

// solveHybrid polishes a shooting solution with the full program and keeps
// the polished point only when it verifies and lowers the objective.
func (s *Solver) solveHybrid(ctx context.Context, p *Problem, start time.Time) solveOutcome {
	base := s.solveShooting(ctx, p, start)
	if base.status != StatusSolved {
		return base
	}
	polished := s.solveCollocation(ctx, p, p.vectorFrom(base.trajectory), start)
	polished.iterations += base.iterations
	if polished.status == StatusSolved && polished.objective < base.objective && !math.IsNaN(polished.objective) {
		return polished
	}
	return base
}
