package sweep

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sciborgs1155/aion/internal/config"
	"github.com/sciborgs1155/aion/internal/field"
	"github.com/sciborgs1155/aion/internal/monitoring"
	"github.com/sciborgs1155/aion/internal/shot"
	"github.com/sciborgs1155/aion/internal/trajopt"
)

// Solver is the part of trajopt.Solver a sweep uses.
type Solver interface {
	Solve(ctx context.Context, x, y float64) (trajopt.Result, error)
}

// Outcome is the solve result for one grid position.
type Outcome struct {
	Position Position
	Result   trajopt.Result
	// Settings is valid when Result.Status is solved.
	Settings shot.Settings
	// Err holds an invalid-request error from Solve.
	Err error
}

// Solved reports whether the position produced launch settings.
func (o Outcome) Solved() bool {
	return o.Err == nil && o.Result.Status == trajopt.StatusSolved
}

// Run solves every position with at most workers concurrent solves
// (workers <= 0 means one per CPU). Outcomes are returned in input order.
// Per-position failures are recorded in the outcome; the returned error is
// non-nil only when ctx ends before every position was attempted.
func Run(ctx context.Context, solver Solver, positions []Position, workers int) ([]Outcome, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	outcomes := make([]Outcome, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pos := range positions {
		if gctx.Err() != nil {
			break
		}
		i, pos := i, pos
		g.Go(func() error {
			outcomes[i] = solveOne(gctx, solver, pos)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}

	solved := 0
	for _, o := range outcomes {
		if o.Solved() {
			solved++
		}
	}
	monitoring.Logf("[sweep] solved %d/%d positions with %d workers", solved, len(positions), workers)
	return outcomes, nil
}

// RunConfigured builds a solver from cfg and sweeps the grid given by the
// x and y specs with cfg's worker count.
func RunConfigured(ctx context.Context, cfg *config.ShotConfig, xSpec, ySpec string) ([]Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	positions, err := Grid(xSpec, ySpec)
	if err != nil {
		return nil, err
	}
	solver := trajopt.NewSolver(field.ParamsFromConfig(cfg), trajopt.OptionsFromConfig(cfg))
	return Run(ctx, solver, positions, cfg.GetSweepWorkers())
}

func solveOne(ctx context.Context, solver Solver, pos Position) Outcome {
	out := Outcome{Position: pos}
	res, err := solver.Solve(ctx, pos.X, pos.Y)
	if err != nil {
		out.Err = err
		return out
	}
	out.Result = res
	if res.Status == trajopt.StatusSolved && res.Trajectory != nil {
		settings, err := res.Trajectory.LaunchSettings()
		if err != nil {
			out.Err = err
			return out
		}
		out.Settings = settings
	}
	return out
}
