// Package engine implements the cutting-plane loop: it tightens a big-M
// relaxation of a disjunctive program with cuts separated against the
// convex-hull relaxation until improvement stops, then hands the tightened
// model to the discrete solver.
package engine

import (
	"context"
	"log/slog"
	"math"

	"github.com/cenkalti/backoff/v5"

	"github.com/disjunct/cutplane/internal/model"
	"github.com/disjunct/cutplane/internal/relax"
	"github.com/disjunct/cutplane/internal/solve"
)

// RunStatus is the terminal state of the cutting loop. Every status
// proceeds to the final discrete solve; they differ in why the loop
// stopped.
type RunStatus int

const (
	// StatusConverged means the candidate reached the hull relaxation:
	// the separation distance fell below the cut tolerance.
	StatusConverged RunStatus = iota

	// StatusStalled means the objective improvement dropped within
	// epsilon without reaching the hull.
	StatusStalled

	// StatusRegressed means the objective got worse between iterations,
	// which indicates solver noise rather than genuine convergence.
	StatusRegressed

	// StatusIterationLimit means the configured cap was hit first.
	StatusIterationLimit
)

func (s RunStatus) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusStalled:
		return "stalled"
	case StatusRegressed:
		return "regressed"
	case StatusIterationLimit:
		return "iteration-limit"
	default:
		return "unknown"
	}
}

// IterationRecord is the per-iteration state kept for diagnostics.
type IterationRecord struct {
	Iteration  int     `json:"iteration"`
	Objective  float64 `json:"objective"`
	Delta      float64 `json:"delta"`
	DistanceSq float64 `json:"distanceSq"`
	CutAdded   bool    `json:"cutAdded"`
}

// Result is the outcome of a run: the tightened model with its discrete
// solve, the full cut history, and the iteration trace.
type Result struct {
	Status     RunStatus
	Iterations int
	Cuts       []Cut
	History    []IterationRecord

	// RelaxedObjective is the weak relaxation's objective at the last
	// iteration, a bound on the true optimum.
	RelaxedObjective float64

	// FinalObjective and FinalValues come from the discrete solve of the
	// cut-augmented model; Gap is FinalObjective - RelaxedObjective.
	FinalObjective float64
	FinalValues    map[string]float64
	Gap            float64

	// Model is the persisted, cut-augmented big-M instance the discrete
	// solver consumed. Retained for inspection.
	Model *model.Model
}

// Driver sequences relaxation construction, the cutting loop, and the
// final discrete solve. A Driver is reusable; each Run owns its relaxation
// instances exclusively and runs strictly sequentially.
type Driver struct {
	cfg        Config
	oracle     relax.Oracle
	continuous solve.Continuous
	discrete   solve.Discrete
}

// New builds a driver from a configuration, resolving both solver roles by
// name.
func New(cfg Config) (*Driver, error) {
	cont, err := solve.NewContinuous(cfg.ContinuousSolver)
	if err != nil {
		return nil, err
	}
	disc, err := solve.NewDiscrete(cfg.DiscreteSolver)
	if err != nil {
		return nil, err
	}
	return &Driver{
		cfg:        cfg,
		oracle:     relax.NewTransformer(cfg.BigM),
		continuous: cont,
		discrete:   disc,
	}, nil
}

// NewWithCollaborators builds a driver with explicit oracle and solvers.
func NewWithCollaborators(cfg Config, oracle relax.Oracle, cont solve.Continuous, disc solve.Discrete) *Driver {
	return &Driver{cfg: cfg, oracle: oracle, continuous: cont, discrete: disc}
}

// Run executes the cutting-plane loop on the program.
//
// The persisted big-M instance keeps its binaries throughout; the working
// weak instance is its integrality relaxation. Both receive every cut, so
// when the loop stops the discrete solve consumes a model whose integer
// structure is intact and whose continuous relaxation has been tightened.
func (d *Driver) Run(ctx context.Context, prog *model.DisjunctiveProgram) (*Result, error) {
	bigm, err := d.oracle.BigM(prog)
	if err != nil {
		return nil, err
	}
	weak := d.oracle.RelaxIntegrality(bigm)

	hullTemplate, err := d.oracle.ConvexHull(prog)
	if err != nil {
		return nil, err
	}
	hull := d.oracle.RelaxIntegrality(hullTemplate)

	reg := model.NewRegistry(weak)
	for _, inst := range []*model.Model{hull, bigm} {
		if err := reg.Validate(inst); err != nil {
			return nil, err
		}
	}
	slog.Info("Relaxations built",
		"program", prog.Name,
		"variables", reg.Len(),
		"weak_constraints", weak.NumConstraints(),
		"hull_constraints", hull.NumConstraints(),
	)

	monitor := NewMonitor(d.cfg.Epsilon)
	res := &Result{Model: bigm}

	iteration := 0
	status := StatusIterationLimit
loop:
	for {
		if d.cfg.MaxIterations > 0 && iteration >= d.cfg.MaxIterations {
			slog.Info("Iteration cap reached", "iterations", iteration)
			status = StatusIterationLimit
			break
		}

		weakRes, err := retrySolve(ctx, d.cfg, PhaseWeak, iteration, func() (*solve.Result, error) {
			return d.continuous.SolveContinuous(ctx, weak)
		})
		if err != nil {
			return nil, err
		}
		candidate, err := reg.Values(weak, weakRes.Values)
		if err != nil {
			return nil, err
		}
		res.RelaxedObjective = weakRes.Objective

		projection, err := retrySolve(ctx, d.cfg, PhaseSeparation, iteration, func() ([]float64, error) {
			return separate(ctx, d.continuous, reg, hull, candidate)
		})
		if err != nil {
			return nil, err
		}

		prev := monitor.Previous()
		decision := monitor.Observe(weakRes.Objective)
		delta := 0.0
		if !math.IsInf(prev, 1) {
			delta = prev - weakRes.Objective
		}
		record := IterationRecord{
			Iteration: iteration,
			Objective: weakRes.Objective,
			Delta:     delta,
		}

		cut, ok := buildCut(iteration, candidate, projection, d.cfg.CutTolerance)
		if !ok {
			slog.Info("Candidate reached the hull relaxation",
				"iteration", iteration, "objective", weakRes.Objective)
			res.History = append(res.History, record)
			status = StatusConverged
			break
		}
		record.DistanceSq = distanceSq(candidate, projection)
		record.CutAdded = true

		for _, inst := range []*model.Model{weak, bigm} {
			if err := cut.install(reg, inst); err != nil {
				return nil, err
			}
		}
		res.Cuts = append(res.Cuts, *cut)
		res.History = append(res.History, record)
		slog.Info("Added cut",
			"iteration", iteration,
			"objective", weakRes.Objective,
			"delta", record.Delta,
			"distance_sq", record.DistanceSq,
		)

		switch decision {
		case Improving:
			iteration++
		case Stalled:
			status = StatusStalled
			break loop
		case Regressed:
			status = StatusRegressed
			break loop
		}
	}

	res.Status = status
	res.Iterations = len(res.History)

	slog.Info("Cutting loop finished",
		"status", status.String(),
		"iterations", res.Iterations,
		"cuts", len(res.Cuts),
	)

	finalRes, err := d.discrete.SolveDiscrete(ctx, bigm)
	if err != nil {
		// The accumulated cuts stay available for inspection.
		return res, &SolveFailure{
			Phase:     PhaseFinal,
			Iteration: iteration,
			Status:    solve.StatusOf(err),
			Err:       err,
		}
	}
	res.FinalObjective = finalRes.Objective
	res.Gap = finalRes.Objective - res.RelaxedObjective
	res.FinalValues = make(map[string]float64, reg.Len())
	for _, h := range reg.Handles() {
		id, err := reg.Resolve(h, bigm)
		if err != nil {
			return nil, err
		}
		res.FinalValues[h.Name] = finalRes.Values[id]
	}

	slog.Info("Discrete solve finished",
		"objective", res.FinalObjective,
		"gap", res.Gap,
	)
	return res, nil
}

// retrySolve retries a solve that failed with a numerical error, with
// exponential backoff and a hard attempt cap. Infeasible, unbounded, and
// iteration-limited results are permanent: retrying cannot change them.
func retrySolve[T any](ctx context.Context, cfg Config, phase Phase, iteration int, op func() (T, error)) (T, error) {
	retries := cfg.SolveRetries
	if retries < 0 {
		retries = 0
	}
	attempt := 0
	wrapped := func() (T, error) {
		attempt++
		out, err := op()
		if err == nil {
			return out, nil
		}
		if solve.StatusOf(err) != solve.StatusError {
			return out, backoff.Permanent(err)
		}
		slog.Warn("Solve attempt failed",
			"phase", phase.String(), "iteration", iteration, "attempt", attempt, "error", err)
		return out, err
	}

	out, err := backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(retries)+1),
	)
	if err != nil {
		return out, &SolveFailure{
			Phase:     phase,
			Iteration: iteration,
			Status:    solve.StatusOf(err),
			Err:       err,
		}
	}
	return out, nil
}

func distanceSq(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
