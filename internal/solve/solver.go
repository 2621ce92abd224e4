// Package solve provides the in-process solvers behind the engine's
// continuous and discrete solver roles: a simplex kernel for linear
// programs, an away-step Frank-Wolfe method for least-distance
// projections, and a branch-and-bound wrapper for integer restrictions.
// Solvers are selected by configuration name through the factory.
package solve

import (
	"context"
	"errors"
	"fmt"

	"github.com/disjunct/cutplane/internal/model"
)

// Status is the termination condition of a solve.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusIterLimit
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusIterLimit:
		return "iteration-limit"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is a solver's outcome. Values is indexed by the model's variable
// IDs and is only meaningful when Status is StatusOptimal.
type Result struct {
	Status    Status
	Objective float64
	Values    []float64
}

// Continuous solves a model whose integrality has been relaxed. The model
// may carry a linear or a least-distance objective.
type Continuous interface {
	SolveContinuous(ctx context.Context, m *model.Model) (*Result, error)
}

// Discrete solves a model honoring its binary and integer variables. The
// model must carry a linear objective.
type Discrete interface {
	SolveDiscrete(ctx context.Context, m *model.Model) (*Result, error)
}

// statusError carries a non-optimal termination condition as an error so
// callers can branch on it with errors.As.
type statusError struct {
	status Status
	msg    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("solve terminated %s: %s", e.status, e.msg)
}

// StatusOf extracts the termination status from a solver error, or
// StatusError if the error carries none.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOptimal
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	return StatusError
}
