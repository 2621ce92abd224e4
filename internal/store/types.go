package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunConfig is the configuration snapshot persisted with a run so a
// summary can be interpreted without the run's process state.
type RunConfig struct {
	ContinuousSolver string  `json:"continuousSolver"`
	DiscreteSolver   string  `json:"discreteSolver"`
	Epsilon          float64 `json:"epsilon"`
	CutTolerance     float64 `json:"cutTolerance"`
	MaxIterations    int     `json:"maxIterations"`
	BigM             float64 `json:"bigM"`
}

// RunSummary is the persisted outcome of a cutting-plane run: the terminal
// status, the objective values, and the full cut history. All fields are
// serialized to JSON as runs/<runID>/summary.json.
type RunSummary struct {
	// RunID uniquely identifies the run.
	RunID string `json:"runId"`

	// Program is the name of the disjunctive program that was solved.
	Program string `json:"program"`

	// Status is the loop's terminal status string
	// (converged, stalled, regressed, iteration-limit).
	Status string `json:"status"`

	// Iterations is the number of loop passes executed.
	Iterations int `json:"iterations"`

	// Cuts is the number of cuts installed.
	Cuts int `json:"cuts"`

	// RelaxedObjective is the weak relaxation's last objective value.
	RelaxedObjective float64 `json:"relaxedObjective"`

	// FinalObjective is the discrete solve's objective value.
	FinalObjective float64 `json:"finalObjective"`

	// Gap is FinalObjective - RelaxedObjective.
	Gap float64 `json:"gap"`

	// FinalValues maps variable names to their discrete-solve values.
	FinalValues map[string]float64 `json:"finalValues,omitempty"`

	// StartedAt and FinishedAt bracket the run.
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	// Config is the run's configuration snapshot.
	Config RunConfig `json:"config"`
}

// NewRunID returns a fresh unique run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// Validate checks that the summary is structurally sound before saving.
func (s *RunSummary) Validate() error {
	if s.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if s.Program == "" {
		return &ValidationError{Field: "Program", Reason: "cannot be empty"}
	}
	if s.Status == "" {
		return &ValidationError{Field: "Status", Reason: "cannot be empty"}
	}
	if s.Iterations < 0 {
		return &ValidationError{Field: "Iterations", Reason: "cannot be negative"}
	}
	if s.Cuts < 0 {
		return &ValidationError{Field: "Cuts", Reason: "cannot be negative"}
	}
	if s.StartedAt.IsZero() {
		return &ValidationError{Field: "StartedAt", Reason: "cannot be zero"}
	}
	return nil
}

// RunInfo is the listing metadata for a stored run.
type RunInfo struct {
	RunID      string    `json:"runId"`
	Program    string    `json:"program"`
	Status     string    `json:"status"`
	FinishedAt time.Time `json:"finishedAt"`
}

// ValidationError reports an invalid summary field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// NotFoundError is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for it.
type NotFoundError struct {
	RunID string
}

// ErrNotFound is the comparison target for missing-run errors.
var ErrNotFound = &NotFoundError{}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("run not found: %s", e.RunID)
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
