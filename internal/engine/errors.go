package engine

import (
	"fmt"

	"github.com/disjunct/cutplane/internal/solve"
)

// Phase identifies which solve of the loop failed.
type Phase int

const (
	PhaseWeak Phase = iota
	PhaseSeparation
	PhaseFinal
)

func (p Phase) String() string {
	switch p {
	case PhaseWeak:
		return "weak"
	case PhaseSeparation:
		return "separation"
	case PhaseFinal:
		return "final"
	default:
		return "unknown"
	}
}

// SolveFailure wraps a failed solver invocation with the loop phase it
// occurred in. Weak and separation failures abort the loop; a final
// failure is reported alongside a Result that still carries the
// accumulated cuts.
type SolveFailure struct {
	Phase     Phase
	Iteration int
	Status    solve.Status
	Err       error
}

func (e *SolveFailure) Error() string {
	return fmt.Sprintf("%s solve failed at iteration %d (%s): %v", e.Phase, e.Iteration, e.Status, e.Err)
}

func (e *SolveFailure) Unwrap() error { return e.Err }
