package engine

import (
	"log/slog"
	"math"
)

// Decision is the monitor's verdict on one observed objective value.
type Decision int

const (
	// Improving means the objective improved by more than epsilon;
	// the loop continues.
	Improving Decision = iota

	// Stalled means the improvement was non-negative but within epsilon.
	Stalled

	// Regressed means the objective got worse. A regression is reported
	// distinctly from a stall but stops the loop the same way: it usually
	// signals solver noise rather than progress to be had.
	Regressed
)

func (d Decision) String() string {
	switch d {
	case Improving:
		return "improving"
	case Stalled:
		return "stalled"
	case Regressed:
		return "regressed"
	default:
		return "unknown"
	}
}

// Monitor tracks the relaxation objective sequence and decides when the
// cutting loop should stop. The previous value starts at +Inf so the first
// observation always continues.
type Monitor struct {
	previous float64
	epsilon  float64
}

// NewMonitor creates a monitor with the given improvement threshold.
func NewMonitor(epsilon float64) *Monitor {
	return &Monitor{previous: math.Inf(1), epsilon: epsilon}
}

// Observe records the current objective and classifies the step. The
// previous value is updated unconditionally, including on the terminating
// call, so diagnostics always reflect the last solve.
func (m *Monitor) Observe(current float64) Decision {
	delta := m.previous - current
	m.previous = current

	switch {
	case delta > m.epsilon:
		return Improving
	case delta < 0:
		slog.Debug("Objective regressed", "delta", delta)
		return Regressed
	default:
		return Stalled
	}
}

// Previous returns the last observed objective value.
func (m *Monitor) Previous() float64 { return m.previous }
