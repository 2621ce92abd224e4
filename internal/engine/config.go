package engine

// Config holds all tunables of a cutting-plane run. Solvers are selected
// by name so a run can be reconfigured without code changes.
type Config struct {
	// ContinuousSolver names the solver used for the relaxation and
	// separation solves.
	ContinuousSolver string

	// DiscreteSolver names the solver used for the final integral solve.
	DiscreteSolver string

	// Epsilon is the minimum objective improvement per iteration; a
	// smaller (or negative) delta stops the loop.
	Epsilon float64

	// CutTolerance is the squared-distance threshold below which a
	// candidate counts as lying on the hull relaxation and no cut is
	// emitted.
	CutTolerance float64

	// MaxIterations caps the cutting loop; 0 means unlimited.
	MaxIterations int

	// SolveRetries is how many times a solve that fails with a numerical
	// error is retried before the run aborts. Infeasible and unbounded
	// results are never retried.
	SolveRetries int

	// BigM is the relaxation constant for disjunct rows.
	BigM float64
}

// DefaultConfig returns the standard run configuration.
func DefaultConfig() Config {
	return Config{
		ContinuousSolver: "simplex",
		DiscreteSolver:   "branchbound",
		Epsilon:          0.001,
		CutTolerance:     1e-8,
		MaxIterations:    50,
		SolveRetries:     2,
		BigM:             1e6,
	}
}
