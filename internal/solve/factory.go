package solve

import "fmt"

// Solver names accepted by the factory. Both roles are selected by name so
// configurations can swap implementations without code changes.
const (
	NameSimplex     = "simplex"
	NameBranchBound = "branchbound"
)

// NewContinuous returns the continuous solver registered under name.
func NewContinuous(name string) (Continuous, error) {
	switch name {
	case "", NameSimplex:
		return NewSimplex(), nil
	default:
		return nil, fmt.Errorf("unknown continuous solver %q", name)
	}
}

// NewDiscrete returns the discrete solver registered under name.
func NewDiscrete(name string) (Discrete, error) {
	switch name {
	case "", NameBranchBound, "bnb":
		return NewBranchBound(), nil
	default:
		return nil, fmt.Errorf("unknown discrete solver %q", name)
	}
}
