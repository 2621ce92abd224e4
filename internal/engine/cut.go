package engine

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/disjunct/cutplane/internal/model"
)

// Cut is a valid linear inequality sum(Coeffs[i] * v_i) >= RHS over the
// registered variables, in canonical registry order. Cuts are append-only:
// once installed they are never removed or re-weighted.
type Cut struct {
	// Iteration tags the cut with the loop pass that produced it.
	Iteration int `json:"iteration"`

	// Coeffs is the outward normal of the supporting hyperplane, aligned
	// with the registry's handle order.
	Coeffs []float64 `json:"coeffs"`

	// RHS is the hyperplane offset.
	RHS float64 `json:"rhs"`
}

// buildCut constructs the supporting hyperplane of the hull relaxation at
// the projection. The normal is d = projection - candidate; the inequality
// sum(d_i * (v_i - projection_i)) >= 0 separates the candidate from the
// hull without excluding any feasible point. When the squared norm of d is
// within tol the candidate already lies on or inside the hull and no cut
// exists: that is the degenerate-convergence signal, not an error.
func buildCut(iteration int, candidate, projection []float64, tol float64) (*Cut, bool) {
	d := make([]float64, len(candidate))
	floats.SubTo(d, projection, candidate)

	if floats.Dot(d, d) <= tol {
		return nil, false
	}
	return &Cut{
		Iteration: iteration,
		Coeffs:    d,
		RHS:       floats.Dot(d, projection),
	}, true
}

// install adds the cut as a constraint of the target instance, resolving
// each handle independently through the registry.
func (c *Cut) install(reg *model.Registry, target *model.Model) error {
	coeffs := make(map[int]float64, len(c.Coeffs))
	for _, h := range reg.Handles() {
		id, err := reg.Resolve(h, target)
		if err != nil {
			return err
		}
		coeffs[id] = c.Coeffs[h.Index]
	}
	name := fmt.Sprintf("cut%d", c.Iteration)
	return target.AddConstraint(name, coeffs, c.RHS, model.Inf())
}

// Violation returns RHS - sum(coeffs * point): positive when the point is
// cut off, non-positive when it satisfies the cut.
func (c *Cut) Violation(point []float64) float64 {
	return c.RHS - floats.Dot(c.Coeffs, point)
}
