package solve

import (
	"context"
	"fmt"
	"math"

	"github.com/disjunct/cutplane/internal/model"
)

// BranchBound solves models with binary and integer variables by
// depth-first branch-and-bound over the LP relaxation, branching on the
// most fractional integer variable and pruning against the incumbent.
type BranchBound struct {
	// LP is the relaxation solver for node subproblems.
	LP *Simplex

	// IntTol is the integrality tolerance: a value within IntTol of an
	// integer counts as integral.
	IntTol float64

	// MaxNodes caps the search; 0 means the default.
	MaxNodes int
}

const defaultMaxNodes = 100000

// NewBranchBound returns a BranchBound with default settings.
func NewBranchBound() *BranchBound {
	return &BranchBound{LP: NewSimplex(), IntTol: 1e-6, MaxNodes: defaultMaxNodes}
}

type bbNode struct {
	bounds map[int][2]float64
}

// SolveDiscrete finds the best integral solution of the model.
func (b *BranchBound) SolveDiscrete(ctx context.Context, m *model.Model) (*Result, error) {
	obj, ok := m.Objective().(*model.Linear)
	if !ok {
		return nil, fmt.Errorf("model %q needs a linear objective for a discrete solve, has %T", m.Name, m.Objective())
	}

	maxNodes := b.MaxNodes
	if maxNodes <= 0 {
		maxNodes = defaultMaxNodes
	}
	intTol := b.IntTol
	if intTol <= 0 {
		intTol = 1e-6
	}
	sign := 1.0
	if obj.Sense == model.Maximize {
		sign = -1.0
	}

	var (
		incumbent    []float64
		incumbentVal = math.Inf(1) // in minimization sense
		sawFeasible  bool
	)

	stack := []bbNode{{bounds: map[int][2]float64{}}}
	nodes := 0
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nodes++
		if nodes > maxNodes {
			return nil, &statusError{
				status: StatusIterLimit,
				msg:    fmt.Sprintf("branch-and-bound exceeded %d nodes", maxNodes),
			}
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		res, err := b.LP.solveLinear(m, obj, node.bounds)
		if err != nil {
			if StatusOf(err) == StatusInfeasible {
				continue // pruned
			}
			return nil, err
		}
		relaxVal := sign * res.Objective
		if relaxVal >= incumbentVal-1e-12 {
			continue // bound prune
		}

		branch := mostFractional(m, res.Values, intTol)
		if branch < 0 {
			// Integral: new incumbent.
			incumbent = roundIntegral(m, res.Values, intTol)
			incumbentVal = relaxVal
			sawFeasible = true
			continue
		}

		val := res.Values[branch]
		lo, hi := m.Var(branch).Lo, m.Var(branch).Hi
		if ov, ok := node.bounds[branch]; ok {
			lo, hi = ov[0], ov[1]
		}
		down := cloneBounds(node.bounds)
		down[branch] = [2]float64{lo, math.Floor(val)}
		up := cloneBounds(node.bounds)
		up[branch] = [2]float64{math.Ceil(val), hi}
		stack = append(stack, bbNode{bounds: down}, bbNode{bounds: up})
	}

	if !sawFeasible {
		return nil, &statusError{status: StatusInfeasible, msg: "no integral solution exists"}
	}
	return &Result{
		Status:    StatusOptimal,
		Objective: sign * incumbentVal,
		Values:    incumbent,
	}, nil
}

// mostFractional picks the integer-constrained variable whose value is
// farthest from integrality, or -1 if the point is integral.
func mostFractional(m *model.Model, x []float64, intTol float64) int {
	best, bestDist := -1, intTol
	for _, v := range m.Variables() {
		if v.Type == model.Continuous {
			continue
		}
		frac := x[v.ID] - math.Round(x[v.ID])
		if d := math.Abs(frac); d > bestDist {
			best, bestDist = v.ID, d
		}
	}
	return best
}

// roundIntegral snaps near-integral values exactly onto integers.
func roundIntegral(m *model.Model, x []float64, intTol float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	for _, v := range m.Variables() {
		if v.Type == model.Continuous {
			continue
		}
		if r := math.Round(out[v.ID]); math.Abs(out[v.ID]-r) <= intTol {
			out[v.ID] = r
		}
	}
	return out
}

func cloneBounds(in map[int][2]float64) map[int][2]float64 {
	out := make(map[int][2]float64, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
