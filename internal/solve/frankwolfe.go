package solve

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/disjunct/cutplane/internal/model"
)

// project minimizes a least-distance objective over the model's polytope
// with away-step Frank-Wolfe. The simplex kernel serves as the linear
// minimization oracle, so every iterate is a convex combination of true
// vertices and therefore feasible. The away steps give linear convergence
// on polytopes, which plain Frank-Wolfe lacks near faces.
func (s *Simplex) project(ctx context.Context, m *model.Model, obj *model.LeastDistance) (*Result, error) {
	sf, err := newStandardForm(m, nil)
	if err != nil {
		return nil, err
	}

	n := m.NumVars()
	grad := func(x []float64) []float64 {
		g := make([]float64, n)
		for id, t := range obj.Targets {
			g[id] = 2 * (x[id] - t)
		}
		return g
	}
	// Curvature along d is restricted to the target coordinates.
	curv := func(d []float64) float64 {
		var q float64
		for id := range obj.Targets {
			q += d[id] * d[id]
		}
		return q
	}

	// Initial vertex: minimize the gradient linearization taken at the
	// origin, which points the first step toward the targets.
	c0 := make([]float64, n)
	for id, t := range obj.Targets {
		c0[id] = -2 * t
	}
	v0, _, err := sf.minimize(c0, s.tol())
	if err != nil {
		return nil, err
	}

	atoms := [][]float64{v0}
	weights := []float64{1}
	x := make([]float64, n)
	copy(x, v0)

	tol := s.ProjTol
	if tol <= 0 {
		tol = 1e-9
	}
	maxIters := s.ProjMaxIters
	if maxIters <= 0 {
		maxIters = 2000
	}

	for iter := 0; iter < maxIters; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g := grad(x)

		v, _, err := sf.minimize(g, s.tol())
		if err != nil {
			return nil, err
		}
		gapFW := floats.Dot(g, x) - floats.Dot(g, v)
		if gapFW <= tol {
			return &Result{Status: StatusOptimal, Objective: obj.Value(x), Values: x}, nil
		}

		// Away atom: the active vertex the gradient most wants to leave.
		// A full step zeroes the other weights, so only atoms still
		// carrying weight are eligible.
		away := -1
		best := math.Inf(-1)
		for i, a := range atoms {
			if weights[i] <= weightEps {
				continue
			}
			if d := floats.Dot(g, a); d > best {
				best, away = d, i
			}
		}
		gapAway := best - floats.Dot(g, x)

		d := make([]float64, n)
		var gammaMax float64
		useFW := away < 0 || gapFW >= gapAway || len(atoms) == 1
		if useFW {
			floats.SubTo(d, v, x)
			gammaMax = 1
		} else {
			floats.SubTo(d, x, atoms[away])
			w := weights[away]
			gammaMax = w / (1 - w)
		}

		gamma := gammaMax
		if q := curv(d); q > 0 {
			if exact := -floats.Dot(g, d) / (2 * q); exact < gamma {
				gamma = exact
			}
		}

		floats.AddScaled(x, gamma, d)

		if useFW {
			for i := range weights {
				weights[i] *= 1 - gamma
			}
			if idx := findAtom(atoms, v); idx >= 0 {
				weights[idx] += gamma
			} else {
				atoms = append(atoms, v)
				weights = append(weights, gamma)
			}
		} else {
			for i := range weights {
				weights[i] *= 1 + gamma
			}
			// gamma == gammaMax is a drop step: the away atom's weight
			// lands on zero and the prune below removes it.
			weights[away] -= gamma
		}

		atoms, weights = pruneAtoms(atoms, weights)
	}

	return nil, &statusError{
		status: StatusIterLimit,
		msg:    "projection did not converge within the iteration limit",
	}
}

// weightEps is the threshold below which an atom's convex weight counts
// as zero.
const weightEps = 1e-12

// findAtom locates an existing vertex equal to v within tolerance.
func findAtom(atoms [][]float64, v []float64) int {
	for i, a := range atoms {
		if floats.EqualApprox(a, v, 1e-9) {
			return i
		}
	}
	return -1
}

// pruneAtoms drops atoms whose weight has fallen to zero.
func pruneAtoms(atoms [][]float64, weights []float64) ([][]float64, []float64) {
	kept := 0
	for i := range atoms {
		if weights[i] <= weightEps {
			continue
		}
		atoms[kept] = atoms[i]
		weights[kept] = weights[i]
		kept++
	}
	return atoms[:kept], weights[:kept]
}
