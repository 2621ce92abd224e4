package solve

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/disjunct/cutplane/internal/model"
)

// Simplex is the continuous solver. Linear objectives are solved directly
// by the simplex kernel; least-distance objectives are minimized by
// away-step Frank-Wolfe with the kernel as its linear oracle.
type Simplex struct {
	// Tol is the simplex pivot tolerance.
	Tol float64

	// ProjTol is the Frank-Wolfe duality-gap stopping tolerance.
	ProjTol float64

	// ProjMaxIters caps Frank-Wolfe iterations.
	ProjMaxIters int
}

// NewSimplex returns a Simplex with default tolerances.
func NewSimplex() *Simplex {
	return &Simplex{Tol: 1e-10, ProjTol: 1e-9, ProjMaxIters: 2000}
}

// SolveContinuous dispatches on the model's objective kind.
func (s *Simplex) SolveContinuous(ctx context.Context, m *model.Model) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch obj := m.Objective().(type) {
	case *model.Linear:
		return s.solveLinear(m, obj, nil)
	case *model.LeastDistance:
		return s.project(ctx, m, obj)
	case nil:
		return nil, fmt.Errorf("model %q has no active objective", m.Name)
	default:
		return nil, fmt.Errorf("model %q has unsupported objective %T", m.Name, obj)
	}
}

// solveLinear solves the model as a pure LP, optionally with per-variable
// bound overrides (used by branch-and-bound).
func (s *Simplex) solveLinear(m *model.Model, obj *model.Linear, bounds map[int][2]float64) (*Result, error) {
	sf, err := newStandardForm(m, bounds)
	if err != nil {
		return nil, err
	}

	c := make([]float64, m.NumVars())
	sign := 1.0
	if obj.Sense == model.Maximize {
		sign = -1.0
	}
	for id, coeff := range obj.Coeffs {
		c[id] = sign * coeff
	}

	x, val, err := sf.minimize(c, s.tol())
	if err != nil {
		return nil, err
	}
	return &Result{
		Status:    StatusOptimal,
		Objective: sign*val + obj.Constant,
		Values:    x,
	}, nil
}

func (s *Simplex) tol() float64 {
	if s.Tol > 0 {
		return s.Tol
	}
	return 1e-10
}

// standardForm is a model converted to simplex standard form
// (minimize c'x subject to Ax = b, x >= 0). Each variable is split into a
// positive and a negative part; every finite inequality side, including
// variable bounds, gets its own slack column.
type standardForm struct {
	n     int // original variable count
	nCols int
	a     *mat.Dense
	b     []float64
}

type sfRow struct {
	coeffs map[int]float64
	rhs    float64
}

// newStandardForm converts the model's constraints and bounds. Overrides,
// when present, replace the declared bounds of individual variables. An
// override with an empty interval short-circuits to infeasible.
func newStandardForm(m *model.Model, overrides map[int][2]float64) (*standardForm, error) {
	n := m.NumVars()
	var eqRows, leRows []sfRow

	for _, con := range m.Constraints() {
		switch {
		case con.Lo == con.Hi:
			eqRows = append(eqRows, sfRow{coeffs: con.Coeffs, rhs: con.Lo})
		default:
			if !math.IsInf(con.Hi, 1) {
				leRows = append(leRows, sfRow{coeffs: con.Coeffs, rhs: con.Hi})
			}
			if !math.IsInf(con.Lo, -1) {
				leRows = append(leRows, sfRow{coeffs: negCoeffs(con.Coeffs), rhs: -con.Lo})
			}
		}
	}

	for _, v := range m.Variables() {
		lo, hi := v.Lo, v.Hi
		if ov, ok := overrides[v.ID]; ok {
			lo, hi = ov[0], ov[1]
		}
		if lo > hi {
			return nil, &statusError{
				status: StatusInfeasible,
				msg:    fmt.Sprintf("variable %q has empty domain [%g, %g]", v.Name, lo, hi),
			}
		}
		if lo == hi {
			eqRows = append(eqRows, sfRow{coeffs: map[int]float64{v.ID: 1}, rhs: lo})
			continue
		}
		if !math.IsInf(hi, 1) {
			leRows = append(leRows, sfRow{coeffs: map[int]float64{v.ID: 1}, rhs: hi})
		}
		if !math.IsInf(lo, -1) {
			leRows = append(leRows, sfRow{coeffs: map[int]float64{v.ID: -1}, rhs: -lo})
		}
	}

	nRows := len(eqRows) + len(leRows)
	nCols := 2*n + len(leRows)
	a := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)

	fill := func(row int, r sfRow) {
		for id, c := range r.coeffs {
			a.Set(row, id, c)
			a.Set(row, n+id, -c)
		}
		b[row] = r.rhs
	}
	for i, r := range eqRows {
		fill(i, r)
	}
	for j, r := range leRows {
		row := len(eqRows) + j
		fill(row, r)
		a.Set(row, 2*n+j, 1) // slack
	}

	return &standardForm{n: n, nCols: nCols, a: a, b: b}, nil
}

func negCoeffs(in map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(in))
	for k, v := range in {
		out[k] = -v
	}
	return out
}

// minimize solves min c'x over the polytope for a cost vector indexed by
// original variable IDs, returning the original-variable solution.
func (sf *standardForm) minimize(c []float64, tol float64) ([]float64, float64, error) {
	cStd := make([]float64, sf.nCols)
	for i := 0; i < sf.n; i++ {
		cStd[i] = c[i]
		cStd[sf.n+i] = -c[i]
	}
	val, xStd, err := lp.Simplex(cStd, sf.a, sf.b, tol, nil)
	if err != nil {
		return nil, 0, mapLPError(err)
	}
	x := make([]float64, sf.n)
	for i := 0; i < sf.n; i++ {
		x[i] = xStd[i] - xStd[sf.n+i]
	}
	return x, val, nil
}

// mapLPError converts gonum's sentinel errors into statusError values.
func mapLPError(err error) error {
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return &statusError{status: StatusInfeasible, msg: err.Error()}
	case errors.Is(err, lp.ErrUnbounded):
		return &statusError{status: StatusUnbounded, msg: err.Error()}
	default:
		return &statusError{status: StatusError, msg: err.Error()}
	}
}
