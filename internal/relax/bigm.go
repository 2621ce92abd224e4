package relax

import (
	"fmt"
	"math"

	"github.com/disjunct/cutplane/internal/model"
)

// BigM builds the big-M reformulation. Each disjunct k of a disjunction
// gets a binary indicator variable (reserved prefix) with sum(indicators)
// = 1; each disjunct row a·x <= b is relaxed to a·x <= b + M(1 - lambda_k)
// and symmetrically for lower bounds, so the row binds only when the
// disjunct is selected.
func (t *Transformer) BigM(p *model.DisjunctiveProgram) (*model.Model, error) {
	if err := p.Validate(); err != nil {
		return nil, &ModelConstructionError{Transformation: "big-M", Err: err}
	}
	m, err := cloneProgramBase(p, p.Name+".bigm")
	if err != nil {
		return nil, &ModelConstructionError{Transformation: "big-M", Err: err}
	}
	idx := p.VarIndex()

	for _, d := range p.Disjunctions {
		choice := make(map[int]float64, len(d.Disjuncts))
		for _, dj := range d.Disjuncts {
			lam := m.AddVariable(indicatorName(d.Name, dj.Name), 0, 1, model.Binary)
			choice[lam] = 1

			for i, pc := range dj.Constraints {
				lo, hi := pc.Range()
				base := fmt.Sprintf("%s.%s.r%d", d.Name, dj.Name, i)

				// a·x <= hi + M(1-lam)  <=>  a·x + M·lam <= hi + M
				if !math.IsInf(hi, 1) {
					coeffs := rowCoeffs(pc, idx)
					coeffs[lam] = t.M
					if err := m.AddConstraint(base+".ub", coeffs, math.Inf(-1), hi+t.M); err != nil {
						return nil, &ModelConstructionError{Transformation: "big-M", Err: err}
					}
				}
				// a·x >= lo - M(1-lam)  <=>  a·x - M·lam >= lo - M
				if !math.IsInf(lo, -1) {
					coeffs := rowCoeffs(pc, idx)
					coeffs[lam] = -t.M
					if err := m.AddConstraint(base+".lb", coeffs, lo-t.M, math.Inf(1)); err != nil {
						return nil, &ModelConstructionError{Transformation: "big-M", Err: err}
					}
				}
			}
		}
		if err := m.AddConstraint(d.Name+".choice", choice, 1, 1); err != nil {
			return nil, &ModelConstructionError{Transformation: "big-M", Err: err}
		}
	}
	return m, nil
}

// rowCoeffs translates a program row's named coefficients into model IDs.
func rowCoeffs(pc model.ProgramConstraint, idx map[string]int) map[int]float64 {
	coeffs := make(map[int]float64, len(pc.Coeffs)+1)
	for vn, c := range pc.Coeffs {
		coeffs[idx[vn]] = c
	}
	return coeffs
}
