package relax

import (
	"fmt"
	"math"

	"github.com/disjunct/cutplane/internal/model"
)

// ConvexHull builds the hull (Balas) reformulation. For each disjunction,
// every original variable x_i is disaggregated into one copy nu_ik per
// disjunct, with
//
//	x_i = sum_k nu_ik
//	Lo_i·lambda_k <= nu_ik <= Hi_i·lambda_k
//	a·nu_k <= b·lambda_k        (per disjunct row)
//	sum_k lambda_k = 1
//
// With the indicators relaxed to [0, 1] the projection onto the original
// variables is the convex hull of the disjuncts' regions. Disaggregation
// requires finite bounds on every original variable.
func (t *Transformer) ConvexHull(p *model.DisjunctiveProgram) (*model.Model, error) {
	if err := p.Validate(); err != nil {
		return nil, &ModelConstructionError{Transformation: "hull", Err: err}
	}
	for _, pv := range p.Variables {
		lo, hi := pv.Bounds()
		if math.IsInf(lo, -1) || math.IsInf(hi, 1) {
			return nil, &ModelConstructionError{
				Transformation: "hull",
				Err:            fmt.Errorf("variable %q must have finite bounds for disaggregation, has [%g, %g]", pv.Name, lo, hi),
			}
		}
	}

	m, err := cloneProgramBase(p, p.Name+".hull")
	if err != nil {
		return nil, &ModelConstructionError{Transformation: "hull", Err: err}
	}
	idx := p.VarIndex()

	addRow := func(name string, coeffs map[int]float64, lo, hi float64) error {
		if err := m.AddConstraint(name, coeffs, lo, hi); err != nil {
			return &ModelConstructionError{Transformation: "hull", Err: err}
		}
		return nil
	}

	for _, d := range p.Disjunctions {
		choice := make(map[int]float64, len(d.Disjuncts))
		// sum rows start as x_i - sum_k nu_ik = 0; filled per disjunct.
		sum := make([]map[int]float64, len(p.Variables))
		for i := range p.Variables {
			sum[i] = map[int]float64{idx[p.Variables[i].Name]: 1}
		}

		for _, dj := range d.Disjuncts {
			lam := m.AddVariable(indicatorName(d.Name, dj.Name), 0, 1, model.Binary)
			choice[lam] = 1

			// Disaggregated copies, bounded by lambda-scaled originals.
			nu := make(map[string]int, len(p.Variables))
			for _, pv := range p.Variables {
				lo, hi := pv.Bounds()
				id := m.AddVariable(disaggName(d.Name, dj.Name, pv.Name), min(lo, 0), max(hi, 0), model.Continuous)
				nu[pv.Name] = id
				sum[idx[pv.Name]][id] = -1

				base := fmt.Sprintf("%s.%s.bnd.%s", d.Name, dj.Name, pv.Name)
				// nu <= Hi·lambda
				if err := addRow(base+".ub", map[int]float64{id: 1, lam: -hi}, math.Inf(-1), 0); err != nil {
					return nil, err
				}
				// nu >= Lo·lambda
				if err := addRow(base+".lb", map[int]float64{id: 1, lam: -lo}, 0, math.Inf(1)); err != nil {
					return nil, err
				}
			}

			// Disjunct rows over the disaggregated copies, scaled by lambda.
			for i, pc := range dj.Constraints {
				lo, hi := pc.Range()
				base := fmt.Sprintf("%s.%s.r%d", d.Name, dj.Name, i)
				if lo == hi {
					coeffs := disaggRow(pc, nu)
					coeffs[lam] = -lo
					if err := addRow(base+".eq", coeffs, 0, 0); err != nil {
						return nil, err
					}
					continue
				}
				if !math.IsInf(hi, 1) {
					coeffs := disaggRow(pc, nu)
					coeffs[lam] = -hi
					if err := addRow(base+".ub", coeffs, math.Inf(-1), 0); err != nil {
						return nil, err
					}
				}
				if !math.IsInf(lo, -1) {
					coeffs := disaggRow(pc, nu)
					coeffs[lam] = -lo
					if err := addRow(base+".lb", coeffs, 0, math.Inf(1)); err != nil {
						return nil, err
					}
				}
			}
		}

		for i, pv := range p.Variables {
			if err := addRow(fmt.Sprintf("%s.sum.%s", d.Name, pv.Name), sum[i], 0, 0); err != nil {
				return nil, err
			}
		}
		if err := addRow(d.Name+".choice", choice, 1, 1); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// disaggRow translates a disjunct row onto the disaggregated copies.
func disaggRow(pc model.ProgramConstraint, nu map[string]int) map[int]float64 {
	coeffs := make(map[int]float64, len(pc.Coeffs)+1)
	for vn, c := range pc.Coeffs {
		coeffs[nu[vn]] = c
	}
	return coeffs
}
