// Package relax builds relaxations of disjunctive programs: the big-M
// reformulation, the convex-hull (Balas) reformulation, and integrality
// relaxation. All three clone the program's variables first, in program
// order, under their original names, so a variable registry built on any
// produced instance resolves against every other one.
package relax

import (
	"fmt"

	"github.com/disjunct/cutplane/internal/model"
)

// Oracle produces relaxation instances from a disjunctive program. The
// big-M feasible region contains the program's feasible region; the hull
// region is the convex hull of each disjunction's branches and is
// contained in the big-M region.
type Oracle interface {
	// BigM builds the big-M reformulation with binary indicator variables.
	BigM(p *model.DisjunctiveProgram) (*model.Model, error)

	// ConvexHull builds the hull reformulation with binary indicator
	// variables and disaggregated variable copies.
	ConvexHull(p *model.DisjunctiveProgram) (*model.Model, error)

	// RelaxIntegrality returns a fresh copy of m with every binary and
	// integer variable made continuous.
	RelaxIntegrality(m *model.Model) *model.Model
}

// ModelConstructionError reports a failed relaxation build. It is fatal:
// the engine propagates it without any recovery attempt.
type ModelConstructionError struct {
	Transformation string
	Err            error
}

func (e *ModelConstructionError) Error() string {
	return fmt.Sprintf("%s relaxation failed: %v", e.Transformation, e.Err)
}

func (e *ModelConstructionError) Unwrap() error { return e.Err }

// Transformer is the default Oracle for linear disjunctive programs.
type Transformer struct {
	// M is the big-M constant used to relax disjunct rows.
	M float64
}

// DefaultM is the big-M constant used when none is configured.
const DefaultM = 1e6

// NewTransformer returns an Oracle with the given big-M constant;
// m <= 0 selects DefaultM.
func NewTransformer(m float64) *Transformer {
	if m <= 0 {
		m = DefaultM
	}
	return &Transformer{M: m}
}

// indicatorName returns the reserved name of a disjunct's indicator
// variable.
func indicatorName(disjunction, disjunct string) string {
	return model.ReservedPrefix + "bind." + disjunction + "." + disjunct
}

// disaggName returns the reserved name of a disaggregated variable copy.
func disaggName(disjunction, disjunct, variable string) string {
	return model.ReservedPrefix + "disagg." + disjunction + "." + disjunct + "." + variable
}

// cloneProgramBase creates a model holding the program's variables (in
// program order, original names) and its global constraints and objective.
func cloneProgramBase(p *model.DisjunctiveProgram, name string) (*model.Model, error) {
	m := model.New(name)
	idx := make(map[string]int, len(p.Variables))
	for _, pv := range p.Variables {
		typ, err := pv.VarType()
		if err != nil {
			return nil, err
		}
		lo, hi := pv.Bounds()
		idx[pv.Name] = m.AddVariable(pv.Name, lo, hi, typ)
	}
	for i, pc := range p.Constraints {
		coeffs := make(map[int]float64, len(pc.Coeffs))
		for vn, c := range pc.Coeffs {
			coeffs[idx[vn]] = c
		}
		lo, hi := pc.Range()
		rowName := pc.Name
		if rowName == "" {
			rowName = fmt.Sprintf("c%d", i)
		}
		if err := m.AddConstraint(rowName, coeffs, lo, hi); err != nil {
			return nil, err
		}
	}
	obj := &model.Linear{
		Coeffs:   make(map[int]float64, len(p.Objective.Coeffs)),
		Constant: p.Objective.Constant,
		Sense:    p.ObjectiveSense(),
	}
	for vn, c := range p.Objective.Coeffs {
		obj.Coeffs[idx[vn]] = c
	}
	m.SetObjective(obj)
	return m, nil
}

// RelaxIntegrality returns a fresh copy of m with all binary and integer
// variables turned continuous. Binary bounds stay [0, 1].
func (t *Transformer) RelaxIntegrality(m *model.Model) *model.Model {
	out := m.Clone(m.Name + ".relaxed")
	for _, v := range out.Variables() {
		if v.Type != model.Continuous {
			out.RelaxVar(v.ID)
		}
	}
	return out
}
