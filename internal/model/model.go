package model

import (
	"fmt"
	"math"
)

// ReservedPrefix marks variables introduced by a relaxation transformation
// (indicator and disaggregated variables). Such variables carry no identity
// in the user's program and are excluded from the variable registry.
const ReservedPrefix = "_relax."

// VarType describes the domain of a decision variable.
type VarType int

const (
	// Continuous variables range over [Lo, Hi].
	Continuous VarType = iota

	// Binary variables take values in {0, 1}.
	Binary

	// Integer variables take integer values in [Lo, Hi].
	Integer
)

func (t VarType) String() string {
	switch t {
	case Continuous:
		return "continuous"
	case Binary:
		return "binary"
	case Integer:
		return "integer"
	default:
		return "unknown"
	}
}

// Variable is a single decision variable inside a Model.
// ID is the variable's index in its owning model; it is stable for the
// model's lifetime because variables are never removed.
type Variable struct {
	ID   int
	Name string
	Lo   float64
	Hi   float64
	Type VarType
}

// IsReserved reports whether the variable was introduced by a relaxation
// transformation rather than the user's program.
func (v Variable) IsReserved() bool {
	return len(v.Name) >= len(ReservedPrefix) && v.Name[:len(ReservedPrefix)] == ReservedPrefix
}

// Constraint is a two-sided linear row: Lo <= sum(Coeffs[i] * v_i) <= Hi.
// An equality has Lo == Hi; a one-sided row uses -Inf or +Inf.
type Constraint struct {
	Name   string
	Coeffs map[int]float64
	Lo     float64
	Hi     float64
}

// Model is a single relaxation instance: an ordered set of variables, an
// append-only set of linear constraints, and at most one active objective.
// Models are mutated in place across cutting-plane iterations (cuts
// accumulate as constraints) and are not safe for concurrent use.
type Model struct {
	Name string

	vars []Variable
	cons []Constraint
	obj  Objective
}

// New creates an empty model.
func New(name string) *Model {
	return &Model{Name: name}
}

// AddVariable appends a variable and returns its ID.
func (m *Model) AddVariable(name string, lo, hi float64, typ VarType) int {
	id := len(m.vars)
	m.vars = append(m.vars, Variable{ID: id, Name: name, Lo: lo, Hi: hi, Type: typ})
	return id
}

// NumVars returns the number of variables in the model.
func (m *Model) NumVars() int { return len(m.vars) }

// Var returns the variable with the given ID.
func (m *Model) Var(id int) Variable { return m.vars[id] }

// Variables returns the model's variables in declaration order.
// The returned slice is a copy.
func (m *Model) Variables() []Variable {
	out := make([]Variable, len(m.vars))
	copy(out, m.vars)
	return out
}

// SetBounds tightens or replaces the bounds of a variable.
func (m *Model) SetBounds(id int, lo, hi float64) {
	m.vars[id].Lo = lo
	m.vars[id].Hi = hi
}

// RelaxVar makes the variable continuous, keeping its bounds.
func (m *Model) RelaxVar(id int) {
	m.vars[id].Type = Continuous
}

// AddConstraint appends a linear row. The coefficient map is copied.
func (m *Model) AddConstraint(name string, coeffs map[int]float64, lo, hi float64) error {
	cp := make(map[int]float64, len(coeffs))
	for id, c := range coeffs {
		if id < 0 || id >= len(m.vars) {
			return &ConfigurationError{
				Op:  "AddConstraint",
				Msg: fmt.Sprintf("constraint %q references unknown variable id %d", name, id),
			}
		}
		if c != 0 {
			cp[id] = c
		}
	}
	m.cons = append(m.cons, Constraint{Name: name, Coeffs: cp, Lo: lo, Hi: hi})
	return nil
}

// NumConstraints returns the number of constraints in the model.
func (m *Model) NumConstraints() int { return len(m.cons) }

// Constraints returns the model's constraints in insertion order.
// The returned slice shares the underlying coefficient maps; callers must
// treat them as read-only.
func (m *Model) Constraints() []Constraint { return m.cons }

// SetObjective installs obj as the model's single active objective,
// atomically replacing any prior one. A model never has more than one
// active objective.
func (m *Model) SetObjective(obj Objective) {
	m.obj = obj
}

// Objective returns the active objective, or nil if none is set.
func (m *Model) Objective() Objective { return m.obj }

// Clone returns a deep copy of the model, including the active objective.
func (m *Model) Clone(name string) *Model {
	out := &Model{Name: name}
	out.vars = make([]Variable, len(m.vars))
	copy(out.vars, m.vars)
	out.cons = make([]Constraint, len(m.cons))
	for i, c := range m.cons {
		coeffs := make(map[int]float64, len(c.Coeffs))
		for id, v := range c.Coeffs {
			coeffs[id] = v
		}
		out.cons[i] = Constraint{Name: c.Name, Coeffs: coeffs, Lo: c.Lo, Hi: c.Hi}
	}
	if m.obj != nil {
		out.obj = m.obj.clone()
	}
	return out
}

// HasIntegers reports whether any variable is binary or integer.
func (m *Model) HasIntegers() bool {
	for _, v := range m.vars {
		if v.Type != Continuous {
			return true
		}
	}
	return false
}

// Feasible reports whether the given point satisfies every variable bound
// and constraint up to tol. The point is indexed by variable ID and may be
// shorter than the variable count; missing entries are treated as zero.
func (m *Model) Feasible(point []float64, tol float64) bool {
	at := func(id int) float64 {
		if id < len(point) {
			return point[id]
		}
		return 0
	}
	for _, v := range m.vars {
		x := at(v.ID)
		if x < v.Lo-tol || x > v.Hi+tol {
			return false
		}
	}
	for _, c := range m.cons {
		var sum float64
		for id, coeff := range c.Coeffs {
			sum += coeff * at(id)
		}
		if sum < c.Lo-tol || sum > c.Hi+tol {
			return false
		}
	}
	return true
}

// Inf is a convenience for unbounded constraint or variable sides.
func Inf() float64 { return math.Inf(1) }
