package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// ProgramVariable declares a decision variable of a disjunctive program.
type ProgramVariable struct {
	Name string   `json:"name"`
	Lo   *float64 `json:"lo,omitempty"`
	Hi   *float64 `json:"hi,omitempty"`
	Type string   `json:"type,omitempty"` // continuous (default), binary, integer
}

// ProgramConstraint is a linear row over program variables, referenced by
// name. Lo/Hi omitted means unbounded on that side; equal means equality.
type ProgramConstraint struct {
	Name   string             `json:"name,omitempty"`
	Coeffs map[string]float64 `json:"coeffs"`
	Lo     *float64           `json:"lo,omitempty"`
	Hi     *float64           `json:"hi,omitempty"`
}

// Disjunct is one branch of a disjunction: a conjunction of linear rows
// that hold when the branch is selected.
type Disjunct struct {
	Name        string              `json:"name"`
	Constraints []ProgramConstraint `json:"constraints"`
}

// Disjunction is an exclusive choice between two or more disjuncts.
type Disjunction struct {
	Name      string     `json:"name"`
	Disjuncts []Disjunct `json:"disjuncts"`
}

// ProgramObjective is the program's linear objective.
type ProgramObjective struct {
	Coeffs   map[string]float64 `json:"coeffs"`
	Constant float64            `json:"constant,omitempty"`
	Sense    string             `json:"sense,omitempty"` // minimize (default), maximize
}

// DisjunctiveProgram is the user's input model: variables, global linear
// constraints, disjunctions, and a linear objective. It is read-only from
// the engine's perspective; relaxations are built from it, never into it.
type DisjunctiveProgram struct {
	Name         string              `json:"name"`
	Variables    []ProgramVariable   `json:"variables"`
	Constraints  []ProgramConstraint `json:"constraints,omitempty"`
	Disjunctions []Disjunction       `json:"disjunctions"`
	Objective    ProgramObjective    `json:"objective"`
}

// LoadProgram reads and validates a disjunctive program from a JSON file.
func LoadProgram(path string) (*DisjunctiveProgram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	var p DisjunctiveProgram
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode program: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// VarIndex returns a name-to-position map over the program's variables.
func (p *DisjunctiveProgram) VarIndex() map[string]int {
	idx := make(map[string]int, len(p.Variables))
	for i, v := range p.Variables {
		idx[v.Name] = i
	}
	return idx
}

// Bounds returns the variable's declared bounds, defaulting to (-Inf, +Inf)
// for continuous and integer variables and [0, 1] for binaries.
func (v ProgramVariable) Bounds() (float64, float64) {
	lo, hi := math.Inf(-1), math.Inf(1)
	if v.Type == "binary" {
		lo, hi = 0, 1
	}
	if v.Lo != nil {
		lo = *v.Lo
	}
	if v.Hi != nil {
		hi = *v.Hi
	}
	return lo, hi
}

// VarType maps the declared type string to a VarType.
func (v ProgramVariable) VarType() (VarType, error) {
	switch v.Type {
	case "", "continuous":
		return Continuous, nil
	case "binary":
		return Binary, nil
	case "integer":
		return Integer, nil
	default:
		return Continuous, fmt.Errorf("variable %q: unknown type %q", v.Name, v.Type)
	}
}

// Range returns the constraint's bounds, defaulting each omitted side to
// the corresponding infinity.
func (c ProgramConstraint) Range() (float64, float64) {
	lo, hi := math.Inf(-1), math.Inf(1)
	if c.Lo != nil {
		lo = *c.Lo
	}
	if c.Hi != nil {
		hi = *c.Hi
	}
	return lo, hi
}

// Validate checks structural well-formedness: declared types, unique
// non-reserved variable names, coefficient references, at least two
// disjuncts per disjunction, and a non-empty objective.
func (p *DisjunctiveProgram) Validate() error {
	if len(p.Variables) == 0 {
		return fmt.Errorf("program %q declares no variables", p.Name)
	}
	seen := make(map[string]bool, len(p.Variables))
	for _, v := range p.Variables {
		if v.Name == "" {
			return fmt.Errorf("program %q: variable with empty name", p.Name)
		}
		if len(v.Name) >= len(ReservedPrefix) && v.Name[:len(ReservedPrefix)] == ReservedPrefix {
			return fmt.Errorf("program %q: variable %q uses the reserved prefix %q", p.Name, v.Name, ReservedPrefix)
		}
		if seen[v.Name] {
			return fmt.Errorf("program %q: duplicate variable %q", p.Name, v.Name)
		}
		seen[v.Name] = true
		if _, err := v.VarType(); err != nil {
			return err
		}
		lo, hi := v.Bounds()
		if lo > hi {
			return fmt.Errorf("program %q: variable %q has empty domain [%g, %g]", p.Name, v.Name, lo, hi)
		}
	}
	checkRow := func(where string, c ProgramConstraint) error {
		if len(c.Coeffs) == 0 {
			return fmt.Errorf("%s: constraint %q has no coefficients", where, c.Name)
		}
		for name := range c.Coeffs {
			if !seen[name] {
				return fmt.Errorf("%s: constraint %q references unknown variable %q", where, c.Name, name)
			}
		}
		lo, hi := c.Range()
		if lo > hi {
			return fmt.Errorf("%s: constraint %q has empty range [%g, %g]", where, c.Name, lo, hi)
		}
		if math.IsInf(lo, -1) && math.IsInf(hi, 1) {
			return fmt.Errorf("%s: constraint %q is vacuous (unbounded both sides)", where, c.Name)
		}
		return nil
	}
	for _, c := range p.Constraints {
		if err := checkRow(fmt.Sprintf("program %q", p.Name), c); err != nil {
			return err
		}
	}
	for _, d := range p.Disjunctions {
		if len(d.Disjuncts) < 2 {
			return fmt.Errorf("program %q: disjunction %q needs at least two disjuncts", p.Name, d.Name)
		}
		for _, dj := range d.Disjuncts {
			for _, c := range dj.Constraints {
				if err := checkRow(fmt.Sprintf("disjunct %q/%q", d.Name, dj.Name), c); err != nil {
					return err
				}
			}
		}
	}
	for name := range p.Objective.Coeffs {
		if !seen[name] {
			return fmt.Errorf("program %q: objective references unknown variable %q", p.Name, name)
		}
	}
	switch p.Objective.Sense {
	case "", "minimize", "maximize":
	default:
		return fmt.Errorf("program %q: unknown objective sense %q", p.Name, p.Objective.Sense)
	}
	return nil
}

// ObjectiveSense returns the parsed optimization direction.
func (p *DisjunctiveProgram) ObjectiveSense() Sense {
	if p.Objective.Sense == "maximize" {
		return Maximize
	}
	return Minimize
}
