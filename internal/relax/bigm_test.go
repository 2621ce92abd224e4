package relax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disjunct/cutplane/internal/model"
)

func f(v float64) *float64 { return &v }

// twoBoxes is the union of [0,1]^2 and [2,3]^2, minimize x2 - x1.
func twoBoxes() *model.DisjunctiveProgram {
	return &model.DisjunctiveProgram{
		Name: "two-boxes",
		Variables: []model.ProgramVariable{
			{Name: "x1", Lo: f(0), Hi: f(3)},
			{Name: "x2", Lo: f(0), Hi: f(3)},
		},
		Disjunctions: []model.Disjunction{{
			Name: "region",
			Disjuncts: []model.Disjunct{
				{Name: "lower", Constraints: []model.ProgramConstraint{
					{Coeffs: map[string]float64{"x1": 1}, Lo: f(0), Hi: f(1)},
					{Coeffs: map[string]float64{"x2": 1}, Lo: f(0), Hi: f(1)},
				}},
				{Name: "upper", Constraints: []model.ProgramConstraint{
					{Coeffs: map[string]float64{"x1": 1}, Lo: f(2), Hi: f(3)},
					{Coeffs: map[string]float64{"x2": 1}, Lo: f(2), Hi: f(3)},
				}},
			},
		}},
		Objective: model.ProgramObjective{Coeffs: map[string]float64{"x1": -1, "x2": 1}},
	}
}

func TestBigMVariableCorrespondence(t *testing.T) {
	p := twoBoxes()
	m, err := NewTransformer(100).BigM(p)
	require.NoError(t, err)

	// Original variables come first, in program order, under their names.
	require.GreaterOrEqual(t, m.NumVars(), len(p.Variables))
	for i, pv := range p.Variables {
		assert.Equal(t, pv.Name, m.Var(i).Name)
		assert.Equal(t, model.Continuous, m.Var(i).Type)
	}
}

func TestBigMIndicatorsAreReservedBinaries(t *testing.T) {
	m, err := NewTransformer(100).BigM(twoBoxes())
	require.NoError(t, err)

	var indicators []model.Variable
	for _, v := range m.Variables() {
		if v.IsReserved() {
			indicators = append(indicators, v)
		}
	}
	require.Len(t, indicators, 2)
	for _, v := range indicators {
		assert.Equal(t, model.Binary, v.Type)
	}
}

func TestBigMFeasibility(t *testing.T) {
	m, err := NewTransformer(100).BigM(twoBoxes())
	require.NoError(t, err)

	// Variable order: x1, x2, lambda_lower, lambda_upper.
	tests := []struct {
		name  string
		point []float64
		want  bool
	}{
		{"lower box selected", []float64{0.5, 0.5, 1, 0}, true},
		{"upper box selected", []float64{2.5, 3, 0, 1}, true},
		{"wrong indicator", []float64{0.5, 0.5, 0, 1}, false},
		{"no disjunct selected", []float64{0.5, 0.5, 0, 0}, false},
		{"relaxed midpoint escapes the hull", []float64{3, 0, 0.5, 0.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Feasible(tt.point, 1e-9))
		})
	}
}

func TestBigMRejectsInvalidProgram(t *testing.T) {
	p := twoBoxes()
	p.Variables = nil
	_, err := NewTransformer(100).BigM(p)
	var mce *ModelConstructionError
	require.ErrorAs(t, err, &mce)
}
