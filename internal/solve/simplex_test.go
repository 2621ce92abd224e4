package solve

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disjunct/cutplane/internal/model"
)

func TestSimplexLinearMinimum(t *testing.T) {
	m := model.New("lp")
	x := m.AddVariable("x", 0, 10, model.Continuous)
	y := m.AddVariable("y", 0, 10, model.Continuous)
	require.NoError(t, m.AddConstraint("cap", map[int]float64{x: 1, y: 1}, math.Inf(-1), 4))
	m.SetObjective(&model.Linear{Coeffs: map[int]float64{x: -1, y: -2}, Sense: model.Minimize})

	res, err := NewSimplex().SolveContinuous(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, -8, res.Objective, 1e-8)
	assert.InDelta(t, 0, res.Values[x], 1e-8)
	assert.InDelta(t, 4, res.Values[y], 1e-8)
}

func TestSimplexMaximizationAndConstant(t *testing.T) {
	m := model.New("lp")
	x := m.AddVariable("x", 0, 3, model.Continuous)
	m.SetObjective(&model.Linear{Coeffs: map[int]float64{x: 2}, Constant: 1, Sense: model.Maximize})

	res, err := NewSimplex().SolveContinuous(context.Background(), m)
	require.NoError(t, err)
	assert.InDelta(t, 7, res.Objective, 1e-8)
	assert.InDelta(t, 3, res.Values[x], 1e-8)
}

func TestSimplexEqualityRow(t *testing.T) {
	m := model.New("lp")
	x := m.AddVariable("x", 0, 5, model.Continuous)
	y := m.AddVariable("y", 0, 5, model.Continuous)
	require.NoError(t, m.AddConstraint("mix", map[int]float64{x: 1, y: 1}, 3, 3))
	m.SetObjective(&model.Linear{Coeffs: map[int]float64{x: 1}, Sense: model.Minimize})

	res, err := NewSimplex().SolveContinuous(context.Background(), m)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Objective, 1e-8)
	assert.InDelta(t, 3, res.Values[y], 1e-8)
}

func TestSimplexNegativeDomain(t *testing.T) {
	// Free-variable splitting must handle negative optima.
	m := model.New("lp")
	x := m.AddVariable("x", -4, 4, model.Continuous)
	m.SetObjective(&model.Linear{Coeffs: map[int]float64{x: 1}, Sense: model.Minimize})

	res, err := NewSimplex().SolveContinuous(context.Background(), m)
	require.NoError(t, err)
	assert.InDelta(t, -4, res.Objective, 1e-8)
	assert.InDelta(t, -4, res.Values[x], 1e-8)
}

func TestSimplexInfeasible(t *testing.T) {
	m := model.New("lp")
	x := m.AddVariable("x", 0, 1, model.Continuous)
	require.NoError(t, m.AddConstraint("impossible", map[int]float64{x: 1}, 2, math.Inf(1)))
	m.SetObjective(&model.Linear{Coeffs: map[int]float64{x: 1}, Sense: model.Minimize})

	_, err := NewSimplex().SolveContinuous(context.Background(), m)
	require.Error(t, err)
	assert.Equal(t, StatusInfeasible, StatusOf(err))
}

func TestSimplexMissingObjective(t *testing.T) {
	m := model.New("lp")
	m.AddVariable("x", 0, 1, model.Continuous)
	_, err := NewSimplex().SolveContinuous(context.Background(), m)
	assert.Error(t, err)
}

func TestSimplexHonorsContext(t *testing.T) {
	m := model.New("lp")
	x := m.AddVariable("x", 0, 1, model.Continuous)
	m.SetObjective(&model.Linear{Coeffs: map[int]float64{x: 1}, Sense: model.Minimize})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSimplex().SolveContinuous(ctx, m)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "optimal", StatusOptimal.String())
	assert.Equal(t, "infeasible", StatusInfeasible.String())
	assert.Equal(t, "unbounded", StatusUnbounded.String())
	assert.Equal(t, "error", StatusError.String())
}
