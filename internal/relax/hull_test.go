package relax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHullVariableCorrespondence(t *testing.T) {
	p := twoBoxes()
	m, err := NewTransformer(100).ConvexHull(p)
	require.NoError(t, err)

	for i, pv := range p.Variables {
		assert.Equal(t, pv.Name, m.Var(i).Name)
	}
	// One indicator plus one disaggregated copy per variable, per disjunct.
	assert.Equal(t, 2+2*(1+2), m.NumVars())
	for _, v := range m.Variables()[2:] {
		assert.True(t, v.IsReserved(), "relaxation variables must carry the reserved prefix")
	}
}

func TestHullRequiresFiniteBounds(t *testing.T) {
	p := twoBoxes()
	p.Variables[0].Hi = nil
	_, err := NewTransformer(100).ConvexHull(p)
	var mce *ModelConstructionError
	require.ErrorAs(t, err, &mce)
}

// Variable order: x1, x2, then per disjunct: lambda, nu_x1, nu_x2.
func hullPoint(x1, x2, lamL, nuL1, nuL2, lamU, nuU1, nuU2 float64) []float64 {
	return []float64{x1, x2, lamL, nuL1, nuL2, lamU, nuU1, nuU2}
}

func TestHullFeasibility(t *testing.T) {
	m, err := NewTransformer(100).ConvexHull(twoBoxes())
	require.NoError(t, err)

	tests := []struct {
		name  string
		point []float64
		want  bool
	}{
		{"lower box vertex", hullPoint(1, 0, 1, 1, 0, 0, 0, 0), true},
		{"upper box vertex", hullPoint(3, 2, 0, 0, 0, 1, 3, 2), true},
		{"midpoint of the hull", hullPoint(1.5, 1.5, 0.5, 0.5, 0.5, 0.5, 1, 1), true},
		{"invalid disaggregation", hullPoint(2, 1, 0.5, 0.5, 0.5, 0.5, 1.5, 0.5), false},
		{"outside the hull", hullPoint(3, 0, 0.5, 0.5, 0, 0.5, 2.5, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Feasible(tt.point, 1e-9))
		})
	}
}

func TestHullBoundaryWitness(t *testing.T) {
	m, err := NewTransformer(100).ConvexHull(twoBoxes())
	require.NoError(t, err)

	// (2, 1) = 0.5*(1, 0) + 0.5*(3, 2) lies on the hull boundary; the
	// disaggregation nu_lower = 0.5*(1, 0), nu_upper = 0.5*(3, 2)
	// witnesses it.
	witness := hullPoint(2, 1, 0.5, 0.5, 0, 0.5, 1.5, 1)
	assert.True(t, m.Feasible(witness, 1e-9))

	// (3, 0) is big-M-feasible (see the big-M tests) but has no valid
	// disaggregation: x1 = 3 forces all weight onto the upper box, whose
	// x2 is at least 2.
	outside := hullPoint(3, 0, 0, 0, 0, 1, 3, 0)
	assert.False(t, m.Feasible(outside, 1e-9))
}

func TestRelaxIntegrality(t *testing.T) {
	bigm, err := NewTransformer(100).BigM(twoBoxes())
	require.NoError(t, err)

	relaxed := NewTransformer(100).RelaxIntegrality(bigm)
	assert.True(t, bigm.HasIntegers(), "the original keeps its binaries")
	assert.False(t, relaxed.HasIntegers())
	assert.Equal(t, bigm.NumVars(), relaxed.NumVars())

	// Bounds survive the relaxation.
	for _, v := range relaxed.Variables() {
		orig := bigm.Var(v.ID)
		assert.Equal(t, orig.Lo, v.Lo)
		assert.Equal(t, orig.Hi, v.Hi)
	}
}
