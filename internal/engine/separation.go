package engine

import (
	"context"

	"github.com/disjunct/cutplane/internal/model"
	"github.com/disjunct/cutplane/internal/solve"
)

// separate projects the candidate onto the hull relaxation: it installs a
// least-distance objective over the registered variables (replacing
// whatever objective the instance carried) and solves, returning the
// projection in canonical handle order.
//
// The hull instance keeps the installed objective afterward; the next
// separation replaces it again. A model never holds more than one active
// objective.
func separate(ctx context.Context, solver solve.Continuous, reg *model.Registry, hull *model.Model, candidate []float64) ([]float64, error) {
	targets := make(map[int]float64, reg.Len())
	for _, h := range reg.Handles() {
		id, err := reg.Resolve(h, hull)
		if err != nil {
			return nil, err
		}
		targets[id] = candidate[h.Index]
	}
	hull.SetObjective(&model.LeastDistance{Targets: targets})

	res, err := solver.SolveContinuous(ctx, hull)
	if err != nil {
		return nil, err
	}
	return reg.Values(hull, res.Values)
}
