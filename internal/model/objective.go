package model

// Sense is the optimization direction of a linear objective.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

func (s Sense) String() string {
	if s == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Objective is the single active objective of a Model. Exactly two kinds
// exist: a linear objective for relaxation solves, and a least-distance
// objective for separation solves.
type Objective interface {
	// Value evaluates the objective at a point indexed by variable ID.
	Value(point []float64) float64

	clone() Objective
}

// Linear is the objective sum(Coeffs[i] * v_i) + Constant.
type Linear struct {
	Coeffs   map[int]float64
	Constant float64
	Sense    Sense
}

// Value evaluates the linear objective at the given point.
func (o *Linear) Value(point []float64) float64 {
	sum := o.Constant
	for id, c := range o.Coeffs {
		if id < len(point) {
			sum += c * point[id]
		}
	}
	return sum
}

func (o *Linear) clone() Objective {
	coeffs := make(map[int]float64, len(o.Coeffs))
	for id, c := range o.Coeffs {
		coeffs[id] = c
	}
	return &Linear{Coeffs: coeffs, Constant: o.Constant, Sense: o.Sense}
}

// LeastDistance is the separation objective: minimize the sum of squared
// differences between each target variable and its target value. Variables
// absent from Targets do not contribute.
type LeastDistance struct {
	Targets map[int]float64
}

// Value evaluates the squared distance at the given point.
func (o *LeastDistance) Value(point []float64) float64 {
	var sum float64
	for id, t := range o.Targets {
		var x float64
		if id < len(point) {
			x = point[id]
		}
		d := x - t
		sum += d * d
	}
	return sum
}

func (o *LeastDistance) clone() Objective {
	targets := make(map[int]float64, len(o.Targets))
	for id, t := range o.Targets {
		targets[id] = t
	}
	return &LeastDistance{Targets: targets}
}
