package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Dist returns the Euclidean distance to another state of the same dimension.
func (s State) Dist(other State) float64 {
	sum := 0.0
	for i := range s {
		d := s[i] - other[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// System is the vector field of an ODE dX/dt = f(X, t).
// Derive must be pure: no side effects, deterministic for identical inputs.
// The time argument is accepted for generality even though the attractor
// models shipped here are autonomous and never read it.
type System interface {
	Derive(s State, t float64) State
	Dim() int
}

// Configurable systems expose named coefficients for runtime tuning.
// Mutating a coefficient while a solve is in flight is undefined.
type Configurable interface {
	Params() map[string]float64
	SetParam(name string, value float64) error
}
