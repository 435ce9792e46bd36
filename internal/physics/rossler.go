package physics

import (
	"fmt"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

// Rossler is the second classic 3-D chaotic flow, kept around as a
// cross-check that the solver carries no Lorenz-specific assumptions.
type Rossler struct{ a, b, c float64 }

func NewRossler() *Rossler { return &Rossler{0.2, 0.2, 5.7} }

func (r *Rossler) Dim() int { return 3 }

// Derive evaluates the Rossler equations at state (u, v, w).
func (r *Rossler) Derive(s dynamo.State, _ float64) dynamo.State {
	u, v, w := s[0], s[1], s[2]
	return dynamo.State{
		-v - w,
		u + r.a*v,
		r.b + w*(u-r.c),
	}
}

func (r *Rossler) DefaultState() dynamo.State { return dynamo.State{1.0, 1.0, 1.0} }

func (r *Rossler) Params() map[string]float64 {
	return map[string]float64{"a": r.a, "b": r.b, "c": r.c}
}

func (r *Rossler) SetParam(name string, v float64) error {
	switch name {
	case "a":
		r.a = v
	case "b":
		r.b = v
	case "c":
		r.c = v
	default:
		return fmt.Errorf("rossler: unknown parameter %q", name)
	}
	return nil
}
