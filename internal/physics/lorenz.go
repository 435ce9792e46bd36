package physics

import (
	"fmt"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

// Lorenz is the three-variable convection model
//
//	du/dt = sigma*(v - u)
//	dv/dt = rho*u - v - u*w
//	dw/dt = u*v - beta*w
//
// With the canonical coefficients (10, 28, 8/3) trajectories settle onto
// the butterfly attractor.
type Lorenz struct{ sigma, rho, beta float64 }

func NewLorenz() *Lorenz { return &Lorenz{10.0, 28.0, 8.0 / 3.0} }

func (l *Lorenz) Dim() int { return 3 }

// Derive evaluates the Lorenz equations at state (u, v, w).
func (l *Lorenz) Derive(s dynamo.State, _ float64) dynamo.State {
	u, v, w := s[0], s[1], s[2]
	return dynamo.State{
		l.sigma * (v - u),
		l.rho*u - v - u*w,
		u*v - l.beta*w,
	}
}

func (l *Lorenz) DefaultState() dynamo.State { return dynamo.State{0.0, 1.0, 1.05} }

func (l *Lorenz) Params() map[string]float64 {
	return map[string]float64{"sigma": l.sigma, "rho": l.rho, "beta": l.beta}
}

func (l *Lorenz) SetParam(name string, v float64) error {
	switch name {
	case "sigma":
		l.sigma = v
	case "rho":
		l.rho = v
	case "beta":
		l.beta = v
	default:
		return fmt.Errorf("lorenz: unknown parameter %q", name)
	}
	return nil
}
