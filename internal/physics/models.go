package physics

import (
	"fmt"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

// Model is a named flow with tunable coefficients and a canonical
// starting point.
type Model interface {
	dynamo.System
	dynamo.Configurable
	DefaultState() dynamo.State
}

// New returns the model registered under name with default coefficients.
func New(name string) (Model, error) {
	switch name {
	case "lorenz":
		return NewLorenz(), nil
	case "rossler":
		return NewRossler(), nil
	}
	return nil, fmt.Errorf("physics: unknown model %q", name)
}

// Names lists the available models.
func Names() []string { return []string{"lorenz", "rossler"} }
