package analysis

import (
	"fmt"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
	"github.com/gicrisf/org-lorenz-attractor/internal/integrators"
)

// Crossing is one upward pass of a trajectory through a section plane.
type Crossing struct {
	T     float64
	State dynamo.State
}

// Poincare locates upward crossings of the plane component == level. A
// uniform scan over n samples brackets each crossing and bisection on the
// dense solution pins it down without further vector field work.
func Poincare(sol *integrators.Solution, component int, level float64, n int) ([]Crossing, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: scan resolution %d", dynamo.ErrInvalidParams, n)
	}
	ts, states, err := sol.SampleUniform(n)
	if err != nil {
		return nil, err
	}
	if component < 0 || component >= len(states[0]) {
		return nil, fmt.Errorf("%w: component %d of %d", dynamo.ErrInvalidParams, component, len(states[0]))
	}

	var crossings []Crossing
	for i := 1; i < len(ts); i++ {
		prev := states[i-1][component] - level
		curr := states[i][component] - level
		if prev >= 0 || curr < 0 {
			continue
		}

		lo, hi := ts[i-1], ts[i]
		for iter := 0; iter < 50 && hi-lo > 0; iter++ {
			mid := lo + (hi-lo)/2
			y, err := sol.At(mid)
			if err != nil {
				return nil, err
			}
			if y[component]-level < 0 {
				lo = mid
			} else {
				hi = mid
			}
		}
		y, err := sol.At(hi)
		if err != nil {
			return nil, err
		}
		crossings = append(crossings, Crossing{T: hi, State: y})
	}
	return crossings, nil
}
