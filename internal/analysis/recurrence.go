package analysis

import (
	"fmt"
	"math"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

// MinReturnDistance reports how close a sampled trajectory comes to an
// earlier point of itself once at least minLag samples separate the pair.
// Periodic orbits collapse toward zero while chaotic ones keep a positive
// floor. The scan is quadratic in the sample count.
func MinReturnDistance(states []dynamo.State, minLag int) (float64, error) {
	if minLag <= 0 {
		return 0, fmt.Errorf("%w: lag %d", dynamo.ErrInvalidParams, minLag)
	}
	if minLag >= len(states) {
		return 0, fmt.Errorf("%w: lag %d leaves no pairs among %d samples", dynamo.ErrInvalidParams, minLag, len(states))
	}

	best := math.Inf(1)
	for i := 0; i+minLag < len(states); i++ {
		for j := i + minLag; j < len(states); j++ {
			if d := states[i].Dist(states[j]); d < best {
				best = d
			}
		}
	}
	return best, nil
}
