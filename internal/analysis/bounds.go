package analysis

import (
	"fmt"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

// Bounds is the per-component extent of a sampled trajectory.
type Bounds struct {
	Min dynamo.State
	Max dynamo.State
}

// BoundsOf scans the samples and returns the componentwise minima and maxima.
func BoundsOf(states []dynamo.State) (Bounds, error) {
	if len(states) == 0 {
		return Bounds{}, fmt.Errorf("%w: no samples", dynamo.ErrInvalidParams)
	}

	b := Bounds{Min: states[0].Clone(), Max: states[0].Clone()}
	for _, s := range states[1:] {
		for i, v := range s {
			if v < b.Min[i] {
				b.Min[i] = v
			}
			if v > b.Max[i] {
				b.Max[i] = v
			}
		}
	}
	return b, nil
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() dynamo.State {
	c := make(dynamo.State, len(b.Min))
	for i := range c {
		c[i] = (b.Min[i] + b.Max[i]) / 2
	}
	return c
}

// MaxSpan returns the largest componentwise extent, the scale a renderer
// needs to fit the whole attractor.
func (b Bounds) MaxSpan() float64 {
	span := 0.0
	for i := range b.Min {
		if s := b.Max[i] - b.Min[i]; s > span {
			span = s
		}
	}
	return span
}
