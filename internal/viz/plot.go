package viz

import (
	"fmt"

	"github.com/gicrisf/org-lorenz-attractor/internal/analysis"
	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

// padFraction keeps the trajectory off the canvas border.
const padFraction = 0.05

// Plot2D draws the (xi, yi) component projection of a state sequence onto
// a fresh canvas of width x height character cells. The trajectory is
// scaled to fill the canvas with a small margin; a constant component
// collapses to a centered line.
func Plot2D(states []dynamo.State, xi, yi, width, height int) (*Canvas, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d canvas", dynamo.ErrInvalidParams, width, height)
	}
	b, err := analysis.BoundsOf(states)
	if err != nil {
		return nil, err
	}
	dim := len(b.Min)
	if xi < 0 || xi >= dim || yi < 0 || yi >= dim {
		return nil, fmt.Errorf("%w: components (%d, %d) for dimension %d", dynamo.ErrInvalidParams, xi, yi, dim)
	}

	minX, spanX := padRange(b.Min[xi], b.Max[xi])
	minY, spanY := padRange(b.Min[yi], b.Max[yi])

	c := NewCanvas(width, height)
	sw, sh := width*2, height*4
	toDot := func(s dynamo.State) (int, int) {
		x := int((s[xi] - minX) / spanX * float64(sw-1))
		y := int((minY + spanY - s[yi]) / spanY * float64(sh-1))
		return x, y
	}

	px, py := toDot(states[0])
	c.Set(px, py)
	for _, s := range states[1:] {
		x, y := toDot(s)
		c.DrawLine(px, py, x, y)
		px, py = x, y
	}
	return c, nil
}

func padRange(lo, hi float64) (min, span float64) {
	raw := hi - lo
	if raw <= 0 {
		raw = 1
	}
	return lo - padFraction*raw, raw * (1 + 2*padFraction)
}
