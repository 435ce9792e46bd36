package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/gicrisf/org-lorenz-attractor/internal/analysis"
	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
	"github.com/gicrisf/org-lorenz-attractor/internal/viz"
)

// CanvasToSVG converts a braille canvas to an SVG dot field, one circle
// per set dot on a dark background. scale is the pixel pitch per dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#33ff66">
`, width, height, width, height))

	radius := scale * 0.4
	for y := 0; y < canvas.Height*4; y++ {
		for x := 0; x < canvas.Width*2; x++ {
			if !canvas.DotAt(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, radius))
		}
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// PhaseSVG draws the (xi, yi) component projection as a single SVG path,
// in the same dark style as the terminal views.
func PhaseSVG(w io.Writer, states []dynamo.State, xi, yi, width, height int) error {
	if err := checkComponents(states, xi, yi); err != nil {
		return err
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: %dx%d image", dynamo.ErrInvalidParams, width, height)
	}
	b, err := analysis.BoundsOf(states)
	if err != nil {
		return err
	}
	minX, spanX := padSpan(b.Min[xi], b.Max[xi])
	minY, spanY := padSpan(b.Min[yi], b.Max[yi])

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="#33ff66" stroke-width="1" d="M`, width, height, width, height))

	for i, s := range states {
		x := (s[xi] - minX) / spanX * float64(width)
		y := float64(height) - (s[yi]-minY)/spanY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n</svg>\n")

	_, err = io.WriteString(w, sb.String())
	return err
}

func padSpan(lo, hi float64) (min, span float64) {
	raw := hi - lo
	if raw <= 0 {
		raw = 1
	}
	return lo - 0.1*raw, raw * 1.2
}
