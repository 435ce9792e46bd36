package export

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

var lineColor = color.RGBA{R: 0x2b, G: 0x6c, B: 0xb8, A: 0xff}

// PlotPhase renders the (xi, yi) component projection as a vector plot.
// The output format follows the path extension; gonum/plot understands
// png, svg, pdf and eps among others.
func PlotPhase(states []dynamo.State, xi, yi int, title, path string) error {
	if err := checkComponents(states, xi, yi); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = ComponentName(xi)
	p.Y.Label.Text = ComponentName(yi)
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(states))
	for i, s := range states {
		pts[i] = plotter.XY{X: s[xi], Y: s[yi]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = lineColor
	line.Width = vg.Points(0.5)
	p.Add(line)

	return p.Save(7*vg.Inch, 5*vg.Inch, path)
}

// PlotSeries renders one component against time.
func PlotSeries(times []float64, states []dynamo.State, component int, title, path string) error {
	if len(times) != len(states) {
		return fmt.Errorf("%w: %d times for %d states", dynamo.ErrInvalidParams, len(times), len(states))
	}
	if err := checkComponents(states, component, component); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Y.Label.Text = ComponentName(component)
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(states))
	for i, s := range states {
		pts[i] = plotter.XY{X: times[i], Y: s[component]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = lineColor
	line.Width = vg.Points(1)
	p.Add(line)

	return p.Save(7*vg.Inch, 3*vg.Inch, path)
}

// ComponentName labels a state component: u, v, w for the three variable
// attractor models, x<i> beyond that.
func ComponentName(i int) string {
	names := []string{"u", "v", "w"}
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("x%d", i)
}

// ComponentIndex resolves a component label accepted on the command line.
func ComponentIndex(name string) (int, error) {
	switch name {
	case "u", "x", "0":
		return 0, nil
	case "v", "y", "1":
		return 1, nil
	case "w", "z", "2":
		return 2, nil
	}
	return 0, fmt.Errorf("%w: unknown component %q", dynamo.ErrInvalidParams, name)
}

func checkComponents(states []dynamo.State, xi, yi int) error {
	if len(states) == 0 {
		return fmt.Errorf("%w: no samples", dynamo.ErrInvalidParams)
	}
	dim := len(states[0])
	if xi < 0 || xi >= dim || yi < 0 || yi >= dim {
		return fmt.Errorf("%w: components (%d, %d) for dimension %d", dynamo.ErrInvalidParams, xi, yi, dim)
	}
	return nil
}
