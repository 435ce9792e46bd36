package viz

import (
	"math"
	"testing"

	"github.com/gicrisf/org-lorenz-attractor/internal/analysis"
	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

func TestVec3Ops(t *testing.T) {
	a, b := Vec3{1, 2, 3}, Vec3{4, 5, 6}
	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Fatalf("Add = %+v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Fatalf("Sub = %+v", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Fatalf("Scale = %+v", got)
	}
	if got := (Vec3{3, 4, 0}).Length(); got != 5 {
		t.Fatalf("Length = %g", got)
	}
}

func TestProjectCentersOrigin(t *testing.T) {
	cam := NewCamera()
	x, y, ok := cam.Project(Vec3{}, 160, 96)
	if !ok {
		t.Fatal("origin not visible")
	}
	if x != 80 || y != 48 {
		t.Fatalf("origin projects to (%d,%d), want (80,48)", x, y)
	}
}

func TestProjectBehindCamera(t *testing.T) {
	cam := NewCamera()
	if _, _, ok := cam.Project(Vec3{Z: cam.Dist}, 160, 96); ok {
		t.Fatal("point at camera depth reported visible")
	}
}

func TestProjectPerspective(t *testing.T) {
	cam := NewCamera()
	near, _, ok := cam.Project(Vec3{X: 1, Z: 1}, 160, 96)
	if !ok {
		t.Fatal("near point not visible")
	}
	far, _, ok := cam.Project(Vec3{X: 1, Z: -1}, 160, 96)
	if !ok {
		t.Fatal("far point not visible")
	}
	if near-80 <= far-80 {
		t.Fatalf("near point offset %d not larger than far offset %d", near-80, far-80)
	}
}

func TestRotateFullCircle(t *testing.T) {
	cam := NewCamera()
	cam.RotY = 2 * math.Pi
	p := cam.RotatePoint(Vec3{X: 1})
	if math.Abs(p.X-1) > 1e-9 || math.Abs(p.Y) > 1e-9 || math.Abs(p.Z) > 1e-9 {
		t.Fatalf("full turn moved point to %+v", p)
	}
}

func TestZoomBounds(t *testing.T) {
	cam := NewCamera()
	for i := 0; i < 50; i++ {
		cam.ZoomIn()
	}
	if cam.Zoom > 10 {
		t.Fatalf("zoom %g exceeds cap", cam.Zoom)
	}
	for i := 0; i < 100; i++ {
		cam.ZoomOut()
	}
	if cam.Zoom < 0.1 {
		t.Fatalf("zoom %g below floor", cam.Zoom)
	}
}

func TestFitScalesWidestSpan(t *testing.T) {
	b := analysis.Bounds{Min: dynamo.State{0, 0, 0}, Max: dynamo.State{10, 20, 40}}
	center, scale := Fit(b)
	want := dynamo.State{5, 10, 20}
	for i := range want {
		if center[i] != want[i] {
			t.Fatalf("center = %v, want %v", center, want)
		}
	}
	if math.Abs(scale-3.0/40) > 1e-15 {
		t.Fatalf("scale = %g, want %g", scale, 3.0/40)
	}
}

func TestFitDegenerateBounds(t *testing.T) {
	b := analysis.Bounds{Min: dynamo.State{1, 1, 1}, Max: dynamo.State{1, 1, 1}}
	if _, scale := Fit(b); scale != 1 {
		t.Fatalf("degenerate scale = %g, want 1", scale)
	}
}

func TestWorldPointOrientation(t *testing.T) {
	center := dynamo.State{0, 0, 0}
	p := worldPoint(dynamo.State{1, 2, 3}, center, 2)
	if p.X != 2 || p.Y != 6 || p.Z != 4 {
		t.Fatalf("worldPoint = %+v, want {2 6 4}", p)
	}
}

func TestDrawTrajectoryMarksCanvas(t *testing.T) {
	c := NewCanvas(40, 20)
	cam := NewCamera()
	states := []dynamo.State{{-10, 0, -10}, {10, 0, 10}}
	b, err := analysis.BoundsOf(states)
	if err != nil {
		t.Fatal(err)
	}
	center, scale := Fit(b)
	DrawTrajectory(c, cam, states, center, scale)
	count := 0
	for y := 0; y < 80; y++ {
		for x := 0; x < 80; x++ {
			if c.DotAt(x, y) {
				count++
			}
		}
	}
	if count < 10 {
		t.Fatalf("trajectory set %d dots, want a visible line", count)
	}
}
