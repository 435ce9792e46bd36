package viz

import (
	"math"

	"github.com/gicrisf/org-lorenz-attractor/internal/analysis"
	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// nearPlane is the minimum distance a point must keep from the camera.
const nearPlane = 0.1

// Camera projects world coordinates onto the canvas with a simple
// perspective transform. World space is expected to be normalized so the
// scene fits in a cube of side 3 around the origin; see Fit.
type Camera struct {
	// Dist is the camera's distance from the origin along +Z.
	Dist             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Dist: 5, Zoom: 1}
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// RotatePoint applies the camera's X, Y and Z rotations in that order.
func (c *Camera) RotatePoint(p Vec3) Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project maps a world point to dot coordinates on a sw x sh dot screen.
// ok is false when the point falls behind the camera plane. Coordinates
// may land outside the screen; Canvas.Set ignores those dots.
func (c *Camera) Project(p Vec3, sw, sh int) (x, y int, ok bool) {
	rot := c.RotatePoint(p).Scale(c.Zoom)
	if rot.Z >= c.Dist-nearPlane {
		return 0, 0, false
	}
	scale := c.Dist / (c.Dist - rot.Z)
	minDim := float64(sh)
	if float64(sw) < minDim {
		minDim = float64(sw)
	}
	pScale := minDim / 3.0
	x = int(rot.X*scale*pScale) + sw/2
	y = int(-rot.Y*scale*pScale) + sh/2
	return x, y, true
}

// Fit returns the translation and scale that center a trajectory inside
// the camera's view volume: the widest bounding-box span maps to 3 world
// units, the same length the projection maps to the screen's short side.
func Fit(b analysis.Bounds) (center dynamo.State, scale float64) {
	center = b.Center()
	span := b.MaxSpan()
	if span <= 0 {
		return center, 1
	}
	return center, 3 / span
}

// worldPoint maps a state to render space. The first component goes right,
// the third up and the second toward the viewer, so the attractor's w axis
// is vertical on screen.
func worldPoint(s, center dynamo.State, scale float64) Vec3 {
	return Vec3{
		X: (s[0] - center[0]) * scale,
		Y: (s[2] - center[2]) * scale,
		Z: (s[1] - center[1]) * scale,
	}
}

// DrawTrajectory projects the state sequence through cam and draws it as a
// connected dot path. States need at least three components.
func DrawTrajectory(c *Canvas, cam *Camera, states []dynamo.State, center dynamo.State, scale float64) {
	if len(states) == 0 {
		return
	}
	sw, sh := c.Width*2, c.Height*4
	px, py, pok := cam.Project(worldPoint(states[0], center, scale), sw, sh)
	if len(states) == 1 {
		if pok {
			c.Set(px, py)
		}
		return
	}
	for _, s := range states[1:] {
		x, y, ok := cam.Project(worldPoint(s, center, scale), sw, sh)
		if ok && pok {
			c.DrawLine(px, py, x, y)
		}
		px, py, pok = x, y, ok
	}
}

// DrawMarker paints a 3x3 dot block at the projected point.
func DrawMarker(c *Canvas, cam *Camera, p Vec3) {
	sw, sh := c.Width*2, c.Height*4
	x, y, ok := cam.Project(p, sw, sh)
	if !ok {
		return
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c.Set(x+dx, y+dy)
		}
	}
}

// DrawAxes draws the three coordinate axes out of the world origin.
func DrawAxes(c *Canvas, cam *Camera, length float64) {
	sw, sh := c.Width*2, c.Height*4
	ox, oy, ook := cam.Project(Vec3{}, sw, sh)
	if !ook {
		return
	}
	ends := []Vec3{{length, 0, 0}, {0, length, 0}, {0, 0, length}}
	for _, end := range ends {
		if x, y, ok := cam.Project(end, sw, sh); ok {
			c.DrawLine(ox, oy, x, y)
		}
	}
}
