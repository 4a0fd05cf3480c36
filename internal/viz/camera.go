package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is an orthographic orbit camera looking down the Z axis.
type Camera struct {
	RotX, RotY float64
	Zoom       float64
	Extent     float64 // world half-width that fits the canvas at Zoom 1
	Center     r3.Vec
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1, Extent: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(50, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.02, c.Zoom/1.2) }

// Fit centres the camera on the given points and sizes the extent so that all
// of them are visible with a small margin.
func (c *Camera) Fit(points []r3.Vec) {
	if len(points) == 0 {
		return
	}
	var sum r3.Vec
	for _, p := range points {
		sum = r3.Add(sum, p)
	}
	c.Center = r3.Scale(1/float64(len(points)), sum)

	extent := 0.0
	for _, p := range points {
		if d := r3.Norm(r3.Sub(p, c.Center)); d > extent {
			extent = d
		}
	}
	if extent == 0 {
		extent = 1
	}
	c.Extent = extent * 1.25
}

func (c *Camera) rotate(p r3.Vec) r3.Vec {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	return p
}

// Project maps a world position to dot coordinates on a sw x sh canvas and
// reports whether it lands inside.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, bool) {
	rot := c.rotate(r3.Sub(p, c.Center))
	minDim := float64(sh)
	if float64(sw) < minDim {
		minDim = float64(sw)
	}
	scale := c.Zoom * minDim / (2 * c.Extent)
	sx := int(math.Round(rot.X*scale)) + sw/2
	sy := int(math.Round(-rot.Y*scale)) + sh/2
	return sx, sy, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}
