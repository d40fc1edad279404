package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// Wireframe draws world-space segments as debug lines. It captures the
// camera transform when created, so build a new one each frame.
type Wireframe struct {
	canvas *Canvas
	xf     math3d.Mat4
	near   ViewPlane
}

// NewWireframe prepares a wireframe overlay for the camera's current
// pose.
func NewWireframe(camera *Camera, canvas *Canvas) (*Wireframe, error) {
	xf, err := camera.Transform()
	if err != nil {
		return nil, err
	}
	planes, err := camera.ViewPlanes()
	if err != nil {
		return nil, err
	}
	return &Wireframe{canvas: canvas, xf: xf, near: planes.Planes[PlaneNear]}, nil
}

// DrawLine3D draws the part of segment p1-p2 in front of the near plane.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	d1, d2 := w.near.Eval(p1), w.near.Eval(p2)
	switch {
	case d1 <= 0 && d2 <= 0:
		return
	case d1 <= 0:
		p1 = p1.Lerp(p2, d1/(d1-d2)+ClipEpsilon)
	case d2 <= 0:
		p2 = p2.Lerp(p1, d2/(d2-d1)+ClipEpsilon)
	}

	s1 := ProjectPoint(w.xf, p1)
	s2 := ProjectPoint(w.xf, p2)
	if !finite(s1) || !finite(s2) {
		return
	}
	w.canvas.DrawLine(pixel(s1.X), pixel(s1.Y), pixel(s2.X), pixel(s2.Y), color)
}

// boxEdges lists AABB.Corners index pairs that differ in one axis.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// DrawBox draws the twelve edges of box.
func (w *Wireframe) DrawBox(box AABB, color Color) {
	c := box.Corners()
	for _, e := range boxEdges {
		w.DrawLine3D(c[e[0]], c[e[1]], color)
	}
}

// DrawAxes draws the world axes from origin: X red, Y green, Z blue.
func (w *Wireframe) DrawAxes(origin math3d.Vec3, length float64) {
	w.DrawLine3D(origin, origin.Add(math3d.V3(length, 0, 0)), ColorRed)
	w.DrawLine3D(origin, origin.Add(math3d.V3(0, length, 0)), ColorGreen)
	w.DrawLine3D(origin, origin.Add(math3d.V3(0, 0, length)), ColorBlue)
}

// pixel maps a screen coordinate to the pixel whose centre is nearest,
// clamped to a range that keeps line stepping finite.
func pixel(v float64) int {
	const limit = 1 << 20
	return int(math.Floor(max(-limit, min(limit, v)) + 0.5))
}

func finite(v math3d.Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
