package render

import (
	"fmt"

	"github.com/taigrr/prism/pkg/math3d"
)

// ViewPlane is a plane Normal·p + K = 0 with a unit normal pointing into
// the frustum.
type ViewPlane struct {
	Normal math3d.Vec3
	K      float64
}

// NewViewPlane builds the plane through p0, p1 and p2, oriented so that
// interior evaluates non-negative.
func NewViewPlane(p0, p1, p2, interior math3d.Vec3) (ViewPlane, error) {
	a, b := p1.Sub(p0), p2.Sub(p1)

	p := ViewPlane{Normal: a.Cross(b)}
	p.K = -p.Normal.Dot(p0)
	if p.Eval(interior) < 0 {
		p.Normal = b.Cross(a)
		p.K = -p.Normal.Dot(p0)
	}

	l := p.Normal.Len()
	if l == 0 || p.Eval(interior) < 0 {
		return ViewPlane{}, fmt.Errorf("%w: points %v %v %v", ErrDegenerateFrustum, p0, p1, p2)
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.K /= l
	return p, nil
}

// Eval returns the signed distance of pt from the plane. Positive is inside.
func (p ViewPlane) Eval(pt math3d.Vec3) float64 {
	return p.Normal.Dot(pt) + p.K
}

// Plane indices into Frustum.Planes.
const (
	PlaneNear = iota
	PlaneFar
	PlaneLeft
	PlaneRight
	PlaneTop
	PlaneBottom
)

var planeNames = [6]string{"near", "far", "left", "right", "top", "bottom"}

// PlaneName returns a readable name for a plane index.
func PlaneName(i int) string {
	if i < 0 || i >= len(planeNames) {
		return fmt.Sprintf("plane(%d)", i)
	}
	return planeNames[i]
}

// Frustum holds the six view planes of a camera, rebuilt every frame by
// Camera.ViewPlanes.
type Frustum struct {
	Planes [6]ViewPlane
}

// IntersectAABB reports whether any part of box may be inside the frustum.
// It tests the corner furthest along each plane normal, so it can report
// false positives near frustum edges but never false negatives.
func (f *Frustum) IntersectAABB(box AABB) bool {
	for i := range f.Planes {
		n := f.Planes[i].Normal
		pv := math3d.V3(
			pick(n.X >= 0, box.Max.X, box.Min.X),
			pick(n.Y >= 0, box.Max.Y, box.Min.Y),
			pick(n.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if f.Planes[i].Eval(pv) < 0 {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// BoundsOf returns the smallest box containing points. An empty slice
// yields the zero box.
func BoundsOf(points []math3d.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	b := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// Center returns the center of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box dimensions.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Corners returns the eight box corners. Bit 0 of the index selects Max.X,
// bit 1 Max.Y, bit 2 Max.Z.
func (b AABB) Corners() [8]math3d.Vec3 {
	var c [8]math3d.Vec3
	for i := range c {
		c[i] = math3d.V3(
			pick(i&1 != 0, b.Max.X, b.Min.X),
			pick(i&2 != 0, b.Max.Y, b.Min.Y),
			pick(i&4 != 0, b.Max.Z, b.Min.Z),
		)
	}
	return c
}

