package render

import (
	"fmt"

	"github.com/taigrr/prism/pkg/math3d"
)

// ClipEpsilon nudges clip intersections towards the kept side of a depth
// plane so that new vertices never land exactly on it.
const ClipEpsilon = 1e-7

// MaxClipTriangles bounds the output of ClipDepth: each of the two depth
// planes can at most double the triangle count.
const MaxClipTriangles = 12

// Attributes are the per-vertex values interpolated across a triangle.
type Attributes struct {
	Depth  float64     // distance in front of the camera
	Normal math3d.Vec3 // surface normal
	Light  math3d.Vec3 // unit incident light direction, light to surface
	Half   math3d.Vec3 // unit half vector between the eye direction and -Light
	UV     math3d.Vec2
}

// Lerp linearly interpolates every attribute.
func (a Attributes) Lerp(b Attributes, t float64) Attributes {
	return Attributes{
		Depth:  a.Depth + (b.Depth-a.Depth)*t,
		Normal: a.Normal.Lerp(b.Normal, t),
		Light:  a.Light.Lerp(b.Light, t),
		Half:   a.Half.Lerp(b.Half, t),
		UV:     a.UV.Lerp(b.UV, t),
	}
}

// Vertex is a world-space triangle corner with its attributes.
type Vertex struct {
	Position math3d.Vec3
	Attributes
}

func (v Vertex) lerp(w Vertex, t float64) Vertex {
	return Vertex{
		Position:   v.Position.Lerp(w.Position, t),
		Attributes: v.Attributes.Lerp(w.Attributes, t),
	}
}

// Triangle is a transient world-space triangle. Counter-clockwise winding,
// seen from outside, is front facing.
type Triangle [3]Vertex

// Centroid returns the mean of the three positions.
func (t *Triangle) Centroid() math3d.Vec3 {
	return math3d.Sum(t[0].Position, t[1].Position, t[2].Position).Div(3)
}

// FaceNormal returns the unnormalized geometric normal.
func (t *Triangle) FaceNormal() math3d.Vec3 {
	return t[1].Position.Sub(t[0].Position).Cross(t[2].Position.Sub(t[0].Position))
}

// BackFacing reports whether the triangle faces away from eye.
func BackFacing(eye math3d.Vec3, t *Triangle) bool {
	return eye.Sub(t.Centroid()).Dot(t.FaceNormal()) <= 0
}

// Visible tests the triangle against the four lateral planes. It is
// rejected only when all three vertices lie outside a single plane;
// partially outside triangles are kept whole and left to the rasterizer's
// bounding box clamp.
func (f *Frustum) Visible(t *Triangle) bool {
	for _, i := range [4]int{PlaneLeft, PlaneRight, PlaneTop, PlaneBottom} {
		p := f.Planes[i]
		if p.Eval(t[0].Position) < 0 && p.Eval(t[1].Position) < 0 && p.Eval(t[2].Position) < 0 {
			return false
		}
	}
	return true
}

// ClipBuffer is scratch storage for ClipDepth. The zero value is ready to
// use; reusing one buffer across triangles avoids allocation.
type ClipBuffer struct {
	stage [2][MaxClipTriangles]Triangle
	count [2]int
}

func (b *ClipBuffer) push(stage int, t Triangle) {
	if b.count[stage] == MaxClipTriangles {
		panic(fmt.Sprintf("render: clip output exceeds %d triangles", MaxClipTriangles))
	}
	b.stage[stage][b.count[stage]] = t
	b.count[stage]++
}

// ClipDepth clips t against the near plane and then the far plane. The
// returned slice aliases buf and is valid until the next call with the
// same buffer.
func (f *Frustum) ClipDepth(t *Triangle, buf *ClipBuffer) []Triangle {
	cur := 0
	buf.count[cur] = 0
	buf.push(cur, *t)

	for _, pi := range [2]int{PlaneNear, PlaneFar} {
		next := 1 - cur
		buf.count[next] = 0
		for i := range buf.count[cur] {
			buf.clipPlane(f.Planes[pi], &buf.stage[cur][i], next)
		}
		cur = next
	}
	return buf.stage[cur][:buf.count[cur]]
}

func (b *ClipBuffer) clipPlane(p ViewPlane, t *Triangle, out int) {
	d := [3]float64{p.Eval(t[0].Position), p.Eval(t[1].Position), p.Eval(t[2].Position)}

	inside := 0
	for _, v := range d {
		if v > 0 {
			inside++
		}
	}
	switch inside {
	case 3:
		b.push(out, *t)
		return
	case 0:
		return
	}

	// Rotate so the vertex alone on its side is last. Rotation keeps the
	// winding.
	v := *t
	for (d[2] > 0) == (inside == 2) {
		v[0], v[1], v[2] = v[1], v[2], v[0]
		d[0], d[1], d[2] = d[1], d[2], d[0]
	}

	last := v[2].Position
	t02 := d[0] / p.Normal.Dot(v[0].Position.Sub(last))
	t12 := d[1] / p.Normal.Dot(v[1].Position.Sub(last))

	if inside == 2 {
		// Lone vertex outside: keep the quad v0 v1 p12 p02.
		p02 := v[0].lerp(v[2], clamp01(t02-ClipEpsilon))
		p12 := v[1].lerp(v[2], clamp01(t12-ClipEpsilon))
		b.push(out, Triangle{v[0], v[1], p12})
		b.push(out, Triangle{v[0], p12, p02})
		return
	}

	// Lone vertex inside: keep the corner at v2.
	p02 := v[0].lerp(v[2], clamp01(t02+ClipEpsilon))
	p12 := v[1].lerp(v[2], clamp01(t12+ClipEpsilon))
	b.push(out, Triangle{p02, p12, v[2]})
}

func clamp01(t float64) float64 {
	return max(0, min(1, t))
}
