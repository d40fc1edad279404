package render

import (
	"image"
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C through
// (x0, y0) and (x1, y1).
func edgeCoeffs(x0, y0, x1, y1 float64) (a, b, c float64) {
	a = y0 - y1
	b = x1 - x0
	c = x0*y1 - x1*y0
	return
}

func edgeFunc(a, b, c, x, y float64) float64 {
	return a*x + b*y + c
}

// edge is one triangle edge function together with its value at the
// opposite vertex. Dividing by that value yields the vertex's barycentric
// weight with the same sign for either winding.
type edge struct {
	a, b, c  float64
	opposite float64
	// owns reports whether pixels exactly on the edge belong to this
	// triangle: the edge function at (-1, -1) has the same sign as at the
	// opposite vertex.
	owns bool
}

func newEdge(p, q, opposite math3d.Vec2) (edge, bool) {
	a, b, c := edgeCoeffs(p.X, p.Y, q.X, q.Y)
	f := edgeFunc(a, b, c, opposite.X, opposite.Y)
	if f == 0 {
		return edge{}, false
	}
	return edge{a: a, b: b, c: c, opposite: f, owns: f*edgeFunc(a, b, c, -1, -1) > 0}, true
}

// weight returns the barycentric weight at (x, y) and whether the point is
// on the covered side of the edge. Ties are resolved on the raw edge value
// so that shared edges see the exact same zero.
func (e edge) weight(x, y float64) (float64, bool) {
	w := edgeFunc(e.a, e.b, e.c, x, y) / e.opposite
	return w, w > 0 || (w == 0 && e.owns)
}

// DrawTriangle rasterizes a screen-space triangle and shades it with mat.
// Pixel centres sit on integer coordinates (bottom-origin). Either winding
// is accepted; degenerate triangles draw nothing. It returns the number of
// pixels that passed the depth test.
func (c *Canvas) DrawTriangle(screen [3]math3d.Vec2, attrs [3]Attributes, mat *Material) int {
	e0, ok0 := newEdge(screen[1], screen[2], screen[0])
	e1, ok1 := newEdge(screen[2], screen[0], screen[1])
	e2, ok2 := newEdge(screen[0], screen[1], screen[2])
	if !ok0 || !ok1 || !ok2 {
		return 0
	}

	box, ok := c.triangleBounds(screen)
	if !ok {
		return 0
	}

	blend := mat.Transparent()
	drawn := 0
	for y := box.Min.Y; y < box.Max.Y; y++ {
		py := float64(y)
		for x := box.Min.X; x < box.Max.X; x++ {
			px := float64(x)
			alpha, in0 := e0.weight(px, py)
			beta, in1 := e1.weight(px, py)
			gamma, in2 := e2.weight(px, py)
			if in0 && in1 && in2 && c.shadePixel(x, y, alpha, beta, gamma, &attrs, mat, blend) {
				drawn++
			}
		}
	}
	return drawn
}

// triangleBounds returns the half-open pixel box to scan: the floor/ceil
// of the vertex extents clamped to the canvas and the scissor rectangle.
func (c *Canvas) triangleBounds(s [3]math3d.Vec2) (image.Rectangle, bool) {
	minX := math.Floor(min(s[0].X, s[1].X, s[2].X))
	maxX := math.Ceil(max(s[0].X, s[1].X, s[2].X))
	minY := math.Floor(min(s[0].Y, s[1].Y, s[2].Y))
	maxY := math.Ceil(max(s[0].Y, s[1].Y, s[2].Y))

	clip := c.Bounds()
	if !c.scissor.Empty() {
		clip = clip.Intersect(c.scissor)
	}
	// Clamp in float space first so huge coordinates never overflow int.
	r := image.Rect(
		int(max(minX, float64(clip.Min.X))),
		int(max(minY, float64(clip.Min.Y))),
		int(min(maxX+1, float64(clip.Max.X))),
		int(min(maxY+1, float64(clip.Max.Y))),
	)
	if r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y {
		return image.Rectangle{}, false
	}
	return r, true
}

// shadePixel interpolates the attributes at (x, y), runs the depth test
// and writes the shaded (and possibly blended) color.
func (c *Canvas) shadePixel(x, y int, alpha, beta, gamma float64, a *[3]Attributes, mat *Material, blend bool) bool {
	i := c.offset(x, y)

	z := alpha*a[0].Depth + beta*a[1].Depth + gamma*a[2].Depth
	if c.depth != nil {
		if !(z < c.depth[i]) {
			return false
		}
		if c.depthWrite {
			c.depth[i] = z
		}
	}

	n := math3d.Sum(a[0].Normal.Scale(alpha), a[1].Normal.Scale(beta), a[2].Normal.Scale(gamma)).Normalize()
	l := math3d.Sum(a[0].Light.Scale(alpha), a[1].Light.Scale(beta), a[2].Light.Scale(gamma)).Normalize()
	h := math3d.Sum(a[0].Half.Scale(alpha), a[1].Half.Scale(beta), a[2].Half.Scale(gamma)).Normalize()
	uv := a[0].UV.Scale(alpha).Add(a[1].UV.Scale(beta)).Add(a[2].UV.Scale(gamma))

	col := mat.Shade(n, l, h, uv)

	p := c.pix[i*BytesPerPixel : i*BytesPerPixel+3 : i*BytesPerPixel+3]
	if blend {
		op := mat.Opacity
		dst := math3d.V3(float64(p[0])/255, float64(p[1])/255, float64(p[2])/255)
		col = col.Scale(op).Add(dst.Scale(1 - op))
	}
	p[0] = toByte(col.X)
	p[1] = toByte(col.Y)
	p[2] = toByte(col.Z)
	return true
}

func toByte(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
