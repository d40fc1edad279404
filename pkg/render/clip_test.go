package render

import (
	"errors"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
)

func testFrustum(t testing.TB) Frustum {
	t.Helper()
	f, err := newTestCamera(t).ViewPlanes()
	if err != nil {
		t.Fatalf("ViewPlanes: %v", err)
	}
	return f
}

func tri(a, b, c math3d.Vec3) Triangle {
	mk := func(p math3d.Vec3, u float64) Vertex {
		return Vertex{Position: p, Attributes: Attributes{
			Depth:  -p.Z,
			Normal: math3d.V3(0, 0, 1),
			UV:     math3d.V2(u, u),
		}}
	}
	return Triangle{mk(a, 0), mk(b, 0.5), mk(c, 0.9)}
}

func TestNewViewPlaneOrientation(t *testing.T) {
	interior := math3d.V3(0, 0, 5)
	// Both windings must end up facing the interior.
	for _, pts := range [][3]math3d.Vec3{
		{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 0)},
	} {
		p, err := NewViewPlane(pts[0], pts[1], pts[2], interior)
		if err != nil {
			t.Fatal(err)
		}
		if p.Normal.Distance(math3d.V3(0, 0, 1)) > eps || p.K != 0 {
			t.Errorf("plane = %+v, want normal +Z through origin", p)
		}
		if !approx(p.Eval(interior), 5) {
			t.Errorf("Eval(interior) = %v, want 5", p.Eval(interior))
		}
	}
}

func TestNewViewPlaneDegenerate(t *testing.T) {
	_, err := NewViewPlane(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(2, 0, 0), math3d.V3(0, 0, 1))
	if !errors.Is(err, ErrDegenerateFrustum) {
		t.Errorf("collinear points: err = %v, want ErrDegenerateFrustum", err)
	}
}

func TestViewPlanesFaceInward(t *testing.T) {
	f := testFrustum(t)

	inside := []math3d.Vec3{
		math3d.V3(0, 0, -2),
		math3d.V3(0, 0, -99),
		math3d.V3(4, -4, -5),
	}
	for _, p := range inside {
		for i := range f.Planes {
			if got := f.Planes[i].Eval(p); got < 0 {
				t.Errorf("%s plane: Eval(%v) = %v, want >= 0", PlaneName(i), p, got)
			}
		}
	}

	outside := map[int]math3d.Vec3{
		PlaneNear:   math3d.V3(0, 0, -0.5),
		PlaneFar:    math3d.V3(0, 0, -101),
		PlaneLeft:   math3d.V3(-6, 0, -5),
		PlaneRight:  math3d.V3(6, 0, -5),
		PlaneTop:    math3d.V3(0, 6, -5),
		PlaneBottom: math3d.V3(0, -6, -5),
	}
	for i, p := range outside {
		if got := f.Planes[i].Eval(p); got >= 0 {
			t.Errorf("%s plane: Eval(%v) = %v, want negative", PlaneName(i), p, got)
		}
	}
}

func TestFrustumIntersectAABB(t *testing.T) {
	f := testFrustum(t)
	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"in front", AABB{math3d.V3(-1, -1, -6), math3d.V3(1, 1, -4)}, true},
		{"straddling near", AABB{math3d.V3(-1, -1, -2), math3d.V3(1, 1, 2)}, true},
		{"behind", AABB{math3d.V3(-1, -1, 1), math3d.V3(1, 1, 3)}, false},
		{"beyond far", AABB{math3d.V3(-1, -1, -300), math3d.V3(1, 1, -200)}, false},
		{"far left", AABB{math3d.V3(-50, -1, -6), math3d.V3(-40, 1, -4)}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.IntersectAABB(tc.box); got != tc.want {
				t.Errorf("IntersectAABB = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClipDepthInside(t *testing.T) {
	f := testFrustum(t)
	var buf ClipBuffer
	in := tri(math3d.V3(0, 0, -5), math3d.V3(1, 0, -5), math3d.V3(0, 1, -6))

	out := f.ClipDepth(&in, &buf)
	if len(out) != 1 {
		t.Fatalf("got %d triangles, want 1", len(out))
	}
	if out[0] != in {
		t.Errorf("triangle changed: got %+v, want %+v", out[0], in)
	}
}

func TestClipDepthBeyondFar(t *testing.T) {
	f := testFrustum(t)
	var buf ClipBuffer
	in := tri(math3d.V3(0, 0, -150), math3d.V3(1, 0, -150), math3d.V3(0, 1, -160))

	if out := f.ClipDepth(&in, &buf); len(out) != 0 {
		t.Errorf("got %d triangles, want 0", len(out))
	}
}

func TestClipDepthOneBehindNear(t *testing.T) {
	f := testFrustum(t)
	var buf ClipBuffer

	// Every rotation of the same triangle must split into a quad.
	verts := [3]math3d.Vec3{math3d.V3(0, 0, -5), math3d.V3(1, 0, -5), math3d.V3(0, 1, 0.5)}
	for r := range 3 {
		in := tri(verts[r], verts[(r+1)%3], verts[(r+2)%3])
		out := f.ClipDepth(&in, &buf)
		if len(out) != 2 {
			t.Fatalf("rotation %d: got %d triangles, want 2", r, len(out))
		}
		for i, ct := range out {
			for j, v := range ct {
				if d := f.Planes[PlaneNear].Eval(v.Position); d < 0 {
					t.Errorf("rotation %d: triangle %d vertex %d behind near plane (%v)", r, i, j, d)
				}
			}
			// Winding must survive clipping.
			if ct.FaceNormal().Dot(in.FaceNormal()) <= 0 {
				t.Errorf("rotation %d: triangle %d flipped winding", r, i)
			}
		}
	}
}

func TestClipDepthTwoBehindNear(t *testing.T) {
	f := testFrustum(t)
	var buf ClipBuffer
	in := tri(math3d.V3(0, 0, 2), math3d.V3(1, 0, 2), math3d.V3(0, 1, -5))

	out := f.ClipDepth(&in, &buf)
	if len(out) != 1 {
		t.Fatalf("got %d triangles, want 1", len(out))
	}
	if out[0][2] != in[2] {
		t.Errorf("kept corner changed: got %+v, want %+v", out[0][2], in[2])
	}
}

func TestClipDepthInterpolatesAttributes(t *testing.T) {
	f := testFrustum(t)
	var buf ClipBuffer
	in := tri(math3d.V3(0, 0, 3), math3d.V3(0.5, 0, 3), math3d.V3(0, 0.5, -5))

	out := f.ClipDepth(&in, &buf)
	if len(out) != 1 {
		t.Fatalf("got %d triangles, want 1", len(out))
	}
	for _, v := range out[0][:2] {
		// Depth is the negated z coordinate, so it stays linear in position.
		if !approx(v.Depth, -v.Position.Z) {
			t.Errorf("depth %v does not match position %v", v.Depth, v.Position)
		}
		if !approx(v.Position.Z, -1) {
			t.Errorf("new vertex at z=%v, want on near plane", v.Position.Z)
		}
	}
}

func TestClipDepthSpansBothPlanes(t *testing.T) {
	f := testFrustum(t)
	var buf ClipBuffer
	in := tri(math3d.V3(0, 0, 5), math3d.V3(1, 0, -200), math3d.V3(-1, 1, -50))

	out := f.ClipDepth(&in, &buf)
	if len(out) == 0 || len(out) > MaxClipTriangles {
		t.Fatalf("got %d triangles", len(out))
	}
	for _, ct := range out {
		for _, v := range ct {
			if f.Planes[PlaneNear].Eval(v.Position) < 0 || f.Planes[PlaneFar].Eval(v.Position) < 0 {
				t.Errorf("vertex %v outside depth range", v.Position)
			}
		}
	}
}

func TestClipBufferOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("pushing past MaxClipTriangles did not panic")
		}
	}()
	var buf ClipBuffer
	for range MaxClipTriangles + 1 {
		buf.push(0, Triangle{})
	}
}

func TestVisibleRejectsOnlyFullyOutside(t *testing.T) {
	f := testFrustum(t)
	tests := []struct {
		name string
		tri  Triangle
		want bool
	}{
		{"inside", tri(math3d.V3(0, 0, -5), math3d.V3(1, 0, -5), math3d.V3(0, 1, -5)), true},
		{"partly left", tri(math3d.V3(-20, 0, -5), math3d.V3(1, 0, -5), math3d.V3(0, 1, -5)), true},
		{"fully left", tri(math3d.V3(-20, 0, -5), math3d.V3(-19, 0, -5), math3d.V3(-20, 1, -5)), false},
		{"fully above", tri(math3d.V3(0, 20, -5), math3d.V3(1, 20, -5), math3d.V3(0, 21, -5)), false},
		// Straddles left and right but never entirely outside one plane.
		{"spanning", tri(math3d.V3(-20, 0, -5), math3d.V3(20, 0, -5), math3d.V3(0, 1, -5)), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.Visible(&tc.tri); got != tc.want {
				t.Errorf("Visible = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBackFacing(t *testing.T) {
	eye := math3d.V3(0, 0, 0)
	front := tri(math3d.V3(0, 0, -5), math3d.V3(1, 0, -5), math3d.V3(0, 1, -5))
	back := tri(math3d.V3(0, 0, -5), math3d.V3(0, 1, -5), math3d.V3(1, 0, -5))
	edgeOn := tri(math3d.V3(0, 0, -5), math3d.V3(0, 1, -5), math3d.V3(0, 0, -6))

	if BackFacing(eye, &front) {
		t.Error("counter-clockwise triangle facing the eye reported back facing")
	}
	if !BackFacing(eye, &back) {
		t.Error("clockwise triangle not reported back facing")
	}
	if !BackFacing(math3d.V3(0, 0.5, -5.5), &edgeOn) {
		t.Error("edge-on triangle not reported back facing")
	}
}

func BenchmarkClipDepth(b *testing.B) {
	f := testFrustum(b)
	var buf ClipBuffer
	in := tri(math3d.V3(0, 0, 5), math3d.V3(1, 0, -200), math3d.V3(-1, 1, -50))
	for b.Loop() {
		_ = f.ClipDepth(&in, &buf)
	}
}
