package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
)

const size = 65 // odd, so the view axis hits pixel (32, 32)

func newTestScene(t testing.TB) *Scene {
	t.Helper()
	cam, err := render.NewCamera(size, size, math.Pi/2, -1, -100)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(cam, render.NewCanvas(size, size))
	if err != nil {
		t.Fatal(err)
	}
	s.Background = render.RGB(10, 20, 30)
	return s
}

func face(a, b, c int) models.Face {
	return models.Face{Pos: [3]int{a, b, c}, Tex: [3]int{-1, -1, -1}, Norm: [3]int{-1, -1, -1}}
}

// triangleModel returns a model with one triangle per entry of tris, each
// in its own mesh using the material of the same index (or none).
func triangleModel(t testing.TB, tris [][3]math3d.Vec3, mats ...models.Material) *models.Model {
	t.Helper()
	m := &models.Model{Name: "test", Materials: mats}
	for i, tri := range tris {
		base := len(m.Positions)
		m.Positions = append(m.Positions, tri[:]...)
		mi := -1
		if i < len(mats) {
			mi = i
		}
		m.Meshes = append(m.Meshes, models.Mesh{
			Name:     "tri",
			Faces:    []models.Face{face(base, base+1, base+2)},
			Material: mi,
		})
	}
	if err := m.Finalize(); err != nil {
		t.Fatal(err)
	}
	return m
}

// frontTri faces the default camera (looking down -Z) at depth d.
func frontTri(d, r float64) [3]math3d.Vec3 {
	return [3]math3d.Vec3{
		math3d.V3(-r, -r, -d),
		math3d.V3(r, -r, -d),
		math3d.V3(0, r, -d),
	}
}

func TestNewSizeMismatch(t *testing.T) {
	cam, err := render.NewCamera(10, 10, 1, -1, -10)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(cam, render.NewCanvas(10, 12)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("err = %v, want ErrSizeMismatch", err)
	}
}

func TestRenderFrontFacing(t *testing.T) {
	s := newTestScene(t)
	id, info, err := s.AddObject(triangleModel(t, [][3]math3d.Vec3{frontTri(5, 2)}))
	if err != nil {
		t.Fatal(err)
	}
	if id != 0 || len(info) != 1 || info[0].Triangles != 1 || info[0].Material != "default" {
		t.Fatalf("AddObject = %d, %+v", id, info)
	}

	buf, err := s.Render()
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != size*size*render.BytesPerPixel {
		t.Fatalf("len(bytes) = %d", len(buf))
	}
	st := s.Stats()
	if st.ObjectsDrawn != 1 || st.Emitted != 1 || st.Pixels == 0 {
		t.Errorf("stats = %+v", st)
	}
	if got := s.Canvas.Pixel(32, 32); got == s.Background {
		t.Error("centre pixel not drawn")
	}
	if got := s.Canvas.Pixel(0, 0); got != s.Background {
		t.Errorf("corner = %v, want background", got)
	}
}

func TestLightFacingSideIsBrighter(t *testing.T) {
	centre := func(light math3d.Vec3) render.Color {
		s := newTestScene(t)
		s.Light = light
		if _, _, err := s.AddObject(triangleModel(t, [][3]math3d.Vec3{frontTri(5, 2)})); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Render(); err != nil {
			t.Fatal(err)
		}
		return s.Canvas.Pixel(32, 32)
	}

	front := centre(math3d.V3(0, 0, 10))
	behind := centre(math3d.V3(0, 0, -50))
	if front.R <= behind.R {
		t.Errorf("light in front R=%d, light behind R=%d; want front brighter", front.R, behind.R)
	}
}

func TestRenderBackFacingDrawsNothing(t *testing.T) {
	s := newTestScene(t)
	tri := frontTri(5, 2)
	tri[1], tri[2] = tri[2], tri[1]
	if _, _, err := s.AddObject(triangleModel(t, [][3]math3d.Vec3{tri})); err != nil {
		t.Fatal(err)
	}
	buf, err := s.Render()
	if err != nil {
		t.Fatal(err)
	}
	if st := s.Stats(); st.BackFaces != 1 || st.Pixels != 0 || st.Emitted != 0 {
		t.Errorf("stats = %+v", st)
	}
	for i := 0; i < len(buf); i += render.BytesPerPixel {
		if buf[i] != 10 || buf[i+1] != 20 || buf[i+2] != 30 {
			t.Fatalf("byte %d = %v, want background", i, buf[i:i+3])
		}
	}
}

func TestRenderClipsNearPlane(t *testing.T) {
	s := newTestScene(t)
	// The apex sits behind the camera, so the near plane cuts a quad.
	tri := [3]math3d.Vec3{math3d.V3(-1, -1, -5), math3d.V3(1, -1, -5), math3d.V3(0, 0.5, 0.5)}
	if _, _, err := s.AddObject(triangleModel(t, [][3]math3d.Vec3{tri})); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	if st := s.Stats(); st.Emitted != 2 || st.Clipped != 0 || st.Pixels == 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestRenderCullsObjectOutsideFrustum(t *testing.T) {
	s := newTestScene(t)
	behind := [3]math3d.Vec3{math3d.V3(-1, -1, 5), math3d.V3(1, -1, 5), math3d.V3(0, 1, 5)}
	if _, _, err := s.AddObject(triangleModel(t, [][3]math3d.Vec3{behind})); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	if st := s.Stats(); st.ObjectsCulled != 1 || st.Triangles != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestTransparentKeepsOpaqueDepth(t *testing.T) {
	s := newTestScene(t)
	opaque := models.NewMaterial("wall")
	glass := models.NewMaterial("glass")
	glass.Diffuse = math3d.V3(0, 0, 1)
	glass.Opacity = 0.5
	m := triangleModel(t, [][3]math3d.Vec3{frontTri(10, 4), frontTri(5, 2)}, opaque, glass)
	if _, _, err := s.AddObject(m); err != nil {
		t.Fatal(err)
	}

	// Opaque only, for reference.
	wallOnly := newTestScene(t)
	if _, _, err := wallOnly.AddObject(triangleModel(t, [][3]math3d.Vec3{frontTri(10, 4)}, opaque)); err != nil {
		t.Fatal(err)
	}
	if _, err := wallOnly.Render(); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	if d := s.Canvas.Depth(32, 32); math.Abs(d-10) > 1e-9 {
		t.Errorf("depth = %v, want the opaque 10", d)
	}
	if s.Canvas.Pixel(32, 32) == wallOnly.Canvas.Pixel(32, 32) {
		t.Error("transparent triangle did not blend over the wall")
	}
}

func TestSortBackToFront(t *testing.T) {
	ts := []depthSorted{{dist: 10}, {dist: 5}, {dist: 20}}
	sortBackToFront(ts)
	want := []float64{20, 10, 5}
	for i, d := range want {
		if ts[i].dist != d {
			t.Errorf("order[%d] = %v, want %v", i, ts[i].dist, d)
		}
	}

	a, b := &models.Face{}, &models.Face{}
	ties := []depthSorted{{dist: 1, face: a}, {dist: 1, face: b}}
	sortBackToFront(ties)
	if ties[0].face != a || ties[1].face != b {
		t.Error("equal distances reordered")
	}
}

func TestSortTransparentUsesCentroidDistance(t *testing.T) {
	s := newTestScene(t)
	glass := models.NewMaterial("glass")
	glass.Opacity = 0.5
	m := triangleModel(t, [][3]math3d.Vec3{frontTri(10, 1), frontTri(5, 1), frontTri(20, 1)}, glass, glass, glass)
	o, err := NewObject(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(o.Transparent) != 3 || len(o.Opaque) != 0 {
		t.Fatalf("partition: %d opaque, %d transparent", len(o.Opaque), len(o.Transparent))
	}
	got := s.sortTransparent(o)
	for i, mesh := range []int{2, 0, 1} {
		if got[i].face != &o.Transparent[mesh].Faces[0] {
			t.Errorf("position %d is not mesh %d (dist %v)", i, mesh, got[i].dist)
		}
	}
}

func TestNewObjectMaterials(t *testing.T) {
	red := models.NewMaterial("red")
	red.Diffuse = math3d.V3(1, 0, 0)
	red.DiffuseMap = &models.Image{Width: 1, Height: 1, Channels: 3, Pix: []byte{0, 255, 0}}
	m := triangleModel(t, [][3]math3d.Vec3{frontTri(5, 1), frontTri(6, 1)}, red)

	o, err := NewObject(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(o.Opaque) != 2 {
		t.Fatalf("%d opaque meshes, want 2", len(o.Opaque))
	}
	mat := o.Opaque[0].Material
	if mat.Kd != math3d.V3(1, 0, 0) {
		t.Errorf("Kd = %v", mat.Kd)
	}
	if got := mat.DiffuseMap.Sample(math3d.V2(0.5, 0.5)); got != math3d.V3(0, 1, 0) {
		t.Errorf("diffuse map sample = %v, want green", got)
	}
	if got := mat.AmbientMap.Sample(math3d.V2(0.5, 0.5)); got != math3d.V3(1, 1, 1) {
		t.Errorf("missing ambient map sample = %v, want white", got)
	}
	if def := o.Opaque[1].Material; def.Name != "default" || def.AmbientMap == nil || def.DiffuseMap == nil {
		t.Errorf("fallback material = %+v", def)
	}
}

func TestNewObjectRejectsInvalidModel(t *testing.T) {
	m := &models.Model{
		Positions: []math3d.Vec3{{}},
		Meshes:    []models.Mesh{{Faces: []models.Face{{Pos: [3]int{0, 0, 5}}}, Material: -1}},
	}
	if _, err := NewObject(m); !errors.Is(err, models.ErrInvalidModel) {
		t.Errorf("err = %v, want ErrInvalidModel", err)
	}
}

func TestTurnCamera(t *testing.T) {
	s := newTestScene(t)
	b, err := s.Camera.Basis()
	if err != nil {
		t.Fatal(err)
	}
	want := s.Camera.Direction().Add(b.Right).Normalize()
	if err := s.TurnCamera(size, 0); err != nil {
		t.Fatal(err)
	}
	if got := s.Camera.Direction(); got.Distance(want) > 1e-12 {
		t.Errorf("direction = %v, want %v", got, want)
	}
}

func TestShowBounds(t *testing.T) {
	s := newTestScene(t)
	s.ShowBounds = true
	tri := [3]math3d.Vec3{math3d.V3(-1, -1, -4), math3d.V3(1, -1, -6), math3d.V3(0, 1, -5)}
	if _, _, err := s.AddObject(triangleModel(t, [][3]math3d.Vec3{tri})); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	found := false
	for y := range size {
		for x := range size {
			if s.Canvas.Pixel(x, y) == BoundsColor {
				found = true
			}
		}
	}
	if !found {
		t.Error("bounds overlay not drawn")
	}
}

func BenchmarkRender(b *testing.B) {
	s := newTestScene(b)
	var tris [][3]math3d.Vec3
	for i := range 200 {
		tris = append(tris, frontTri(3+float64(i)*0.1, 1.5))
	}
	if _, _, err := s.AddObject(triangleModel(b, tris)); err != nil {
		b.Fatal(err)
	}
	for b.Loop() {
		if _, err := s.Render(); err != nil {
			b.Fatal(err)
		}
	}
}
