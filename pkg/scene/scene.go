// Package scene owns renderable objects and drives one frame of the
// pipeline: lighting cache, culling, depth clipping, rasterization and
// back-to-front ordering of transparent triangles.
package scene

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
)

// ErrSizeMismatch is returned by New when the camera and canvas disagree
// on the viewport size.
var ErrSizeMismatch = errors.New("scene: camera and canvas sizes differ")

// BoundsColor is the color of the object bounds overlay.
var BoundsColor = render.RGB(255, 200, 0)

// Scene renders its objects through one camera onto one canvas. It is not
// safe for concurrent use.
type Scene struct {
	Camera     *render.Camera
	Canvas     *render.Canvas
	Light      math3d.Vec3 // point light position
	Background render.Color
	ShowBounds bool

	objects []*Object
	stats   Stats

	clip        render.ClipBuffer
	transparent []depthSorted
}

// New creates an empty scene. The light starts above and behind the
// camera.
func New(camera *render.Camera, canvas *render.Canvas) (*Scene, error) {
	w, h := camera.Size()
	if w != canvas.Width() || h != canvas.Height() {
		return nil, fmt.Errorf("%w: camera %dx%d, canvas %dx%d", ErrSizeMismatch, w, h, canvas.Width(), canvas.Height())
	}
	return &Scene{
		Camera:     camera,
		Canvas:     canvas,
		Light:      camera.Position.Add(math3d.V3(0, 10, 10)),
		Background: render.ColorBlack,
	}, nil
}

// AddObject registers a model and returns its id plus per-mesh metadata.
func (s *Scene) AddObject(m *models.Model) (int, []MeshInfo, error) {
	o, err := NewObject(m)
	if err != nil {
		return 0, nil, fmt.Errorf("add object %q: %w", m.Name, err)
	}
	s.objects = append(s.objects, o)
	id := len(s.objects) - 1
	render.Logger().Info("object added",
		"id", id,
		"name", o.Name,
		"opaque", len(o.Opaque),
		"transparent", len(o.Transparent),
		"triangles", o.TriangleCount(),
	)
	return id, o.Meshes(), nil
}

// Object returns the object registered under id, or nil.
func (s *Scene) Object(id int) *Object {
	if id < 0 || id >= len(s.objects) {
		return nil
	}
	return s.objects[id]
}

// Len returns the number of objects.
func (s *Scene) Len() int { return len(s.objects) }

// Stats returns the counters of the last Render.
func (s *Scene) Stats() Stats { return s.stats }

// MoveCamera moves the camera by distance in direction dir.
func (s *Scene) MoveCamera(dir render.Direction, distance float64) error {
	return s.Camera.Move(dir, distance)
}

// TurnCamera turns the camera by a screen-space delta in pixels, scaled by
// the viewport size so that a full-width drag turns by one unit of the
// right vector.
func (s *Scene) TurnCamera(dx, dy float64) error {
	return s.Camera.Turn(dx/float64(s.Canvas.Width()), dy/float64(s.Canvas.Height()))
}

// frame is the camera state shared by every triangle of one Render.
type frame struct {
	basis  render.Basis
	xf     math3d.Mat4
	planes render.Frustum
}

// Render draws every object and returns the canvas bytes, valid until the
// next call. Camera errors abort the frame.
func (s *Scene) Render() ([]byte, error) {
	s.stats = Stats{}
	s.Canvas.SetDepthWrite(true)
	s.Canvas.Clear(s.Background)

	var (
		f   frame
		err error
	)
	if f.basis, err = s.Camera.Basis(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if f.xf, err = s.Camera.Transform(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if f.planes, err = s.Camera.ViewPlanes(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	for _, o := range s.objects {
		if !f.planes.IntersectAABB(o.Bounds) {
			s.stats.ObjectsCulled++
			continue
		}
		s.stats.ObjectsDrawn++
		o.updateCache(s.Camera, f.basis, s.Light)

		s.Canvas.SetDepthWrite(true)
		for _, m := range o.Opaque {
			for i := range m.Faces {
				s.drawFace(o, &m.Faces[i], m.Material, &f)
			}
		}

		// Transparent triangles test against the opaque depth but never
		// write it.
		s.Canvas.SetDepthWrite(false)
		for _, t := range s.sortTransparent(o) {
			s.drawFace(o, t.face, t.material, &f)
		}
		s.Canvas.SetDepthWrite(true)
	}

	if s.ShowBounds {
		if err := s.drawBounds(); err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
	}

	render.Logger().Debug("frame", "stats", s.stats)
	return s.Canvas.Bytes(), nil
}

// drawFace runs one face through culling, depth clipping, projection and
// rasterization.
func (s *Scene) drawFace(o *Object, face *models.Face, mat *render.Material, f *frame) {
	s.stats.Triangles++
	t := o.triangle(face)
	if render.BackFacing(s.Camera.Position, &t) {
		s.stats.BackFaces++
		return
	}
	if !f.planes.Visible(&t) {
		s.stats.Rejected++
		return
	}
	clipped := f.planes.ClipDepth(&t, &s.clip)
	if len(clipped) == 0 {
		s.stats.Clipped++
		return
	}
	for i := range clipped {
		c := &clipped[i]
		screen := [3]math3d.Vec2{
			render.ProjectPoint(f.xf, c[0].Position),
			render.ProjectPoint(f.xf, c[1].Position),
			render.ProjectPoint(f.xf, c[2].Position),
		}
		attrs := [3]render.Attributes{c[0].Attributes, c[1].Attributes, c[2].Attributes}
		s.stats.Emitted++
		s.stats.Pixels += s.Canvas.DrawTriangle(screen, attrs, mat)
	}
}

func (s *Scene) drawBounds() error {
	wf, err := render.NewWireframe(s.Camera, s.Canvas)
	if err != nil {
		return err
	}
	for _, o := range s.objects {
		wf.DrawBox(o.Bounds, BoundsColor)
		wf.DrawAxes(o.Bounds.Center(), o.Bounds.Size().Len()/4)
	}
	return nil
}

// depthSorted is one transparent face with its camera distance.
type depthSorted struct {
	dist     float64
	face     *models.Face
	material *render.Material
}

// sortTransparent collects the transparent faces of o and orders them
// farthest first. The returned slice is reused by the next call.
func (s *Scene) sortTransparent(o *Object) []depthSorted {
	s.transparent = s.transparent[:0]
	for _, m := range o.Transparent {
		for i := range m.Faces {
			f := &m.Faces[i]
			c := math3d.Sum(o.Positions[f.Pos[0]], o.Positions[f.Pos[1]], o.Positions[f.Pos[2]]).Div(3)
			s.transparent = append(s.transparent, depthSorted{
				dist:     s.Camera.Position.Distance(c),
				face:     f,
				material: m.Material,
			})
		}
	}
	sortBackToFront(s.transparent)
	return s.transparent
}

// sortBackToFront orders by descending distance. Equal distances keep
// their mesh order.
func sortBackToFront(ts []depthSorted) {
	slices.SortStableFunc(ts, func(a, b depthSorted) int {
		return cmp.Compare(b.dist, a.dist)
	})
}
