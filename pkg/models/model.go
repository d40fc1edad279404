// Package models loads glTF and OBJ/MTL files into the shared-pool layout
// the renderer consumes: position, normal and texture coordinate pools
// indexed by named meshes, plus materials with decoded images.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/prism/pkg/math3d"
)

// ErrInvalidModel is returned when a model references data it does not
// have.
var ErrInvalidModel = errors.New("models: invalid model")

// Model is the output of every loader.
type Model struct {
	Name      string
	Positions []math3d.Vec3
	Normals   []math3d.Vec3
	TexCoords []math3d.Vec2
	Meshes    []Mesh
	Materials []Material
}

// Mesh is a named group of triangles sharing one material.
type Mesh struct {
	Name     string
	Faces    []Face
	Material int // index into Model.Materials, -1 for none
}

// Face is a triangle as indices into the model pools. Loaders use -1 for a
// missing normal or texture coordinate; Finalize replaces them.
type Face struct {
	Pos  [3]int
	Tex  [3]int
	Norm [3]int
}

// Material holds reflectance terms and optional decoded maps.
type Material struct {
	Name       string
	Ambient    math3d.Vec3
	Diffuse    math3d.Vec3
	Specular   math3d.Vec3
	Opacity    float64
	AmbientMap *Image
	DiffuseMap *Image
}

// NewMaterial returns a material with the OBJ defaults: white reflectance
// terms scaled like a plain grey surface, fully opaque.
func NewMaterial(name string) Material {
	return Material{
		Name:     name,
		Ambient:  math3d.V3(0.2, 0.2, 0.2),
		Diffuse:  math3d.V3(0.8, 0.8, 0.8),
		Specular: math3d.V3(0, 0, 0),
		Opacity:  1,
	}
}

// Image is decoded pixel data, rows top first.
type Image struct {
	Width, Height int
	Channels      int
	Pix           []byte
}

// TriangleCount returns the number of faces over all meshes.
func (m *Model) TriangleCount() int {
	n := 0
	for i := range m.Meshes {
		n += len(m.Meshes[i].Faces)
	}
	return n
}

// MaterialName returns the name of material i, or "" for -1 and
// out-of-range indices.
func (m *Model) MaterialName(i int) string {
	if i < 0 || i >= len(m.Materials) {
		return ""
	}
	return m.Materials[i].Name
}

// Bounds returns the axis-aligned bounds of the position pool.
func (m *Model) Bounds() (lo, hi math3d.Vec3) {
	if len(m.Positions) == 0 {
		return math3d.Vec3{}, math3d.Vec3{}
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi
}

// Center returns the center of the bounding box.
func (m *Model) Center() math3d.Vec3 {
	lo, hi := m.Bounds()
	return lo.Add(hi).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Model) Size() math3d.Vec3 {
	lo, hi := m.Bounds()
	return hi.Sub(lo)
}

// Transform applies mat to every position and normal.
func (m *Model) Transform(mat math3d.Mat4) {
	for i := range m.Positions {
		m.Positions[i] = mat.MulVec3(m.Positions[i])
	}
	// Rotation and uniform scale only; non-uniform scale would need the
	// inverse transpose.
	for i := range m.Normals {
		m.Normals[i] = mat.MulVec3Dir(m.Normals[i]).Normalize()
	}
}

// Normalize centers the model on the origin and scales it so its largest
// dimension is size.
func (m *Model) Normalize(size float64) {
	s := m.Size()
	largest := max(s.X, s.Y, s.Z)
	if largest == 0 {
		return
	}
	c := m.Center()
	m.Transform(math3d.ScaleUniform(size / largest).Mul(math3d.Translate(c.Negate())))
}

// Finalize fills in missing per-face data so every index is valid:
// faces without normals get smooth normals averaged per position, faces
// without texture coordinates point at a single (0, 0) entry. It then
// validates the model.
func (m *Model) Finalize() error {
	m.fillNormals()
	m.fillTexCoords()
	return m.Validate()
}

func (m *Model) fillNormals() {
	off := -1
	for mi := range m.Meshes {
		for fi := range m.Meshes[mi].Faces {
			f := &m.Meshes[mi].Faces[fi]
			if f.Norm[0] >= 0 && f.Norm[1] >= 0 && f.Norm[2] >= 0 {
				continue
			}
			if off < 0 {
				off = len(m.Normals)
				m.Normals = append(m.Normals, m.smoothNormals()...)
			}
			for k := range 3 {
				f.Norm[k] = off + f.Pos[k]
			}
		}
	}
}

// smoothNormals accumulates area-weighted face normals per position.
func (m *Model) smoothNormals() []math3d.Vec3 {
	acc := make([]math3d.Vec3, len(m.Positions))
	for mi := range m.Meshes {
		for _, f := range m.Meshes[mi].Faces {
			if !m.validPositions(f) {
				continue
			}
			p0, p1, p2 := m.Positions[f.Pos[0]], m.Positions[f.Pos[1]], m.Positions[f.Pos[2]]
			n := p1.Sub(p0).Cross(p2.Sub(p0))
			for _, i := range f.Pos {
				acc[i] = acc[i].Add(n)
			}
		}
	}
	for i := range acc {
		acc[i] = acc[i].Normalize()
	}
	return acc
}

func (m *Model) fillTexCoords() {
	fallback := -1
	for mi := range m.Meshes {
		for fi := range m.Meshes[mi].Faces {
			f := &m.Meshes[mi].Faces[fi]
			for k := range 3 {
				if f.Tex[k] >= 0 {
					continue
				}
				if fallback < 0 {
					fallback = len(m.TexCoords)
					m.TexCoords = append(m.TexCoords, math3d.V2(0, 0))
				}
				f.Tex[k] = fallback
			}
		}
	}
}

func (m *Model) validPositions(f Face) bool {
	for _, i := range f.Pos {
		if i < 0 || i >= len(m.Positions) {
			return false
		}
	}
	return true
}

// Validate checks every index against the pools.
func (m *Model) Validate() error {
	for mi, mesh := range m.Meshes {
		if mesh.Material < -1 || mesh.Material >= len(m.Materials) {
			return fmt.Errorf("%w: mesh %q material %d of %d", ErrInvalidModel, mesh.Name, mesh.Material, len(m.Materials))
		}
		for fi, f := range mesh.Faces {
			for k := range 3 {
				switch {
				case f.Pos[k] < 0 || f.Pos[k] >= len(m.Positions):
					return fmt.Errorf("%w: mesh %d face %d position %d of %d", ErrInvalidModel, mi, fi, f.Pos[k], len(m.Positions))
				case f.Norm[k] < 0 || f.Norm[k] >= len(m.Normals):
					return fmt.Errorf("%w: mesh %d face %d normal %d of %d", ErrInvalidModel, mi, fi, f.Norm[k], len(m.Normals))
				case f.Tex[k] < 0 || f.Tex[k] >= len(m.TexCoords):
					return fmt.Errorf("%w: mesh %d face %d texcoord %d of %d", ErrInvalidModel, mi, fi, f.Tex[k], len(m.TexCoords))
				}
			}
		}
	}
	for i, mat := range m.Materials {
		for _, img := range []*Image{mat.AmbientMap, mat.DiffuseMap} {
			if img != nil && len(img.Pix) != img.Width*img.Height*img.Channels {
				return fmt.Errorf("%w: material %d (%q) image size mismatch", ErrInvalidModel, i, mat.Name)
			}
		}
	}
	return nil
}
