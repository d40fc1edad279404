package scene

import (
	"fmt"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
)

// IndexedMesh is a named list of faces indexing the owning Object's pools.
type IndexedMesh struct {
	Name     string
	Faces    []models.Face
	Material *render.Material
}

// VertexCache holds the per-vertex lighting terms for the current frame.
type VertexCache struct {
	Light math3d.Vec3 // unit incident direction, light to vertex
	Eye   math3d.Vec3 // unit vector towards the camera
	Half  math3d.Vec3 // normalized Eye-Light
	Depth float64     // distance in front of the camera
}

// Object is a renderable model. Its pools are read-only while rendering;
// only the vertex cache is rewritten, once per frame.
type Object struct {
	Name      string
	Positions []math3d.Vec3
	Normals   []math3d.Vec3
	TexCoords []math3d.Vec2
	Materials []*render.Material

	// Meshes are split once, at construction, by material opacity.
	Opaque      []*IndexedMesh
	Transparent []*IndexedMesh

	Bounds render.AABB

	cache []VertexCache
}

// MeshInfo describes a mesh for diagnostic display.
type MeshInfo struct {
	Name      string
	Triangles int
	Material  string
}

// NewObject builds an Object from loader output. Images become textures,
// missing maps resolve to a shared white texture and meshes without a
// material get the default grey one.
func NewObject(m *models.Model) (*Object, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	o := &Object{
		Name:      m.Name,
		Positions: m.Positions,
		Normals:   m.Normals,
		TexCoords: m.TexCoords,
		Bounds:    render.BoundsOf(m.Positions),
		cache:     make([]VertexCache, len(m.Positions)),
	}

	white := render.WhiteTexture()
	textures := make(map[*models.Image]*render.Texture)
	texture := func(img *models.Image) (*render.Texture, error) {
		if img == nil {
			return white, nil
		}
		if t, ok := textures[img]; ok {
			return t, nil
		}
		t, err := render.NewTexture(img.Width, img.Height, img.Channels, img.Pix)
		if err != nil {
			return nil, err
		}
		textures[img] = t
		return t, nil
	}

	for _, src := range m.Materials {
		mat := &render.Material{
			Name:    src.Name,
			Ka:      src.Ambient,
			Kd:      src.Diffuse,
			Ks:      src.Specular,
			Opacity: src.Opacity,
		}
		var err error
		if mat.AmbientMap, err = texture(src.AmbientMap); err != nil {
			return nil, fmt.Errorf("material %q ambient map: %w", src.Name, err)
		}
		if mat.DiffuseMap, err = texture(src.DiffuseMap); err != nil {
			return nil, fmt.Errorf("material %q diffuse map: %w", src.Name, err)
		}
		o.Materials = append(o.Materials, mat)
	}

	var fallback *render.Material
	for _, mesh := range m.Meshes {
		im := &IndexedMesh{Name: mesh.Name, Faces: mesh.Faces}
		if mesh.Material >= 0 {
			im.Material = o.Materials[mesh.Material]
		} else {
			if fallback == nil {
				fallback = render.DefaultMaterial()
			}
			im.Material = fallback
		}
		if im.Material.Transparent() {
			o.Transparent = append(o.Transparent, im)
		} else {
			o.Opaque = append(o.Opaque, im)
		}
	}
	return o, nil
}

// Meshes returns diagnostic metadata for every mesh, opaque first.
func (o *Object) Meshes() []MeshInfo {
	info := make([]MeshInfo, 0, len(o.Opaque)+len(o.Transparent))
	for _, list := range [][]*IndexedMesh{o.Opaque, o.Transparent} {
		for _, m := range list {
			info = append(info, MeshInfo{Name: m.Name, Triangles: len(m.Faces), Material: m.Material.Name})
		}
	}
	return info
}

// TriangleCount returns the number of faces over all meshes.
func (o *Object) TriangleCount() int {
	n := 0
	for _, list := range [][]*IndexedMesh{o.Opaque, o.Transparent} {
		for _, m := range list {
			n += len(m.Faces)
		}
	}
	return n
}

// updateCache recomputes the lighting terms of every vertex for the
// camera's current pose. Light is the incident direction, from the light
// towards the vertex, so 1 - L·N peaks on faces turned to the light.
func (o *Object) updateCache(cam *render.Camera, b render.Basis, light math3d.Vec3) {
	for i, p := range o.Positions {
		l := p.Sub(light).Normalize()
		e := cam.Position.Sub(p).Normalize()
		o.cache[i] = VertexCache{
			Light: l,
			Eye:   e,
			Half:  e.Sub(l).Normalize(),
			Depth: cam.Depth(b, p),
		}
	}
}

// triangle assembles the transient world-space triangle for face f.
func (o *Object) triangle(f *models.Face) render.Triangle {
	var t render.Triangle
	for k := range 3 {
		c := &o.cache[f.Pos[k]]
		t[k] = render.Vertex{
			Position: o.Positions[f.Pos[k]],
			Attributes: render.Attributes{
				Depth:  c.Depth,
				Normal: o.Normals[f.Norm[k]],
				Light:  c.Light,
				Half:   c.Half,
				UV:     o.TexCoords[f.Tex[k]],
			},
		}
	}
	return t
}
