package models

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

// LoadGLTF loads a .gltf or .glb file. Every triangle primitive becomes a
// mesh named after its glTF mesh; the PBR base color factor and texture
// map onto the diffuse terms.
func LoadGLTF(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	l := gltfLoader{doc: doc, dir: filepath.Dir(path), images: make(map[int]*Image)}
	model := &Model{Name: filepath.Base(path)}

	for i, m := range doc.Materials {
		model.Materials = append(model.Materials, l.material(i, m))
	}
	for i, m := range doc.Meshes {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("mesh%d", i)
		}
		if err := l.processMesh(m, name, model); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", name, err)
		}
	}

	if err := model.Finalize(); err != nil {
		return nil, err
	}
	render.Logger().Debug("loaded gltf", "path", path, "meshes", len(model.Meshes), "triangles", model.TriangleCount())
	return model, nil
}

type gltfLoader struct {
	doc    *gltf.Document
	dir    string
	images map[int]*Image
}

// processMesh appends one Mesh per triangle primitive, extending the
// model pools with the primitive's attributes.
func (l *gltfLoader) processMesh(m *gltf.Mesh, name string, model *Model) error {
	for pi, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			render.Logger().Debug("skipping non-triangle primitive", "mesh", name, "primitive", pi, "mode", prim.Mode)
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := modeler.ReadPosition(l.doc, l.doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}
		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = modeler.ReadNormal(l.doc, l.doc.Accessors[idx], nil); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}
		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = modeler.ReadTextureCoord(l.doc, l.doc.Accessors[idx], nil); err != nil {
				return fmt.Errorf("read texcoords: %w", err)
			}
		}

		var indices []uint32
		if prim.Indices != nil {
			if indices, err = modeler.ReadIndices(l.doc, l.doc.Accessors[*prim.Indices], nil); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		basePos := len(model.Positions)
		for _, p := range positions {
			model.Positions = append(model.Positions, vec3f(p))
		}
		baseNorm := -1
		if len(normals) == len(positions) {
			baseNorm = len(model.Normals)
			for _, n := range normals {
				model.Normals = append(model.Normals, vec3f(n).Normalize())
			}
		}
		baseTex := -1
		if len(uvs) == len(positions) {
			baseTex = len(model.TexCoords)
			for _, t := range uvs {
				// glTF puts V=0 at the top of the image.
				model.TexCoords = append(model.TexCoords, math3d.V2(float64(t[0]), 1-float64(t[1])))
			}
		}

		mesh := Mesh{Name: name, Material: -1}
		if len(m.Primitives) > 1 {
			mesh.Name = fmt.Sprintf("%s.%d", name, pi)
		}
		if prim.Material != nil {
			mesh.Material = *prim.Material
		}
		for i := 0; i+2 < len(indices); i += 3 {
			var f Face
			for k := range 3 {
				v := int(indices[i+k])
				f.Pos[k] = basePos + v
				f.Norm[k] = offsetIndex(baseNorm, v)
				f.Tex[k] = offsetIndex(baseTex, v)
			}
			mesh.Faces = append(mesh.Faces, f)
		}
		model.Meshes = append(model.Meshes, mesh)
	}
	return nil
}

func offsetIndex(base, i int) int {
	if base < 0 {
		return -1
	}
	return base + i
}

func vec3f(v [3]float32) math3d.Vec3 {
	return math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
}

// material converts a glTF PBR material. Only the base color is used:
// it becomes the diffuse term and, scaled down, the ambient one. Alpha
// only matters in blend mode.
func (l *gltfLoader) material(i int, m *gltf.Material) Material {
	name := m.Name
	if name == "" {
		name = fmt.Sprintf("material%d", i)
	}
	mat := NewMaterial(name)
	pbr := m.PBRMetallicRoughness
	if pbr == nil {
		return mat
	}
	if f := pbr.BaseColorFactor; f != nil {
		base := math3d.V3(f[0], f[1], f[2])
		mat.Diffuse = base
		mat.Ambient = base.Scale(0.25)
		if m.AlphaMode == gltf.AlphaBlend {
			mat.Opacity = f[3]
		}
	}
	if info := pbr.BaseColorTexture; info != nil {
		img, err := l.texture(info.Index)
		if err != nil {
			render.Logger().Warn("gltf texture unavailable", "material", name, "texture", info.Index, "err", err)
		} else {
			mat.DiffuseMap = img
			mat.AmbientMap = img
		}
	}
	return mat
}

// texture decodes the image behind texture index ti, once per image.
func (l *gltfLoader) texture(ti int) (*Image, error) {
	if ti < 0 || ti >= len(l.doc.Textures) {
		return nil, fmt.Errorf("%w: texture %d of %d", ErrInvalidModel, ti, len(l.doc.Textures))
	}
	src := l.doc.Textures[ti].Source
	if src == nil || *src < 0 || *src >= len(l.doc.Images) {
		return nil, fmt.Errorf("%w: texture %d has no image", ErrInvalidModel, ti)
	}
	if img, ok := l.images[*src]; ok {
		return img, nil
	}

	gi := l.doc.Images[*src]
	data, ext, err := l.imageData(gi)
	if err != nil {
		return nil, err
	}
	img, err := DecodeImage(bytes.NewReader(data), ext)
	if err != nil {
		return nil, err
	}
	l.images[*src] = img
	return img, nil
}

// imageData returns the encoded bytes of a glTF image from a buffer view,
// a data URI or a file next to the document.
func (l *gltfLoader) imageData(img *gltf.Image) ([]byte, string, error) {
	ext := mimeExt[img.MimeType]
	switch {
	case img.BufferView != nil:
		bv := l.doc.BufferViews[*img.BufferView]
		buf := l.doc.Buffers[bv.Buffer]
		if bv.ByteOffset+bv.ByteLength > len(buf.Data) {
			return nil, "", fmt.Errorf("%w: image buffer view out of range", ErrInvalidModel)
		}
		return buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], ext, nil
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			return nil, "", fmt.Errorf("embedded image: %w", err)
		}
		if ext == "" {
			ext = mimeExt[dataURIMime(img.URI)]
		}
		return data, ext, nil
	case img.URI != "":
		data, err := os.ReadFile(filepath.Join(l.dir, filepath.FromSlash(img.URI)))
		if err != nil {
			return nil, "", fmt.Errorf("read image: %w", err)
		}
		if ext == "" {
			ext = strings.ToLower(filepath.Ext(img.URI))
		}
		return data, ext, nil
	}
	return nil, "", fmt.Errorf("%w: image has no data", ErrInvalidModel)
}

// dataURIMime returns the media type of a "data:<mime>;base64,..." URI.
func dataURIMime(uri string) string {
	mime, _, _ := strings.Cut(strings.TrimPrefix(uri, "data:"), ";")
	return mime
}
