package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

// LoadOBJ loads a Wavefront OBJ file together with the MTL libraries and
// texture maps it references. Paths in the file are relative to its
// directory.
func LoadOBJ(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	p := newOBJParser(filepath.Base(path), filepath.Dir(path))
	if err := p.parse(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := p.model.Finalize(); err != nil {
		return nil, err
	}
	render.Logger().Debug("loaded obj", "path", path, "meshes", len(p.model.Meshes), "triangles", p.model.TriangleCount())
	return p.model, nil
}

// ParseOBJ reads OBJ data from r. MTL libraries are resolved against dir;
// an empty dir skips them.
func ParseOBJ(r io.Reader, name, dir string) (*Model, error) {
	p := newOBJParser(name, dir)
	if err := p.parse(r); err != nil {
		return nil, err
	}
	if err := p.model.Finalize(); err != nil {
		return nil, err
	}
	return p.model, nil
}

type objParser struct {
	dir       string
	model     *Model
	materials map[string]int
	images    imageCache
	group     string
	current   int // index into model.Meshes, -1 before the first face
	material  int
}

func newOBJParser(name, dir string) *objParser {
	return &objParser{
		dir:       dir,
		model:     &Model{Name: name},
		materials: make(map[string]int),
		images:    make(imageCache),
		group:     "default",
		current:   -1,
		material:  -1,
	}
}

func (p *objParser) parse(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(stripComment(sc.Text()))
		if len(fields) == 0 {
			continue
		}
		if err := p.statement(fields); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}

func (p *objParser) statement(fields []string) error {
	args := fields[1:]
	switch fields[0] {
	case "v":
		v, err := parseFloats(args, 3)
		if err != nil {
			return fmt.Errorf("vertex: %w", err)
		}
		p.model.Positions = append(p.model.Positions, math3d.V3(v[0], v[1], v[2]))
	case "vn":
		v, err := parseFloats(args, 3)
		if err != nil {
			return fmt.Errorf("normal: %w", err)
		}
		p.model.Normals = append(p.model.Normals, math3d.V3(v[0], v[1], v[2]).Normalize())
	case "vt":
		v, err := parseFloats(args, 1)
		if err != nil {
			return fmt.Errorf("texcoord: %w", err)
		}
		uv := math3d.V2(v[0], 0)
		if len(v) > 1 {
			uv.Y = v[1]
		}
		p.model.TexCoords = append(p.model.TexCoords, uv)
	case "f":
		return p.face(args)
	case "o", "g":
		name := strings.Join(args, " ")
		if name == "" {
			name = "default"
		}
		p.group = name
		p.current = -1
	case "usemtl":
		name := strings.Join(args, " ")
		mi, ok := p.materials[name]
		if !ok {
			render.Logger().Warn("obj: unknown material", "material", name)
			mi = -1
		}
		if mi != p.material {
			p.material = mi
			p.current = -1
		}
	case "mtllib":
		for _, lib := range args {
			if err := p.loadMTL(lib); err != nil {
				return err
			}
		}
	}
	// s, l, p and the rest are ignored.
	return nil
}

// face triangulates a polygon as a fan around its first vertex.
func (p *objParser) face(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face: %d vertices", len(args))
	}
	refs := make([][3]int, len(args))
	for i, a := range args {
		ref, err := p.vertexRef(a)
		if err != nil {
			return fmt.Errorf("face: %w", err)
		}
		refs[i] = ref
	}
	mesh := p.mesh()
	for i := 1; i+1 < len(refs); i++ {
		var f Face
		for k, r := range [3][3]int{refs[0], refs[i], refs[i+1]} {
			f.Pos[k], f.Tex[k], f.Norm[k] = r[0], r[1], r[2]
		}
		mesh.Faces = append(mesh.Faces, f)
	}
	return nil
}

// mesh returns the mesh faces are currently added to, starting a new one
// after a group or material change.
func (p *objParser) mesh() *Mesh {
	if p.current < 0 {
		p.model.Meshes = append(p.model.Meshes, Mesh{Name: p.group, Material: p.material})
		p.current = len(p.model.Meshes) - 1
	}
	return &p.model.Meshes[p.current]
}

// vertexRef parses "v", "v/vt", "v//vn" or "v/vt/vn" into zero-based pool
// indices, -1 where absent.
func (p *objParser) vertexRef(s string) ([3]int, error) {
	ref := [3]int{-1, -1, -1}
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return ref, fmt.Errorf("bad vertex %q", s)
	}
	sizes := [3]int{len(p.model.Positions), len(p.model.TexCoords), len(p.model.Normals)}
	for i, part := range parts {
		if part == "" {
			if i == 0 {
				return ref, fmt.Errorf("bad vertex %q", s)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return ref, fmt.Errorf("bad vertex %q: %w", s, err)
		}
		idx, err := resolveIndex(n, sizes[i])
		if err != nil {
			return ref, fmt.Errorf("vertex %q: %w", s, err)
		}
		ref[i] = idx
	}
	return ref, nil
}

// resolveIndex turns a one-based (or negative, relative) OBJ index into a
// zero-based one.
func resolveIndex(n, size int) (int, error) {
	switch {
	case n > 0 && n <= size:
		return n - 1, nil
	case n < 0 && -n <= size:
		return size + n, nil
	}
	return 0, fmt.Errorf("%w: index %d of %d", ErrInvalidModel, n, size)
}

func (p *objParser) loadMTL(lib string) error {
	if p.dir == "" {
		return nil
	}
	path := filepath.Join(p.dir, filepath.FromSlash(lib))
	f, err := os.Open(path)
	if err != nil {
		render.Logger().Warn("obj: material library unavailable", "path", path, "err", err)
		return nil
	}
	defer f.Close()
	if err := p.parseMTL(f, filepath.Dir(path)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// parseMTL reads newmtl blocks. Ka, Kd, Ks, d, Tr, map_Ka and map_Kd are
// used; everything else is ignored.
func (p *objParser) parseMTL(r io.Reader, dir string) error {
	sc := bufio.NewScanner(r)
	var cur *Material
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(stripComment(sc.Text()))
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "newmtl" {
			name := strings.Join(fields[1:], " ")
			p.model.Materials = append(p.model.Materials, NewMaterial(name))
			p.materials[name] = len(p.model.Materials) - 1
			cur = &p.model.Materials[len(p.model.Materials)-1]
			continue
		}
		if cur == nil {
			continue
		}
		if err := p.materialStatement(cur, fields, dir); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}

func (p *objParser) materialStatement(m *Material, fields []string, dir string) error {
	args := fields[1:]
	switch fields[0] {
	case "Ka", "Kd", "Ks":
		if len(args) > 0 && (args[0] == "spectral" || args[0] == "xyz") {
			return nil
		}
		v, err := parseFloats(args, 1)
		if err != nil {
			return fmt.Errorf("%s: %w", fields[0], err)
		}
		c := math3d.V3(v[0], v[0], v[0])
		if len(v) >= 3 {
			c = math3d.V3(v[0], v[1], v[2])
		}
		switch fields[0] {
		case "Ka":
			m.Ambient = c
		case "Kd":
			m.Diffuse = c
		default:
			m.Specular = c
		}
	case "d", "Tr":
		v, err := parseFloats(lastArgs(args), 1)
		if err != nil {
			return fmt.Errorf("%s: %w", fields[0], err)
		}
		m.Opacity = v[0]
		if fields[0] == "Tr" {
			m.Opacity = 1 - v[0]
		}
	case "map_Ka", "map_Kd":
		if len(args) == 0 {
			return nil
		}
		// Options precede the file name, which is the last token.
		path := filepath.Join(dir, filepath.FromSlash(args[len(args)-1]))
		img, err := p.images.load(path)
		if err != nil {
			render.Logger().Warn("obj: texture unavailable", "material", m.Name, "path", path, "err", err)
			return nil
		}
		if fields[0] == "map_Ka" {
			m.AmbientMap = img
		} else {
			m.DiffuseMap = img
		}
	}
	return nil
}

// lastArgs drops a leading "-halo" style option from d statements.
func lastArgs(args []string) []string {
	if len(args) > 1 && strings.HasPrefix(args[0], "-") {
		return args[1:]
	}
	return args
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}

// parseFloats parses all args, requiring at least n of them.
func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(args))
	}
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
