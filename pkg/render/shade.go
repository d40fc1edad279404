package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// SpecularPower is the exponent applied to Half·Normal.
const SpecularPower = 4

// Material holds the reflectance terms of the shading formula. AmbientMap
// and DiffuseMap must be non-nil when the material is drawn; scene code
// resolves missing maps to WhiteTexture once, at construction.
type Material struct {
	Name    string
	Ka      math3d.Vec3 // ambient reflectance
	Kd      math3d.Vec3 // diffuse reflectance
	Ks      math3d.Vec3 // specular reflectance
	Opacity float64     // 1 is opaque

	AmbientMap *Texture
	DiffuseMap *Texture
}

// DefaultMaterial returns the grey material used for meshes without one.
func DefaultMaterial() *Material {
	return &Material{
		Name:       "default",
		Ka:         math3d.V3(0.2, 0.2, 0.2),
		Kd:         math3d.V3(0.8, 0.8, 0.8),
		Ks:         math3d.V3(0.5, 0.5, 0.5),
		Opacity:    1,
		AmbientMap: WhiteTexture(),
		DiffuseMap: WhiteTexture(),
	}
}

// Transparent reports whether the material needs blending.
func (m *Material) Transparent() bool {
	return m.Opacity < 1
}

// Shade evaluates the reflectance formula
//
//	color = (Td*Kd) * (Ka*Ta + Ks*max(0, 1 - L·N)) + Ks*(H·N)^SpecularPower
//
// where * is the per-channel product, Td and Ta are the diffuse and
// ambient map samples at uv, and n, l and h are unit vectors. Channels are
// clamped to [0,1].
func (m *Material) Shade(n, l, h math3d.Vec3, uv math3d.Vec2) math3d.Vec3 {
	td := m.DiffuseMap.Sample(uv)
	ta := m.AmbientMap.Sample(uv)

	lit := m.Ka.Mul(ta).Add(m.Ks.Scale(max(0, 1-l.Dot(n))))
	spec := math.Pow(h.Dot(n), SpecularPower)

	c := td.Mul(m.Kd).Mul(lit).Add(m.Ks.Scale(spec))
	return math3d.V3(clamp01(c.X), clamp01(c.Y), clamp01(c.Z))
}
