package render

import (
	"errors"
	"fmt"

	"github.com/taigrr/prism/pkg/math3d"
)

// ErrInvalidTexture is returned when pixel data does not match the
// declared texture dimensions.
var ErrInvalidTexture = errors.New("render: invalid texture data")

// Texture is a nearest-neighbour sampler over decoded pixel bytes. Rows are
// stored top first; channels is 1 (grey), 2 (grey, alpha), 3 (RGB) or 4
// (RGBA). Alpha is ignored by sampling.
type Texture struct {
	width, height, channels int
	pix                     []byte
}

// NewTexture wraps decoded pixel bytes. pix is not copied.
func NewTexture(width, height, channels int, pix []byte) (*Texture, error) {
	switch {
	case width <= 0 || height <= 0:
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidTexture, width, height)
	case channels < 1 || channels > 4:
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidTexture, channels)
	case len(pix) != width*height*channels:
		return nil, fmt.Errorf("%w: %d bytes for %dx%dx%d", ErrInvalidTexture, len(pix), width, height, channels)
	}
	return &Texture{width: width, height: height, channels: channels, pix: pix}, nil
}

// SolidTexture returns a 1x1 texture of color c.
func SolidTexture(c Color) *Texture {
	return &Texture{width: 1, height: 1, channels: 3, pix: []byte{c.R, c.G, c.B}}
}

// WhiteTexture returns a 1x1 white texture, the neutral map for the
// shading formula.
func WhiteTexture() *Texture {
	return SolidTexture(ColorWhite)
}

// Size returns the texture dimensions.
func (t *Texture) Size() (width, height int) {
	return t.width, t.height
}

// Channels returns the number of bytes per texel.
func (t *Texture) Channels() int {
	return t.channels
}

// Sample returns the texel nearest to uv as RGB in [0,1]. v=0 is the bottom
// row. Coordinates outside [0,1) are a precondition violation, checked in
// debug builds and clamped otherwise.
func (t *Texture) Sample(uv math3d.Vec2) math3d.Vec3 {
	if debugChecks && (uv.X < 0 || uv.X >= 1 || uv.Y < 0 || uv.Y >= 1) {
		panic(fmt.Sprintf("render: texture coordinate %v outside [0,1)", uv))
	}
	x := min(max(int(uv.X*float64(t.width)), 0), t.width-1)
	y := min(max(int(uv.Y*float64(t.height)), 0), t.height-1)

	i := ((t.height-1-y)*t.width + x) * t.channels
	if t.channels < 3 {
		g := float64(t.pix[i]) / 255
		return math3d.V3(g, g, g)
	}
	return math3d.V3(float64(t.pix[i])/255, float64(t.pix[i+1])/255, float64(t.pix[i+2])/255)
}
