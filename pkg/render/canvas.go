// Package render implements the prism software rasterizer: camera and
// frustum, depth clipping, the triangle rasterizer with its canvas and
// textures, and debug line drawing.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// BytesPerPixel is the size of one canvas pixel: R, G, B and a padding
// byte that is always 0xff.
const BytesPerPixel = 4

// Canvas owns the pixel buffer and the optional depth buffer.
//
// Drawing coordinates are bottom-origin: (0, 0) is the bottom-left pixel.
// The byte buffer is stored top row first, so pixel (x, y) lives in row
// height-1-y of Bytes. This inversion is part of the wire format handed to
// display code.
type Canvas struct {
	width, height int
	pix           []byte
	depth         []float64
	depthWrite    bool
	scissor       image.Rectangle
}

// NewCanvas creates a width x height canvas cleared to black.
func NewCanvas(width, height int, opts ...CanvasOption) *Canvas {
	o := defaultCanvasOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Canvas{
		width:      width,
		height:     height,
		pix:        make([]byte, width*height*BytesPerPixel),
		depthWrite: true,
	}
	if o.depth {
		c.depth = make([]float64, width*height)
	}
	c.Clear(o.background)
	return c
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Bounds returns the canvas rectangle in bottom-origin coordinates.
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// HasDepth reports whether the canvas has a depth buffer.
func (c *Canvas) HasDepth() bool { return c.depth != nil }

// SetDepthWrite enables or disables depth buffer updates. The depth test
// still runs while writes are disabled.
func (c *Canvas) SetDepthWrite(on bool) { c.depthWrite = on }

// DepthWrite reports whether depth buffer updates are enabled.
func (c *Canvas) DepthWrite() bool { return c.depthWrite }

// SetScissor restricts triangle rasterization to r (bottom-origin,
// max exclusive). An empty rectangle removes the restriction.
func (c *Canvas) SetScissor(r image.Rectangle) { c.scissor = r }

// Clear fills every pixel with col and resets depth to +Inf.
func (c *Canvas) Clear(col Color) {
	for i := 0; i < len(c.pix); i += BytesPerPixel {
		c.pix[i+0] = col.R
		c.pix[i+1] = col.G
		c.pix[i+2] = col.B
		c.pix[i+3] = 0xff
	}
	inf := math.Inf(1)
	for i := range c.depth {
		c.depth[i] = inf
	}
}

// Bytes returns the pixel bytes: width*height pixels, BytesPerPixel each,
// row-major, top row first. The slice aliases the canvas and is only valid
// until the next draw call.
func (c *Canvas) Bytes() []byte {
	return c.pix
}

// offset returns the pixel index of bottom-origin (x, y).
func (c *Canvas) offset(x, y int) int {
	if debugChecks && (x < 0 || x >= c.width || y < 0 || y >= c.height) {
		panic(fmt.Sprintf("render: pixel (%d, %d) outside %dx%d canvas", x, y, c.width, c.height))
	}
	return (c.height-1-y)*c.width + x
}

func (c *Canvas) inBounds(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

// SetPixel sets pixel (x, y). Out of range coordinates are ignored.
func (c *Canvas) SetPixel(x, y int, col Color) {
	if !c.inBounds(x, y) {
		return
	}
	i := c.offset(x, y) * BytesPerPixel
	c.pix[i+0] = col.R
	c.pix[i+1] = col.G
	c.pix[i+2] = col.B
}

// Pixel returns the color at (x, y). Out of range coordinates return
// transparent black.
func (c *Canvas) Pixel(x, y int) Color {
	if !c.inBounds(x, y) {
		return Color{}
	}
	i := c.offset(x, y) * BytesPerPixel
	return Color{R: c.pix[i], G: c.pix[i+1], B: c.pix[i+2], A: 0xff}
}

// Depth returns the stored depth at (x, y), or +Inf without a depth
// buffer.
func (c *Canvas) Depth(x, y int) float64 {
	if c.depth == nil || !c.inBounds(x, y) {
		return math.Inf(1)
	}
	return c.depth[c.offset(x, y)]
}

// ToImage copies the canvas into an image with the conventional top-left
// origin.
func (c *Canvas) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	// Canvas bytes and image.RGBA share the same row order and stride.
	copy(img.Pix, c.pix)
	return img
}

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors used by the overlays and the viewer.
var (
	ColorBlack   = color.RGBA{0, 0, 0, 255}
	ColorWhite   = color.RGBA{255, 255, 255, 255}
	ColorRed     = color.RGBA{255, 0, 0, 255}
	ColorGreen   = color.RGBA{0, 255, 0, 255}
	ColorBlue    = color.RGBA{0, 0, 255, 255}
	ColorYellow  = color.RGBA{255, 255, 0, 255}
	ColorCyan    = color.RGBA{0, 255, 255, 255}
	ColorMagenta = color.RGBA{255, 0, 255, 255}
	ColorGray    = color.RGBA{128, 128, 128, 255}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return color.RGBA{r, g, b, 255}
}
