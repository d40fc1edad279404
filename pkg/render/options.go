package render

// CanvasOption configures a Canvas during creation.
//
// Example:
//
//	// Canvas with a depth buffer, cleared to dark grey
//	c := render.NewCanvas(160, 90, render.WithBackground(render.RGB(30, 30, 40)))
//
//	// Overlay canvas without depth testing
//	c := render.NewCanvas(160, 90, render.WithoutDepth())
type CanvasOption func(*canvasOptions)

type canvasOptions struct {
	depth      bool
	background Color
}

func defaultCanvasOptions() canvasOptions {
	return canvasOptions{
		depth:      true,
		background: ColorBlack,
	}
}

// WithoutDepth creates the canvas without a depth buffer. Every covered
// pixel passes the depth test.
func WithoutDepth() CanvasOption {
	return func(o *canvasOptions) {
		o.depth = false
	}
}

// WithBackground sets the color the canvas is initially cleared to.
func WithBackground(c Color) CanvasOption {
	return func(o *canvasOptions) {
		o.background = c
	}
}
