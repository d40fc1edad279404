package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw blits the canvas onto a terminal screen. Each terminal cell shows two
// canvas rows with an upper half block: foreground is the top pixel,
// background the bottom one. The canvas height should be twice the number
// of terminal rows in area.
func (c *Canvas) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		top := (row - area.Min.Y) * 2
		if top >= c.height {
			break
		}
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= c.width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: c.rowPixel(x, top),
					Bg: c.rowPixel(x, top+1),
				},
			})
		}
	}
}

// rowPixel reads the pixel at column x of byte row r (top row first).
// Rows past the bottom have no color.
func (c *Canvas) rowPixel(x, r int) color.Color {
	if r >= c.height {
		return nil
	}
	i := (r*c.width + x) * BytesPerPixel
	return color.RGBA{c.pix[i], c.pix[i+1], c.pix[i+2], 0xff}
}
