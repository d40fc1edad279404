package render

// DrawLine draws a line from (x0, y0) to (x1, y1) with the midpoint
// algorithm. Endpoints are swapped so x grows; the four remaining octants
// are handled separately. Pixels outside the canvas are skipped. Lines
// ignore the depth buffer.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, col Color) {
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}
	dx, dy := x1-x0, y1-y0

	switch {
	case dy >= 0 && dy <= dx:
		d := 2*dy - dx
		for x, y := x0, y0; x <= x1; x++ {
			c.SetPixel(x, y, col)
			if d > 0 {
				y++
				d += 2 * (dy - dx)
			} else {
				d += 2 * dy
			}
		}
	case dy > dx:
		d := 2*dx - dy
		for x, y := x0, y0; y <= y1; y++ {
			c.SetPixel(x, y, col)
			if d > 0 {
				x++
				d += 2 * (dx - dy)
			} else {
				d += 2 * dx
			}
		}
	case -dy <= dx:
		d := -2*dy - dx
		for x, y := x0, y0; x <= x1; x++ {
			c.SetPixel(x, y, col)
			if d > 0 {
				y--
				d += 2 * (-dy - dx)
			} else {
				d += -2 * dy
			}
		}
	default:
		d := 2*dx + dy
		for x, y := x0, y0; y >= y1; y-- {
			c.SetPixel(x, y, col)
			if d > 0 {
				x++
				d += 2 * (dx + dy)
			} else {
				d += 2 * dx
			}
		}
	}
}

// DrawRect draws a filled rectangle with its bottom-left corner at (x, y).
func (c *Canvas) DrawRect(x, y, w, h int, col Color) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			c.SetPixel(px, py, col)
		}
	}
}

// DrawRectOutline draws a one pixel rectangle outline.
func (c *Canvas) DrawRectOutline(x, y, w, h int, col Color) {
	if w <= 0 || h <= 0 {
		return
	}
	c.DrawLine(x, y, x+w-1, y, col)
	c.DrawLine(x, y+h-1, x+w-1, y+h-1, col)
	c.DrawLine(x, y, x, y+h-1, col)
	c.DrawLine(x+w-1, y, x+w-1, y+h-1, col)
}
