package render

import (
	"fmt"
	"testing"
)

func countColored(c *Canvas, col Color) int {
	n := 0
	for y := range c.Height() {
		for x := range c.Width() {
			if c.Pixel(x, y) == col {
				n++
			}
		}
	}
	return n
}

func TestDrawLineOctants(t *testing.T) {
	tests := []struct {
		x0, y0, x1, y1 int
	}{
		{2, 2, 12, 5},  // shallow up
		{2, 2, 5, 12},  // steep up
		{2, 12, 12, 9}, // shallow down
		{2, 12, 5, 2},  // steep down
		{12, 5, 2, 2},  // reversed
		{3, 7, 12, 7},  // horizontal
		{7, 1, 7, 13},  // vertical
		{1, 1, 13, 13}, // diagonal
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d,%d-%d,%d", tc.x0, tc.y0, tc.x1, tc.y1), func(t *testing.T) {
			c := NewCanvas(16, 16, WithoutDepth())
			c.DrawLine(tc.x0, tc.y0, tc.x1, tc.y1, ColorWhite)

			if c.Pixel(tc.x0, tc.y0) != ColorWhite || c.Pixel(tc.x1, tc.y1) != ColorWhite {
				t.Error("endpoints not drawn")
			}
			want := max(abs(tc.x1-tc.x0), abs(tc.y1-tc.y0)) + 1
			if got := countColored(c, ColorWhite); got != want {
				t.Errorf("drew %d pixels, want %d", got, want)
			}
		})
	}
}

func TestDrawLineClipsToCanvas(t *testing.T) {
	c := NewCanvas(8, 8, WithoutDepth())
	c.DrawLine(-20, 3, 30, 3, ColorWhite)
	if got := countColored(c, ColorWhite); got != 8 {
		t.Errorf("drew %d pixels, want 8", got)
	}
}

func TestDrawRect(t *testing.T) {
	c := NewCanvas(8, 8, WithoutDepth())
	c.DrawRect(1, 1, 3, 2, ColorRed)
	if got := countColored(c, ColorRed); got != 6 {
		t.Errorf("filled %d pixels, want 6", got)
	}

	c.Clear(ColorBlack)
	c.DrawRectOutline(0, 0, 4, 4, ColorRed)
	if got := countColored(c, ColorRed); got != 12 {
		t.Errorf("outlined %d pixels, want 12", got)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
