package main

import (
	"fmt"
	"image/color"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/prism/pkg/scene"
)

var (
	hudBg     = color.RGBA{0, 0, 0, 255}
	hudWhite  = color.RGBA{235, 235, 235, 255}
	hudGreen  = color.RGBA{80, 220, 120, 255}
	hudCyan   = color.RGBA{80, 210, 230, 255}
	hudYellow = color.RGBA{240, 210, 80, 255}
	hudDim    = color.RGBA{150, 150, 150, 255}
)

// HUD renders an overlay with model info, mesh metadata and frame stats.
type HUD struct {
	filename  string
	triangles int
	meshes    []scene.MeshInfo
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD(filename string, meshes []scene.MeshInfo) *HUD {
	n := 0
	for _, m := range meshes {
		n += m.Triangles
	}
	return &HUD{
		filename:  filename,
		triangles: n,
		meshes:    meshes,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Draw writes the overlay into the screen buffer on top of the frame.
func (h *HUD) Draw(scr uv.Screen, stats scene.Stats, showBounds bool) {
	area := scr.Bounds()
	width, height := area.Dx(), area.Dy()
	if width == 0 || height < 2 {
		return
	}

	// Top row: FPS, filename, triangle count
	drawText(scr, 0, 0, fmt.Sprintf(" %.0f FPS ", h.fps), hudGreen)
	drawText(scr, max((width-len(h.filename)-2)/2, 0), 0, " "+h.filename+" ", hudWhite)
	tris := fmt.Sprintf(" %d tris ", h.triangles)
	drawText(scr, max(width-len(tris), 0), 0, tris, hudCyan)

	// Mesh list below the title, as many as fit.
	for i, m := range h.meshes {
		row := 1 + i
		if row >= height-1 {
			drawText(scr, 0, row-1, fmt.Sprintf(" ... %d more ", len(h.meshes)-i+1), hudDim)
			break
		}
		material := m.Material
		if material == "" {
			material = "-"
		}
		drawText(scr, 0, row, fmt.Sprintf(" %s  %d tris  %s ", m.Name, m.Triangles, material), hudDim)
	}

	// Bottom row: frame stats and toggles
	check := "[ ]"
	if showBounds {
		check = "[x]"
	}
	bottom := fmt.Sprintf(" %d drawn  %d back  %d clipped  %d px  %s Bounds ",
		stats.Emitted, stats.BackFaces, stats.Clipped, stats.Pixels, check)
	drawText(scr, 0, height-1, bottom, hudWhite)
	hint := " ?: hide HUD "
	drawText(scr, max(width-len(hint), 0), height-1, hint, hudYellow)
}

// drawText writes an ASCII string at (x, y), clipped to the screen.
func drawText(scr uv.Screen, x, y int, s string, fg color.Color) {
	area := scr.Bounds()
	for i, r := range s {
		col := area.Min.X + x + i
		if col >= area.Max.X {
			return
		}
		scr.SetCell(col, area.Min.Y+y, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: fg, Bg: hudBg},
		})
	}
}
