// prism - Terminal 3D Model Viewer
// View OBJ and glTF files in your terminal with a CPU software rasterizer,
// or render a single frame to PNG/WebP.
//
// Controls:
//
//	W/A/S/D     - Move forward/left/backward/right
//	Space/C     - Move up/down
//	Arrow keys  - Turn
//	Mouse drag  - Turn
//	Mouse wheel - Move forward/backward
//	B           - Toggle bounding boxes
//	R           - Reset camera
//	?           - Toggle HUD overlay (FPS, meshes, frame stats)
//	Esc/Q       - Quit
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/taigrr/prism/internal/config"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
	"github.com/taigrr/prism/pkg/snapshot"
)

// modelSize is the largest dimension models are scaled to on load.
const modelSize = 2.0

var (
	configPath = flag.String("config", "", "Path to a JSON config file")
	targetFPS  = flag.Int("fps", 0, "Target FPS (default 30)")
	bgColor    = flag.String("bg", "", "Background color R,G,B (default 30,30,40)")
	snapPath   = flag.String("snapshot", "", "Render one frame to this .png or .webp file and exit")
	snapWidth  = flag.Int("width", 0, "Snapshot width in pixels (default 640)")
	snapHeight = flag.Int("height", 0, "Snapshot height in pixels (default 480)")
	showBounds = flag.Bool("bounds", false, "Draw object bounding boxes")
	logPath    = flag.String("log", "", "Write logs to this file")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error (default info)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "prism - Terminal 3D Model Viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: prism [options] <model.obj|model.gltf|model.glb>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  W/A/S/D     - Move\n")
		fmt.Fprintf(os.Stderr, "  Space/C     - Move up/down\n")
		fmt.Fprintf(os.Stderr, "  Arrows/drag - Turn\n")
		fmt.Fprintf(os.Stderr, "  B           - Toggle bounding boxes\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset camera\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc/Q       - Quit\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(modelPath string) error {
	var cfg config.Config
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	cfg.Resolve(config.Flags{
		FPS:        *targetFPS,
		Background: *bgColor,
		Snapshot:   *snapPath,
		Width:      *snapWidth,
		Height:     *snapHeight,
		ShowBounds: *showBounds,
		LogFile:    *logPath,
		LogLevel:   *logLevel,
	})

	closeLog, err := setupLogging(&cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	model, err := models.Load(modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	model.Normalize(modelSize)

	if cfg.Snapshot != "" {
		return renderSnapshot(&cfg, model)
	}
	return runViewer(&cfg, model, filepath.Base(modelPath))
}

// setupLogging installs the render logger. The viewer owns the terminal,
// so without a log file it stays silent; snapshot mode logs to stderr.
func setupLogging(cfg *config.Config) (func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	var (
		w       io.Writer
		closeFn = func() {}
	)
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case cfg.Snapshot != "":
		w = os.Stderr
	default:
		return closeFn, nil
	}
	render.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return closeFn, nil
}

// newScene builds a camera looking at the origin from cfg.Distance along
// +Z, a canvas of the given size and a scene holding model.
func newScene(cfg *config.Config, model *models.Model, width, height int) (*scene.Scene, []scene.MeshInfo, error) {
	cam, err := newCamera(cfg, width, height)
	if err != nil {
		return nil, nil, err
	}
	cam.Position = math3d.V3(0, 0, cfg.Distance)
	cam.LookAt(math3d.Zero3())

	r, g, b, err := cfg.BackgroundRGB()
	if err != nil {
		return nil, nil, err
	}
	bg := render.RGB(r, g, b)

	s, err := scene.New(cam, render.NewCanvas(width, height, render.WithBackground(bg)))
	if err != nil {
		return nil, nil, err
	}
	s.Background = bg
	s.ShowBounds = cfg.ShowBounds
	s.Light = cam.Position.Add(math3d.V3(cfg.Light[0], cfg.Light[1], cfg.Light[2]))

	_, meshes, err := s.AddObject(model)
	if err != nil {
		return nil, nil, err
	}
	return s, meshes, nil
}

func newCamera(cfg *config.Config, width, height int) (*render.Camera, error) {
	return render.NewCamera(width, height, cfg.FOV*math.Pi/180, cfg.Near, cfg.Far)
}

func renderSnapshot(cfg *config.Config, model *models.Model) error {
	s, meshes, err := newScene(cfg, model, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	if _, err := s.Render(); err != nil {
		return err
	}
	if err := snapshot.Save(cfg.Snapshot, s.Canvas.ToImage()); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "MESH\tTRIANGLES\tMATERIAL\n")
	for _, m := range meshes {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", m.Name, m.Triangles, m.Material)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	st := s.Stats()
	fmt.Printf("Wrote %s (%dx%d, %d triangles drawn, %d pixels)\n", cfg.Snapshot, cfg.Width, cfg.Height, st.Emitted, st.Pixels)
	return nil
}
