package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/prism/internal/config"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

const (
	// arrowImpulse is the turn velocity added per arrow key press, in
	// canvas pixels per frame.
	arrowImpulse = 2.0
	// dragImpulse scales mouse drag deltas (in canvas pixels).
	dragImpulse = 0.3
	// maxPitch keeps the view direction away from the world up axis.
	maxPitch = 0.99
)

// viewer owns the terminal and the scene. Input events and frames are
// handled on one goroutine, so camera mutations never race a render.
type viewer struct {
	cfg   *config.Config
	term  *uv.Terminal
	scene *scene.Scene
	hud   *HUD
	turn  *TurnState

	showHUD   bool
	mouseDown bool
	lastX     int
	lastY     int

	homePos math3d.Vec3
	homeDir math3d.Vec3
}

func runViewer(cfg *config.Config, model *models.Model, name string) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	s, meshes, err := newScene(cfg, model, width, height*2)
	if err != nil {
		return err
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	v := &viewer{
		cfg:     cfg,
		term:    term,
		scene:   s,
		hud:     NewHUD(name, meshes),
		turn:    NewTurnState(cfg.FPS),
		homePos: s.Camera.Position,
		homeDir: s.Camera.Direction(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = v.loop(ctx, cancel)

	fmt.Fprint(os.Stdout, "\x1b[?1003l")
	fmt.Fprint(os.Stdout, "\x1b[?1006l")
	term.ExitAltScreen()
	term.ShowCursor()
	if serr := term.Shutdown(context.Background()); serr != nil && err == nil {
		err = serr
	}
	return err
}

func (v *viewer) loop(ctx context.Context, quit context.CancelFunc) error {
	ticker := time.NewTicker(time.Second / time.Duration(v.cfg.FPS))
	defer ticker.Stop()

	events := v.term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := v.handle(ev, quit); err != nil {
				return err
			}
		case <-ticker.C:
			if err := v.frame(); err != nil {
				return err
			}
		}
	}
}

func (v *viewer) handle(ev uv.Event, quit context.CancelFunc) error {
	step := v.cfg.MoveStep
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		return v.resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "q", "ctrl+c"):
			quit()
		case ev.MatchString("w"):
			return v.move(render.MoveForward, step)
		case ev.MatchString("s"):
			return v.move(render.MoveBackward, step)
		case ev.MatchString("a"):
			return v.move(render.MoveLeft, step)
		case ev.MatchString("d"):
			return v.move(render.MoveRight, step)
		case ev.MatchString("space"):
			return v.move(render.MoveUp, step)
		case ev.MatchString("c"):
			return v.move(render.MoveDown, step)
		case ev.MatchString("left"):
			v.turn.ApplyImpulse(-arrowImpulse, 0)
		case ev.MatchString("right"):
			v.turn.ApplyImpulse(arrowImpulse, 0)
		case ev.MatchString("up"):
			v.turn.ApplyImpulse(0, arrowImpulse)
		case ev.MatchString("down"):
			v.turn.ApplyImpulse(0, -arrowImpulse)
		case ev.MatchString("b"):
			v.scene.ShowBounds = !v.scene.ShowBounds
		case ev.MatchString("r"):
			v.turn.Reset()
			v.scene.Camera.Position = v.homePos
			v.scene.Camera.SetDirection(v.homeDir)
		case ev.MatchString("?"), ev.MatchString("shift+/"):
			v.showHUD = !v.showHUD
		}

	case uv.MouseClickEvent:
		v.mouseDown = true
		v.lastX, v.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		v.mouseDown = false

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			return v.move(render.MoveForward, step)
		case uv.MouseWheelDown:
			return v.move(render.MoveBackward, step)
		}

	case uv.MouseMotionEvent:
		if v.mouseDown {
			// One cell is one canvas pixel wide and two tall; screen y
			// grows downwards.
			dx := float64(ev.X-v.lastX) * dragImpulse * v.cfg.TurnSpeed
			dy := float64(v.lastY-ev.Y) * 2 * dragImpulse * v.cfg.TurnSpeed
			v.turn.ApplyImpulse(dx, dy)
			v.lastX, v.lastY = ev.X, ev.Y
		}
	}
	return nil
}

func (v *viewer) move(dir render.Direction, distance float64) error {
	return v.scene.MoveCamera(dir, distance)
}

// resize rebuilds the camera and canvas for a new terminal size, keeping
// the camera pose.
func (v *viewer) resize(width, height int) error {
	if width < 2 || height < 1 {
		return nil
	}
	old := v.scene.Camera
	cam, err := newCamera(v.cfg, width, height*2)
	if err != nil {
		return err
	}
	cam.Position = old.Position
	cam.SetDirection(old.Direction())

	v.scene.Camera = cam
	v.scene.Canvas = render.NewCanvas(width, height*2, render.WithBackground(v.scene.Background))
	v.term.Erase()
	v.term.Resize(width, height)
	render.Logger().Debug("resized", "cols", width, "rows", height)
	return nil
}

// frame applies the turn springs, renders and displays one frame.
func (v *viewer) frame() error {
	if dx, dy := v.turn.Step(1e-3); dx != 0 || dy != 0 {
		if err := v.turnCamera(dx, dy); err != nil {
			return err
		}
	}

	if _, err := v.scene.Render(); err != nil {
		return err
	}
	v.scene.Canvas.Draw(v.term, v.term.Bounds())

	v.hud.UpdateFPS()
	if v.showHUD {
		v.hud.Draw(v.term, v.scene.Stats(), v.scene.ShowBounds)
	}
	if err := v.term.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

// turnCamera turns by a pixel delta, refusing turns that would bring the
// view direction too close to straight up or down.
func (v *viewer) turnCamera(dx, dy float64) error {
	cam := v.scene.Camera
	prev := cam.Direction()
	if err := v.scene.TurnCamera(dx, dy); err != nil {
		if errors.Is(err, render.ErrDegenerateBasis) {
			cam.SetDirection(prev)
			v.turn.Pitch.Velocity = 0
			return nil
		}
		return err
	}
	if math.Abs(cam.Direction().Dot(render.WorldUp)) > maxPitch {
		cam.SetDirection(prev)
		v.turn.Pitch.Velocity = 0
	}
	return nil
}
