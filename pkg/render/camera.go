package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

var (
	// ErrDegenerateBasis is returned when the view direction is zero or
	// parallel to the world up vector.
	ErrDegenerateBasis = errors.New("render: degenerate camera basis")

	// ErrDegenerateFrustum is returned when a frustum plane cannot be
	// oriented towards the frustum interior.
	ErrDegenerateFrustum = errors.New("render: degenerate view frustum")

	// ErrInvalidCamera is returned by NewCamera for unusable parameters.
	ErrInvalidCamera = errors.New("render: invalid camera parameters")
)

// WorldUp is the fixed up vector every camera basis is built against.
var WorldUp = math3d.Up()

// Direction names a camera movement.
type Direction int

const (
	MoveUp Direction = iota
	MoveDown
	MoveLeft
	MoveRight
	MoveForward
	MoveBackward
)

func (d Direction) String() string {
	switch d {
	case MoveUp:
		return "up"
	case MoveDown:
		return "down"
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	case MoveForward:
		return "forward"
	case MoveBackward:
		return "backward"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Basis is the orthonormal camera frame. Back points away from the view
// direction.
type Basis struct {
	Right, Up, Back math3d.Vec3
}

// Matrix returns the camera-to-world rotation (basis vectors as columns).
func (b Basis) Matrix() math3d.Mat4 {
	return math3d.FromBasis(b.Right, b.Up, b.Back)
}

// Camera is a perspective camera looking along Direction.
//
// Near and Far are signed distances along the view axis: the camera looks
// down its negative back axis, so Near < 0 and Far < Near.
type Camera struct {
	Position math3d.Vec3

	Near float64
	Far  float64
	FOV  float64 // horizontal field of view in radians

	// Window half-extents on the near plane, derived once in NewCamera.
	Left, Right, Bottom, Top float64

	direction     math3d.Vec3
	width, height int
}

// NewCamera creates a camera for a width x height viewport at the origin
// looking down -Z.
func NewCamera(width, height int, fov, near, far float64) (*Camera, error) {
	switch {
	case width < 2 || height < 2:
		return nil, fmt.Errorf("%w: viewport %dx%d", ErrInvalidCamera, width, height)
	case near >= 0 || far >= near:
		return nil, fmt.Errorf("%w: need far < near < 0, got near=%g far=%g", ErrInvalidCamera, near, far)
	case fov <= 0 || fov >= math.Pi:
		return nil, fmt.Errorf("%w: fov %g outside (0, pi)", ErrInvalidCamera, fov)
	}

	right := -near * math.Tan(fov/2)
	top := right * float64(height) / float64(width)
	return &Camera{
		Near:      near,
		Far:       far,
		FOV:       fov,
		Left:      -right,
		Right:     right,
		Bottom:    -top,
		Top:       top,
		direction: math3d.V3(0, 0, -1),
		width:     width,
		height:    height,
	}, nil
}

// Size returns the viewport size in pixels.
func (c *Camera) Size() (width, height int) {
	return c.width, c.height
}

// Direction returns the normalized view direction.
func (c *Camera) Direction() math3d.Vec3 {
	return c.direction
}

// SetDirection sets the view direction. d is normalized.
func (c *Camera) SetDirection(d math3d.Vec3) {
	c.direction = d.Normalize()
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.SetDirection(target.Sub(c.Position))
}

// Basis computes the camera frame from the current direction.
func (c *Camera) Basis() (Basis, error) {
	back := c.direction.Negate()
	right := WorldUp.Cross(back).Normalize()
	up := back.Cross(right).Normalize()
	if back.LenSq() == 0 || right.LenSq() == 0 || up.LenSq() == 0 {
		return Basis{}, fmt.Errorf("%w: direction %v", ErrDegenerateBasis, c.direction)
	}
	return Basis{Right: right, Up: up, Back: back}, nil
}

// Move translates the camera. Up and Down follow the world up vector,
// Left and Right the basis right vector, Forward and Backward up x right.
func (c *Camera) Move(dir Direction, distance float64) error {
	if dir == MoveUp || dir == MoveDown {
		if dir == MoveDown {
			distance = -distance
		}
		c.Position = c.Position.Add(WorldUp.Scale(distance))
		return nil
	}

	b, err := c.Basis()
	if err != nil {
		return err
	}
	switch dir {
	case MoveLeft:
		c.Position = c.Position.Sub(b.Right.Scale(distance))
	case MoveRight:
		c.Position = c.Position.Add(b.Right.Scale(distance))
	case MoveForward:
		c.Position = c.Position.Add(b.Up.Cross(b.Right).Scale(distance))
	case MoveBackward:
		c.Position = c.Position.Sub(b.Up.Cross(b.Right).Scale(distance))
	default:
		return fmt.Errorf("render: unknown move %v", dir)
	}
	return nil
}

// Turn offsets the view direction by a screen-space delta:
// direction += right*dx + up*dy, renormalized.
func (c *Camera) Turn(dx, dy float64) error {
	b, err := c.Basis()
	if err != nil {
		return err
	}
	d := c.direction.Add(b.Right.Scale(dx)).Add(b.Up.Scale(dy)).Normalize()
	if d.LenSq() == 0 {
		return fmt.Errorf("%w: turn by (%g, %g)", ErrDegenerateBasis, dx, dy)
	}
	c.direction = d
	return nil
}

// ViewMatrix returns transpose(basis) * translate(-position).
func (c *Camera) ViewMatrix() (math3d.Mat4, error) {
	b, err := c.Basis()
	if err != nil {
		return math3d.Mat4{}, err
	}
	return b.Matrix().Transpose().Mul(math3d.Translate(c.Position.Negate())), nil
}

// ProjectionMatrix returns viewport * orthographic * perspective.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	vp := math3d.Viewport(c.width, c.height)
	ortho := math3d.Orthographic(c.Left, c.Right, c.Bottom, c.Top, c.Near, c.Far)
	return vp.Mul(ortho).Mul(math3d.PerspectiveNF(c.Near, c.Far))
}

// Transform returns the full world-to-screen transform
// viewport * orthographic * perspective * view.
func (c *Camera) Transform() (math3d.Mat4, error) {
	view, err := c.ViewMatrix()
	if err != nil {
		return math3d.Mat4{}, err
	}
	return c.ProjectionMatrix().Mul(view), nil
}

// Project maps a world point to screen space using the camera's current
// transform. Per-vertex callers should compute Transform once and use
// ProjectPoint.
func (c *Camera) Project(p math3d.Vec3) (math3d.Vec2, error) {
	xf, err := c.Transform()
	if err != nil {
		return math3d.Vec2{}, err
	}
	return ProjectPoint(xf, p), nil
}

// ProjectPoint applies xf to p and divides by w.
func ProjectPoint(xf math3d.Mat4, p math3d.Vec3) math3d.Vec2 {
	s := xf.MulVec4(math3d.Point(p)).PerspectiveDivide()
	return math3d.V2(s.X, s.Y)
}

// Depth returns the distance of p in front of the camera along the view
// axis. Points behind the camera have negative depth.
func (c *Camera) Depth(b Basis, p math3d.Vec3) float64 {
	return -b.Back.Dot(p.Sub(c.Position))
}

// ViewPlanes builds the six world-space frustum planes, each oriented so
// that the frustum interior evaluates positive.
func (c *Camera) ViewPlanes() (Frustum, error) {
	b, err := c.Basis()
	if err != nil {
		return Frustum{}, err
	}
	toWorld := func(x, y, z float64) math3d.Vec3 {
		return b.Right.Scale(x).Add(b.Up.Scale(y)).Add(b.Back.Scale(z)).Add(c.Position)
	}

	n, f := c.Near, c.Far
	s := f / n

	nbl := toWorld(c.Left, c.Bottom, n)
	nbr := toWorld(c.Right, c.Bottom, n)
	ntr := toWorld(c.Right, c.Top, n)
	ntl := toWorld(c.Left, c.Top, n)

	fl := toWorld(c.Left*s, 0, f)
	fr := toWorld(c.Right*s, 0, f)
	ft := toWorld(0, c.Top*s, f)
	fb := toWorld(0, c.Bottom*s, f)

	interior := nbl.Add(fr).Scale(0.5)

	triples := [6][3]math3d.Vec3{
		PlaneNear:   {nbl, nbr, ntr},
		PlaneFar:    {fl, fr, ft},
		PlaneLeft:   {nbl, ntl, fl},
		PlaneRight:  {nbr, ntr, fr},
		PlaneTop:    {ntl, ntr, ft},
		PlaneBottom: {nbl, nbr, fb},
	}

	var fr6 Frustum
	for i, t := range triples {
		p, err := NewViewPlane(t[0], t[1], t[2], interior)
		if err != nil {
			return Frustum{}, fmt.Errorf("%s plane: %w", PlaneName(i), err)
		}
		fr6.Planes[i] = p
	}
	return fr6, nil
}
