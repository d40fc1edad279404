package main

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// TurnAxis is one turning axis whose velocity decays to zero on a spring,
// so a flick of the mouse or a tap of an arrow key glides to a stop.
type TurnAxis struct {
	Velocity  float64 // canvas pixels per frame
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewTurnAxis creates an axis with a critically damped spring.
func NewTurnAxis(fps int) TurnAxis {
	return TurnAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Step returns this frame's delta and decays the velocity.
func (a *TurnAxis) Step() float64 {
	v := a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	return v
}

// TurnState holds the horizontal and vertical turn axes.
type TurnState struct {
	Yaw, Pitch TurnAxis
	fps        int
}

func NewTurnState(fps int) *TurnState {
	return &TurnState{
		Yaw:   NewTurnAxis(fps),
		Pitch: NewTurnAxis(fps),
		fps:   fps,
	}
}

// ApplyImpulse adds to both velocities.
func (t *TurnState) ApplyImpulse(yaw, pitch float64) {
	t.Yaw.Velocity += yaw
	t.Pitch.Velocity += pitch
}

// Step returns this frame's (dx, dy). Deltas below threshold are reported
// as zero so a resting camera is not re-oriented every frame.
func (t *TurnState) Step(threshold float64) (dx, dy float64) {
	dx, dy = t.Yaw.Step(), t.Pitch.Step()
	if math.Abs(dx) < threshold && math.Abs(dy) < threshold {
		return 0, 0
	}
	return dx, dy
}

func (t *TurnState) Reset() {
	t.Yaw = NewTurnAxis(t.fps)
	t.Pitch = NewTurnAxis(t.fps)
}
