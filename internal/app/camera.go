package app

import (
	"math"

	"flint/internal/mathutil"
)

// FlyCameraInput is the WASD + mouse-look input the inspector-mode
// camera reads each frame, independent of the character controller's
// physics-driven InputActions.
type FlyCameraInput struct {
	Forward, Back, Left, Right, Up, Down bool
	MouseDeltaX, MouseDeltaY             float64
	Boost                                bool
}

// FlyCamera is a free-fly debug camera (no physics, no collision),
// distinct from the character controller's first-person camera.
type FlyCamera struct {
	Position   mathutil.Vec3
	Yaw, Pitch float64

	Speed      float64
	BoostScale float64
	MouseSpeed float64
	MinPitch   float64
	MaxPitch   float64
}

func NewFlyCamera(position mathutil.Vec3) *FlyCamera {
	return &FlyCamera{
		Position:   position,
		Speed:      5.0,
		BoostScale: 3.0,
		MouseSpeed: 0.002,
		MinPitch:   -math.Pi/2 + 0.01,
		MaxPitch:   math.Pi/2 - 0.01,
	}
}

// Update integrates the free-fly camera's position and orientation from
// one frame of input, following the same yaw/pitch-from-mouse-delta
// convention as physics.Controller.Update.
func (c *FlyCamera) Update(in FlyCameraInput, dt float64) {
	c.Yaw -= in.MouseDeltaX * c.MouseSpeed
	c.Pitch -= in.MouseDeltaY * c.MouseSpeed
	if c.Pitch < c.MinPitch {
		c.Pitch = c.MinPitch
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}

	forward := c.Forward()
	right := c.Right()

	move := mathutil.Zero
	if in.Forward {
		move = move.Add(forward)
	}
	if in.Back {
		move = move.Sub(forward)
	}
	if in.Right {
		move = move.Add(right)
	}
	if in.Left {
		move = move.Sub(right)
	}
	if in.Up {
		move = move.Add(mathutil.Vec3{X: 0, Y: 1, Z: 0})
	}
	if in.Down {
		move = move.Sub(mathutil.Vec3{X: 0, Y: 1, Z: 0})
	}

	speed := c.Speed
	if in.Boost {
		speed *= c.BoostScale
	}
	if move.LengthSq() > 0 {
		move = move.Normalize().Scale(speed * dt)
	}
	c.Position = c.Position.Add(move)
}

func (c *FlyCamera) Forward() mathutil.Vec3 {
	return mathutil.Vec3{
		X: math.Cos(c.Pitch) * math.Sin(c.Yaw),
		Y: math.Sin(c.Pitch),
		Z: -math.Cos(c.Pitch) * math.Cos(c.Yaw),
	}
}

func (c *FlyCamera) Right() mathutil.Vec3 {
	return mathutil.Vec3{X: math.Cos(c.Yaw), Y: 0, Z: math.Sin(c.Yaw)}
}

// ViewMatrix builds the camera's look-at view matrix for the current
// position/orientation.
func (c *FlyCamera) ViewMatrix() mathutil.Mat4 {
	target := c.Position.Add(c.Forward())
	return mathutil.LookAt(c.Position, target, mathutil.Vec3{X: 0, Y: 1, Z: 0})
}
