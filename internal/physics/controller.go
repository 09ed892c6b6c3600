package physics

import (
	"math"

	"flint/internal/ecs"
	"flint/internal/mathutil"
)

// InputActions carries the five actions the character controller
// drives itself from each frame.
type InputActions struct {
	Forward, Back, Left, Right, Jump bool
	MouseDeltaX, MouseDeltaY         float64
}

// Controller drives a first-person character-controller entity directly,
// bypassing the generic kinematic/dynamic body integration.
type Controller struct {
	Entity ecs.EntityID

	Speed       float64
	JumpSpeed   float64
	MouseSpeed  float64
	MinPitch    float64
	MaxPitch    float64

	Yaw, Pitch float64

	verticalVelocity float64
	grounded         bool
}

func NewController(id ecs.EntityID) *Controller {
	return &Controller{
		Entity:     id,
		Speed:      4.0,
		JumpSpeed:  5.0,
		MouseSpeed: 0.002,
		MinPitch:   -math.Pi/2 + 0.01,
		MaxPitch:   math.Pi/2 - 0.01,
	}
}

// Update synthesises a desired velocity from input actions, applies
// gravity when airborne, and updates yaw/pitch from mouse delta. groundHeight is the world-space Y of the ground plane the
// controller rests on -- a simplified stand-in for shape-based movement
// against arbitrary world geometry.
func (c *Controller) Update(body *Body, in InputActions, groundHeight, dt float64) {
	c.Yaw -= in.MouseDeltaX * c.MouseSpeed
	c.Pitch -= in.MouseDeltaY * c.MouseSpeed
	if c.Pitch < c.MinPitch {
		c.Pitch = c.MinPitch
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}

	forward := mathutil.Vec3{X: math.Sin(c.Yaw), Y: 0, Z: -math.Cos(c.Yaw)}
	right := mathutil.Vec3{X: math.Cos(c.Yaw), Y: 0, Z: math.Sin(c.Yaw)}

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
	if move.LengthSq() > 0 {
		move = move.Normalize().Scale(c.Speed)
	}

	c.grounded = body.Position.Y <= groundHeight+1e-6
	if c.grounded {
		c.verticalVelocity = 0
		if in.Jump {
			c.verticalVelocity = c.JumpSpeed
		}
	} else {
		c.verticalVelocity -= 9.81 * dt
	}

	body.Velocity = mathutil.Vec3{X: move.X, Y: c.verticalVelocity, Z: move.Z}
	body.Position = body.Position.Add(body.Velocity.Scale(dt))
	if body.Position.Y < groundHeight {
		body.Position.Y = groundHeight
		c.verticalVelocity = 0
	}
}

// Grounded reports whether the controller is currently resting on the
// ground plane.
func (c *Controller) Grounded() bool { return c.grounded }

// EyeTarget returns the camera eye position and look target for the
// first-person viewpoint.
func (c *Controller) EyeTarget(body *Body, eyeHeight float64) (eye, target mathutil.Vec3) {
	eye = body.Position.Add(mathutil.Vec3{X: 0, Y: eyeHeight, Z: 0})
	dir := mathutil.Vec3{
		X: math.Cos(c.Pitch) * math.Sin(c.Yaw),
		Y: math.Sin(c.Pitch),
		Z: -math.Cos(c.Pitch) * math.Cos(c.Yaw),
	}
	target = eye.Add(dir)
	return eye, target
}
