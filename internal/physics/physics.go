// Package physics bridges Flint's ECS world to a simple rigid-body
// simulation: discovering rigidbody/collider components,
// stepping bodies forward, and writing dynamic results back into
// transform.position.
//
// Follows the usual body-kind / collider-shape vocabulary and a
// gravity-then-integrate Simulate loop, hand-written against mathutil
// rather than imported: no available physics package is exposed as a
// reusable third-party module suitable for embedding here -- see
// DESIGN.md.
package physics

import (
	"flint/internal/ecs"
	"flint/internal/mathutil"
)

type BodyKind string

const (
	BodyStatic             BodyKind = "static"
	BodyDynamic            BodyKind = "dynamic"
	BodyKinematicPosition  BodyKind = "kinematic-position"
	BodyKinematicVelocity  BodyKind = "kinematic-velocity"
)

type ColliderShape string

const (
	ShapeBox     ColliderShape = "box"
	ShapeSphere  ColliderShape = "sphere"
	ShapeCapsule ColliderShape = "capsule"
)

// Body is one tracked rigid body, mirroring an entity's rigidbody
// component.
type Body struct {
	Entity ecs.EntityID
	Kind   BodyKind

	Position mathutil.Vec3
	Rotation mathutil.Quat
	Velocity mathutil.Vec3
	AngularVelocity mathutil.Vec3

	Mass           float64
	LinearDamping  float64
	AngularDamping float64
	GravityScale   float64

	// NextKinematicPosition/NextKinematicRotation stage the next pose for
	// kinematic bodies; update_kinematic_bodies sets these, Step consumes
	// them.
	NextKinematicPosition mathutil.Vec3
	NextKinematicRotation mathutil.Quat
	hasNextKinematic      bool
}

// Collider is one tracked collider, offset from its body's origin by
// the authored bounds center so asymmetric bounds (a door hinged along
// one edge) rotate around the entity's origin rather than the bounds
// center.
type Collider struct {
	Entity       ecs.EntityID
	Shape        ColliderShape
	HalfExtents  mathutil.Vec3 // box
	Radius       float64       // sphere, capsule
	HalfHeight   float64       // capsule
	BoundsCenter mathutil.Vec3 // authored pivot-relative offset, fixed at load
	BoundsOffset mathutil.Vec3 // BoundsCenter rotated by the body's current orientation
	Friction     float64
	Restitution  float64
	IsSensor     bool
}

// Bridge mirrors newly discovered entities into the physics world, steps
// the simulation, and writes results back.
type Bridge struct {
	bodies    map[ecs.EntityID]*Body
	colliders map[ecs.EntityID]*Collider

	// synced marks entities already mirrored into the physics world.
	// Despawn intentionally does not clear this set or the body/collider
	// maps: despawn removes the entity from ECS but does not dispose of
	// its physics body, since the caches are rebuilt wholesale at the
	// next scene load anyway.
	synced map[ecs.EntityID]bool

	Gravity mathutil.Vec3
}

func NewBridge() *Bridge {
	return &Bridge{
		bodies:    make(map[ecs.EntityID]*Body),
		colliders: make(map[ecs.EntityID]*Collider),
		synced:    make(map[ecs.EntityID]bool),
		Gravity:   mathutil.Vec3{X: 0, Y: -9.81, Z: 0},
	}
}

// SyncToPhysics discovers entities with a rigidbody component not yet
// tracked and constructs bodies/colliders for them.
func (b *Bridge) SyncToPhysics(w *ecs.World) {
	for _, id := range w.AllEntities() {
		if b.synced[id] {
			continue
		}
		rb, ok := w.GetComponent(id, "rigidbody")
		if !ok {
			continue
		}
		b.constructBody(w, id, rb)

		if cc, ok := w.GetComponent(id, "collider"); ok {
			b.constructCollider(id, cc)
		}

		b.synced[id] = true
	}
}

func (b *Bridge) constructBody(w *ecs.World, id ecs.EntityID, rb ecs.Value) {
	table, _ := rb.Table()

	kind := BodyDynamic
	if table != nil {
		if v, ok := table.Get("kind"); ok {
			if s, ok := v.String(); ok {
				kind = BodyKind(s)
			}
		}
	}

	body := &Body{
		Entity:         id,
		Kind:           kind,
		Mass:           1.0,
		LinearDamping:  0.0,
		AngularDamping: 0.0,
		GravityScale:   1.0,
		Rotation:       mathutil.QuatIdentity,
	}

	if table != nil {
		if v, ok := table.Get("mass"); ok {
			if f, ok := v.AsFloat(); ok {
				body.Mass = f
			}
		}
		if v, ok := table.Get("linear_damping"); ok {
			if f, ok := v.AsFloat(); ok {
				body.LinearDamping = f
			}
		}
		if v, ok := table.Get("angular_damping"); ok {
			if f, ok := v.AsFloat(); ok {
				body.AngularDamping = f
			}
		}
		if v, ok := table.Get("gravity_scale"); ok {
			if f, ok := v.AsFloat(); ok {
				body.GravityScale = f
			}
		}
	}

	transform := w.LocalTransform(id)
	body.Position = transform.Position
	if transform.Quat != nil {
		body.Rotation = *transform.Quat
	} else {
		body.Rotation = mathutil.QuatFromEulerZYXDeg(transform.Euler)
	}

	b.bodies[id] = body
}

func (b *Bridge) constructCollider(id ecs.EntityID, cc ecs.Value) {
	table, _ := cc.Table()

	col := &Collider{
		Entity:      id,
		Shape:       ShapeBox,
		HalfExtents: mathutil.Vec3{X: 0.5, Y: 0.5, Z: 0.5},
		Radius:      0.5,
		HalfHeight:  0.5,
		Friction:    0.5,
		Restitution: 0.0,
	}

	if table != nil {
		if v, ok := table.Get("shape"); ok {
			if s, ok := v.String(); ok {
				col.Shape = ColliderShape(s)
			}
		}
		if v, ok := table.Get("half_extents"); ok {
			col.HalfExtents = vec3FromValue(v, col.HalfExtents)
		}
		if v, ok := table.Get("radius"); ok {
			if f, ok := v.AsFloat(); ok {
				col.Radius = f
			}
		}
		if v, ok := table.Get("half_height"); ok {
			if f, ok := v.AsFloat(); ok {
				col.HalfHeight = f
			}
		}
		if v, ok := table.Get("bounds_center"); ok {
			col.BoundsCenter = vec3FromValue(v, mathutil.Zero)
			col.BoundsOffset = col.BoundsCenter
		}
		if v, ok := table.Get("friction"); ok {
			if f, ok := v.AsFloat(); ok {
				col.Friction = f
			}
		}
		if v, ok := table.Get("restitution"); ok {
			if f, ok := v.AsFloat(); ok {
				col.Restitution = f
			}
		}
		if v, ok := table.Get("is_sensor"); ok {
			if bl, ok := v.Bool(); ok {
				col.IsSensor = bl
			}
		}
	}

	b.colliders[id] = col
}

func vec3FromValue(v ecs.Value, fallback mathutil.Vec3) mathutil.Vec3 {
	arr, ok := v.Array()
	if !ok || len(arr) != 3 {
		return fallback
	}
	x, _ := arr[0].Float()
	y, _ := arr[1].Float()
	z, _ := arr[2].Float()
	return mathutil.Vec3{X: x, Y: y, Z: z}
}

// Step advances dynamic and kinematic bodies by dt. Character-controller
// entities are skipped.
func (b *Bridge) Step(w *ecs.World, dt float64) {
	for id, body := range b.bodies {
		if w.HasComponent(id, "character_controller") {
			continue
		}
		switch body.Kind {
		case BodyDynamic:
			b.integrateDynamic(body, dt)
		case BodyKinematicPosition, BodyKinematicVelocity:
			b.integrateKinematic(body, dt)
		case BodyStatic:
			// never moves
		}
	}
}

func (b *Bridge) integrateDynamic(body *Body, dt float64) {
	gravity := b.Gravity.Scale(body.GravityScale)
	body.Velocity = body.Velocity.Add(gravity.Scale(dt))
	body.Velocity = body.Velocity.Scale(1.0 / (1.0 + body.LinearDamping*dt))
	body.Position = body.Position.Add(body.Velocity.Scale(dt))

	body.AngularVelocity = body.AngularVelocity.Scale(1.0 / (1.0 + body.AngularDamping*dt))
}

func (b *Bridge) integrateKinematic(body *Body, dt float64) {
	if !body.hasNextKinematic {
		return
	}
	body.Position = body.NextKinematicPosition
	body.Rotation = body.NextKinematicRotation
	body.hasNextKinematic = false
}

// SyncFromPhysics reads dynamic body translations back into
// transform.position.
func (b *Bridge) SyncFromPhysics(w *ecs.World) {
	for id, body := range b.bodies {
		if body.Kind != BodyDynamic {
			continue
		}
		_ = w.SetField(id, "transform", "position", encodeVec3(body.Position))
	}
}

// UpdateKinematicBodies pushes ECS transforms into kinematic bodies each
// frame, converting Euler ZYX degrees to a quaternion and rotating the
// bounds-center offset so the collider keeps rotating around the body's
// pivot. Character-controller entities are skipped.
func (b *Bridge) UpdateKinematicBodies(w *ecs.World) {
	for id, body := range b.bodies {
		if body.Kind != BodyKinematicPosition && body.Kind != BodyKinematicVelocity {
			continue
		}
		if w.HasComponent(id, "character_controller") {
			continue
		}

		t := w.LocalTransform(id)
		rot := mathutil.QuatFromEulerZYXDeg(t.Euler)
		if t.Quat != nil {
			rot = *t.Quat
		}

		body.NextKinematicPosition = t.Position
		body.NextKinematicRotation = rot
		body.hasNextKinematic = true

		if col, ok := b.colliders[id]; ok {
			col.BoundsOffset = rot.Rotate(col.BoundsCenter)
		}
	}
}

func encodeVec3(v mathutil.Vec3) ecs.Value {
	return ecs.Array(ecs.Float(v.X), ecs.Float(v.Y), ecs.Float(v.Z))
}

// Body returns the tracked body for id, if any.
func (b *Bridge) Body(id ecs.EntityID) (*Body, bool) {
	body, ok := b.bodies[id]
	return body, ok
}

// Collider returns the tracked collider for id, if any.
func (b *Bridge) Collider(id ecs.EntityID) (*Collider, bool) {
	c, ok := b.colliders[id]
	return c, ok
}

// Synced reports whether id has already been mirrored into the physics
// world.
func (b *Bridge) Synced(id ecs.EntityID) bool {
	return b.synced[id]
}
