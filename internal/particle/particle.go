// Package particle implements Flint's per-emitter CPU particle simulator:
// a fixed-capacity pool, emission timer, integration, and GPU
// instance-buffer packing.
//
// Uses pool/swap-remove compaction, lerp-by-age-ratio property
// interpolation, and accumulator-based emission, generalized from a 2D
// point emitter to 3D shaped emission (point/sphere/cone/box),
// sprite-sheet frame advance, and a deterministic xorshift RNG in place
// of math/rand/v2, since replaying a scene deterministically needs
// reproducible particle emission.
package particle

import (
	"flint/internal/mathutil"
)

type Shape string

const (
	ShapePoint  Shape = "point"
	ShapeSphere Shape = "sphere"
	ShapeCone   Shape = "cone"
	ShapeBox    Shape = "box"
)

type BlendMode string

const (
	BlendAlpha    BlendMode = "alpha"
	BlendAdditive BlendMode = "additive"
)

// Range is a closed [Min, Max] interval sampled uniformly.
type Range struct {
	Min, Max float64
}

func (r Range) sample(rng *Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Config controls how an emitter spawns and evolves particles.
type Config struct {
	MaxParticles int
	EmitRate     float64
	Shape        Shape
	Direction    mathutil.Vec3
	Spread       float64 // radians, cone half-angle / spherical jitter
	BoxExtents   mathutil.Vec3

	Speed    Range
	Lifetime Range
	Size     Range
	EndSize  Range
	Color    [4]float64
	EndColor [4]float64

	Gravity mathutil.Vec3
	Damping float64

	SpriteFrames int // sprite-sheet frame count, 0/1 = no animation
	BlendMode    BlendMode
	WorldSpace   bool
	Looping      bool
	Duration     float64 // 0 = infinite when Looping
}

type particleState struct {
	pos, vel mathutil.Vec3
	age, life float64
	startSize, endSize float64
	size     float64
	color    [4]float64
	frame    int
}

// Emitter owns one pool of particles and its config.
type Emitter struct {
	Config Config

	particles  []particleState
	alive      int
	emitAccum  float64
	burst      int
	active     bool
	elapsed    float64
	worldOrigin mathutil.Vec3

	rng *Rand
}

func NewEmitter(cfg Config, seed uint64) *Emitter {
	max := cfg.MaxParticles
	if max <= 0 {
		max = 256
	}
	return &Emitter{
		Config:     cfg,
		particles:  make([]particleState, max),
		rng:        NewRand(seed),
	}
}

func (e *Emitter) Start()          { e.active = true; e.elapsed = 0 }
func (e *Emitter) Stop()           { e.active = false }
func (e *Emitter) Active() bool    { return e.active }
func (e *Emitter) AliveCount() int { return e.alive }

// Burst queues n particles to spawn on the next Update call, in addition
// to the rate-based accumulator.
func (e *Emitter) Burst(n int) {
	e.burst += n
}

// SetWorldOrigin updates the emitter's world-space anchor, used when
// Config.WorldSpace is true.
func (e *Emitter) SetWorldOrigin(pos mathutil.Vec3) {
	e.worldOrigin = pos
}

// Update advances the simulation by dt: spawns, integrates, kills
// expired particles compacting the alive region via swap-removal.
func (e *Emitter) Update(dt float64) {
	if e.Config.Looping && e.Config.Duration > 0 {
		e.elapsed += dt
		if e.elapsed >= e.Config.Duration {
			e.active = false
		}
	}

	i := 0
	for i < e.alive {
		p := &e.particles[i]
		p.age += dt
		if p.age >= p.life {
			e.alive--
			e.particles[i] = e.particles[e.alive]
			continue
		}

		p.vel = p.vel.Add(e.Config.Gravity.Scale(dt))
		p.vel = p.vel.Scale(1.0 / (1.0 + e.Config.Damping*dt))
		p.pos = p.pos.Add(p.vel.Scale(dt))

		t := p.age / p.life
		p.size = lerp(p.startSize, p.endSize, t)
		for c := 0; c < 4; c++ {
			p.color[c] = lerp(e.Config.Color[c], e.Config.EndColor[c], t)
		}
		if e.Config.SpriteFrames > 1 {
			p.frame = int(t * float64(e.Config.SpriteFrames))
			if p.frame >= e.Config.SpriteFrames {
				p.frame = e.Config.SpriteFrames - 1
			}
		}

		i++
	}

	if e.active && e.Config.EmitRate > 0 {
		e.emitAccum += e.Config.EmitRate * dt
	}
	spawnCount := int(e.emitAccum) + e.burst
	e.burst = 0
	e.emitAccum -= float64(int(e.emitAccum))

	for n := 0; n < spawnCount; n++ {
		if e.alive >= len(e.particles) {
			break
		}
		e.spawn()
	}
}

func (e *Emitter) spawn() {
	p := &e.particles[e.alive]

	dir, origin := e.sampleShape()
	speed := e.Config.Speed.sample(e.rng)

	p.pos = origin
	if e.Config.WorldSpace {
		p.pos = p.pos.Add(e.worldOrigin)
	}
	p.vel = dir.Scale(speed)

	p.life = e.Config.Lifetime.sample(e.rng)
	if p.life <= 0 {
		p.life = 1.0
	}
	p.age = 0

	p.startSize = e.Config.Size.sample(e.rng)
	p.endSize = e.Config.EndSize.sample(e.rng)
	p.size = p.startSize
	p.color = e.Config.Color
	p.frame = 0

	e.alive++
}

// sampleShape returns a normalized emission direction and local-space
// spawn origin sampled per Config.Shape.
func (e *Emitter) sampleShape() (dir, origin mathutil.Vec3) {
	switch e.Config.Shape {
	case ShapeSphere:
		dir = e.rng.UnitVec3()
		return dir, mathutil.Zero
	case ShapeCone:
		base := e.Config.Direction
		if base.LengthSq() == 0 {
			base = mathutil.Up
		}
		base = base.Normalize()
		jitter := e.rng.UnitVec3().Scale(e.Config.Spread)
		dir = base.Add(jitter).Normalize()
		return dir, mathutil.Zero
	case ShapeBox:
		ext := e.Config.BoxExtents
		origin = mathutil.Vec3{
			X: (e.rng.Float64()*2 - 1) * ext.X,
			Y: (e.rng.Float64()*2 - 1) * ext.Y,
			Z: (e.rng.Float64()*2 - 1) * ext.Z,
		}
		base := e.Config.Direction
		if base.LengthSq() == 0 {
			base = mathutil.Up
		}
		return base.Normalize(), origin
	default: // ShapePoint
		base := e.Config.Direction
		if base.LengthSq() == 0 {
			base = mathutil.Up
		}
		return base.Normalize(), mathutil.Zero
	}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// Instance is one packed particle ready for the GPU instance buffer.
type Instance struct {
	Position mathutil.Vec3
	Size     float64
	Color    [4]float64
	Frame    int
}

// DrawCall describes one emitter's instance range and render state for
// the renderer.
type DrawCall struct {
	InstanceCount int
	BlendMode     BlendMode
	SpriteFrames  int
}

// PackInstances writes every alive particle into a GPU instance buffer
// and returns the draw-call metadata describing it.
func (e *Emitter) PackInstances(out []Instance) ([]Instance, DrawCall) {
	if cap(out) < e.alive {
		out = make([]Instance, e.alive)
	}
	out = out[:e.alive]
	for i := 0; i < e.alive; i++ {
		p := e.particles[i]
		out[i] = Instance{Position: p.pos, Size: p.size, Color: p.color, Frame: p.frame}
	}
	return out, DrawCall{InstanceCount: e.alive, BlendMode: e.Config.BlendMode, SpriteFrames: e.Config.SpriteFrames}
}
