package particle

import (
	"flint/internal/ecs"
	"flint/internal/mathutil"
)

// Manager holds one Emitter per entity carrying an "emitter" component,
// spawning/despawning emitters as entities come and go and keeping
// world-space emitters' origin in sync with the entity's transform.
// Follows the usual pool-of-emitters pattern, generalized from a single
// global emitter list to one emitter per authoring entity.
type Manager struct {
	emitters map[ecs.EntityID]*Emitter
	seed     uint64
}

func NewManager(seed uint64) *Manager {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	return &Manager{emitters: make(map[ecs.EntityID]*Emitter), seed: seed}
}

// Sync creates an Emitter for every entity with a new "emitter"
// component and removes emitters whose entity no longer carries one
// (e.g. after a scene reload).
func (m *Manager) Sync(w *ecs.World) {
	seen := make(map[ecs.EntityID]bool, len(m.emitters))
	for _, id := range w.AllEntities() {
		v, ok := w.GetComponent(id, "emitter")
		if !ok {
			continue
		}
		seen[id] = true
		if _, exists := m.emitters[id]; !exists {
			cfg := decodeConfig(v)
			e := NewEmitter(cfg, m.seed+uint64(id))
			if cfg.Looping || cfg.Duration == 0 {
				e.Start()
			}
			m.emitters[id] = e
		}
	}
	for id := range m.emitters {
		if !seen[id] {
			delete(m.emitters, id)
		}
	}
}

// Update advances every live emitter by dt, repositioning world-space
// emitters from their entity's current world transform first.
func (m *Manager) Update(w *ecs.World, dt float64) {
	for id, e := range m.emitters {
		if e.Config.WorldSpace {
			if world, ok := w.WorldMatrix(id); ok {
				e.SetWorldOrigin(world.Translation())
			}
		}
		e.Update(dt)
	}
}

// Emitter returns the emitter tracked for id, if any.
func (m *Manager) Emitter(id ecs.EntityID) (*Emitter, bool) {
	e, ok := m.emitters[id]
	return e, ok
}

// Emitters returns every tracked (entity, emitter) pair in no
// particular order, for the renderer to pack into draw calls.
func (m *Manager) Emitters() map[ecs.EntityID]*Emitter {
	return m.emitters
}

func decodeConfig(v ecs.Value) Config {
	cfg := Config{
		MaxParticles: 100,
		EmitRate:     10,
		Shape:        ShapePoint,
		Direction:    mathutil.Vec3{X: 0, Y: 1, Z: 0},
		Speed:        Range{Min: 1, Max: 1},
		Lifetime:     Range{Min: 1, Max: 1},
		Size:         Range{Min: 1, Max: 1},
		EndSize:      Range{Min: 1, Max: 1},
		Color:        [4]float64{1, 1, 1, 1},
		EndColor:     [4]float64{1, 1, 1, 1},
		BlendMode:    BlendAlpha,
		WorldSpace:   true,
		Looping:      true,
	}

	tbl, ok := v.Table()
	if !ok {
		return cfg
	}

	if n, ok := intField(tbl, "max_particles"); ok {
		cfg.MaxParticles = n
	}
	if f, ok := floatField(tbl, "emit_rate"); ok {
		cfg.EmitRate = f
	}
	if s, ok := stringField(tbl, "shape"); ok {
		cfg.Shape = Shape(s)
	}
	if vec, ok := vec3Field(tbl, "direction"); ok {
		cfg.Direction = vec
	}
	if f, ok := floatField(tbl, "spread"); ok {
		cfg.Spread = f
	}
	if vec, ok := vec3Field(tbl, "box_extents"); ok {
		cfg.BoxExtents = vec
	}
	if r, ok := rangeField(tbl, "speed"); ok {
		cfg.Speed = r
	}
	if r, ok := rangeField(tbl, "lifetime"); ok {
		cfg.Lifetime = r
	}
	if r, ok := rangeField(tbl, "size"); ok {
		cfg.Size = r
	}
	if r, ok := rangeField(tbl, "end_size"); ok {
		cfg.EndSize = r
	}
	if c, ok := colorField(tbl, "color"); ok {
		cfg.Color = c
	}
	if c, ok := colorField(tbl, "end_color"); ok {
		cfg.EndColor = c
	}
	if vec, ok := vec3Field(tbl, "gravity"); ok {
		cfg.Gravity = vec
	}
	if f, ok := floatField(tbl, "damping"); ok {
		cfg.Damping = f
	}
	if n, ok := intField(tbl, "sprite_frames"); ok {
		cfg.SpriteFrames = n
	}
	if s, ok := stringField(tbl, "blend_mode"); ok {
		cfg.BlendMode = BlendMode(s)
	}
	if b, ok := boolField(tbl, "world_space"); ok {
		cfg.WorldSpace = b
	}
	if b, ok := boolField(tbl, "looping"); ok {
		cfg.Looping = b
	}
	if f, ok := floatField(tbl, "duration"); ok {
		cfg.Duration = f
	}

	return cfg
}

func floatField(t *ecs.Table, key string) (float64, bool) {
	v, ok := t.Get(key)
	if !ok {
		return 0, false
	}
	return v.Float()
}

func intField(t *ecs.Table, key string) (int, bool) {
	f, ok := floatField(t, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func boolField(t *ecs.Table, key string) (bool, bool) {
	v, ok := t.Get(key)
	if !ok {
		return false, false
	}
	return v.Bool()
}

func stringField(t *ecs.Table, key string) (string, bool) {
	v, ok := t.Get(key)
	if !ok {
		return "", false
	}
	return v.String()
}

func vec3Field(t *ecs.Table, key string) (mathutil.Vec3, bool) {
	v, ok := t.Get(key)
	if !ok {
		return mathutil.Zero, false
	}
	arr, ok := v.Array()
	if !ok || len(arr) != 3 {
		return mathutil.Zero, false
	}
	x, _ := arr[0].Float()
	y, _ := arr[1].Float()
	z, _ := arr[2].Float()
	return mathutil.Vec3{X: x, Y: y, Z: z}, true
}

func colorField(t *ecs.Table, key string) ([4]float64, bool) {
	v, ok := t.Get(key)
	if !ok {
		return [4]float64{}, false
	}
	arr, ok := v.Array()
	if !ok || len(arr) != 4 {
		return [4]float64{}, false
	}
	var c [4]float64
	for i := range c {
		c[i], _ = arr[i].Float()
	}
	return c, true
}

func rangeField(t *ecs.Table, key string) (Range, bool) {
	v, ok := t.Get(key)
	if !ok {
		return Range{}, false
	}
	arr, ok := v.Array()
	if !ok || len(arr) != 2 {
		return Range{}, false
	}
	min, _ := arr[0].Float()
	max, _ := arr[1].Float()
	return Range{Min: min, Max: max}, true
}
