// Package render implements Flint's HDR scene renderer:
// light extraction, shadow cascade math, mesh caching, and the bind-
// group-shaped data fed to the per-frame GPU pipeline.
//
// Pass order and bind-group contents follow a conventional deferred/
// forward-plus renderer, expressed over github.com/hajimehoshi/ebiten/v2
// offscreen `*ebiten.Image` render targets and Kage shaders rather than
// a WebGPU bind-group API, since ebiten is the only GPU-facing library
// available here.
package render

import (
	"flint/internal/ecs"
	"flint/internal/mathutil"
)

const (
	MaxDirectionalLights = 4
	MaxPointLights        = 16
	MaxSpotLights         = 8
)

type DirectionalLight struct {
	Direction mathutil.Vec3
	Color     [3]float64
	Intensity float64
}

type PointLight struct {
	Position  mathutil.Vec3
	Color     [3]float64
	Intensity float64
	Range     float64
}

type SpotLight struct {
	Position    mathutil.Vec3
	Direction   mathutil.Vec3
	Color       [3]float64
	Intensity   float64
	Range       float64
	InnerCone   float64 // radians
	OuterCone   float64 // radians
}

// LightSet is the extracted, capacity-clamped light list for one frame.
type LightSet struct {
	Directional []DirectionalLight
	Point       []PointLight
	Spot        []SpotLight
}

var defaultKeyLight = DirectionalLight{
	Direction: mathutil.Vec3{X: -0.4, Y: -0.8, Z: -0.4}.Normalize(),
	Color:     [3]float64{1.0, 0.95, 0.85},
	Intensity: 3.0,
}

var defaultFillLight = DirectionalLight{
	Direction: mathutil.Vec3{X: 0.5, Y: -0.3, Z: 0.6}.Normalize(),
	Color:     [3]float64{0.6, 0.7, 1.0},
	Intensity: 0.8,
}

// ExtractLights scans the world's `light` components, ordering entities
// by EntityID for determinism, and clamps each kind to its pipeline
// capacity. Falls back to a warm key + cool fill directional pair when
// no light entities are authored.
func ExtractLights(w *ecs.World) LightSet {
	var set LightSet

	for _, id := range w.AllEntities() {
		v, ok := w.GetComponent(id, "light")
		if !ok {
			continue
		}
		tbl, ok := v.Table()
		if !ok {
			continue
		}
		kind := stringField(tbl, "kind", "directional")
		color := colorField(tbl, "color", [3]float64{1, 1, 1})
		intensity := floatField(tbl, "intensity", 1.0)

		switch kind {
		case "directional":
			if len(set.Directional) >= MaxDirectionalLights {
				continue
			}
			dir := vec3Field(tbl, "direction", mathutil.Vec3{X: 0, Y: -1, Z: 0}).Normalize()
			set.Directional = append(set.Directional, DirectionalLight{Direction: dir, Color: color, Intensity: intensity})
		case "point":
			if len(set.Point) >= MaxPointLights {
				continue
			}
			pos := worldPosition(w, id)
			rng := floatField(tbl, "range", 10.0)
			set.Point = append(set.Point, PointLight{Position: pos, Color: color, Intensity: intensity, Range: rng})
		case "spot":
			if len(set.Spot) >= MaxSpotLights {
				continue
			}
			pos := worldPosition(w, id)
			dir := vec3Field(tbl, "direction", mathutil.Vec3{X: 0, Y: -1, Z: 0}).Normalize()
			rng := floatField(tbl, "range", 10.0)
			inner := mathutil.DegToRad(floatField(tbl, "inner_cone_degrees", 20.0))
			outer := mathutil.DegToRad(floatField(tbl, "outer_cone_degrees", 30.0))
			set.Spot = append(set.Spot, SpotLight{Position: pos, Direction: dir, Color: color, Intensity: intensity, Range: rng, InnerCone: inner, OuterCone: outer})
		}
	}

	if len(set.Directional) == 0 && len(set.Point) == 0 && len(set.Spot) == 0 {
		set.Directional = []DirectionalLight{defaultKeyLight, defaultFillLight}
	}

	return set
}

func worldPosition(w *ecs.World, id ecs.EntityID) mathutil.Vec3 {
	m, ok := w.WorldMatrix(id)
	if !ok {
		return mathutil.Zero
	}
	return m.Translation()
}

func stringField(tbl *ecs.Table, key, def string) string {
	v, ok := tbl.Get(key)
	if !ok {
		return def
	}
	s, ok := v.String()
	if !ok {
		return def
	}
	return s
}

func floatField(tbl *ecs.Table, key string, def float64) float64 {
	v, ok := tbl.Get(key)
	if !ok {
		return def
	}
	f, ok := v.Float()
	if !ok {
		return def
	}
	return f
}

func vec3Field(tbl *ecs.Table, key string, def mathutil.Vec3) mathutil.Vec3 {
	v, ok := tbl.Get(key)
	if !ok {
		return def
	}
	arr, ok := v.Array()
	if !ok || len(arr) < 3 {
		return def
	}
	x, _ := arr[0].Float()
	y, _ := arr[1].Float()
	z, _ := arr[2].Float()
	return mathutil.Vec3{X: x, Y: y, Z: z}
}

func colorField(tbl *ecs.Table, key string, def [3]float64) [3]float64 {
	v, ok := tbl.Get(key)
	if !ok {
		return def
	}
	arr, ok := v.Array()
	if !ok || len(arr) < 3 {
		return def
	}
	r, _ := arr[0].Float()
	g, _ := arr[1].Float()
	b, _ := arr[2].Float()
	return [3]float64{r, g, b}
}
