package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flint/internal/ecs"
)

func TestExtractLightsUsesDefaultsWhenNoneAuthored(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	w.Spawn("nothing_relevant")

	set := ExtractLights(w)

	require.Len(t, set.Directional, 2)
	assert.Empty(t, set.Point)
	assert.Empty(t, set.Spot)
}

func TestExtractLightsReadsAuthoredDirectional(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	id, _ := w.Spawn("sun")
	tbl := ecs.NewTable()
	tbl.Set("kind", ecs.String("directional"))
	tbl.Set("direction", ecs.Array(ecs.Float(0), ecs.Float(-1), ecs.Float(0)))
	tbl.Set("color", ecs.Array(ecs.Float(1), ecs.Float(1), ecs.Float(1)))
	tbl.Set("intensity", ecs.Float(2.5))
	require.NoError(t, w.SetComponent(id, "light", ecs.FromTable(tbl)))

	set := ExtractLights(w)

	require.Len(t, set.Directional, 1)
	assert.Equal(t, 2.5, set.Directional[0].Intensity)
}

func TestExtractLightsClampsToCapacity(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	for i := 0; i < MaxPointLights+5; i++ {
		id, _ := w.Spawn(nameFor(i))
		tbl := ecs.NewTable()
		tbl.Set("kind", ecs.String("point"))
		require.NoError(t, w.SetComponent(id, "light", ecs.FromTable(tbl)))
	}

	set := ExtractLights(w)

	assert.Len(t, set.Point, MaxPointLights)
}

func nameFor(i int) string {
	return "light_" + string(rune('a'+i%26)) + string(rune('0'+i/26))
}

func TestExtractLightsReadsPointPositionFromWorldTransform(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	id, _ := w.Spawn("lamp")
	transform := ecs.NewTable()
	transform.Set("position", ecs.Array(ecs.Float(3), ecs.Float(4), ecs.Float(5)))
	require.NoError(t, w.SetComponent(id, "transform", ecs.FromTable(transform)))
	light := ecs.NewTable()
	light.Set("kind", ecs.String("point"))
	require.NoError(t, w.SetComponent(id, "light", ecs.FromTable(light)))

	set := ExtractLights(w)

	require.Len(t, set.Point, 1)
	assert.InDelta(t, 3.0, set.Point[0].Position.X, 1e-9)
	assert.InDelta(t, 4.0, set.Point[0].Position.Y, 1e-9)
	assert.InDelta(t, 5.0, set.Point[0].Position.Z, 1e-9)
}
