package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flint/internal/ecs"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunInitOnlyFiresOnce(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "a.lua", `
init_count = 0
function on_init()
  init_count = init_count + 1
end
`)

	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	id, _ := w.Spawn("a")

	h := NewHost()
	require.NoError(t, h.LoadScript(id, path))

	h.RunInit(w, id)
	h.RunInit(w, id)
	h.RunInit(w, id)

	inst := h.scripts[id]
	v := inst.vm.GetGlobal("init_count")
	assert.Equal(t, "1", v.String())
}

func TestHotReloadPreservesVariableScope(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "a.lua", `
counter = 5
function on_update(dt)
end
`)

	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	id, _ := w.Spawn("a")

	h := NewHost()
	require.NoError(t, h.LoadScript(id, path))

	// Rewrite the script to a new version that reads the existing global
	// instead of reinitializing it.
	require.NoError(t, os.WriteFile(path, []byte(`
function on_update(dt)
  counter = counter + 1
end
function get_counter()
  return counter
end
`), 0o644))

	require.NoError(t, h.Reload(id))

	inst := h.scripts[id]
	fn := inst.vm.GetGlobal("get_counter")
	require.NotNil(t, fn)

	h.RunUpdate(w, FrameInput{DeltaTime: 0.1})

	result := inst.vm.GetGlobal("counter")
	assert.Equal(t, "6", result.String())
}

func TestCollisionFiresOnBothEndpoints(t *testing.T) {
	dir := t.TempDir()
	pathA := writeScript(t, dir, "a.lua", `
hit = false
function on_collision(other)
  hit = true
  other_name = other
end
`)
	pathB := writeScript(t, dir, "b.lua", `
hit = false
function on_collision(other)
  hit = true
end
`)

	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	a, _ := w.Spawn("a")
	b, _ := w.Spawn("b")

	h := NewHost()
	require.NoError(t, h.LoadScript(a, pathA))
	require.NoError(t, h.LoadScript(b, pathB))

	h.RunCollision(w, a, b, FrameInput{})

	assert.Equal(t, "true", h.scripts[a].vm.GetGlobal("hit").String())
	assert.Equal(t, "true", h.scripts[b].vm.GetGlobal("hit").String())
	assert.Equal(t, "b", h.scripts[a].vm.GetGlobal("other_name").String())
}

func TestOnInteractOnlyFiresWithinRange(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "door.lua", `
interacted = false
function on_interact()
  interacted = true
end
`)

	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	player, _ := w.Spawn("player")
	require.NoError(t, w.SetComponent(player, "character_controller", ecs.FromTable(ecs.NewTable())))

	door, _ := w.Spawn("door1")
	interactable := ecs.NewTable()
	interactable.Set("enabled", ecs.Bool(true))
	interactable.Set("range", ecs.Float(2.0))
	require.NoError(t, w.SetComponent(door, "interactable", ecs.FromTable(interactable)))

	doorTransform := ecs.NewTable()
	doorTransform.Set("position", ecs.Array(ecs.Float(10), ecs.Float(0), ecs.Float(0)))
	require.NoError(t, w.SetComponent(door, "transform", ecs.FromTable(doorTransform)))

	h := NewHost()
	require.NoError(t, h.LoadScript(door, path))

	h.RunAction(w, "interact", player, FrameInput{})
	assert.Equal(t, "false", h.scripts[door].vm.GetGlobal("interacted").String(), "door is far from player, should not fire")

	require.NoError(t, w.SetField(door, "transform", "position", ecs.Array(ecs.Float(0), ecs.Float(0), ecs.Float(0))))
	h.RunAction(w, "interact", player, FrameInput{})
	assert.Equal(t, "true", h.scripts[door].vm.GetGlobal("interacted").String(), "door is now in range, should fire")
}

func TestScriptErrorLogsAndContinues(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "broken.lua", `
function on_update(dt)
  error("boom")
end
`)

	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	id, _ := w.Spawn("a")

	h := NewHost()
	require.NoError(t, h.LoadScript(id, path))

	h.RunUpdate(w, FrameInput{DeltaTime: 0.1})
	h.RunUpdate(w, FrameInput{DeltaTime: 0.1}) // must not panic or disable the callback

	logs := h.DrainLog()
	assert.NotEmpty(t, logs)
}

func TestEntityAPISetGetField(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "a.lua", `
function on_update(dt)
  entity.set_field("", "stats", "hp", 42)
end
`)

	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	id, _ := w.Spawn("a")

	h := NewHost()
	require.NoError(t, h.LoadScript(id, path))
	h.RunUpdate(w, FrameInput{DeltaTime: 0.1})

	v, ok := w.GetField(id, "stats", "hp")
	require.True(t, ok)
	f, _ := v.Float()
	assert.Equal(t, 42.0, f)
}
