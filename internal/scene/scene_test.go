package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flint/internal/ecs"
	"flint/internal/schema"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func doorRegistry(t *testing.T, dir string) *schema.Registry {
	t.Helper()
	writeFile(t, dir, "door.toml", `
name = "door"
required = ["transform"]

[defaults.transform]
position = [0, 0, 0]

[defaults.door]
open_angle = 90
locked = false
`)
	writeFile(t, dir, "handle.toml", `
name = "handle"

[defaults.transform]
position = [0, 0, 0]
`)
	r := schema.NewRegistry()
	errs := r.LoadDir(dir)
	require.Empty(t, errs)
	return r
}

func TestLoadBasicScene(t *testing.T) {
	dir := t.TempDir()
	registry := doorRegistry(t, dir)

	scenePath := writeFile(t, dir, "scene.toml", `
[scene]
name = "test scene"

[[entity]]
name = "door1"
archetype = "door"

[entity.door]
locked = true

[[entity]]
name = "handle1"
archetype = "handle"
parent = "door1"
`)

	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	report, err := Load(scenePath, w, registry)
	require.NoError(t, err)
	assert.Equal(t, "test scene", report.SceneName)

	doorID, ok := w.GetID("door1")
	require.True(t, ok)
	handleID, ok := w.GetID("handle1")
	require.True(t, ok)

	parent, ok := w.Parent(handleID)
	require.True(t, ok)
	assert.Equal(t, doorID, parent)

	lockedVal, ok := w.GetField(doorID, "door", "locked")
	require.True(t, ok)
	locked, _ := lockedVal.Bool()
	assert.True(t, locked)

	angleVal, ok := w.GetField(doorID, "door", "open_angle")
	require.True(t, ok)
	angle, _ := angleVal.Float()
	assert.Equal(t, 90.0, angle)
}

func TestLoadUnresolvedParentFails(t *testing.T) {
	dir := t.TempDir()
	registry := doorRegistry(t, dir)

	scenePath := writeFile(t, dir, "scene.toml", `
[scene]
name = "s"

[[entity]]
name = "handle1"
archetype = "handle"
parent = "nonexistent"
`)

	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	_, err := Load(scenePath, w, registry)
	require.Error(t, err)
}

func TestLoadUnknownArchetypeFails(t *testing.T) {
	dir := t.TempDir()
	registry := doorRegistry(t, dir)

	scenePath := writeFile(t, dir, "scene.toml", `
[scene]
name = "s"

[[entity]]
name = "x"
archetype = "ghost"
`)

	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	_, err := Load(scenePath, w, registry)
	require.Error(t, err)
	assert.True(t, ecs.IsUnknownArchetype(err))
}

func TestSceneRoundTrip(t *testing.T) {
	dir := t.TempDir()
	registry := doorRegistry(t, dir)

	scenePath := writeFile(t, dir, "scene.toml", `
[scene]
name = "roundtrip"

[[entity]]
name = "door1"
archetype = "door"

[entity.door]
locked = true
`)

	w1 := ecs.NewWorld(ecs.DefaultWorldConfig())
	_, err := Load(scenePath, w1, registry)
	require.NoError(t, err)

	savedPath := filepath.Join(dir, "saved.toml")
	require.NoError(t, Save(savedPath, "roundtrip", w1, registry))

	w2 := ecs.NewWorld(ecs.DefaultWorldConfig())
	_, err = Load(savedPath, w2, registry)
	require.NoError(t, err)

	assert.Equal(t, w1.EntityCount(), w2.EntityCount())

	id1, _ := w1.GetID("door1")
	id2, _ := w2.GetID("door1")

	v1, _ := w1.GetComponent(id1, "door")
	v2, _ := w2.GetComponent(id2, "door")
	assert.True(t, v1.Equal(v2), "component fields should round-trip")
}

func TestLoadSplicesPrefab(t *testing.T) {
	dir := t.TempDir()
	registry := doorRegistry(t, dir)

	writeFile(t, dir, "handle_prefab.toml", `
[[entity]]
name = "grip"
archetype = "handle"
`)

	scenePath := writeFile(t, dir, "scene.toml", `
[scene]
name = "s"

[[entity]]
name = "door1"
archetype = "door"

[[prefab]]
name = "handle_instance"
path = "handle_prefab.toml"
parent = "door1"
`)

	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	_, err := Load(scenePath, w, registry)
	require.NoError(t, err)

	assert.Equal(t, 2, w.EntityCount())
}
