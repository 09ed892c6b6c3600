package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"flint/internal/physics"
)

// writeFixtures lays out a minimal schema dir, constraint dir, and scene
// file under t.TempDir() and returns their paths.
func writeFixtures(t *testing.T) (scenePath, schemaDir, constraintDir string) {
	t.Helper()
	root := t.TempDir()

	schemaDir = filepath.Join(root, "schemas")
	require.NoError(t, os.MkdirAll(schemaDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(schemaDir, "prop.toml"), []byte(`
name = "prop"
required = ["transform"]

[defaults.transform]
position = [0.0, 0.0, 0.0]
`), 0o644))

	constraintDir = filepath.Join(root, "constraints")
	require.NoError(t, os.MkdirAll(constraintDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(constraintDir, "has_transform.toml"), []byte(`
name = "has_transform"
query = "entities"
kind = "required-component"
severity = "error"
message = "{name} is missing its transform"
archetype = "prop"
component = "transform"
`), 0o644))

	scenePath = filepath.Join(root, "scene.toml")
	require.NoError(t, os.WriteFile(scenePath, []byte(`
[scene]
name = "test scene"

[[entity]]
name = "crate"
archetype = "prop"

[[entity]]
name = "hero"

[entity.character_controller]
height = 1.8

[entity.transform]
position = [0.0, 0.0, 0.0]
`), 0o644))

	return scenePath, schemaDir, constraintDir
}

func TestNewLoadsWorldAndFindsPlayer(t *testing.T) {
	scenePath, schemaDir, constraintDir := writeFixtures(t)

	a, err := New(scenePath, schemaDir, constraintDir, 64, 64)
	require.NoError(t, err)
	defer a.Close()

	require.True(t, a.HasPlayer)
	name, ok := a.World.GetName(a.PlayerID)
	require.True(t, ok)
	require.Equal(t, "hero", name)

	_, ok = a.World.GetID("crate")
	require.True(t, ok)
}

func TestValidatePassesOnWellFormedScene(t *testing.T) {
	scenePath, schemaDir, constraintDir := writeFixtures(t)

	a, err := New(scenePath, schemaDir, constraintDir, 64, 64)
	require.NoError(t, err)
	defer a.Close()

	report := a.Validate()
	require.Empty(t, report.Violations)
}

func TestUpdateAdvancesPhysicsAccumulator(t *testing.T) {
	scenePath, schemaDir, constraintDir := writeFixtures(t)

	a, err := New(scenePath, schemaDir, constraintDir, 64, 64)
	require.NoError(t, err)
	defer a.Close()

	a.Mode = ModePlay
	err = a.Update(1.0/30.0, CameraInput{Actions: physics.InputActions{Forward: true}})
	require.NoError(t, err)
}

func TestReloadRebuildsWorldFromDisk(t *testing.T) {
	scenePath, schemaDir, constraintDir := writeFixtures(t)

	a, err := New(scenePath, schemaDir, constraintDir, 64, 64)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, os.WriteFile(scenePath, []byte(`
[scene]
name = "test scene"

[[entity]]
name = "hero"

[entity.character_controller]
height = 1.8
`), 0o644))

	require.NoError(t, a.Reload())
	_, ok := a.World.GetID("crate")
	require.False(t, ok)
	_, ok = a.World.GetID("hero")
	require.True(t, ok)
}

func TestToggleModeEndsActiveDrag(t *testing.T) {
	scenePath, schemaDir, constraintDir := writeFixtures(t)

	a, err := New(scenePath, schemaDir, constraintDir, 64, 64)
	require.NoError(t, err)
	defer a.Close()

	id, ok := a.World.GetID("crate")
	require.True(t, ok)

	a.Gizmo.BeginDrag(a.World, id)
	require.True(t, a.Gizmo.Dragging())

	a.ToggleMode()
	require.False(t, a.Gizmo.Dragging())
	require.Equal(t, ModePlay, a.Mode)
}

func TestBuildDrawCallsSkipsEntitiesWithoutKnownMesh(t *testing.T) {
	scenePath, schemaDir, constraintDir := writeFixtures(t)

	a, err := New(scenePath, schemaDir, constraintDir, 64, 64)
	require.NoError(t, err)
	defer a.Close()

	calls := a.BuildDrawCalls()
	require.Empty(t, calls)
}
