package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flint/internal/ecs"
	"flint/internal/mathutil"
)

func spawnAt(t *testing.T, w *ecs.World, name string, pos mathutil.Vec3) ecs.EntityID {
	t.Helper()
	id, err := w.Spawn(name)
	require.NoError(t, err)
	require.NoError(t, w.SetComponent(id, "transform", ecs.EncodeTransform(ecs.Transform{Position: pos, Scale: mathutil.One})))
	return id
}

func TestGizmoDragMovesEntityAlongConstrainedAxis(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	id := spawnAt(t, w, "crate", mathutil.Zero)

	g := NewGizmo()
	g.Axis = GizmoAxisX
	g.BeginDrag(w, id)
	g.Drag(w, mathutil.Vec3{X: 2, Y: 5, Z: 5})
	g.EndDrag(w)

	pos := w.LocalTransform(id).Position
	assert.Equal(t, mathutil.Vec3{X: 2, Y: 0, Z: 0}, pos)
}

func TestGizmoUndoRevertsDrag(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	id := spawnAt(t, w, "crate", mathutil.Vec3{X: 1, Y: 0, Z: 0})

	g := NewGizmo()
	g.BeginDrag(w, id)
	g.Drag(w, mathutil.Vec3{X: 4, Y: 0, Z: 0})
	g.EndDrag(w)
	require.Equal(t, 5.0, w.LocalTransform(id).Position.X)

	require.True(t, g.Undo(w))
	assert.Equal(t, 1.0, w.LocalTransform(id).Position.X)
}

func TestGizmoRedoReappliesUndoneDrag(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	id := spawnAt(t, w, "crate", mathutil.Zero)

	g := NewGizmo()
	g.BeginDrag(w, id)
	g.Drag(w, mathutil.Vec3{X: 3, Y: 0, Z: 0})
	g.EndDrag(w)
	g.Undo(w)

	require.True(t, g.Redo(w))
	assert.Equal(t, 3.0, w.LocalTransform(id).Position.X)
}

func TestGizmoUndoWithEmptyStackReturnsFalse(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	g := NewGizmo()
	assert.False(t, g.Undo(w))
}

func TestGizmoNewDragClearsRedoStack(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	id := spawnAt(t, w, "crate", mathutil.Zero)

	g := NewGizmo()
	g.BeginDrag(w, id)
	g.Drag(w, mathutil.Vec3{X: 1, Y: 0, Z: 0})
	g.EndDrag(w)
	g.Undo(w)

	g.BeginDrag(w, id)
	g.Drag(w, mathutil.Vec3{X: 2, Y: 0, Z: 0})
	g.EndDrag(w)

	assert.False(t, g.Redo(w))
}

func TestGizmoDragWithNoActiveDragIsNoop(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	id := spawnAt(t, w, "crate", mathutil.Zero)

	g := NewGizmo()
	g.Drag(w, mathutil.Vec3{X: 5, Y: 0, Z: 0})
	assert.Equal(t, mathutil.Zero, w.LocalTransform(id).Position)
}
