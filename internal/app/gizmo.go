package app

import (
	"flint/internal/ecs"
	"flint/internal/mathutil"
)

// GizmoAxis constrains a drag to one world axis or one world plane;
// GizmoFree applies the drag delta unconstrained.
type GizmoAxis int

const (
	GizmoFree GizmoAxis = iota
	GizmoAxisX
	GizmoAxisY
	GizmoAxisZ
	GizmoPlaneXZ
)

// mask projects a movement delta onto the constraint this axis
// represents.
func (a GizmoAxis) mask(delta mathutil.Vec3) mathutil.Vec3 {
	switch a {
	case GizmoAxisX:
		return mathutil.Vec3{X: delta.X}
	case GizmoAxisY:
		return mathutil.Vec3{Y: delta.Y}
	case GizmoAxisZ:
		return mathutil.Vec3{Z: delta.Z}
	case GizmoPlaneXZ:
		return mathutil.Vec3{X: delta.X, Z: delta.Z}
	default:
		return delta
	}
}

// moveCommand is one undoable gizmo drag: an entity's transform.position
// before and after the drag.
type moveCommand struct {
	entity ecs.EntityID
	before mathutil.Vec3
	after  mathutil.Vec3
}

// Gizmo drives drag-to-translate on a selected entity and keeps an
// undo/redo stack of completed drags.
type Gizmo struct {
	Axis GizmoAxis

	dragging   bool
	dragStart  mathutil.Vec3
	dragEntity ecs.EntityID

	undoStack []moveCommand
	redoStack []moveCommand
}

func NewGizmo() *Gizmo {
	return &Gizmo{}
}

// BeginDrag starts a translate drag on entity, recording its current
// position as both the undo baseline and the drag origin.
func (g *Gizmo) BeginDrag(w *ecs.World, entity ecs.EntityID) {
	t := w.LocalTransform(entity)
	g.dragging = true
	g.dragEntity = entity
	g.dragStart = t.Position
}

// Drag applies a world-space delta (masked by the active axis
// constraint) to the dragged entity's transform.position.
func (g *Gizmo) Drag(w *ecs.World, delta mathutil.Vec3) {
	if !g.dragging {
		return
	}
	t := w.LocalTransform(g.dragEntity)
	t.Position = t.Position.Add(g.Axis.mask(delta))
	w.SetComponent(g.dragEntity, "transform", ecs.EncodeTransform(t))
}

// EndDrag finishes the drag and, if the entity actually moved, pushes
// an undo entry and clears the redo stack (a fresh action invalidates
// any pending redo).
func (g *Gizmo) EndDrag(w *ecs.World) {
	if !g.dragging {
		return
	}
	g.dragging = false

	t := w.LocalTransform(g.dragEntity)
	if t.Position.Aeq(g.dragStart, 1e-9) {
		return
	}
	g.undoStack = append(g.undoStack, moveCommand{entity: g.dragEntity, before: g.dragStart, after: t.Position})
	g.redoStack = nil
}

// Undo reverts the most recent completed drag, if any.
func (g *Gizmo) Undo(w *ecs.World) bool {
	if len(g.undoStack) == 0 {
		return false
	}
	cmd := g.undoStack[len(g.undoStack)-1]
	g.undoStack = g.undoStack[:len(g.undoStack)-1]
	g.redoStack = append(g.redoStack, cmd)

	t := w.LocalTransform(cmd.entity)
	t.Position = cmd.before
	w.SetComponent(cmd.entity, "transform", ecs.EncodeTransform(t))
	return true
}

// Redo reapplies the most recently undone drag, if any.
func (g *Gizmo) Redo(w *ecs.World) bool {
	if len(g.redoStack) == 0 {
		return false
	}
	cmd := g.redoStack[len(g.redoStack)-1]
	g.redoStack = g.redoStack[:len(g.redoStack)-1]
	g.undoStack = append(g.undoStack, cmd)

	t := w.LocalTransform(cmd.entity)
	t.Position = cmd.after
	w.SetComponent(cmd.entity, "transform", ecs.EncodeTransform(t))
	return true
}

func (g *Gizmo) Dragging() bool { return g.dragging }
