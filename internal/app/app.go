// Package app assembles the engine's runtime pieces -- world, schema
// registry, constraint definitions, physics bridge, script host,
// particle manager, renderer, and file watcher -- into a single
// per-frame loop, and drives the editor's inspector-mode tools
// (free-fly camera, picking, transform gizmo).
//
// Follows the usual game-loop orchestration order -- load config,
// build subsystems, run a fixed loop -- generalized from a
// single-purpose game update into the scene/schema/constraint/script/
// physics/particle/render wiring this engine needs.
package app

import (
	"fmt"
	"os"
	"strings"

	"flint/internal/constraint"
	"flint/internal/ecs"
	"flint/internal/gltfimport"
	"flint/internal/mathutil"
	"flint/internal/particle"
	"flint/internal/physics"
	"flint/internal/render"
	"flint/internal/scene"
	"flint/internal/schema"
	"flint/internal/script"
)

// Mode selects which camera (and therefore which input mapping) drives
// the frame loop.
type Mode int

const (
	// ModeInspect is the free-fly debug camera with picking and the
	// transform gizmo.
	ModeInspect Mode = iota
	// ModePlay runs the character controller and first-person camera.
	ModePlay
)

// fixedTimestep is the physics/controller integration step.
const fixedTimestep = 1.0 / 60.0

// maxFrameTime caps the accumulator so a debugger pause or frame hitch
// doesn't spawn a burst of catch-up physics steps.
const maxFrameTime = 0.25

// CameraInput is one frame's combined input for whichever camera/mode is
// active; App.Update reads only the fields that apply to the current
// Mode.
type CameraInput struct {
	Actions                            physics.InputActions
	Fly                                FlyCameraInput
	ActionsPressed, ActionsJustPressed map[string]bool
}

// App owns every long-lived subsystem and the mutable per-frame state
// (current mode, selection, gizmo undo history) layered on top of them.
type App struct {
	ScenePath     string
	SchemaDir     string
	ConstraintDir string

	World       *ecs.World
	Registry    *schema.Registry
	Constraints []*constraint.Definition

	Bridge     *physics.Bridge
	Controller *physics.Controller
	PlayerID   ecs.EntityID
	HasPlayer  bool

	Script    *script.Host
	Particles *particle.Manager
	Renderer  *render.SceneRenderer
	Watcher   *Watcher

	Mode  Mode
	Fly   *FlyCamera
	Gizmo *Gizmo

	Selected    ecs.EntityID
	HasSelected bool

	accumulator float64
	totalTime   float64
}

// New builds every subsystem from the files at scenePath/schemaDir/
// constraintDir and starts the reload watcher.
func New(scenePath, schemaDir, constraintDir string, viewportWidth, viewportHeight int) (*App, error) {
	a := &App{
		ScenePath:     scenePath,
		SchemaDir:     schemaDir,
		ConstraintDir: constraintDir,
		Renderer:      render.NewSceneRenderer(viewportWidth, viewportHeight),
		Particles:     particle.NewManager(1),
		Fly:           NewFlyCamera(mathutil.Vec3{X: 0, Y: 2, Z: 5}),
		Gizmo:         NewGizmo(),
	}

	if err := a.load(); err != nil {
		return nil, err
	}

	watcher, err := NewWatcher([]string{scenePath, schemaDir, constraintDir})
	if err != nil {
		return nil, fmt.Errorf("app: watcher init: %w", err)
	}
	a.Watcher = watcher

	return a, nil
}

// load parses the schema registry, constraint definitions, and scene
// file into a fresh world, then rebuilds every subsystem that derives
// from world contents.
func (a *App) load() error {
	registry := schema.NewRegistry()
	if errs := registry.LoadDir(a.SchemaDir); len(errs) > 0 {
		return fmt.Errorf("app: schema load: %v", errs[0])
	}

	defs, errs := constraint.LoadDir(a.ConstraintDir)
	if len(errs) > 0 {
		return fmt.Errorf("app: constraint load: %v", errs[0])
	}

	world := ecs.NewWorld(ecs.DefaultWorldConfig())
	if _, err := scene.Load(a.ScenePath, world, registry); err != nil {
		return fmt.Errorf("app: scene load: %w", err)
	}

	bridge := physics.NewBridge()
	bridge.SyncToPhysics(world)

	scriptHost := script.NewHost()
	for _, id := range world.AllEntities() {
		v, ok := world.GetComponent(id, "script")
		if !ok {
			continue
		}
		table, ok := v.Table()
		if !ok {
			continue
		}
		pathVal, ok := table.Get("path")
		if !ok {
			continue
		}
		path, ok := pathVal.String()
		if !ok || path == "" {
			continue
		}
		if err := scriptHost.LoadScript(id, path); err != nil {
			return fmt.Errorf("app: script load: %w", err)
		}
	}

	if err := loadMeshAssets(world, a.Renderer.Meshes); err != nil {
		return fmt.Errorf("app: mesh import: %w", err)
	}

	a.World = world
	a.Registry = registry
	a.Constraints = defs
	a.Bridge = bridge
	a.Script = scriptHost
	a.Particles.Sync(world)

	a.PlayerID, a.HasPlayer = findPlayer(world)
	if a.HasPlayer {
		a.Controller = physics.NewController(a.PlayerID)
	} else {
		a.Controller = nil
	}

	a.HasSelected = false
	a.Gizmo = NewGizmo()

	return nil
}

// loadMeshAssets imports every distinct .glb path referenced by a
// "mesh_renderer" component's "mesh" field into the renderer's mesh
// cache, applying each asset's optional YAML sidecar material
// overrides.
func loadMeshAssets(w *ecs.World, cache *render.Cache) error {
	seen := make(map[string]bool)
	for _, id := range w.AllEntities() {
		v, ok := w.GetComponent(id, "mesh_renderer")
		if !ok {
			continue
		}
		table, ok := v.Table()
		if !ok {
			continue
		}
		meshVal, ok := table.Get("mesh")
		if !ok {
			continue
		}
		path, ok := meshVal.String()
		if !ok || path == "" || !strings.HasSuffix(path, ".glb") {
			continue
		}
		if seen[path] || cache.GetPrefixed(path) != nil {
			continue
		}
		seen[path] = true

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("mesh asset %s: %w", path, err)
		}
		doc, err := gltfimport.ReadGLB(f)
		closeErr := f.Close()
		if err != nil {
			return fmt.Errorf("mesh asset %s: %w", path, err)
		}
		if closeErr != nil {
			return closeErr
		}

		nodes, err := gltfimport.Convert(doc)
		if err != nil {
			return fmt.Errorf("mesh asset %s: %w", path, err)
		}

		overrides, err := gltfimport.LoadSidecar(path)
		if err != nil {
			return fmt.Errorf("mesh asset %s: sidecar: %w", path, err)
		}
		gltfimport.ApplyMaterialOverrides(nodes, overrides)

		cache.UploadFlattened(path, nodes)
	}
	return nil
}

func findPlayer(w *ecs.World) (ecs.EntityID, bool) {
	for _, id := range w.AllEntities() {
		if w.HasComponent(id, "character_controller") {
			return id, true
		}
	}
	return ecs.InvalidEntityID, false
}

// Reload re-runs load against the same file paths. Existing entity IDs, the current selection, and the
// gizmo's undo history are invalidated.
func (a *App) Reload() error {
	return a.load()
}

// PollReload checks the watcher's debounced dirty flag and reloads if
// set, returning whether a reload happened.
func (a *App) PollReload() (bool, error) {
	if a.Watcher == nil || !a.Watcher.ConsumeReload() {
		return false, nil
	}
	return true, a.Reload()
}

// Update runs one frame of the engine loop: poll the watcher,
// step physics on a fixed timestep, run scripts, advance whichever
// camera is active, advance particles. Rendering is not part of Update:
// the caller builds render.FrameInputs and calls Renderer.RenderFrame.
func (a *App) Update(dt float64, in CameraInput) error {
	if _, err := a.PollReload(); err != nil {
		return err
	}

	a.totalTime += dt
	a.accumulator += dt
	if a.accumulator > maxFrameTime {
		a.accumulator = maxFrameTime
	}
	for a.accumulator >= fixedTimestep {
		a.stepPhysics(fixedTimestep, in.Actions)
		a.accumulator -= fixedTimestep
	}

	frameIn := script.FrameInput{
		DeltaTime:          dt,
		TotalTime:          a.totalTime,
		MouseDeltaX:        in.Actions.MouseDeltaX,
		MouseDeltaY:        in.Actions.MouseDeltaY,
		ActionsPressed:     in.ActionsPressed,
		ActionsJustPressed: in.ActionsJustPressed,
	}
	a.Script.RunUpdate(a.World, frameIn)

	switch a.Mode {
	case ModePlay:
		// camera already follows the controller's eye/target each frame
		// via App.CameraView; nothing further to integrate here.
	case ModeInspect:
		a.Fly.Update(in.Fly, dt)
	}

	a.Particles.Update(a.World, dt)
	return nil
}

// stepPhysics advances the controller (if any) and every other dynamic/
// kinematic body by one fixed step, then writes results back to the ECS
// world.
func (a *App) stepPhysics(dt float64, actions physics.InputActions) {
	if a.Controller != nil {
		if body, ok := a.Bridge.Body(a.PlayerID); ok {
			groundHeight := 0.0
			a.Controller.Update(body, actions, groundHeight, dt)
		}
	}

	a.Bridge.UpdateKinematicBodies(a.World)
	a.Bridge.Step(a.World, dt)
	a.Bridge.SyncFromPhysics(a.World)
}

// CameraView returns the active camera's view matrix: the character
// controller's eye/target look-at in play mode, the free-fly camera's
// look-at in inspect mode.
func (a *App) CameraView(eyeHeight float64) mathutil.Mat4 {
	if a.Mode == ModePlay && a.Controller != nil {
		if body, ok := a.Bridge.Body(a.PlayerID); ok {
			eye, target := a.Controller.EyeTarget(body, eyeHeight)
			return mathutil.LookAt(eye, target, mathutil.Vec3{X: 0, Y: 1, Z: 0})
		}
	}
	return a.Fly.ViewMatrix()
}

// CameraPosition returns the active camera's world position.
func (a *App) CameraPosition(eyeHeight float64) mathutil.Vec3 {
	if a.Mode == ModePlay && a.Controller != nil {
		if body, ok := a.Bridge.Body(a.PlayerID); ok {
			eye, _ := a.Controller.EyeTarget(body, eyeHeight)
			return eye
		}
	}
	return a.Fly.Position
}

// Validate runs every constraint against the current world, for the editor's problems panel.
func (a *App) Validate() constraint.Report {
	return constraint.Validate(a.World, a.Registry, a.Constraints)
}

// Fix runs the auto-fix loop in place.
func (a *App) Fix() constraint.FixReport {
	return constraint.Fix(a.World, a.Registry, a.Constraints)
}

// ToggleMode flips between inspect and play mode, ending any in-progress
// gizmo drag first since play mode has no gizmo.
func (a *App) ToggleMode() {
	if a.Gizmo.Dragging() {
		a.Gizmo.EndDrag(a.World)
	}
	if a.Mode == ModeInspect {
		a.Mode = ModePlay
	} else {
		a.Mode = ModeInspect
	}
}

// PickAt casts a ray from the inspector camera through the given NDC
// coordinates and updates the current selection.
func (a *App) PickAt(ndcX, ndcY float64, proj mathutil.Mat4) (ecs.EntityID, bool) {
	view := a.CameraView(1.6)
	viewProj := proj.Mul(view)
	ray := PickRay(ndcX, ndcY, viewProj, a.Fly.Position)

	result, ok := Pick(a.World, a.Bridge, ray)
	if !ok {
		a.HasSelected = false
		return ecs.InvalidEntityID, false
	}
	a.Selected = result.Entity
	a.HasSelected = true
	a.Renderer.SelectedEntity = result.Entity
	a.Renderer.HasSelection = true
	return result.Entity, true
}

// ClearSelection drops the current picking/gizmo selection.
func (a *App) ClearSelection() {
	a.HasSelected = false
	a.Renderer.HasSelection = false
}

// BuildDrawCalls walks every entity carrying a "mesh_renderer" component
// and resolves it into a render.DrawCall against the renderer's mesh
// cache, by world transform.
func (a *App) BuildDrawCalls() []render.DrawCall {
	var calls []render.DrawCall
	for _, id := range a.World.AllEntities() {
		v, ok := a.World.GetComponent(id, "mesh_renderer")
		if !ok {
			continue
		}
		table, ok := v.Table()
		if !ok {
			continue
		}
		meshNameVal, ok := table.Get("mesh")
		if !ok {
			continue
		}
		meshName, ok := meshNameVal.String()
		if !ok {
			continue
		}
		meshes := a.Renderer.Meshes.GetPrefixed(meshName)
		if meshes == nil {
			continue
		}
		model, ok := a.World.WorldMatrix(id)
		if !ok {
			continue
		}
		wireframe := a.Renderer.DebugMode == render.DebugWireframeOnly
		for _, mesh := range meshes {
			calls = append(calls, render.DrawCall{
				EntityID:  id,
				Mesh:      mesh,
				Model:     model,
				Selected:  a.HasSelected && id == a.Selected,
				Wireframe: wireframe,
			})
		}
	}
	return calls
}

// Close unloads every loaded script VM and closes the file watcher,
// stopping its goroutine. Renderer resources are not released here.
func (a *App) Close() error {
	for _, id := range a.World.AllEntities() {
		a.Script.Unload(id)
	}
	if a.Watcher != nil {
		return a.Watcher.Close()
	}
	return nil
}
