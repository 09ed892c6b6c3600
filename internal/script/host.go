// Package script embeds a sandboxed Lua interpreter as Flint's scripting
// host: per-entity compiled scripts, a fixed callback set,
// a command queue for ordered side effects, and hot reload that
// preserves persistent variable scope.
//
// VM lifecycle (lua.NewState/Close), sandbox application (disabling
// io/os/debug/package/require), and the Go<->Lua value conversion shape
// follow the usual gopher-lua embedding idiom, expanded into the full
// entity/input/time/audio/animation/events/log API surface this engine
// exposes to scripts.
package script

import (
	"os"

	lua "github.com/yuin/gopher-lua"

	"flint/internal/ecs"
)

var callbackNames = []string{
	"on_init", "on_update", "on_collision",
	"on_trigger_enter", "on_trigger_exit", "on_action", "on_interact",
}

type scriptInstance struct {
	entity      ecs.EntityID
	path        string
	vm          *lua.LState
	callbacks   map[string]bool
	initialized bool
}

// Host owns every entity's script VM and the per-frame command queue.
type Host struct {
	scripts map[ecs.EntityID]*scriptInstance
	queue   *CommandQueue
	log     []LogEntry
}

type LogEntry struct {
	Level   string
	Message string
}

func NewHost() *Host {
	return &Host{
		scripts: make(map[ecs.EntityID]*scriptInstance),
		queue:   NewCommandQueue(),
	}
}

// Queue exposes the host's command queue.
func (h *Host) Queue() *CommandQueue { return h.queue }

// DrainLog returns and clears accumulated log entries.
func (h *Host) DrainLog() []LogEntry {
	out := h.log
	h.log = nil
	return out
}

// LoadScript compiles path's source into a new VM for entity id,
// scanning which callbacks it defines.
func (h *Host) LoadScript(id ecs.EntityID, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return ecs.NewEntityError(ecs.ErrIoError, "script read error: "+err.Error(), id)
	}

	vm := lua.NewState()
	applySandbox(vm)
	registerAPI(vm)

	if err := vm.DoString(string(src)); err != nil {
		vm.Close()
		return ecs.NewEntityError(ecs.ErrScriptError, "script compile error: "+err.Error(), id)
	}

	inst := &scriptInstance{entity: id, path: path, vm: vm, callbacks: make(map[string]bool)}
	detectCallbacks(inst)
	h.scripts[id] = inst
	return nil
}

// Reload recompiles the source file on the entity's existing VM, which
// preserves global variables the script already set. Callback
// presence is recomputed against the new chunk.
func (h *Host) Reload(id ecs.EntityID) error {
	inst, ok := h.scripts[id]
	if !ok {
		return ecs.NewEntityError(ecs.ErrNotFound, "no script loaded for entity", id)
	}

	src, err := os.ReadFile(inst.path)
	if err != nil {
		return ecs.NewEntityError(ecs.ErrIoError, "script read error: "+err.Error(), id)
	}

	if err := inst.vm.DoString(string(src)); err != nil {
		return ecs.NewEntityError(ecs.ErrScriptError, "script reload error: "+err.Error(), id)
	}

	inst.callbacks = make(map[string]bool)
	detectCallbacks(inst)
	return nil
}

func detectCallbacks(inst *scriptInstance) {
	for _, name := range callbackNames {
		v := inst.vm.GetGlobal(name)
		if v.Type() == lua.LTFunction {
			inst.callbacks[name] = true
		}
	}
}

// Unload closes id's VM and forgets it.
func (h *Host) Unload(id ecs.EntityID) {
	if inst, ok := h.scripts[id]; ok {
		inst.vm.Close()
		delete(h.scripts, id)
	}
}

func (h *Host) call(world *ecs.World, inst *scriptInstance, input FrameInput, name string, args ...lua.LValue) {
	if !inst.callbacks[name] {
		return
	}
	withContext(world, h, inst.entity, input, func() {
		fn := inst.vm.GetGlobal(name)
		if fn.Type() != lua.LTFunction {
			return
		}
		// Script errors are logged and iteration continues.
		if err := inst.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
			h.log = append(h.log, LogEntry{Level: "error", Message: err.Error()})
		}
	})
}

// RunInit calls on_init once, the first frame after an entity's script
// loads, if defined.
func (h *Host) RunInit(world *ecs.World, id ecs.EntityID) {
	inst, ok := h.scripts[id]
	if !ok || inst.initialized {
		return
	}
	inst.initialized = true
	h.call(world, inst, FrameInput{}, "on_init")
}

// RunUpdate calls on_update(dt) for every loaded script, single-threaded
// and to completion.
func (h *Host) RunUpdate(world *ecs.World, input FrameInput) {
	for _, id := range world.AllEntities() {
		inst, ok := h.scripts[id]
		if !ok {
			continue
		}
		h.RunInit(world, id)
		h.call(world, inst, input, "on_update", lua.LNumber(input.DeltaTime))
	}
}

// RunCollision fires on_collision(other) on both endpoints.
func (h *Host) RunCollision(world *ecs.World, a, b ecs.EntityID, input FrameInput) {
	if inst, ok := h.scripts[a]; ok {
		h.call(world, inst, input, "on_collision", entityRef(world, b))
	}
	if inst, ok := h.scripts[b]; ok {
		h.call(world, inst, input, "on_collision", entityRef(world, a))
	}
}

// RunTriggerEnter/RunTriggerExit fire on the trigger entity only.
func (h *Host) RunTriggerEnter(world *ecs.World, trigger, other ecs.EntityID, input FrameInput) {
	if inst, ok := h.scripts[trigger]; ok {
		h.call(world, inst, input, "on_trigger_enter", entityRef(world, other))
	}
}

func (h *Host) RunTriggerExit(world *ecs.World, trigger, other ecs.EntityID, input FrameInput) {
	if inst, ok := h.scripts[trigger]; ok {
		h.call(world, inst, input, "on_trigger_exit", entityRef(world, other))
	}
}

// RunAction broadcasts to every script with on_action. For the
// "interact" action it then fires on_interact on the single nearest
// interactable within its authored range of the player (see
// NearestInteractable); other in-range interactables do not receive it.
func (h *Host) RunAction(world *ecs.World, name string, playerID ecs.EntityID, input FrameInput) {
	for id, inst := range h.scripts {
		h.call(world, inst, input, "on_action", lua.LString(name))
		_ = id
	}

	if name != "interact" {
		return
	}
	nearest, ok := h.NearestInteractable(world, playerID)
	if !ok {
		return
	}
	if inst, ok := h.scripts[nearest]; ok {
		h.call(world, inst, input, "on_interact")
	}
}

func entityRef(world *ecs.World, id ecs.EntityID) lua.LValue {
	name, _ := world.GetName(id)
	return lua.LString(name)
}

// NearestInteractable returns the entity carrying an enabled
// interactable component nearest to the player entity, within its
// authored range.
func (h *Host) NearestInteractable(world *ecs.World, playerID ecs.EntityID) (ecs.EntityID, bool) {
	playerMatrix, ok := world.WorldMatrix(playerID)
	if !ok {
		return ecs.InvalidEntityID, false
	}
	playerPos := playerMatrix.Translation()

	best := ecs.InvalidEntityID
	bestDist := 0.0
	found := false

	for _, id := range world.AllEntities() {
		v, ok := world.GetComponent(id, "interactable")
		if !ok {
			continue
		}
		table, isTable := v.Table()
		if !isTable {
			continue
		}
		enabled, _ := table.Get("enabled")
		if e, ok := enabled.Bool(); !ok || !e {
			continue
		}
		rangeVal, ok := table.Get("range")
		if !ok {
			continue
		}
		r, ok := rangeVal.AsFloat()
		if !ok {
			continue
		}

		m, ok := world.WorldMatrix(id)
		if !ok {
			continue
		}
		dist := m.Translation().Distance(playerPos)
		if dist > r {
			continue
		}
		if !found || dist < bestDist {
			best = id
			bestDist = dist
			found = true
		}
	}

	return best, found
}

func applySandbox(state *lua.LState) {
	state.SetGlobal("io", lua.LNil)
	state.SetGlobal("dofile", lua.LNil)
	state.SetGlobal("loadfile", lua.LNil)
	state.SetGlobal("os", lua.LNil)
	state.SetGlobal("debug", lua.LNil)
	state.SetGlobal("package", lua.LNil)
	state.SetGlobal("require", lua.LNil)
}
