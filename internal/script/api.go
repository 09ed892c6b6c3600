package script

import (
	lua "github.com/yuin/gopher-lua"

	"flint/internal/ecs"
)

// registerAPI installs every scripting API function as a global Lua
// function, grouped into table/function pairs (entity.*, input.*,
// time.*, audio.*, anim.*, events.*, log.*). Every function reads flint
// through the single shared call-context and returns a no-op/null
// result when it is nil, so Lua code invoked outside a callback window
// never dereferences a stale world.
func registerAPI(L *lua.LState) {
	entity := L.NewTable()
	L.SetField(entity, "self_entity", L.NewFunction(apiSelfEntity))
	L.SetField(entity, "get_entity", L.NewFunction(apiGetEntity))
	L.SetField(entity, "entity_exists", L.NewFunction(apiEntityExists))
	L.SetField(entity, "entity_name", L.NewFunction(apiEntityName))
	L.SetField(entity, "has_component", L.NewFunction(apiHasComponent))
	L.SetField(entity, "get_field", L.NewFunction(apiGetField))
	L.SetField(entity, "set_field", L.NewFunction(apiSetField))
	L.SetField(entity, "get_position", L.NewFunction(apiGetPosition))
	L.SetField(entity, "set_position", L.NewFunction(apiSetPosition))
	L.SetField(entity, "get_rotation", L.NewFunction(apiGetRotation))
	L.SetField(entity, "set_rotation", L.NewFunction(apiSetRotation))
	L.SetField(entity, "distance", L.NewFunction(apiDistance))
	L.SetField(entity, "spawn_entity", L.NewFunction(apiSpawnEntity))
	L.SetField(entity, "despawn_entity", L.NewFunction(apiDespawnEntity))
	L.SetGlobal("entity", entity)

	input := L.NewTable()
	L.SetField(input, "is_action_pressed", L.NewFunction(apiIsActionPressed))
	L.SetField(input, "is_action_just_pressed", L.NewFunction(apiIsActionJustPressed))
	L.SetField(input, "mouse_delta_x", L.NewFunction(apiMouseDeltaX))
	L.SetField(input, "mouse_delta_y", L.NewFunction(apiMouseDeltaY))
	L.SetGlobal("input", input)

	timeTbl := L.NewTable()
	L.SetField(timeTbl, "delta_time", L.NewFunction(apiDeltaTime))
	L.SetField(timeTbl, "total_time", L.NewFunction(apiTotalTime))
	L.SetGlobal("time", timeTbl)

	audio := L.NewTable()
	L.SetField(audio, "play_sound", L.NewFunction(apiPlaySound))
	L.SetField(audio, "play_sound_at", L.NewFunction(apiPlaySoundAt))
	L.SetField(audio, "stop_sound", L.NewFunction(apiStopSound))
	L.SetGlobal("audio", audio)

	anim := L.NewTable()
	L.SetField(anim, "play_clip", L.NewFunction(apiPlayClip))
	L.SetField(anim, "stop_clip", L.NewFunction(apiStopClip))
	L.SetField(anim, "blend_to", L.NewFunction(apiBlendTo))
	L.SetField(anim, "set_anim_speed", L.NewFunction(apiSetAnimSpeed))
	L.SetGlobal("anim", anim)

	events := L.NewTable()
	L.SetField(events, "fire_event", L.NewFunction(apiFireEvent))
	L.SetField(events, "fire_event_data", L.NewFunction(apiFireEventData))
	L.SetGlobal("events", events)

	logTbl := L.NewTable()
	L.SetField(logTbl, "log", L.NewFunction(apiLog))
	L.SetField(logTbl, "log_warn", L.NewFunction(apiLogWarn))
	L.SetField(logTbl, "log_error", L.NewFunction(apiLogError))
	L.SetGlobal("log", logTbl)
}

// resolveEntity resolves a name argument to an EntityID, or returns the
// calling script's own entity if name is empty.
func resolveEntity(name string) (ecs.EntityID, bool) {
	if activeContext == nil {
		return ecs.InvalidEntityID, false
	}
	if name == "" {
		return activeContext.self, true
	}
	return activeContext.world.GetID(name)
}

func apiSelfEntity(L *lua.LState) int {
	if activeContext == nil {
		L.Push(lua.LNil)
		return 1
	}
	name, _ := activeContext.world.GetName(activeContext.self)
	L.Push(lua.LString(name))
	return 1
}

func apiGetEntity(L *lua.LState) int {
	name := L.CheckString(1)
	if activeContext == nil {
		L.Push(lua.LNil)
		return 1
	}
	if _, ok := activeContext.world.GetID(name); ok {
		L.Push(lua.LString(name))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

func apiEntityExists(L *lua.LState) int {
	name := L.CheckString(1)
	if activeContext == nil {
		L.Push(lua.LFalse)
		return 1
	}
	_, ok := activeContext.world.GetID(name)
	L.Push(lua.LBool(ok))
	return 1
}

func apiEntityName(L *lua.LState) int {
	name := L.CheckString(1)
	if activeContext == nil {
		L.Push(lua.LNil)
		return 1
	}
	if _, ok := activeContext.world.GetID(name); ok {
		L.Push(lua.LString(name))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

func apiHasComponent(L *lua.LState) int {
	name := L.CheckString(1)
	comp := L.CheckString(2)
	id, ok := resolveEntity(name)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LBool(activeContext.world.HasComponent(id, comp)))
	return 1
}

func apiGetField(L *lua.LState) int {
	name := L.CheckString(1)
	comp := L.CheckString(2)
	field := L.CheckString(3)
	id, ok := resolveEntity(name)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	v, ok := activeContext.world.GetField(id, comp, field)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(valueToLua(L, v))
	return 1
}

func apiSetField(L *lua.LState) int {
	name := L.CheckString(1)
	comp := L.CheckString(2)
	field := L.CheckString(3)
	val := L.CheckAny(4)
	id, ok := resolveEntity(name)
	if !ok {
		return 0
	}
	_ = activeContext.world.SetField(id, comp, field, luaToValue(val))
	return 0
}

func apiGetPosition(L *lua.LState) int {
	name := L.CheckString(1)
	id, ok := resolveEntity(name)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	t := activeContext.world.LocalTransform(id)
	L.Push(lua.LNumber(t.Position.X))
	L.Push(lua.LNumber(t.Position.Y))
	L.Push(lua.LNumber(t.Position.Z))
	return 3
}

func apiSetPosition(L *lua.LState) int {
	name := L.CheckString(1)
	x := L.CheckNumber(2)
	y := L.CheckNumber(3)
	z := L.CheckNumber(4)
	id, ok := resolveEntity(name)
	if !ok {
		return 0
	}
	pos := ecs.Array(ecs.Float(float64(x)), ecs.Float(float64(y)), ecs.Float(float64(z)))
	_ = activeContext.world.SetField(id, "transform", "position", pos)
	return 0
}

func apiGetRotation(L *lua.LState) int {
	name := L.CheckString(1)
	id, ok := resolveEntity(name)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	t := activeContext.world.LocalTransform(id)
	L.Push(lua.LNumber(t.Euler.X))
	L.Push(lua.LNumber(t.Euler.Y))
	L.Push(lua.LNumber(t.Euler.Z))
	return 3
}

func apiSetRotation(L *lua.LState) int {
	name := L.CheckString(1)
	x := L.CheckNumber(2)
	y := L.CheckNumber(3)
	z := L.CheckNumber(4)
	id, ok := resolveEntity(name)
	if !ok {
		return 0
	}
	rot := ecs.Array(ecs.Float(float64(x)), ecs.Float(float64(y)), ecs.Float(float64(z)))
	_ = activeContext.world.SetField(id, "transform", "rotation", rot)
	return 0
}

func apiDistance(L *lua.LState) int {
	a := L.CheckString(1)
	b := L.CheckString(2)
	if activeContext == nil {
		L.Push(lua.LNumber(0))
		return 1
	}
	idA, okA := activeContext.world.GetID(a)
	idB, okB := activeContext.world.GetID(b)
	if !okA || !okB {
		L.Push(lua.LNumber(0))
		return 1
	}
	ma, _ := activeContext.world.WorldMatrix(idA)
	mb, _ := activeContext.world.WorldMatrix(idB)
	L.Push(lua.LNumber(ma.Translation().Distance(mb.Translation())))
	return 1
}

func apiSpawnEntity(L *lua.LState) int {
	name := L.CheckString(1)
	if activeContext == nil {
		L.Push(lua.LNil)
		return 1
	}
	_, err := activeContext.world.Spawn(name)
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(name))
	return 1
}

func apiDespawnEntity(L *lua.LState) int {
	name := L.CheckString(1)
	if activeContext == nil {
		return 0
	}
	_ = activeContext.world.DespawnByName(name)
	return 0
}

func apiIsActionPressed(L *lua.LState) int {
	action := L.CheckString(1)
	if activeContext == nil {
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LBool(activeContext.frameInput.ActionsPressed[action]))
	return 1
}

func apiIsActionJustPressed(L *lua.LState) int {
	action := L.CheckString(1)
	if activeContext == nil {
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LBool(activeContext.frameInput.ActionsJustPressed[action]))
	return 1
}

func apiMouseDeltaX(L *lua.LState) int {
	if activeContext == nil {
		L.Push(lua.LNumber(0))
		return 1
	}
	L.Push(lua.LNumber(activeContext.frameInput.MouseDeltaX))
	return 1
}

func apiMouseDeltaY(L *lua.LState) int {
	if activeContext == nil {
		L.Push(lua.LNumber(0))
		return 1
	}
	L.Push(lua.LNumber(activeContext.frameInput.MouseDeltaY))
	return 1
}

func apiDeltaTime(L *lua.LState) int {
	if activeContext == nil {
		L.Push(lua.LNumber(0))
		return 1
	}
	L.Push(lua.LNumber(activeContext.frameInput.DeltaTime))
	return 1
}

func apiTotalTime(L *lua.LState) int {
	if activeContext == nil {
		L.Push(lua.LNumber(0))
		return 1
	}
	L.Push(lua.LNumber(activeContext.frameInput.TotalTime))
	return 1
}

func apiPlaySound(L *lua.LState) int {
	name := L.CheckString(1)
	if activeContext != nil {
		activeContext.host.queue.push(Command{Kind: "play_sound", Name: name})
	}
	return 0
}

func apiPlaySoundAt(L *lua.LState) int {
	name := L.CheckString(1)
	x := L.CheckNumber(2)
	y := L.CheckNumber(3)
	z := L.CheckNumber(4)
	if activeContext != nil {
		activeContext.host.queue.push(Command{Kind: "play_sound_at", Name: name, X: float64(x), Y: float64(y), Z: float64(z)})
	}
	return 0
}

func apiStopSound(L *lua.LState) int {
	name := L.CheckString(1)
	if activeContext != nil {
		activeContext.host.queue.push(Command{Kind: "stop_sound", Name: name})
	}
	return 0
}

func apiPlayClip(L *lua.LState) int {
	name := L.CheckString(1)
	clip := L.CheckString(2)
	id, ok := resolveEntity(name)
	if !ok {
		return 0
	}
	_ = activeContext.world.SetField(id, "animation", "current_clip", ecs.String(clip))
	return 0
}

func apiStopClip(L *lua.LState) int {
	name := L.CheckString(1)
	id, ok := resolveEntity(name)
	if !ok {
		return 0
	}
	_ = activeContext.world.SetField(id, "animation", "current_clip", ecs.String(""))
	return 0
}

func apiBlendTo(L *lua.LState) int {
	name := L.CheckString(1)
	clip := L.CheckString(2)
	blend := L.CheckNumber(3)
	id, ok := resolveEntity(name)
	if !ok {
		return 0
	}
	_ = activeContext.world.SetField(id, "animation", "blend_target", ecs.String(clip))
	_ = activeContext.world.SetField(id, "animation", "blend_time", ecs.Float(float64(blend)))
	return 0
}

func apiSetAnimSpeed(L *lua.LState) int {
	name := L.CheckString(1)
	speed := L.CheckNumber(2)
	id, ok := resolveEntity(name)
	if !ok {
		return 0
	}
	_ = activeContext.world.SetField(id, "animation", "speed", ecs.Float(float64(speed)))
	return 0
}

func apiFireEvent(L *lua.LState) int {
	name := L.CheckString(1)
	if activeContext != nil {
		activeContext.host.queue.push(Command{Kind: "fire_event", Name: name})
	}
	return 0
}

func apiFireEventData(L *lua.LState) int {
	name := L.CheckString(1)
	data := L.CheckString(2)
	if activeContext != nil {
		activeContext.host.queue.push(Command{Kind: "fire_event_data", Name: name, Data: data})
	}
	return 0
}

func apiLog(L *lua.LState) int {
	msg := L.CheckString(1)
	if activeContext != nil {
		activeContext.host.log = append(activeContext.host.log, LogEntry{Level: "info", Message: msg})
	}
	return 0
}

func apiLogWarn(L *lua.LState) int {
	msg := L.CheckString(1)
	if activeContext != nil {
		activeContext.host.log = append(activeContext.host.log, LogEntry{Level: "warn", Message: msg})
	}
	return 0
}

func apiLogError(L *lua.LState) int {
	msg := L.CheckString(1)
	if activeContext != nil {
		activeContext.host.log = append(activeContext.host.log, LogEntry{Level: "error", Message: msg})
	}
	return 0
}

// valueToLua/luaToValue convert between ecs.Value and Lua values for
// get_field/set_field, covering scalars, arrays, and nested tables.
func valueToLua(L *lua.LState, v ecs.Value) lua.LValue {
	switch v.Kind() {
	case ecs.KindBool:
		b, _ := v.Bool()
		return lua.LBool(b)
	case ecs.KindInt:
		i, _ := v.Int()
		return lua.LNumber(float64(i))
	case ecs.KindFloat:
		f, _ := v.Float()
		return lua.LNumber(f)
	case ecs.KindString:
		s, _ := v.String()
		return lua.LString(s)
	case ecs.KindArray:
		arr, _ := v.Array()
		table := L.NewTable()
		for i, item := range arr {
			table.RawSetInt(i+1, valueToLua(L, item))
		}
		return table
	case ecs.KindTable:
		t, _ := v.Table()
		table := L.NewTable()
		for _, k := range t.Keys() {
			item, _ := t.Get(k)
			table.RawSetString(k, valueToLua(L, item))
		}
		return table
	default:
		return lua.LNil
	}
}

func luaToValue(v lua.LValue) ecs.Value {
	switch t := v.(type) {
	case lua.LBool:
		return ecs.Bool(bool(t))
	case lua.LNumber:
		return ecs.Float(float64(t))
	case lua.LString:
		return ecs.String(string(t))
	case *lua.LTable:
		// Lua can't distinguish array vs map tables structurally; treat a
		// table with a contiguous 1..n integer key run as an array,
		// otherwise as a table.
		maxN := t.Len()
		isArray := maxN > 0
		count := 0
		t.ForEach(func(lua.LValue, lua.LValue) { count++ })
		if count != maxN {
			isArray = false
		}
		if isArray {
			items := make([]ecs.Value, maxN)
			for i := 1; i <= maxN; i++ {
				items[i-1] = luaToValue(t.RawGetInt(i))
			}
			return ecs.Array(items...)
		}
		table := ecs.NewTable()
		t.ForEach(func(k, val lua.LValue) {
			table.Set(k.String(), luaToValue(val))
		})
		return ecs.FromTable(table)
	default:
		return ecs.Nil()
	}
}
