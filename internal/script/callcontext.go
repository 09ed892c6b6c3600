package script

import "flint/internal/ecs"

// callContext holds the raw pointer-to-world API functions dereference
// during a callback. The host only ever invokes script callbacks from the single
// update goroutine (internal/app's frame loop), so this single shared,
// non-atomic pointer is safe: there is no concurrent caller. If an async
// script API were ever introduced this contract would need revisiting
// -- documented here rather than guarded
// with a mutex, since no caller in this codebase crosses a goroutine
// boundary into a script callback.
type callContext struct {
	world      *ecs.World
	host       *Host
	self       ecs.EntityID
	frameInput FrameInput
}

var activeContext *callContext

// withContext lends the world to scripts for the duration of fn, then
// clears the pointer so API functions become no-ops outside any call.
func withContext(world *ecs.World, host *Host, self ecs.EntityID, input FrameInput, fn func()) {
	activeContext = &callContext{world: world, host: host, self: self, frameInput: input}
	defer func() { activeContext = nil }()
	fn()
}

// FrameInput is the per-frame input/time snapshot scripts read through
// the time/input API.
type FrameInput struct {
	DeltaTime   float64
	TotalTime   float64
	MouseDeltaX float64
	MouseDeltaY float64

	ActionsPressed     map[string]bool
	ActionsJustPressed map[string]bool
}
