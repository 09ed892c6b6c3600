// Command flintview is the scene viewer: it loads a scene/schema/
// constraint directory set, hot-reloads on file changes, and lets an
// author fly around, pick entities, and drag the transform gizmo
// in a live ebiten.Game window with the usual Update/Draw/Layout/Run
// shape.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"flint/internal/app"
	"flint/internal/mathutil"
	"flint/internal/physics"
	"flint/internal/render"
)

const (
	screenWidth  = 1280
	screenHeight = 720
	nearPlane    = 0.1
	farPlane     = 500.0
	fovYDegrees  = 60.0
	eyeHeight    = 1.6
)

// game adapts app.App to ebiten's Update/Draw/Layout contract, reading
// raw keyboard/mouse state into app.CameraInput each frame.
type game struct {
	app *app.App

	prevCursorX, prevCursorY int
	haveCursor               bool

	wasMouseDown bool
}

func newGame(scenePath, schemaDir, constraintDir string) (*game, error) {
	a, err := app.New(scenePath, schemaDir, constraintDir, screenWidth, screenHeight)
	if err != nil {
		return nil, err
	}
	return &game{app: a}, nil
}

func (g *game) Update() error {
	mx, my := ebiten.CursorPosition()
	dx, dy := 0.0, 0.0
	if g.haveCursor {
		dx = float64(mx - g.prevCursorX)
		dy = float64(my - g.prevCursorY)
	}
	g.prevCursorX, g.prevCursorY = mx, my
	g.haveCursor = true

	in := app.CameraInput{
		Actions: physics.InputActions{
			Forward:     ebiten.IsKeyPressed(ebiten.KeyW),
			Back:        ebiten.IsKeyPressed(ebiten.KeyS),
			Left:        ebiten.IsKeyPressed(ebiten.KeyA),
			Right:       ebiten.IsKeyPressed(ebiten.KeyD),
			Jump:        ebiten.IsKeyPressed(ebiten.KeySpace),
			MouseDeltaX: dx,
			MouseDeltaY: dy,
		},
		Fly: app.FlyCameraInput{
			Forward:     ebiten.IsKeyPressed(ebiten.KeyW),
			Back:        ebiten.IsKeyPressed(ebiten.KeyS),
			Left:        ebiten.IsKeyPressed(ebiten.KeyA),
			Right:       ebiten.IsKeyPressed(ebiten.KeyD),
			Up:          ebiten.IsKeyPressed(ebiten.KeyE),
			Down:        ebiten.IsKeyPressed(ebiten.KeyQ),
			MouseDeltaX: dx,
			MouseDeltaY: dy,
			Boost:       ebiten.IsKeyPressed(ebiten.KeyShift),
		},
	}

	if err := g.app.Update(1.0/60.0, in); err != nil {
		return err
	}

	down := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if down && !g.wasMouseDown && g.app.Mode == app.ModeInspect {
		ndcX := (float64(mx)/float64(screenWidth))*2 - 1
		ndcY := 1 - (float64(my)/float64(screenHeight))*2
		proj := mathutil.Perspective(mathutil.DegToRad(fovYDegrees), float64(screenWidth)/float64(screenHeight), nearPlane, farPlane)
		g.app.PickAt(ndcX, ndcY, proj)
	}
	g.wasMouseDown = down

	if ebiten.IsKeyPressed(ebiten.KeyGraveAccent) {
		g.app.ToggleMode()
	}

	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	aspect := float64(screenWidth) / float64(screenHeight)
	proj := mathutil.Perspective(mathutil.DegToRad(fovYDegrees), aspect, nearPlane, farPlane)
	view := g.app.CameraView(eyeHeight)

	frame := render.FrameInputs{
		World:      g.app.World,
		CameraView: view,
		CameraProj: proj,
		CameraPos:  g.app.CameraPosition(eyeHeight),
		FovY:       mathutil.DegToRad(fovYDegrees),
		Aspect:     aspect,
		Near:       nearPlane,
		Far:        farPlane,
		Solid:      g.app.BuildDrawCalls(),
	}

	out := g.app.Renderer.RenderFrame(frame)
	screen.DrawImage(out, nil)
}

func (g *game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	scene := flag.String("scene", "scene.toml", "path to the scene file to load")
	schemas := flag.String("schemas", "schemas", "directory of archetype schema files")
	constraints := flag.String("constraints", "constraints", "directory of constraint files")
	flag.Parse()

	g, err := newGame(*scene, *schemas, *constraints)
	if err != nil {
		log.Fatal(err)
	}
	defer g.app.Close()

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("flintview")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
