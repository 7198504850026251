// Package rendercli is a thin demo consumer of the read-only renderer
// view. It is deliberately the only package in this module that imports
// raylib: rendering, sprite drawing, and canvas/GPU interop are out of
// scope for the simulation core, so this package never gets imported
// back by store/spatial/physics/job/behavior/orchestrator — it only
// reads their published columns.
package rendercli

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarmcore/camera"
	"github.com/pthm-cable/swarmcore/orchestrator"
)

// Viewer owns the raylib window and a camera projecting the published
// Transform columns onto it. It never mutates simulation state; every
// field it reads off orchestrator.Store() is produced by the core and
// only ever read here.
type Viewer struct {
	orch *orchestrator.Orchestrator
	cam  *camera.Camera

	canvasWidth, canvasHeight int32
}

// NewViewer opens a window sized canvasWidth x canvasHeight and builds a
// camera over the given world dimensions.
func NewViewer(orch *orchestrator.Orchestrator, worldWidth, worldHeight, canvasWidth, canvasHeight int) *Viewer {
	rl.InitWindow(int32(canvasWidth), int32(canvasHeight), "swarmcore")
	rl.SetTargetFPS(60)
	return &Viewer{
		orch:         orch,
		cam:          camera.New(float32(canvasWidth), float32(canvasHeight), float32(worldWidth), float32(worldHeight)),
		canvasWidth:  int32(canvasWidth),
		canvasHeight: int32(canvasHeight),
	}
}

// Close tears down the raylib window.
func (v *Viewer) Close() { rl.CloseWindow() }

// ShouldClose reports whether the user asked to close the window.
func (v *Viewer) ShouldClose() bool { return rl.WindowShouldClose() }

// PublishInput snapshots the mouse into world coordinates and writes it
// to the orchestrator's input view, so the next frame's tick functions
// observe a stable value for its duration.
func (v *Viewer) PublishInput() {
	mx, my := rl.GetMouseX(), rl.GetMouseY()
	wx, wy := v.cam.ScreenToWorld(float32(mx), float32(my))
	v.orch.SetInput(orchestrator.InputSnapshot{
		MouseX:       wx,
		MouseY:       wy,
		MousePresent: true,
		Button0:      rl.IsMouseButtonDown(rl.MouseButtonLeft),
		Button1:      rl.IsMouseButtonDown(rl.MouseButtonRight),
		Button2:      rl.IsMouseButtonDown(rl.MouseButtonMiddle),
		Keys:         map[string]bool{},
	})
}

// Draw renders one frame from the current published render view: every
// active row with RenderVisible set, drawn as a circle positioned via
// Transform.{x,y} and tinted/scaled/alpha'd via SpriteRenderer (ScaleX
// sets the radius; rotation and ScaleY are not used). No component
// state is ever written here.
func (v *Viewer) Draw() {
	s := v.orch.Store()
	t := s.Transform
	sp := s.Sprite

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	for i := 0; i < s.N(); i++ {
		if !t.IsActive(i) || sp.RenderVisible[i] == 0 {
			continue
		}
		radius := 4 * sp.ScaleX[i]
		if radius <= 0 {
			radius = 4
		}
		if !v.cam.IsVisible(t.X[i], t.Y[i], radius) {
			continue
		}
		sx, sy := v.cam.WorldToScreen(t.X[i], t.Y[i])
		rl.DrawCircle(int32(sx), int32(sy), radius, tintToColor(sp.Tint[i], sp.Alpha[i]))
	}

	rl.EndDrawing()
}

// tintToColor unpacks a packed 0xRRGGBBAA tint column plus a separate
// alpha multiplier into a raylib Color.
func tintToColor(tint uint32, alpha float32) rl.Color {
	r := uint8(tint >> 24)
	g := uint8(tint >> 16)
	b := uint8(tint >> 8)
	a := uint8(float32(uint8(tint)) * clamp01(alpha))
	return rl.Color{R: r, G: g, B: b, A: a}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
