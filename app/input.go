package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/plife/sim"
)

// handleInput processes keyboard and pointer input.
func (a *App) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && a.stepsPerUpdate > 1 {
		a.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && a.stepsPerUpdate < 10 {
		a.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		a.controls.Toggle()
	}

	a.handlePointer()

	// Slider changes take effect between steps only
	a.engine.SetFriction(a.tunables.Friction)
	a.engine.SetCentralForce(a.tunables.CentralForce)
}

// handlePointer converts a mouse drag into the localized perturbation
// force: origin at the cursor, target velocity from the cursor motion in
// world units per second.
func (a *App) handlePointer() {
	if !rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		if a.pointer.Strength != 0 {
			a.pointer = sim.Pointer{}
			a.engine.ClearPointer()
		}
		return
	}

	pos := rl.GetMousePosition()
	delta := rl.GetMouseDelta()
	wx, wy := a.view.ToWorld(pos)

	dt := a.engine.Options().DT
	a.pointer = sim.Pointer{
		Origin:    sim.Vec2{X: wx, Y: wy},
		TargetVel: sim.Vec2{X: delta.X / a.view.ScaleX / dt, Y: -delta.Y / a.view.ScaleY / dt},
		Strength:  a.tunables.PointerStrength,
		Radius:    a.tunables.PointerRadius,
	}
	a.engine.SetPointer(a.pointer)
}
