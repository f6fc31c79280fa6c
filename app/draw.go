package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/plife/renderer"
	"github.com/pthm-cable/plife/ui"
)

// Draw renders the committed particle buffer and the UI overlay.
func (a *App) Draw() {
	a.perf.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 14, B: 20, A: 255})

	a.particles.Draw(a.engine.Particles(), a.view)
	renderer.DrawPointer(a.pointer, a.view)

	a.controls.Draw(&a.tunables)
	ui.DrawHUD(10, 10, a.engine.StepCount(), a.engine.Count(), a.paused, a.stepsPerUpdate)

	rl.EndDrawing()
}
