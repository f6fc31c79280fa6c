// Package renderer draws the committed particle buffer.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/plife/sim"
)

// View maps world coordinates to screen pixels. World Y points up, screen Y
// points down, so the vertical axis is flipped.
type View struct {
	Left, Bottom   float32
	ScaleX, ScaleY float32
	ScreenH        float32
}

// NewView builds a view mapping the world rectangle onto the full screen.
func NewView(left, right, bottom, top float32, screenW, screenH int32) View {
	return View{
		Left:    left,
		Bottom:  bottom,
		ScaleX:  float32(screenW) / (right - left),
		ScaleY:  float32(screenH) / (top - bottom),
		ScreenH: float32(screenH),
	}
}

// ToScreen converts a world position to screen pixels.
func (v View) ToScreen(x, y float32) rl.Vector2 {
	return rl.Vector2{
		X: (x - v.Left) * v.ScaleX,
		Y: v.ScreenH - (y-v.Bottom)*v.ScaleY,
	}
}

// ToWorld converts screen pixels to a world position.
func (v View) ToWorld(p rl.Vector2) (x, y float32) {
	return v.Left + p.X/v.ScaleX, v.Bottom + (v.ScreenH-p.Y)/v.ScaleY
}

// ParticleRenderer renders particles colored by species.
type ParticleRenderer struct {
	colors []rl.Color
	radius float32
}

// NewParticleRenderer creates a renderer with one color per species.
func NewParticleRenderer(colors []rl.Color, radius float32) *ParticleRenderer {
	return &ParticleRenderer{colors: colors, radius: radius}
}

// Draw renders the buffer. Read-after-step only: the engine owns the slice.
func (r *ParticleRenderer) Draw(particles []sim.Particle, view View) {
	for i := range particles {
		p := &particles[i]
		rl.DrawCircleV(view.ToScreen(p.Pos.X, p.Pos.Y), r.radius, r.colors[p.Species])
	}
}

// DrawPointer marks the active pointer force as a ring around its origin.
func DrawPointer(ptr sim.Pointer, view View) {
	if ptr.Strength == 0 {
		return
	}
	center := view.ToScreen(ptr.Origin.X, ptr.Origin.Y)
	rl.DrawCircleLinesV(center, ptr.Radius*view.ScaleX, rl.Color{R: 220, G: 220, B: 220, A: 160})
}
