// Package ui provides the live-tuning controls panel and HUD.
package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Tunables are the simulation options adjustable while running. The app
// copies them into the engine between steps.
type Tunables struct {
	Friction        float32
	CentralForce    float32
	PointerStrength float32
	PointerRadius   float32
}

// ControlsPanel renders the left-side slider panel.
type ControlsPanel struct {
	x, y    int32
	width   int32
	visible bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{x: x, y: y, width: width}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

const (
	sliderHeight = 18
	lineHeight   = 26
	labelWidth   = 90
)

// Draw renders the panel and writes any slider changes back into t.
func (c *ControlsPanel) Draw(t *Tunables) {
	if !c.visible {
		return
	}

	panelHeight := int32(4*lineHeight + 16)
	rl.DrawRectangle(c.x, c.y, c.width, panelHeight, rl.Color{R: 20, G: 24, B: 32, A: 220})

	y := c.y + 8
	t.Friction = c.slider(y, "friction", t.Friction, 0, 30)
	y += lineHeight
	t.CentralForce = c.slider(y, "central", t.CentralForce, 0, 2)
	y += lineHeight
	t.PointerStrength = c.slider(y, "pointer", t.PointerStrength, 0, 20)
	y += lineHeight
	t.PointerRadius = c.slider(y, "radius", t.PointerRadius, 10, 200)
}

func (c *ControlsPanel) slider(y int32, label string, value, min, max float32) float32 {
	rl.DrawText(label, c.x+8, y+2, 10, rl.Color{R: 180, G: 180, B: 180, A: 255})
	bounds := rl.Rectangle{
		X:      float32(c.x + labelWidth),
		Y:      float32(y),
		Width:  float32(c.width - labelWidth - 60),
		Height: sliderHeight,
	}
	return gui.Slider(bounds, "", fmt.Sprintf("%.1f", value), value, min, max)
}

// DrawHUD renders the status line.
func DrawHUD(x, y int32, step int64, particles int, paused bool, stepsPerUpdate int) {
	state := "running"
	if paused {
		state = "paused"
	}
	text := fmt.Sprintf("step %d | %d particles | %dx | %d fps | %s [space pause, <> speed, tab panel]",
		step, particles, stepsPerUpdate, rl.GetFPS(), state)
	rl.DrawText(text, x, y, 10, rl.RayWhite)
}
