// Package app wires the engine, telemetry, and the raylib front end
// together, for both windowed and headless runs.
package app

import (
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/plife/config"
	"github.com/pthm-cable/plife/renderer"
	"github.com/pthm-cable/plife/sim"
	"github.com/pthm-cable/plife/telemetry"
	"github.com/pthm-cable/plife/ui"
)

// Options configures an App.
type Options struct {
	Seed           int64
	Headless       bool
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string
	StepsPerUpdate int
}

// App owns one simulation run.
type App struct {
	cfg    *config.Config
	engine *sim.Engine

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	// Windowed-mode collaborators (nil in headless runs)
	particles *renderer.ParticleRenderer
	controls  *ui.ControlsPanel
	view      renderer.View

	tunables ui.Tunables
	pointer  sim.Pointer

	paused         bool
	stepsPerUpdate int
	logStats       bool
}

// New builds an app from the global config and the given run options.
func New(opts Options) (*App, error) {
	cfg := config.Cfg()

	simOpts := simOptions(cfg)
	table := forceTable(cfg)

	rng := rand.New(rand.NewSource(opts.Seed))
	particles := sim.RandomParticles(rng, cfg.Simulation.ParticleCount, len(cfg.Species), simOpts)

	engine, err := sim.NewEngine(simOpts, table, particles)
	if err != nil {
		return nil, err
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	engine.SetPerf(perf)

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	collector := telemetry.NewCollector(statsWindow, cfg.Derived.DT32)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		engine.Close()
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to snapshot config", "error", err)
	}

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	a := &App{
		cfg:            cfg,
		engine:         engine,
		collector:      collector,
		perf:           perf,
		output:         output,
		stepsPerUpdate: stepsPerUpdate,
		logStats:       opts.LogStats,
		tunables: ui.Tunables{
			Friction:        cfg.Derived.Friction32,
			CentralForce:    cfg.Derived.CentralForce32,
			PointerStrength: float32(cfg.Pointer.Strength),
			PointerRadius:   float32(cfg.Pointer.Radius),
		},
	}

	if !opts.Headless {
		a.view = renderer.NewView(
			cfg.Derived.Left, cfg.Derived.Right,
			cfg.Derived.Bottom, cfg.Derived.Top,
			int32(cfg.Screen.Width), int32(cfg.Screen.Height),
		)
		a.particles = renderer.NewParticleRenderer(speciesColors(cfg), 2)
		a.controls = ui.NewControlsPanel(10, 28, 300)
	}

	return a, nil
}

// simOptions maps the loaded config onto engine options.
func simOptions(cfg *config.Config) sim.Options {
	return sim.Options{
		Left:         cfg.Derived.Left,
		Right:        cfg.Derived.Right,
		Bottom:       cfg.Derived.Bottom,
		Top:          cfg.Derived.Top,
		BinSize:      cfg.Derived.BinSize32,
		DT:           cfg.Derived.DT32,
		Friction:     cfg.Derived.Friction32,
		CentralForce: cfg.Derived.CentralForce32,
		Looping:      cfg.Simulation.LoopingBorders,
		Workers:      cfg.Workers,
	}
}

// forceTable flattens the per-species force rows into the engine's matrix.
func forceTable(cfg *config.Config) *sim.ForceTable {
	table := sim.NewForceTable(len(cfg.Species))
	for a, sp := range cfg.Species {
		for b, f := range sp.Forces {
			table.Set(uint8(a), uint8(b), sim.ForceDesc{
				Strength:          float32(f.Strength),
				Radius:            float32(f.Radius),
				CollisionStrength: float32(f.CollisionStrength),
				CollisionRadius:   float32(f.CollisionRadius),
			})
		}
	}
	return table
}

// speciesColors extracts the display colors, which pass through the engine
// untouched.
func speciesColors(cfg *config.Config) []rl.Color {
	colors := make([]rl.Color, len(cfg.Species))
	for i, sp := range cfg.Species {
		colors[i] = rl.Color{R: sp.Color[0], G: sp.Color[1], B: sp.Color[2], A: sp.Color[3]}
	}
	return colors
}

// Tick returns the number of completed simulation steps.
func (a *App) Tick() int64 {
	return a.engine.StepCount()
}

// Unload releases the engine workers and output files.
func (a *App) Unload() {
	a.engine.Close()
	if err := a.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
