package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/plife/app"
	"github.com/pthm-cable/plife/config"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxSteps := flag.Int("max-steps", 0, "Stop after N steps (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation steps per update call (higher = faster headless runs)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := app.Options{
		Seed:           rngSeed,
		Headless:       *headless,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		a, err := app.New(opts)
		if err != nil {
			slog.Error("failed to start simulation", "error", err)
			os.Exit(1)
		}
		defer a.Unload()

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"particles", cfg.Simulation.ParticleCount,
			"species", len(cfg.Species),
			"max_steps", *maxSteps,
			"steps_per_update", *stepsPerUpdate,
		)

		for {
			a.UpdateHeadless()

			if *maxSteps > 0 && int(a.Tick()) >= *maxSteps {
				slog.Info("max steps reached", "step", a.Tick())
				return
			}
		}
	} else {
		// Graphical mode
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Particle Life")
		defer rl.CloseWindow()

		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

		a, err := app.New(opts)
		if err != nil {
			slog.Error("failed to start simulation", "error", err)
			os.Exit(1)
		}
		defer a.Unload()

		for !rl.WindowShouldClose() {
			a.Update()
			a.Draw()

			if *maxSteps > 0 && int(a.Tick()) >= *maxSteps {
				break
			}
		}
	}
}
