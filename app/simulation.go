package app

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/plife/telemetry"
)

// step runs one engine step plus telemetry accounting.
func (a *App) step() {
	a.perf.StartStep()
	a.engine.Step()

	a.perf.StartPhase(telemetry.PhaseTelemetry)
	a.collector.RecordStep(a.engine.Counters().PairsVisited)
	if a.collector.ShouldFlush(a.engine.StepCount()) {
		a.flushWindow()
	}
	a.perf.EndStep()
}

// flushWindow samples the committed buffer and emits window stats.
func (a *App) flushWindow() {
	ps := a.engine.Particles()

	speeds := make([]float64, len(ps))
	var kinetic float64
	for i := range ps {
		v2 := float64(ps[i].Vel.X)*float64(ps[i].Vel.X) + float64(ps[i].Vel.Y)*float64(ps[i].Vel.Y)
		speeds[i] = math.Sqrt(v2)
		kinetic += v2 / 2
	}
	occupied, maxOcc := a.engine.BinOccupancy()

	stats := a.collector.Flush(a.engine.StepCount(), len(ps), speeds, kinetic, occupied, maxOcc)

	if a.logStats {
		stats.Log()
		a.perf.Stats().LogStats()
	}
	if err := a.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := a.output.WritePerf(a.perf.Stats(), stats.WindowEndStep); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// UpdateHeadless advances the simulation without any rendering or input.
func (a *App) UpdateHeadless() {
	for i := 0; i < a.stepsPerUpdate; i++ {
		a.step()
	}
}

// Update advances the simulation for one frame in windowed mode.
func (a *App) Update() {
	a.handleInput()

	if a.paused {
		return
	}

	for i := 0; i < a.stepsPerUpdate; i++ {
		a.step()
	}
}
