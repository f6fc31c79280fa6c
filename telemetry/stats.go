// Package telemetry provides window statistics, phase timing, and CSV
// output for the simulation.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartStep int64   `csv:"-"`
	WindowEndStep   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	StepsInWindow   int     `csv:"steps"`

	ParticleCount int `csv:"particles"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Total kinetic energy (unit mass per particle)
	KineticEnergy float64 `csv:"kinetic_energy"`

	// Neighbor search work
	PairsVisited     int64   `csv:"pairs_visited"`
	PairsPerParticle float64 `csv:"pairs_per_particle"`

	// Bin occupancy (sampled at window end)
	OccupiedBins    int `csv:"occupied_bins"`
	MaxBinOccupancy int `csv:"max_bin_occupancy"`
}

// Log writes the window stats via slog.
func (s WindowStats) Log() {
	slog.Info("window",
		"step", s.WindowEndStep,
		"sim_time", s.SimTimeSec,
		"particles", s.ParticleCount,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"kinetic_energy", s.KineticEnergy,
		"pairs_per_particle", s.PairsPerParticle,
		"occupied_bins", s.OccupiedBins,
		"max_bin_occupancy", s.MaxBinOccupancy,
	)
}

// SpeedStats summarizes a sample of particle speeds. The input slice is
// sorted in place.
func SpeedStats(speeds []float64) (mean, std, p10, p50, p90 float64) {
	if len(speeds) == 0 {
		return 0, 0, 0, 0, 0
	}
	sort.Float64s(speeds)
	mean = stat.Mean(speeds, nil)
	if len(speeds) > 1 {
		std = stat.StdDev(speeds, nil)
	}
	p10 = stat.Quantile(0.1, stat.Empirical, speeds, nil)
	p50 = stat.Quantile(0.5, stat.Empirical, speeds, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, speeds, nil)
	return mean, std, p10, p50, p90
}
