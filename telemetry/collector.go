package telemetry

// Collector accumulates per-step counters within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationSteps int64
	dt                  float32

	windowStartStep int64
	stepsInWindow   int
	pairsVisited    int64
}

// NewCollector creates a stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
// dt: seconds per step (used for step-to-time conversion).
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	stepsPerWindow := int64(windowDurationSec / float64(dt))
	if stepsPerWindow < 1 {
		stepsPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationSteps: stepsPerWindow,
		dt:                  dt,
	}
}

// RecordStep records one completed step and its pair-visit count.
func (c *Collector) RecordStep(pairsVisited int64) {
	c.stepsInWindow++
	c.pairsVisited += pairsVisited
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(currentStep int64) bool {
	return currentStep-c.windowStartStep >= c.windowDurationSteps
}

// Flush produces a WindowStats and resets counters for the next window.
// speeds is a sample of particle speeds at window end (sorted in place);
// occupiedBins/maxBinOccupancy come from the engine's last offsets.
func (c *Collector) Flush(
	currentStep int64,
	particleCount int,
	speeds []float64,
	kineticEnergy float64,
	occupiedBins, maxBinOccupancy int,
) WindowStats {
	mean, std, p10, p50, p90 := SpeedStats(speeds)

	var pairsPerParticle float64
	if particleCount > 0 && c.stepsInWindow > 0 {
		pairsPerParticle = float64(c.pairsVisited) / float64(particleCount) / float64(c.stepsInWindow)
	}

	stats := WindowStats{
		WindowStartStep: c.windowStartStep,
		WindowEndStep:   currentStep,
		SimTimeSec:      float64(currentStep) * float64(c.dt),
		StepsInWindow:   c.stepsInWindow,

		ParticleCount: particleCount,

		SpeedMean: mean,
		SpeedStd:  std,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		KineticEnergy: kineticEnergy,

		PairsVisited:     c.pairsVisited,
		PairsPerParticle: pairsPerParticle,

		OccupiedBins:    occupiedBins,
		MaxBinOccupancy: maxBinOccupancy,
	}

	c.windowStartStep = currentStep
	c.stepsInWindow = 0
	c.pairsVisited = 0

	return stats
}

// WindowDurationSteps returns the number of steps per window.
func (c *Collector) WindowDurationSteps() int64 {
	return c.windowDurationSteps
}
