package sim

import (
	"fmt"
	"math"

	"github.com/pthm-cable/plife/telemetry"
)

// StepCounters holds per-step work counters for telemetry.
type StepCounters struct {
	PairsVisited int64
}

// forceScratch holds per-worker accumulation for the force phase.
type forceScratch struct {
	pairsVisited int64
}

// Engine is the simulation driver. It owns the double-buffered particle
// state, the counting sorter, and the per-step configuration, and sequences
// the pipeline phases in a fixed order with a full barrier between them:
// Clear, Fill, Scan, Scatter, Forces, Integrate. The buffer swap at the end
// of Step is the only commit point — a step that never runs has no
// observable effect.
type Engine struct {
	opts  Options
	table *ForceTable
	grid  Grid

	pool   *workerPool
	sorter *countingSorter

	buffers [2][]Particle
	cur     int
	velOut  []Vec2
	offsets []int32

	pointer   Pointer
	scratches []forceScratch
	counters  StepCounters
	step      int64

	perf *telemetry.PerfCollector
}

// NewEngine validates the configuration and builds an engine over a copy of
// the initial particles. Particle species must fit the force table.
func NewEngine(opts Options, table *ForceTable, particles []Particle) (*Engine, error) {
	if err := opts.Validate(table); err != nil {
		return nil, err
	}
	if err := validateSpecies(particles, table); err != nil {
		return nil, err
	}

	grid := NewGrid(opts)
	pool := newWorkerPool(opts.Workers)

	e := &Engine{
		opts:      opts,
		table:     table,
		grid:      grid,
		pool:      pool,
		sorter:    newCountingSorter(grid.BinCount(), pool),
		velOut:    make([]Vec2, len(particles)),
		scratches: make([]forceScratch, pool.numWorkers),
	}
	e.buffers[0] = append([]Particle(nil), particles...)
	e.buffers[1] = make([]Particle, len(particles))
	return e, nil
}

func validateSpecies(particles []Particle, table *ForceTable) error {
	s := uint8(table.Species())
	for i := range particles {
		if particles[i].Species >= s {
			return fmt.Errorf("sim: particle %d species %d out of range [0, %d)", i, particles[i].Species, s)
		}
	}
	return nil
}

// Step advances the simulation by one dt: counting-sort the current buffer
// into the back buffer, evaluate forces over the sorted layout, integrate,
// then commit the swap. Not safe for concurrent use.
func (e *Engine) Step() {
	src := e.buffers[e.cur]
	dst := e.buffers[1-e.cur]

	e.markPhase(telemetry.PhaseClear)
	e.sorter.clear()

	e.markPhase(telemetry.PhaseFill)
	e.sorter.fill(src, e.grid)

	e.markPhase(telemetry.PhaseScan)
	offsets := e.sorter.scan()

	e.markPhase(telemetry.PhaseScatter)
	e.sorter.scatter(src, dst, e.grid, offsets)

	e.markPhase(telemetry.PhaseForces)
	e.evaluateForces(dst, offsets)

	e.markPhase(telemetry.PhaseIntegrate)
	e.integrateAll(dst)

	e.offsets = offsets
	e.cur = 1 - e.cur
	e.step++
}

// evaluateForces writes post-force velocities into the scratch buffer; the
// sorted particle buffer is read-only during this phase.
func (e *Engine) evaluateForces(sorted []Particle, offsets []int32) {
	for i := range e.scratches {
		e.scratches[i] = forceScratch{}
	}

	opts, table, grid, ptr := e.opts, e.table, e.grid, e.pointer
	e.pool.run(len(sorted), func(start, end, worker int) {
		sc := &e.scratches[worker]
		for i := start; i < end; i++ {
			f, pairs := particleForce(i, sorted, offsets, grid, table, opts, ptr)
			sc.pairsVisited += int64(pairs)
			e.velOut[i] = Vec2{
				X: sorted[i].Vel.X + f.X*opts.DT,
				Y: sorted[i].Vel.Y + f.Y*opts.DT,
			}
		}
	})

	e.counters = StepCounters{}
	for i := range e.scratches {
		e.counters.PairsVisited += e.scratches[i].pairsVisited
	}
}

func (e *Engine) integrateAll(sorted []Particle) {
	opts := e.opts
	frictionFactor := float32(math.Exp(float64(-opts.DT * opts.Friction)))
	e.pool.run(len(sorted), func(start, end, _ int) {
		for i := start; i < end; i++ {
			integrate(&sorted[i], e.velOut[i], frictionFactor, opts)
		}
	})
}

// Particles returns the most recently committed buffer. Read-after-step
// only: the slice is invalidated by the next Step.
func (e *Engine) Particles() []Particle {
	return e.buffers[e.cur]
}

// Count returns the particle count.
func (e *Engine) Count() int {
	return len(e.buffers[0])
}

// StepCount returns the number of completed steps.
func (e *Engine) StepCount() int64 {
	return e.step
}

// Counters returns the work counters of the last completed step.
func (e *Engine) Counters() StepCounters {
	return e.counters
}

// Options returns the current per-step configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Grid returns the derived bin grid.
func (e *Engine) Grid() Grid {
	return e.grid
}

// SetPointer sets the interactive perturbation for subsequent steps.
func (e *Engine) SetPointer(p Pointer) {
	e.pointer = p
}

// ClearPointer removes the interactive perturbation.
func (e *Engine) ClearPointer() {
	e.pointer = Pointer{}
}

// SetFriction updates the friction decay rate between steps.
func (e *Engine) SetFriction(rate float32) {
	e.opts.Friction = rate
}

// SetCentralForce updates the central force coefficient between steps.
func (e *Engine) SetCentralForce(k float32) {
	e.opts.CentralForce = k
}

// SetPerf attaches a performance collector; nil disables phase timing.
func (e *Engine) SetPerf(p *telemetry.PerfCollector) {
	e.perf = p
}

func (e *Engine) markPhase(name string) {
	if e.perf != nil {
		e.perf.StartPhase(name)
	}
}

// BinOccupancy scans the last step's offsets and returns the number of
// occupied bins and the largest bin population.
func (e *Engine) BinOccupancy() (occupied int, maxOccupancy int) {
	if e.offsets == nil {
		return 0, 0
	}
	for k := 0; k+1 < len(e.offsets); k++ {
		n := int(e.offsets[k+1] - e.offsets[k])
		if n > 0 {
			occupied++
		}
		if n > maxOccupancy {
			maxOccupancy = n
		}
	}
	return occupied, maxOccupancy
}

// Close stops the worker pool.
func (e *Engine) Close() {
	e.pool.stop()
}
