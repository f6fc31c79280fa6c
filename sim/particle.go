// Package sim implements a spatial-binning particle interaction engine:
// counting-sort binning, neighbor-restricted pairwise force evaluation, and
// constrained integration over a double-buffered particle store. One call to
// Engine.Step advances the whole system by dt.
package sim

import "fmt"

// MaxSpecies bounds the force table size.
const MaxSpecies = 32

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X, Y float32
}

// Particle is a plain data record. Identity is positional: the counting sort
// moves records between slots every step, so indices must never be held
// across steps.
type Particle struct {
	Pos     Vec2
	Vel     Vec2
	Species uint8
}

// ForceDesc describes the interaction one species pair exerts.
// Strength is signed (positive = attraction) with a linear falloff up to
// Radius. The collision term is an always-repulsive short-range force.
type ForceDesc struct {
	Strength          float32
	Radius            float32
	CollisionStrength float32
	CollisionRadius   float32
}

// ForceTable is a flat species × species matrix of force descriptors.
// Row is the receiving species, column the species exerting the force.
type ForceTable struct {
	species int
	descs   []ForceDesc
}

// NewForceTable creates a zeroed table for the given species count.
func NewForceTable(species int) *ForceTable {
	return &ForceTable{
		species: species,
		descs:   make([]ForceDesc, species*species),
	}
}

// Species returns the species count the table was built for.
func (t *ForceTable) Species() int {
	return t.species
}

// At returns the descriptor governing the force on species recv from src.
func (t *ForceTable) At(recv, src uint8) ForceDesc {
	return t.descs[int(recv)*t.species+int(src)]
}

// Set stores the descriptor for the (recv, src) pair.
func (t *ForceTable) Set(recv, src uint8, d ForceDesc) {
	t.descs[int(recv)*t.species+int(src)] = d
}

// Symmetrize mirrors the upper triangle onto the lower so that
// At(a, b) == At(b, a) for all pairs.
func (t *ForceTable) Symmetrize() {
	for a := 0; a < t.species; a++ {
		for b := a + 1; b < t.species; b++ {
			t.descs[b*t.species+a] = t.descs[a*t.species+b]
		}
	}
}

// MaxRadius returns the largest interaction or collision radius in the table.
func (t *ForceTable) MaxRadius() float32 {
	var m float32
	for _, d := range t.descs {
		if d.Radius > m {
			m = d.Radius
		}
		if d.CollisionRadius > m {
			m = d.CollisionRadius
		}
	}
	return m
}

// Pointer describes the localized interactive force supplied by a pointer
// collaborator: a Gaussian field centered at Origin pushing particles toward
// TargetVel. The zero value (Strength == 0) means no force.
type Pointer struct {
	Origin    Vec2
	TargetVel Vec2
	Strength  float32
	Radius    float32
}

// Options holds the per-step simulation configuration. The world rectangle
// is [Left, Right] × [Bottom, Top]; the central force pulls toward its
// origin. Friction is a decay rate, not a per-step multiplier, so behavior
// is independent of dt.
type Options struct {
	Left, Right  float32
	Bottom, Top  float32
	BinSize      float32
	DT           float32
	Friction     float32
	CentralForce float32
	Looping      bool

	// Workers sets the worker pool size; 0 means GOMAXPROCS. With a single
	// worker, steps are bit-deterministic (scatter runs in source order).
	Workers int
}

// Width returns the horizontal world extent.
func (o Options) Width() float32 { return o.Right - o.Left }

// Height returns the vertical world extent.
func (o Options) Height() float32 { return o.Top - o.Bottom }

// Validate checks the options against the force table. A validation failure
// means the simulation must not start; the caller may reconfigure and retry.
func (o Options) Validate(table *ForceTable) error {
	if table == nil {
		return fmt.Errorf("sim: force table is nil")
	}
	if s := table.Species(); s < 1 || s > MaxSpecies {
		return fmt.Errorf("sim: species count %d out of range [1, %d]", s, MaxSpecies)
	}
	if o.Width() <= 0 || o.Height() <= 0 {
		return fmt.Errorf("sim: world extents must be positive, got %gx%g", o.Width(), o.Height())
	}
	if o.BinSize <= 0 {
		return fmt.Errorf("sim: bin size must be positive, got %g", o.BinSize)
	}
	if o.DT <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %g", o.DT)
	}
	maxR := table.MaxRadius()
	if maxR > o.BinSize {
		// The 3×3 neighborhood only covers pairs within one bin edge length.
		return fmt.Errorf("sim: interaction radius %g exceeds bin size %g", maxR, o.BinSize)
	}
	if o.Looping {
		halfExtent := o.Width() / 2
		if o.Height() < o.Width() {
			halfExtent = o.Height() / 2
		}
		if maxR >= halfExtent {
			// Minimum-image correction is ambiguous past half the extent.
			return fmt.Errorf("sim: interaction radius %g must be below half the world extent %g with looping borders", maxR, halfExtent)
		}
	}
	return nil
}
