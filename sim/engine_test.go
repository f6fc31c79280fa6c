package sim

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func newTestEngine(t *testing.T, opts Options, table *ForceTable, particles []Particle) *Engine {
	t.Helper()
	e, err := NewEngine(opts, table, particles)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEngineTwoParticleStep(t *testing.T) {
	// Two same-species particles 3 apart under strength 10, radius 5:
	// the force on each is 10*(1-3/5) = 4 along the separation axis, so one
	// step at dt=0.1 with no friction yields |v| = 0.4 and a 0.04 advance.
	opts := Options{
		Left: -50, Right: 50, Bottom: -50, Top: 50,
		BinSize: 5, DT: 0.1, Workers: 1,
	}
	table := singleSpeciesTable(ForceDesc{Strength: 10, Radius: 5})

	e := newTestEngine(t, opts, table, []Particle{
		{Pos: Vec2{X: 0, Y: 0}},
		{Pos: Vec2{X: 3, Y: 0}},
	})
	e.Step()

	ps := e.Particles()
	if len(ps) != 2 {
		t.Fatalf("particle count = %d, want 2", len(ps))
	}
	var left, right Particle
	if ps[0].Pos.X < ps[1].Pos.X {
		left, right = ps[0], ps[1]
	} else {
		left, right = ps[1], ps[0]
	}

	approx(t, left.Vel.X, 0.4, 5e-3, "left vel X")
	approx(t, left.Pos.X, 0.04, 1e-3, "left pos X")
	approx(t, right.Vel.X, -0.4, 5e-3, "right vel X")
	approx(t, right.Pos.X, 2.96, 1e-3, "right pos X")
	approx(t, left.Pos.Y, 0, 1e-4, "left pos Y")
	approx(t, right.Pos.Y, 0, 1e-4, "right pos Y")

	if got := e.Counters().PairsVisited; got != 2 {
		t.Errorf("pairs visited = %d, want 2", got)
	}
	if got := e.StepCount(); got != 1 {
		t.Errorf("step count = %d, want 1", got)
	}
}

func conservationTable(rng *rand.Rand, species int) *ForceTable {
	table := NewForceTable(species)
	for a := uint8(0); a < uint8(species); a++ {
		for b := uint8(0); b < uint8(species); b++ {
			table.Set(a, b, ForceDesc{
				Strength:          rng.Float32()*20 - 10,
				Radius:            3 + rng.Float32()*7,
				CollisionStrength: 5 + rng.Float32()*5,
				CollisionRadius:   1 + rng.Float32(),
			})
		}
	}
	return table
}

func TestEngineConservation(t *testing.T) {
	for _, looping := range []bool{false, true} {
		name := "bounded"
		if looping {
			name = "looping"
		}
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(99))
			opts := Options{
				Left: -80, Right: 80, Bottom: -45, Top: 45,
				BinSize: 10, DT: 0.02, Friction: 5, Looping: looping, Workers: 4,
			}
			const species = 3
			table := conservationTable(rng, species)
			src := RandomParticles(rng, 500, species, opts)

			var wantHist [species]int
			for _, p := range src {
				wantHist[p.Species]++
			}

			e := newTestEngine(t, opts, table, src)
			for step := 0; step < 30; step++ {
				e.Step()

				ps := e.Particles()
				if len(ps) != len(src) {
					t.Fatalf("step %d: count = %d, want %d", step, len(ps), len(src))
				}

				var hist [species]int
				for i, p := range ps {
					hist[p.Species]++
					if p.Pos.X != p.Pos.X || p.Pos.Y != p.Pos.Y || p.Vel.X != p.Vel.X || p.Vel.Y != p.Vel.Y {
						t.Fatalf("step %d: particle %d has NaN state %+v", step, i, p)
					}
					if looping {
						if p.Pos.X < opts.Left || p.Pos.X >= opts.Right || p.Pos.Y < opts.Bottom || p.Pos.Y >= opts.Top {
							t.Fatalf("step %d: particle %d at %+v escaped the periodic domain", step, i, p.Pos)
						}
					} else {
						if p.Pos.X < opts.Left || p.Pos.X > opts.Right || p.Pos.Y < opts.Bottom || p.Pos.Y > opts.Top {
							t.Fatalf("step %d: particle %d at %+v escaped the world", step, i, p.Pos)
						}
					}
				}
				if hist != wantHist {
					t.Fatalf("step %d: species histogram %v, want %v", step, hist, wantHist)
				}
			}
		})
	}
}

func TestEngineDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	opts := Options{
		Left: -80, Right: 80, Bottom: -45, Top: 45,
		BinSize: 10, DT: 0.02, Friction: 2, CentralForce: 0.1, Workers: 1,
	}
	const species = 3
	table := conservationTable(rng, species)
	src := RandomParticles(rng, 300, species, opts)

	a := newTestEngine(t, opts, table, src)
	b := newTestEngine(t, opts, table, src)

	for step := 0; step < 20; step++ {
		a.Step()
		b.Step()
		if !reflect.DeepEqual(a.Particles(), b.Particles()) {
			t.Fatalf("step %d: runs diverged with a single worker", step)
		}
	}
}

func TestEngineFrictionDecay(t *testing.T) {
	opts := Options{
		Left: -50, Right: 50, Bottom: -50, Top: 50,
		BinSize: 10, DT: 0.1, Friction: 10, Workers: 1,
	}
	table := NewForceTable(1)

	e := newTestEngine(t, opts, table, []Particle{
		{Pos: Vec2{X: 0, Y: 0}, Vel: Vec2{X: 1, Y: 0}},
	})
	e.Step()

	// With no forces, one step scales velocity by exp(-dt*rate) = e^-1.
	want := float32(math.Exp(-1))
	p := e.Particles()[0]
	approx(t, p.Vel.X, want, 1e-5, "decayed vel X")
	approx(t, p.Pos.X, want*0.1, 1e-5, "advanced pos X")
}

func TestEnginePointerPerturbation(t *testing.T) {
	opts := Options{
		Left: -50, Right: 50, Bottom: -50, Top: 50,
		BinSize: 10, DT: 0.1, Workers: 1,
	}
	table := NewForceTable(1)

	e := newTestEngine(t, opts, table, []Particle{{Pos: Vec2{X: 0, Y: 0}}})

	e.SetPointer(Pointer{
		Origin:    Vec2{X: 0, Y: 0},
		TargetVel: Vec2{X: 5, Y: 0},
		Strength:  1,
		Radius:    10,
	})
	e.Step()

	p := e.Particles()[0]
	approx(t, p.Vel.X, 0.5, 1e-3, "vel X after pointer step")

	// After clearing, no further acceleration: velocity holds (no friction)
	e.ClearPointer()
	vel := p.Vel.X
	e.Step()
	p = e.Particles()[0]
	approx(t, p.Vel.X, vel, 1e-4, "vel X after clear")
}

func TestEngineValidation(t *testing.T) {
	goodOpts := Options{
		Left: -50, Right: 50, Bottom: -50, Top: 50,
		BinSize: 10, DT: 0.1,
	}
	goodTable := singleSpeciesTable(ForceDesc{Strength: 1, Radius: 5})

	tests := []struct {
		name      string
		mutate    func(*Options)
		table     *ForceTable
		particles []Particle
	}{
		{
			name:   "nil table",
			mutate: func(o *Options) {},
			table:  nil,
		},
		{
			name:   "zero species",
			mutate: func(o *Options) {},
			table:  NewForceTable(0),
		},
		{
			name:   "too many species",
			mutate: func(o *Options) {},
			table:  NewForceTable(MaxSpecies + 1),
		},
		{
			name:   "empty world",
			mutate: func(o *Options) { o.Right = o.Left },
			table:  goodTable,
		},
		{
			name:   "zero bin size",
			mutate: func(o *Options) { o.BinSize = 0 },
			table:  goodTable,
		},
		{
			name:   "zero dt",
			mutate: func(o *Options) { o.DT = 0 },
			table:  goodTable,
		},
		{
			name:   "radius exceeds bin size",
			mutate: func(o *Options) { o.BinSize = 4 },
			table:  goodTable,
		},
		{
			name:   "looping radius exceeds half extent",
			mutate: func(o *Options) { o.Looping = true; o.Bottom = -4; o.Top = 4; o.BinSize = 5 },
			table:  goodTable,
		},
		{
			name:      "particle species out of range",
			mutate:    func(o *Options) {},
			table:     goodTable,
			particles: []Particle{{Species: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := goodOpts
			tt.mutate(&opts)
			e, err := NewEngine(opts, tt.table, tt.particles)
			if err == nil {
				e.Close()
				t.Fatal("NewEngine accepted an invalid configuration")
			}
		})
	}
}

func TestEngineCoincidentParticles(t *testing.T) {
	opts := Options{
		Left: -50, Right: 50, Bottom: -50, Top: 50,
		BinSize: 10, DT: 0.1, Workers: 1,
	}
	table := singleSpeciesTable(ForceDesc{
		Strength: 10, Radius: 5,
		CollisionStrength: 20, CollisionRadius: 2,
	})

	// A stack of perfectly coincident particles must stay finite: coincident
	// pairs exert no force on each other.
	src := make([]Particle, 8)
	e := newTestEngine(t, opts, table, src)
	for step := 0; step < 5; step++ {
		e.Step()
		for i, p := range e.Particles() {
			if p.Pos.X != p.Pos.X || p.Vel.X != p.Vel.X {
				t.Fatalf("step %d: particle %d has NaN state %+v", step, i, p)
			}
		}
	}
}

func TestEngineBufferSwap(t *testing.T) {
	opts := Options{
		Left: -50, Right: 50, Bottom: -50, Top: 50,
		BinSize: 10, DT: 0.1, Workers: 1,
	}
	e := newTestEngine(t, opts, NewForceTable(1), make([]Particle, 4))

	before := &e.Particles()[0]
	e.Step()
	mid := &e.Particles()[0]
	if before == mid {
		t.Error("committed buffer did not change after one step")
	}
	e.Step()
	after := &e.Particles()[0]
	if mid == after {
		t.Error("committed buffer did not change after two steps")
	}
	if before != after {
		t.Error("double buffering should alternate between two arrays")
	}
}

func TestEngineBinOccupancy(t *testing.T) {
	opts := Options{
		Left: -50, Right: 50, Bottom: -50, Top: 50,
		BinSize: 10, DT: 0.1, Workers: 1,
	}
	src := make([]Particle, 10)
	for i := range src {
		src[i].Pos = Vec2{X: 1, Y: 1}
	}
	e := newTestEngine(t, opts, NewForceTable(1), src)

	if occ, max := e.BinOccupancy(); occ != 0 || max != 0 {
		t.Errorf("occupancy before first step = (%d, %d), want (0, 0)", occ, max)
	}

	e.Step()
	if occ, max := e.BinOccupancy(); occ != 1 || max != 10 {
		t.Errorf("occupancy = (%d, %d), want (1, 10)", occ, max)
	}
}
