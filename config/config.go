// Package config provides configuration loading and access for the
// simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// MaxSpecies bounds the species list (and therefore the force matrix).
const MaxSpecies = 32

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Species    []SpeciesConfig  `yaml:"species"`
	Pointer    PointerConfig    `yaml:"pointer"`
	Screen     ScreenConfig     `yaml:"screen"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Workers sets the simulation worker pool size (0 = GOMAXPROCS).
	Workers int `yaml:"workers"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds the engine parameters.
type SimulationConfig struct {
	ParticleCount   int       `yaml:"particle_count"`
	Size            []float64 `yaml:"size"`    // [width, height], world rect centered on the origin
	DT              float64   `yaml:"dt"`
	BinSize         float64   `yaml:"bin_size"`
	Friction        float64   `yaml:"friction"`       // velocity decay rate, not a per-step multiplier
	CentralForce    float64   `yaml:"central_force"`
	SymmetricForces bool      `yaml:"symmetric_forces"`
	LoopingBorders  bool      `yaml:"looping_borders"`
}

// SpeciesConfig holds one species: a display color (opaque to the engine,
// passed through to the renderer) and its force matrix row.
type SpeciesConfig struct {
	Color  []uint8       `yaml:"color"`  // r, g, b, a
	Forces []ForceConfig `yaml:"forces"` // one entry per species
}

// ForceConfig is one force matrix entry.
type ForceConfig struct {
	Strength          float64 `yaml:"strength"`
	Radius            float64 `yaml:"radius"`
	CollisionStrength float64 `yaml:"collision_strength"`
	CollisionRadius   float64 `yaml:"collision_radius"`
}

// PointerConfig holds defaults for the interactive pointer force.
type PointerConfig struct {
	Strength float64 `yaml:"strength"`
	Radius   float64 `yaml:"radius"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Left, Right float32 // world rect, centered on the origin
	Bottom, Top float32

	DT32           float32
	BinSize32      float32
	Friction32     float32
	CentralForce32 float32

	MaxRadius float32 // largest interaction/collision radius in the matrix
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults, then validates it. If path is empty, only embedded defaults
// are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Simulation.SymmetricForces {
		cfg.symmetrizeForces()
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate reports the first configuration error. Validation failures are
// recoverable at the call site: the simulation refuses to start rather
// than silently clamping values that would change physical behavior.
func (c *Config) Validate() error {
	s := &c.Simulation

	if s.ParticleCount <= 0 {
		return fmt.Errorf("config: particle_count must be positive, got %d", s.ParticleCount)
	}
	if len(s.Size) != 2 {
		return fmt.Errorf("config: size must be [width, height], got %d values", len(s.Size))
	}
	if s.Size[0] <= 0 || s.Size[1] <= 0 {
		return fmt.Errorf("config: size must be positive, got %gx%g", s.Size[0], s.Size[1])
	}
	if s.DT <= 0 {
		return fmt.Errorf("config: dt must be positive, got %g", s.DT)
	}
	if s.BinSize <= 0 {
		return fmt.Errorf("config: bin_size must be positive, got %g", s.BinSize)
	}

	n := len(c.Species)
	if n < 1 || n > MaxSpecies {
		return fmt.Errorf("config: species count %d out of range [1, %d]", n, MaxSpecies)
	}

	var maxRadius float64
	for i, sp := range c.Species {
		if len(sp.Forces) != n {
			return fmt.Errorf("config: species %d has %d force entries, want %d", i, len(sp.Forces), n)
		}
		if len(sp.Color) != 4 {
			return fmt.Errorf("config: species %d color must be [r,g,b,a], got %d values", i, len(sp.Color))
		}
		for j, f := range sp.Forces {
			if f.Radius < 0 || f.CollisionRadius < 0 {
				return fmt.Errorf("config: species %d->%d has negative radius", i, j)
			}
			if f.Radius > maxRadius {
				maxRadius = f.Radius
			}
			if f.CollisionRadius > maxRadius {
				maxRadius = f.CollisionRadius
			}
		}
	}

	if maxRadius > s.BinSize {
		return fmt.Errorf("config: interaction radius %g exceeds bin_size %g; the neighbor search would miss pairs", maxRadius, s.BinSize)
	}
	if s.LoopingBorders {
		halfExtent := s.Size[0] / 2
		if s.Size[1] < s.Size[0] {
			halfExtent = s.Size[1] / 2
		}
		if maxRadius >= halfExtent {
			return fmt.Errorf("config: interaction radius %g must be below half the world extent %g with looping_borders", maxRadius, halfExtent)
		}
	}

	return nil
}

// symmetrizeForces mirrors the upper triangle of the force matrix onto the
// lower so the interaction of each pair is identical in both directions.
func (c *Config) symmetrizeForces() {
	for a := range c.Species {
		for b := a + 1; b < len(c.Species); b++ {
			c.Species[b].Forces[a] = c.Species[a].Forces[b]
		}
	}
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	s := &c.Simulation

	halfW := float32(s.Size[0] / 2)
	halfH := float32(s.Size[1] / 2)
	c.Derived.Left = -halfW
	c.Derived.Right = halfW
	c.Derived.Bottom = -halfH
	c.Derived.Top = halfH

	c.Derived.DT32 = float32(s.DT)
	c.Derived.BinSize32 = float32(s.BinSize)
	c.Derived.Friction32 = float32(s.Friction)
	c.Derived.CentralForce32 = float32(s.CentralForce)

	var maxRadius float64
	for _, sp := range c.Species {
		for _, f := range sp.Forces {
			if f.Radius > maxRadius {
				maxRadius = f.Radius
			}
			if f.CollisionRadius > maxRadius {
				maxRadius = f.CollisionRadius
			}
		}
	}
	c.Derived.MaxRadius = float32(maxRadius)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
