package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Simulation.ParticleCount <= 0 {
		t.Errorf("particle_count = %d, want positive", cfg.Simulation.ParticleCount)
	}
	if len(cfg.Species) != 3 {
		t.Errorf("species count = %d, want 3", len(cfg.Species))
	}
	for i, sp := range cfg.Species {
		if len(sp.Forces) != len(cfg.Species) {
			t.Errorf("species %d has %d force entries", i, len(sp.Forces))
		}
		if len(sp.Color) != 4 {
			t.Errorf("species %d color has %d components", i, len(sp.Color))
		}
	}

	// World rect is centered on the origin
	d := cfg.Derived
	if d.Left != -d.Right || d.Bottom != -d.Top {
		t.Errorf("derived rect not centered: [%g,%g]x[%g,%g]", d.Left, d.Right, d.Bottom, d.Top)
	}
	if want := float32(cfg.Simulation.Size[0] / 2); d.Right != want {
		t.Errorf("derived right = %g, want %g", d.Right, want)
	}
	if d.MaxRadius <= 0 || float64(d.MaxRadius) > cfg.Simulation.BinSize {
		t.Errorf("derived max radius = %g with bin_size %g", d.MaxRadius, cfg.Simulation.BinSize)
	}
	if d.DT32 != float32(cfg.Simulation.DT) {
		t.Errorf("derived dt = %g, want %g", d.DT32, cfg.Simulation.DT)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	user := []byte("simulation:\n  particle_count: 123\n  friction: 2.5\n")
	if err := os.WriteFile(path, user, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// User values win, everything else keeps its default
	if cfg.Simulation.ParticleCount != 123 {
		t.Errorf("particle_count = %d, want 123", cfg.Simulation.ParticleCount)
	}
	if cfg.Simulation.Friction != 2.5 {
		t.Errorf("friction = %g, want 2.5", cfg.Simulation.Friction)
	}
	if len(cfg.Species) != 3 {
		t.Errorf("species count = %d, want defaults to survive the merge", len(cfg.Species))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load accepted a missing config file")
	}
}

func mustDefaults(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	return cfg
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero particle count", func(c *Config) { c.Simulation.ParticleCount = 0 }},
		{"size wrong length", func(c *Config) { c.Simulation.Size = []float64{100} }},
		{"negative size", func(c *Config) { c.Simulation.Size = []float64{-100, 50} }},
		{"zero dt", func(c *Config) { c.Simulation.DT = 0 }},
		{"zero bin size", func(c *Config) { c.Simulation.BinSize = 0 }},
		{"no species", func(c *Config) { c.Species = nil }},
		{"ragged force row", func(c *Config) { c.Species[1].Forces = c.Species[1].Forces[:1] }},
		{"bad color", func(c *Config) { c.Species[0].Color = []uint8{255, 0, 0} }},
		{"negative radius", func(c *Config) { c.Species[0].Forces[0].Radius = -1 }},
		{"radius exceeds bin size", func(c *Config) { c.Species[0].Forces[0].Radius = c.Simulation.BinSize + 1 }},
		{"looping radius exceeds half extent", func(c *Config) {
			c.Simulation.LoopingBorders = true
			c.Simulation.Size = []float64{70, 70}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := mustDefaults(t)
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}

func TestSymmetrizeForces(t *testing.T) {
	cfg := mustDefaults(t)
	cfg.symmetrizeForces()

	for a := range cfg.Species {
		for b := range cfg.Species {
			if cfg.Species[a].Forces[b] != cfg.Species[b].Forces[a] {
				t.Errorf("forces[%d][%d] != forces[%d][%d] after symmetrize", a, b, b, a)
			}
		}
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := mustDefaults(t)
	cfg.Simulation.ParticleCount = 777

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if back.Simulation.ParticleCount != 777 {
		t.Errorf("round-tripped particle_count = %d, want 777", back.Simulation.ParticleCount)
	}
	if len(back.Species) != len(cfg.Species) {
		t.Errorf("round-tripped species count = %d, want %d", len(back.Species), len(cfg.Species))
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	old := global
	global = nil
	defer func() {
		global = old
		if recover() == nil {
			t.Error("Cfg did not panic before Init")
		}
	}()
	Cfg()
}
