package config

import "sort"

// Presets are named configurations selectable with --preset.
var Presets = map[string]*Config{
	"single": DefaultConfig(),
	"oblique": withParticles(DefaultConfig(),
		ParticleConfig{X: 64, Y: 64, Px: 0.7071067811865476, Py: 0.7071067811865476},
	),
	"pair": withParticles(DefaultConfig(),
		ParticleConfig{X: 40, Y: 64, Px: 1, Py: 0},
		ParticleConfig{X: 88, Y: 64, Px: 1, Py: 0},
	),
	"crossed": withParticles(DefaultConfig(),
		ParticleConfig{X: 44, Y: 64, Px: 1, Py: 0},
		ParticleConfig{X: 84, Y: 64, Px: 0, Py: 1},
	),
	"small":  withRadius(DefaultConfig(), 4),
	"direct": withSolver(DefaultConfig(), "direct"),
	"coarse": withGrid(DefaultConfig(), 32),
}

func withParticles(c *Config, ps ...ParticleConfig) *Config {
	c.Particles = ps
	return c
}

func withRadius(c *Config, a float64) *Config {
	c.Radius = a
	return c
}

func withSolver(c *Config, name string) *Config {
	c.Solver = name
	return c
}

func withGrid(c *Config, n int) *Config {
	c.Domain.Nx, c.Domain.Ny = n, n
	c.Domain.Lx, c.Domain.Ly = float64(n), float64(n)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Particles = append([]ParticleConfig(nil), cfg.Particles...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
