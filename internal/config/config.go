package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/flowsim/internal/flow"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRadius    = 25.0
	DefaultParticles = 1
	DefaultGrid      = 128
	DefaultDomain    = 128.0
	DefaultSolver    = "spectral"
	DefaultDensity   = 2.0
	DefaultSVGSize   = 512
)

type Config struct {
	Solver    string           `yaml:"solver"`
	Radius    float64          `yaml:"radius"`
	Viscosity float64          `yaml:"viscosity"`
	Domain    DomainConfig     `yaml:"domain"`
	Particles []ParticleConfig `yaml:"particles"`
	Render    RenderConfig     `yaml:"render"`

	// ParticleFile names a text table read by LoadParticleTable when
	// Particles is empty. Relative paths are resolved against the config file.
	ParticleFile string `yaml:"particle_file,omitempty"`
}

type DomainConfig struct {
	Lx float64 `yaml:"lx"`
	Ly float64 `yaml:"ly"`
	Nx int     `yaml:"nx"`
	Ny int     `yaml:"ny"`
}

// ParticleConfig places one particle. An empty particle list means a single
// particle at the grid centre oriented along x.
type ParticleConfig struct {
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
	Px float64 `yaml:"px"`
	Py float64 `yaml:"py"`
}

type RenderConfig struct {
	Density     float64 `yaml:"density"`
	Integrator  string  `yaml:"integrator"`
	Size        int     `yaml:"size"`
	Streamlines bool    `yaml:"streamlines"`
}

func DefaultConfig() *Config {
	return &Config{
		Solver:    DefaultSolver,
		Radius:    DefaultRadius,
		Viscosity: flow.DefaultViscosity,
		Domain: DomainConfig{
			Lx: DefaultDomain,
			Ly: DefaultDomain,
			Nx: DefaultGrid,
			Ny: DefaultGrid,
		},
		Render: RenderConfig{
			Density:     DefaultDensity,
			Integrator:  "rk4",
			Size:        DefaultSVGSize,
			Streamlines: true,
		},
	}
}

// Load reads a YAML file, or a git-config style file when the extension is
// .ini or .gcfg, on top of DefaultConfig.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".gcfg":
		return loadINI(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.resolveParticleFile(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolveParticleFile(dir string) error {
	if c.ParticleFile == "" || len(c.Particles) > 0 {
		return nil
	}
	path := c.ParticleFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	ps, err := LoadParticleTable(path)
	if err != nil {
		return err
	}
	c.Particles = ps
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// NumParticles is the particle count the configuration resolves to.
func (c *Config) NumParticles() int {
	if len(c.Particles) == 0 {
		return DefaultParticles
	}
	return len(c.Particles)
}

// FlowParams converts the configuration into solver parameters.
func (c *Config) FlowParams() flow.Params {
	return flow.Params{
		Radius:    c.Radius,
		Np:        c.NumParticles(),
		Lx:        c.Domain.Lx,
		Ly:        c.Domain.Ly,
		Nx:        c.Domain.Nx,
		Ny:        c.Domain.Ny,
		Viscosity: c.Viscosity,
	}
}

func (c *Config) Validate() error {
	if err := c.FlowParams().Validate(); err != nil {
		return err
	}
	if c.Render.Density <= 0 {
		return fmt.Errorf("render density must be positive, got %g", c.Render.Density)
	}
	if c.Render.Size <= 0 {
		return fmt.Errorf("render size must be positive, got %d", c.Render.Size)
	}
	return nil
}
