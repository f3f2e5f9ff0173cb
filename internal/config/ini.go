package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/gcfg.v1"
)

// iniFile mirrors Config in git-config syntax:
//
//	[flow]
//	solver = spectral
//	radius = 25
//	[domain]
//	nx = 128
//	[particle "a"]
//	x = 64
//	px = 1
//
// Particles are ordered by section name.
type iniFile struct {
	Flow struct {
		Solver       string
		Radius       float64
		Viscosity    float64
		ParticleFile string
	}
	Domain struct {
		Lx, Ly float64
		Nx, Ny int
	}
	Particle map[string]*struct {
		X, Y, Px, Py float64
	}
	Render struct {
		Density     float64
		Integrator  string
		Size        int
		Streamlines string
	}
}

func loadINI(path string) (*Config, error) {
	var f iniFile
	if err := gcfg.ReadFileInto(&f, path); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if f.Flow.Solver != "" {
		cfg.Solver = f.Flow.Solver
	}
	if f.Flow.Radius != 0 {
		cfg.Radius = f.Flow.Radius
	}
	if f.Flow.Viscosity != 0 {
		cfg.Viscosity = f.Flow.Viscosity
	}
	if f.Domain.Lx != 0 {
		cfg.Domain.Lx = f.Domain.Lx
	}
	if f.Domain.Ly != 0 {
		cfg.Domain.Ly = f.Domain.Ly
	}
	if f.Domain.Nx != 0 {
		cfg.Domain.Nx = f.Domain.Nx
	}
	if f.Domain.Ny != 0 {
		cfg.Domain.Ny = f.Domain.Ny
	}
	if f.Render.Density != 0 {
		cfg.Render.Density = f.Render.Density
	}
	if f.Render.Integrator != "" {
		cfg.Render.Integrator = f.Render.Integrator
	}
	if f.Render.Size != 0 {
		cfg.Render.Size = f.Render.Size
	}
	if f.Render.Streamlines != "" {
		on, err := parseBool(f.Render.Streamlines)
		if err != nil {
			return nil, fmt.Errorf("render.streamlines: %w", err)
		}
		cfg.Render.Streamlines = on
	}

	names := make([]string, 0, len(f.Particle))
	for name := range f.Particle {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := f.Particle[name]
		cfg.Particles = append(cfg.Particles, ParticleConfig{X: p.X, Y: p.Y, Px: p.Px, Py: p.Py})
	}

	cfg.ParticleFile = f.Flow.ParticleFile
	if err := cfg.resolveParticleFile(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}
