package flow

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/flowsim/internal/dynamo"
)

const DefaultViscosity = 1.0 / 6.0

// Params binds a solver to a particle radius, particle count, domain and
// grid.
type Params struct {
	Radius    float64
	Np        int
	Lx, Ly    float64
	Nx, Ny    int
	Viscosity float64
}

// DefaultParams returns a=25, one particle, a 128x128 grid on a 128x128
// domain.
func DefaultParams() Params {
	return Params{
		Radius:    25,
		Np:        1,
		Lx:        128,
		Ly:        128,
		Nx:        128,
		Ny:        128,
		Viscosity: DefaultViscosity,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Radius <= 0:
		return fmt.Errorf("radius %g: %w", p.Radius, dynamo.ErrParameterBounds)
	case p.Np <= 0:
		return fmt.Errorf("particle count %d: %w", p.Np, dynamo.ErrParameterBounds)
	case p.Lx <= 0 || p.Ly <= 0:
		return fmt.Errorf("domain %gx%g: %w", p.Lx, p.Ly, dynamo.ErrParameterBounds)
	case p.Nx < 2 || p.Ny < 2:
		return fmt.Errorf("grid %dx%d: %w", p.Nx, p.Ny, dynamo.ErrParameterBounds)
	case p.Viscosity <= 0:
		return fmt.Errorf("viscosity %g: %w", p.Viscosity, dynamo.ErrParameterBounds)
	}
	return nil
}

// Sigma is the width of the Gaussian that mollifies each particle.
func (p Params) Sigma() float64 { return p.Radius / math.Sqrt(math.Pi) }

// VelocityLen is the length of the velocity buffer a solver expects.
func (p Params) VelocityLen() int { return dynamo.Dim * p.Nx * p.Ny }

func (p Params) checkBuffers(v, r, o []float64) error {
	if err := dynamo.CheckLen("velocity", v, p.VelocityLen()); err != nil {
		return err
	}
	if err := dynamo.CheckLen("positions", r, dynamo.Dim*p.Np); err != nil {
		return err
	}
	return dynamo.CheckLen("orientations", o, dynamo.Dim*p.Np)
}

type Solver interface {
	Name() string
	Params() Params
	// StressletV overwrites v with the velocity induced at every grid point
	// by particles at r with orientations o.
	StressletV(v, r, o []float64) error
}

var factories = map[string]func(Params) (Solver, error){
	"spectral": func(p Params) (Solver, error) { return NewSpectral(p) },
	"direct":   func(p Params) (Solver, error) { return NewDirect(p) },
}

// New constructs the named solver.
func New(name string, p Params) (Solver, error) {
	fn, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver: %s (available: %v)", name, Names())
	}
	return fn(p)
}

func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// stresslet returns the stresslet components of particle i.
func stresslet(o []float64, np, i int) (s1, s2 float64) {
	px, py := o[i], o[np+i]
	return px*px - 0.5, px * py
}
