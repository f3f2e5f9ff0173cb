package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/flowsim/internal/dynamo"
	"github.com/san-kum/flowsim/internal/export"
	"github.com/san-kum/flowsim/internal/field"
	"github.com/san-kum/flowsim/internal/flow"
	"github.com/san-kum/flowsim/internal/particle"
	"github.com/san-kum/flowsim/internal/storage"
	"github.com/san-kum/flowsim/internal/streamline"
)

// Trace computes the streamlines of the result's field with integ.
func (r *Result) Trace(ctx context.Context, integ dynamo.Integrator, opts streamline.Options) error {
	lines, err := streamline.Trace(ctx, r.Field, integ, opts)
	if err != nil {
		return err
	}
	r.Streamlines = lines
	return nil
}

// SVG renders the field, particles and any traced streamlines.
func (r *Result) SVG(title string, size int) string {
	opts := export.DefaultSVGOptions()
	opts.Title = title
	if size > 0 {
		opts.Size = size
	}
	return export.FlowToSVG(r.Field, r.Particles, r.Streamlines, opts)
}

// Metadata describes the result for persistence.
func (r *Result) Metadata() *storage.RunMetadata {
	meta := &storage.RunMetadata{
		Solver:    r.Solver,
		Radius:    r.Params.Radius,
		Viscosity: r.Params.Viscosity,
		Lx:        r.Params.Lx,
		Ly:        r.Params.Ly,
		Nx:        r.Params.Nx,
		Ny:        r.Params.Ny,
		Elapsed:   r.Elapsed,
		Metrics:   r.Metrics,
	}
	for i := 0; i < r.Particles.Np; i++ {
		x, y := r.Particles.Position(i)
		px, py := r.Particles.Orientation(i)
		sxx, sxy := r.Particles.Stresslet(i)
		meta.Particles = append(meta.Particles, storage.ParticleRecord{
			X: x, Y: y, Px: px, Py: py, Sxx: sxx, Sxy: sxy,
		})
	}
	return meta
}

// Restore rebuilds a result from a stored run so it can be re-rendered.
// Streamlines are not stored and have to be traced again.
func Restore(meta *storage.RunMetadata, v []float64) (*Result, error) {
	if len(meta.Particles) == 0 {
		return nil, fmt.Errorf("run %s has no particles: %w", meta.ID, dynamo.ErrInvalidState)
	}

	f, err := field.NewVectorField(v, meta.Nx, meta.Ny, meta.Lx, meta.Ly)
	if err != nil {
		return nil, err
	}

	set, err := particle.New(len(meta.Particles))
	if err != nil {
		return nil, err
	}
	for i, pr := range meta.Particles {
		set.Place(i, pr.X, pr.Y, pr.Px, pr.Py)
	}
	set.DeriveStresslet()

	return &Result{
		Solver: meta.Solver,
		Params: flow.Params{
			Radius:    meta.Radius,
			Np:        set.Np,
			Lx:        meta.Lx,
			Ly:        meta.Ly,
			Nx:        meta.Nx,
			Ny:        meta.Ny,
			Viscosity: meta.Viscosity,
		},
		Particles: set,
		Velocity:  v,
		Field:     f,
		Metrics:   meta.Metrics,
		Elapsed:   meta.Elapsed,
	}, nil
}
