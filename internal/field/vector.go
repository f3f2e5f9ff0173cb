package field

import (
	"fmt"
	"math"

	"github.com/san-kum/flowsim/internal/dynamo"
)

// VectorField is a 2D velocity field on a periodic Lx-by-Ly domain. Grid
// point (i, j) sits at physical position (i*Lx/Nx, j*Ly/Ny).
type VectorField struct {
	U, V   *Grid
	Lx, Ly float64
}

// Split cuts a velocity buffer of length 2*nx*ny into its x- and
// y-component grids. Both grids alias v.
func Split(v []float64, nx, ny int) (*Grid, *Grid, error) {
	if err := dynamo.CheckLen("velocity buffer", v, dynamo.Dim*nx*ny); err != nil {
		return nil, nil, err
	}
	n := nx * ny
	u, err := Reshape(v[0:n], nx, ny)
	if err != nil {
		return nil, nil, err
	}
	w, err := Reshape(v[n:2*n], nx, ny)
	if err != nil {
		return nil, nil, err
	}
	return u, w, nil
}

func NewVectorField(v []float64, nx, ny int, lx, ly float64) (*VectorField, error) {
	if lx <= 0 || ly <= 0 {
		return nil, fmt.Errorf("domain %gx%g: %w", lx, ly, dynamo.ErrParameterBounds)
	}
	u, w, err := Split(v, nx, ny)
	if err != nil {
		return nil, err
	}
	return &VectorField{U: u, V: w, Lx: lx, Ly: ly}, nil
}

func (f *VectorField) Nx() int { return f.U.Nx }
func (f *VectorField) Ny() int { return f.U.Ny }

// Spacing returns the grid spacing along x and y.
func (f *VectorField) Spacing() (dx, dy float64) {
	return f.Lx / float64(f.U.Nx), f.Ly / float64(f.U.Ny)
}

// Buffer returns the stacked velocity buffer (u grid then v grid).
func (f *VectorField) Buffer() []float64 {
	out := make([]float64, 0, len(f.U.Data)+len(f.V.Data))
	out = append(out, f.U.Data...)
	return append(out, f.V.Data...)
}

// Speed returns the per-cell magnitude sqrt(u^2 + v^2).
func (f *VectorField) Speed() *Grid {
	s := NewGrid(f.U.Nx, f.U.Ny)
	for i := range s.Data {
		s.Data[i] = math.Hypot(f.U.Data[i], f.V.Data[i])
	}
	return s
}

func (f *VectorField) Validate() error {
	if err := f.U.Validate(); err != nil {
		return fmt.Errorf("vx: %w", err)
	}
	if err := f.V.Validate(); err != nil {
		return fmt.Errorf("vy: %w", err)
	}
	return nil
}

// Sample bilinearly interpolates the field at physical position (x, y),
// wrapping periodically.
func (f *VectorField) Sample(x, y float64) (u, v float64) {
	dx, dy := f.Spacing()
	gx := wrap(x, f.Lx) / dx
	gy := wrap(y, f.Ly) / dy

	i0 := int(math.Floor(gx))
	j0 := int(math.Floor(gy))
	tx := gx - float64(i0)
	ty := gy - float64(j0)

	nx, ny := f.U.Nx, f.U.Ny
	i0 %= nx
	j0 %= ny
	i1 := (i0 + 1) % nx
	j1 := (j0 + 1) % ny

	lerp := func(g *Grid) float64 {
		a := g.At(i0, j0)*(1-tx) + g.At(i1, j0)*tx
		b := g.At(i0, j1)*(1-tx) + g.At(i1, j1)*tx
		return a*(1-ty) + b*ty
	}
	return lerp(f.U), lerp(f.V)
}

func wrap(x, l float64) float64 {
	x = math.Mod(x, l)
	if x < 0 {
		x += l
	}
	return x
}
