package metrics

import (
	"math"
	"sync"

	"github.com/san-kum/flowsim/internal/dynamo"
	"github.com/san-kum/flowsim/internal/field"
)

// MaxDivergence is max |∂u/∂x + ∂v/∂y| using periodic central differences.
type MaxDivergence struct{ name string }

func NewMaxDivergence() *MaxDivergence { return &MaxDivergence{name: "max_divergence"} }

func (m *MaxDivergence) Name() string { return m.name }

func (m *MaxDivergence) Compute(f *field.VectorField) float64 {
	return maxAbsOver(f, func(x, y int) float64 {
		return ddx(f.U, f, x, y) + ddy(f.V, f, x, y)
	})
}

// MaxVorticity is max |∂v/∂x - ∂u/∂y| using periodic central differences.
type MaxVorticity struct{ name string }

func NewMaxVorticity() *MaxVorticity { return &MaxVorticity{name: "max_vorticity"} }

func (m *MaxVorticity) Name() string { return m.name }

func (m *MaxVorticity) Compute(f *field.VectorField) float64 {
	return maxAbsOver(f, func(x, y int) float64 {
		return ddx(f.V, f, x, y) - ddy(f.U, f, x, y)
	})
}

func ddx(g *field.Grid, f *field.VectorField, x, y int) float64 {
	dx, _ := f.Spacing()
	xp := (x + 1) % g.Nx
	xm := (x - 1 + g.Nx) % g.Nx
	return (g.At(xp, y) - g.At(xm, y)) / (2 * dx)
}

func ddy(g *field.Grid, f *field.VectorField, x, y int) float64 {
	_, dy := f.Spacing()
	yp := (y + 1) % g.Ny
	ym := (y - 1 + g.Ny) % g.Ny
	return (g.At(x, yp) - g.At(x, ym)) / (2 * dy)
}

func maxAbsOver(f *field.VectorField, fn func(x, y int) float64) float64 {
	var mu sync.Mutex
	best := 0.0
	dynamo.ParallelFor(f.Ny(), 16, func(start, end int) {
		local := 0.0
		for y := start; y < end; y++ {
			for x := 0; x < f.Nx(); x++ {
				local = math.Max(local, math.Abs(fn(x, y)))
			}
		}
		mu.Lock()
		best = math.Max(best, local)
		mu.Unlock()
	})
	return best
}
