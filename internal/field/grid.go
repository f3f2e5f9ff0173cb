// Package field holds the reshaped views of the flat velocity buffer
// produced by the flow solver.
//
// Buffers are row-major with the y grid index selecting the row:
// element (x, y) of an Nx-by-Ny grid lives at index y*Nx + x. A velocity
// buffer of length 2*Nx*Ny stacks the x-component grid on top of the
// y-component grid.
package field

import (
	"fmt"
	"math"

	"github.com/san-kum/flowsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Grid is a scalar field on Nx columns and Ny rows. Data may alias the
// buffer it was reshaped from.
type Grid struct {
	Nx, Ny int
	Data   []float64
}

func NewGrid(nx, ny int) *Grid {
	return &Grid{Nx: nx, Ny: ny, Data: make([]float64, nx*ny)}
}

// Reshape wraps buf as an nx-by-ny grid without copying.
func Reshape(buf []float64, nx, ny int) (*Grid, error) {
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("grid %dx%d: %w", nx, ny, dynamo.ErrParameterBounds)
	}
	if err := dynamo.CheckLen("grid buffer", buf, nx*ny); err != nil {
		return nil, err
	}
	return &Grid{Nx: nx, Ny: ny, Data: buf}, nil
}

func (g *Grid) index(x, y int) int { return y*g.Nx + x }

func (g *Grid) At(x, y int) float64 { return g.Data[g.index(x, y)] }

func (g *Grid) Set(x, y int, v float64) { g.Data[g.index(x, y)] = v }

// Flatten returns a row-major copy of the grid.
func (g *Grid) Flatten() []float64 {
	out := make([]float64, len(g.Data))
	copy(out, g.Data)
	return out
}

// Row returns a copy of row y (values along x).
func (g *Grid) Row(y int) []float64 {
	out := make([]float64, g.Nx)
	copy(out, g.Data[y*g.Nx:(y+1)*g.Nx])
	return out
}

// Column returns a copy of column x (values along y).
func (g *Grid) Column(x int) []float64 {
	out := make([]float64, g.Ny)
	for y := 0; y < g.Ny; y++ {
		out[y] = g.At(x, y)
	}
	return out
}

func (g *Grid) MinMax() (lo, hi float64) {
	if len(g.Data) == 0 {
		return 0, 0
	}
	return floats.Min(g.Data), floats.Max(g.Data)
}

func (g *Grid) Mean() float64 {
	if len(g.Data) == 0 {
		return 0
	}
	return stat.Mean(g.Data, nil)
}

// Validate reports the first non-finite cell.
func (g *Grid) Validate() error {
	for i, v := range g.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &dynamo.FieldError{X: i % g.Nx, Y: i / g.Nx, Wrapped: dynamo.ErrInvalidState}
		}
	}
	return nil
}
