// Package streamline traces evenly spaced streamlines through a velocity
// field.
//
// Seeding follows the usual density-mask scheme: the domain is covered by a
// coarse mask of 30*Density cells per axis, seeds are taken from unoccupied
// cells in a spiral from the boundary inwards, and each streamline is
// integrated in both directions until it leaves the domain, stagnates,
// reaches MaxLength or runs into a cell claimed by another streamline.
// Streamlines shorter than MinLength are discarded and release their cells.
package streamline

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/flowsim/internal/dynamo"
	"github.com/san-kum/flowsim/internal/field"
)

type Point struct{ X, Y float64 }

type Line struct {
	Points []Point
	// Arrow is the index of the segment that carries the direction marker.
	Arrow int
}

type Options struct {
	Density float64
	// MinLength and MaxLength are fractions of the domain size.
	MinLength float64
	MaxLength float64
	// StepFraction is the integration step as a fraction of a mask cell.
	// Adaptive integrators never step further than this.
	StepFraction float64
	// Tolerance is the local error bound handed to adaptive integrators.
	Tolerance float64
}

func DefaultOptions() Options {
	return Options{
		Density:      2,
		MinLength:    0.1,
		MaxLength:    4.0,
		StepFraction: 0.25,
		Tolerance:    1e-6,
	}
}

func (o Options) Validate() error {
	if o.Density <= 0 || o.MinLength < 0 || o.MaxLength <= o.MinLength || o.StepFraction <= 0 || o.StepFraction > 1 || o.Tolerance <= 0 {
		return fmt.Errorf("streamline options %+v: %w", o, dynamo.ErrParameterBounds)
	}
	return nil
}

type mask struct {
	nx, ny   int
	w, h     float64
	occupied []int // owner line id + 1, 0 when free
}

func newMask(nx, ny int, w, h float64) *mask {
	return &mask{nx: nx, ny: ny, w: w, h: h, occupied: make([]int, nx*ny)}
}

func (m *mask) cell(p Point) (int, int) {
	i := int(p.X / m.w * float64(m.nx))
	j := int(p.Y / m.h * float64(m.ny))
	if i >= m.nx {
		i = m.nx - 1
	}
	if j >= m.ny {
		j = m.ny - 1
	}
	return i, j
}

func (m *mask) center(i, j int) Point {
	return Point{
		X: (float64(i) + 0.5) * m.w / float64(m.nx),
		Y: (float64(j) + 0.5) * m.h / float64(m.ny),
	}
}

// Trace computes streamlines through f with the given integrator.
func Trace(ctx context.Context, f *field.VectorField, integ dynamo.Integrator, opts Options) ([]Line, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	dx, dy := f.Spacing()
	w := float64(f.Nx()-1) * dx
	h := float64(f.Ny()-1) * dy
	mnx := int(math.Round(30 * opts.Density))
	mny := mnx
	m := newMask(mnx, mny, w, h)

	ds := opts.StepFraction * math.Min(w/float64(mnx), h/float64(mny))
	size := math.Max(w, h)
	maxLen := opts.MaxLength * size / 2

	forward := NewTracerSystem(f, +1)
	backward := NewTracerSystem(f, -1)

	var lines []Line
	for _, c := range spiral(mnx, mny) {
		if err := ctx.Err(); err != nil {
			return lines, err
		}
		if m.occupied[c[1]*mnx+c[0]] != 0 {
			continue
		}

		id := len(lines) + 1
		seed := m.center(c[0], c[1])
		claimed := []int{c[1]*mnx + c[0]}
		m.occupied[claimed[0]] = id

		back, cb, lb := integrate(backward, integ, seed, ds, maxLen, opts.Tolerance, m, id)
		fwd, cf, lf := integrate(forward, integ, seed, ds, maxLen, opts.Tolerance, m, id)
		claimed = append(claimed, cb...)
		claimed = append(claimed, cf...)

		if lb+lf < opts.MinLength*size {
			for _, k := range claimed {
				m.occupied[k] = 0
			}
			continue
		}

		pts := make([]Point, 0, len(back)+len(fwd)+1)
		for i := len(back) - 1; i >= 0; i-- {
			pts = append(pts, back[i])
		}
		pts = append(pts, seed)
		pts = append(pts, fwd...)

		lines = append(lines, Line{Points: pts, Arrow: arrowSegment(pts)})
	}
	return lines, nil
}

// minStepDivisor bounds how far an adaptive integrator may shrink the step
// below ds.
const minStepDivisor = 16

// integrate follows sys from seed until it has covered maxLen, claiming mask
// cells for line id. Steps are at most ds long. An adaptive integrator picks
// its own step size within [ds/minStepDivisor, ds]. Systems implementing
// dynamo.Stopper end the line when they report a stop. It returns the points
// after seed, the cells it claimed and its arc length.
func integrate(sys dynamo.System, integ dynamo.Integrator, seed Point, ds, maxLen, tol float64, m *mask, id int) ([]Point, []int, float64) {
	var (
		pts     []Point
		claimed []int
		length  float64
	)
	stopper, _ := sys.(dynamo.Stopper)
	adaptive, _ := integ.(dynamo.AdaptiveIntegrator)

	x := dynamo.State{seed.X, seed.Y}
	ci, cj := m.cell(seed)
	s, h := 0.0, ds
	maxIter := minStepDivisor*int(maxLen/ds) + 1

	for iter := 0; iter < maxIter && length < maxLen; iter++ {
		var next dynamo.State
		if adaptive != nil {
			var suggested float64
			var err error
			next, suggested, err = adaptive.StepAdaptive(sys, x, s, h, tol)
			if err != nil {
				break
			}
			s += h
			h = math.Max(ds/minStepDivisor, math.Min(suggested, ds))
		} else {
			next = integ.Step(sys, x, s, ds)
			s += ds
		}
		if stopper != nil && stopper.Stop(next) {
			break
		}
		p := Point{next[0], next[1]}
		i, j := m.cell(p)
		if i != ci || j != cj {
			k := j*m.nx + i
			if m.occupied[k] != 0 && m.occupied[k] != id {
				break
			}
			if m.occupied[k] == 0 {
				m.occupied[k] = id
				claimed = append(claimed, k)
			}
			ci, cj = i, j
		}
		seg := next.Sub(x).Norm()
		if seg == 0 {
			break
		}
		length += seg
		pts = append(pts, p)
		x = next
	}
	return pts, claimed, length
}

// arrowSegment picks the segment at half the arc length.
func arrowSegment(pts []Point) int {
	if len(pts) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	acc := 0.0
	for i := 1; i < len(pts); i++ {
		acc += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
		if acc >= total/2 {
			return i - 1
		}
	}
	return len(pts) - 2
}

// spiral lists mask cells from the outer ring inwards.
func spiral(nx, ny int) [][2]int {
	out := make([][2]int, 0, nx*ny)
	x0, y0, x1, y1 := 0, 0, nx-1, ny-1
	for x0 <= x1 && y0 <= y1 {
		for i := x0; i <= x1; i++ {
			out = append(out, [2]int{i, y0})
		}
		for j := y0 + 1; j <= y1; j++ {
			out = append(out, [2]int{x1, j})
		}
		if y1 > y0 {
			for i := x1 - 1; i >= x0; i-- {
				out = append(out, [2]int{i, y1})
			}
		}
		if x1 > x0 {
			for j := y1 - 1; j > y0; j-- {
				out = append(out, [2]int{x0, j})
			}
		}
		x0++
		y0++
		x1--
		y1--
	}
	return out
}
