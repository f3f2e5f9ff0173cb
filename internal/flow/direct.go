package flow

import (
	"math"

	"github.com/san-kum/flowsim/internal/dynamo"
)

// Direct sums the regularised free-space stresslet
//
//	u(x) = x (x·S x) / (2πη (|x|² + σ²)²)
//
// over all particles, using the minimum-image separation on the periodic
// domain. It ignores periodic images beyond the nearest one.
type Direct struct {
	params Params
}

func NewDirect(p Params) (*Direct, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Direct{params: p}, nil
}

func (d *Direct) Name() string   { return "direct" }
func (d *Direct) Params() Params { return d.params }

func (d *Direct) StressletV(v, r, o []float64) error {
	p := d.params
	if err := p.checkBuffers(v, r, o); err != nil {
		return err
	}

	dx := p.Lx / float64(p.Nx)
	dy := p.Ly / float64(p.Ny)
	eps2 := p.Sigma() * p.Sigma()
	pre := 1.0 / (2 * math.Pi * p.Viscosity)
	n := p.Nx * p.Ny

	dynamo.ParallelFor(p.Ny, 8, func(start, end int) {
		for j := start; j < end; j++ {
			y := float64(j) * dy
			for i := 0; i < p.Nx; i++ {
				x := float64(i) * dx
				var ux, uy float64
				for k := 0; k < p.Np; k++ {
					s1, s2 := stresslet(o, p.Np, k)
					rx := minImage(x-r[k], p.Lx)
					ry := minImage(y-r[p.Np+k], p.Ly)
					r2 := rx*rx + ry*ry
					xsx := s1*(rx*rx-ry*ry) + 2*s2*rx*ry
					den := (r2 + eps2) * (r2 + eps2)
					ux += rx * xsx / den
					uy += ry * xsx / den
				}
				v[j*p.Nx+i] = pre * ux
				v[n+j*p.Nx+i] = pre * uy
			}
		}
	})
	return nil
}

func minImage(d, l float64) float64 {
	return d - l*math.Round(d/l)
}
