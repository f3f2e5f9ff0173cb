package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/flowsim/internal/dynamo"
	"github.com/san-kum/flowsim/internal/field"
	"gonum.org/v1/gonum/stat"
)

// EnergySpectrum bins ½|û(k)|² by integer shell |m| where k = 2πm/L. Entry m
// collects the modes with round(|m|) == m, so the slice extends to the grid
// corner.
func EnergySpectrum(f *field.VectorField) []float64 {
	nx, ny := f.Nx(), f.Ny()
	uh := fft.FFT2Real(rows(f.U))
	vh := fft.FFT2Real(rows(f.V))

	shells := int(math.Hypot(float64(nx/2), float64(ny/2))) + 1
	es := make([]float64, shells)
	norm := 1 / float64(nx*ny) / float64(nx*ny)

	for j := 0; j < ny; j++ {
		my := signedIndex(j, ny)
		for i := 0; i < nx; i++ {
			mx := signedIndex(i, nx)
			m := int(math.Round(math.Hypot(float64(mx), float64(my))))
			if m >= shells {
				m = shells - 1
			}
			u, v := cmplx.Abs(uh[j][i]), cmplx.Abs(vh[j][i])
			es[m] += 0.5 * (u*u + v*v) * norm
		}
	}
	return es
}

// SpectralSlope fits log E = a + b log m over shells lo..hi inclusive,
// skipping empty shells, and returns b.
func SpectralSlope(es []float64, lo, hi int) (float64, error) {
	if lo < 1 || hi >= len(es) || hi <= lo {
		return 0, fmt.Errorf("shell range [%d, %d] of %d: %w", lo, hi, len(es), dynamo.ErrParameterBounds)
	}

	var xs, ys []float64
	for m := lo; m <= hi; m++ {
		if es[m] <= 0 {
			continue
		}
		xs = append(xs, math.Log(float64(m)))
		ys = append(ys, math.Log(es[m]))
	}

	if len(xs) < 2 {
		return 0, fmt.Errorf("not enough nonzero shells in [%d, %d]: %w", lo, hi, dynamo.ErrInvalidState)
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return slope, nil
}

func rows(g *field.Grid) [][]float64 {
	out := make([][]float64, g.Ny)
	for y := range out {
		out[y] = g.Row(y)
	}
	return out
}

func signedIndex(i, n int) int {
	if i > n/2 {
		return i - n
	}
	return i
}
