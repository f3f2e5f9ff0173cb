package flow

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/flowsim/internal/dynamo"
)

// Spectral solves the periodic Stokes problem in Fourier space. Each
// stresslet contributes a force density f = -S·∇δσ where δσ is a Gaussian of
// width Params.Sigma; the velocity is the Stokes projection
// (I - k k^T/|k|^2) f / (η |k|^2). The mean flow and Nyquist modes are zero.
type Spectral struct {
	params Params
	kx, ky []float64
	gauss  [][]float64
}

func NewSpectral(p Params) (*Spectral, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Spectral{
		params: p,
		kx:     wavenumbers(p.Nx, p.Lx),
		ky:     wavenumbers(p.Ny, p.Ly),
		gauss:  make([][]float64, p.Ny),
	}
	sig2 := p.Sigma() * p.Sigma()
	for j := range s.gauss {
		s.gauss[j] = make([]float64, p.Nx)
		for i := range s.gauss[j] {
			k2 := s.kx[i]*s.kx[i] + s.ky[j]*s.ky[j]
			s.gauss[j][i] = math.Exp(-0.5 * k2 * sig2)
		}
	}
	return s, nil
}

// wavenumbers returns 2πm/L in FFT order, with the Nyquist entry of an even
// grid set to NaN so callers can skip it.
func wavenumbers(n int, l float64) []float64 {
	k := make([]float64, n)
	for i := range k {
		m := i
		if i > n/2 || (i == n/2 && n%2 == 0) {
			m = i - n
		}
		k[i] = 2 * math.Pi * float64(m) / l
	}
	if n%2 == 0 {
		k[n/2] = math.NaN()
	}
	return k
}

func (s *Spectral) Name() string   { return "spectral" }
func (s *Spectral) Params() Params { return s.params }

func (s *Spectral) StressletV(v, r, o []float64) error {
	p := s.params
	if err := p.checkBuffers(v, r, o); err != nil {
		return err
	}

	uh := make([][]complex128, p.Ny)
	vh := make([][]complex128, p.Ny)
	for j := range uh {
		uh[j] = make([]complex128, p.Nx)
		vh[j] = make([]complex128, p.Nx)
	}

	// Fourier amplitudes scale by NxNy/(LxLy) so that IFFT2, which divides by
	// NxNy, returns the field sampled on the grid.
	norm := float64(p.Nx*p.Ny) / (p.Lx * p.Ly) / p.Viscosity

	dynamo.ParallelFor(p.Ny, 8, func(start, end int) {
		for j := start; j < end; j++ {
			ky := s.ky[j]
			if math.IsNaN(ky) {
				continue
			}
			for i, kx := range s.kx {
				if math.IsNaN(kx) {
					continue
				}
				k2 := kx*kx + ky*ky
				if k2 == 0 {
					continue
				}

				var fx, fy complex128
				for n := 0; n < p.Np; n++ {
					s1, s2 := stresslet(o, p.Np, n)
					phase := cmplx.Exp(complex(0, -(kx*r[n] + ky*r[p.Np+n])))
					fx += complex(kx*s1+ky*s2, 0) * phase
					fy += complex(kx*s2-ky*s1, 0) * phase
				}
				amp := complex(0, -s.gauss[j][i]*norm/k2)
				fx *= amp
				fy *= amp

				kf := (complex(kx, 0)*fx + complex(ky, 0)*fy) / complex(k2, 0)
				uh[j][i] = fx - complex(kx, 0)*kf
				vh[j][i] = fy - complex(ky, 0)*kf
			}
		}
	})

	ux := fft.IFFT2(uh)
	uy := fft.IFFT2(vh)

	n := p.Nx * p.Ny
	for j := 0; j < p.Ny; j++ {
		for i := 0; i < p.Nx; i++ {
			v[j*p.Nx+i] = real(ux[j][i])
			v[n+j*p.Nx+i] = real(uy[j][i])
		}
	}
	return nil
}
