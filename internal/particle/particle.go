// Package particle holds the flat position, orientation and stresslet
// buffers of a suspension. Each vector buffer stores all x components
// followed by all y components.
package particle

import (
	"fmt"
	"math"

	"github.com/san-kum/flowsim/internal/dynamo"
)

type Set struct {
	Np int
	R  []float64 // positions, len Dim*Np
	P  []float64 // orientations, len Dim*Np
	S  []float64 // stresslets (S_xx-yy then S_xy), len 2*Np
}

func New(np int) (*Set, error) {
	if np <= 0 {
		return nil, fmt.Errorf("particle count %d: %w", np, dynamo.ErrParameterBounds)
	}
	return &Set{
		Np: np,
		R:  make([]float64, dynamo.Dim*np),
		P:  make([]float64, dynamo.Dim*np),
		S:  make([]float64, 2*np),
	}, nil
}

// NewCentered places every particle at the centre (lx/2, ly/2) of the
// domain with orientation (1, 0) and derives the stresslets. On a grid with
// unit spacing this is the grid point (Nx/2, Ny/2).
func NewCentered(np int, lx, ly float64) (*Set, error) {
	s, err := New(np)
	if err != nil {
		return nil, err
	}
	for i := 0; i < np; i++ {
		s.Place(i, lx/2, ly/2, 1, 0)
	}
	s.DeriveStresslet()
	return s, nil
}

func (s *Set) Position(i int) (x, y float64) { return s.R[i], s.R[s.Np+i] }

func (s *Set) Orientation(i int) (px, py float64) { return s.P[i], s.P[s.Np+i] }

// Stresslet returns the two independent components of particle i.
func (s *Set) Stresslet(i int) (sxx, sxy float64) { return s.S[i], s.S[s.Np+i] }

// Place sets position and orientation of particle i. The stresslet is not
// updated until DeriveStresslet is called.
func (s *Set) Place(i int, x, y, px, py float64) {
	s.R[i], s.R[s.Np+i] = x, y
	s.P[i], s.P[s.Np+i] = px, py
}

// DeriveStresslet fills S from P: S_xx-yy = px^2 - 1/2, S_xy = px*py.
func (s *Set) DeriveStresslet() {
	for i := 0; i < s.Np; i++ {
		s.S[i], s.S[s.Np+i] = StressletOf(s.P[i], s.P[s.Np+i])
	}
}

// StressletOf returns the traceless symmetric stresslet components of a
// swimmer with orientation (px, py).
func StressletOf(px, py float64) (sxx, sxy float64) {
	return px*px - 0.5, px * py
}

// Normalize rescales every orientation to unit length. Zero orientations
// are rejected.
func (s *Set) Normalize() error {
	for i := 0; i < s.Np; i++ {
		px, py := s.Orientation(i)
		n := math.Hypot(px, py)
		if n == 0 {
			return fmt.Errorf("particle %d has zero orientation: %w", i, dynamo.ErrParameterBounds)
		}
		s.P[i], s.P[s.Np+i] = px/n, py/n
	}
	return nil
}

// Validate checks buffer lengths against Np.
func (s *Set) Validate() error {
	if err := dynamo.CheckLen("positions", s.R, dynamo.Dim*s.Np); err != nil {
		return err
	}
	if err := dynamo.CheckLen("orientations", s.P, dynamo.Dim*s.Np); err != nil {
		return err
	}
	return dynamo.CheckLen("stresslets", s.S, 2*s.Np)
}
