// Package flow evaluates the velocity field induced by stresslet particles
// on a regular 2D grid.
//
// A [Solver] is bound to its [Params] at construction and fills a
// caller-owned velocity buffer in place:
//
//	s, err := flow.New("spectral", flow.DefaultParams())
//	v := make([]float64, dynamo.Dim*p.Nx*p.Ny)
//	err = s.StressletV(v, set.R, set.P)
//
// The stresslet of each particle is derived from its orientation p as
// S = p p^T - I/2. Two solvers are registered:
//
//   - "spectral": periodic domain, Gaussian-mollified force dipoles solved
//     in Fourier space.
//   - "direct": regularised free-space stresslet kernel summed over
//     minimum-image separations.
package flow
