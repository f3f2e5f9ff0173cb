// Package dynamo provides the numerical primitives shared by the flow solver,
// the streamline tracer and the field diagnostics.
//
//   - [State]: vector state of an ODE, e.g. a tracer position (x, y)
//   - [System]: interface for ODE systems (dX/ds = f(X, s))
//   - [Integrator]: single-step numerical integrator
//   - [ParallelFor]: chunked data-parallel loop over an index range
//
// # Example
//
//	sys := streamline.NewTracerSystem(field, +1)
//	integ := integrators.NewRK4()
//	x := integ.Step(sys, dynamo.State{x0, y0}, 0, ds)
//
// # Errors
//
// Operations that validate buffer sizes or parameters wrap one of the
// sentinel errors in this package so callers can use [errors.Is].
package dynamo
