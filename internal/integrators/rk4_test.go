package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/flowsim/internal/dynamo"
)

// rotation is the tracer ODE of a solid-body vortex: dX/ds = (-y, x).
type rotation struct{}

func (r *rotation) Derive(x dynamo.State, s float64) dynamo.State {
	return dynamo.State{-x[1], x[0]}
}

func (r *rotation) StateDim() int { return 2 }

// uniform is the tracer ODE of a constant unit flow along x.
type uniform struct{}

func (u *uniform) Derive(x dynamo.State, s float64) dynamo.State {
	return dynamo.State{1, 0}
}

func (u *uniform) StateDim() int { return 2 }

func TestRK4Accuracy(t *testing.T) {
	sys := &rotation{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	ds := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, float64(i)*ds, ds)
	}

	expectedX := math.Cos(float64(steps) * ds)
	expectedY := math.Sin(float64(steps) * ds)

	if math.Abs(x[0]-expectedX) > 1e-6 {
		t.Errorf("x error too large: got %.8f, expected %.8f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedY) > 1e-6 {
		t.Errorf("y error too large: got %.8f, expected %.8f", x[1], expectedY)
	}
}

func TestIntegratorsUniformFlow(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
	}{
		{"euler", NewEuler()},
		{"rk4", NewRK4()},
		{"rk45", NewRK45()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := dynamo.State{2.0, 3.0}
			for i := 0; i < 10; i++ {
				x = tt.integ.Step(&uniform{}, x, float64(i)*0.5, 0.5)
			}
			if math.Abs(x[0]-7.0) > 1e-9 || math.Abs(x[1]-3.0) > 1e-9 {
				t.Errorf("expected (7, 3), got (%.6f, %.6f)", x[0], x[1])
			}
		})
	}
}

func TestRK4DoesNotMutateInput(t *testing.T) {
	x := dynamo.State{1, 0}
	NewRK4().Step(&rotation{}, x, 0, 0.1)
	if x[0] != 1 || x[1] != 0 {
		t.Errorf("input state modified: %v", x)
	}
}
