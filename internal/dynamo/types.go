package dynamo

import (
	"fmt"
	"math"
)

// Dim is the spatial dimension of every buffer in this module.
const Dim = 2

type State []float64

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an autonomous or parameterised ODE dX/ds = f(X, s).
type System interface {
	Derive(x State, s float64) State
	StateDim() int
}

// Stopper is implemented by systems that can report that a state left their
// valid region (outside the domain, stagnation point, ...).
type Stopper interface {
	Stop(x State) bool
}

type Integrator interface {
	Step(sys System, x State, s, ds float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, s, ds, tol float64) (State, float64, error)
}

// CheckLen returns ErrDimensionMismatch wrapped with the buffer name when
// len(buf) != want.
func CheckLen(name string, buf []float64, want int) error {
	if len(buf) != want {
		return fmt.Errorf("%s: got %d elements, want %d: %w", name, len(buf), want, ErrDimensionMismatch)
	}
	return nil
}
