package integrators

import "github.com/san-kum/flowsim/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, s, ds float64) dynamo.State {
	dx := sys.Derive(x, s)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + ds*dx[i]
	}
	return result
}
