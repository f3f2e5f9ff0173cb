package streamline

import (
	"math"

	"github.com/san-kum/flowsim/internal/dynamo"
	"github.com/san-kum/flowsim/internal/field"
)

// TracerSystem is the ODE dX/ds = ±u(X)/|u(X)| whose solutions are
// streamlines parameterised by arc length. It stops outside the box
// [0, xmax] x [0, ymax] and at stagnation points.
type TracerSystem struct {
	field      *field.VectorField
	sign       float64
	xmax, ymax float64
	minSpeed   float64
}

func NewTracerSystem(f *field.VectorField, sign float64) *TracerSystem {
	dx, dy := f.Spacing()
	_, hi := f.Speed().MinMax()
	return &TracerSystem{
		field:    f,
		sign:     sign,
		xmax:     float64(f.Nx()-1) * dx,
		ymax:     float64(f.Ny()-1) * dy,
		minSpeed: hi * 1e-9,
	}
}

func (t *TracerSystem) StateDim() int { return 2 }

func (t *TracerSystem) Derive(x dynamo.State, s float64) dynamo.State {
	u, v := t.field.Sample(x[0], x[1])
	speed := math.Hypot(u, v)
	if speed <= t.minSpeed || speed == 0 {
		return dynamo.State{0, 0}
	}
	return dynamo.State{t.sign * u / speed, t.sign * v / speed}
}

func (t *TracerSystem) Stop(x dynamo.State) bool {
	if !x.IsValid() {
		return true
	}
	if x[0] < 0 || x[0] > t.xmax || x[1] < 0 || x[1] > t.ymax {
		return true
	}
	u, v := t.field.Sample(x[0], x[1])
	return math.Hypot(u, v) <= t.minSpeed
}
