package metrics

import "github.com/san-kum/flowsim/internal/field"

// Metric reduces a velocity field to a single diagnostic value.
type Metric interface {
	Name() string
	Compute(f *field.VectorField) float64
}

// Evaluate runs every metric on f and returns the values keyed by name.
func Evaluate(f *field.VectorField, ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Compute(f)
	}
	return out
}

// Default is the set computed for every run.
func Default() []Metric {
	return []Metric{
		NewMaxSpeed(),
		NewMeanSpeed(),
		NewKineticEnergy(),
		NewMaxDivergence(),
		NewMaxVorticity(),
		NewMeanComponent("mean_vx", 0),
		NewMeanComponent("mean_vy", 1),
	}
}
