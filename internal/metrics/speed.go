package metrics

import "github.com/san-kum/flowsim/internal/field"

type MaxSpeed struct{ name string }

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{name: "max_speed"} }

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Compute(f *field.VectorField) float64 {
	_, hi := f.Speed().MinMax()
	return hi
}

type MeanSpeed struct{ name string }

func NewMeanSpeed() *MeanSpeed { return &MeanSpeed{name: "mean_speed"} }

func (m *MeanSpeed) Name() string { return m.name }

func (m *MeanSpeed) Compute(f *field.VectorField) float64 {
	return f.Speed().Mean()
}

// KineticEnergy is ½ Σ |u|² ΔxΔy over the grid.
type KineticEnergy struct{ name string }

func NewKineticEnergy() *KineticEnergy { return &KineticEnergy{name: "kinetic_energy"} }

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Compute(f *field.VectorField) float64 {
	dx, dy := f.Spacing()
	sum := 0.0
	for i := range f.U.Data {
		u, v := f.U.Data[i], f.V.Data[i]
		sum += u*u + v*v
	}
	return 0.5 * sum * dx * dy
}

// MeanComponent averages one velocity component; a periodic solution has no
// net flow.
type MeanComponent struct {
	name      string
	component int
}

func NewMeanComponent(name string, component int) *MeanComponent {
	return &MeanComponent{name: name, component: component}
}

func (m *MeanComponent) Name() string { return m.name }

func (m *MeanComponent) Compute(f *field.VectorField) float64 {
	g := f.U
	if m.component == 1 {
		g = f.V
	}
	return g.Mean()
}
