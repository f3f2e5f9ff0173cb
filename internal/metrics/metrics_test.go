package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/flowsim/internal/field"
)

// shear builds u = sin(2πy/L), v = 0 on an n-by-n grid of side l.
func shear(n int, l float64) *field.VectorField {
	f, _ := field.NewVectorField(make([]float64, 2*n*n), n, n, l, l)
	_, dy := f.Spacing()
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			f.U.Set(x, y, math.Sin(2*math.Pi*float64(y)*dy/l))
		}
	}
	return f
}

func TestSpeedMetrics(t *testing.T) {
	f, _ := field.NewVectorField([]float64{3, 0, 0, 0, 4, 0, 0, 0}, 2, 2, 2, 2)

	if v := NewMaxSpeed().Compute(f); v != 5 {
		t.Errorf("max_speed: expected 5, got %f", v)
	}
	if v := NewMeanSpeed().Compute(f); v != 1.25 {
		t.Errorf("mean_speed: expected 1.25, got %f", v)
	}
	if v := NewKineticEnergy().Compute(f); v != 12.5 {
		t.Errorf("kinetic_energy: expected 12.5, got %f", v)
	}
	if v := NewMeanComponent("mean_vx", 0).Compute(f); v != 0.75 {
		t.Errorf("mean_vx: expected 0.75, got %f", v)
	}
	if v := NewMeanComponent("mean_vy", 1).Compute(f); v != 1 {
		t.Errorf("mean_vy: expected 1, got %f", v)
	}
}

func TestShearIsDivergenceFree(t *testing.T) {
	f := shear(64, 64)

	if div := NewMaxDivergence().Compute(f); div > 1e-12 {
		t.Errorf("expected zero divergence, got %e", div)
	}

	// |∂u/∂y| peaks at 2π/L; central differences are within a fraction of a
	// percent at 64 points per wavelength
	want := 2 * math.Pi / 64
	if vort := NewMaxVorticity().Compute(f); math.Abs(vort-want)/want > 0.01 {
		t.Errorf("expected vorticity ~%f, got %f", want, vort)
	}
}

func TestEvaluateDefault(t *testing.T) {
	f := shear(16, 16)
	values := Evaluate(f, Default())

	for _, name := range []string{"max_speed", "mean_speed", "kinetic_energy", "max_divergence", "max_vorticity", "mean_vx", "mean_vy"} {
		if _, ok := values[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if math.Abs(values["mean_vx"]) > 1e-12 {
		t.Errorf("expected zero mean_vx for a sine profile, got %e", values["mean_vx"])
	}
}
