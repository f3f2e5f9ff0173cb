package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/flowsim/internal/dynamo"
	"github.com/san-kum/flowsim/internal/field"
)

func waveField(t *testing.T, n, mode int) *field.VectorField {
	t.Helper()
	v := make([]float64, 2*n*n)
	for k := 0; k < n*n; k++ {
		x := k % n
		v[k] = math.Sin(2 * math.Pi * float64(mode*x) / float64(n))
	}
	f, err := field.NewVectorField(v, n, n, float64(n), float64(n))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestEnergySpectrumSingleMode(t *testing.T) {
	shells := EnergySpectrum(waveField(t, 32, 3))

	peak := 0
	for m := range shells {
		if shells[m] > shells[peak] {
			peak = m
		}
	}
	if peak != 3 {
		t.Errorf("spectrum peaks at %d, want 3", peak)
	}

	// mean of sin^2 is 1/2, so total energy is 1/4
	var total float64
	for _, e := range shells {
		total += e
	}
	if math.Abs(total-0.25) > 1e-12 {
		t.Errorf("Parseval: total %g, want 0.25", total)
	}
}

func TestEnergySpectrumZeroField(t *testing.T) {
	f, err := field.NewVectorField(make([]float64, 2*16*16), 16, 16, 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	for m, e := range EnergySpectrum(f) {
		if e != 0 {
			t.Errorf("shell %d has energy %g", m, e)
		}
	}
}

func TestSpectralSlope(t *testing.T) {
	shells := make([]float64, 20)
	for m := 1; m < len(shells); m++ {
		shells[m] = 5 * math.Pow(float64(m), -3)
	}

	b, err := SpectralSlope(shells, 2, 15)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(b+3) > 1e-9 {
		t.Errorf("slope %g, want -3", b)
	}

	if _, err := SpectralSlope(shells, 0, 5); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if _, err := SpectralSlope(make([]float64, 10), 1, 8); !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}
