package field

import (
	"math"
	"testing"
)

func linearField(nx, ny int, lx, ly float64) *VectorField {
	v := make([]float64, 2*nx*ny)
	f, _ := NewVectorField(v, nx, ny, lx, ly)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			f.U.Set(x, y, float64(x))
			f.V.Set(x, y, float64(y))
		}
	}
	return f
}

func TestSampleOnGridPoints(t *testing.T) {
	f := linearField(8, 8, 16, 16)
	u, v := f.Sample(6, 10)
	if u != 3 || v != 5 {
		t.Errorf("expected (3, 5), got (%f, %f)", u, v)
	}
}

func TestSampleInterpolates(t *testing.T) {
	f := linearField(8, 8, 8, 8)
	u, v := f.Sample(2.5, 3.25)
	if math.Abs(u-2.5) > 1e-12 || math.Abs(v-3.25) > 1e-12 {
		t.Errorf("expected (2.5, 3.25), got (%f, %f)", u, v)
	}
}

func TestSampleWrapsPeriodically(t *testing.T) {
	f := linearField(8, 8, 8, 8)
	u1, v1 := f.Sample(1, 2)
	u2, v2 := f.Sample(9, -6)
	if u1 != u2 || v1 != v2 {
		t.Errorf("expected periodic sample, got (%f,%f) vs (%f,%f)", u1, v1, u2, v2)
	}
}

func TestSpeed(t *testing.T) {
	f, err := NewVectorField([]float64{3, 0, 4, 1}, 2, 1, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	s := f.Speed()
	if s.At(0, 0) != 5 || s.At(1, 0) != 1 {
		t.Errorf("unexpected speed: %v", s.Data)
	}
	if dx, dy := f.Spacing(); dx != 1 || dy != 1 {
		t.Errorf("unexpected spacing (%f, %f)", dx, dy)
	}
}

func TestBufferRestacks(t *testing.T) {
	v := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	f, err := NewVectorField(v, 2, 2, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	out := f.Buffer()
	for i := range v {
		if out[i] != v[i] {
			t.Fatalf("index %d: expected %f, got %f", i, v[i], out[i])
		}
	}
}
