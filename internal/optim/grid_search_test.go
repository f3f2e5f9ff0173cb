package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/flowsim/internal/config"
	"github.com/san-kum/flowsim/internal/dynamo"
	"github.com/san-kum/flowsim/internal/experiment"
)

func builder(t *testing.T) func(map[string]float64) (*experiment.Experiment, error) {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := config.DefaultConfig()
		cfg.Domain = config.DomainConfig{Lx: 32, Ly: 32, Nx: 32, Ny: 32}
		cfg.Render.Streamlines = false
		if err := ApplyParams(cfg, params); err != nil {
			return nil, err
		}
		exp := experiment.New(cfg)
		exp.SetObserver(nil)
		return exp, nil
	}
}

func TestGridSearchVisitsEveryCombination(t *testing.T) {
	gs := NewGridSearch([]string{"radius", "viscosity"}, [][]float64{{2, 4, 8}, {0.1, 1}})

	_, trials, err := gs.Search(context.Background(), builder(t), "max_speed")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(trials) != 6 {
		t.Fatalf("expected 6 trials, got %d", len(trials))
	}
	if trials[0].Params["radius"] != 2 || trials[1].Params["viscosity"] != 1 {
		t.Errorf("unexpected evaluation order: %+v", trials[:2])
	}
}

func TestGridSearchBestFollowsViscosity(t *testing.T) {
	// the Stokes velocity scales as 1/viscosity
	visc := []float64{0.5, 0.1, 2}

	best, _, err := NewGridSearch([]string{"viscosity"}, [][]float64{visc}).
		Search(context.Background(), builder(t), "max_speed")
	if err != nil {
		t.Fatal(err)
	}
	if best.Params["viscosity"] != 2 {
		t.Errorf("minimum speed at viscosity %g, want 2", best.Params["viscosity"])
	}

	best, _, err = NewGridSearch([]string{"viscosity"}, [][]float64{visc}).Maximize().
		Search(context.Background(), builder(t), "max_speed")
	if err != nil {
		t.Fatal(err)
	}
	if best.Params["viscosity"] != 0.1 {
		t.Errorf("maximum speed at viscosity %g, want 0.1", best.Params["viscosity"])
	}
}

func TestGridSearchErrors(t *testing.T) {
	ctx := context.Background()

	if _, _, err := NewGridSearch([]string{"radius"}, nil).Search(ctx, builder(t), "max_speed"); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, _, err := NewGridSearch([]string{"radius"}, [][]float64{{}}).Search(ctx, builder(t), "max_speed"); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if _, _, err := NewGridSearch([]string{"radius"}, [][]float64{{3}}).Search(ctx, builder(t), "nope"); err == nil {
		t.Error("expected unknown metric error")
	}
	if _, _, err := NewGridSearch([]string{"colour"}, [][]float64{{3}}).Search(ctx, builder(t), "max_speed"); err == nil {
		t.Error("expected unknown parameter error")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, _, err := NewGridSearch([]string{"radius"}, [][]float64{{3}}).Search(cancelled, builder(t), "max_speed"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestApplyParam(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := ApplyParam(cfg, "grid", 64); err != nil {
		t.Fatal(err)
	}
	if cfg.Domain.Nx != 64 || cfg.Domain.Ly != 64 {
		t.Errorf("grid not applied: %+v", cfg.Domain)
	}
	if got := Sweepable(); len(got) != 4 || got[0] != "domain" {
		t.Errorf("Sweepable = %v", got)
	}
}

func TestApplyParamsGridBeforeDomain(t *testing.T) {
	for i := 0; i < 100; i++ {
		cfg := config.DefaultConfig()
		if err := ApplyParams(cfg, map[string]float64{"domain": 100, "grid": 64, "radius": 3}); err != nil {
			t.Fatal(err)
		}
		if cfg.Domain.Nx != 64 || cfg.Domain.Lx != 100 || cfg.Domain.Ly != 100 || cfg.Radius != 3 {
			t.Fatalf("iteration %d: got domain %+v radius %g", i, cfg.Domain, cfg.Radius)
		}
	}
}

func TestApplyParamsRejectsUnknownName(t *testing.T) {
	cfg := config.DefaultConfig()
	err := ApplyParams(cfg, map[string]float64{"radius": 3, "temperature": 300})
	if err == nil {
		t.Fatal("expected error for unknown parameter")
	}
	if cfg.Radius != config.DefaultRadius {
		t.Errorf("config modified before rejection: radius %g", cfg.Radius)
	}
}

func TestApplyParamRejectsFractionalGrid(t *testing.T) {
	cfg := config.DefaultConfig()
	err := ApplyParam(cfg, "grid", 64.7)
	if !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Fatalf("expected ErrParameterBounds, got %v", err)
	}
	if cfg.Domain.Nx != config.DefaultGrid {
		t.Errorf("grid changed to %d", cfg.Domain.Nx)
	}
}
