package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/flowsim/internal/storage"
)

const scenarioYAML = `name: viscosity
description: two small runs
steps:
  - name: thin
    config: small.yaml
    params:
      viscosity: 0.1
    save_as: thin.svg
  - preset: direct
    params:
      grid: 16
      radius: 2
    particles:
      - {x: 8, y: 8, px: 0, py: 1}
`

const smallYAML = `radius: 2
domain:
  lx: 16
  ly: 16
  nx: 16
  ny: 16
`

func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "small.yaml"), []byte(smallYAML), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	if sc.Name != "viscosity" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if want := filepath.Join(filepath.Dir(path), "small.yaml"); sc.Steps[0].Config != want {
		t.Errorf("config path %s, want %s", sc.Steps[0].Config, want)
	}

	cfg, err := sc.Steps[1].Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cfg.Solver != "direct" || cfg.Domain.Nx != 16 || cfg.Radius != 2 || len(cfg.Particles) != 1 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestBuildRejectsUnknownPreset(t *testing.T) {
	if _, err := (ScenarioStep{Preset: "nope"}).Build(); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, err := (ScenarioStep{Params: map[string]float64{"colour": 1}}).Build(); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t))
	if err != nil {
		t.Fatal(err)
	}

	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()

	results, err := RunScenario(context.Background(), sc, st, out)
	if err != nil {
		t.Fatalf("RunScenario failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Name != "step2" {
		t.Errorf("default step name %q", results[1].Name)
	}

	if _, err := os.Stat(filepath.Join(out, "thin.svg")); err != nil {
		t.Errorf("svg not written: %v", err)
	}
	if results[1].SVG != "" {
		t.Error("second step should not render")
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 stored runs, got %d", len(runs))
	}
	for _, r := range results {
		if r.Metrics["max_speed"] <= 0 {
			t.Errorf("%s: no flow", r.Name)
		}
	}
}

func TestBuildAppliesGridBeforeDomain(t *testing.T) {
	step := ScenarioStep{Params: map[string]float64{"grid": 64, "domain": 100}}
	for i := 0; i < 200; i++ {
		cfg, err := step.Build()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Domain.Lx != 100 || cfg.Domain.Nx != 64 {
			t.Fatalf("build %d: domain %+v", i, cfg.Domain)
		}
	}
}
