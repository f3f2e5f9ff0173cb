package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/san-kum/flowsim/internal/config"
	"github.com/san-kum/flowsim/internal/experiment"
	"github.com/san-kum/flowsim/internal/export"
	"github.com/san-kum/flowsim/internal/optim"
	"github.com/san-kum/flowsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted batch of flow evaluations.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep builds its configuration from Preset (or the defaults), then
// Config, then the inline overrides.
type ScenarioStep struct {
	Name      string                  `yaml:"name"`
	Preset    string                  `yaml:"preset"`
	Config    string                  `yaml:"config"`
	Solver    string                  `yaml:"solver"`
	Params    map[string]float64      `yaml:"params"`
	Particles []config.ParticleConfig `yaml:"particles"`
	SaveAs    string                  `yaml:"save_as"`
}

type StepResult struct {
	Name    string
	RunID   string
	SVG     string
	Metrics map[string]float64
}

// LoadScenario loads a scenario from a YAML file. Relative config paths in
// steps are resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range scenario.Steps {
		if c := scenario.Steps[i].Config; c != "" && !filepath.IsAbs(c) {
			scenario.Steps[i].Config = filepath.Join(dir, c)
		}
	}
	return &scenario, nil
}

// Build resolves the step's configuration.
func (s ScenarioStep) Build() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Config != "" {
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if s.Solver != "" {
		cfg.Solver = s.Solver
	}
	if err := optim.ApplyParams(cfg, s.Params); err != nil {
		return nil, err
	}
	if len(s.Particles) > 0 {
		cfg.Particles = s.Particles
	}
	return cfg, cfg.Validate()
}

// RunScenario executes every step, stores each run in st when st is non-nil
// and writes an SVG for steps with save_as set (relative to outDir).
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, outDir string) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		slog.Info("scenario step", "scenario", scenario.Name, "step", name, "index", i+1, "of", len(scenario.Steps))

		cfg, err := step.Build()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		cfg.Render.Streamlines = step.SaveAs != ""

		res, err := experiment.New(cfg).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Metrics: res.Metrics}

		if st != nil {
			sr.RunID, err = st.Save(res.Metadata(), res.Velocity)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		if step.SaveAs != "" {
			sr.SVG = filepath.Join(outDir, step.SaveAs)
			if err := export.WriteFile(sr.SVG, res.SVG(name, cfg.Render.Size)); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		results = append(results, sr)
	}

	return results, nil
}
