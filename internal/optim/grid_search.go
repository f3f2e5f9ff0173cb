package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/flowsim/internal/config"
	"github.com/san-kum/flowsim/internal/dynamo"
	"github.com/san-kum/flowsim/internal/experiment"
)

// Trial is one evaluated point of a sweep.
type Trial struct {
	Params map[string]float64
	Value  float64
}

// GridSearch evaluates every combination of parameter values and keeps the
// trial with the smallest (or, with Maximize, largest) metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Search runs one experiment per combination. Trials come back in
// evaluation order.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (Trial, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Trial{}, nil, fmt.Errorf("%d parameters with %d ranges: %w", len(g.paramNames), len(g.ranges), dynamo.ErrDimensionMismatch)
	}

	var trials []Trial
	if err := g.searchRecursive(ctx, 0, map[string]float64{}, buildExperiment, metricName, &trials); err != nil {
		return Trial{}, trials, err
	}
	if len(trials) == 0 {
		return Trial{}, nil, fmt.Errorf("empty search grid: %w", dynamo.ErrParameterBounds)
	}

	best := trials[0]
	for _, t := range trials[1:] {
		if g.better(t.Value, best.Value) {
			best = t
		}
	}
	return best, trials, nil
}

func (g *GridSearch) better(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	if g.maximize {
		return a > b
	}
	return a < b
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("unknown metric: %s", metricName)
		}
		*trials = append(*trials, Trial{Params: current, Value: val})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, trials); err != nil {
			return err
		}
	}
	return nil
}

// Sweepable lists the configuration fields ApplyParam understands.
func Sweepable() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// applyOrder fixes the order ApplyParams uses. grid resets the domain
// lengths, so it has to run before domain.
var applyOrder = []string{"grid", "domain", "radius", "viscosity"}

var setters = map[string]func(*config.Config, float64) error{
	"radius": func(c *config.Config, v float64) error {
		c.Radius = v
		return nil
	},
	"viscosity": func(c *config.Config, v float64) error {
		c.Viscosity = v
		return nil
	},
	"grid": func(c *config.Config, v float64) error {
		if v != math.Trunc(v) {
			return fmt.Errorf("grid size %g is not an integer: %w", v, dynamo.ErrParameterBounds)
		}
		n := int(v)
		c.Domain = config.DomainConfig{Lx: float64(n), Ly: float64(n), Nx: n, Ny: n}
		return nil
	},
	"domain": func(c *config.Config, v float64) error {
		c.Domain.Lx, c.Domain.Ly = v, v
		return nil
	},
}

// ApplyParam sets one named parameter on cfg.
func ApplyParam(cfg *config.Config, name string, v float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("unknown sweep parameter %q (have %s)", name, strings.Join(Sweepable(), ", "))
	}
	return set(cfg, v)
}

// ApplyParams sets every entry of params on cfg in a fixed order, so the
// result does not depend on map iteration.
func ApplyParams(cfg *config.Config, params map[string]float64) error {
	for name := range params {
		if _, ok := setters[name]; !ok {
			return fmt.Errorf("unknown sweep parameter %q (have %s)", name, strings.Join(Sweepable(), ", "))
		}
	}
	for _, name := range applyOrder {
		v, ok := params[name]
		if !ok {
			continue
		}
		if err := ApplyParam(cfg, name, v); err != nil {
			return err
		}
	}
	return nil
}
