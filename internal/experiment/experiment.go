package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/flowsim/internal/config"
	"github.com/san-kum/flowsim/internal/dynamo"
	"github.com/san-kum/flowsim/internal/field"
	"github.com/san-kum/flowsim/internal/flow"
	"github.com/san-kum/flowsim/internal/metrics"
	"github.com/san-kum/flowsim/internal/particle"
	"github.com/san-kum/flowsim/internal/streamline"
)

// Pipeline step names, in execution order.
const (
	StepAllocate    = "allocate"
	StepInitialize  = "initialize"
	StepSolve       = "solve"
	StepReshape     = "reshape"
	StepMetrics     = "metrics"
	StepStreamlines = "streamlines"
)

type Result struct {
	Solver      string
	Params      flow.Params
	Particles   *particle.Set
	Velocity    []float64
	Field       *field.VectorField
	Metrics     map[string]float64
	Streamlines []streamline.Line
	Timings     map[string]time.Duration
	Elapsed     time.Duration
}

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	observer Observer
	metrics  []metrics.Metric

	solver flow.Solver
	integ  dynamo.Integrator
}

func New(cfg *config.Config) *Experiment {
	r := NewRegistry()
	return &Experiment{
		cfg:      cfg,
		registry: r,
		observer: NewLoggingObserver(slog.Default()),
		metrics:  r.DefaultMetrics(),
	}
}

// SetObserver replaces the default slog observer; nil disables notifications.
func (e *Experiment) SetObserver(o Observer) {
	if o == nil {
		o = NoopObserver{}
	}
	e.observer = o
}

func (e *Experiment) AddMetric(m metrics.Metric) {
	e.metrics = append(e.metrics, m)
}

// Setup validates the configuration and resolves the solver and integrator.
// Run calls it when it has not been called yet.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	solver, err := e.registry.GetSolver(e.cfg.Solver, e.cfg.FlowParams())
	if err != nil {
		return err
	}

	integ, err := e.registry.GetIntegrator(e.cfg.Render.Integrator)
	if err != nil {
		return err
	}

	e.solver, e.integ = solver, integ
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.solver == nil {
		if err := e.Setup(); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	p := e.solver.Params()
	res := &Result{
		Solver:  e.solver.Name(),
		Params:  p,
		Timings: make(map[string]time.Duration),
	}

	steps := []struct {
		name string
		fn   func(context.Context, *Result) error
	}{
		{StepAllocate, e.allocate},
		{StepInitialize, e.initialize},
		{StepSolve, e.solve},
		{StepReshape, e.reshape},
		{StepMetrics, e.evaluate},
	}
	if e.cfg.Render.Streamlines {
		steps = append(steps, struct {
			name string
			fn   func(context.Context, *Result) error
		}{StepStreamlines, e.trace})
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.observer.OnStepStart(ctx, step.name)
		t0 := time.Now()
		err := step.fn(ctx, res)
		d := time.Since(t0)
		e.observer.OnStepCompleted(ctx, step.name, err, d)

		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
		res.Timings[step.name] = d
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

func (e *Experiment) allocate(_ context.Context, res *Result) error {
	set, err := particle.New(res.Params.Np)
	if err != nil {
		return err
	}
	res.Particles = set
	res.Velocity = make([]float64, res.Params.VelocityLen())
	return nil
}

func (e *Experiment) initialize(_ context.Context, res *Result) error {
	set := res.Particles
	if len(e.cfg.Particles) == 0 {
		for i := 0; i < set.Np; i++ {
			set.Place(i, res.Params.Lx/2, res.Params.Ly/2, 1, 0)
		}
	} else {
		for i, pc := range e.cfg.Particles {
			set.Place(i, pc.X, pc.Y, pc.Px, pc.Py)
		}
		if err := set.Normalize(); err != nil {
			return err
		}
	}
	set.DeriveStresslet()
	return set.Validate()
}

func (e *Experiment) solve(_ context.Context, res *Result) error {
	return e.solver.StressletV(res.Velocity, res.Particles.R, res.Particles.P)
}

func (e *Experiment) reshape(_ context.Context, res *Result) error {
	f, err := field.NewVectorField(res.Velocity, res.Params.Nx, res.Params.Ny, res.Params.Lx, res.Params.Ly)
	if err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}
	res.Field = f
	return nil
}

func (e *Experiment) evaluate(_ context.Context, res *Result) error {
	res.Metrics = metrics.Evaluate(res.Field, e.metrics)
	return nil
}

func (e *Experiment) trace(ctx context.Context, res *Result) error {
	return res.Trace(ctx, e.integ, e.streamlineOptions())
}

func (e *Experiment) streamlineOptions() streamline.Options {
	opts := streamline.DefaultOptions()
	opts.Density = e.cfg.Render.Density
	return opts
}
