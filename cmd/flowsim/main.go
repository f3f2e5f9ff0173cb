package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/flowsim/internal/analysis"
	"github.com/san-kum/flowsim/internal/automation"
	"github.com/san-kum/flowsim/internal/config"
	"github.com/san-kum/flowsim/internal/experiment"
	"github.com/san-kum/flowsim/internal/export"
	"github.com/san-kum/flowsim/internal/optim"
	"github.com/san-kum/flowsim/internal/storage"
	"github.com/san-kum/flowsim/internal/streamline"
	"github.com/san-kum/flowsim/internal/viz"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var (
	dataDir    string
	verbose    bool
	theme      string
	configFile string
	preset     string
	solver     string
	radius     float64
	gridSize   int
	integrator string
	density    float64
	outFile    string
	svgSize    int
	noSave     bool
	plotWidth  int
	plotHeight int
	plotLines  bool
	sweepParam []string
	metricName string
	maximize   bool
	outDir     string
	listSolver string
	listLimit  int
	partFile   string
)

// main registers the commands and runs the root command. A bare invocation
// evaluates the default single-particle flow and writes flow.svg.
func main() {
	rootCmd := &cobra.Command{
		Use:   "flowsim",
		Short: "stresslet flow fields in a periodic 2D Stokes fluid",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			noSave = true
			return runFlow(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".flowsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "mono", "terminal theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	rootCmd.Flags().StringVar(&outFile, "out", "flow.svg", "output svg")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "evaluate a flow field, save it and render it",
		Args:  cobra.NoArgs,
		RunE:  runFlow,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file (yaml, ini or gcfg)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&solver, "solver", config.DefaultSolver, "flow solver")
	runCmd.Flags().StringVar(&partFile, "particles", "", "particle table (columns x y px py)")
	runCmd.Flags().Float64Var(&radius, "radius", config.DefaultRadius, "particle radius")
	runCmd.Flags().IntVar(&gridSize, "grid", config.DefaultGrid, "grid points per axis (domain follows)")
	runCmd.Flags().StringVar(&integrator, "integrator", "rk4", "streamline integrator")
	runCmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "streamline density")
	runCmd.Flags().StringVar(&outFile, "out", "flow.svg", "output svg")
	runCmd.Flags().IntVar(&svgSize, "size", config.DefaultSVGSize, "svg plot size in pixels")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&listSolver, "solver", "", "only runs of this solver")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "at most this many runs")

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "rebuild the run index from the data directory",
		RunE:  reindexRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "centre-line velocity profiles of a run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	plotCmd.Flags().BoolVar(&plotLines, "streamlines", true, "draw a streamline preview under the profiles")
	plotCmd.Flags().StringVar(&integrator, "integrator", "rk4", "streamline integrator")
	plotCmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "streamline density")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a stored run to svg",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVar(&outFile, "out", "flow.svg", "output svg")
	renderCmd.Flags().StringVar(&integrator, "integrator", "rk4", "streamline integrator")
	renderCmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "streamline density")
	renderCmd.Flags().IntVar(&svgSize, "size", config.DefaultSVGSize, "svg plot size in pixels")

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "interactive terminal viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  viewRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's velocity field to CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				cfg := config.GetPreset(p)
				fmt.Printf("  %-8s %s, a=%g, %dx%d, %d particle(s)\n",
					p, cfg.Solver, cfg.Radius, cfg.Domain.Nx, cfg.Domain.Ny, cfg.NumParticles())
			}
		},
	}

	solversCmd := &cobra.Command{
		Use:   "solvers",
		Short: "list flow solvers and streamline integrators",
		Run: func(cmd *cobra.Command, args []string) {
			reg := experiment.NewRegistry()
			fmt.Println("solvers:")
			for _, s := range reg.ListSolvers() {
				fmt.Printf("  %s\n", s)
			}
			fmt.Println("integrators:")
			for _, s := range reg.ListIntegrators() {
				fmt.Printf("  %s\n", s)
			}
		},
	}

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "shell-averaged energy spectrum of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  spectrumRun,
	}
	spectrumCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	spectrumCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over configuration parameters",
		Long:  "Evaluates every combination of --param name=v1,v2,... and reports the best value of --metric.",
		Args:  cobra.NoArgs,
		RunE:  sweepRun,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file (yaml, ini or gcfg)")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	sweepCmd.Flags().StringVar(&solver, "solver", config.DefaultSolver, "flow solver")
	sweepCmd.Flags().StringArrayVar(&sweepParam, "param", nil, "name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "max_speed", "metric to optimise")
	sweepCmd.Flags().BoolVar(&maximize, "max", false, "maximise instead of minimise")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for rendered svgs")
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, renderCmd, viewCmd, exportCSVCmd, exportJSONCmd, presetsCmd, solversCmd, spectrumCmd, sweepCmd, batchCmd, reindexCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("solver") {
		cfg.Solver = solver
	}
	if flags.Changed("radius") {
		cfg.Radius = radius
	}
	if flags.Changed("grid") {
		cfg.Domain = config.DomainConfig{
			Lx: float64(gridSize), Ly: float64(gridSize),
			Nx: gridSize, Ny: gridSize,
		}
	}
	if flags.Changed("particles") {
		ps, err := config.LoadParticleTable(partFile)
		if err != nil {
			return nil, err
		}
		cfg.Particles = ps
	}
	if flags.Changed("integrator") {
		cfg.Render.Integrator = integrator
	}
	if flags.Changed("density") {
		cfg.Render.Density = density
	}
	if flags.Changed("size") {
		cfg.Render.Size = svgSize
	}

	return cfg, cfg.Validate()
}

func runFlow(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp := experiment.New(cfg)
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	meta := res.Metadata()
	if !noSave {
		st, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()
		runID, err := st.Save(meta, res.Velocity)
		if err != nil {
			return err
		}
		slog.Info("run saved", "id", runID, "dir", st.Dir(runID))
	}

	if err := export.WriteFile(outFile, res.SVG(cfg.Solver+" stresslet flow", cfg.Render.Size)); err != nil {
		return err
	}

	fmt.Println(viz.Summary(meta, viz.GetTheme(theme)))
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

// openIndex opens the SQLite run index kept in the data directory.
func openIndex() (*storage.Index, func(), error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, nil, err
	}

	db, err := sql.Open("sqlite", "file:"+filepath.Join(dataDir, "index.db"))
	if err != nil {
		return nil, nil, err
	}
	idx, err := storage.NewIndex(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return idx, func() { db.Close() }, nil
}

// openStore opens the run directory with its index attached.
func openStore() (*storage.Store, func(), error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, nil, err
	}

	idx, closeIndex, err := openIndex()
	if err != nil {
		return nil, nil, err
	}
	st.AttachIndex(idx)
	return st, closeIndex, nil
}

// loadRun reads the run named in args, or the most recent one.
func loadRun(args []string) (*experiment.Result, *storage.RunMetadata, error) {
	st := storage.New(dataDir)

	var runID string
	if len(args) > 0 {
		runID = args[0]
	} else {
		runs, err := st.List()
		if err != nil {
			return nil, nil, err
		}
		if len(runs) == 0 {
			return nil, nil, fmt.Errorf("no runs found in %s", dataDir)
		}
		runID = runs[len(runs)-1].ID
	}

	meta, v, err := st.LoadField(runID)
	if err != nil {
		return nil, nil, err
	}
	res, err := experiment.Restore(meta, v)
	if err != nil {
		return nil, nil, err
	}
	return res, meta, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	idx, closeIndex, err := openIndex()
	if err != nil {
		return err
	}
	defer closeIndex()

	runs, err := idx.List(storage.RunFilter{Solver: listSolver, Limit: listLimit})
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOLVER\tTIME\tGRID\tRADIUS\tNP\tMAX SPEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%g\t%d\t%.4g\n",
			run.ID,
			run.Solver,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Nx, run.Ny,
			run.Radius,
			len(run.Particles),
			run.Metrics["max_speed"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	res, meta, err := loadRun(args)
	if err != nil {
		return err
	}

	fmt.Println(viz.Summary(meta, viz.GetTheme(theme)))
	fmt.Println()
	fmt.Print(viz.Profiles(res.Field, plotWidth, plotHeight))
	if !plotLines {
		return nil
	}

	integ, err := experiment.NewRegistry().GetIntegrator(integrator)
	if err != nil {
		return err
	}
	opts := streamline.DefaultOptions()
	opts.Density = density
	if err := res.Trace(cmd.Context(), integ, opts); err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(viz.StreamlinePreview(res.Streamlines, meta.Lx, meta.Ly, plotWidth))
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	res, meta, err := loadRun(args)
	if err != nil {
		return err
	}

	integ, err := experiment.NewRegistry().GetIntegrator(integrator)
	if err != nil {
		return err
	}
	opts := streamline.DefaultOptions()
	opts.Density = density
	if err := res.Trace(cmd.Context(), integ, opts); err != nil {
		return err
	}

	if err := export.WriteFile(outFile, res.SVG(meta.ID, svgSize)); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	res, meta, err := loadRun(args)
	if err != nil {
		return err
	}

	m := viz.NewViewer(meta.ID, res.Field, res.Particles).WithTheme(theme)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func exportCSV(cmd *cobra.Command, args []string) error {
	res, meta, err := loadRun(args)
	if err != nil {
		return err
	}
	return storage.WriteFieldCSV(os.Stdout, meta.Nx, meta.Ny, res.Velocity)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	res, meta, err := loadRun(args)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, res.Velocity)
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	res, meta, err := loadRun(args)
	if err != nil {
		return err
	}

	shells := analysis.EnergySpectrum(res.Field)
	graph := asciigraph.Plot(shells[1:],
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("E(m), m = 1..%d  (%s)", len(shells)-1, meta.ID)),
	)
	fmt.Println(graph)

	hi := min(meta.Nx, meta.Ny) / 2
	if slope, err := analysis.SpectralSlope(shells, 2, hi-1); err == nil {
		fmt.Printf("\nlog-log slope over m = 2..%d: %.3f\n", hi-1, slope)
	}
	return nil
}

// parseSweep turns name=v1,v2 flags into names and value ranges.
func parseSweep(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, s := range specs {
		name, list, ok := strings.Cut(s, "=")
		if !ok {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", s)
		}
		var vals []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad value in --param %q: %w", s, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func sweepRun(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	base.Render.Streamlines = false

	names, ranges, err := parseSweep(sweepParam)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no --param given (sweepable: %v)", optim.Sweepable())
	}

	gs := optim.NewGridSearch(names, ranges)
	if maximize {
		gs.Maximize()
	}

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		cfg.Particles = append([]config.ParticleConfig(nil), base.Particles...)
		if err := optim.ApplyParams(&cfg, params); err != nil {
			return nil, err
		}
		return experiment.New(&cfg), nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, trials, err := gs.Search(ctx, build, metricName)
	if err != nil {
		return err
	}

	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(sorted, "\t")), strings.ToUpper(metricName))
	for _, t := range trials {
		for _, name := range sorted {
			fmt.Fprintf(w, "%g\t", t.Params[name])
		}
		fmt.Fprintf(w, "%.6g\n", t.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6g at %v\n", metricName, best.Value, best.Params)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		var closeStore func()
		st, closeStore, err = openStore()
		if err != nil {
			return err
		}
		defer closeStore()
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunScenario(ctx, sc, st, outDir)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN\tMAX SPEED\tENERGY\tSVG")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%.4g\t%.4g\t%s\n", r.Name, r.RunID, r.Metrics["max_speed"], r.Metrics["kinetic_energy"], r.SVG)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func reindexRuns(cmd *cobra.Command, args []string) error {
	idx, closeIndex, err := openIndex()
	if err != nil {
		return err
	}
	defer closeIndex()

	n, err := idx.Rebuild(storage.New(dataDir))
	if err != nil {
		return err
	}
	fmt.Printf("indexed %d run(s)\n", n)
	return nil
}
