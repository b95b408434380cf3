package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/heatlab/internal/automation"
	"github.com/san-kum/heatlab/internal/config"
	"github.com/san-kum/heatlab/internal/diffusion"
	"github.com/san-kum/heatlab/internal/experiment"
	"github.com/san-kum/heatlab/internal/export"
	"github.com/san-kum/heatlab/internal/storage"
	"github.com/san-kum/heatlab/internal/viz"
)

type app struct {
	dataDir string

	configFile string
	preset     string
	name       string
	nx, ny, nz int
	dt         float64
	dtFactor   float64
	iterations int
	backend    string
	workers    int
	workGroup  []int
	boundary   string
	overlap    bool
	width      []int
	dims       []int
	sampleRate int
	saveField  bool
	noSave     bool
	quiet      bool

	series      string
	plotWidth   int
	plotHeight  int
	mapWidth    int
	theme       string
	plain       bool
	level       float64
	exportPath  string
	svgPath     string
	sweepParam  string
	sweepFrom   float64
	sweepTo     float64
	sweepPoints int
	sweepValues []float64
	parallel    int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "heatlab",
		Short:        "explicit heat diffusion on decomposed grids",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data", ".heatlab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  a.runSimulation,
	}
	a.configFlags(runCmd)
	runCmd.Flags().BoolVar(&a.noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress per-sample progress")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "validate a configuration and show its launch geometry",
		Args:  cobra.NoArgs,
		RunE:  a.checkConfig,
	}
	a.configFlags(checkCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  a.listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  a.showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and diagnostics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  a.exportRun,
	}
	exportCmd.Flags().StringVarP(&a.exportPath, "out", "o", "", "output file (stdout when empty)")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the diagnostics of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  a.plotRun,
	}
	plotCmd.Flags().StringVar(&a.series, "series", "heat,max", "comma separated series ("+strings.Join(viz.Series(), ", ")+")")
	plotCmd.Flags().IntVar(&a.plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&a.plotHeight, "height", 10, "plot height")

	heatmapCmd := &cobra.Command{
		Use:   "heatmap [run_id]",
		Short: "draw the saved field of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  a.heatmapRun,
	}
	heatmapCmd.Flags().IntVar(&a.mapWidth, "width", 64, "columns")
	heatmapCmd.Flags().StringVar(&a.theme, "theme", "thermal", "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	heatmapCmd.Flags().BoolVar(&a.plain, "plain", false, "no colour")
	heatmapCmd.Flags().Float64Var(&a.level, "level", 0, "draw the isotherm at this temperature instead")
	heatmapCmd.Flags().StringVar(&a.svgPath, "svg", "", "also write the image as svg to this file")

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list preset configurations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.listPresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter and report stability",
		Args:  cobra.NoArgs,
		RunE:  a.runSweep,
	}
	a.configFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&a.sweepParam, "param", "dt_factor", "parameter ("+strings.Join(automation.SweepParams(), ", ")+")")
	sweepCmd.Flags().Float64Var(&a.sweepFrom, "from", 0.25, "first value")
	sweepCmd.Flags().Float64Var(&a.sweepTo, "to", 2, "last value")
	sweepCmd.Flags().IntVar(&a.sweepPoints, "points", 8, "number of values")
	sweepCmd.Flags().Float64SliceVar(&a.sweepValues, "values", nil, "explicit values (overrides from/to/points)")
	sweepCmd.Flags().IntVar(&a.parallel, "parallel", 1, "concurrent runs")

	rootCmd.AddCommand(runCmd, checkCmd, listCmd, showCmd, exportCmd, plotCmd, heatmapCmd, presetsCmd, scenarioCmd, sweepCmd)
	return rootCmd
}

func (a *app) configFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&a.configFile, "config", "", "config file path (yaml)")
	f.StringVar(&a.preset, "preset", "", "start from a preset")
	f.StringVar(&a.name, "name", "", "run name")
	f.IntVar(&a.nx, "nx", config.DefaultNx, "global cells along x, halo included")
	f.IntVar(&a.ny, "ny", config.DefaultNy, "global cells along y, halo included")
	f.IntVar(&a.nz, "nz", 1, "global cells along z, 1 for a planar grid")
	f.Float64Var(&a.dt, "dt", 0, "time step, 0 for the stability limit")
	f.Float64Var(&a.dtFactor, "dt-factor", 1, "fraction of the stability limit when dt is 0")
	f.IntVar(&a.iterations, "iterations", config.DefaultIterations, "iterations")
	f.StringVar(&a.backend, "backend", "auto", "compute backend")
	f.IntVar(&a.workers, "workers", 0, "pool workers, 0 for one per cpu")
	f.IntSliceVar(&a.workGroup, "work-group", nil, "work group extents")
	f.StringVar(&a.boundary, "boundary", "fixed", "boundary policy, one value or x,y,z")
	f.BoolVar(&a.overlap, "overlap", false, "overlap the exchange with the inner pass")
	f.IntSliceVar(&a.width, "boundary-width", nil, "boundary slab width per dimension in overlap mode")
	f.IntSliceVar(&a.dims, "dims", nil, "ranks per dimension")
	f.IntVar(&a.sampleRate, "sample-every", config.DefaultSampleEvery, "iterations between diagnostic samples")
	f.BoolVar(&a.saveField, "save-field", false, "store the final field")
}

// loadConfig resolves preset, then config file, then explicitly set flags.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if a.preset != "" {
		p, ok := config.Lookup(a.preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s", a.preset)
		}
		cfg = p
	}
	if a.configFile != "" {
		loaded, err := config.Load(a.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("name") {
		cfg.Name = a.name
	}
	if f.Changed("nx") {
		cfg.Grid.Nx = a.nx
	}
	if f.Changed("ny") {
		cfg.Grid.Ny = a.ny
	}
	if f.Changed("nz") {
		cfg.Grid.Nz = a.nz
	}
	if f.Changed("dt") {
		cfg.Dt = a.dt
	}
	if f.Changed("dt-factor") {
		cfg.DtFactor = a.dtFactor
	}
	if f.Changed("iterations") {
		cfg.Iterations = a.iterations
	}
	if f.Changed("backend") {
		cfg.Backend = a.backend
	}
	if f.Changed("workers") {
		cfg.Workers = a.workers
	}
	if f.Changed("work-group") {
		cfg.WorkGroup = a.workGroup
	}
	if f.Changed("boundary") {
		b, err := parseBoundary(a.boundary)
		if err != nil {
			return nil, err
		}
		cfg.Boundary = b
	}
	if f.Changed("overlap") {
		cfg.Overlap = a.overlap
	}
	if f.Changed("boundary-width") {
		cfg.BoundaryWidth = a.width
	}
	if f.Changed("dims") {
		cfg.Decomposition.Dims = a.dims
	}
	if f.Changed("sample-every") {
		cfg.Output.SampleEvery = a.sampleRate
	}
	if f.Changed("save-field") {
		cfg.Output.SaveField = a.saveField
	}
	return cfg, nil
}

func parseBoundary(s string) (config.BoundaryConfig, error) {
	parts := strings.Split(s, ",")
	switch len(parts) {
	case 1:
		return config.BoundaryConfig{X: parts[0], Y: parts[0], Z: parts[0]}, nil
	case 3:
		return config.BoundaryConfig{X: parts[0], Y: parts[1], Z: parts[2]}, nil
	}
	return config.BoundaryConfig{}, fmt.Errorf("boundary %q: want one policy or three comma separated", s)
}

func (a *app) runSimulation(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(a.dataDir)
	if !a.noSave {
		if err := st.Init(); err != nil {
			return err
		}
	}

	exp := experiment.New(cfg, nil)
	var observers []diffusion.Observer
	if !a.quiet {
		observers = append(observers, progress(out, cfg.Iterations))
	}
	if err := exp.Setup(observers...); err != nil {
		return err
	}

	fmt.Fprintf(out, "running %s: %s, %d iterations, dt %.4g, %d rank(s)\n",
		cfg.Name, cfg.Shape(), cfg.Iterations, exp.Dt(), exp.Ranks())

	result, err := exp.Run(cmd.Context())
	if err != nil {
		var stepErr *diffusion.StepError
		if errors.As(err, &stepErr) {
			return fmt.Errorf("stopped at iteration %d: %w", stepErr.Iteration, err)
		}
		return err
	}

	fields := []viz.Field{
		{Label: "shape", Value: cfg.Shape().String()},
		{Label: "dt", Value: strconv.FormatFloat(exp.Dt(), 'g', 6, 64)},
		{Label: "launch", Value: exp.Launch().String()},
		{Label: "iterations", Value: strconv.Itoa(result.Iterations)},
		{Label: "elapsed", Value: result.Elapsed.String()},
	}
	fields = append(fields, viz.MetricFields(result.Metrics)...)

	if !a.noSave {
		runID, err := st.Save(metadata(cfg, exp), result, cfg.Output.SaveField)
		if err != nil {
			return err
		}
		fields = append([]viz.Field{{Label: "run id", Value: runID}}, fields...)
	}
	fmt.Fprintln(out, viz.Summary(cfg.Name, fields))
	return nil
}

func progress(out io.Writer, total int) diffusion.Observer {
	return diffusion.ObserverFunc(func(s diffusion.Sample) {
		frac := 1.0
		if total > 0 {
			frac = float64(s.Iteration) / float64(total)
		}
		fmt.Fprintf(out, "%s %6d/%d  heat %.6g  max %.6g  min %.6g\n",
			viz.ProgressBar(frac, 20), s.Iteration, total, s.Heat, s.Max, s.Min)
	})
}

func metadata(cfg *config.Config, exp *experiment.Experiment) storage.RunMetadata {
	shape := cfg.Shape()
	geom := exp.Geometry()
	meta := storage.RunMetadata{
		Name:     cfg.Name,
		Shape:    [3]int{shape.Nx, shape.Ny, shape.Nz},
		Lengths:  [3]float64{geom.Lx, geom.Ly, geom.Lz},
		Dt:       exp.Dt(),
		Backend:  cfg.Backend,
		Boundary: [3]string{cfg.Boundary.X, cfg.Boundary.Y, cfg.Boundary.Z},
		Dims:     [3]int{1, 1, 1},
		Overlap:  cfg.Overlap,
	}
	if dims, err := cfg.Dims(); err == nil {
		meta.Dims = dims
	}
	return meta
}

func (a *app) checkConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, nil)
	if err := exp.Setup(); err != nil {
		fmt.Fprintln(out, viz.Status(false, err.Error()))
		return err
	}
	defer exp.Close()

	geom := exp.Geometry()
	fmt.Fprintln(out, viz.Summary(cfg.Name, []viz.Field{
		{Label: "shape", Value: cfg.Shape().String()},
		{Label: "spacing", Value: fmt.Sprintf("%.4g %.4g %.4g", geom.Dx, geom.Dy, geom.Dz)},
		{Label: "dt", Value: strconv.FormatFloat(exp.Dt(), 'g', 6, 64)},
		{Label: "stable dt", Value: strconv.FormatFloat(geom.StableDt(exp.Coefficient().Max()), 'g', 6, 64)},
		{Label: "launch", Value: exp.Launch().String()},
		{Label: "ranks", Value: strconv.Itoa(exp.Ranks())},
	}))
	fmt.Fprintln(out, viz.Status(true, "configuration is valid"))
	return nil
}

func (a *app) listRuns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	runs, err := storage.New(a.dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSHAPE\tITER\tDT\tRANKS\tELAPSED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%dx%d\t%d\t%.4g\t%d\t%.3fs\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Shape[0], run.Shape[1], run.Shape[2],
			run.Iterations,
			run.Dt,
			run.Dims[0]*run.Dims[1]*run.Dims[2],
			run.Elapsed,
		)
	}
	return w.Flush()
}

func (a *app) showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(a.dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadDiagnostics(args[0])
	if err != nil {
		return err
	}

	fields := []viz.Field{
		{Label: "name", Value: meta.Name},
		{Label: "time", Value: meta.Timestamp.Format("2006-01-02 15:04:05")},
		{Label: "shape", Value: fmt.Sprintf("%dx%dx%d", meta.Shape[0], meta.Shape[1], meta.Shape[2])},
		{Label: "dt", Value: strconv.FormatFloat(meta.Dt, 'g', 6, 64)},
		{Label: "iterations", Value: strconv.Itoa(meta.Iterations)},
		{Label: "backend", Value: meta.Backend},
		{Label: "boundary", Value: strings.Join(meta.Boundary[:], ",")},
		{Label: "dims", Value: fmt.Sprintf("%dx%dx%d", meta.Dims[0], meta.Dims[1], meta.Dims[2])},
		{Label: "overlap", Value: strconv.FormatBool(meta.Overlap)},
		{Label: "elapsed", Value: fmt.Sprintf("%.3fs", meta.Elapsed)},
	}
	if meta.FieldSlice >= 0 {
		fields = append(fields, viz.Field{Label: "field slice", Value: "z=" + strconv.Itoa(meta.FieldSlice)})
	}
	if peaks, err := viz.SeriesValues(samples, "max"); err == nil && len(peaks) > 1 {
		fields = append(fields, viz.Field{Label: "peak trend", Value: viz.Sparkline(peaks, 32)})
	}
	fields = append(fields, viz.MetricFields(meta.Metrics)...)
	fmt.Fprintln(cmd.OutOrStdout(), viz.Summary(meta.ID, fields))
	return nil
}

func (a *app) exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(a.dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadDiagnostics(args[0])
	if err != nil {
		return err
	}
	if a.exportPath != "" {
		return storage.ExportJSON(a.exportPath, *meta, samples)
	}
	return storage.WriteJSON(cmd.OutOrStdout(), *meta, samples)
}

func (a *app) plotRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st := storage.New(a.dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadDiagnostics(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "samples: %d\n\n", len(samples))
	for _, series := range strings.Split(a.series, ",") {
		graph, err := viz.PlotDiagnostics(samples, strings.TrimSpace(series), a.plotWidth, a.plotHeight)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out, viz.Separator(a.plotWidth))
	}
	return nil
}

func (a *app) heatmapRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st := storage.New(a.dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rows, err := st.LoadField(args[0])
	if err != nil {
		if errors.Is(err, storage.ErrNoField) {
			return fmt.Errorf("%w (run with --save-field)", err)
		}
		return err
	}
	theme, err := viz.GetTheme(a.theme)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "run: %s  slice z=%d\n", meta.ID, meta.FieldSlice)
	var svg string
	if cmd.Flags().Changed("level") {
		canvas := viz.Isotherm(rows, a.level, a.mapWidth)
		fmt.Fprintf(out, "isotherm at %g\n", a.level)
		fmt.Fprint(out, canvas.String())
		svg = export.CanvasToSVG(canvas, 4, theme)
	} else {
		fmt.Fprint(out, viz.Heatmap(rows, viz.HeatmapOptions{Width: a.mapWidth, Theme: theme, Plain: a.plain}))
		lo, hi := viz.Range(rows)
		fmt.Fprintln(out, viz.Legend(lo, hi, theme))
		svg = export.FieldToSVG(rows, theme, 8)
	}
	if a.svgPath == "" {
		return nil
	}

	f, err := os.Create(a.svgPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteSVG(f, svg); err != nil {
		return err
	}
	fmt.Fprintf(out, "svg written to %s\n", a.svgPath)
	return nil
}

func (a *app) listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	groups := config.Groups()
	if len(args) == 1 {
		groups = []string{args[0]}
	}
	for _, g := range groups {
		presets := config.ListPresets(g)
		if len(presets) == 0 {
			return fmt.Errorf("no presets in group: %s (available: %v)", g, config.Groups())
		}
		fmt.Fprintln(out, viz.GradientText(g+":", viz.ThemeThermal.Accent, viz.ThemeThermal.Hot))
		for _, p := range presets {
			cfg := config.GetPreset(g, p)
			fmt.Fprintf(out, "  %-16s %s, %d iterations\n", p, cfg.Shape(), cfg.Iterations)
		}
	}
	return nil
}

func (a *app) runScenario(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "scenario %s: %s\n", sc.Name, sc.Description)

	results, err := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), out)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tITER\tHEAT\tMAX\tELAPSED")
	for _, r := range results {
		last, _ := r.Result.LastSample()
		fmt.Fprintf(w, "%s\t%d\t%.6g\t%.6g\t%v\n", r.Name, r.Result.Iterations, last.Heat, last.Max, r.Result.Elapsed)
	}
	return w.Flush()
}

func (a *app) runSweep(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	values := a.sweepValues
	if len(values) == 0 {
		values = automation.Linspace(a.sweepFrom, a.sweepTo, a.sweepPoints)
	}
	sweep := &automation.ParameterSweep{Base: cfg, Param: a.sweepParam, Values: values, Parallel: a.parallel}
	results, err := automation.RunSweep(cmd.Context(), sweep, experiment.NewRegistry(), out)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tITER\tHEAT\tPEAK\tDRIFT\tGB/S\tSTABLE\n", strings.ToUpper(a.sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%d\t%.6g\t%.6g\t%.3e\t%.3f\t%v\n",
			r.ParamValue, r.Iterations, r.Heat, r.Peak, r.HeatDrift, r.Throughput, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	stable, unstable := automation.StabilityCount(results)
	fmt.Fprintln(out, viz.Status(unstable == 0, fmt.Sprintf("%d stable, %d unstable", stable, unstable)))
	return nil
}
