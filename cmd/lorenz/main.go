package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gicrisf/org-lorenz-attractor/internal/analysis"
	"github.com/gicrisf/org-lorenz-attractor/internal/config"
	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
	"github.com/gicrisf/org-lorenz-attractor/internal/export"
	"github.com/gicrisf/org-lorenz-attractor/internal/integrators"
	"github.com/gicrisf/org-lorenz-attractor/internal/physics"
	"github.com/gicrisf/org-lorenz-attractor/internal/storage"
	"github.com/gicrisf/org-lorenz-attractor/internal/viz"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	themeName  string
	configFile string
	preset     string

	// Run configuration overrides, applied only when set on the command line.
	t0Flag       float64
	tmaxFlag     float64
	samplesFlag  int
	rtolFlag     float64
	atolFlag     float64
	maxStepFlag  float64
	maxStepsFlag int
	uFlag        float64
	vFlag        float64
	wFlag        float64
	sigmaFlag    float64
	rhoFlag      float64
	betaFlag     float64
	setFlags     []string

	// Plot axes and output targets.
	xComp      string
	yComp      string
	plotWidth  int
	plotHeight int
	svgFile    string
	outFile    string
	seriesComp string

	// Analysis tunables.
	analyzeComp    string
	lyapTransient  float64
	lyapWindow     float64
	lyapWindows    int
	sweepParam     string
	sweepFrom      float64
	sweepTo        float64
	sweepPoints    int
	sweepComp      string
	sweepTransient float64
	sweepTime      float64
	sweepWorkers   int
	poincComp      string
	levelFlag      float64
	limitFlag      int
)

// main wires up the command tree; with no subcommand the preset picker opens.
func main() {
	rootCmd := &cobra.Command{
		Use:   "lorenz",
		Short: "lorenz attractor lab: adaptive integration, analysis, terminal replay",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunPicker(themeName)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".lorenz", "data directory")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "cyberpunk", "color theme for terminal views")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a trajectory and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runModel,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored components against time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xComp, "x", "u", "component on the x axis")
	phaseCmd.Flags().StringVar(&yComp, "y", "w", "component on the y axis")
	phaseCmd.Flags().IntVar(&plotWidth, "width", 90, "canvas width in cells")
	phaseCmd.Flags().IntVar(&plotHeight, "height", 28, "canvas height in cells")
	phaseCmd.Flags().StringVar(&svgFile, "svg", "", "also write the canvas as svg")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "power spectrum of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeComp, "component", "u", "state component to analyze")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [model]",
		Short: "estimate the largest lyapunov exponent",
		Args:  cobra.MaximumNArgs(1),
		RunE:  lyapunovExponent,
	}
	addRunFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&lyapTransient, "transient", 5, "settle time before measuring")
	lyapunovCmd.Flags().Float64Var(&lyapWindow, "window", 2, "renormalization window length")
	lyapunovCmd.Flags().IntVar(&lyapWindows, "windows", 40, "number of windows to average")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "sweep a coefficient and collect peaks",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepModel,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "rho", "coefficient to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 20, "first coefficient value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 200, "last coefficient value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 60, "number of coefficient values")
	sweepCmd.Flags().StringVar(&sweepComp, "component", "w", "component whose peaks are recorded")
	sweepCmd.Flags().Float64Var(&sweepTransient, "transient", 20, "settle time dropped per run")
	sweepCmd.Flags().Float64Var(&sweepTime, "time", 30, "recorded time per run")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "parallel runs (0 = all cpus)")
	sweepCmd.Flags().StringVar(&outFile, "out", "", "write peaks as csv")

	poincareCmd := &cobra.Command{
		Use:   "poincare [model]",
		Short: "poincare section of a fresh trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  poincareSection,
	}
	addRunFlags(poincareCmd)
	poincareCmd.Flags().StringVar(&poincComp, "component", "w", "component defining the section plane")
	poincareCmd.Flags().Float64Var(&levelFlag, "level", 27, "section plane level")
	poincareCmd.Flags().IntVar(&limitFlag, "limit", 20, "crossings to print (0 = all)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print full run data as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "print run samples as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "write a phase portrait as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&xComp, "x", "u", "component on the x axis")
	exportSVGCmd.Flags().StringVar(&yComp, "y", "w", "component on the y axis")
	exportSVGCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a png/svg/pdf plot of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVar(&xComp, "x", "u", "component on the x axis")
	renderCmd.Flags().StringVar(&yComp, "y", "w", "component on the y axis")
	renderCmd.Flags().StringVar(&seriesComp, "series", "", "plot this component against time instead")
	renderCmd.Flags().StringVar(&outFile, "out", "", "output file (default <run_id>.png)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "integrate and replay in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "time the solver across tolerances",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchModel,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, analyzeCmd, lyapunovCmd,
		sweepCmd, poincareCmd, exportCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd,
		renderCmd, presetsCmd, liveCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addRunFlags registers the flags shared by every command that integrates a
// fresh trajectory.
func addRunFlags(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.Float64Var(&t0Flag, "t0", 0, "start time")
	fl.Float64Var(&tmaxFlag, "tmax", config.DefaultTMax, "end time")
	fl.IntVar(&samplesFlag, "samples", config.DefaultSamples, "uniform samples to record")
	fl.Float64Var(&rtolFlag, "rtol", integrators.DefaultRTol, "relative tolerance")
	fl.Float64Var(&atolFlag, "atol", integrators.DefaultATol, "absolute tolerance")
	fl.Float64Var(&maxStepFlag, "max-step", 0, "step size ceiling (0 = span)")
	fl.IntVar(&maxStepsFlag, "max-steps", 0, "step attempt ceiling (0 = default)")
	fl.Float64Var(&uFlag, "u", 0, "initial u")
	fl.Float64Var(&vFlag, "v", 1, "initial v")
	fl.Float64Var(&wFlag, "w", 1.05, "initial w")
	fl.Float64Var(&sigmaFlag, "sigma", 10, "lorenz sigma")
	fl.Float64Var(&rhoFlag, "rho", 28, "lorenz rho")
	fl.Float64Var(&betaFlag, "beta", 8.0/3, "lorenz beta")
	fl.StringArrayVar(&setFlags, "set", nil, "coefficient override name=value (repeatable)")
	fl.StringVar(&configFile, "config", "", "config file (yaml)")
	fl.StringVar(&preset, "preset", "", "named preset configuration")
}

// loadRunConfig builds the effective run configuration: defaults, then the
// preset, then the config file, then any flags set on the command line.
func loadRunConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (have: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if model != "" {
		cfg.Model = model
	}
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	fl := cmd.Flags()
	if fl.Changed("t0") {
		cfg.T0 = t0Flag
	}
	if fl.Changed("tmax") {
		cfg.TMax = tmaxFlag
	}
	if fl.Changed("samples") {
		cfg.Samples = samplesFlag
	}
	if fl.Changed("rtol") {
		cfg.RTol = rtolFlag
	}
	if fl.Changed("atol") {
		cfg.ATol = atolFlag
	}
	if fl.Changed("max-step") {
		cfg.MaxStep = maxStepFlag
	}
	if fl.Changed("max-steps") {
		cfg.MaxSteps = maxStepsFlag
	}
	if fl.Changed("u") {
		cfg.InitState.U = uFlag
	}
	if fl.Changed("v") {
		cfg.InitState.V = vFlag
	}
	if fl.Changed("w") {
		cfg.InitState.W = wFlag
	}
	if fl.Changed("sigma") {
		setCoefficient(cfg, "sigma", sigmaFlag)
	}
	if fl.Changed("rho") {
		setCoefficient(cfg, "rho", rhoFlag)
	}
	if fl.Changed("beta") {
		setCoefficient(cfg, "beta", betaFlag)
	}
	for _, kv := range setFlags {
		name, val, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("bad --set %q, want name=value", kv)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return fmt.Errorf("bad --set %q: %w", kv, err)
		}
		setCoefficient(cfg, strings.TrimSpace(name), x)
	}
	return nil
}

func setCoefficient(cfg *config.Config, name string, value float64) {
	if cfg.Params == nil {
		cfg.Params = map[string]float64{}
	}
	cfg.Params[name] = value
}

// solveRun instantiates the configured model and integrates it over the
// configured span.
func solveRun(cfg *config.Config) (physics.Model, *integrators.Solution, error) {
	sys, err := physics.New(cfg.Model)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ApplyParams(sys); err != nil {
		return nil, nil, err
	}
	sol, err := integrators.Solve(sys, cfg.InitialState(), cfg.T0, cfg.TMax, cfg.Options())
	if err != nil {
		return nil, nil, err
	}
	return sys, sol, nil
}

func runModel(cmd *cobra.Command, args []string) error {
	model := ""
	if len(args) > 0 {
		model = args[0]
	}
	cfg, err := loadRunConfig(cmd, model)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("integrating %s over [%g, %g]...\n", cfg.Model, cfg.T0, cfg.TMax)
	start := time.Now()

	sys, sol, err := solveRun(cfg)
	if err != nil {
		return err
	}
	times, states, err := sol.SampleUniform(cfg.Samples)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, sys.Params(), sol.Stats(), times, states)
	if err != nil {
		return err
	}

	stats := sol.Stats()
	fmt.Printf("completed in %v\n", elapsed.Round(time.Microsecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d accepted, %d rejected\n", stats.Steps, stats.Rejected)
	fmt.Printf("evals: %d\n", stats.Evals)
	fmt.Printf("last h: %.3e\n", stats.LastStep)
	fmt.Printf("final state:")
	for i, x := range states[len(states)-1] {
		fmt.Printf(" %s=%.4f", export.ComponentName(i), x)
	}
	fmt.Println()

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSPAN\tSAMPLES\tSTEPS\tREJECTED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%d\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.TMax-run.T0,
			run.Samples,
			run.Stats.Steps,
			run.Stats.Rejected,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, states, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no samples in run %s", runID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d over [%g, %g]\n\n", len(states), meta.T0, meta.TMax)

	for c := 0; c < len(states[0]); c++ {
		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][c]
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s(t)", export.ComponentName(c))),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, states, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	xi, err := export.ComponentIndex(xComp)
	if err != nil {
		return err
	}
	yi, err := export.ComponentIndex(yComp)
	if err != nil {
		return err
	}

	canvas, err := viz.Plot2D(states, xi, yi, plotWidth, plotHeight)
	if err != nil {
		return err
	}

	fmt.Printf("phase portrait: %s (%s)\n", meta.ID, meta.Model)
	fmt.Printf("%s vs %s, %d samples\n\n", export.ComponentName(xi), export.ComponentName(yi), len(states))
	fmt.Println(canvas.String())

	if svgFile != "" {
		if err := os.WriteFile(svgFile, []byte(export.CanvasToSVG(canvas, 6)), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, states, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	ci, err := export.ComponentIndex(analyzeComp)
	if err != nil {
		return err
	}
	if len(states) < 2 || ci >= len(states[0]) {
		return fmt.Errorf("run %s has no usable samples for component %s", runID, analyzeComp)
	}

	signal := make([]float64, len(states))
	for i := range states {
		signal[i] = states[i][ci]
	}
	freqs, power, err := analysis.PowerSpectrum(signal, times[1]-times[0])
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s (%s)\n\n", meta.ID, meta.Model)

	// The interesting structure sits in the low bins; the tail is noise.
	cut := len(power) / 4
	if cut < 3 {
		cut = len(power)
	}
	graph := asciigraph.Plot(power[1:cut],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum of %s", export.ComponentName(ci))),
	)
	fmt.Println(graph)
	fmt.Println()

	peak := 1
	for i := 2; i < cut; i++ {
		if power[i] > power[peak] {
			peak = i
		}
	}
	fmt.Printf("dominant frequency: %.4f hz\n", freqs[peak])
	if freqs[peak] > 0 {
		fmt.Printf("period: %.3f s\n", 1/freqs[peak])
	}

	b, err := analysis.BoundsOf(states)
	if err != nil {
		return err
	}
	fmt.Println("\nattractor extent:")
	for i := range b.Min {
		fmt.Printf("  %s in [%.3f, %.3f]\n", export.ComponentName(i), b.Min[i], b.Max[i])
	}

	// Thin the samples before the quadratic recurrence scan.
	stride := (len(states)-1)/2000 + 1
	thinned := make([]dynamo.State, 0, len(states)/stride+1)
	for i := 0; i < len(states); i += stride {
		thinned = append(thinned, states[i])
	}
	lag := len(thinned) / 100
	if lag < 10 {
		lag = 10
	}
	if lag < len(thinned) {
		d, err := analysis.MinReturnDistance(thinned, lag)
		if err != nil {
			return err
		}
		fmt.Printf("\nmin return distance: %.4f across %d thinned samples\n", d, len(thinned))
		if d > 1e-3 {
			fmt.Println("the sampled path never closes on itself")
		} else {
			fmt.Println("near-recurrence detected, likely periodic or settled")
		}
	}
	return nil
}

func lyapunovExponent(cmd *cobra.Command, args []string) error {
	model := ""
	if len(args) > 0 {
		model = args[0]
	}
	cfg, err := loadRunConfig(cmd, model)
	if err != nil {
		return err
	}
	sys, err := physics.New(cfg.Model)
	if err != nil {
		return err
	}
	if err := cfg.ApplyParams(sys); err != nil {
		return err
	}

	fmt.Printf("estimating largest lyapunov exponent for %s...\n", cfg.Model)
	start := time.Now()
	lam, err := analysis.LargestLyapunov(sys, cfg.InitialState(), lyapTransient, lyapWindow, lyapWindows, cfg.Options())
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start).Round(time.Millisecond))

	fmt.Printf("lambda_max: %.4f per time unit\n", lam)
	switch {
	case lam > 0.01:
		fmt.Printf("chaotic: nearby trajectories separate, prediction horizon ~%.1f time units\n", 1/lam)
	case lam < -0.01:
		fmt.Println("stable: nearby trajectories converge")
	default:
		fmt.Println("marginal: no exponential separation detected")
	}
	return nil
}

func sweepModel(cmd *cobra.Command, args []string) error {
	model := ""
	if len(args) > 0 {
		model = args[0]
	}
	cfg, err := loadRunConfig(cmd, model)
	if err != nil {
		return err
	}
	ci, err := export.ComponentIndex(sweepComp)
	if err != nil {
		return err
	}

	// Fail on a bad model or coefficient name before fanning out.
	probe, err := physics.New(cfg.Model)
	if err != nil {
		return err
	}
	if err := cfg.ApplyParams(probe); err != nil {
		return err
	}
	newSys := func() dynamo.System {
		sys, _ := physics.New(cfg.Model)
		_ = cfg.ApplyParams(sys)
		return sys
	}

	scfg := analysis.SweepConfig{
		Param:     sweepParam,
		From:      sweepFrom,
		To:        sweepTo,
		Points:    sweepPoints,
		Component: ci,
		Transient: sweepTransient,
		Duration:  sweepTime,
		Samples:   cfg.Samples,
		Workers:   sweepWorkers,
	}

	fmt.Printf("sweeping %s over [%g, %g] in %d runs...\n", sweepParam, sweepFrom, sweepTo, sweepPoints)
	start := time.Now()
	points, err := analysis.Sweep(newSys, cfg.InitialState(), scfg, cfg.Options())
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start).Round(time.Millisecond))

	counts := make([]float64, len(points))
	failed := 0
	for i, p := range points {
		if p.Err != nil {
			failed++
			continue
		}
		counts[i] = float64(len(p.Peaks))
	}
	graph := asciigraph.Plot(counts,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s peak count vs %s", export.ComponentName(ci), sweepParam)),
	)
	fmt.Println(graph)
	if failed > 0 {
		fmt.Printf("\n%d of %d runs failed\n", failed, len(points))
	}

	if outFile != "" {
		if err := writeSweepCSV(outFile, sweepParam, points); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
	}
	return nil
}

func writeSweepCSV(path, param string, points []analysis.SweepPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{param, "peak"}); err != nil {
		return err
	}
	for _, p := range points {
		if p.Err != nil {
			continue
		}
		for _, peak := range p.Peaks {
			rec := []string{
				strconv.FormatFloat(p.Value, 'g', -1, 64),
				strconv.FormatFloat(peak, 'g', -1, 64),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func poincareSection(cmd *cobra.Command, args []string) error {
	model := ""
	if len(args) > 0 {
		model = args[0]
	}
	cfg, err := loadRunConfig(cmd, model)
	if err != nil {
		return err
	}
	ci, err := export.ComponentIndex(poincComp)
	if err != nil {
		return err
	}

	_, sol, err := solveRun(cfg)
	if err != nil {
		return err
	}

	crossings, err := analysis.Poincare(sol, ci, levelFlag, cfg.Samples)
	if err != nil {
		return err
	}

	fmt.Printf("poincare section: upward crossings of %s = %g\n", export.ComponentName(ci), levelFlag)
	fmt.Printf("found %d crossings over [%g, %g]\n\n", len(crossings), cfg.T0, cfg.TMax)
	if len(crossings) == 0 {
		return nil
	}

	shown := crossings
	if limitFlag > 0 && len(shown) > limitFlag {
		shown = shown[:limitFlag]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := "T"
	for i := range crossings[0].State {
		header += "\t" + strings.ToUpper(export.ComponentName(i))
	}
	fmt.Fprintln(w, header)
	for _, c := range shown {
		row := fmt.Sprintf("%.4f", c.T)
		for _, x := range c.State {
			row += fmt.Sprintf("\t%.4f", x)
		}
		fmt.Fprintln(w, row)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(crossings) > len(shown) {
		fmt.Printf("... %d more\n", len(crossings)-len(shown))
	}

	if len(crossings) > 2 {
		var sum float64
		for i := 1; i < len(crossings); i++ {
			sum += crossings[i].T - crossings[i-1].T
		}
		fmt.Printf("\nmean return time: %.4f\n", sum/float64(len(crossings)-1))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func loadTrajectory(runID string) (*export.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	times, states, err := st.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	return export.NewTrajectory(meta, times, states)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	tr, err := loadTrajectory(args[0])
	if err != nil {
		return err
	}
	return tr.WriteJSON(os.Stdout)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	tr, err := loadTrajectory(args[0])
	if err != nil {
		return err
	}
	return tr.WriteCSV(os.Stdout)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	_, states, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	xi, err := export.ComponentIndex(xComp)
	if err != nil {
		return err
	}
	yi, err := export.ComponentIndex(yComp)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := export.PhaseSVG(out, states, xi, yi, 800, 600); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("wrote %s\n", outFile)
	}
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, states, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = runID + ".png"
	}

	if seriesComp != "" {
		ci, err := export.ComponentIndex(seriesComp)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("%s, %s(t)", meta.Model, export.ComponentName(ci))
		if err := export.PlotSeries(times, states, ci, title, path); err != nil {
			return err
		}
	} else {
		xi, err := export.ComponentIndex(xComp)
		if err != nil {
			return err
		}
		yi, err := export.ComponentIndex(yComp)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("%s phase portrait", meta.Model)
		if err := export.PlotPhase(states, xi, yi, title, path); err != nil {
			return err
		}
	}

	fmt.Printf("wrote %s\n", path)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODEL\tSPAN\tCOEFFICIENTS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.0fs\t%s\n", name, cfg.Model, cfg.TMax-cfg.T0, describeParams(cfg))
	}
	return w.Flush()
}

func describeParams(cfg *config.Config) string {
	if len(cfg.Params) == 0 {
		return "model defaults"
	}
	names := make([]string, 0, len(cfg.Params))
	for n := range cfg.Params {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%g", n, cfg.Params[n])
	}
	return strings.Join(parts, " ")
}

func runLive(cmd *cobra.Command, args []string) error {
	model := ""
	if len(args) > 0 {
		model = args[0]
	}
	cfg, err := loadRunConfig(cmd, model)
	if err != nil {
		return err
	}

	_, sol, err := solveRun(cfg)
	if err != nil {
		return err
	}
	times, states, err := sol.SampleUniform(cfg.Samples)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(cfg.Model, times, states, sol.Stats())
	if err != nil {
		return err
	}
	return viz.Run(m.WithTheme(themeName))
}

func benchModel(cmd *cobra.Command, args []string) error {
	model := config.DefaultModel
	if len(args) > 0 {
		model = args[0]
	}
	sys, err := physics.New(model)
	if err != nil {
		return err
	}

	spans := []float64{10, 50, 100}
	rtols := []float64{1e-3, 1e-6, 1e-9}

	fmt.Printf("benchmarking %s\n\n", model)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPAN\tRTOL\tSTEPS\tREJECTED\tEVALS\tTIME\tSTEPS/SEC")

	for _, span := range spans {
		for _, rtol := range rtols {
			opts := integrators.Options{RTol: rtol, ATol: rtol * 1e-3}

			start := time.Now()
			sol, err := integrators.Solve(sys, sys.DefaultState(), 0, span, opts)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stats := sol.Stats()
			fmt.Fprintf(w, "%.0f\t%.0e\t%d\t%d\t%d\t%v\t%.0f\n",
				span, rtol, stats.Steps, stats.Rejected, stats.Evals,
				elapsed.Round(time.Microsecond),
				float64(stats.Steps)/elapsed.Seconds())
		}
	}
	return w.Flush()
}
