package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/agbru/mbcalc/internal/calibration"
	"github.com/agbru/mbcalc/internal/cli"
	"github.com/agbru/mbcalc/internal/config"
	apperrors "github.com/agbru/mbcalc/internal/errors"
	"github.com/agbru/mbcalc/internal/logging"
	"github.com/agbru/mbcalc/internal/mandelbrot"
	"github.com/agbru/mbcalc/internal/orchestration"
	"github.com/agbru/mbcalc/internal/server"
	"github.com/agbru/mbcalc/internal/ui"
)

// Application represents the mbcalc application instance.
// It encapsulates the configuration and provides methods to run
// the application in its various modes (render, calibration, server).
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Factory provides the renderers by name.
	Factory mandelbrot.RendererFactory
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
}

// New creates a new Application instance by parsing command-line arguments.
// It validates the configuration and returns an error if parsing or validation fails.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := mandelbrot.NewDefaultFactory()

	programName := "mbcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List())
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:    applyEngineDefaults(cfg),
		Factory:   factory,
		ErrWriter: errWriter,
	}, nil
}

// applyEngineDefaults replaces a width and worker count left at their static
// defaults with the cached calibration profile or, failing that, with the
// hardware estimates. Values given on the command line or in the
// environment are kept.
func applyEngineDefaults(cfg config.AppConfig) config.AppConfig {
	widthDefault := cfg.Width == mandelbrot.DefaultWidth
	workersDefault := cfg.Workers == mandelbrot.DefaultWorkers
	if !widthDefault && !workersDefault {
		return cfg
	}

	tuned, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile)
	if !loaded {
		tuned.Width = calibration.EstimateOptimalWidth()
		tuned.Workers = calibration.EstimateOptimalWorkers()
	}
	if widthDefault {
		cfg.Width = tuned.Width
	}
	if workersDefault {
		cfg.Workers = tuned.Workers
	}
	return cfg
}

// Run executes the application based on the configured mode.
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor)
	logging.Setup(a.Config.JSONOutput, a.Config.ServerMode, a.Config.Quiet, a.Config.NoColor)

	if a.Config.ServerMode {
		return a.runServer()
	}
	if a.Config.Calibrate {
		return a.runCalibration(ctx, out)
	}

	a.Config = a.runAutoCalibrationIfEnabled(ctx, out)
	return a.runRender(ctx, out)
}

func (a *Application) runServer() int {
	srv := server.NewServer(a.Factory, a.Config, server.WithLogger(logging.NewDefaultLogger("server")))
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	return calibration.RunCalibrationWithOptions(ctx, out, calibration.CalibrationOptions{
		ProfilePath: a.Config.CalibrationProfile,
		SaveProfile: true,
	})
}

// runAutoCalibrationIfEnabled returns the configuration with calibrated
// width and workers when auto-calibration is enabled and succeeds.
func (a *Application) runAutoCalibrationIfEnabled(ctx context.Context, out io.Writer) config.AppConfig {
	if !a.Config.AutoCalibrate {
		return a.Config
	}
	calOut := out
	if a.Config.Quiet || a.Config.JSONOutput {
		calOut = io.Discard
	}
	if updated, ok := calibration.AutoCalibrate(ctx, a.Config, calOut); ok {
		return updated
	}
	return a.Config
}

// runRender renders the configured view with the selected renderers and
// reports the outcome.
func (a *Application) runRender(ctx context.Context, out io.Writer) int {
	ctx, cancels := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancels.Cleanup()
	logger := logging.NewDefaultLogger("app")

	view, err := a.Config.View()
	if err != nil {
		return apperrors.HandleRenderError(err, 0, out, cli.CLIColorProvider{})
	}

	renderers, err := renderersToRun(a.Config.Tier, a.Factory)
	if err != nil {
		return apperrors.HandleRenderError(err, 0, out, cli.CLIColorProvider{})
	}

	if !a.Config.JSONOutput && !a.Config.Quiet {
		printExecutionConfig(a.Config, view, out)
		printExecutionMode(renderers, out)
	}
	logger.Debug("render started",
		logging.String("tier", a.Config.Tier),
		logging.Int("columns", view.Columns),
		logging.Int("rows", view.Rows),
		logging.Int("words", len(view.XMin)),
		logging.Int("width", a.Config.Width),
		logging.Int("workers", a.Config.Workers))

	progressOut := out
	if a.Config.Quiet || a.Config.JSONOutput {
		progressOut = io.Discard
	}
	results := orchestration.ExecuteRenders(ctx, renderers, view, a.Config.ToRenderOptions(), progressOut)

	if a.Config.JSONOutput {
		return printJSONResults(results, a.Config.ShowGrid, out)
	}
	if a.Config.Quiet {
		return a.reportQuiet(results, view, out)
	}
	return orchestration.AnalyzeComparisonResults(results, view, a.Config, out)
}

// reportQuiet prints the one-line summary of the preferred successful grid.
func (a *Application) reportQuiet(results []orchestration.RenderResult, view mandelbrot.View, out io.Writer) int {
	best := findBestResult(results)
	if best == nil {
		return apperrors.HandleRenderError(firstError(results), 0, a.ErrWriter, nil)
	}
	outCfg := cli.OutputConfig{OutputFile: a.Config.OutputFile, Quiet: true, ShowGrid: a.Config.ShowGrid}
	if err := cli.DisplayResultWithConfig(out, best.Name, best.Grid, view, best.Duration, outCfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving grid: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// renderersToRun resolves the tier name into renderers. "all" selects every
// registered renderer in name order.
func renderersToRun(tier string, factory mandelbrot.RendererFactory) ([]mandelbrot.Renderer, error) {
	names := []string{tier}
	if tier == "" || tier == config.DefaultTier {
		names = factory.List()
	}
	renderers := make([]mandelbrot.Renderer, 0, len(names))
	for _, name := range names {
		r, err := factory.Get(name)
		if err != nil {
			return nil, apperrors.NewConfigError("%v", err)
		}
		renderers = append(renderers, r)
	}
	return renderers, nil
}

func printExecutionConfig(cfg config.AppConfig, view mandelbrot.View, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "View: centre (%s%s%s, %s%s%s), size %s%s%s, %dx%d pixels, %d iterations.\n",
		ui.ColorMagenta(), cfg.X, ui.ColorReset(),
		ui.ColorMagenta(), cfg.Y, ui.ColorReset(),
		ui.ColorMagenta(), cfg.Size, ui.ColorReset(),
		view.Columns, view.Rows, view.MaxIterations)
	fmt.Fprintf(out, "Engine: %s%d%s-bit digits, %s%d%s words, %s%d%s workers, quality %d. Timeout %s%s%s.\n",
		ui.ColorCyan(), cfg.Width, ui.ColorReset(),
		ui.ColorCyan(), len(view.XMin), ui.ColorReset(),
		ui.ColorCyan(), cfg.Workers, ui.ColorReset(),
		cfg.Quality,
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
}

func printExecutionMode(renderers []mandelbrot.Renderer, out io.Writer) {
	names := make([]string, len(renderers))
	for i, r := range renderers {
		names[i] = r.Name()
	}
	if len(renderers) > 1 {
		fmt.Fprintf(out, "Mode: comparison of %d renderers (%s).\n", len(renderers), strings.Join(names, ", "))
	} else {
		fmt.Fprintf(out, "Mode: single render with %s%s%s.\n", ui.ColorBlue(), names[0], ui.ColorReset())
	}
	fmt.Fprintf(out, "\n--- Execution Start ---\n")
}

// IsHelpError checks if the error is a help flag error (--help was used).
// This is useful for determining if the application should exit with success
// after displaying help text.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// findBestResult returns the fixed-point grid if it succeeded, otherwise the
// fastest successful one, or nil.
func findBestResult(results []orchestration.RenderResult) *orchestration.RenderResult {
	var best *orchestration.RenderResult
	for i := range results {
		res := &results[i]
		if res.Err != nil {
			continue
		}
		if res.Name == mandelbrot.RendererFixed {
			return res
		}
		if best == nil || res.Duration < best.Duration {
			best = res
		}
	}
	return best
}

func firstError(results []orchestration.RenderResult) error {
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
	}
	return nil
}

// jsonResult is one renderer's outcome in -json output.
type jsonResult struct {
	Renderer string                `json:"renderer"`
	Duration string                `json:"duration"`
	Stats    *mandelbrot.GridStats `json:"stats,omitempty"`
	Grid     mandelbrot.Grid       `json:"grid,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// printJSONResults writes the results as an indented JSON array. Grids are
// included only when withGrid is set. The exit code reflects the first error
// when no renderer succeeded.
func printJSONResults(results []orchestration.RenderResult, withGrid bool, out io.Writer) int {
	output := make([]jsonResult, len(results))
	succeeded := false
	for i, res := range results {
		jr := jsonResult{Renderer: res.Name, Duration: res.Duration.String()}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		} else {
			succeeded = true
			stats := res.Grid.Stats()
			jr.Stats = &stats
			if withGrid {
				jr.Grid = res.Grid
			}
		}
		output[i] = jr
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return apperrors.ExitErrorGeneric
	}
	if !succeeded && len(results) > 0 {
		return apperrors.ExitCode(firstError(results))
	}
	return apperrors.ExitSuccess
}
