package calibration

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/agbru/mbcalc/internal/cli"
	"github.com/agbru/mbcalc/internal/config"
	apperrors "github.com/agbru/mbcalc/internal/errors"
	"github.com/agbru/mbcalc/internal/mandelbrot"
	"github.com/agbru/mbcalc/internal/ui"
)

const maxDuration = time.Duration(1<<63 - 1)

// CalibrationOptions configures the calibration process.
type CalibrationOptions struct {
	// ProfilePath is the path to save/load the calibration profile.
	// If empty, uses the default path.
	ProfilePath string
	// SaveProfile indicates whether to save the calibration results.
	SaveProfile bool
	// LoadProfile indicates whether to try loading an existing profile.
	LoadProfile bool
	// Sample replaces the deep-zoom sample view when it has columns.
	Sample mandelbrot.View
	// Widths and Workers replace the adaptive candidate lists when set.
	Widths, Workers []int
}

// calibrationResult holds the outcome of one width × workers trial.
type calibrationResult struct {
	Width    int
	Workers  int
	Duration time.Duration
	Err      error
}

// RunCalibration times the deep-zoom sample for every width and worker
// candidate, prints a summary and saves the fastest pair to the default
// profile.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - out: The io.Writer to which progress and results will be written.
//
// Returns:
//   - int: The exit code (0 for success, non-zero for errors).
func RunCalibration(ctx context.Context, out io.Writer) int {
	return RunCalibrationWithOptions(ctx, out, CalibrationOptions{SaveProfile: true})
}

// RunCalibrationWithOptions executes calibration with the specified options.
func RunCalibrationWithOptions(ctx context.Context, out io.Writer, opts CalibrationOptions) int {
	fmt.Fprintf(out, "--- Calibration Mode: Finding the Optimal Width and Worker Count ---\n")

	if opts.LoadProfile {
		if profile, loaded := LoadOrCreateProfile(opts.ProfilePath); loaded {
			fmt.Fprintf(out, "%sLoaded existing calibration profile from %s%s\n",
				ui.ColorGreen(), resolveProfilePath(opts.ProfilePath), ui.ColorReset())
			fmt.Fprintf(out, "Profile: %s\n", profile.String())
			fmt.Fprintf(out, "\n%s✅ Using cached calibration: %s--width %d --workers %d%s\n",
				ui.ColorGreen(), ui.ColorYellow(), profile.OptimalWidth, profile.OptimalWorkers, ui.ColorReset())
			return apperrors.ExitSuccess
		}
	}

	view := opts.Sample
	if view.Columns == 0 {
		var err error
		if view, err = SampleView(); err != nil {
			fmt.Fprintf(out, "%sCritical error: cannot build the calibration sample: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return apperrors.ExitErrorGeneric
		}
	}
	widths, workers := opts.Widths, opts.Workers
	if len(widths) == 0 {
		widths = GenerateWidthCandidates()
	}
	if len(workers) == 0 {
		workers = GenerateWorkerCandidates()
	}
	fmt.Fprintf(out, "%sSample: %s; %d CPU cores%s\n", ui.ColorCyan(), describeView(view), runtime.NumCPU(), ui.ColorReset())

	runner := newCalibrationRunner(ctx, config.DefaultTimeout, view)
	total := len(widths) * len(workers)
	results := make([]calibrationResult, 0, total)
	best := calibrationResult{Duration: maxDuration}
	calibrationStart := time.Now()

	var wg sync.WaitGroup
	progressChan := make(chan mandelbrot.ProgressUpdate, 5)
	reporter := mandelbrot.NewChannelObserver(progressChan)
	wg.Add(1)
	go cli.DisplayProgress(&wg, progressChan, 1, out)
	stopProgress := func() {
		close(progressChan)
		wg.Wait()
	}

	for _, width := range widths {
		for _, w := range workers {
			if ctx.Err() != nil {
				stopProgress()
				fmt.Fprintf(out, "\n%sCalibration interrupted.%s\n", ui.ColorYellow(), ui.ColorReset())
				return apperrors.HandleRenderError(ctx.Err(), time.Since(calibrationStart), out, cli.CLIColorProvider{})
			}

			dur, err := runner.runTrial(width, w)
			results = append(results, calibrationResult{Width: width, Workers: w, Duration: dur, Err: err})
			reporter.Update(0, float64(len(results))/float64(total))
			if err != nil {
				if apperrors.IsContextError(err) && ctx.Err() != nil {
					stopProgress()
					return apperrors.HandleRenderError(err, time.Since(calibrationStart), out, cli.CLIColorProvider{})
				}
				continue
			}
			if dur < best.Duration {
				best = calibrationResult{Width: width, Workers: w, Duration: dur}
			}
		}
	}
	stopProgress()

	if best.Duration == maxDuration {
		fmt.Fprintf(out, "\n%sCalibration failed: no valid results obtained.%s\n", ui.ColorRed(), ui.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	printCalibrationResults(out, results, best)
	fmt.Fprintf(out, "\n%s✅ Recommendation for this machine: %s--width %d --workers %d%s\n",
		ui.ColorGreen(), ui.ColorYellow(), best.Width, best.Workers, ui.ColorReset())

	if opts.SaveProfile {
		profile := NewProfile()
		profile.OptimalWidth = best.Width
		profile.OptimalWorkers = best.Workers
		profile.Sample = describeView(view)
		profile.CalibrationTime = time.Since(calibrationStart).String()
		if err := profile.SaveProfile(opts.ProfilePath); err != nil {
			fmt.Fprintf(out, "%sWarning: failed to save profile: %v%s\n", ui.ColorYellow(), err, ui.ColorReset())
		} else {
			fmt.Fprintf(out, "%sCalibration profile saved to %s%s\n",
				ui.ColorGreen(), resolveProfilePath(opts.ProfilePath), ui.ColorReset())
		}
	}
	return apperrors.ExitSuccess
}

// AutoCalibrate picks Width and Workers at startup.
//
// A valid cached profile is used as is. Otherwise the squaring
// micro-benchmark chooses the width and a short worker sweep over the quick
// sample chooses the worker count; if the micro-benchmark is inconclusive the
// width is swept on the sample as well. The result is saved to the profile.
//
// Returns the updated configuration and true on success, or cfg unchanged
// and false if no trial succeeded.
func AutoCalibrate(ctx context.Context, cfg config.AppConfig, out io.Writer) (config.AppConfig, bool) {
	return AutoCalibrateWithProfile(ctx, cfg, out, cfg.CalibrationProfile)
}

// AutoCalibrateWithProfile is AutoCalibrate with an explicit profile path.
func AutoCalibrateWithProfile(ctx context.Context, cfg config.AppConfig, out io.Writer, profilePath string) (config.AppConfig, bool) {
	if updated, ok := LoadCachedCalibration(cfg, profilePath); ok {
		fmt.Fprintf(out, "%sUsing cached calibration%s: width=%s%d%s bits, workers=%s%d%s\n",
			ui.ColorGreen(), ui.ColorReset(),
			ui.ColorYellow(), updated.Width, ui.ColorReset(),
			ui.ColorYellow(), updated.Workers, ui.ColorReset())
		return updated, true
	}

	view, err := QuickSampleView()
	if err != nil {
		return cfg, false
	}
	runner := newCalibrationRunner(ctx, cfg.Timeout, view)

	var bestWidth int
	var widthDur time.Duration
	micro, err := QuickCalibrate(ctx)
	if err == nil && micro.Confidence >= 0.5 {
		bestWidth, widthDur = micro.Width, micro.Duration
	} else {
		bestWidth, widthDur = runner.findBestWidth(GenerateWidthCandidates(), cfg.Workers, cfg.Width)
	}
	bestWorkers, workersDur := runner.findBestWorkers(GenerateQuickWorkerCandidates(), bestWidth, cfg.Workers)

	updated, ok := applyCalibrationResults(cfg, bestWidth, widthDur, bestWorkers, workersDur)
	if !ok {
		return cfg, false
	}
	saveCalibrationProfile(updated, profilePath, describeView(view), out)
	printCalibrationOutput(updated, out)
	return updated, true
}

// LoadCachedCalibration applies a valid cached profile to cfg. The boolean
// is false, and cfg is returned unchanged, if there is none.
func LoadCachedCalibration(cfg config.AppConfig, profilePath string) (config.AppConfig, bool) {
	profile, loaded := LoadOrCreateProfile(profilePath)
	if !loaded {
		return cfg, false
	}
	cfg.Width = profile.OptimalWidth
	cfg.Workers = profile.OptimalWorkers
	return cfg, true
}

// applyCalibrationResults copies every measured setting into cfg. It fails
// when neither axis produced a measurement.
func applyCalibrationResults(cfg config.AppConfig, width int, widthDur time.Duration, workers int, workersDur time.Duration) (config.AppConfig, bool) {
	if widthDur == maxDuration && workersDur == maxDuration {
		return cfg, false
	}
	if widthDur != maxDuration {
		cfg.Width = width
	}
	if workersDur != maxDuration {
		cfg.Workers = workers
	}
	cfg.Width, cfg.Workers = ValidateSettings(cfg.Width, cfg.Workers)
	return cfg, true
}

func saveCalibrationProfile(cfg config.AppConfig, profilePath, sample string, out io.Writer) {
	profile := NewProfile()
	profile.OptimalWidth = cfg.Width
	profile.OptimalWorkers = cfg.Workers
	profile.Sample = sample
	if err := profile.SaveProfile(profilePath); err != nil {
		fmt.Fprintf(out, "%sWarning: could not save calibration profile: %v%s\n",
			ui.ColorYellow(), err, ui.ColorReset())
	}
}
