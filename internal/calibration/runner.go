package calibration

import (
	"context"
	"fmt"
	"time"

	"github.com/agbru/mbcalc/internal/mandelbrot"
)

// The calibration sample is a deep zoom into the seahorse valley: close to
// the set boundary, so escape counts vary, and deep enough to need several
// fractional words.
const (
	sampleX             = "-0.743643887037158704752191506114774"
	sampleY             = "0.131825904205311970493132056385139"
	sampleSize          = "1e-20"
	sampleColumns       = 32
	sampleRows          = 24
	sampleMaxIterations = 400
)

// SampleView returns the view timed by a full calibration.
func SampleView() (mandelbrot.View, error) {
	return mandelbrot.NewView(sampleX, sampleY, sampleSize, sampleColumns, sampleRows, 0, sampleMaxIterations)
}

// QuickSampleView returns a smaller version of SampleView for startup
// calibration.
func QuickSampleView() (mandelbrot.View, error) {
	return mandelbrot.NewView(sampleX, sampleY, sampleSize, sampleColumns/2, sampleRows/2, 0, sampleMaxIterations/2)
}

func describeView(v mandelbrot.View) string {
	return fmt.Sprintf("%dx%d, %d words, %d iterations", v.Columns, v.Rows, len(v.XMin), v.MaxIterations)
}

// calibrationRunner times trial renders of one view.
type calibrationRunner struct {
	ctx      context.Context
	perTrial time.Duration
	view     mandelbrot.View
}

func newCalibrationRunner(ctx context.Context, timeout time.Duration, view mandelbrot.View) *calibrationRunner {
	perTrial := timeout / 6
	if perTrial < 2*time.Second {
		perTrial = 2 * time.Second
	}
	return &calibrationRunner{ctx: ctx, perTrial: perTrial, view: view}
}

// runTrial renders the view once at full quality with the given width and
// worker count.
func (r *calibrationRunner) runTrial(width, workers int) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.perTrial)
	defer cancel()
	opts := mandelbrot.Options{Width: width, Workers: workers, Quality: mandelbrot.MaxQuality}
	start := time.Now()
	_, err := mandelbrot.ComputeGridHP(ctx, r.view, opts, nil)
	return time.Since(start), err
}

// findBestWidth returns the fastest width from candidates at a fixed worker
// count, or defaultWidth with the maximum duration if every trial failed.
func (r *calibrationRunner) findBestWidth(candidates []int, workers, defaultWidth int) (int, time.Duration) {
	best, bestDur := defaultWidth, maxDuration
	for _, width := range candidates {
		dur, err := r.runTrial(width, workers)
		if err != nil {
			continue
		}
		if dur < bestDur {
			best, bestDur = width, dur
		}
	}
	return best, bestDur
}

// findBestWorkers is findBestWidth along the worker axis.
func (r *calibrationRunner) findBestWorkers(candidates []int, width, defaultWorkers int) (int, time.Duration) {
	best, bestDur := defaultWorkers, maxDuration
	for _, workers := range candidates {
		dur, err := r.runTrial(width, workers)
		if err != nil {
			continue
		}
		if dur < bestDur {
			best, bestDur = workers, dur
		}
	}
	return best, bestDur
}
