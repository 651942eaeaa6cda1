// Package orchestration runs one or more renderers over the same view
// concurrently and compares their grids.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/mbcalc/internal/cli"
	"github.com/agbru/mbcalc/internal/config"
	apperrors "github.com/agbru/mbcalc/internal/errors"
	"github.com/agbru/mbcalc/internal/mandelbrot"
	"github.com/agbru/mbcalc/internal/ui"
)

// RenderResult is the outcome of one renderer.
type RenderResult struct {
	Name     string
	Grid     mandelbrot.Grid
	Duration time.Duration
	Err      error
}

// ProgressBufferMultiplier sizes the progress channel per renderer so that
// workers rarely find it full.
const ProgressBufferMultiplier = 5

// DefaultMismatchTolerance is the fraction of pixels a floating-point tier
// may disagree on with the fixed-point reference before the comparison fails.
// Boundary pixels legitimately differ when rounding differs.
const DefaultMismatchTolerance = 0.02

// ExecuteRenders runs every renderer on view concurrently, displaying their
// aggregated progress on out, and returns one result per renderer in the
// input order. A failing renderer does not stop the others.
func ExecuteRenders(ctx context.Context, renderers []mandelbrot.Renderer, view mandelbrot.View, opts mandelbrot.Options, out io.Writer) []RenderResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]RenderResult, len(renderers))
	progressChan := make(chan mandelbrot.ProgressUpdate, len(renderers)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(renderers), out)

	for i, r := range renderers {
		idx, renderer := i, r
		g.Go(func() error {
			start := time.Now()
			grid, err := renderer.Render(ctx, progressChan, idx, view, opts)
			results[idx] = RenderResult{Name: renderer.Name(), Grid: grid, Duration: time.Since(start), Err: err}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()
	return results
}

// floatResolves reports whether a floating-point tier with the given
// mantissa width can still tell adjacent pixels of view apart, keeping
// 8 bits of headroom.
func floatResolves(view mandelbrot.View, mantissaBits int) bool {
	xmin, dx, ymax, _ := view.Floats()
	scale := math.Max(1, math.Max(math.Abs(xmin), math.Abs(ymax)))
	return dx >= scale*math.Ldexp(1, -(mantissaBits-8))
}

// checkable reports whether the renderer called name is expected to agree
// with the fixed-point reference on view.
func checkable(name string, view mandelbrot.View) bool {
	switch name {
	case mandelbrot.RendererFloat64:
		return floatResolves(view, 53)
	case mandelbrot.RendererFloat32:
		return floatResolves(view, 24)
	}
	return true
}

// AnalyzeComparisonResults prints a comparison table of results, sorted with
// successes first by duration, and reports the fastest valid grid.
//
// Grids are compared with the fixed-point result when there is one, else
// with the first success. Floating-point tiers too coarse for the view are
// marked as such and left out of the check.
//
// Returns:
//   - int: ExitSuccess, ExitErrorMismatch when a comparable tier disagrees on
//     more than DefaultMismatchTolerance of the pixels, or the exit code of
//     the first error when no renderer succeeded.
func AnalyzeComparisonResults(results []RenderResult, view mandelbrot.View, cfg config.AppConfig, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var reference *RenderResult
	var firstError error
	for i := range results {
		res := &results[i]
		if res.Err != nil {
			if firstError == nil {
				firstError = res.Err
			}
			continue
		}
		if reference == nil || (res.Name == mandelbrot.RendererFixed && reference.Name != mandelbrot.RendererFixed) {
			reference = res
		}
	}

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sRenderer%s\t%sDuration%s\t%sAgreement%s\t%sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())

	mismatch := false
	pixels := max(view.Columns*view.Rows, 1)
	for _, res := range results {
		duration := cli.FormatExecutionDuration(res.Duration)
		if res.Duration == 0 {
			duration = "< 1µs"
		}
		agreement, status := "-", ""
		switch {
		case res.Err != nil:
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
		case !checkable(res.Name, view):
			status = fmt.Sprintf("%s⚠ Beyond precision%s", ui.ColorYellow(), ui.ColorReset())
		default:
			diff := reference.Grid.Mismatches(res.Grid)
			agreement = fmt.Sprintf("%.2f%%", 100*(1-float64(diff)/float64(pixels)))
			if float64(diff) > DefaultMismatchTolerance*float64(pixels) {
				mismatch = true
				status = fmt.Sprintf("%s❌ Mismatch (%d pixels)%s", ui.ColorRed(), diff, ui.ColorReset())
			} else {
				status = fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
			}
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s\t%s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(),
			ui.ColorYellow(), duration, ui.ColorReset(),
			agreement, status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if reference == nil {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No renderer could complete the grid.\n")
		return apperrors.HandleRenderError(firstError, 0, out, cli.CLIColorProvider{})
	}
	if mismatch {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! Renderers disagree beyond the %.0f%% tolerance.\n", DefaultMismatchTolerance*100)
		return apperrors.ExitErrorMismatch
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All comparable grids are consistent.\n")
	outCfg := cli.OutputConfig{OutputFile: cfg.OutputFile, ShowGrid: cfg.ShowGrid}
	if err := cli.DisplayResultWithConfig(out, reference.Name, reference.Grid, view, reference.Duration, outCfg); err != nil {
		fmt.Fprintf(out, "%sError saving grid: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
