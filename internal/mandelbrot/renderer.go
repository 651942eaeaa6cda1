// Package mandelbrot computes escape-time iteration counts over pixel grids.
//
// Two tiers are provided. The floating-point tier (CountIterations,
// ComputeRow, ComputeRows) is fast but limited to the resolution of float64
// or float32. The fixed-point tier (CountIterationsHP, ComputeGridHP) runs on
// the arbitrary-precision engine of package fixedpoint and scales to deep
// zooms. Renderer wraps either tier with progress reporting, metrics,
// tracing and logging.
package mandelbrot

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/exp/constraints"
)

var (
	rendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mandelbrot_renders_total",
			Help: "The total number of grids rendered",
		},
		[]string{"renderer", "status"},
	)
	renderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "mandelbrot_render_duration_seconds",
			Help: "The duration of grid renders in seconds",
		},
		[]string{"renderer"},
	)
	pixelsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mandelbrot_pixels_total",
			Help: "The total number of pixels evaluated",
		},
		[]string{"renderer"},
	)
)

// Renderer computes the iteration grid of a view.
type Renderer interface {
	// Render computes the grid for view. It is safe for concurrent use and
	// honours cancellation of ctx between rows. Progress updates tagged with
	// index are sent to progressChan without blocking.
	Render(ctx context.Context, progressChan chan<- ProgressUpdate, index int, view View, opts Options) (Grid, error)

	// Name returns the registry name of the renderer (e.g. "fixed").
	Name() string
}

// coreRenderer is the pure computation behind a Renderer.
type coreRenderer interface {
	RenderCore(ctx context.Context, reporter ProgressReporter, view View, opts Options) (Grid, error)
	Name() string
}

// GridRenderer decorates a coreRenderer with progress observers, tracing,
// metrics and logging.
type GridRenderer struct {
	core coreRenderer
}

// NewRenderer wraps core. It panics if core is nil.
func NewRenderer(core coreRenderer) Renderer {
	if core == nil {
		panic("mandelbrot: the `coreRenderer` implementation cannot be nil")
	}
	return &GridRenderer{core: core}
}

func (r *GridRenderer) Name() string {
	return r.core.Name()
}

// Render adapts progressChan to an observer and delegates to
// RenderWithObservers.
func (r *GridRenderer) Render(ctx context.Context, progressChan chan<- ProgressUpdate, index int, view View, opts Options) (Grid, error) {
	subject := NewProgressSubject()
	if progressChan != nil {
		subject.Register(NewChannelObserver(progressChan))
	}
	return r.RenderWithObservers(ctx, subject, index, view, opts)
}

// RenderWithObservers renders the view, notifying every observer registered
// on subject. A nil subject disables progress reporting. Completion is always
// reported as 1.0 on success.
func (r *GridRenderer) RenderWithObservers(ctx context.Context, subject *ProgressSubject, index int, view View, opts Options) (grid Grid, err error) {
	tracer := otel.Tracer("mandelbrot")
	ctx, span := tracer.Start(ctx, "Render")
	defer span.End()

	name := r.core.Name()
	span.SetAttributes(
		attribute.String("renderer", name),
		attribute.Int("columns", view.Columns),
		attribute.Int("rows", view.Rows),
		attribute.Int("words", len(view.XMin)),
		attribute.Int("width", opts.Width),
	)

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
		} else {
			pixelsTotal.WithLabelValues(name).Add(float64(view.Columns * view.Rows))
		}
		rendersTotal.WithLabelValues(name, status).Inc()
		renderDuration.WithLabelValues(name).Observe(duration)

		log.Debug().
			Str("renderer", name).
			Int("columns", view.Columns).
			Int("rows", view.Rows).
			Int32("max_iterations", view.MaxIterations).
			Float64("duration", duration).
			Str("status", status).
			Msg("render completed")
	}()

	reporter := ProgressReporter(func(float64) {})
	if subject != nil {
		reporter = subject.AsProgressReporter(index)
	}

	grid, err = r.core.RenderCore(ctx, reporter, view, opts)
	if err == nil {
		reporter(1.0)
	}
	return grid, err
}

// FloatRenderer renders with the floating-point tier in precision F.
type FloatRenderer[F constraints.Float] struct {
	name string
}

func (r *FloatRenderer[F]) Name() string { return r.name }

// RenderCore rounds the view to float64 and evaluates it with ComputeRows.
func (r *FloatRenderer[F]) RenderCore(ctx context.Context, reporter ProgressReporter, view View, opts Options) (Grid, error) {
	if err := view.Validate(); err != nil {
		return nil, err
	}
	return ComputeRows[F](ctx, view.LowRequest(), max(opts.Workers, 1), reporter)
}

// FixedRenderer renders with the fixed-point engine at opts.Width.
type FixedRenderer struct{}

func (r *FixedRenderer) Name() string { return "fixed" }

func (r *FixedRenderer) RenderCore(ctx context.Context, reporter ProgressReporter, view View, opts Options) (Grid, error) {
	return ComputeGridHP(ctx, view, opts, reporter)
}
