// Package service sits between the HTTP transport and the renderers. It
// enforces request limits and runs renders with the server's options.
package service

//go:generate mockgen -source=render_service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/agbru/mbcalc/internal/mandelbrot"
)

// ErrRequestTooLarge is returned when a request exceeds the configured
// pixel or iteration limits.
var ErrRequestTooLarge = errors.New("request exceeds server limits")

// Limits bounds the work a single request may ask for. Zero disables a limit.
type Limits struct {
	MaxPixels     int
	MaxIterations int32
}

// DefaultLimits allows a 4-megapixel grid with a budget of one million
// iterations per pixel.
func DefaultLimits() Limits {
	return Limits{MaxPixels: 4 << 20, MaxIterations: 1_000_000}
}

func (l Limits) check(columns, rows int, maxIterations int32) error {
	if l.MaxPixels > 0 && int64(columns)*int64(rows) > int64(l.MaxPixels) {
		return fmt.Errorf("%w: %dx%d pixels, limit %d", ErrRequestTooLarge, columns, rows, l.MaxPixels)
	}
	if l.MaxIterations > 0 && maxIterations > l.MaxIterations {
		return fmt.Errorf("%w: %d iterations, limit %d", ErrRequestTooLarge, maxIterations, l.MaxIterations)
	}
	return nil
}

// Service renders grids on behalf of remote clients.
type Service interface {
	// RenderHP computes view with the fixed-point engine.
	RenderHP(ctx context.Context, view mandelbrot.View) (mandelbrot.Grid, error)
	// RenderRows computes a float64 row band.
	RenderRows(ctx context.Context, req mandelbrot.LowRequest) (mandelbrot.Grid, error)
	// Renderers lists the registered renderer names.
	Renderers() []string
}

// RenderService is the default Service.
type RenderService struct {
	factory mandelbrot.RendererFactory
	opts    mandelbrot.Options
	limits  Limits
}

var _ Service = (*RenderService)(nil)

// NewRenderService creates a service drawing renderers from factory and
// rendering with opts.
func NewRenderService(factory mandelbrot.RendererFactory, opts mandelbrot.Options, limits Limits) *RenderService {
	return &RenderService{factory: factory, opts: opts, limits: limits}
}

func (s *RenderService) RenderHP(ctx context.Context, view mandelbrot.View) (mandelbrot.Grid, error) {
	if err := s.limits.check(view.Columns, view.Rows, view.MaxIterations); err != nil {
		return nil, err
	}
	r, err := s.factory.Get(mandelbrot.RendererFixed)
	if err != nil {
		return nil, err
	}
	return r.Render(ctx, nil, 0, view, s.opts)
}

func (s *RenderService) RenderRows(ctx context.Context, req mandelbrot.LowRequest) (mandelbrot.Grid, error) {
	if err := s.limits.check(req.Columns, req.Rows, req.MaxIterations); err != nil {
		return nil, err
	}
	return mandelbrot.ComputeRows[float64](ctx, req, s.opts.Workers, nil)
}

func (s *RenderService) Renderers() []string {
	return s.factory.List()
}
