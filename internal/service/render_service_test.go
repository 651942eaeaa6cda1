package service

import (
	"context"
	"errors"
	"testing"

	"github.com/agbru/mbcalc/internal/mandelbrot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(limits Limits) *RenderService {
	return NewRenderService(mandelbrot.NewDefaultFactory(), mandelbrot.Options{Width: 64, Workers: 2, Quality: 2}, limits)
}

func TestRenderHP(t *testing.T) {
	t.Parallel()

	view, err := mandelbrot.NewView("-0.5", "0", "3", 6, 4, 4, 40)
	require.NoError(t, err)

	grid, err := newTestService(DefaultLimits()).RenderHP(context.Background(), view)
	require.NoError(t, err)
	require.Len(t, grid, 4)
	require.Len(t, grid[0], 6)

	// The same view through the float64 tier should agree almost everywhere.
	low, err := mandelbrot.ComputeRows[float64](context.Background(), view.LowRequest(), 1, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, grid.Mismatches(low), 1)
}

func TestRenderRows(t *testing.T) {
	t.Parallel()

	req := mandelbrot.LowRequest{Columns: 3, FirstRow: 1, Rows: 2, XMin: -2, DX: 1, YMax: 1, DY: 1, MaxIterations: 20}
	grid, err := newTestService(DefaultLimits()).RenderRows(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, grid, 2)
	// Row 1 lies on the real axis: -2 and 0 stay bounded, -1 cycles.
	assert.Equal(t, []int32{mandelbrot.Inside, mandelbrot.Inside, mandelbrot.Inside}, grid[0])
}

func TestLimits(t *testing.T) {
	t.Parallel()

	svc := newTestService(Limits{MaxPixels: 10, MaxIterations: 100})
	ctx := context.Background()

	_, err := svc.RenderRows(ctx, mandelbrot.LowRequest{Columns: 4, Rows: 3, DX: 1, DY: 1, MaxIterations: 10})
	assert.True(t, errors.Is(err, ErrRequestTooLarge), "12 pixels exceed a limit of 10")

	view, verr := mandelbrot.NewView("0", "0", "1", 2, 2, 3, 500)
	require.NoError(t, verr)
	_, err = svc.RenderHP(ctx, view)
	assert.ErrorIs(t, err, ErrRequestTooLarge)

	unlimited := newTestService(Limits{})
	_, err = unlimited.RenderHP(ctx, view)
	assert.NoError(t, err)
}

func TestRenderers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"fixed", "float32", "float64"}, newTestService(DefaultLimits()).Renderers())
}
