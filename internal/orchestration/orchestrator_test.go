package orchestration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agbru/mbcalc/internal/config"
	apperrors "github.com/agbru/mbcalc/internal/errors"
	"github.com/agbru/mbcalc/internal/mandelbrot"
	"github.com/agbru/mbcalc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRenderer returns a canned grid and records the options it received.
type mockRenderer struct {
	name string
	grid mandelbrot.Grid
	err  error

	mu       sync.Mutex
	captured mandelbrot.Options
}

func (m *mockRenderer) Name() string { return m.name }

func (m *mockRenderer) Render(ctx context.Context, progressChan chan<- mandelbrot.ProgressUpdate, index int, view mandelbrot.View, opts mandelbrot.Options) (mandelbrot.Grid, error) {
	m.mu.Lock()
	m.captured = opts
	m.mu.Unlock()
	if progressChan != nil {
		progressChan <- mandelbrot.ProgressUpdate{RendererIndex: index, Value: 1}
	}
	return m.grid, m.err
}

func testView(t *testing.T, size string) mandelbrot.View {
	t.Helper()
	v, err := mandelbrot.NewView("-0.5", "0", size, 4, 2, 0, 50)
	require.NoError(t, err)
	return v
}

var (
	gridA = mandelbrot.Grid{{1, 2, 3, 4}, {-1, -1, 5, 6}}
	gridB = mandelbrot.Grid{{1, 2, 3, 4}, {-1, 9, 5, 6}}
)

func TestExecuteRenders(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	ok := &mockRenderer{name: mandelbrot.RendererFixed, grid: gridA}
	bad := &mockRenderer{name: mandelbrot.RendererFloat32, err: boom}
	opts := mandelbrot.Options{Width: 32, Workers: 3, Quality: 0}

	results := ExecuteRenders(context.Background(), []mandelbrot.Renderer{ok, bad}, testView(t, "3"), opts, io.Discard)

	require.Len(t, results, 2)
	assert.Equal(t, mandelbrot.RendererFixed, results[0].Name)
	assert.Equal(t, gridA, results[0].Grid)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, opts, ok.captured, "options must reach the renderer unchanged")
}

func TestExecuteRendersRealRenderers(t *testing.T) {
	t.Parallel()

	factory := mandelbrot.NewDefaultFactory()
	var renderers []mandelbrot.Renderer
	for _, name := range factory.List() {
		renderers = append(renderers, factory.MustGet(name))
	}
	view := testView(t, "3")
	results := ExecuteRenders(context.Background(), renderers, view, mandelbrot.DefaultOptions(), io.Discard)
	for _, r := range results {
		require.NoError(t, r.Err, r.Name)
		require.Len(t, r.Grid, view.Rows)
	}
}

func TestAnalyzeComparisonResults(t *testing.T) {
	testutil.PlainTheme(t)
	view := testView(t, "3")

	t.Run("consistent", func(t *testing.T) {
		var out bytes.Buffer
		results := []RenderResult{
			{Name: mandelbrot.RendererFloat64, Grid: gridA, Duration: time.Millisecond},
			{Name: mandelbrot.RendererFixed, Grid: gridA, Duration: 5 * time.Millisecond},
		}
		code := AnalyzeComparisonResults(results, view, config.AppConfig{}, &out)
		assert.Equal(t, apperrors.ExitSuccess, code)
		assert.Contains(t, out.String(), "100.00%")
		assert.Contains(t, out.String(), "Global Status: Success")
		assert.Contains(t, out.String(), "Render summary (fixed)", "the fixed grid is the reference")
	})

	t.Run("mismatch", func(t *testing.T) {
		var out bytes.Buffer
		results := []RenderResult{
			{Name: mandelbrot.RendererFixed, Grid: gridA},
			{Name: mandelbrot.RendererFloat32, Grid: gridB},
		}
		code := AnalyzeComparisonResults(results, view, config.AppConfig{}, &out)
		assert.Equal(t, apperrors.ExitErrorMismatch, code)
		assert.Contains(t, out.String(), "Mismatch (1 pixels)")
	})

	t.Run("beyond precision", func(t *testing.T) {
		var out bytes.Buffer
		deep := testView(t, "1e-12")
		results := []RenderResult{
			{Name: mandelbrot.RendererFixed, Grid: gridA},
			{Name: mandelbrot.RendererFloat32, Grid: gridB},
			{Name: mandelbrot.RendererFloat64, Grid: gridA},
		}
		code := AnalyzeComparisonResults(results, deep, config.AppConfig{}, &out)
		assert.Equal(t, apperrors.ExitSuccess, code)
		assert.Contains(t, out.String(), "Beyond precision")
	})

	t.Run("all failed", func(t *testing.T) {
		var out bytes.Buffer
		results := []RenderResult{
			{Name: mandelbrot.RendererFixed, Err: context.DeadlineExceeded},
			{Name: mandelbrot.RendererFloat64, Err: errors.New("boom")},
		}
		code := AnalyzeComparisonResults(results, view, config.AppConfig{}, &out)
		assert.Equal(t, apperrors.ExitErrorTimeout, code)
		assert.Contains(t, out.String(), "No renderer could complete")
	})

	t.Run("failures sort last", func(t *testing.T) {
		var out bytes.Buffer
		results := []RenderResult{
			{Name: mandelbrot.RendererFloat32, Err: errors.New("boom")},
			{Name: mandelbrot.RendererFixed, Grid: gridA, Duration: time.Second},
		}
		AnalyzeComparisonResults(results, view, config.AppConfig{}, &out)
		assert.Equal(t, mandelbrot.RendererFixed, results[0].Name)
		text := out.String()
		assert.Less(t, strings.Index(text, "fixed"), strings.Index(text, "float32"))
	})

	t.Run("writes output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "grid.pgm")
		results := []RenderResult{{Name: mandelbrot.RendererFixed, Grid: gridA}}
		code := AnalyzeComparisonResults(results, view, config.AppConfig{OutputFile: path}, io.Discard)
		require.Equal(t, apperrors.ExitSuccess, code)
		_, err := os.Stat(path)
		assert.NoError(t, err)
	})
}

func TestFloatResolves(t *testing.T) {
	t.Parallel()

	coarse := testView(t, "3")
	assert.True(t, floatResolves(coarse, 24))
	assert.True(t, floatResolves(coarse, 53))

	mid := testView(t, "1e-6")
	assert.False(t, floatResolves(mid, 24))
	assert.True(t, floatResolves(mid, 53))

	assert.False(t, floatResolves(testView(t, "1e-15"), 53))
	assert.True(t, checkable(mandelbrot.RendererFixed, testView(t, "1e-30")))
}
