package mandelbrot

import (
	"context"
	"fmt"

	apperrors "github.com/agbru/mbcalc/internal/errors"
	"github.com/agbru/mbcalc/internal/fixedpoint"
	"golang.org/x/sync/errgroup"
)

// rowChunk is a half-open range of rows owned by one worker.
type rowChunk struct {
	start, end int
}

// partitionRows splits rows into contiguous chunks of ceil(rows/workers)
// rows. Fewer than workers chunks are returned when rows do not divide
// evenly enough to fill them all.
func partitionRows(rows, workers int) []rowChunk {
	size := max((rows+workers-1)/workers, 1)
	chunks := make([]rowChunk, 0, workers)
	for start := 0; start < rows; start += size {
		chunks = append(chunks, rowChunk{start: start, end: min(start+size, rows)})
	}
	return chunks
}

// guardWorker runs fn and converts a panic into a CalculationError naming the
// chunk, so a precondition failure in one worker fails the request instead of
// the process.
func guardWorker(c rowChunk, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.CalculationError{
				Cause: fmt.Errorf("worker for rows [%d, %d) panicked: %v", c.start, c.end, r),
			}
		}
	}()
	return fn()
}

// ComputeGridHP evaluates a view with the fixed-point engine at the digit
// width selected by opts. Rows are computed by opts.Workers goroutines, each
// owning its own scratch buffers; the grid is assembled by row index. Any
// failure, including cancellation of ctx, aborts the whole grid.
func ComputeGridHP(ctx context.Context, view View, opts Options, reporter ProgressReporter) (Grid, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := view.Validate(); err != nil {
		return nil, err
	}
	switch opts.Width {
	case 32:
		return computeGrid[fixedpoint.U32](ctx, view, opts, reporter)
	case 64:
		return computeGrid[fixedpoint.U64](ctx, view, opts, reporter)
	default:
		return computeGrid[fixedpoint.U128](ctx, view, opts, reporter)
	}
}

func computeGrid[T fixedpoint.Digit[T]](ctx context.Context, view View, opts Options, reporter ProgressReporter) (Grid, error) {
	n, err := fixedpoint.IterationLength[T](len(view.XMin), opts.Quality)
	if err != nil {
		return nil, apperrors.NewConfigError("%v", err)
	}

	xmin := fixedpoint.FromWords[T](view.XMin)
	dx := fixedpoint.FromWords[T](view.DX)
	dy := fixedpoint.FromWords[T](view.DY)

	// Row ordinates are derived once by repeated addition of -dy.
	negdy := make([]T, len(dy))
	fixedpoint.Negate(dy, negdy)
	ys := make([][]T, view.Rows)
	ys[0] = fixedpoint.FromWords[T](view.YMax)
	for i := 1; i < view.Rows; i++ {
		ys[i] = make([]T, len(negdy))
		fixedpoint.Add(ys[i-1], negdy, ys[i])
	}

	grid := make(Grid, view.Rows)
	counter := newRowCounter(view.Rows, reporter)

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range partitionRows(view.Rows, opts.Workers) {
		g.Go(func() error {
			return guardWorker(c, func() error {
				s := fixedpoint.NewScratch[T](n)
				x := make([]T, len(xmin))
				for row := c.start; row < c.end; row++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					copy(x, xmin)
					y := ys[row][:n]
					counts := make([]int32, view.Columns)
					for col := range counts {
						counts[col] = CountIterationsHP(s, x[:n], y, view.MaxIterations)
						fixedpoint.Incr(x, dx)
					}
					grid[row] = counts
					counter.rowDone()
				}
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return grid, nil
}
