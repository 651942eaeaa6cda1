package mandelbrot

import (
	"context"
	"sync"

	apperrors "github.com/agbru/mbcalc/internal/errors"
	"github.com/agbru/mbcalc/internal/parallel"
	"golang.org/x/exp/constraints"
)

// EscapeRadiusSquared is the squared-magnitude threshold of both tiers.
const EscapeRadiusSquared = 8.0

// CountIterations returns the number of iterations of z -> z² + c, starting
// from z = c = x + iy, before |z|² reaches 8, or -1 if that does not happen
// within maxIterations.
func CountIterations[F constraints.Float](x, y F, maxIterations int32) int32 {
	zx, zy := x, y
	var count int32
	for count < maxIterations && zx*zx+zy*zy < EscapeRadiusSquared {
		zx, zy = zx*zx-zy*zy+x, 2*zx*zy+y
		count++
	}
	if count < maxIterations {
		return count
	}
	return Inside
}

// ComputeRow evaluates columns points of one row starting at x0. Column j is
// taken at x0 + j*dx rather than by accumulation so rounding does not drift
// along the row.
func ComputeRow[F constraints.Float](x0, dx F, columns int, y F, maxIterations int32) []int32 {
	row := make([]int32, columns)
	for j := range row {
		row[j] = CountIterations(x0+F(j)*dx, y, maxIterations)
	}
	return row
}

// LowRequest describes a floating-point grid: Rows rows starting FirstRow
// rows below YMax. Pixel (i, j) is at (XMin + j*DX, YMax - (FirstRow+i)*DY).
type LowRequest struct {
	Columns       int     `json:"columns"`
	FirstRow      int     `json:"firstRow"`
	Rows          int     `json:"rows"`
	XMin          float64 `json:"xmin"`
	DX            float64 `json:"dx"`
	YMax          float64 `json:"ymax"`
	DY            float64 `json:"dy"`
	MaxIterations int32   `json:"maxIterations"`
}

// Validate checks the grid shape and iteration budget.
func (r LowRequest) Validate() error {
	if r.Columns <= 0 {
		return apperrors.NewValidationError("columns", "must be positive", r.Columns)
	}
	if r.Rows <= 0 {
		return apperrors.NewValidationError("rows", "must be positive", r.Rows)
	}
	if r.FirstRow < 0 {
		return apperrors.NewValidationError("firstRow", "must not be negative", r.FirstRow)
	}
	if r.MaxIterations <= 0 {
		return apperrors.NewValidationError("maxIterations", "must be positive", r.MaxIterations)
	}
	return nil
}

// ComputeRows evaluates a floating-point grid in precision F, spreading
// contiguous row chunks over workers goroutines. The first error, including
// context cancellation observed between rows, aborts the whole grid.
func ComputeRows[F constraints.Float](ctx context.Context, req LowRequest, workers int, reporter ProgressReporter) (Grid, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if workers < 1 {
		return nil, apperrors.NewConfigError("worker count must be at least 1, got %d", workers)
	}

	grid := make(Grid, req.Rows)
	counter := newRowCounter(req.Rows, reporter)
	xmin, dx := F(req.XMin), F(req.DX)

	var ec parallel.ErrorCollector
	var wg sync.WaitGroup
	for _, c := range partitionRows(req.Rows, workers) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ec.SetError(guardWorker(c, func() error {
				for i := c.start; i < c.end; i++ {
					if err := ctx.Err(); err != nil {
						return err
					}
					if ec.Err() != nil {
						return nil
					}
					y := F(req.YMax - float64(req.FirstRow+i)*req.DY)
					grid[i] = ComputeRow(xmin, dx, req.Columns, y, req.MaxIterations)
					counter.rowDone()
				}
				return nil
			}))
		}()
	}
	wg.Wait()

	if err := ec.Err(); err != nil {
		return nil, err
	}
	return grid, nil
}
