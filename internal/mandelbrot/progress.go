package mandelbrot

import "sync/atomic"

// ProgressUpdate carries the progress of one renderer to the user interface.
type ProgressUpdate struct {
	// RendererIndex distinguishes concurrent renders of the same view.
	RendererIndex int
	// Value is the fraction of rows completed, from 0.0 to 1.0.
	Value float64
}

// ProgressReporter is the callback used by the grid builders to report the
// fraction of rows completed. Implementations must be safe for concurrent
// use: rows complete on several workers at once.
type ProgressReporter func(progress float64)

// ProgressReportThreshold is the minimum change in progress between two
// reports from a row counter.
const ProgressReportThreshold = 0.01

// rowCounter turns row completions from concurrent workers into throttled
// progress reports.
type rowCounter struct {
	total    int64
	done     atomic.Int64
	reported atomic.Int64 // last reported value in 1/10000ths
	report   ProgressReporter
}

func newRowCounter(total int, report ProgressReporter) *rowCounter {
	if report == nil {
		report = func(float64) {}
	}
	return &rowCounter{total: int64(total), report: report}
}

func (c *rowCounter) rowDone() {
	done := c.done.Add(1)
	scaled := done * 10000 / c.total
	last := c.reported.Load()
	if done != c.total && float64(scaled-last)/10000 < ProgressReportThreshold {
		return
	}
	if c.reported.CompareAndSwap(last, scaled) || done == c.total {
		c.report(float64(done) / float64(c.total))
	}
}
