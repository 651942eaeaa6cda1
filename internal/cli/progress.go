// Package cli implements the terminal front end of mbcalc: a spinner with an
// aggregated progress bar while renderers run, a text rendering of the grid,
// and result reports and file exports.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/agbru/mbcalc/internal/mandelbrot"
	"github.com/briandowns/spinner"
)

const (
	// ProgressRefreshRate is the spinner and progress bar refresh period.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width of the progress bar in characters.
	ProgressBarWidth = 40
	// maxETA caps displayed estimates.
	maxETA = 24 * time.Hour
)

// Spinner abstracts the terminal spinner so DisplayProgress can be tested.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                     { rs.s.Start() }
func (rs *realSpinner) Stop()                      { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(options ...spinner.Option) Spinner {
	return &realSpinner{spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)}
}

// ProgressState tracks the progress of each concurrently running renderer
// and estimates the time remaining from the smoothed rate of the average.
type ProgressState struct {
	progresses   []float64
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	rate         float64 // progress per second, exponentially smoothed
}

// NewProgressState creates a tracker for numRenderers renderers.
func NewProgressState(numRenderers int) *ProgressState {
	now := time.Now()
	return &ProgressState{
		progresses: make([]float64, max(numRenderers, 0)),
		startTime:  now,
		lastUpdate: now,
	}
}

// Update records the progress of one renderer. Out-of-range indices are
// ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// Average returns the mean progress of all renderers.
func (ps *ProgressState) Average() float64 {
	if len(ps.progresses) == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(len(ps.progresses))
}

// UpdateWithETA records an update and returns the new average together with
// the estimated time remaining (0 while no estimate is available yet).
func (ps *ProgressState) UpdateWithETA(index int, value float64) (float64, time.Duration) {
	ps.Update(index, value)
	progress := ps.Average()
	now := time.Now()

	if now.Sub(ps.startTime) < 100*time.Millisecond || progress <= 0.001 {
		ps.lastUpdate, ps.lastProgress = now, progress
		return progress, 0
	}
	if dt := now.Sub(ps.lastUpdate).Seconds(); dt > 0.05 {
		if delta := progress - ps.lastProgress; delta > 0 {
			if ps.rate > 0 {
				ps.rate = 0.7*ps.rate + 0.3*(delta/dt)
			} else {
				ps.rate = progress / now.Sub(ps.startTime).Seconds()
			}
		}
		ps.lastUpdate, ps.lastProgress = now, progress
	}
	return progress, ps.ETA()
}

// ETA returns the estimated time remaining at the current rate.
func (ps *ProgressState) ETA() time.Duration {
	progress := ps.Average()
	if ps.rate <= 0 || progress >= 1 {
		return 0
	}
	return min(time.Duration((1-progress)/ps.rate*float64(time.Second)), maxETA)
}

// FormatETA renders an estimate as "< 1s", "42s", "2m30s" or "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m, s := int(eta.Minutes()), int(eta.Seconds())%60
		if s > 0 {
			return fmt.Sprintf("%dm%ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	}
	h, m := int(eta.Hours()), int(eta.Minutes())%60
	if m > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dh", h)
}

// FormatExecutionDuration shows microseconds below a millisecond,
// milliseconds below a second and the default format otherwise.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

func progressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(length))
	var b strings.Builder
	b.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < filled {
			b.WriteRune('█')
		} else {
			b.WriteRune('░')
		}
	}
	return b.String()
}

func progressLine(numRenderers int, progress float64, eta string) string {
	label := "Progress"
	if numRenderers > 1 {
		label = "Avg progress"
	}
	return fmt.Sprintf("%s: %6.2f%% [%s] ETA: %s", label, progress*100, progressBar(progress, ProgressBarWidth), eta)
}

// DisplayProgress consumes progressChan until it is closed, animating a
// spinner with the average progress of numRenderers renderers. It prints a
// final 100% line when the channel closes and calls wg.Done on return.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan mandelbrot.ProgressUpdate, numRenderers int, out io.Writer) {
	defer wg.Done()
	if numRenderers <= 0 {
		for range progressChan {
		}
		return
	}

	state := NewProgressState(numRenderers)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	stopped := false
	defer func() {
		if !stopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				stopped = true
				fmt.Fprintln(out, progressLine(numRenderers, 1, "< 1s"))
				return
			}
			state.UpdateWithETA(update.RendererIndex, update.Value)
		case <-ticker.C:
			s.UpdateSuffix(" " + progressLine(numRenderers, state.Average(), FormatETA(state.ETA())))
		}
	}
}
