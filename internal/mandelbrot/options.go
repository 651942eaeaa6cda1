package mandelbrot

import (
	apperrors "github.com/agbru/mbcalc/internal/errors"
)

// Default values mirror the flags of the mbcalc binary.
const (
	DefaultWidth   = 128
	DefaultWorkers = 2
	DefaultQuality = 1

	// MaxQuality keeps every input word; each step below drops one
	// trailing word from the iteration.
	MaxQuality = 2
)

// SupportedWidths lists the working digit widths of the fixed-point engine.
var SupportedWidths = []int{32, 64, 128}

// Options configures one grid computation. It is passed by value and never
// mutated by the engine, so concurrent requests may use different options.
type Options struct {
	// Width is the working digit width in bits: 32, 64 or 128.
	Width int
	// Workers is the number of goroutines sharing the rows of a grid.
	Workers int
	// Quality trims 2-Quality trailing words of the inputs before iterating.
	Quality int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Width: DefaultWidth, Workers: DefaultWorkers, Quality: DefaultQuality}
}

// Validate reports the first invalid field as a ConfigError.
func (o Options) Validate() error {
	if !isSupportedWidth(o.Width) {
		return apperrors.NewConfigError("unsupported digit width %d (expected 32, 64 or 128)", o.Width)
	}
	if o.Workers < 1 {
		return apperrors.NewConfigError("worker count must be at least 1, got %d", o.Workers)
	}
	if o.Quality < 0 || o.Quality > MaxQuality {
		return apperrors.NewConfigError("quality must be between 0 and %d, got %d", MaxQuality, o.Quality)
	}
	return nil
}

func isSupportedWidth(w int) bool {
	for _, s := range SupportedWidths {
		if s == w {
			return true
		}
	}
	return false
}
