// Package config provides the configuration management for the mbcalc application.
// It defines the data structure for the configuration, handles the parsing of
// command-line arguments and environment overrides, and validates the result.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	apperrors "github.com/agbru/mbcalc/internal/errors"
	"github.com/agbru/mbcalc/internal/mandelbrot"
)

const (
	// EnvPrefix is the prefix for all environment variables used by mbcalc.
	EnvPrefix = "MBCALC_"
)

// Default configuration values.
// These can be overridden via command-line flags or environment variables.
const (
	// DefaultX and DefaultY place the view on the centre of the main cardioid's
	// neighbourhood.
	DefaultX = "-0.5"
	DefaultY = "0"
	// DefaultSize is the width of the view in the complex plane.
	DefaultSize = "3"
	// DefaultColumns and DefaultRows fit a standard terminal.
	DefaultColumns = 78
	DefaultRows    = 32
	// DefaultMaxIterations is the per-pixel iteration budget.
	DefaultMaxIterations = 500
	// DefaultTimeout is the default render timeout.
	DefaultTimeout = 2 * time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8000"
	// DefaultTier runs every renderer and compares the results.
	DefaultTier = "all"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// X and Y are the decimal coordinates of the view centre.
	X, Y string
	// Size is the decimal width of the view in the complex plane.
	Size string
	// Columns and Rows set the grid shape.
	Columns, Rows int
	// MaxIterations is the per-pixel iteration budget.
	MaxIterations int
	// Words is the length of the fixed-point encoding; 0 picks one from the
	// pixel size.
	Words int
	// Width is the digit width of the fixed-point engine (32, 64 or 128).
	Width int
	// Workers is the number of goroutines sharing the rows of a grid.
	Workers int
	// Quality trims 2-Quality trailing words from the fixed-point iteration.
	Quality int
	// Tier selects the renderer ("all", "fixed", "float64", "float32").
	Tier string
	// Timeout sets the maximum duration of a render.
	Timeout time.Duration
	// Calibrate runs the width/worker benchmark and exits.
	Calibrate bool
	// AutoCalibrate runs a short benchmark at startup to pick Width and Workers.
	AutoCalibrate bool
	// CalibrationProfile is the path of the persisted calibration profile.
	// If empty, uses the default path (~/.mbcalc_calibration.json).
	CalibrationProfile string
	// JSONOutput prints results as JSON.
	JSONOutput bool
	// ServerMode starts the HTTP server.
	ServerMode bool
	// Port is the listening port in server mode.
	Port string
	// NoColor disables colored output. The NO_COLOR variable is honoured too.
	NoColor bool
	// OutputFile, if set, receives the grid (PGM for .pgm, JSON otherwise).
	OutputFile string
	// Quiet suppresses progress display and banners.
	Quiet bool
	// ShowGrid prints the grid as text after rendering.
	ShowGrid bool
}

// ToRenderOptions converts the configuration into the immutable options of a
// render.
func (c AppConfig) ToRenderOptions() mandelbrot.Options {
	return mandelbrot.Options{
		Width:   c.Width,
		Workers: c.Workers,
		Quality: c.Quality,
	}
}

// View builds the grid request described by the configuration.
func (c AppConfig) View() (mandelbrot.View, error) {
	return mandelbrot.NewView(c.X, c.Y, c.Size, c.Columns, c.Rows, c.Words, int32(c.MaxIterations))
}

// Validate checks the semantic consistency of the configuration parameters.
//
// Parameters:
//   - availableTiers: the renderer names accepted besides "all".
//
// Returns:
//   - error: a ConfigError describing the first problem, or nil.
func (c AppConfig) Validate(availableTiers []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.Columns <= 0 || c.Rows <= 0 {
		return apperrors.NewConfigError("grid size must be positive, got %dx%d", c.Columns, c.Rows)
	}
	if c.MaxIterations <= 0 || c.MaxIterations > math.MaxInt32 {
		return apperrors.NewConfigError("max-iter must be between 1 and %d, got %d", math.MaxInt32, c.MaxIterations)
	}
	if c.Words < 0 {
		return apperrors.NewConfigError("word count cannot be negative: %d", c.Words)
	}
	if err := c.ToRenderOptions().Validate(); err != nil {
		return err
	}
	isTierAvailable := false
	for _, t := range availableTiers {
		if t == c.Tier {
			isTierAvailable = true
			break
		}
	}
	if c.Tier != "all" && !isTierAvailable {
		return apperrors.NewConfigError("unrecognized tier: '%s'. Valid tiers are: 'all' or [%s]", c.Tier, strings.Join(availableTiers, ", "))
	}
	return nil
}

// ParseConfig parses the command-line arguments into an AppConfig, applies
// MBCALC_* environment overrides for flags not set explicitly, and validates
// the result.
//
// Parameters:
//   - programName: the name shown in the usage message.
//   - args: the arguments, typically os.Args[1:].
//   - errorWriter: where parsing errors and usage are printed.
//   - availableTiers: the valid renderer names.
//
// Returns:
//   - AppConfig: the populated configuration.
//   - error: an error if parsing or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableTiers []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	tierHelp := fmt.Sprintf("Renderer to use: 'all' (default) or one of [%s].", strings.Join(availableTiers, ", "))
	defaults := mandelbrot.DefaultOptions()

	config := AppConfig{}
	fs.StringVar(&config.X, "x", DefaultX, "Real part of the view centre (decimal).")
	fs.StringVar(&config.Y, "y", DefaultY, "Imaginary part of the view centre (decimal).")
	fs.StringVar(&config.Size, "size", DefaultSize, "Width of the view in the complex plane (decimal).")
	fs.IntVar(&config.Columns, "columns", DefaultColumns, "Number of pixel columns.")
	fs.IntVar(&config.Rows, "rows", DefaultRows, "Number of pixel rows.")
	fs.IntVar(&config.MaxIterations, "max-iter", DefaultMaxIterations, "Iteration budget per pixel.")
	fs.IntVar(&config.Words, "words", 0, "Fixed-point encoding length in 16-bit words (0 = derive from the pixel size).")
	fs.IntVar(&config.Width, "width", defaults.Width, "Digit width of the fixed-point engine: 32, 64 or 128.")
	fs.IntVar(&config.Workers, "workers", defaults.Workers, "Number of worker goroutines per grid.")
	fs.IntVar(&config.Quality, "quality", defaults.Quality, "Fixed-point quality from 0 (fastest) to 2 (full precision).")
	fs.StringVar(&config.Tier, "tier", DefaultTier, tierHelp)
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for a render.")
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Benchmark digit widths and worker counts, then exit.")
	fs.BoolVar(&config.AutoCalibrate, "auto-calibrate", false, "Run a quick benchmark at startup to choose width and workers.")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Path to calibration profile file (default: ~/.mbcalc_calibration.json).")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.OutputFile, "output", "", "Write the grid to this file (.pgm for an image, JSON otherwise).")
	fs.StringVar(&config.OutputFile, "o", "", "Output file path (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.ShowGrid, "show", false, "Print the rendered grid as text.")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	applyEnvOverrides(&config, fs)

	config.Tier = strings.ToLower(config.Tier)
	if err := config.Validate(availableTiers); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.New("invalid configuration")
	}
	return config, nil
}
