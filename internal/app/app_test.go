package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/mbcalc/internal/calibration"
	"github.com/agbru/mbcalc/internal/config"
	apperrors "github.com/agbru/mbcalc/internal/errors"
	"github.com/agbru/mbcalc/internal/mandelbrot"
	"github.com/agbru/mbcalc/internal/orchestration"
	"github.com/agbru/mbcalc/internal/testutil"
)

// testConfig describes a small view with a low iteration budget, so every
// tier agrees with the fixed-point grid.
func testConfig() config.AppConfig {
	return config.AppConfig{
		X: "-0.5", Y: "0", Size: "3",
		Columns: 24, Rows: 12, MaxIterations: 8, Words: 4,
		Width: 64, Workers: 2, Quality: 2,
		Tier:    config.DefaultTier,
		Timeout: time.Minute,
		NoColor: true,
	}
}

func newTestApp(cfg config.AppConfig) *Application {
	return &Application{Config: cfg, Factory: mandelbrot.NewDefaultFactory(), ErrWriter: &bytes.Buffer{}}
}

func TestNew(t *testing.T) {
	t.Parallel()
	missingProfile := filepath.Join(t.TempDir(), "none.json")

	t.Run("Valid args create application", func(t *testing.T) {
		t.Parallel()
		var errBuf bytes.Buffer
		app, err := New([]string{"mbcalc", "-columns", "10", "-rows", "5", "-tier", "fixed", "-calibration-profile", missingProfile}, &errBuf)
		if err != nil {
			t.Fatalf("New() returned unexpected error: %v\n%s", err, errBuf.String())
		}
		if app.Config.Columns != 10 || app.Config.Rows != 5 || app.Config.Tier != "fixed" {
			t.Errorf("unexpected config %+v", app.Config)
		}
		if app.Factory == nil {
			t.Error("Factory should not be nil")
		}
		if app.Config.Width != calibration.EstimateOptimalWidth() || app.Config.Workers != calibration.EstimateOptimalWorkers() {
			t.Errorf("default engine settings should follow the hardware estimate, got %d/%d", app.Config.Width, app.Config.Workers)
		}
	})

	t.Run("Explicit engine settings are kept", func(t *testing.T) {
		t.Parallel()
		app, err := New([]string{"mbcalc", "-width", "32", "-workers", "3", "-calibration-profile", missingProfile}, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("New() returned unexpected error: %v", err)
		}
		if app.Config.Width != 32 || app.Config.Workers != 3 {
			t.Errorf("Width/Workers = %d/%d, want 32/3", app.Config.Width, app.Config.Workers)
		}
	})

	t.Run("Invalid args return error", func(t *testing.T) {
		t.Parallel()
		app, err := New([]string{"mbcalc", "-invalid-flag"}, &bytes.Buffer{})
		if err == nil || app != nil {
			t.Errorf("New() = %v, %v; want nil app and an error", app, err)
		}
	})

	t.Run("Unknown tier is rejected", func(t *testing.T) {
		t.Parallel()
		var errBuf bytes.Buffer
		if _, err := New([]string{"mbcalc", "-tier", "gpu"}, &errBuf); err == nil {
			t.Error("New() should reject an unknown tier")
		}
		if !strings.Contains(errBuf.String(), "unrecognized tier") {
			t.Errorf("error output should name the problem:\n%s", errBuf.String())
		}
	})

	t.Run("Help flag returns error", func(t *testing.T) {
		t.Parallel()
		_, err := New([]string{"mbcalc", "-h"}, &bytes.Buffer{})
		if !IsHelpError(err) {
			t.Errorf("IsHelpError(%v) = false", err)
		}
	})
}

func TestApplyEngineDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.json")
	p := calibration.NewProfile()
	p.OptimalWidth, p.OptimalWorkers = 32, 3
	if err := p.SaveProfile(profilePath); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Width, cfg.Workers = mandelbrot.DefaultWidth, mandelbrot.DefaultWorkers
	cfg.CalibrationProfile = profilePath
	got := applyEngineDefaults(cfg)
	if got.Width != 32 || got.Workers != 3 {
		t.Errorf("cached profile not applied: %d/%d", got.Width, got.Workers)
	}

	cfg.Width = 64
	got = applyEngineDefaults(cfg)
	if got.Width != 64 || got.Workers != 3 {
		t.Errorf("explicit width should be kept: %d/%d", got.Width, got.Workers)
	}

	cfg.Width, cfg.Workers = 64, 5
	if got := applyEngineDefaults(cfg); got != cfg {
		t.Errorf("non-default settings should be untouched: %+v", got)
	}
}

// Run configures the process-wide theme and logger, so these subtests are
// sequential.
func TestApplicationRun(t *testing.T) {
	testutil.PlainTheme(t)

	t.Run("Single tier", func(t *testing.T) {
		cfg := testConfig()
		cfg.Tier = mandelbrot.RendererFixed
		var out bytes.Buffer
		code := newTestApp(cfg).Run(context.Background(), &out)
		if code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d, output:\n%s", code, out.String())
		}
		output := testutil.StripAnsiCodes(out.String())
		for _, want := range []string{"Execution Configuration", "single render with fixed", "Render summary (fixed)", "24x12 (4 words, budget 8)"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("Comparison of all tiers", func(t *testing.T) {
		var out bytes.Buffer
		code := newTestApp(testConfig()).Run(context.Background(), &out)
		if code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d, output:\n%s", code, out.String())
		}
		output := testutil.StripAnsiCodes(out.String())
		for _, want := range []string{"comparison of 3 renderers", "Comparison Summary", "Global Status: Success"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		cfg := testConfig()
		cfg.Timeout = time.Nanosecond
		var out bytes.Buffer
		code := newTestApp(cfg).Run(context.Background(), &out)
		if code != apperrors.ExitErrorTimeout {
			t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorTimeout)
		}
		if !strings.Contains(out.String(), "Timeout") {
			t.Errorf("output should mention the timeout:\n%s", out.String())
		}
	})

	t.Run("Canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		code := newTestApp(testConfig()).Run(ctx, &bytes.Buffer{})
		if code != apperrors.ExitErrorCanceled {
			t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorCanceled)
		}
	})

	t.Run("Invalid view", func(t *testing.T) {
		cfg := testConfig()
		cfg.X = "not-a-number"
		var out bytes.Buffer
		code := newTestApp(cfg).Run(context.Background(), &out)
		if code != apperrors.ExitErrorConfig {
			t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorConfig)
		}
		if !strings.Contains(out.String(), "Rejected") {
			t.Errorf("output:\n%s", out.String())
		}
	})

	t.Run("JSON output", func(t *testing.T) {
		cfg := testConfig()
		cfg.JSONOutput = true
		cfg.ShowGrid = true
		var out bytes.Buffer
		code := newTestApp(cfg).Run(context.Background(), &out)
		if code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		var decoded []struct {
			Renderer string               `json:"renderer"`
			Stats    mandelbrot.GridStats `json:"stats"`
			Grid     mandelbrot.Grid      `json:"grid"`
		}
		if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out.String())
		}
		if len(decoded) != 3 {
			t.Fatalf("got %d results, want 3", len(decoded))
		}
		for _, r := range decoded {
			if r.Stats.Pixels != 24*12 || len(r.Grid) != 12 {
				t.Errorf("%s: stats %+v, %d rows", r.Renderer, r.Stats, len(r.Grid))
			}
		}
	})

	t.Run("Quiet mode with output file", func(t *testing.T) {
		cfg := testConfig()
		cfg.Quiet = true
		cfg.OutputFile = filepath.Join(t.TempDir(), "grid.pgm")
		var out bytes.Buffer
		code := newTestApp(cfg).Run(context.Background(), &out)
		if code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		if !strings.HasPrefix(out.String(), "pixels=288 ") {
			t.Errorf("quiet output = %q", out.String())
		}
		data, err := os.ReadFile(cfg.OutputFile)
		if err != nil {
			t.Fatalf("grid file not written: %v", err)
		}
		if !bytes.HasPrefix(data, []byte("P5\n")) {
			t.Errorf("grid file is not a PGM: %q", data[:min(len(data), 16)])
		}
	})

	t.Run("Calibration mode", func(t *testing.T) {
		cfg := testConfig()
		cfg.Calibrate = true
		cfg.CalibrationProfile = filepath.Join(t.TempDir(), "profile.json")
		var out bytes.Buffer
		code := newTestApp(cfg).Run(context.Background(), &out)
		if code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d, output:\n%s", code, out.String())
		}
		if !calibration.ProfileExists(cfg.CalibrationProfile) {
			t.Error("calibration should save its profile")
		}
	})
}

func TestRunAutoCalibrationIfEnabled(t *testing.T) {
	t.Parallel()

	app := newTestApp(testConfig())
	if got := app.runAutoCalibrationIfEnabled(context.Background(), &bytes.Buffer{}); got != app.Config {
		t.Error("disabled auto-calibration should not change the configuration")
	}

	profilePath := filepath.Join(t.TempDir(), "profile.json")
	p := calibration.NewProfile()
	p.OptimalWidth, p.OptimalWorkers = 32, 1
	if err := p.SaveProfile(profilePath); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.AutoCalibrate = true
	cfg.CalibrationProfile = profilePath
	got := newTestApp(cfg).runAutoCalibrationIfEnabled(context.Background(), &bytes.Buffer{})
	if got.Width != 32 || got.Workers != 1 {
		t.Errorf("auto-calibration should apply the cached profile, got %d/%d", got.Width, got.Workers)
	}
}

func TestRenderersToRun(t *testing.T) {
	t.Parallel()
	factory := mandelbrot.NewDefaultFactory()

	all, err := renderersToRun("all", factory)
	if err != nil || len(all) != 3 {
		t.Fatalf("all: %d renderers, err %v", len(all), err)
	}
	one, err := renderersToRun(mandelbrot.RendererFloat32, factory)
	if err != nil || len(one) != 1 || one[0].Name() != mandelbrot.RendererFloat32 {
		t.Errorf("float32: %v, err %v", one, err)
	}
	if _, err := renderersToRun("gpu", factory); err == nil {
		t.Error("unknown tiers should fail")
	}
}

func TestFindBestResult(t *testing.T) {
	t.Parallel()
	results := []orchestration.RenderResult{
		{Name: mandelbrot.RendererFloat64, Duration: time.Millisecond},
		{Name: mandelbrot.RendererFloat32, Duration: 2 * time.Millisecond},
		{Name: mandelbrot.RendererFixed, Duration: 9 * time.Millisecond},
	}
	if best := findBestResult(results); best.Name != mandelbrot.RendererFixed {
		t.Errorf("best = %s, want the fixed-point grid", best.Name)
	}

	results[2].Err = context.Canceled
	if best := findBestResult(results); best.Name != mandelbrot.RendererFloat64 {
		t.Errorf("best = %s, want the fastest success", best.Name)
	}
	if firstError(results) != context.Canceled {
		t.Error("firstError should return the failure")
	}

	if findBestResult(results[2:]) != nil {
		t.Error("no success should give nil")
	}
}

func TestPrintJSONResultsAllFailed(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	code := printJSONResults([]orchestration.RenderResult{
		{Name: mandelbrot.RendererFixed, Err: context.DeadlineExceeded},
	}, false, &out)
	if code != apperrors.ExitErrorTimeout {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorTimeout)
	}
	if !strings.Contains(out.String(), `"error": "context deadline exceeded"`) {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestIsHelpError(t *testing.T) {
	t.Parallel()
	if IsHelpError(nil) || IsHelpError(context.Canceled) {
		t.Error("only flag.ErrHelp is a help error")
	}
}

func TestSetupLifecycle(t *testing.T) {
	t.Parallel()
	ctx, cancels := SetupLifecycle(context.Background(), time.Millisecond)
	defer cancels.Cleanup()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context should expire at the deadline")
	}
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v", ctx.Err())
	}
	(&CancelFuncs{}).Cleanup()
}
