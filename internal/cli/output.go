package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agbru/mbcalc/internal/mandelbrot"
	"github.com/agbru/mbcalc/internal/ui"
)

// OutputConfig controls how a finished render is reported.
type OutputConfig struct {
	// OutputFile receives the grid when set: PGM for a ".pgm" suffix,
	// JSON otherwise.
	OutputFile string
	// Quiet prints a single summary line for scripts.
	Quiet bool
	// ShowGrid prints the grid as text.
	ShowGrid bool
}

// GridFile is the JSON document written by WriteGridToFile.
type GridFile struct {
	Generated     time.Time            `json:"generated"`
	Renderer      string               `json:"renderer"`
	Columns       int                  `json:"columns"`
	Rows          int                  `json:"rows"`
	MaxIterations int32                `json:"maxIterations"`
	Words         int                  `json:"words"`
	DurationMs    float64              `json:"durationMs"`
	Stats         mandelbrot.GridStats `json:"stats"`
	Grid          mandelbrot.Grid      `json:"grid"`
}

// DisplayResult prints the summary of a render: grid shape, escape
// statistics and elapsed time.
func DisplayResult(out io.Writer, renderer string, grid mandelbrot.Grid, view mandelbrot.View, duration time.Duration) {
	s := grid.Stats()
	fmt.Fprintf(out, "\n%s--- Render summary (%s) ---%s\n", ui.ColorBold(), renderer, ui.ColorReset())
	fmt.Fprintf(out, "Grid               : %s%dx%d%s (%d words, budget %d)\n",
		ui.ColorCyan(), view.Columns, view.Rows, ui.ColorReset(), len(view.XMin), view.MaxIterations)
	fmt.Fprintf(out, "Inside             : %s%d%s / %d pixels\n", ui.ColorCyan(), s.Inside, ui.ColorReset(), s.Pixels)
	if s.Escaped > 0 {
		fmt.Fprintf(out, "Escape counts      : min %d, max %d, mean %.2f\n", s.MinCount, s.MaxCount, s.Mean)
	}
	durationStr := FormatExecutionDuration(duration)
	if duration == 0 {
		durationStr = "< 1µs"
	}
	fmt.Fprintf(out, "Render time        : %s%s%s\n", ui.ColorGreen(), durationStr, ui.ColorReset())
}

// FormatQuietResult returns the one-line summary used in quiet mode.
func FormatQuietResult(grid mandelbrot.Grid) string {
	s := grid.Stats()
	return fmt.Sprintf("pixels=%d inside=%d escaped=%d mean=%.2f", s.Pixels, s.Inside, s.Escaped, s.Mean)
}

// DisplayResultWithConfig reports a render according to cfg and writes the
// output file if one is configured.
func DisplayResultWithConfig(out io.Writer, renderer string, grid mandelbrot.Grid, view mandelbrot.View, duration time.Duration, cfg OutputConfig) error {
	if cfg.Quiet {
		fmt.Fprintln(out, FormatQuietResult(grid))
	} else {
		DisplayResult(out, renderer, grid, view, duration)
	}
	if cfg.ShowGrid {
		fmt.Fprintf(out, "\n%s\n", RenderASCII(grid))
	}

	if cfg.OutputFile == "" {
		return nil
	}
	meta := GridFile{
		Generated:     time.Now().UTC(),
		Renderer:      renderer,
		Columns:       view.Columns,
		Rows:          view.Rows,
		MaxIterations: view.MaxIterations,
		Words:         len(view.XMin),
		DurationMs:    float64(duration) / float64(time.Millisecond),
	}
	if err := WriteGridToFile(cfg.OutputFile, grid, meta); err != nil {
		return err
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "\n%s✓ Grid saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), cfg.OutputFile, ui.ColorReset())
	}
	return nil
}

// WriteGridToFile writes grid to path, creating parent directories. A ".pgm"
// suffix selects a binary greymap; any other name gets the JSON document
// described by meta with Grid and Stats filled in.
func WriteGridToFile(path string, grid mandelbrot.Grid, meta GridFile) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".pgm") {
		err = EncodePGM(f, grid, meta.Renderer)
	} else {
		meta.Grid = grid
		meta.Stats = grid.Stats()
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(meta)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// EncodePGM writes grid as a binary (P5) greymap. Inside points are black;
// escaped points run from dark grey (fast escape) to white (slowest escape
// in the grid).
func EncodePGM(w io.Writer, grid mandelbrot.Grid, comment string) error {
	rows := len(grid)
	cols := 0
	if rows > 0 {
		cols = len(grid[0])
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P5\n")
	if comment != "" {
		fmt.Fprintf(bw, "# %s\n", comment)
	}
	fmt.Fprintf(bw, "%d %d\n255\n", cols, rows)

	maxCount := grid.Stats().MaxCount
	for _, row := range grid {
		if len(row) != cols {
			return fmt.Errorf("ragged grid: row of %d columns, want %d", len(row), cols)
		}
		for _, c := range row {
			var v byte
			if c != mandelbrot.Inside {
				v = byte(32 + shade(c, maxCount, 224))
			}
			if err := bw.WriteByte(v); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
