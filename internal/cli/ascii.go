package cli

import (
	"strings"

	"github.com/agbru/mbcalc/internal/mandelbrot"
)

// asciiRamp shades escaped points from fast (left) to slow (right) escape.
const asciiRamp = " .:-=+*%"

// insideGlyph marks points that never escaped.
const insideGlyph = '#'

// shade maps an escaped count to [0, levels) relative to the slowest escape
// in the grid.
func shade(count, maxCount int32, levels int) int {
	if maxCount <= 0 || count <= 0 {
		return 0
	}
	return int(int64(count) * int64(levels-1) / int64(maxCount))
}

// RenderASCII draws the grid one character per pixel, row 0 (the top of the
// view) first.
func RenderASCII(grid mandelbrot.Grid) string {
	maxCount := grid.Stats().MaxCount
	var b strings.Builder
	for i, row := range grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			if c == mandelbrot.Inside {
				b.WriteByte(insideGlyph)
				continue
			}
			b.WriteByte(asciiRamp[shade(c, maxCount, len(asciiRamp))])
		}
	}
	return b.String()
}
