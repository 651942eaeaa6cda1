package mandelbrot

import (
	"fmt"
	"math/big"

	apperrors "github.com/agbru/mbcalc/internal/errors"
	"github.com/agbru/mbcalc/internal/fixedpoint"
)

// MinWords is the smallest word count NewView produces.
const MinWords = 3

// parsePrec is the minimum mantissa precision used to parse coordinates.
const parsePrec = 2048

// guardBits are carried below the pixel size so that per-column increments
// do not accumulate visible drift.
const guardBits = 32

// View describes a high-precision grid request. Coordinates use the external
// word encoding of fixedpoint.FromWords and must all have the same length.
// Pixel (row i, column j) sits at (XMin + j*DX, YMax - i*DY).
type View struct {
	XMin          []uint32 `json:"xmin"`
	DX            []uint32 `json:"dx"`
	YMax          []uint32 `json:"ymax"`
	DY            []uint32 `json:"dy"`
	Columns       int      `json:"columns"`
	Rows          int      `json:"rows"`
	MaxIterations int32    `json:"maxIterations"`
}

// Validate checks shape and encoding constraints, returning a
// ValidationError for the first problem found.
func (v View) Validate() error {
	if v.Columns <= 0 {
		return apperrors.NewValidationError("columns", "must be positive", v.Columns)
	}
	if v.Rows <= 0 {
		return apperrors.NewValidationError("rows", "must be positive", v.Rows)
	}
	if v.MaxIterations <= 0 {
		return apperrors.NewValidationError("maxIterations", "must be positive", v.MaxIterations)
	}
	n := len(v.XMin)
	if n == 0 {
		return apperrors.NewValidationError("xmin", "must contain at least one word", nil)
	}
	for name, words := range map[string][]uint32{"dx": v.DX, "ymax": v.YMax, "dy": v.DY} {
		if len(words) != n {
			return apperrors.NewValidationError(name, fmt.Sprintf("has %d words, xmin has %d", len(words), n), len(words))
		}
	}
	return nil
}

// Floats returns the view's coordinates rounded to float64.
func (v View) Floats() (xmin, dx, ymax, dy float64) {
	return fixedpoint.Float64FromWords(v.XMin),
		fixedpoint.Float64FromWords(v.DX),
		fixedpoint.Float64FromWords(v.YMax),
		fixedpoint.Float64FromWords(v.DY)
}

// LowRequest converts the view for the floating-point grid builder.
func (v View) LowRequest() LowRequest {
	xmin, dx, ymax, dy := v.Floats()
	return LowRequest{
		Columns:       v.Columns,
		Rows:          v.Rows,
		XMin:          xmin,
		DX:            dx,
		YMax:          ymax,
		DY:            dy,
		MaxIterations: v.MaxIterations,
	}
}

// NewView builds a view of square pixels centred on (cx, cy) whose width in
// the complex plane is size. Coordinates are decimal strings so that deep
// zoom centres survive without rounding through float64. A words value of 0
// selects DefaultWords.
func NewView(cx, cy, size string, columns, rows, words int, maxIterations int32) (View, error) {
	if columns <= 0 || rows <= 0 {
		return View{}, apperrors.NewValidationError("size", "grid must have positive columns and rows", fmt.Sprintf("%dx%d", columns, rows))
	}

	prec := max(uint(64+fixedpoint.WordBits*max(words, 0)), parsePrec)
	parse := func(name, s string) (*big.Float, error) {
		f, ok := new(big.Float).SetPrec(prec).SetString(s)
		if !ok {
			return nil, apperrors.NewValidationError(name, "not a decimal number", s)
		}
		return f, nil
	}
	x, err := parse("x", cx)
	if err != nil {
		return View{}, err
	}
	y, err := parse("y", cy)
	if err != nil {
		return View{}, err
	}
	w, err := parse("size", size)
	if err != nil {
		return View{}, err
	}
	if w.Sign() <= 0 {
		return View{}, apperrors.NewValidationError("size", "must be positive", size)
	}

	if words <= 0 {
		words = DefaultWords(w, columns)
	}

	step := new(big.Float).SetPrec(prec).Quo(w, new(big.Float).SetInt64(int64(columns)))
	halfW := new(big.Float).SetPrec(prec).Mul(step, new(big.Float).SetFloat64(float64(columns)/2))
	halfH := new(big.Float).SetPrec(prec).Mul(step, new(big.Float).SetFloat64(float64(rows)/2))
	xmin := new(big.Float).SetPrec(prec).Sub(x, halfW)
	ymax := new(big.Float).SetPrec(prec).Add(y, halfH)

	stepWords := fixedpoint.WordsFromFloat(step, words)
	return View{
		XMin:          fixedpoint.WordsFromFloat(xmin, words),
		DX:            stepWords,
		YMax:          fixedpoint.WordsFromFloat(ymax, words),
		DY:            append([]uint32(nil), stepWords...),
		Columns:       columns,
		Rows:          rows,
		MaxIterations: maxIterations,
	}, nil
}

// DefaultWords returns the number of words needed to resolve a pixel of a
// view of the given width split into columns, plus guard bits.
func DefaultWords(size *big.Float, columns int) int {
	pixel := new(big.Float).Quo(size, new(big.Float).SetInt64(int64(max(columns, 1))))
	exp := pixel.MantExp(nil)
	bits := guardBits
	if exp < 0 {
		bits += -exp
	}
	words := 1 + (bits+fixedpoint.WordBits-1)/fixedpoint.WordBits
	return max(words, MinWords)
}
