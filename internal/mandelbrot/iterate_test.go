package mandelbrot

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/agbru/mbcalc/internal/fixedpoint"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// testWords is the encoding length used for single-point checks: 64
// fractional bits at every width.
const testWords = 5

func hpPoint[T fixedpoint.Digit[T]](v float64) []T {
	return fixedpoint.FromWords[T](fixedpoint.WordsFromFloat(big.NewFloat(v), testWords))
}

func countHP[T fixedpoint.Digit[T]](x, y float64, maxIterations int32) int32 {
	hx, hy := hpPoint[T](x), hpPoint[T](y)
	s := fixedpoint.NewScratch[T](len(hx))
	return CountIterationsHP(s, hx, hy, maxIterations)
}

func countAllTiers(x, y float64, maxIterations int32) map[string]int32 {
	return map[string]int32{
		"float64": CountIterations(x, y, maxIterations),
		"hp32":    countHP[fixedpoint.U32](x, y, maxIterations),
		"hp64":    countHP[fixedpoint.U64](x, y, maxIterations),
		"hp128":   countHP[fixedpoint.U128](x, y, maxIterations),
	}
}

func TestTiersAgreeOnKnownPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		x, y float64
		max  int32
		want int32
	}{
		{-0.5, 0, 100, Inside},
		{2, 0, 50, 1},
		{0.5, 0.5, 100, 4},
		{-0.75, 0.1, 100, 33},
		{0.3, 0.5, 100, Inside},
		{-2.5, 0, 100, 1},
		{1, 1, 100, 1},
		{-1, 0, 100, Inside},
		{0.25, 0, 100, Inside},
		{0.4, -0.3, 100, 14},
		{-1.5, 0, 100, Inside},
		{0.5, 0.5, 3, Inside},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%g%+gi/%d", tt.x, tt.y, tt.max), func(t *testing.T) {
			t.Parallel()
			for tier, got := range countAllTiers(tt.x, tt.y, tt.max) {
				if got != tt.want {
					t.Errorf("%s: count = %d, want %d", tier, got, tt.want)
				}
			}
		})
	}
}

func TestFloat32Tier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		x, y float32
		want int32
	}{
		{-0.5, 0, Inside},
		{2, 0, 1},
		{0.5, 0.5, 4},
		{1, 1, 1},
		{-2.5, 0, 1},
	}
	for _, tt := range tests {
		if got := CountIterations(tt.x, tt.y, 100); got != tt.want {
			t.Errorf("CountIterations[float32](%g, %g) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestZeroBudgetNeverIterates(t *testing.T) {
	t.Parallel()

	if got := CountIterations(5.0, 5.0, 0); got != Inside {
		t.Errorf("float tier with zero budget = %d, want -1", got)
	}
	if got := countHP[fixedpoint.U64](5, 5, 0); got != Inside {
		t.Errorf("fixed tier with zero budget = %d, want -1", got)
	}
}

func TestComputeRowUsesMultiplication(t *testing.T) {
	t.Parallel()

	row := ComputeRow(-2.0, 0.25, 12, 0.0, 40)
	if len(row) != 12 {
		t.Fatalf("len(row) = %d, want 12", len(row))
	}
	for j, got := range row {
		want := CountIterations(-2.0+float64(j)*0.25, 0.0, 40)
		if got != want {
			t.Errorf("column %d: %d, want %d", j, got, want)
		}
	}
}

func TestEscapeBound_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 150
	properties := gopter.NewProperties(parameters)

	inBounds := func(c, budget int32) bool {
		return c == Inside || (c >= 0 && c < budget)
	}

	properties.Property("every tier returns -1 or a count below the budget", prop.ForAll(
		func(x, y float64, budget int32) bool {
			return inBounds(CountIterations(x, y, budget), budget) &&
				inBounds(CountIterations(float32(x), float32(y), budget), budget) &&
				inBounds(countHP[fixedpoint.U32](x, y, budget), budget) &&
				inBounds(countHP[fixedpoint.U64](x, y, budget), budget) &&
				inBounds(countHP[fixedpoint.U128](x, y, budget), budget)
		},
		gen.Float64Range(-2.5, 2.5),
		gen.Float64Range(-2.5, 2.5),
		gen.Int32Range(0, 64),
	))

	properties.Property("points outside radius sqrt(8) escape immediately", prop.ForAll(
		func(x, y float64) bool {
			if x*x+y*y < EscapeRadiusSquared+0.01 {
				return true
			}
			return CountIterations(x, y, 10) == 0 && countHP[fixedpoint.U64](x, y, 10) == 0
		},
		gen.Float64Range(-20, 20),
		gen.Float64Range(-20, 20),
	))

	properties.TestingRun(t)
}
