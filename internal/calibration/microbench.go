// Package calibration provides performance calibration for the mbcalc engine.
// This file implements a fast fixed-point squaring micro-benchmark used to
// pick a digit width at startup.
package calibration

import (
	"context"
	"time"

	"github.com/agbru/mbcalc/internal/fixedpoint"
)

const (
	// MicroBenchWords is the operand length, in 16-bit words, of the timed
	// squarings. It matches a deep zoom of roughly 1e-25.
	MicroBenchWords = 9

	// MicroBenchIterations is the number of squarings per width.
	MicroBenchIterations = 20000

	// MicroBenchTimeout is the maximum time for the whole micro-benchmark.
	MicroBenchTimeout = 150 * time.Millisecond
)

// MicroBenchmark times fixed-point squaring at each digit width.
type MicroBenchmark struct {
	Widths     []int
	Words      int
	Iterations int
	Timeout    time.Duration
}

// MicroResults is the outcome of a micro-benchmark run.
type MicroResults struct {
	// Width is the fastest digit width measured.
	Width int
	// Timings holds the measured duration per width.
	Timings map[int]time.Duration
	// Confidence is the share of widths that were measured before the
	// deadline, from 0 to 1.
	Confidence float64
	Duration   time.Duration
}

// NewMicroBenchmark creates a MicroBenchmark with default settings.
func NewMicroBenchmark() *MicroBenchmark {
	return &MicroBenchmark{
		Widths:     GenerateWidthCandidates(),
		Words:      MicroBenchWords,
		Iterations: MicroBenchIterations,
		Timeout:    MicroBenchTimeout,
	}
}

// RunQuick times every width in turn. Widths are measured sequentially so
// they do not compete for cores. If no width finishes before the deadline,
// Width is the hardware estimate and Confidence is 0.
func (mb *MicroBenchmark) RunQuick(ctx context.Context) (MicroResults, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, mb.Timeout)
	defer cancel()

	res := MicroResults{Width: EstimateOptimalWidth(), Timings: make(map[int]time.Duration)}
	best := maxDuration
	for _, width := range mb.Widths {
		if ctx.Err() != nil {
			break
		}
		dur, ok := mb.runSingleTest(ctx, width)
		if !ok {
			continue
		}
		res.Timings[width] = dur
		if dur < best {
			best, res.Width = dur, width
		}
	}
	if len(mb.Widths) > 0 {
		res.Confidence = float64(len(res.Timings)) / float64(len(mb.Widths))
	}
	res.Duration = time.Since(start)
	return res, nil
}

func (mb *MicroBenchmark) runSingleTest(ctx context.Context, width int) (time.Duration, bool) {
	words := benchOperand(mb.Words)
	switch width {
	case 32:
		return timeSquarings[fixedpoint.U32](ctx, words, mb.Iterations)
	case 64:
		return timeSquarings[fixedpoint.U64](ctx, words, mb.Iterations)
	case 128:
		return timeSquarings[fixedpoint.U128](ctx, words, mb.Iterations)
	default:
		return 0, false
	}
}

// benchOperand returns a value just below 1 with every fractional word
// populated, so no digit of the product is trivially zero.
func benchOperand(n int) []uint32 {
	words := make([]uint32, n)
	for i := 1; i < n; i++ {
		words[i] = 0xA5A5 ^ uint32(i*0x1111)
	}
	return words
}

func timeSquarings[T fixedpoint.Digit[T]](ctx context.Context, words []uint32, iterations int) (time.Duration, bool) {
	x := fixedpoint.FromWords[T](words)
	s := fixedpoint.NewScratch[T](len(x))
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if i%1024 == 0 && ctx.Err() != nil {
			return 0, false
		}
		fixedpoint.Square(x, s.Zx, s.Work[0])
		fixedpoint.Multiply(x, s.Zx, s.Zy, s.Work[1], s.Work[2])
	}
	return time.Since(start), true
}

// QuickCalibrate runs the default micro-benchmark.
func QuickCalibrate(ctx context.Context) (MicroResults, error) {
	return NewMicroBenchmark().RunQuick(ctx)
}
