// Package calibration provides performance calibration for the mbcalc engine.
// This file implements adaptive candidate generation based on hardware
// characteristics.
package calibration

import (
	"runtime"
	"sort"

	"golang.org/x/sys/cpu"

	"github.com/agbru/mbcalc/internal/mandelbrot"
)

// wordSize is the native word size of the platform (32 or 64).
const wordSize = 32 << (^uint(0) >> 63)

// hasWideMultiply reports whether the CPU has a native 64x64->128 multiply
// that the 128-bit digit type can lean on.
func hasWideMultiply() bool {
	if wordSize != 64 {
		return false
	}
	switch runtime.GOARCH {
	case "amd64":
		return cpu.X86.HasBMI2
	case "arm64", "ppc64le", "ppc64", "s390x", "riscv64":
		return true
	default:
		return false
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Digit width
// ─────────────────────────────────────────────────────────────────────────────

// GenerateWidthCandidates returns the digit widths worth timing on this
// platform. 32-bit platforms skip 128, whose multiply is emulated twice over.
func GenerateWidthCandidates() []int {
	if wordSize == 32 {
		return []int{32, 64}
	}
	return append([]int(nil), mandelbrot.SupportedWidths...)
}

// EstimateOptimalWidth returns a digit width suited to the current hardware
// without running any benchmark.
func EstimateOptimalWidth() int {
	switch {
	case wordSize == 32:
		return 32
	case hasWideMultiply():
		return 128
	default:
		return 64
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Worker count
// ─────────────────────────────────────────────────────────────────────────────

// GenerateWorkerCandidates returns worker counts to time: powers of two up
// to the number of CPUs, plus the CPU count itself.
func GenerateWorkerCandidates() []int {
	numCPU := runtime.NumCPU()
	candidates := []int{1}
	for w := 2; w < numCPU; w *= 2 {
		candidates = append(candidates, w)
	}
	if numCPU > 1 {
		candidates = append(candidates, numCPU)
	}
	return candidates
}

// GenerateQuickWorkerCandidates returns a reduced set for startup
// calibration.
func GenerateQuickWorkerCandidates() []int {
	numCPU := runtime.NumCPU()
	if numCPU == 1 {
		return []int{1}
	}
	set := map[int]bool{1: true, numCPU: true}
	if half := numCPU / 2; half > 1 {
		set[half] = true
	}
	candidates := make([]int, 0, len(set))
	for w := range set {
		candidates = append(candidates, w)
	}
	sort.Ints(candidates)
	return candidates
}

// EstimateOptimalWorkers returns one worker per CPU.
func EstimateOptimalWorkers() int {
	if n := runtime.NumCPU(); n > 1 {
		return n
	}
	return 1
}

// ValidateSettings replaces an unsupported width or a worker count outside
// [1, 4*NumCPU] with the hardware estimate.
func ValidateSettings(width, workers int) (int, int) {
	supported := false
	for _, w := range mandelbrot.SupportedWidths {
		if w == width {
			supported = true
			break
		}
	}
	if !supported {
		width = EstimateOptimalWidth()
	}
	if workers < 1 || workers > 4*runtime.NumCPU() {
		workers = EstimateOptimalWorkers()
	}
	return width, workers
}
