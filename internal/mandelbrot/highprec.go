package mandelbrot

import "github.com/agbru/mbcalc/internal/fixedpoint"

// CountIterationsHP is the fixed-point counterpart of CountIterations. x and
// y must have the scratch bundle's length; the bundle is overwritten.
//
// Divergence is detected on the integral digit of zx² + zy²: it escapes when
// any bit of weight 8 or more is set, except for the single pattern where
// every bit of weight 16 or more is set and the bit of weight 8 is clear.
func CountIterationsHP[T fixedpoint.Digit[T]](s *fixedpoint.Scratch[T], x, y []T, maxIterations int32) int32 {
	low := fixedpoint.Mask[T]()
	mask := low.Rsh(3).Lsh(3)
	what := low.Rsh(4).Lsh(4)

	zx, zy := s.Zx, s.Zy
	w1, w2, w3, w4 := s.Work[0], s.Work[1], s.Work[2], s.Work[3]
	copy(zx, x)
	copy(zy, y)

	for count := int32(0); count < maxIterations; count++ {
		fixedpoint.Square(zx, w1, w3)
		fixedpoint.Square(zy, w2, w3)
		fixedpoint.Add(w1, w2, w3)
		if t := w3[0].And(mask); !t.IsZero() && t != what {
			return count
		}

		// zx' = zx² - zy² + x
		fixedpoint.Negate(w2, w3)
		fixedpoint.Add(w1, w3, w2)
		fixedpoint.Add(w2, x, w1)

		// zy' = 2·zx·zy + y
		fixedpoint.Add(zx, zx, w2)
		copy(zx, w1)
		fixedpoint.Multiply(w2, zy, w4, w1, w3)
		fixedpoint.Add(w4, y, zy)
	}
	return Inside
}
