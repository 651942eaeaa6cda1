package fixedpoint

// Scratch is the per-worker buffer bundle used by the escape-time iterator:
// the running iterate (Zx, Zy) and four work buffers, all of one length.
// A Scratch must be owned by exactly one goroutine at a time.
type Scratch[T Digit[T]] struct {
	Zx, Zy []T
	Work   [4][]T
}

// NewScratch allocates a bundle of n-digit buffers from a single backing
// array.
func NewScratch[T Digit[T]](n int) *Scratch[T] {
	if n <= 0 {
		panic("fixedpoint: scratch length must be positive")
	}
	backing := make([]T, 6*n)
	s := &Scratch[T]{
		Zx: backing[0:n:n],
		Zy: backing[n : 2*n : 2*n],
	}
	for i := range s.Work {
		off := (i + 2) * n
		s.Work[i] = backing[off : off+n : off+n]
	}
	return s
}

// Len returns the digit length of every buffer in the bundle.
func (s *Scratch[T]) Len() int { return len(s.Zx) }
