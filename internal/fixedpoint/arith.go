package fixedpoint

// Add stores x + y into out. The carry out of digit 0 is dropped, so the
// integral part wraps. out may alias x or y.
func Add[T Digit[T]](x, y, out []T) {
	checkLen(x, y, out)
	l := layoutOf[T]()
	var carry T
	for i := len(x) - 1; i >= 0; i-- {
		s := x[i].Add(y[i]).Add(carry)
		carry = s.Rsh(l.half)
		out[i] = s.And(l.low)
	}
}

// Incr adds dx to x in place.
func Incr[T Digit[T]](x, dx []T) {
	Add(x, dx, x)
}

// Negate stores the radix complement of x into out. out may alias x.
func Negate[T Digit[T]](x, out []T) {
	checkLen(x, out)
	l := layoutOf[T]()
	n := len(x)
	for i := range x {
		out[i] = l.low.Sub(x[i])
	}
	out[n-1] = out[n-1].Add(l.one)
	i := n - 1
	for i > 0 && !out[i].And(l.over).IsZero() {
		out[i] = out[i].And(l.low)
		out[i-1] = out[i-1].Add(l.one)
		i--
	}
	out[0] = out[0].And(l.low)
}

// Multiply stores the signed product x * y, truncated to len(x) digits at the
// same fixed-point scale, into out. work1 and work2 are scratch buffers of the
// same length. out must not alias x or y, and neither work buffer may alias
// an operand or out.
func Multiply[T Digit[T]](x, y, out, work1, work2 []T) {
	checkLen(x, y, out, work1, work2)
	if sameBuffer(out, x) || sameBuffer(out, y) {
		panic("fixedpoint: Multiply destination aliases an operand")
	}
	l := layoutOf[T]()
	negx := !x[0].And(l.sign).IsZero()
	negy := !y[0].And(l.sign).IsZero()
	switch {
	case negx && negy:
		Negate(x, work1)
		Negate(y, work2)
		multiplyPos(work1, work2, out, l)
	case negx:
		Negate(x, work1)
		multiplyPos(work1, y, work2, l)
		Negate(work2, out)
	case negy:
		Negate(y, work1)
		multiplyPos(x, work1, work2, l)
		Negate(work2, out)
	default:
		multiplyPos(x, y, out, l)
	}
}

// Square stores x * x into out using work as scratch. out must not alias x.
func Square[T Digit[T]](x, out, work []T) {
	checkLen(x, out, work)
	if sameBuffer(out, x) {
		panic("fixedpoint: Square destination aliases its operand")
	}
	l := layoutOf[T]()
	if !x[0].And(l.sign).IsZero() {
		Negate(x, work)
		multiplyPos(work, work, out, l)
		return
	}
	multiplyPos(x, x, out, l)
}

// multiplyPos is the schoolbook product of two non-negative operands. Partial
// products below digit N-1 are discarded except for the high half of the
// first one dropped in each pass, which seeds the carry.
func multiplyPos[T Digit[T]](x, y, out []T, l layout[T]) {
	n := len(x)
	var carry T
	if x[0].IsZero() {
		clear(out)
	} else {
		for i := n - 1; i >= 0; i-- {
			v := x[0].Mul(y[i]).Add(carry)
			carry = v.Rsh(l.half)
			out[i] = v.And(l.low)
		}
	}

	for j := 1; j < n; j++ {
		i := n - j
		carry = x[j].Mul(y[i]).Rsh(l.half)
		k := n - 1
		for i > 0 {
			i--
			v := out[k].Add(x[j].Mul(y[i])).Add(carry)
			carry = v.Rsh(l.half)
			out[k] = v.And(l.low)
			k--
		}
		for !carry.IsZero() {
			v := out[k].Add(carry)
			carry = v.Rsh(l.half)
			out[k] = v.And(l.low)
			if k == 0 {
				break
			}
			k--
		}
	}
}

func checkLen[T any](first []T, rest ...[]T) {
	if len(first) == 0 {
		panic("fixedpoint: empty digit sequence")
	}
	for _, s := range rest {
		if len(s) != len(first) {
			panic("fixedpoint: digit sequence length mismatch")
		}
	}
}

func sameBuffer[T any](a, b []T) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}
