// Package fixedpoint implements the chunked fixed-point arithmetic used by the
// high-precision escape-time iterator.
//
// A number is a slice of digits. Element 0 holds the integral part and the
// sign, elements 1..N-1 hold fractional digits, most significant first. Only
// the low half of each digit's bits is significant: the spare high half
// absorbs sums and products so that carries can be extracted with a shift.
// Negative values use radix complement over the whole slice.
//
// The engine is generic over the working digit width through the Digit
// constraint. U32, U64 and U128 provide 16, 32 and 64 significant bits per
// digit respectively.
package fixedpoint

import "lukechampine.com/uint128"

// Digit is the capability set the arithmetic engine needs from a working
// digit type. All operations wrap modulo 2^Bits().
type Digit[T any] interface {
	comparable
	Add(T) T
	Sub(T) T
	Mul(T) T
	And(T) T
	Or(T) T
	Xor(T) T
	Lsh(n uint) T
	Rsh(n uint) T
	IsZero() bool
	// Bits returns the storage width of the digit type; it must not depend
	// on the receiver's value.
	Bits() uint
	FromUint32(v uint32) T
	// Uint32 returns the low 32 bits of the digit.
	Uint32() uint32
}

// U32 is a 32-bit working digit carrying 16 significant bits.
type U32 uint32

func (a U32) Add(b U32) U32         { return a + b }
func (a U32) Sub(b U32) U32         { return a - b }
func (a U32) Mul(b U32) U32         { return a * b }
func (a U32) And(b U32) U32         { return a & b }
func (a U32) Or(b U32) U32          { return a | b }
func (a U32) Xor(b U32) U32         { return a ^ b }
func (a U32) Lsh(n uint) U32        { return a << n }
func (a U32) Rsh(n uint) U32        { return a >> n }
func (a U32) IsZero() bool          { return a == 0 }
func (U32) Bits() uint              { return 32 }
func (U32) FromUint32(v uint32) U32 { return U32(v) }
func (a U32) Uint32() uint32        { return uint32(a) }

// U64 is a 64-bit working digit carrying 32 significant bits.
type U64 uint64

func (a U64) Add(b U64) U64         { return a + b }
func (a U64) Sub(b U64) U64         { return a - b }
func (a U64) Mul(b U64) U64         { return a * b }
func (a U64) And(b U64) U64         { return a & b }
func (a U64) Or(b U64) U64          { return a | b }
func (a U64) Xor(b U64) U64         { return a ^ b }
func (a U64) Lsh(n uint) U64        { return a << n }
func (a U64) Rsh(n uint) U64        { return a >> n }
func (a U64) IsZero() bool          { return a == 0 }
func (U64) Bits() uint              { return 64 }
func (U64) FromUint32(v uint32) U64 { return U64(v) }
func (a U64) Uint32() uint32        { return uint32(a) }

// U128 is a 128-bit working digit carrying 64 significant bits. Products of
// two significant halves plus a digit and a carry fit exactly in 128 bits.
type U128 uint128.Uint128

func (a U128) u() uint128.Uint128 { return uint128.Uint128(a) }

func (a U128) Add(b U128) U128  { return U128(a.u().AddWrap(b.u())) }
func (a U128) Sub(b U128) U128  { return U128(a.u().SubWrap(b.u())) }
func (a U128) Mul(b U128) U128  { return U128(a.u().MulWrap(b.u())) }
func (a U128) And(b U128) U128  { return U128(a.u().And(b.u())) }
func (a U128) Or(b U128) U128   { return U128(a.u().Or(b.u())) }
func (a U128) Xor(b U128) U128  { return U128(a.u().Xor(b.u())) }
func (a U128) Lsh(n uint) U128  { return U128(a.u().Lsh(n)) }
func (a U128) Rsh(n uint) U128  { return U128(a.u().Rsh(n)) }
func (a U128) IsZero() bool     { return a.u().IsZero() }
func (U128) Bits() uint         { return 128 }
func (a U128) Uint32() uint32   { return uint32(a.Lo) }
func (U128) FromUint32(v uint32) U128 {
	return U128(uint128.From64(uint64(v)))
}

// String renders the digit in decimal, mainly for test diagnostics.
func (a U128) String() string { return a.u().String() }

// layout caches the width-derived constants used by every primitive.
type layout[T Digit[T]] struct {
	half uint // significant bits per digit
	one  T
	low  T // mask of the significant bits
	over T // first bit above the significant bits
	sign T // sign bit of digit 0
}

func layoutOf[T Digit[T]]() layout[T] {
	var zero T
	half := zero.Bits() / 2
	one := zero.FromUint32(1)
	over := one.Lsh(half)
	return layout[T]{
		half: half,
		one:  one,
		low:  over.Sub(one),
		over: over,
		sign: over.Rsh(1),
	}
}

// Mask returns the mask of the significant bits of a digit of type T.
func Mask[T Digit[T]]() T { return layoutOf[T]().low }

// WordsPerDigit returns how many 16-bit input words are packed into one
// fractional digit of type T.
func WordsPerDigit[T Digit[T]]() int {
	var zero T
	return int(zero.Bits() / 32)
}

// IsNegative reports whether the sign bit of x is set.
func IsNegative[T Digit[T]](x []T) bool {
	return !x[0].And(layoutOf[T]().sign).IsZero()
}

// IsZero reports whether every digit of x is zero.
func IsZero[T Digit[T]](x []T) bool {
	for _, d := range x {
		if !d.IsZero() {
			return false
		}
	}
	return true
}
