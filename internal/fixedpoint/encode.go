package fixedpoint

import "fmt"

// WordBits is the number of significant bits carried by each external word.
const WordBits = 16

const wordMask = 1<<WordBits - 1

// DigitsForWords returns the number of digits of type T that FromWords
// produces for n input words.
func DigitsForWords[T Digit[T]](n int) int {
	if n <= 0 {
		return 0
	}
	per := WordsPerDigit[T]()
	return 1 + (n-1+per-1)/per
}

// FromWords converts the external 16-bit word encoding into digits of type T.
//
// Word 0 holds the integral part as a 16-bit two's-complement value and is
// sign-extended across the digit. Each following word is a 16-bit fractional
// digit, most significant first; they are packed WordsPerDigit at a time into
// internal digits, and a trailing partial digit is zero padded. Bits above the
// low 16 of every word are ignored.
func FromWords[T Digit[T]](words []uint32) []T {
	if len(words) == 0 {
		return nil
	}
	l := layoutOf[T]()
	var zero T
	per := WordsPerDigit[T]()
	out := make([]T, DigitsForWords[T](len(words)))

	out[0] = zero.FromUint32(words[0] & wordMask)
	if words[0]&0x8000 != 0 {
		out[0] = out[0].Or(l.low.Xor(zero.FromUint32(wordMask)))
	}
	for k, w := range words[1:] {
		idx := 1 + k/per
		shift := l.half - uint(k%per+1)*WordBits
		out[idx] = out[idx].Or(zero.FromUint32(w & wordMask).Lsh(shift))
	}
	return out
}

// ToWords converts digits back to the external word encoding. The result has
// 1 + (len(digits)-1)*WordsPerDigit words; padding words are returned as
// zeros.
func ToWords[T Digit[T]](digits []T) []uint32 {
	if len(digits) == 0 {
		return nil
	}
	l := layoutOf[T]()
	per := WordsPerDigit[T]()
	words := make([]uint32, 1+(len(digits)-1)*per)
	words[0] = digits[0].Uint32() & wordMask
	for idx, d := range digits[1:] {
		for k := 0; k < per; k++ {
			shift := l.half - uint(k+1)*WordBits
			words[1+idx*per+k] = d.Rsh(shift).Uint32() & wordMask
		}
	}
	return words
}

// IterationLength returns the number of digits of type T the iterator works
// on for an input of n words at the given quality. Quality ranges from 0 to
// 2; each step below 2 drops one trailing input word.
func IterationLength[T Digit[T]](n, quality int) (int, error) {
	if quality < 0 || quality > 2 {
		return 0, fmt.Errorf("quality %d out of range [0, 2]", quality)
	}
	kept := n - (2 - quality)
	if kept < 1 {
		return 0, fmt.Errorf("quality %d leaves no words of a %d-word input", quality, n)
	}
	return DigitsForWords[T](kept), nil
}
