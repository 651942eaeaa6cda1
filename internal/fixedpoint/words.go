package fixedpoint

import (
	"math/big"
)

// WordsFromFloat encodes f as n external words: a 16-bit two's-complement
// integral part followed by n-1 fractional 16-bit digits. Bits below the last
// digit are truncated toward negative infinity, and an integral part outside
// [-32768, 32767] wraps.
func WordsFromFloat(f *big.Float, n int) []uint32 {
	if n <= 0 {
		return nil
	}
	totalBits := uint(n * WordBits)
	scaled := new(big.Float).SetPrec(f.Prec() + totalBits + 64).Set(f)
	scaled.SetMantExp(scaled, int((n-1)*WordBits))

	v, _ := scaled.Int(nil)
	if scaled.Sign() < 0 && !scaled.IsInt() {
		v.Sub(v, big.NewInt(1))
	}
	modulus := new(big.Int).Lsh(big.NewInt(1), totalBits)
	v.Mod(v, modulus)

	words := make([]uint32, n)
	mask := big.NewInt(wordMask)
	chunk := new(big.Int)
	for i := n - 1; i >= 0; i-- {
		chunk.And(v, mask)
		words[i] = uint32(chunk.Uint64())
		v.Rsh(v, WordBits)
	}
	return words
}

// FloatFromWords decodes the external word encoding into an exact big.Float.
func FloatFromWords(words []uint32) *big.Float {
	if len(words) == 0 {
		return new(big.Float)
	}
	v := new(big.Int)
	for _, w := range words {
		v.Lsh(v, WordBits)
		v.Or(v, big.NewInt(int64(w&wordMask)))
	}
	if words[0]&0x8000 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(len(words)*WordBits)))
	}
	prec := uint(len(words)*WordBits) + 1
	f := new(big.Float).SetPrec(prec).SetInt(v)
	return f.SetMantExp(f, -(len(words)-1)*WordBits)
}

// Float64FromWords is a convenience wrapper returning the nearest float64.
func Float64FromWords(words []uint32) float64 {
	f, _ := FloatFromWords(words).Float64()
	return f
}
