//go:build gmp

// Cross-checks the schoolbook product against GMP. Requires libgmp and
// go test -tags=gmp.

package fixedpoint

import (
	"math/rand"
	"testing"

	"github.com/ncw/gmp"
)

// gmpValue interprets words as a signed integer scaled by 2^(16(len-1)).
func gmpValue(words []uint32) *gmp.Int {
	v := gmp.NewInt(0)
	for _, w := range words {
		v.Lsh(v, 16)
		v.Add(v, gmp.NewInt(int64(w&0xFFFF)))
	}
	if words[0]&0x8000 != 0 {
		mod := gmp.NewInt(1)
		mod.Lsh(mod, uint(16*len(words)))
		v.Sub(v, mod)
	}
	return v
}

func checkAgainstGMP[T Digit[T]](t *testing.T, xw, yw []uint32) {
	t.Helper()
	x, y := FromWords[T](xw), FromWords[T](yw)
	n := len(x)
	out, w1, w2 := make([]T, n), make([]T, n), make([]T, n)
	Multiply(x, y, out, w1, w2)

	got := ToWords(out)
	fracBits := 16 * (len(got) - 1)

	// exact product at the result scale, truncated toward zero
	exact := gmp.NewInt(0).Mul(gmpValue(xw), gmpValue(yw))
	inScale := 16*(len(xw)-1)*2 - fracBits
	if inScale >= 0 {
		exact.Quo(exact, gmp.NewInt(0).Lsh(gmp.NewInt(1), uint(inScale)))
	} else {
		exact.Lsh(exact, uint(-inScale))
	}

	var zero T
	ulpWords := uint(fracBits - int(zero.Bits()/2)*(n-1))
	diff := gmp.NewInt(0).Sub(gmpValue(got), exact)
	diff.Abs(diff)
	bound := gmp.NewInt(int64(2*n + 2))
	bound.Lsh(bound, ulpWords)
	if diff.Cmp(bound) > 0 {
		t.Errorf("width %d: |product error| %s exceeds %s for %04x * %04x", zero.Bits(), diff, bound, xw, yw)
	}
}

func TestMultiplyAgainstGMP(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		xw := make([]uint32, 9)
		yw := make([]uint32, 9)
		// integral parts in [-64, 63] keep every product representable
		xw[0] = uint32(rng.Intn(128)-64) & 0xFFFF
		yw[0] = uint32(rng.Intn(128)-64) & 0xFFFF
		for k := 1; k < 9; k++ {
			xw[k] = uint32(rng.Intn(0x10000))
			yw[k] = uint32(rng.Intn(0x10000))
		}
		checkAgainstGMP[U32](t, xw, yw)
		checkAgainstGMP[U64](t, xw, yw)
		checkAgainstGMP[U128](t, xw, yw)
	}
}
