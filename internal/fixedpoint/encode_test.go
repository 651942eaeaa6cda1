package fixedpoint

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestFromWordsWidth32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		words []uint32
		want  []U32
	}{
		{"positive", []uint32{0x0001, 0x8000}, []U32{0x0001, 0x8000}},
		{"negative integer", []uint32{0xFFFF, 0x1234, 0x5678}, []U32{0xFFFF, 0x1234, 0x5678}},
		{"high bits ignored", []uint32{0xABCD0002, 0xFFFF4000}, []U32{0x0002, 0x4000}},
		{"single word", []uint32{0x8000}, []U32{0x8000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, FromWords[U32](tt.words))
		})
	}
}

func TestFromWordsWidth64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		words []uint32
		want  []U64
	}{
		{"even fraction", []uint32{0x0001, 0x8000, 0x4000}, []U64{0x1, 0x80004000}},
		{"padded partial digit", []uint32{0x0001, 0xAAAA, 0xBBBB, 0xCCCC}, []U64{0x1, 0xAAAABBBB, 0xCCCC0000}},
		{"sign extension", []uint32{0x8000, 0x0001}, []U64{0xFFFF8000, 0x00010000}},
		{"minus one", []uint32{0xFFFF}, []U64{0xFFFFFFFF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, FromWords[U64](tt.words))
		})
	}
}

func TestFromWordsWidth128(t *testing.T) {
	t.Parallel()

	got := FromWords[U128]([]uint32{0xFFFF, 0x1234, 0x5678, 0x9ABC, 0xDEF0, 0x1111})
	want := []U128{
		U128(uint128.New(0xFFFFFFFFFFFFFFFF, 0)),
		U128(uint128.New(0x123456789ABCDEF0, 0)),
		U128(uint128.New(0x1111000000000000, 0)),
	}
	require.Equal(t, want, got)

	pos := FromWords[U128]([]uint32{0x0003, 0x8000})
	require.Equal(t, []U128{U128(uint128.From64(3)), U128(uint128.From64(0x8000000000000000))}, pos)
}

func TestDigitsForWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		words          int
		w32, w64, w128 int
	}{
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{2, 2, 2, 2},
		{3, 3, 2, 2},
		{5, 5, 3, 2},
		{6, 6, 4, 3},
		{9, 9, 5, 3},
	}
	for _, tt := range tests {
		require.Equal(t, tt.w32, DigitsForWords[U32](tt.words), "words=%d", tt.words)
		require.Equal(t, tt.w64, DigitsForWords[U64](tt.words), "words=%d", tt.words)
		require.Equal(t, tt.w128, DigitsForWords[U128](tt.words), "words=%d", tt.words)
	}
}

func TestIterationLength(t *testing.T) {
	t.Parallel()

	n, err := IterationLength[U32](6, 2)
	require.NoError(t, err)
	require.Equal(t, 6, n)

	n, err = IterationLength[U32](6, 1)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	n, err = IterationLength[U64](6, 0)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	n, err = IterationLength[U128](6, 1)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = IterationLength[U32](2, 0)
	require.Error(t, err)

	_, err = IterationLength[U32](6, 3)
	require.Error(t, err)
}

func TestWordsFromFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		n     int
		want  []uint32
	}{
		{"1.25", 3, []uint32{0x0001, 0x4000, 0x0000}},
		{"-0.5", 3, []uint32{0xFFFF, 0x8000, 0x0000}},
		{"-1.25", 3, []uint32{0xFFFE, 0xC000, 0x0000}},
		{"0", 2, []uint32{0, 0}},
		{"-2", 1, []uint32{0xFFFE}},
		{"0.1", 2, []uint32{0x0000, 0x1999}},
		{"-0.1", 2, []uint32{0xFFFF, 0xE666}},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			f, ok := new(big.Float).SetPrec(256).SetString(tt.value)
			require.True(t, ok)
			require.Equal(t, tt.want, WordsFromFloat(f, tt.n))
		})
	}
}

func TestFloatFromWords(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1.25, Float64FromWords([]uint32{1, 0x4000, 0}))
	require.Equal(t, -0.5, Float64FromWords([]uint32{0xFFFF, 0x8000}))
	require.Equal(t, -1.25, Float64FromWords([]uint32{0xFFFE, 0xC000, 0}))
	require.Equal(t, 0.0, Float64FromWords(nil))
}
