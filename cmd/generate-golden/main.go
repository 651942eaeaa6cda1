package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
)

// GoldenData represents a single test case in the golden file
type GoldenData struct {
	Value string   `json:"value"`
	Words []uint32 `json:"words"`
}

func main() {
	outputDir := flag.String("out", "internal/fixedpoint/testdata", "Output directory for the golden file")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join(*outputDir, "encoding_golden.json")
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	// Values cover exact dyadic fractions, non-terminating binary fractions,
	// negatives that borrow across every word, and deep-zoom coordinates.
	values := []string{
		"0", "1", "-1", "0.5", "-0.5", "1.5", "-1.75", "0.1", "-0.1",
		"3.14159265358979323846", "-2.5", "0.000030517578125",
		"-0.743643887037158704752191506114774",
		"0.131825904205311970493132056385139",
		"1.0000152587890625", "-1.999999999",
	}
	lengths := []int{2, 3, 5, 8}

	var data []GoldenData

	fmt.Println("Generating golden data...")

	for _, v := range values {
		for _, n := range lengths {
			words, err := encodeRat(v, n)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error encoding %s: %v\n", v, err)
				os.Exit(1)
			}
			data = append(data, GoldenData{Value: v, Words: words})
		}
		fmt.Printf("Generated %s\n", v)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated golden file at %s\n", filename)
}

// encodeRat computes floor(v * 2^(16(n-1))) mod 2^(16n) with exact rational
// arithmetic and splits it into n 16-bit words, most significant first.
// This serves as our "Oracle" using the standard library.
func encodeRat(value string, n int) ([]uint32, error) {
	r, ok := new(big.Rat).SetString(value)
	if !ok {
		return nil, fmt.Errorf("invalid decimal %q", value)
	}
	scale := new(big.Int).Lsh(big.NewInt(1), uint(16*(n-1)))
	r.Mul(r, new(big.Rat).SetInt(scale))

	// big.Int.Div is Euclidean, which floors for a positive divisor.
	v := new(big.Int).Div(r.Num(), r.Denom())
	v.Mod(v, new(big.Int).Lsh(big.NewInt(1), uint(16*n)))

	words := make([]uint32, n)
	for i := n - 1; i >= 0; i-- {
		words[i] = uint32(new(big.Int).And(v, big.NewInt(0xFFFF)).Uint64())
		v.Rsh(v, 16)
	}
	return words, nil
}
