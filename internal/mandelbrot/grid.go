package mandelbrot

// Grid holds iteration counts indexed by [row][column]. A count of -1 marks
// a point that did not diverge within the iteration budget.
type Grid [][]int32

// Inside is the count recorded for points that never escaped.
const Inside int32 = -1

// GridStats summarises a grid for display.
type GridStats struct {
	Pixels   int     `json:"pixels"`
	Inside   int     `json:"inside"`
	Escaped  int     `json:"escaped"`
	MinCount int32   `json:"minCount"`
	MaxCount int32   `json:"maxCount"`
	Mean     float64 `json:"mean"` // mean count over escaped pixels
}

// Stats walks the grid once and returns its summary.
func (g Grid) Stats() GridStats {
	var s GridStats
	var sum int64
	s.MinCount = -1
	for _, row := range g {
		for _, c := range row {
			s.Pixels++
			if c == Inside {
				s.Inside++
				continue
			}
			s.Escaped++
			sum += int64(c)
			if s.MinCount == -1 || c < s.MinCount {
				s.MinCount = c
			}
			if c > s.MaxCount {
				s.MaxCount = c
			}
		}
	}
	if s.Escaped > 0 {
		s.Mean = float64(sum) / float64(s.Escaped)
	}
	return s
}

// Mismatches counts the pixels whose counts differ between g and other.
// Pixels present in only one grid count as mismatches.
func (g Grid) Mismatches(other Grid) int {
	n := 0
	rows := max(len(g), len(other))
	for i := 0; i < rows; i++ {
		var a, b []int32
		if i < len(g) {
			a = g[i]
		}
		if i < len(other) {
			b = other[i]
		}
		cols := max(len(a), len(b))
		for j := 0; j < cols; j++ {
			if j >= len(a) || j >= len(b) || a[j] != b[j] {
				n++
			}
		}
	}
	return n
}
