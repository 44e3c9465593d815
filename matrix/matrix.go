package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RowSums returns a slice containing m row sums.
// It panics if m is nil.
func RowSums(m *mat.Dense) []float64 {
	rows, _ := m.Dims()
	sum := make([]float64, rows)

	for i := 0; i < rows; i++ {
		sum[i] = floats.Sum(m.RawRowView(i))
	}

	return sum
}

// ScaleCols returns a copy of m with column c multiplied by s[c].
// It returns error if len(s) does not match the number of columns of m.
func ScaleCols(m mat.Matrix, s []float64) (*mat.Dense, error) {
	rows, cols := m.Dims()
	if len(s) != cols {
		return nil, fmt.Errorf("Invalid scale count: %d, columns: %d", len(s), cols)
	}

	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(_, c int, v float64) float64 { return v * s[c] }, m)

	return out, nil
}

// Columns gathers the columns of m at idx into a new matrix.
// Column j of the returned matrix is a copy of column idx[j] of m; indices may repeat.
// It returns error if idx is empty or if any index is out of range.
func Columns(m mat.Matrix, idx []int) (*mat.Dense, error) {
	if len(idx) == 0 {
		return nil, fmt.Errorf("Invalid column indices: %v", idx)
	}

	rows, cols := m.Dims()
	out := mat.NewDense(rows, len(idx), nil)

	col := make([]float64, rows)
	for j, c := range idx {
		if c < 0 || c >= cols {
			return nil, fmt.Errorf("Column index out of range: %d", c)
		}
		out.SetCol(j, mat.Col(col, c, m))
	}

	return out, nil
}
