package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestRowSums(t *testing.T) {
	assert := assert.New(t)

	data := []float64{1.2, 3.4, 4.5, 6.7, 8.9, 10.0}
	rowSums := []float64{4.6, 11.2, 18.9}
	delta := 0.001

	m := mat.NewDense(3, 2, data)

	res := RowSums(m)
	assert.InDeltaSlice(rowSums, res, delta)
	// should panic
	assert.Panics(func() { RowSums(nil) })
}

func TestScaleCols(t *testing.T) {
	assert := assert.New(t)

	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})

	out, err := ScaleCols(m, []float64{1, 0.5, 0})
	assert.NoError(err)
	assert.Equal([]float64{1, 1, 0, 4, 2.5, 0}, out.RawMatrix().Data)

	// m is not modified
	assert.Equal([]float64{1, 2, 3, 4, 5, 6}, m.RawMatrix().Data)

	out, err = ScaleCols(m, []float64{1})
	assert.Nil(out)
	assert.Error(err)
}

func TestColumns(t *testing.T) {
	assert := assert.New(t)

	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})

	out, err := Columns(m, []int{2, 0, 2, 2})
	assert.NoError(err)

	r, c := out.Dims()
	assert.Equal(2, r)
	assert.Equal(4, c)
	assert.Equal([]float64{3, 1, 3, 3, 6, 4, 6, 6}, out.RawMatrix().Data)

	for _, idx := range [][]int{nil, {}, {3}, {-1}} {
		out, err := Columns(m, idx)
		assert.Nil(out)
		assert.Error(err)
	}
}
