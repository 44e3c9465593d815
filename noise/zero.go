package noise

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Zero is zero noise i.e. no noise.
// It is handy for propagating states deterministically.
type Zero struct {
	size int
}

// NewZero creates new zero noise of the given dimension.
// It returns error if size is non-positive.
func NewZero(size int) (*Zero, error) {
	if size <= 0 {
		return nil, fmt.Errorf("Invalid noise dimension: %d", size)
	}

	return &Zero{size: size}, nil
}

// Sample returns a vector with zero values.
func (e *Zero) Sample() mat.Vector {
	return mat.NewVecDense(e.size, nil)
}

// Draw returns a vector with zero values. src is not consumed.
func (e *Zero) Draw(src rand.Source) mat.Vector {
	return mat.NewVecDense(e.size, nil)
}

// Cov returns zero covariance matrix.
func (e *Zero) Cov() mat.Symmetric {
	return mat.NewSymDense(e.size, nil)
}

// Mean returns zero mean.
func (e *Zero) Mean() []float64 {
	return make([]float64, e.size)
}

// String implements the Stringer interface.
func (e *Zero) String() string {
	return fmt.Sprintf("Zero{\nMean=%v\nCov=%v\n}", e.Mean(), mat.Formatted(e.Cov(), mat.Prefix("    "), mat.Squeeze()))
}
