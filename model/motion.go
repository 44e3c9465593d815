package model

import (
	"fmt"

	filter "github.com/milosgajdos/go-tilt"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Motion is a linear motion model with additive process noise:
//
//	x[n+1] = A*x[n] + w[n]
type Motion struct {
	// a is state transition matrix
	a *mat.Dense
	// q is process noise
	q filter.Noise
}

// NewMotion creates new motion model with state transition matrix A and process noise q.
// It returns error if A is not square or if the noise dimension does not match A.
func NewMotion(A mat.Matrix, q filter.Noise) (*Motion, error) {
	r, c := A.Dims()
	if r != c {
		return nil, fmt.Errorf("%w: state matrix must be square: [%d x %d]", filter.ErrDimMismatch, r, c)
	}

	if n := len(q.Mean()); n != r {
		return nil, fmt.Errorf("%w: process noise dimension %d, state dimension %d", filter.ErrDimMismatch, n, r)
	}

	return &Motion{
		a: mat.DenseCopyOf(A),
		q: q,
	}, nil
}

// Propagate returns the next state of x with process noise drawn from src.
// x is left unmodified.
func (m *Motion) Propagate(x mat.Vector, src rand.Source) (mat.Vector, error) {
	nx := m.StateDim()
	if x.Len() != nx {
		return nil, fmt.Errorf("%w: state length %d, expected %d", filter.ErrDimMismatch, x.Len(), nx)
	}

	out := mat.NewVecDense(nx, nil)
	out.MulVec(m.a, x)
	out.AddVec(out, m.q.Draw(src))

	return out, nil
}

// StateDim returns state vector length.
func (m *Motion) StateDim() int {
	r, _ := m.a.Dims()
	return r
}

// StateMatrix returns state transition matrix.
func (m *Motion) StateMatrix() mat.Matrix {
	return mat.DenseCopyOf(m.a)
}

// Noise returns process noise.
func (m *Motion) Noise() filter.Noise {
	return m.q
}
