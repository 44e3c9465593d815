package particle

import (
	"fmt"

	filter "github.com/milosgajdos/go-tilt"
	"github.com/milosgajdos/go-tilt/estimate"
	"github.com/milosgajdos/go-tilt/rand"
	rnd "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Filter is a particle filter which turns a particle set and a measurement
// into the particle set of the next time step
type Filter interface {
	// Step runs one filter cycle
	Step(*Set, mat.Vector) (*Set, error)
}

// Sink consumes the particle set produced in every filter cycle
type Sink interface {
	// Write writes particle set s produced in time step step
	Write(step int, s *Set) error
}

// Set is a set of weighted particles of the same dimension.
// Set is immutable: filters produce new sets rather than modifying existing ones.
type Set struct {
	// x stores particles as column vectors
	x *mat.Dense
	// w stores particle weights
	w []float64
}

// NewSet creates new particle set from particles stored in columns of x with weights w.
// If w is nil all particles are given equal weight 1/N.
// It returns error if x has no particles or if the number of weights does not match the number of particles.
func NewSet(x mat.Matrix, w []float64) (*Set, error) {
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("Invalid particle dimensions: [%d x %d]", rows, cols)
	}

	if w == nil {
		w = uniform(cols)
	}

	if len(w) != cols {
		return nil, fmt.Errorf("%w: %d weights for %d particles", filter.ErrDimMismatch, len(w), cols)
	}

	for i := range w {
		if w[i] < 0 {
			return nil, fmt.Errorf("Invalid weight %d: %v", i, w[i])
		}
	}

	weights := make([]float64, cols)
	copy(weights, w)

	return &Set{
		x: mat.DenseCopyOf(x),
		w: weights,
	}, nil
}

// NewUniform creates new set of n particles of dimension d with equal weights.
// Every particle element is drawn independently from the uniform distribution on [a, b) using src.
// It returns error if n or d are non-positive or if a >= b.
func NewUniform(n, d int, a, b float64, src rnd.Source) (*Set, error) {
	if n <= 0 {
		return nil, fmt.Errorf("Invalid particle count: %d", n)
	}

	x, err := rand.UniformN(a, b, d, n, src)
	if err != nil {
		return nil, fmt.Errorf("Failed to generate particles: %w", err)
	}

	return &Set{
		x: x,
		w: uniform(n),
	}, nil
}

// Len returns the number of particles in the set.
func (s *Set) Len() int {
	return len(s.w)
}

// Dim returns particle dimension.
func (s *Set) Dim() int {
	r, _ := s.x.Dims()
	return r
}

// Particle returns a copy of the i-th particle state.
// It panics if i is out of range.
func (s *Set) Particle(i int) mat.Vector {
	return mat.NewVecDense(s.Dim(), mat.Col(nil, i, s.x))
}

// Particles returns a copy of particles stored as matrix columns.
func (s *Set) Particles() mat.Matrix {
	return mat.DenseCopyOf(s.x)
}

// Weights returns a copy of particle weights.
func (s *Set) Weights() []float64 {
	w := make([]float64, len(s.w))
	copy(w, s.w)

	return w
}

// Estimate returns weighted mean and covariance of the particles.
func (s *Set) Estimate() (filter.Estimate, error) {
	est, err := estimate.NewParticles(s.x, s.w)
	if err != nil {
		return nil, err
	}

	return est, nil
}

// uniform returns n equal weights summing up to 1.
func uniform(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}

	return w
}
