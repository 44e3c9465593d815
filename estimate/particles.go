package estimate

import (
	"fmt"
	"math"

	"github.com/milosgajdos/go-tilt/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Particles is an estimate summarizing a weighted particle set
// by its weighted mean and covariance.
type Particles struct {
	// val is weighted particle mean
	val *mat.VecDense
	// cov is weighted particle covariance
	cov *mat.SymDense
}

// NewParticles computes estimate of particles stored in columns of x with weights w.
// Weights do not need to be normalized. Covariance of a single particle is zero.
// It returns error if the number of weights does not match the number of particles
// or if the weights are negative or sum up to zero.
func NewParticles(x mat.Matrix, w []float64) (*Particles, error) {
	rows, cols := x.Dims()
	if len(w) != cols {
		return nil, fmt.Errorf("Invalid weight count: %d, particles: %d", len(w), cols)
	}

	sum := floats.Sum(w)
	if !(sum > 0) || math.IsInf(sum, 0) || floats.Min(w) < 0 {
		return nil, fmt.Errorf("Invalid particle weights: %v", w)
	}

	// frequency weights summing up to the number of particles
	fw := make([]float64, cols)
	floats.ScaleTo(fw, float64(cols)/sum, w)

	xw, err := matrix.ScaleCols(x, fw)
	if err != nil {
		return nil, err
	}

	mean := matrix.RowSums(xw)
	floats.Scale(1/float64(cols), mean)

	cov := mat.NewSymDense(rows, nil)
	if cols > 1 {
		stat.CovarianceMatrix(cov, x.T(), fw)
	}

	return &Particles{
		val: mat.NewVecDense(rows, mean),
		cov: cov,
	}, nil
}

// Val returns estimated value
func (p *Particles) Val() mat.Vector {
	v := &mat.VecDense{}
	v.CloneFromVec(p.val)

	return v
}

// Cov returns covariance estimate
func (p *Particles) Cov() mat.Symmetric {
	cov := mat.NewSymDense(p.val.Len(), nil)
	cov.CopySym(p.cov)

	return cov
}

// StdDev returns standard deviation of each state element
func (p *Particles) StdDev() []float64 {
	std := make([]float64, p.val.Len())
	for i := range std {
		std[i] = math.Sqrt(p.cov.At(i, i))
	}

	return std
}

// String implements the Stringer interface.
func (p *Particles) String() string {
	return fmt.Sprintf("Particles{\nVal=%v\nStdDev=%v\n}", mat.Col(nil, 0, p.val), p.StdDev())
}
