package noise

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Gaussian is gaussian noise
type Gaussian struct {
	// dist is a multivariate normal distribution used by Sample
	dist *distmv.Normal
	// mean is Gaussian mean
	mean []float64
	// cov is Gaussian covariance
	cov *mat.SymDense
	// chol is Cholesky factorization of cov
	chol mat.Cholesky
}

// NewGaussian creates new Gaussian noise with given mean and covariance.
// Sample draws from src; if src is nil a time seeded source is used.
// It returns error if the dimensions of mean and cov differ or if cov is not positive definite.
func NewGaussian(mean []float64, cov mat.Symmetric, src rand.Source) (*Gaussian, error) {
	size, _ := cov.Dims()
	if size == 0 || len(mean) != size {
		return nil, fmt.Errorf("Invalid noise dimensions: mean %d, cov %d", len(mean), size)
	}

	g := &Gaussian{}
	if ok := g.chol.Factorize(cov); !ok {
		return nil, fmt.Errorf("Noise covariance is not positive definite")
	}

	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}

	m := make([]float64, size)
	copy(m, mean)

	dist, ok := distmv.NewNormal(m, cov, src)
	if !ok {
		return nil, fmt.Errorf("Failed to create gaussian distribution")
	}

	c := mat.NewSymDense(size, nil)
	c.CopySym(cov)

	g.dist = dist
	g.mean = m
	g.cov = c

	return g, nil
}

// Sample generates a sample from Gaussian noise and returns it.
func (g *Gaussian) Sample() mat.Vector {
	r := g.dist.Rand(nil)
	return mat.NewVecDense(len(r), r)
}

// Draw generates a sample from Gaussian noise using random numbers from src.
// Two sources seeded identically produce identical samples.
func (g *Gaussian) Draw(src rand.Source) mat.Vector {
	r := distmv.NormalRand(nil, g.mean, &g.chol, src)
	return mat.NewVecDense(len(r), r)
}

// Cov returns covariance matrix of Gaussian noise.
func (g *Gaussian) Cov() mat.Symmetric {
	cov := mat.NewSymDense(len(g.mean), nil)
	cov.CopySym(g.cov)

	return cov
}

// Mean returns Gaussian mean.
func (g *Gaussian) Mean() []float64 {
	mean := make([]float64, len(g.mean))
	copy(mean, g.mean)

	return mean
}

// String implements the Stringer interface.
func (g *Gaussian) String() string {
	return fmt.Sprintf("Gaussian{\nMean=%v\nCov=%v\n}", g.mean, mat.Formatted(g.cov, mat.Prefix("    "), mat.Squeeze()))
}
