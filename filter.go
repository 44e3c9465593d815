package filter

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Propagator propagates a particle state to the next step
type Propagator interface {
	// Propagate returns the next state of x. Any noise is drawn from src.
	Propagate(x mat.Vector, src rand.Source) (mat.Vector, error)
	// StateDim returns the length of the state vector
	StateDim() int
}

// Likelihood scores a measurement against a hypothesized state
type Likelihood interface {
	// Likelihood returns probability density of measurement z given state x
	Likelihood(z, x mat.Vector) (float64, error)
	// MeasDim returns the length of the measurement vector
	MeasDim() int
}

// Noise is dynamical system noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Draw returns a sample of the noise drawn from src
	Draw(src rand.Source) mat.Vector
}

// Estimate is a summary of the filter belief
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
}

// Source supplies measurements, one per time step.
// Next returns io.EOF once the measurements are exhausted.
type Source interface {
	Next() (mat.Vector, error)
}
