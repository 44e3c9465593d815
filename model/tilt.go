package model

import (
	"fmt"

	filter "github.com/milosgajdos/go-tilt"
	"github.com/milosgajdos/go-tilt/noise"
	"gonum.org/v1/gonum/mat"
)

// Tilt state vector indices.
const (
	// Rate is angular rate in rad/s
	Rate = iota
	// Theta is tilt angle in rad
	Theta
	// Bias is gyro bias correction in rad/s
	Bias
)

// Tilt measurement vector indices.
const (
	// ZTheta is accelerometer derived tilt angle in rad
	ZTheta = iota
	// ZRate is gyro angular rate in rad/s
	ZRate
)

const (
	// StateDim is tilt state vector length
	StateDim = 3
	// MeasDim is tilt measurement vector length
	MeasDim = 2
)

// Tilt is a gyro bias corrected tilt model.
// Its state is [rate, theta, bias] and its measurement is [z_theta, z_rate]:
//
//	rate[n+1]  = rate[n] + w_rate
//	theta[n+1] = theta[n] + T*rate[n] + w_theta
//	bias[n+1]  = bias[n] + w_bias
//	z_theta    = theta + v_theta
//	z_rate     = rate + bias + v_rate
//
// Tilt is immutable and safe for concurrent use.
type Tilt struct {
	*Motion
	*Measurement
	// cfg is model configuration
	cfg Config
}

// New creates new tilt model from configuration c and returns it.
// It returns error wrapping filter.ErrModelConfig if c is invalid or if any of
// the noise covariances derived from c is not positive definite.
func New(c Config) (*Tilt, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	Q := ProcessCov(c)
	q, err := noise.NewGaussian(make([]float64, StateDim), Q, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: process noise: %v", filter.ErrModelConfig, err)
	}

	motion, err := NewMotion(StateMatrix(c), q)
	if err != nil {
		return nil, err
	}

	meas, err := NewMeasurement(OutputMatrix(), MeasCov(c))
	if err != nil {
		return nil, err
	}

	return &Tilt{
		Motion:      motion,
		Measurement: meas,
		cfg:         c,
	}, nil
}

// Config returns model configuration.
func (t *Tilt) Config() Config {
	return t.cfg
}

// StateMatrix returns state transition matrix A for sampling interval c.T
func StateMatrix(c Config) *mat.Dense {
	return mat.NewDense(StateDim, StateDim, []float64{
		1, 0, 0,
		c.T, 1, 0,
		0, 0, 1,
	})
}

// OutputMatrix returns measurement matrix C
func OutputMatrix() *mat.Dense {
	return mat.NewDense(MeasDim, StateDim, []float64{
		0, 1, 0,
		1, 0, 1,
	})
}

// ProcessCov returns process noise covariance Q
func ProcessCov(c Config) *mat.SymDense {
	T := c.T
	q01 := T * T * c.Qw / 2

	return mat.NewSymDense(StateDim, []float64{
		T * c.Qw, q01, 0,
		q01, T * T * T * c.Qw / 3, 0,
		0, 0, T * c.Qb,
	})
}

// MeasCov returns measurement noise covariance R
func MeasCov(c Config) *mat.SymDense {
	return mat.NewSymDense(MeasDim, []float64{
		c.RTheta, 0,
		0, c.RW,
	})
}
