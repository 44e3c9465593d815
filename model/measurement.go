package model

import (
	"fmt"
	"math"

	filter "github.com/milosgajdos/go-tilt"
	"gonum.org/v1/gonum/mat"
)

// Measurement is a linear measurement model with Gaussian measurement noise:
//
//	z[n] = C*x[n] + v[n],  v[n] ~ N(0, R)
//
// The determinant and inverse of R are computed once when the model is created.
type Measurement struct {
	// c is output matrix
	c *mat.Dense
	// r is measurement noise covariance
	r *mat.SymDense
	// rInv is inverse of r
	rInv *mat.SymDense
	// det is determinant of r
	det float64
	// peak is the density at zero innovation: (2*pi)^(-k/2) * |R|^(-1/2)
	peak float64
}

// NewMeasurement creates new measurement model with output matrix C and noise covariance R.
// It returns error wrapping filter.ErrModelConfig if R is singular or not positive definite
// and filter.ErrDimMismatch if the dimensions of C and R do not agree.
func NewMeasurement(C mat.Matrix, R mat.Symmetric) (*Measurement, error) {
	ny, _ := C.Dims()
	if n, _ := R.Dims(); n != ny {
		return nil, fmt.Errorf("%w: output matrix rows %d, covariance dimension %d", filter.ErrDimMismatch, ny, n)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(R); !ok {
		return nil, fmt.Errorf("%w: measurement covariance is not positive definite", filter.ErrModelConfig)
	}

	det := chol.Det()
	if !(det > 0) {
		return nil, fmt.Errorf("%w: measurement covariance determinant %v", filter.ErrModelConfig, det)
	}

	rInv := mat.NewSymDense(ny, nil)
	if err := chol.InverseTo(rInv); err != nil {
		return nil, fmt.Errorf("%w: failed to invert measurement covariance: %v", filter.ErrModelConfig, err)
	}

	r := mat.NewSymDense(ny, nil)
	r.CopySym(R)

	k := float64(ny)

	return &Measurement{
		c:    mat.DenseCopyOf(C),
		r:    r,
		rInv: rInv,
		det:  det,
		peak: math.Pow(2*math.Pi, -k/2) * math.Pow(det, -0.5),
	}, nil
}

// Expected returns measurement expected in state x: C*x.
func (m *Measurement) Expected(x mat.Vector) (mat.Vector, error) {
	ny, nx := m.c.Dims()
	if x.Len() != nx {
		return nil, fmt.Errorf("%w: state length %d, expected %d", filter.ErrDimMismatch, x.Len(), nx)
	}

	out := mat.NewVecDense(ny, nil)
	out.MulVec(m.c, x)

	return out, nil
}

// Likelihood returns multivariate Gaussian density of measurement z given state x.
// Implausible states may underflow to 0 which is a valid likelihood.
func (m *Measurement) Likelihood(z, x mat.Vector) (float64, error) {
	d2, err := m.mahalanobis(z, x)
	if err != nil {
		return 0, err
	}

	return m.peak * math.Exp(-0.5*d2), nil
}

// LogLikelihood returns natural logarithm of Likelihood.
// Unlike Likelihood it does not underflow for implausible states.
func (m *Measurement) LogLikelihood(z, x mat.Vector) (float64, error) {
	d2, err := m.mahalanobis(z, x)
	if err != nil {
		return 0, err
	}

	return math.Log(m.peak) - 0.5*d2, nil
}

// mahalanobis returns squared Mahalanobis distance of z from C*x.
func (m *Measurement) mahalanobis(z, x mat.Vector) (float64, error) {
	ny := m.MeasDim()
	if z.Len() != ny {
		return 0, fmt.Errorf("%w: measurement length %d, expected %d", filter.ErrDimMismatch, z.Len(), ny)
	}

	exp, err := m.Expected(x)
	if err != nil {
		return 0, err
	}

	// innovation
	inn := mat.NewVecDense(ny, nil)
	inn.SubVec(z, exp)

	return mat.Inner(inn, m.rInv, inn), nil
}

// MeasDim returns measurement vector length.
func (m *Measurement) MeasDim() int {
	ny, _ := m.c.Dims()
	return ny
}

// OutputMatrix returns output matrix C.
func (m *Measurement) OutputMatrix() mat.Matrix {
	return mat.DenseCopyOf(m.c)
}

// Cov returns measurement noise covariance R.
func (m *Measurement) Cov() mat.Symmetric {
	r := mat.NewSymDense(m.MeasDim(), nil)
	r.CopySym(m.r)

	return r
}

// Inverse returns inverse of measurement noise covariance.
func (m *Measurement) Inverse() mat.Symmetric {
	r := mat.NewSymDense(m.MeasDim(), nil)
	r.CopySym(m.rInv)

	return r
}

// Det returns determinant of measurement noise covariance.
func (m *Measurement) Det() float64 { return m.det }

// Peak returns the largest possible likelihood value, attained at zero innovation.
func (m *Measurement) Peak() float64 { return m.peak }
