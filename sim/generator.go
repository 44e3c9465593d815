package sim

import (
	"fmt"
	"io"
	"math"

	"github.com/milosgajdos/go-tilt/model"
	"github.com/milosgajdos/go-tilt/noise"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// GeneratorConfig configures synthetic tilt measurements
type GeneratorConfig struct {
	// Model provides sampling interval and measurement noise
	Model model.Config
	// Steps is the number of measurements to generate
	Steps int
	// Amplitude is tilt swing amplitude in rad
	Amplitude float64
	// Freq is tilt swing frequency in Hz
	Freq float64
	// Bias is constant gyro bias in rad/s
	Bias float64
	// Src is measurement noise source; if nil a time seeded source is used
	Src rand.Source
}

// Generator generates measurements of a body swinging sinusoidally
// observed by a biased gyro and an accelerometer, both with Gaussian noise.
type Generator struct {
	c     GeneratorConfig
	noise *noise.Gaussian
	step  int
	// true state of the last measurement
	theta, rate float64
}

// NewGenerator creates new measurement generator and returns it.
// It returns error if the step count is negative or if the model configuration is invalid.
func NewGenerator(c GeneratorConfig) (*Generator, error) {
	if c.Steps < 0 {
		return nil, fmt.Errorf("Invalid step count: %d", c.Steps)
	}

	if err := c.Model.Validate(); err != nil {
		return nil, err
	}

	n, err := noise.NewGaussian(make([]float64, model.MeasDim), model.MeasCov(c.Model), c.Src)
	if err != nil {
		return nil, fmt.Errorf("Failed to create measurement noise: %w", err)
	}

	return &Generator{
		c:     c,
		noise: n,
	}, nil
}

// Next returns the next measurement. It returns io.EOF once all steps have been generated.
func (g *Generator) Next() (mat.Vector, error) {
	if g.step >= g.c.Steps {
		return nil, io.EOF
	}

	w := 2 * math.Pi * g.c.Freq
	t := float64(g.step) * g.c.Model.T
	g.theta = g.c.Amplitude * math.Sin(w*t)
	g.rate = g.c.Amplitude * w * math.Cos(w*t)
	g.step++

	z := mat.NewVecDense(model.MeasDim, nil)
	z.SetVec(model.ZTheta, g.theta)
	z.SetVec(model.ZRate, g.rate+g.c.Bias)
	z.AddVec(z, g.noise.Sample())

	return z, nil
}

// Time returns timestamp of the last measurement.
func (g *Generator) Time() float64 {
	return float64(g.step-1) * g.c.Model.T
}

// Truth returns true tilt angle and angular rate of the last measurement.
func (g *Generator) Truth() (theta, rate float64, ok bool) {
	return g.theta, g.rate, true
}
