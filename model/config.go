package model

import (
	"fmt"
	"math"

	filter "github.com/milosgajdos/go-tilt"
)

// Config configures the tilt model.
// All values are fixed for the lifetime of a filter run.
type Config struct {
	// T is sampling interval in seconds
	T float64
	// Qw is angular rate process noise intensity
	Qw float64
	// Qb is gyro bias drift noise intensity
	Qb float64
	// RTheta is accelerometer tilt measurement variance
	RTheta float64
	// RW is gyro rate measurement variance
	RW float64
}

// DefaultConfig returns model configuration tuned for a 100Hz IMU.
func DefaultConfig() Config {
	return Config{
		T:      0.01,
		Qw:     5,
		Qb:     0.01,
		RTheta: 5e-5,
		RW:     1e-6,
	}
}

// Validate checks that all configuration values are finite and positive.
// It returns error wrapping filter.ErrModelConfig otherwise.
func (c Config) Validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"T", c.T},
		{"Qw", c.Qw},
		{"Qb", c.Qb},
		{"RTheta", c.RTheta},
		{"RW", c.RW},
	} {
		if !(v.val > 0) || math.IsInf(v.val, 0) {
			return fmt.Errorf("%w: %s must be positive and finite: %v", filter.ErrModelConfig, v.name, v.val)
		}
	}

	return nil
}
