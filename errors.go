package filter

import "errors"

var (
	// ErrModelConfig is returned when model covariances are singular or not positive definite
	ErrModelConfig = errors.New("Invalid model configuration")
	// ErrDegenerate is returned when all particle weights collapse to zero
	ErrDegenerate = errors.New("Degenerate particle weights")
	// ErrDimMismatch is returned when a state or measurement vector has unexpected length
	ErrDimMismatch = errors.New("Dimension mismatch")
)
