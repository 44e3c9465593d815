package sim

import "math"

const (
	// Deg2Rad converts degrees to radians
	Deg2Rad = math.Pi / 180
	// Rad2Deg converts radians to degrees
	Rad2Deg = 180 / math.Pi
)

// TiltFromAccel returns tilt angle in radians measured by an accelerometer
// whose x axis points along the body and y axis across it.
func TiltFromAccel(ax, ay float64) float64 {
	return math.Atan2(-ay, ax)
}
