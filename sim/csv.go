package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/milosgajdos/go-tilt/model"
	"gonum.org/v1/gonum/mat"
)

// Validation dataset column names
const (
	ColTime      = "Time (sec)"
	ColAccX      = "AccX (m/s^2)"
	ColAccY      = "AccY (m/s^2)"
	ColGyro      = "Gyro (deg/sec)"
	ColTrueGyro  = "Gyro45(deg/sec)"
	ColTrueTheta = "Theta (deg)"
)

// CSVSource reads tilt measurements from a validation dataset CSV.
// Every row yields one measurement [atan2(-AccY, AccX), Gyro] in rad and rad/s.
// If the dataset contains encoder columns they are available via Truth.
type CSVSource struct {
	r    *csv.Reader
	cols map[string]int
	line int
	// last parsed row values
	time, theta, rate float64
}

// NewCSVSource creates new CSVSource reading from r.
// It returns error if the header can't be read or if any of the measurement columns is missing.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("Failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	for _, name := range []string{ColAccX, ColAccY, ColGyro} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("Missing column: %q", name)
		}
	}

	return &CSVSource{
		r:    cr,
		cols: cols,
		line: 1,
	}, nil
}

// Next returns the next measurement. It returns io.EOF when the dataset is exhausted.
func (s *CSVSource) Next() (mat.Vector, error) {
	rec, err := s.r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("Failed to read line %d: %w", s.line+1, err)
	}
	s.line++

	vals := make(map[string]float64, len(s.cols))
	for name, i := range s.cols {
		if i >= len(rec) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("Line %d: invalid %q value: %w", s.line, name, err)
		}
		vals[name] = v
	}

	s.time = vals[ColTime]
	s.theta = vals[ColTrueTheta] * Deg2Rad
	s.rate = vals[ColTrueGyro] * Deg2Rad

	z := mat.NewVecDense(model.MeasDim, nil)
	z.SetVec(model.ZTheta, TiltFromAccel(vals[ColAccX], vals[ColAccY]))
	z.SetVec(model.ZRate, vals[ColGyro]*Deg2Rad)

	return z, nil
}

// Time returns timestamp of the last measurement.
// It returns 0 if the dataset has no time column.
func (s *CSVSource) Time() float64 {
	return s.time
}

// Truth returns true tilt angle and angular rate of the last measurement in rad and rad/s.
// ok is false if the dataset has no encoder columns.
func (s *CSVSource) Truth() (theta, rate float64, ok bool) {
	_, okTheta := s.cols[ColTrueTheta]
	_, okRate := s.cols[ColTrueGyro]

	return s.theta, s.rate, okTheta && okRate
}
