package sim

import (
	"io"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/milosgajdos/go-tilt/model"
	"github.com/milosgajdos/go-tilt/particle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

const dataset = `Time (sec),Voltage (V),AccX (m/s^2),AccY (m/s^2),Gyro (deg/sec),Gyro45(deg/sec),Theta (deg)
0.00,5.0,9.81,0.0,0.0,0.0,0.0
0.01,5.0,9.81,-9.81,90.0,45.0,45.0
`

func TestTiltFromAccel(t *testing.T) {
	assert := assert.New(t)

	assert.InDelta(0.0, TiltFromAccel(9.81, 0), 1e-15)
	assert.InDelta(math.Pi/4, TiltFromAccel(9.81, -9.81), 1e-15)
	assert.InDelta(-math.Pi/2, TiltFromAccel(0, 9.81), 1e-15)
	assert.InDelta(180.0, math.Pi*Rad2Deg, 1e-12)
	assert.InDelta(math.Pi, 180*Deg2Rad, 1e-15)
}

func TestCSVSource(t *testing.T) {
	assert := assert.New(t)

	src, err := NewCSVSource(strings.NewReader(dataset))
	require.NoError(t, err)

	z, err := src.Next()
	assert.NoError(err)
	assert.InDeltaSlice([]float64{0, 0}, mat.Col(nil, 0, z), 1e-15)

	z, err = src.Next()
	assert.NoError(err)
	assert.InDelta(math.Pi/4, z.AtVec(model.ZTheta), 1e-12)
	assert.InDelta(math.Pi/2, z.AtVec(model.ZRate), 1e-12)
	assert.InDelta(0.01, src.Time(), 1e-15)

	theta, rate, ok := src.Truth()
	assert.True(ok)
	assert.InDelta(math.Pi/4, theta, 1e-12)
	assert.InDelta(math.Pi/4, rate, 1e-12)

	z, err = src.Next()
	assert.Nil(z)
	assert.Equal(io.EOF, err)
}

func TestCSVSourceErrors(t *testing.T) {
	assert := assert.New(t)

	src, err := NewCSVSource(strings.NewReader(""))
	assert.Nil(src)
	assert.Error(err)

	src, err = NewCSVSource(strings.NewReader("AccX (m/s^2),Gyro (deg/sec)\n1,2\n"))
	assert.Nil(src)
	assert.Error(err)

	src, err = NewCSVSource(strings.NewReader("AccX (m/s^2),AccY (m/s^2),Gyro (deg/sec)\n1,x,2\n"))
	require.NoError(t, err)

	_, _, ok := src.Truth()
	assert.False(ok)

	z, err := src.Next()
	assert.Nil(z)
	assert.Error(err)
	assert.NotEqual(io.EOF, err)
}

func TestGenerator(t *testing.T) {
	assert := assert.New(t)

	c := GeneratorConfig{
		Model:     model.DefaultConfig(),
		Steps:     50,
		Amplitude: 0.5,
		Freq:      1,
		Bias:      0.1,
		Src:       rand.NewSource(1),
	}

	g, err := NewGenerator(c)
	require.NoError(t, err)

	n := 0
	for {
		z, err := g.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		theta, rate, ok := g.Truth()
		assert.True(ok)
		assert.InDelta(float64(n)*0.01, g.Time(), 1e-12)
		// noise std devs are ~0.007 and 0.001
		assert.InDelta(theta, z.AtVec(model.ZTheta), 0.05)
		assert.InDelta(rate+c.Bias, z.AtVec(model.ZRate), 0.01)
		n++
	}
	assert.Equal(c.Steps, n)

	c.Steps = -1
	g, err = NewGenerator(c)
	assert.Nil(g)
	assert.Error(err)

	c.Steps = 1
	c.Model.RW = 0
	g, err = NewGenerator(c)
	assert.Nil(g)
	assert.Error(err)
}

func TestSnapshot(t *testing.T) {
	assert := assert.New(t)

	dir := filepath.Join(t.TempDir(), "particle_dataset")
	w, err := NewSnapshotWriter(dir)
	require.NoError(t, err)

	s, err := particle.NewUniform(20, 3, -1.6, 0.8, rand.NewSource(1))
	require.NoError(t, err)

	assert.NoError(w.Write(7, s))
	assert.Equal(filepath.Join(dir, "particle_set_7"), w.Path(7))

	r, err := ReadSnapshot(w.Path(7))
	assert.NoError(err)
	require.NotNil(t, r)
	assert.Equal(s.Len(), r.Len())
	assert.Equal(s.Dim(), r.Dim())
	assert.True(mat.Equal(s.Particles(), r.Particles()))

	r, err = ReadSnapshot(w.Path(8))
	assert.Nil(r)
	assert.Error(err)
}
