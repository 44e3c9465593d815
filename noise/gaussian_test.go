package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestNewGaussian(t *testing.T) {
	assert := assert.New(t)

	for _, test := range []struct {
		mean []float64
		cov  *mat.SymDense
		ok   bool
	}{
		{
			mean: []float64{2, 3},
			cov:  mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}),
			ok:   true,
		},
		{
			mean: []float64{2, 3, 4},
			cov:  mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}),
			ok:   false,
		},
		{
			// singular
			mean: []float64{0, 0},
			cov:  mat.NewSymDense(2, []float64{1, 1, 1, 1}),
			ok:   false,
		},
		{
			// negative definite
			mean: []float64{0},
			cov:  mat.NewSymDense(1, []float64{-1}),
			ok:   false,
		},
	} {
		g, err := NewGaussian(test.mean, test.cov, nil)
		if test.ok {
			assert.NotNil(g)
			assert.NoError(err)
			continue
		}
		assert.Nil(g)
		assert.Error(err)
	}
}

func TestGaussianMeanCov(t *testing.T) {
	assert := assert.New(t)

	mean := []float64{2, 3}
	cov := mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1})

	g, err := NewGaussian(mean, cov, rand.NewSource(1))
	assert.NoError(err)

	assert.True(mat.Equal(cov, g.Cov()))
	assert.EqualValues(mean, g.Mean())

	// returned values are copies
	g.Mean()[0] = 100
	assert.EqualValues(mean, g.Mean())
}

func TestGaussianSample(t *testing.T) {
	assert := assert.New(t)

	g, err := NewGaussian([]float64{2, 3}, mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}), rand.NewSource(1))
	assert.NoError(err)

	sample := g.Sample()
	assert.Equal(2, sample.Len())
}

func TestGaussianDraw(t *testing.T) {
	assert := assert.New(t)

	mean := []float64{1, -1}
	cov := mat.NewSymDense(2, []float64{0.5, 0.2, 0.2, 0.3})

	g, err := NewGaussian(mean, cov, nil)
	assert.NoError(err)

	// identical sub-streams yield identical draws
	a := g.Draw(rand.NewSource(42))
	b := g.Draw(rand.NewSource(42))
	assert.True(mat.Equal(a, b))

	// draws follow the configured distribution
	n := 20000
	x := mat.NewDense(n, 2, nil)
	src := rand.NewSource(3)
	for i := 0; i < n; i++ {
		s := g.Draw(src)
		x.Set(i, 0, s.AtVec(0))
		x.Set(i, 1, s.AtVec(1))
	}

	assert.InDelta(mean[0], stat.Mean(mat.Col(nil, 0, x), nil), 0.05)

	sampleCov := mat.NewSymDense(2, nil)
	stat.CovarianceMatrix(sampleCov, x, nil)
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			assert.InDelta(cov.At(r, c), sampleCov.At(r, c), 0.05)
		}
	}
}

func TestGaussianString(t *testing.T) {
	assert := assert.New(t)

	str := `Gaussian{
Mean=[2 3]
Cov=⎡  1  0.1⎤
    ⎣0.1    1⎦
}`
	g, err := NewGaussian([]float64{2, 3}, mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}), nil)
	assert.NoError(err)
	assert.Equal(str, g.String())
}
