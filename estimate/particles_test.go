package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewParticles(t *testing.T) {
	assert := assert.New(t)

	x := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})

	p, err := NewParticles(x, []float64{1, 1, 1})
	assert.NotNil(p)
	assert.NoError(err)

	for _, w := range [][]float64{
		{1, 1},
		{0, 0, 0},
		{1, -1, 1},
	} {
		p, err := NewParticles(x, w)
		assert.Nil(p)
		assert.Error(err)
	}
}

func TestParticlesValCov(t *testing.T) {
	assert := assert.New(t)

	x := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 6, 8,
	})

	// uniform weights: plain sample mean and covariance
	p, err := NewParticles(x, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3})
	assert.NoError(err)

	assert.InDeltaSlice([]float64{2, 6}, mat.Col(nil, 0, p.Val()), 1e-12)

	cov := p.Cov()
	assert.InDelta(1.0, cov.At(0, 0), 1e-12)
	assert.InDelta(2.0, cov.At(0, 1), 1e-12)
	assert.InDelta(4.0, cov.At(1, 1), 1e-12)
	assert.InDeltaSlice([]float64{1, 2}, p.StdDev(), 1e-12)

	// weights shift the mean towards heavier particles
	p, err = NewParticles(x, []float64{0, 1, 3})
	assert.NoError(err)
	assert.InDeltaSlice([]float64{2.75, 7.5}, mat.Col(nil, 0, p.Val()), 1e-12)

	// returned values are copies
	v := p.Val().(*mat.VecDense)
	v.SetVec(0, 100)
	assert.InDelta(2.75, p.Val().AtVec(0), 1e-12)
}

func TestParticlesSingle(t *testing.T) {
	assert := assert.New(t)

	p, err := NewParticles(mat.NewDense(3, 1, []float64{1, 2, 3}), []float64{1})
	assert.NoError(err)
	assert.InDeltaSlice([]float64{1, 2, 3}, mat.Col(nil, 0, p.Val()), 1e-12)
	assert.InDeltaSlice([]float64{0, 0, 0}, p.StdDev(), 1e-12)
}

func TestParticlesString(t *testing.T) {
	assert := assert.New(t)

	p, err := NewParticles(mat.NewDense(1, 2, []float64{1, 3}), []float64{1, 1})
	assert.NoError(err)
	assert.Contains(p.String(), "Val=[2]")
}
