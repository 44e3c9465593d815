package sir

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	filter "github.com/milosgajdos/go-tilt"
	"github.com/milosgajdos/go-tilt/matrix"
	"github.com/milosgajdos/go-tilt/particle"
	"github.com/milosgajdos/go-tilt/rand"
	rnd "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Config is SIR filter configuration
type Config struct {
	// Propagator propagates particles to the next step
	Propagator filter.Propagator
	// Likelihood weighs propagated particles against measurements
	Likelihood filter.Likelihood
	// Workers is the number of goroutines propagating particles.
	// If non-positive, runtime.GOMAXPROCS(0) goroutines are used.
	Workers int
	// Src is the master random source; if nil a time seeded source is used.
	Src rnd.Source
}

// Filter is a Sequential Importance Resampling (SIR) particle filter
// which resamples particles in every step using residual resampling.
// For more information about SIR filters see:
// https://en.wikipedia.org/wiki/Particle_filter#Sequential_importance_resampling_(SIR)
//
// Every Step partitions the master random source into one sub-stream per particle,
// plus one for resampling, so results do not depend on the number of workers.
// Filter is not safe for concurrent use.
type Filter struct {
	// prop propagates particles
	prop filter.Propagator
	// lik scores propagated particles
	lik filter.Likelihood
	// workers is the number of propagation goroutines
	workers int
	// src is master random source
	src rnd.Source
}

// New creates new SIR filter with config c and returns it.
// It returns error if either the propagator or the likelihood are missing.
func New(c *Config) (*Filter, error) {
	if c.Propagator == nil {
		return nil, fmt.Errorf("Missing particle propagator")
	}

	if c.Likelihood == nil {
		return nil, fmt.Errorf("Missing measurement likelihood")
	}

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	src := c.Src
	if src == nil {
		src = rnd.NewSource(uint64(time.Now().UnixNano()))
	}

	return &Filter{
		prop:    c.Propagator,
		lik:     c.Likelihood,
		workers: workers,
		src:     src,
	}, nil
}

// Step runs one filter cycle: it propagates every particle in s, weighs it
// by the likelihood of measurement z and resamples the weighted particles.
// It returns a new particle set of the same size as s with equal particle weights.
// Particles are weighted by the likelihood of z alone; the weights of s are ignored.
// Step fails with filter.ErrDimMismatch if either s or z have unexpected dimensions
// and with filter.ErrDegenerate if every particle likelihood is zero, including
// likelihoods which underflow to zero.
func (f *Filter) Step(s *particle.Set, z mat.Vector) (*particle.Set, error) {
	if s == nil {
		return nil, fmt.Errorf("Invalid particle set: %v", s)
	}

	if nx := f.prop.StateDim(); s.Dim() != nx {
		return nil, fmt.Errorf("%w: particle dimension %d, state dimension %d", filter.ErrDimMismatch, s.Dim(), nx)
	}

	if ny := f.lik.MeasDim(); z.Len() != ny {
		return nil, fmt.Errorf("%w: measurement length %d, expected %d", filter.ErrDimMismatch, z.Len(), ny)
	}

	n := s.Len()
	streams := rand.Streams(f.src, n)
	resampleSrc := rnd.NewSource(f.src.Uint64())

	pred := mat.NewDense(s.Dim(), n, nil)
	w := make([]float64, n)
	if err := f.predict(s, z, streams, pred, w); err != nil {
		return nil, err
	}

	indices, err := rand.ResidualN(w, n, resampleSrc)
	if err != nil {
		return nil, fmt.Errorf("Failed to resample particles: %w", err)
	}

	x, err := matrix.Columns(pred, indices)
	if err != nil {
		return nil, fmt.Errorf("Failed to select particles: %w", err)
	}

	return particle.NewSet(x, nil)
}

// predict propagates particles of s into columns of pred and stores
// the likelihood of measurement z for every propagated particle in w.
// Particle i draws its noise from streams[i].
func (f *Filter) predict(s *particle.Set, z mat.Vector, streams []rnd.Source, pred *mat.Dense, w []float64) error {
	x := s.Particles()
	n := len(w)

	workers := min(f.workers, n)
	chunk := (n + workers - 1) / workers
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for k := 0; k < workers; k++ {
		lo, hi := k*chunk, min((k+1)*chunk, n)
		if lo >= hi {
			break
		}

		wg.Add(1)
		go func(k, lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				xi := mat.NewVecDense(s.Dim(), mat.Col(nil, i, x))
				xNext, err := f.prop.Propagate(xi, streams[i])
				if err != nil {
					errs[k] = fmt.Errorf("Particle %d propagation failed: %w", i, err)
					return
				}

				l, err := f.lik.Likelihood(z, xNext)
				if err != nil {
					errs[k] = fmt.Errorf("Particle %d weighting failed: %w", i, err)
					return
				}

				// columns are disjoint across goroutines
				pred.SetCol(i, mat.Col(nil, 0, xNext))
				w[i] = l
			}
		}(k, lo, hi)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
