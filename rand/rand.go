package rand

import (
	"fmt"
	"math"
	"sort"

	filter "github.com/milosgajdos/go-tilt"
	rnd "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// UniformN draws a rows x cols matrix whose elements are independent samples
// from the uniform distribution on the half open interval [a, b).
// Values are drawn column by column so each column consumes a contiguous run of src.
// It fails with error if either dimension is non-positive or if a >= b.
func UniformN(a, b float64, rows, cols int, src rnd.Source) (*mat.Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("Invalid sample dimensions: [%d x %d]", rows, cols)
	}

	if !(a < b) {
		return nil, fmt.Errorf("Invalid sampling interval: [%v, %v)", a, b)
	}

	u := distuv.Uniform{Min: a, Max: b, Src: src}

	samples := mat.NewDense(rows, cols, nil)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			samples.Set(r, c, u.Rand())
		}
	}

	return samples, nil
}

// Seeds draws n seeds from src.
func Seeds(src rnd.Source, n int) []uint64 {
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = src.Uint64()
	}

	return seeds
}

// Streams partitions src into n independent sub-streams.
// Sub-stream i is seeded by the i-th value drawn from src, so the partitioning
// is reproducible whenever src is seeded.
func Streams(src rnd.Source, n int) []rnd.Source {
	streams := make([]rnd.Source, n)
	for i, seed := range Seeds(src, n) {
		streams[i] = rnd.NewSource(seed)
	}

	return streams
}

// RouletteDrawN draws n numbers randomly from a probability mass function (PMF) defined by weights in p.
// RouletteDrawN implements the Roulette Wheel Draw a.k.a. Fitness Proportionate Selection:
// - https://en.wikipedia.org/wiki/Fitness_proportionate_selection
// - http://www.keithschwarz.com/darts-dice-coins/
// Weights in p do not need to be normalized.
// It returns a slice of n indices into p.
// It fails with error if p is empty or if the weights in p sum up to zero.
func RouletteDrawN(p []float64, n int, src rnd.Source) ([]int, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("Invalid probability weights: %v", p)
	}

	// Initialization: create the discrete CDF
	// We know that cdf is sorted in ascending order
	cdf := make([]float64, len(p))
	floats.CumSum(cdf, p)

	total := cdf[len(cdf)-1]
	if total <= 0 {
		return nil, fmt.Errorf("%w: probability weights sum up to %v", filter.ErrDegenerate, total)
	}

	// last is the index of the last non-zero weight
	last := len(p) - 1
	for p[last] <= 0 {
		last--
	}

	u := distuv.Uniform{Min: 0, Max: 1, Src: src}

	// Generation:
	// 1. Generate a uniformly-random value x in the range [0,1)
	// 2. Using a binary search, find the index of the smallest element in cdf larger than x
	var val float64
	indices := make([]int, n)
	for i := range indices {
		// multiply the sample with the largest CDF value; easier than normalizing to [0,1)
		val = u.Rand() * total
		// Search returns the smallest index i such that cdf[i] > val
		idx := sort.Search(len(cdf), func(i int) bool { return cdf[i] > val })
		if idx > last {
			idx = last
		}
		indices[i] = idx
	}

	return indices, nil
}

// ResidualN draws n indices into w using residual resampling.
// Every index i is first allocated floor(n*w[i]/sum(w)) copies; the remaining
// draws are sampled with replacement from the normalized fractional residuals.
// Deterministic copies come first in the returned slice, in ascending index order.
// Weights in w do not need to be normalized but must be finite and non-negative.
// It fails with filter.ErrDegenerate if the weights sum up to zero.
func ResidualN(w []float64, n int, src rnd.Source) ([]int, error) {
	if len(w) == 0 {
		return nil, fmt.Errorf("Invalid weights: %v", w)
	}

	if n <= 0 {
		return nil, fmt.Errorf("Invalid number of draws: %d", n)
	}

	for i, v := range w {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("Invalid weight %d: %v", i, v)
		}
	}

	sum := floats.Sum(w)
	if sum == 0 {
		return nil, fmt.Errorf("%w: weights sum up to zero", filter.ErrDegenerate)
	}
	if math.IsInf(sum, 0) {
		return nil, fmt.Errorf("Weights overflow: %v", sum)
	}

	indices := make([]int, 0, n)
	residuals := make([]float64, len(w))
	for i, v := range w {
		expected := float64(n) * (v / sum)
		copies := math.Floor(expected)
		residuals[i] = expected - copies
		for k := 0; k < int(copies); k++ {
			indices = append(indices, i)
		}
	}

	rem := n - len(indices)
	if rem <= 0 {
		return indices[:n], nil
	}

	// floor rounding can leave draws without any fractional mass left over
	if floats.Sum(residuals) <= 0 {
		residuals = w
	}

	draws, err := RouletteDrawN(residuals, rem, src)
	if err != nil {
		return nil, fmt.Errorf("Failed to draw residual indices: %w", err)
	}

	return append(indices, draws...), nil
}
