package generator

import (
	"math"

	"github.com/JiarongF/StatsLearning/domain/core"
	"github.com/JiarongF/StatsLearning/domain/stimulus"
	"github.com/JiarongF/StatsLearning/internal/rng"
)

// BuildBase derives the orthogonal base vectors for a (sampleSize, seed)
// pair. The computation is pure: the same inputs always produce the same
// vectors, which is what makes slider animation a smooth deformation of one
// fixed cloud instead of a fresh random draw per tick.
//
// Steps: draw sampleSize Gaussian pairs, standardize the first coordinates to
// zero mean and unit sample variance, then project the second coordinates off
// the first (least-squares) and standardize the residual. The projection is
// what makes the mixing step exact rather than approximate.
func BuildBase(sampleSize int, seed int64) (stimulus.BaseVectors, error) {
	if sampleSize < 2 {
		return stimulus.BaseVectors{}, core.ErrInsufficientSamples
	}

	src := rng.NewSource(seed)
	x0 := make([]float64, sampleSize)
	z0 := make([]float64, sampleSize)
	for i := 0; i < sampleSize; i++ {
		x0[i], z0[i] = src.GaussianPair()
	}

	xs, err := standardize(x0)
	if err != nil {
		return stimulus.BaseVectors{}, err
	}

	center(z0)

	// beta = Σ(xs·z0) / Σ(xs²); subtracting beta·xs removes whatever
	// incidental correlation the draw produced.
	var sxz, sxx float64
	for i := range xs {
		sxz += xs[i] * z0[i]
		sxx += xs[i] * xs[i]
	}
	beta := sxz / sxx
	for i := range z0 {
		z0[i] -= beta * xs[i]
	}

	zperp, err := standardize(z0)
	if err != nil {
		return stimulus.BaseVectors{}, err
	}

	return stimulus.BaseVectors{Xs: xs, Zperp: zperp, Seed: seed}, nil
}

// standardize returns a zero-mean, unit-sample-variance copy of xs using the
// n-1 variance convention. Zero variance is reported, never divided by.
func standardize(xs []float64) ([]float64, error) {
	n := len(xs)
	if n < 2 {
		return nil, core.ErrInsufficientSamples
	}

	m := 0.0
	for _, x := range xs {
		m += x
	}
	m /= float64(n)

	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(n-1))
	if sd == 0 {
		return nil, core.ErrDegenerateVariance
	}

	out := make([]float64, n)
	for i, x := range xs {
		out[i] = (x - m) / sd
	}
	return out, nil
}

// center subtracts the mean in place.
func center(xs []float64) {
	m := 0.0
	for _, x := range xs {
		m += x
	}
	m /= float64(len(xs))
	for i := range xs {
		xs[i] -= m
	}
}
