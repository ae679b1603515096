package generator

import (
	"math"

	"github.com/JiarongF/StatsLearning/domain/core"
	"github.com/JiarongF/StatsLearning/domain/stats"
	"github.com/JiarongF/StatsLearning/domain/stimulus"

	"github.com/JiarongF/StatsLearning/internal/rng"
)

// MixtureOptions configures the cluster-mixture stimulus variant.
type MixtureOptions struct {
	SampleSize int
	Seed       int64
	Clusters   int
	XRange     stimulus.Range
	YRange     stimulus.Range
	// Tolerance is how close the realized correlation must come to the
	// target before the noise search stops.
	Tolerance float64
	// MaxIterations bounds the binary search on the noise amplitude.
	MaxIterations int
}

const (
	defaultClusters          = 4
	defaultMixtureTolerance  = 0.015
	defaultMixtureIterations = 28

	// clusterJitter is the x spread inside a cluster, as a fraction of
	// the gap between neighboring cluster centers.
	clusterJitter = 0.25
)

func (o MixtureOptions) normalized() MixtureOptions {
	if o.SampleSize == 0 {
		o.SampleSize = stimulus.DefaultSampleSize
	}
	if o.Seed == 0 {
		o.Seed = stimulus.DefaultSeed
	}
	if o.Clusters <= 0 {
		o.Clusters = defaultClusters
	}
	if !o.XRange.IsValid() {
		o.XRange = stimulus.DefaultXRange
	}
	if !o.YRange.IsValid() {
		o.YRange = stimulus.DefaultYRange
	}
	if o.Tolerance <= 0 {
		o.Tolerance = defaultMixtureTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMixtureIterations
	}
	return o
}

// GenerateClustered builds a scatter from Gaussian clusters strung along a
// trend line, then tunes a single noise amplitude by binary search until the
// realized Pearson correlation lands within Tolerance of targetR.
//
// The cloud is y = line(x) + amp·noise with the noise vector centered and
// orthogonalized against x, which makes the realized correlation strictly
// monotone in amp: r(amp) = r0/sqrt(1 + amp²·v). Monotonicity is what lets a
// plain bisection converge instead of a heuristic search.
func GenerateClustered(targetR float64, opts MixtureOptions) (stimulus.GeneratedDataset, error) {
	opts = opts.normalized()
	if opts.SampleSize < 2 {
		return stimulus.GeneratedDataset{}, core.ErrInsufficientSamples
	}

	targetR = stimulus.ClampCorrelation(targetR)
	absTarget := math.Abs(targetR)

	xs, line, noise, err := clusterSkeleton(opts)
	if err != nil {
		return stimulus.GeneratedDataset{}, err
	}

	realized := func(amp float64) ([]float64, float64) {
		ys := make([]float64, len(xs))
		for i := range ys {
			ys[i] = line[i] + amp*noise[i]
		}
		r, ok := stats.PearsonXY(xs, ys)
		if !ok {
			r = 0
		}
		return ys, r
	}

	// Bracket: amp=0 is the noise-free cloud (r=1 by construction); grow
	// hi until the realized correlation drops below the target.
	lo, hi := 0.0, 1.0
	_, rHi := realized(hi)
	for rHi > absTarget && hi < 1e6 {
		hi *= 2
		_, rHi = realized(hi)
	}

	amp := hi
	ys, r := realized(amp)
	for iter := 0; iter < opts.MaxIterations; iter++ {
		amp = (lo + hi) / 2
		ys, r = realized(amp)
		if math.Abs(r-absTarget) <= opts.Tolerance {
			break
		}
		if r > absTarget {
			lo = amp
		} else {
			hi = amp
		}
	}

	// Negative targets mirror the cloud vertically, which flips the sign
	// of r exactly.
	if targetR < 0 {
		for i := range ys {
			ys[i] = -ys[i]
		}
	}

	points, err := scaleToFit(xs, ys, opts.XRange, opts.YRange)
	if err != nil {
		return stimulus.GeneratedDataset{}, err
	}

	dataset := stimulus.GeneratedDataset{
		Points: points,
		Request: stimulus.GenerationRequest{
			TargetCorrelation: targetR,
			SampleSize:        opts.SampleSize,
			Seed:              opts.Seed,
			XRange:            opts.XRange,
			YRange:            opts.YRange,
			AxisMode:          stimulus.AxisFixed,
		},
	}
	if slope, ok := stats.Slope(points); ok {
		dataset.ActualSlope = &slope
	}
	return dataset, nil
}

// clusterSkeleton draws the x column (cluster centers plus jitter), the
// noise-free trend line through it, and a noise vector centered and
// projected off x, normalized to the line's variance.
func clusterSkeleton(opts MixtureOptions) (xs, line, noise []float64, err error) {
	n := opts.SampleSize
	src := rng.NewSource(opts.Seed)

	clusters := opts.Clusters
	if clusters > n {
		clusters = n
	}
	gap := 1.0 / float64(clusters)

	xs = make([]float64, n)
	for i := 0; i < n; i++ {
		center := (float64(i%clusters) + 0.5) * gap
		xs[i] = center + clusterJitter*gap*src.Gaussian()
	}

	// Noise-free line: exactly linear in x so the zero-amplitude cloud has
	// correlation 1.
	line = make([]float64, n)
	copy(line, xs)

	noise = make([]float64, n)
	for i := range noise {
		noise[i] = src.Gaussian()
	}
	center(noise)

	xc := make([]float64, n)
	copy(xc, xs)
	center(xc)

	var sxn, sxx float64
	for i := range xc {
		sxn += xc[i] * noise[i]
		sxx += xc[i] * xc[i]
	}
	if sxx == 0 {
		return nil, nil, nil, core.ErrDegenerateVariance
	}
	beta := sxn / sxx
	for i := range noise {
		noise[i] -= beta * xc[i]
	}

	// Scale noise to the line's spread so amp=1 is a meaningful unit.
	var snn, sll float64
	meanLine := 0.0
	for _, v := range line {
		meanLine += v
	}
	meanLine /= float64(n)
	for i := range noise {
		snn += noise[i] * noise[i]
		d := line[i] - meanLine
		sll += d * d
	}
	if snn == 0 {
		return nil, nil, nil, core.ErrDegenerateVariance
	}
	k := math.Sqrt(sll / snn)
	for i := range noise {
		noise[i] *= k
	}

	return xs, line, noise, nil
}
