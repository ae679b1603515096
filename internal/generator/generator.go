// Package generator synthesizes scatterplot data hitting an exact target
// Pearson correlation. The one algorithmic trick everything rests on: given
// two unit-variance, in-sample-orthogonal base vectors Xs and Zperp, the mix
//
//	Y = r·Xs + sqrt(1-r²)·Zperp
//
// has sampleCorr(Xs, Y) == r by construction, up to floating point. Affine
// per-axis rescaling into the display box afterwards cannot change r, so box
// fitting is free.
package generator

import (
	"math"

	"github.com/JiarongF/StatsLearning/domain/core"
	"github.com/JiarongF/StatsLearning/domain/stats"
	"github.com/JiarongF/StatsLearning/domain/stimulus"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// padFraction keeps extreme points off the plot border in fixed axis
	// mode.
	padFraction = 0.04

	// sigmaThreshold is how many standard deviations must fit inside the
	// box in sigma axis mode; draws beyond it may land outside.
	sigmaThreshold = 2.5

	// sigmaHeadroom shrinks the sigma-mode scale so the threshold sits
	// slightly inside the border rather than on it.
	sigmaHeadroom = 0.95

	// minAbsR floors |r| in the slope path so the required sd ratio
	// m/|r| stays finite when r is exactly 0. A documented edge case:
	// at r=0 the requested slope is unreachable and the cloud flattens.
	minAbsR = 1e-6
)

// Generator produces correlated datasets, memoizing base vectors through an
// explicit cache.
type Generator struct {
	cache *BaseCache
}

// New creates a Generator. A nil cache disables memoization.
func New(cache *BaseCache) *Generator {
	return &Generator{cache: cache}
}

// Base returns the (cached) base vectors for a sample size and seed.
func (g *Generator) Base(sampleSize int, seed int64) (stimulus.BaseVectors, error) {
	if g.cache != nil {
		return g.cache.GetOrBuild(sampleSize, seed)
	}
	return BuildBase(sampleSize, seed)
}

// Generate builds the base for the request and mixes it to the target
// correlation. Called fresh on every correlation-parameter change; the base
// lookup is the cached half, the mix is the cheap half.
func (g *Generator) Generate(req stimulus.GenerationRequest) (stimulus.GeneratedDataset, error) {
	req = req.Normalize()
	base, err := g.Base(req.SampleSize, req.Seed)
	if err != nil {
		return stimulus.GeneratedDataset{}, err
	}
	return Mix(base, req)
}

// Mix combines prepared base vectors with the request's target correlation
// (and optional target slope) into final points inside the display box. Pure:
// identical inputs yield bit-identical output.
func Mix(base stimulus.BaseVectors, req stimulus.GenerationRequest) (stimulus.GeneratedDataset, error) {
	req = req.Normalize()
	n := base.N()
	if n < 2 || len(base.Zperp) != n {
		return stimulus.GeneratedDataset{}, core.ErrInsufficientSamples
	}
	if !req.XRange.IsValid() || !req.YRange.IsValid() {
		return stimulus.GeneratedDataset{}, core.ErrInvalidRange
	}

	r := stimulus.ClampCorrelation(req.TargetCorrelation)
	mix := math.Sqrt(1 - r*r)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		ys[i] = r*base.Xs[i] + mix*base.Zperp[i]
	}

	var points []stimulus.Point
	switch {
	case req.TargetSlope != nil:
		points = scaleForSlope(base.Xs, ys, r, *req.TargetSlope, req.XRange, req.YRange)
	case req.AxisMode == stimulus.AxisSigma:
		points = scaleBySigma(base.Xs, ys, req.XRange, req.YRange)
	default:
		var err error
		points, err = scaleToFit(base.Xs, ys, req.XRange, req.YRange)
		if err != nil {
			return stimulus.GeneratedDataset{}, err
		}
	}

	dataset := stimulus.GeneratedDataset{Points: points, Request: req}
	if slope, ok := stats.Slope(points); ok {
		dataset.ActualSlope = &slope
	}
	return dataset, nil
}

// scaleToFit maps each axis affinely so the sample extremes land padFraction
// inside the box. Positive affine maps on both axes; r is untouched.
func scaleToFit(xs, ys []float64, xr, yr stimulus.Range) ([]stimulus.Point, error) {
	fitX, err := fitAxis(xs, xr)
	if err != nil {
		return nil, err
	}
	fitY, err := fitAxis(ys, yr)
	if err != nil {
		return nil, err
	}

	points := make([]stimulus.Point, len(xs))
	for i := range xs {
		points[i] = stimulus.Point{X: fitX(xs[i]), Y: fitY(ys[i])}
	}
	return points, nil
}

// fitAxis builds the positive affine map taking [min, max] of the column onto
// the padded range.
func fitAxis(vals []float64, rng stimulus.Range) (func(float64) float64, error) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return nil, core.ErrDegenerateVariance
	}

	pad := padFraction * rng.Width()
	scale := (rng.Width() - 2*pad) / (hi - lo)
	offset := rng.Lo + pad - lo*scale
	return func(v float64) float64 { return v*scale + offset }, nil
}

// scaleBySigma centers the cloud in the box and scales so sigmaThreshold
// standard deviations fit inside each half-extent. Extreme draws may fall
// outside the box; ExpectedCoverage quantifies how often.
func scaleBySigma(xs, ys []float64, xr, yr stimulus.Range) []stimulus.Point {
	sx := sigmaHeadroom * (xr.Width() / 2) / sigmaThreshold
	sy := sigmaHeadroom * (yr.Width() / 2) / sigmaThreshold

	points := make([]stimulus.Point, len(xs))
	for i := range xs {
		points[i] = stimulus.Point{
			X: xr.Mid() + sx*xs[i],
			Y: yr.Mid() + sy*ys[i],
		}
	}
	return points
}

// scaleForSlope chooses axis scales so the OLS slope magnitude of the output
// matches |targetSlope| while both axes still fit the box at sigmaThreshold.
//
// For centered variables, slope = r·sd(Y)/sd(X); both mixed columns are unit
// variance, so the required sd ratio is m/|r| and a single positive factor on
// Y achieves it. Both scale factors stay positive, so sign(slope) == sign(r)
// always; that identity is a mathematical necessity, not a choice.
func scaleForSlope(xs, ys []float64, r, targetSlope float64, xr, yr stimulus.Range) []stimulus.Point {
	absR := math.Abs(r)
	if absR < minAbsR {
		absR = minAbsR
	}
	ratio := math.Abs(targetSlope) / absR

	// Largest x scale keeping both axes inside the box at the sigma
	// threshold, with 95% of the headroom taken as safety margin.
	limitX := (xr.Width() / 2) / sigmaThreshold
	limitY := (yr.Width() / 2) / (sigmaThreshold * ratio)
	a := sigmaHeadroom * math.Min(limitX, limitY)
	b := a * ratio

	points := make([]stimulus.Point, len(xs))
	for i := range xs {
		points[i] = stimulus.Point{
			X: xr.Mid() + a*xs[i],
			Y: yr.Mid() + b*ys[i],
		}
	}
	return points
}

// ExpectedCoverage returns the probability that a standard normal point
// survives the sigma-mode box on both axes, i.e. (2Φ(σ)-1)². Reported next to
// sigma-scaled datasets so renderers know how many points may sit outside.
func ExpectedCoverage(sigma float64) float64 {
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	inAxis := 2*normal.CDF(sigma) - 1
	return inAxis * inAxis
}
