package stats

import (
	"math"

	"github.com/JiarongF/StatsLearning/domain/stimulus"
)

// Pearson calculates the sample Pearson correlation coefficient for a point
// sequence. ok is false when the correlation is undefined: fewer than two
// points, or zero variance on either axis. Callers must treat ok=false as
// "no correlation available", never as r=0.
func Pearson(points []stimulus.Point) (r float64, ok bool) {
	if len(points) < 2 {
		return 0, false
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return PearsonXY(xs, ys)
}

// PearsonXY calculates the sample Pearson correlation of two equal-length
// columns. Same sentinel convention as Pearson.
func PearsonXY(xs, ys []float64) (r float64, ok bool) {
	n := len(xs)
	if n < 2 || len(ys) != n {
		return 0, false
	}

	meanX := mean(xs)
	meanY := mean(ys)

	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}

	den := math.Sqrt(sxx) * math.Sqrt(syy)
	if den == 0 {
		return 0, false
	}

	r = sxy / den
	if r == 0 {
		// Normalize negative zero before it reaches display formatting.
		return 0, true
	}
	return r, true
}

// Slope calculates the ordinary least squares slope of y on x. ok is false
// when the slope is undefined (fewer than two points or zero x variance).
func Slope(points []stimulus.Point) (slope float64, ok bool) {
	n := len(points)
	if n < 2 {
		return 0, false
	}

	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxy, sxx float64
	for _, p := range points {
		dx := p.X - meanX
		sxy += dx * (p.Y - meanY)
		sxx += dx * dx
	}

	if sxx == 0 {
		return 0, false
	}
	slope = sxy / sxx
	if slope == 0 {
		return 0, true
	}
	return slope, true
}

// DisplayR formats r at the study's 2-decimal display precision, normalizing
// negative zero so participants never see "-0.00".
func DisplayR(r float64) float64 {
	rounded := math.Round(r*100) / 100
	if rounded == 0 {
		return 0
	}
	return rounded
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
