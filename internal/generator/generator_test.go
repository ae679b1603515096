package generator

import (
	"math"
	"testing"

	"github.com/JiarongF/StatsLearning/domain/core"
	"github.com/JiarongF/StatsLearning/domain/stats"
	"github.com/JiarongF/StatsLearning/domain/stimulus"
)

var testSeeds = []int64{1, 7, 42, 1234, 99999}

var testCorrelations = []float64{-0.9, -0.5, -0.1, 0, 0.1, 0.5, 0.9}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	cache, err := NewBaseCache(0)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	return New(cache)
}

func TestGenerate_ExactCorrelation(t *testing.T) {
	gen := newTestGenerator(t)

	for _, seed := range testSeeds {
		for _, target := range testCorrelations {
			dataset, err := gen.Generate(stimulus.GenerationRequest{
				TargetCorrelation: target,
				SampleSize:        100,
				Seed:              seed,
			})
			if err != nil {
				t.Fatalf("Generate(r=%v, seed=%d) failed: %v", target, seed, err)
			}

			r, ok := stats.Pearson(dataset.Points)
			if !ok {
				t.Fatalf("Generated dataset has undefined correlation (r=%v, seed=%d)", target, seed)
			}
			if math.Abs(r-target) > 1e-6 {
				t.Errorf("Pearson of output = %v, want %v (seed=%d)", r, target, seed)
			}
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	gen := newTestGenerator(t)
	req := stimulus.GenerationRequest{TargetCorrelation: 0.6, SampleSize: 50, Seed: 314}

	first, err := gen.Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := gen.Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// A fresh generator with a cold cache must agree bit for bit too.
	third, err := newTestGenerator(t).Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i := range first.Points {
		if first.Points[i] != second.Points[i] {
			t.Fatalf("Repeat call diverged at point %d: %v vs %v", i, first.Points[i], second.Points[i])
		}
		if first.Points[i] != third.Points[i] {
			t.Fatalf("Cold-cache call diverged at point %d: %v vs %v", i, first.Points[i], third.Points[i])
		}
	}
}

func TestBuildBase_Orthogonality(t *testing.T) {
	for _, seed := range testSeeds {
		for _, n := range []int{30, 100, 250} {
			base, err := BuildBase(n, seed)
			if err != nil {
				t.Fatalf("BuildBase(%d, %d) failed: %v", n, seed, err)
			}

			r, ok := stats.PearsonXY(base.Xs, base.Zperp)
			if !ok {
				t.Fatalf("Base correlation undefined (n=%d, seed=%d)", n, seed)
			}
			if math.Abs(r) > 1e-9 {
				t.Errorf("Base vectors not orthogonal: |r| = %v (n=%d, seed=%d)", math.Abs(r), n, seed)
			}
		}
	}
}

func TestBuildBase_UnitVariance(t *testing.T) {
	base, err := BuildBase(100, 42)
	if err != nil {
		t.Fatalf("BuildBase failed: %v", err)
	}

	for name, vec := range map[string][]float64{"Xs": base.Xs, "Zperp": base.Zperp} {
		var sum, sumSq float64
		for _, v := range vec {
			sum += v
		}
		mean := sum / float64(len(vec))
		for _, v := range vec {
			d := v - mean
			sumSq += d * d
		}
		variance := sumSq / float64(len(vec)-1)

		if math.Abs(mean) > 1e-12 {
			t.Errorf("%s mean = %v, want 0", name, mean)
		}
		if math.Abs(variance-1) > 1e-12 {
			t.Errorf("%s sample variance = %v, want 1", name, variance)
		}
	}
}

func TestGenerate_AffineInvariance(t *testing.T) {
	gen := newTestGenerator(t)
	dataset, err := gen.Generate(stimulus.GenerationRequest{
		TargetCorrelation: 0.7, SampleSize: 60, Seed: 42,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	before, _ := stats.Pearson(dataset.Points)

	rescaled := make([]stimulus.Point, len(dataset.Points))
	for i, p := range dataset.Points {
		rescaled[i] = stimulus.Point{X: 3.5*p.X + 12, Y: 0.25*p.Y - 7}
	}
	after, ok := stats.Pearson(rescaled)
	if !ok {
		t.Fatal("Rescaled correlation undefined")
	}

	if math.Abs(before-after) > 1e-12 {
		t.Errorf("Positive affine rescale changed r: %v -> %v", before, after)
	}
}

func TestGenerate_SlopeSignMatchesCorrelation(t *testing.T) {
	gen := newTestGenerator(t)
	slopes := []float64{0.1, 0.5, 2.0}
	correlations := []float64{-0.9, -0.5, -0.01, 0.01, 0.5, 0.9}

	for _, target := range correlations {
		for _, m := range slopes {
			slope := m
			dataset, err := gen.Generate(stimulus.GenerationRequest{
				TargetCorrelation: target,
				SampleSize:        100,
				Seed:              42,
				TargetSlope:       &slope,
			})
			if err != nil {
				t.Fatalf("Generate(r=%v, m=%v) failed: %v", target, m, err)
			}
			if dataset.ActualSlope == nil {
				t.Fatalf("Expected actual slope (r=%v, m=%v)", target, m)
			}

			got := *dataset.ActualSlope
			if target > 0 && got <= 0 || target < 0 && got >= 0 {
				t.Errorf("sign(actualSlope)=%v disagrees with sign(r)=%v (m=%v)",
					math.Signbit(got), math.Signbit(target), m)
			}
		}
	}
}

func TestGenerate_SlopeMagnitude(t *testing.T) {
	gen := newTestGenerator(t)
	slope := 0.75
	dataset, err := gen.Generate(stimulus.GenerationRequest{
		TargetCorrelation: 0.6,
		SampleSize:        100,
		Seed:              7,
		TargetSlope:       &slope,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if dataset.ActualSlope == nil {
		t.Fatal("Expected actual slope")
	}

	if math.Abs(math.Abs(*dataset.ActualSlope)-slope) > 1e-6 {
		t.Errorf("Actual slope magnitude %v, want %v", math.Abs(*dataset.ActualSlope), slope)
	}

	// Correlation is untouched by the slope path.
	r, _ := stats.Pearson(dataset.Points)
	if math.Abs(r-0.6) > 1e-6 {
		t.Errorf("Slope path disturbed correlation: %v", r)
	}
}

func TestGenerate_TinySampleSizesRefused(t *testing.T) {
	gen := newTestGenerator(t)

	for _, n := range []int{-1, 0, 1} {
		_, err := gen.Generate(stimulus.GenerationRequest{
			TargetCorrelation: 0.5,
			SampleSize:        n,
			Seed:              42,
		})
		if err == nil {
			t.Errorf("Expected error for sampleSize=%d", n)
		}
		if !core.IsGenerationError(err) {
			t.Errorf("Expected a generation error for sampleSize=%d, got %v", n, err)
		}
	}
}

func TestGenerate_FixedModeContainment(t *testing.T) {
	gen := newTestGenerator(t)
	xr := stimulus.Range{Lo: 0, Hi: 10}
	yr := stimulus.Range{Lo: 0, Hi: 10}

	for _, seed := range testSeeds {
		dataset, err := gen.Generate(stimulus.GenerationRequest{
			TargetCorrelation: 0.4,
			SampleSize:        100,
			Seed:              seed,
			XRange:            xr,
			YRange:            yr,
			AxisMode:          stimulus.AxisFixed,
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		for i, p := range dataset.Points {
			if p.X < xr.Lo || p.X > xr.Hi || p.Y < yr.Lo || p.Y > yr.Hi {
				t.Errorf("Point %d outside box (seed=%d): %+v", i, seed, p)
			}
		}
	}
}

func TestGenerate_ClampsOutOfRangeCorrelation(t *testing.T) {
	gen := newTestGenerator(t)
	dataset, err := gen.Generate(stimulus.GenerationRequest{
		TargetCorrelation: 1.5,
		SampleSize:        100,
		Seed:              42,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	r, _ := stats.Pearson(dataset.Points)
	if math.Abs(r-stimulus.CorrelationClamp) > 1e-6 {
		t.Errorf("Expected clamp to %v, got %v", stimulus.CorrelationClamp, r)
	}
}

func TestGenerate_DefaultExplorerStimulus(t *testing.T) {
	gen := newTestGenerator(t)

	for _, target := range []float64{0.8, -0.8} {
		dataset, err := gen.Generate(stimulus.GenerationRequest{
			TargetCorrelation: target,
			SampleSize:        30,
			Seed:              42,
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(dataset.Points) != 30 {
			t.Fatalf("Expected 30 points, got %d", len(dataset.Points))
		}

		r, ok := stats.Pearson(dataset.Points)
		if !ok {
			t.Fatal("Correlation undefined")
		}
		if stats.DisplayR(r) != target {
			t.Errorf("Display correlation = %v, want %v", stats.DisplayR(r), target)
		}
	}
}

func TestMix_ReusesBaseAcrossTargets(t *testing.T) {
	base, err := BuildBase(50, 42)
	if err != nil {
		t.Fatalf("BuildBase failed: %v", err)
	}

	// Mixing the same base to different r must keep the x column fixed:
	// the slider reads as a deformation of one cloud.
	a, err := Mix(base, stimulus.GenerationRequest{TargetCorrelation: 0.2, SampleSize: 50, Seed: 42})
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}
	b, err := Mix(base, stimulus.GenerationRequest{TargetCorrelation: 0.8, SampleSize: 50, Seed: 42})
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}

	// x ordering is preserved through the per-axis affine rescale.
	for i := 1; i < len(a.Points); i++ {
		if (a.Points[i].X > a.Points[i-1].X) != (b.Points[i].X > b.Points[i-1].X) {
			t.Fatalf("x ordering changed between mixes at index %d", i)
		}
	}
}

func TestExpectedCoverage(t *testing.T) {
	cov := ExpectedCoverage(sigmaThreshold)
	if cov < 0.97 || cov > 1 {
		t.Errorf("Expected coverage near 0.975 at 2.5 sigma, got %v", cov)
	}
}
