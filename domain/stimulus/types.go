package stimulus

import (
	"math"

	"github.com/JiarongF/StatsLearning/domain/core"
)

// Point is a single scatterplot coordinate. Points carry no identity beyond
// position; order only matters for diffing user-added points.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Range is a closed axis interval [Lo, Hi].
type Range struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Width returns Hi - Lo.
func (r Range) Width() float64 {
	return r.Hi - r.Lo
}

// Mid returns the midpoint of the range.
func (r Range) Mid() float64 {
	return (r.Lo + r.Hi) / 2
}

// IsValid reports whether the range has positive width.
func (r Range) IsValid() bool {
	return r.Hi > r.Lo && !math.IsNaN(r.Lo) && !math.IsNaN(r.Hi)
}

// AxisMode controls how generated points are fitted to the display box.
type AxisMode string

const (
	// AxisFixed rescales the cloud so its extremes land just inside the box.
	AxisFixed AxisMode = "fixed"
	// AxisSigma scales by standard deviations at a sigma threshold, leaving
	// extreme draws free to fall outside the box.
	AxisSigma AxisMode = "sigma"
)

const (
	// DefaultSeed is used when a stimulus configuration omits a seed; the
	// study session must continue rather than abort on missing parameters.
	DefaultSeed = 42

	// DefaultSampleSize matches the study's standard scatterplot density.
	DefaultSampleSize = 30

	// CorrelationClamp bounds requested correlations away from ±1 so the
	// slope-matching path never divides by a vanishing sqrt(1-r²).
	CorrelationClamp = 0.999
)

// DefaultXRange and DefaultYRange are the standard display box.
var (
	DefaultXRange = Range{Lo: 0, Hi: 10}
	DefaultYRange = Range{Lo: 0, Hi: 10}
)

// GenerationRequest is the generator's unique input tuple.
type GenerationRequest struct {
	TargetCorrelation float64  `json:"target_correlation"`
	SampleSize        int      `json:"sample_size"`
	Seed              int64    `json:"seed"`
	TargetSlope       *float64 `json:"target_slope,omitempty"`
	XRange            Range    `json:"x_range"`
	YRange            Range    `json:"y_range"`
	AxisMode          AxisMode `json:"axis_mode,omitempty"`
}

// Normalize fills defaults and clamps the target correlation into the
// supported range. Clamping instead of failing is deliberate: stimuli are
// synthetic and a hard error would break a live study session.
func (req GenerationRequest) Normalize() GenerationRequest {
	if req.Seed == 0 {
		req.Seed = DefaultSeed
	}
	if !req.XRange.IsValid() {
		req.XRange = DefaultXRange
	}
	if !req.YRange.IsValid() {
		req.YRange = DefaultYRange
	}
	if req.AxisMode == "" {
		req.AxisMode = AxisFixed
	}
	req.TargetCorrelation = ClampCorrelation(req.TargetCorrelation)
	return req
}

// ClampCorrelation bounds r to [-CorrelationClamp, CorrelationClamp].
func ClampCorrelation(r float64) float64 {
	if math.IsNaN(r) {
		return 0
	}
	if r > CorrelationClamp {
		return CorrelationClamp
	}
	if r < -CorrelationClamp {
		return -CorrelationClamp
	}
	return r
}

// BaseVectors are two zero-mean, unit-sample-variance sequences with
// in-sample correlation ~0. They are pure in (seed, n) and cacheable; reusing
// one base across a slider drag is what makes the animation read as a smooth
// rotation of a fixed cloud instead of a re-randomized one.
type BaseVectors struct {
	Xs    []float64 `json:"xs"`
	Zperp []float64 `json:"zperp"`
	Seed  int64     `json:"seed"`
}

// N returns the sample size of the base.
func (b BaseVectors) N() int {
	return len(b.Xs)
}

// GeneratedDataset is the immutable output of one generation. ActualSlope is
// recomputed from the final box-scaled points and may differ infinitesimally
// from a requested slope magnitude.
type GeneratedDataset struct {
	Points      []Point  `json:"points"`
	ActualSlope *float64 `json:"actual_slope,omitempty"`
	Request     GenerationRequest
}

// Xs returns the x column of the dataset.
func (d GeneratedDataset) Xs() []float64 {
	xs := make([]float64, len(d.Points))
	for i, p := range d.Points {
		xs[i] = p.X
	}
	return xs
}

// Ys returns the y column of the dataset.
func (d GeneratedDataset) Ys() []float64 {
	ys := make([]float64, len(d.Points))
	for i, p := range d.Points {
		ys[i] = p.Y
	}
	return ys
}

// Parameters is the stimulus configuration handed over by the study runner.
// The runner owns validation of everything study-flow related; the generator
// only defaults what it needs to keep rendering.
type Parameters struct {
	StimulusID           core.StimulusID `json:"stimulus_id"`
	Kind                 string          `json:"kind"`
	Seed                 int64           `json:"seed"`
	SampleSize           int             `json:"sample_size"`
	InitialCorrelation   float64         `json:"initial_correlation"`
	TargetSlope          *float64        `json:"target_slope,omitempty"`
	XRange               Range           `json:"x_range"`
	YRange               Range           `json:"y_range"`
	AxisMode             AxisMode        `json:"axis_mode,omitempty"`
	InstructionsMarkdown string          `json:"instructions_markdown,omitempty"`
}

// Request builds the generation request for a given target correlation. A
// missing sample size falls back to the study default here, runner-side: a
// raw GenerationRequest with n=0 is refused by the generator instead, since
// an explicit zero is a caller bug rather than an omitted config field.
func (p Parameters) Request(targetCorrelation float64) GenerationRequest {
	sampleSize := p.SampleSize
	if sampleSize == 0 {
		sampleSize = DefaultSampleSize
	}
	return GenerationRequest{
		TargetCorrelation: targetCorrelation,
		SampleSize:        sampleSize,
		Seed:              p.Seed,
		TargetSlope:       p.TargetSlope,
		XRange:            p.XRange,
		YRange:            p.YRange,
		AxisMode:          p.AxisMode,
	}.Normalize()
}

// Answer is the serializable summary delivered to the study runner's
// setAnswer sink. It never carries raw generated points; the seed plus the
// recorded parameters are enough to reproduce them on replay.
type Answer struct {
	ID                  core.AnswerID   `json:"id"`
	SessionID           core.SessionID  `json:"session_id"`
	StimulusID          core.StimulusID `json:"stimulus_id"`
	CorrelationStrength float64         `json:"correlation_strength"`
	DisplayedR          *float64        `json:"displayed_r,omitempty"`
	UserPoints          []Point         `json:"user_points,omitempty"`
	ElapsedMs           int64           `json:"elapsed_ms"`
	SubmittedAt         core.Timestamp  `json:"submitted_at"`
}

// ProvenanceState carries previously recorded parameter values for replay.
// Replaying the same state through the same seed must reproduce bit-identical
// generator output.
type ProvenanceState struct {
	SessionID           core.SessionID  `json:"session_id"`
	StimulusID          core.StimulusID `json:"stimulus_id"`
	CorrelationStrength *float64        `json:"correlation_strength,omitempty"`
	UserPoints          []Point         `json:"user_points,omitempty"`
	RecordedAt          core.Timestamp  `json:"recorded_at"`
}
