package session

import (
	"context"
	"fmt"

	"github.com/JiarongF/StatsLearning/domain/stimulus"
	"github.com/JiarongF/StatsLearning/internal"
)

// LoggingSink is the standalone stand-in for the study runner's setAnswer
// callback: it logs delivered answers instead of forwarding them. The real
// runner plugs in its own AnswerSink.
type LoggingSink struct {
	logger *internal.Logger
}

// NewLoggingSink creates a sink writing to the given logger.
func NewLoggingSink(logger *internal.Logger) *LoggingSink {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &LoggingSink{logger: logger}
}

// SetAnswer logs the answer summary.
func (s *LoggingSink) SetAnswer(ctx context.Context, answer stimulus.Answer) error {
	displayed := "n/a"
	if answer.DisplayedR != nil {
		// Two decimals matches the study's on-screen readout.
		displayed = fmt.Sprintf("%.2f", *answer.DisplayedR)
	}
	s.logger.Info("answer %s: stimulus=%s reported_r=%.3f displayed_r=%s user_points=%d",
		answer.ID, answer.StimulusID, answer.CorrelationStrength, displayed, len(answer.UserPoints))
	return nil
}
