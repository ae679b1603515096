package ports

import (
	"context"

	"github.com/JiarongF/StatsLearning/domain/core"
	"github.com/JiarongF/StatsLearning/domain/stimulus"
)

// ProvenanceStore persists recorded parameter states so a session can be
// replayed deterministically. The store owns only the blobs; the replay
// semantics live with the session.
type ProvenanceStore interface {
	// Record appends a provenance state for a session.
	Record(ctx context.Context, state stimulus.ProvenanceState) error

	// States returns all recorded states for a session, oldest first.
	States(ctx context.Context, sessionID core.SessionID) ([]stimulus.ProvenanceState, error)
}

// AnswerStore persists submitted answers.
type AnswerStore interface {
	// Save stores one answer.
	Save(ctx context.Context, answer stimulus.Answer) error

	// BySession returns all answers for a session, oldest first.
	BySession(ctx context.Context, sessionID core.SessionID) ([]stimulus.Answer, error)

	// All returns every stored answer, oldest first.
	All(ctx context.Context) ([]stimulus.Answer, error)
}

// AnswerSink is the study runner's setAnswer callback: the session delivers a
// serializable summary, never raw generated point arrays.
type AnswerSink interface {
	SetAnswer(ctx context.Context, answer stimulus.Answer) error
}
