// Package session tracks one participant's interaction with one stimulus:
// the generated dataset, the separately tracked user points, and the answer
// eventually handed back to the study runner. Every parameter change is
// recorded through a ProvenanceStore so the interaction can be replayed
// deterministically.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/JiarongF/StatsLearning/domain/core"
	"github.com/JiarongF/StatsLearning/domain/stats"
	"github.com/JiarongF/StatsLearning/domain/stimulus"
	"github.com/JiarongF/StatsLearning/ports"
)

// Session is the mutable interaction state for one stimulus. Generated data
// is immutable per parameter change; user points are an append-only (with
// delete) sequence that never feeds back into the generator, only into the
// displayed combined correlation.
type Session struct {
	id        core.SessionID
	params    stimulus.Parameters
	generator ports.GeneratorPort
	store     ports.ProvenanceStore
	startedAt time.Time

	mu                  sync.Mutex
	correlationStrength float64
	dataset             stimulus.GeneratedDataset
	userPoints          []stimulus.Point
}

// New starts a session for the given parameters, generating the initial
// dataset at the configured starting correlation. store may be nil when
// provenance recording is not wanted (e.g. during replay).
func New(params stimulus.Parameters, generator ports.GeneratorPort, store ports.ProvenanceStore) (*Session, error) {
	s := &Session{
		id:        core.SessionID(core.NewID()),
		params:    params,
		generator: generator,
		store:     store,
		startedAt: time.Now(),
	}
	if err := s.regenerate(params.InitialCorrelation); err != nil {
		return nil, err
	}
	s.correlationStrength = stimulus.ClampCorrelation(params.InitialCorrelation)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() core.SessionID {
	return s.id
}

// Parameters returns the stimulus configuration this session runs.
func (s *Session) Parameters() stimulus.Parameters {
	return s.params
}

// SetCorrelation regenerates the dataset at a new target correlation and
// records the change. The seed never changes mid-session, so the new cloud is
// the same base shape mixed to a different r.
func (s *Session) SetCorrelation(ctx context.Context, r float64) error {
	if err := s.regenerate(r); err != nil {
		return err
	}

	s.mu.Lock()
	s.correlationStrength = stimulus.ClampCorrelation(r)
	s.mu.Unlock()

	return s.record(ctx)
}

// AddUserPoint appends a participant-placed point and records the change.
func (s *Session) AddUserPoint(ctx context.Context, p stimulus.Point) error {
	s.mu.Lock()
	s.userPoints = append(s.userPoints, p)
	s.mu.Unlock()
	return s.record(ctx)
}

// RemoveUserPoint deletes the user point at index. Out-of-range indices are
// ignored: a stale click must never crash the study session.
func (s *Session) RemoveUserPoint(ctx context.Context, index int) error {
	s.mu.Lock()
	if index >= 0 && index < len(s.userPoints) {
		s.userPoints = append(s.userPoints[:index], s.userPoints[index+1:]...)
	}
	s.mu.Unlock()
	return s.record(ctx)
}

// Dataset returns the current generated dataset.
func (s *Session) Dataset() stimulus.GeneratedDataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset
}

// UserPoints returns a copy of the participant-placed points.
func (s *Session) UserPoints() []stimulus.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]stimulus.Point, len(s.userPoints))
	copy(out, s.userPoints)
	return out
}

// CorrelationStrength returns the current slider value.
func (s *Session) CorrelationStrength() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correlationStrength
}

// DisplayedCorrelation computes the live correlation of generated plus user
// points combined. ok is false when it is undefined; the renderer hides the
// readout in that case rather than showing NaN.
func (s *Session) DisplayedCorrelation() (float64, bool) {
	s.mu.Lock()
	combined := make([]stimulus.Point, 0, len(s.dataset.Points)+len(s.userPoints))
	combined = append(combined, s.dataset.Points...)
	combined = append(combined, s.userPoints...)
	s.mu.Unlock()
	return stats.Pearson(combined)
}

// Answer assembles the serializable summary for the study runner. Raw
// generated points are omitted: seed plus recorded parameters reproduce them.
func (s *Session) Answer() stimulus.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer := stimulus.Answer{
		ID:                  core.AnswerID(core.NewID()),
		SessionID:           s.id,
		StimulusID:          s.params.StimulusID,
		CorrelationStrength: s.correlationStrength,
		UserPoints:          append([]stimulus.Point(nil), s.userPoints...),
		ElapsedMs:           time.Since(s.startedAt).Milliseconds(),
		SubmittedAt:         core.Now(),
	}

	combined := make([]stimulus.Point, 0, len(s.dataset.Points)+len(s.userPoints))
	combined = append(combined, s.dataset.Points...)
	combined = append(combined, s.userPoints...)
	if r, ok := stats.Pearson(combined); ok {
		displayed := stats.DisplayR(r)
		answer.DisplayedR = &displayed
	}
	return answer
}

// Submit delivers the assembled answer to the sink and, when a store is
// given, persists it.
func (s *Session) Submit(ctx context.Context, sink ports.AnswerSink, store ports.AnswerStore) (stimulus.Answer, error) {
	answer := s.Answer()
	if sink != nil {
		if err := sink.SetAnswer(ctx, answer); err != nil {
			return answer, err
		}
	}
	if store != nil {
		if err := store.Save(ctx, answer); err != nil {
			return answer, err
		}
	}
	return answer, nil
}

// regenerate rebuilds the dataset at target correlation r from the session's
// fixed seed.
func (s *Session) regenerate(r float64) error {
	dataset, err := s.generator.Generate(s.params.Request(r))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.dataset = dataset
	s.mu.Unlock()
	return nil
}

// record writes the current state to the provenance store.
func (s *Session) record(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	s.mu.Lock()
	strength := s.correlationStrength
	points := append([]stimulus.Point(nil), s.userPoints...)
	s.mu.Unlock()

	return s.store.Record(ctx, stimulus.ProvenanceState{
		SessionID:           s.id,
		StimulusID:          s.params.StimulusID,
		CorrelationStrength: &strength,
		UserPoints:          points,
		RecordedAt:          core.Now(),
	})
}

// Replay reconstructs a session by applying recorded states in order through
// the same seed. No provenance is recorded during replay. Because generation
// is pure in (seed, parameters), the replayed datasets are bit-identical to
// the originals.
func Replay(params stimulus.Parameters, generator ports.GeneratorPort, states []stimulus.ProvenanceState) (*Session, error) {
	s, err := New(params, generator, nil)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	for _, state := range states {
		if state.CorrelationStrength != nil {
			if err := s.SetCorrelation(ctx, *state.CorrelationStrength); err != nil {
				return nil, err
			}
		}
		s.mu.Lock()
		s.userPoints = append([]stimulus.Point(nil), state.UserPoints...)
		s.mu.Unlock()
	}
	return s, nil
}
