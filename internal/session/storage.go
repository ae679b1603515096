package session

import (
	"context"
	"sync"

	"github.com/JiarongF/StatsLearning/domain/core"
	"github.com/JiarongF/StatsLearning/domain/stimulus"
)

// MemoryProvenanceStore keeps provenance states in memory; used in tests and
// when the app runs without a database.
type MemoryProvenanceStore struct {
	mu     sync.Mutex
	states map[core.SessionID][]stimulus.ProvenanceState
}

// NewMemoryProvenanceStore creates an empty in-memory provenance store.
func NewMemoryProvenanceStore() *MemoryProvenanceStore {
	return &MemoryProvenanceStore{states: make(map[core.SessionID][]stimulus.ProvenanceState)}
}

// Record appends a provenance state for a session.
func (m *MemoryProvenanceStore) Record(ctx context.Context, state stimulus.ProvenanceState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.SessionID] = append(m.states[state.SessionID], state)
	return nil
}

// States returns all recorded states for a session, oldest first.
func (m *MemoryProvenanceStore) States(ctx context.Context, sessionID core.SessionID) ([]stimulus.ProvenanceState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]stimulus.ProvenanceState, len(m.states[sessionID]))
	copy(out, m.states[sessionID])
	return out, nil
}

// MemoryAnswerStore keeps submitted answers in memory.
type MemoryAnswerStore struct {
	mu      sync.Mutex
	answers []stimulus.Answer
}

// NewMemoryAnswerStore creates an empty in-memory answer store.
func NewMemoryAnswerStore() *MemoryAnswerStore {
	return &MemoryAnswerStore{}
}

// Save stores one answer.
func (m *MemoryAnswerStore) Save(ctx context.Context, answer stimulus.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = append(m.answers, answer)
	return nil
}

// BySession returns all answers for a session, oldest first.
func (m *MemoryAnswerStore) BySession(ctx context.Context, sessionID core.SessionID) ([]stimulus.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []stimulus.Answer
	for _, a := range m.answers {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

// All returns every stored answer, oldest first.
func (m *MemoryAnswerStore) All(ctx context.Context) ([]stimulus.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]stimulus.Answer, len(m.answers))
	copy(out, m.answers)
	return out, nil
}
