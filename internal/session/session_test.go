package session

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/JiarongF/StatsLearning/domain/core"
	"github.com/JiarongF/StatsLearning/domain/stats"
	"github.com/JiarongF/StatsLearning/domain/stimulus"
	"github.com/JiarongF/StatsLearning/internal/generator"
)

type mockAnswerSink struct {
	mock.Mock
}

func (m *mockAnswerSink) SetAnswer(ctx context.Context, answer stimulus.Answer) error {
	args := m.Called(ctx, answer)
	return args.Error(0)
}

func newTestGenerator(t *testing.T) *generator.Generator {
	t.Helper()
	cache, err := generator.NewBaseCache(generator.DefaultBaseCacheSize)
	if err != nil {
		t.Fatalf("NewBaseCache: %v", err)
	}
	return generator.New(cache)
}

func testParams() stimulus.Parameters {
	return stimulus.Parameters{
		StimulusID:         core.StimulusID(core.NewID()),
		Kind:               "slider",
		Seed:               42,
		SampleSize:         30,
		InitialCorrelation: 0.5,
	}
}

func TestNew_GeneratesInitialDataset(t *testing.T) {
	s, err := New(testParams(), newTestGenerator(t), NewMemoryProvenanceStore())
	assert.NoError(t, err)

	dataset := s.Dataset()
	assert.Len(t, dataset.Points, 30)

	r, ok := stats.Pearson(dataset.Points)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, r, 1e-6)
	assert.InDelta(t, 0.5, s.CorrelationStrength(), 1e-12)
}

func TestSetCorrelation_RegeneratesAndRecords(t *testing.T) {
	store := NewMemoryProvenanceStore()
	s, err := New(testParams(), newTestGenerator(t), store)
	assert.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, s.SetCorrelation(ctx, -0.8))

	r, ok := stats.Pearson(s.Dataset().Points)
	assert.True(t, ok)
	assert.InDelta(t, -0.8, r, 1e-6)
	assert.InDelta(t, -0.8, s.CorrelationStrength(), 1e-12)

	states, err := store.States(ctx, s.ID())
	assert.NoError(t, err)
	assert.Len(t, states, 1)
	assert.NotNil(t, states[0].CorrelationStrength)
	assert.InDelta(t, -0.8, *states[0].CorrelationStrength, 1e-12)
}

func TestSetCorrelation_KeepsBaseShape(t *testing.T) {
	s, err := New(testParams(), newTestGenerator(t), nil)
	assert.NoError(t, err)

	before := s.Dataset().Xs()
	assert.NoError(t, s.SetCorrelation(context.Background(), 0.9))
	after := s.Dataset().Xs()

	// Same seed, same base: the x rank order survives any target r.
	for i := 1; i < len(before); i++ {
		assert.Equal(t, before[i] > before[i-1], after[i] > after[i-1],
			"x ordering changed at index %d", i)
	}
}

func TestUserPoints_AddRemoveAndDisplayedCorrelation(t *testing.T) {
	s, err := New(testParams(), newTestGenerator(t), NewMemoryProvenanceStore())
	assert.NoError(t, err)

	generatedR, ok := s.DisplayedCorrelation()
	assert.True(t, ok)

	ctx := context.Background()
	assert.NoError(t, s.AddUserPoint(ctx, stimulus.Point{X: 0, Y: 10}))
	assert.NoError(t, s.AddUserPoint(ctx, stimulus.Point{X: 10, Y: 0}))
	assert.Len(t, s.UserPoints(), 2)

	combinedR, ok := s.DisplayedCorrelation()
	assert.True(t, ok)
	assert.NotEqual(t, generatedR, combinedR,
		"off-trend user points must move the displayed correlation")
	assert.Less(t, combinedR, generatedR)

	assert.NoError(t, s.RemoveUserPoint(ctx, 0))
	assert.Len(t, s.UserPoints(), 1)

	// Stale indices are ignored, never an error.
	assert.NoError(t, s.RemoveUserPoint(ctx, 99))
	assert.NoError(t, s.RemoveUserPoint(ctx, -1))
	assert.Len(t, s.UserPoints(), 1)
}

func TestUserPoints_NeverFeedBackIntoGenerator(t *testing.T) {
	s, err := New(testParams(), newTestGenerator(t), nil)
	assert.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, s.AddUserPoint(ctx, stimulus.Point{X: 5, Y: 5}))
	assert.NoError(t, s.SetCorrelation(ctx, 0.7))

	r, ok := stats.Pearson(s.Dataset().Points)
	assert.True(t, ok)
	assert.InDelta(t, 0.7, r, 1e-6, "generated points must stay exact regardless of user points")
	assert.Len(t, s.UserPoints(), 1)
}

func TestSubmit_DeliversAnswerToSinkAndStore(t *testing.T) {
	s, err := New(testParams(), newTestGenerator(t), NewMemoryProvenanceStore())
	assert.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, s.SetCorrelation(ctx, 0.6))
	assert.NoError(t, s.AddUserPoint(ctx, stimulus.Point{X: 1, Y: 2}))

	sink := new(mockAnswerSink)
	sink.On("SetAnswer", mock.Anything, mock.AnythingOfType("stimulus.Answer")).Return(nil)
	store := NewMemoryAnswerStore()

	answer, err := s.Submit(ctx, sink, store)
	assert.NoError(t, err)
	sink.AssertExpectations(t)

	assert.Equal(t, s.ID(), answer.SessionID)
	assert.InDelta(t, 0.6, answer.CorrelationStrength, 1e-12)
	assert.Len(t, answer.UserPoints, 1)
	assert.NotNil(t, answer.DisplayedR)
	assert.GreaterOrEqual(t, answer.ElapsedMs, int64(0))

	// Two decimals, no residue.
	assert.InDelta(t, *answer.DisplayedR, math.Round(*answer.DisplayedR*100)/100, 0)

	saved, err := store.BySession(ctx, s.ID())
	assert.NoError(t, err)
	assert.Len(t, saved, 1)
	assert.Equal(t, answer.ID, saved[0].ID)
}

func TestSubmit_SinkErrorStopsPersistence(t *testing.T) {
	s, err := New(testParams(), newTestGenerator(t), nil)
	assert.NoError(t, err)

	sink := new(mockAnswerSink)
	sink.On("SetAnswer", mock.Anything, mock.Anything).Return(assert.AnError)
	store := NewMemoryAnswerStore()

	_, err = s.Submit(context.Background(), sink, store)
	assert.Error(t, err)

	saved, err := store.All(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, saved)
}

func TestReplay_ReproducesBitIdenticalDataset(t *testing.T) {
	params := testParams()
	gen := newTestGenerator(t)
	store := NewMemoryProvenanceStore()

	live, err := New(params, gen, store)
	assert.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, live.SetCorrelation(ctx, 0.3))
	assert.NoError(t, live.AddUserPoint(ctx, stimulus.Point{X: 2, Y: 8}))
	assert.NoError(t, live.SetCorrelation(ctx, -0.65))

	states, err := store.States(ctx, live.ID())
	assert.NoError(t, err)
	assert.Len(t, states, 3)

	// Replay through a cold generator so nothing is shared with the live run.
	replayGen := newTestGenerator(t)
	replayed, err := Replay(params, replayGen, states)
	assert.NoError(t, err)

	assert.Equal(t, live.Dataset().Points, replayed.Dataset().Points,
		"replayed dataset must be bit-identical")
	assert.Equal(t, live.UserPoints(), replayed.UserPoints())
	assert.InDelta(t, live.CorrelationStrength(), replayed.CorrelationStrength(), 0)
}

func TestReplay_RecordsNoProvenance(t *testing.T) {
	params := testParams()
	gen := newTestGenerator(t)
	store := NewMemoryProvenanceStore()

	live, err := New(params, gen, store)
	assert.NoError(t, err)
	assert.NoError(t, live.SetCorrelation(context.Background(), 0.2))

	states, err := store.States(context.Background(), live.ID())
	assert.NoError(t, err)

	replayed, err := Replay(params, gen, states)
	assert.NoError(t, err)

	// The replayed session has a fresh ID and never wrote to the store.
	assert.NotEqual(t, live.ID(), replayed.ID())
	replayedStates, err := store.States(context.Background(), replayed.ID())
	assert.NoError(t, err)
	assert.Empty(t, replayedStates)
}
