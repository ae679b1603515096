package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/JiarongF/StatsLearning/domain/core"
	"github.com/JiarongF/StatsLearning/domain/stimulus"
	"github.com/JiarongF/StatsLearning/ports"

	"github.com/jmoiron/sqlx"
)

// ProvenanceRepositoryImpl implements ProvenanceStore for PostgreSQL
type ProvenanceRepositoryImpl struct {
	db *sqlx.DB
}

// NewProvenanceRepository creates a new PostgreSQL provenance repository
func NewProvenanceRepository(db *sqlx.DB) ports.ProvenanceStore {
	return &ProvenanceRepositoryImpl{db: db}
}

// provenanceRow is the flat row shape for scanning
type provenanceRow struct {
	SessionID           string    `db:"session_id"`
	StimulusID          string    `db:"stimulus_id"`
	CorrelationStrength *float64  `db:"correlation_strength"`
	UserPoints          []byte    `db:"user_points"`
	RecordedAt          time.Time `db:"recorded_at"`
}

// Record appends a provenance state for a session
func (r *ProvenanceRepositoryImpl) Record(ctx context.Context, state stimulus.ProvenanceState) error {
	points, err := json.Marshal(state.UserPoints)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO provenance_states (session_id, stimulus_id, correlation_strength, user_points, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`, state.SessionID.String(), state.StimulusID.String(), state.CorrelationStrength, points, state.RecordedAt.Time())
	return err
}

// States returns all recorded states for a session, oldest first
func (r *ProvenanceRepositoryImpl) States(ctx context.Context, sessionID core.SessionID) ([]stimulus.ProvenanceState, error) {
	var rows []provenanceRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT session_id, stimulus_id, correlation_strength, user_points, recorded_at
		FROM provenance_states
		WHERE session_id = $1
		ORDER BY recorded_at ASC, id ASC
	`, sessionID.String())
	if err != nil {
		return nil, err
	}

	states := make([]stimulus.ProvenanceState, 0, len(rows))
	for _, row := range rows {
		state := stimulus.ProvenanceState{
			SessionID:           core.SessionID(row.SessionID),
			StimulusID:          core.StimulusID(row.StimulusID),
			CorrelationStrength: row.CorrelationStrength,
			RecordedAt:          core.NewTimestamp(row.RecordedAt),
		}
		if len(row.UserPoints) > 0 {
			if err := json.Unmarshal(row.UserPoints, &state.UserPoints); err != nil {
				return nil, err
			}
		}
		states = append(states, state)
	}
	return states, nil
}
