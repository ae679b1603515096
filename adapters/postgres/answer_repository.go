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

// AnswerRepositoryImpl implements AnswerStore for PostgreSQL
type AnswerRepositoryImpl struct {
	db *sqlx.DB
}

// NewAnswerRepository creates a new PostgreSQL answer repository
func NewAnswerRepository(db *sqlx.DB) ports.AnswerStore {
	return &AnswerRepositoryImpl{db: db}
}

type answerRow struct {
	ID                  string    `db:"id"`
	SessionID           string    `db:"session_id"`
	StimulusID          string    `db:"stimulus_id"`
	CorrelationStrength float64   `db:"correlation_strength"`
	DisplayedR          *float64  `db:"displayed_r"`
	UserPoints          []byte    `db:"user_points"`
	ElapsedMs           int64     `db:"elapsed_ms"`
	SubmittedAt         time.Time `db:"submitted_at"`
}

// Save stores one answer
func (r *AnswerRepositoryImpl) Save(ctx context.Context, answer stimulus.Answer) error {
	points, err := json.Marshal(answer.UserPoints)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO answers (id, session_id, stimulus_id, correlation_strength, displayed_r, user_points, elapsed_ms, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, answer.ID.String(), answer.SessionID.String(), answer.StimulusID.String(),
		answer.CorrelationStrength, answer.DisplayedR, points, answer.ElapsedMs, answer.SubmittedAt.Time())
	return err
}

// BySession returns all answers for a session, oldest first
func (r *AnswerRepositoryImpl) BySession(ctx context.Context, sessionID core.SessionID) ([]stimulus.Answer, error) {
	var rows []answerRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, session_id, stimulus_id, correlation_strength, displayed_r, user_points, elapsed_ms, submitted_at
		FROM answers
		WHERE session_id = $1
		ORDER BY submitted_at ASC
	`, sessionID.String())
	if err != nil {
		return nil, err
	}
	return rowsToAnswers(rows)
}

// All returns every stored answer, oldest first
func (r *AnswerRepositoryImpl) All(ctx context.Context) ([]stimulus.Answer, error) {
	var rows []answerRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, session_id, stimulus_id, correlation_strength, displayed_r, user_points, elapsed_ms, submitted_at
		FROM answers
		ORDER BY submitted_at ASC
	`)
	if err != nil {
		return nil, err
	}
	return rowsToAnswers(rows)
}

func rowsToAnswers(rows []answerRow) ([]stimulus.Answer, error) {
	answers := make([]stimulus.Answer, 0, len(rows))
	for _, row := range rows {
		answer := stimulus.Answer{
			ID:                  core.AnswerID(row.ID),
			SessionID:           core.SessionID(row.SessionID),
			StimulusID:          core.StimulusID(row.StimulusID),
			CorrelationStrength: row.CorrelationStrength,
			DisplayedR:          row.DisplayedR,
			ElapsedMs:           row.ElapsedMs,
			SubmittedAt:         core.NewTimestamp(row.SubmittedAt),
		}
		if len(row.UserPoints) > 0 {
			if err := json.Unmarshal(row.UserPoints, &answer.UserPoints); err != nil {
				return nil, err
			}
		}
		answers = append(answers, answer)
	}
	return answers, nil
}
