package migration

import (
	"context"

	"github.com/JiarongF/StatsLearning/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createProvenanceStatesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create provenance_states table")
	}

	if err := r.createAnswersTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create answers table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createProvenanceStatesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS provenance_states (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			stimulus_id TEXT NOT NULL,
			correlation_strength DOUBLE PRECISION,
			user_points JSONB,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createAnswersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS answers (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			stimulus_id TEXT NOT NULL,
			correlation_strength DOUBLE PRECISION NOT NULL,
			displayed_r DOUBLE PRECISION,
			user_points JSONB,
			elapsed_ms BIGINT NOT NULL DEFAULT 0,
			submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_provenance_states_session ON provenance_states(session_id, recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_session ON answers(session_id, submitted_at)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_stimulus ON answers(stimulus_id)`,
	}
	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
