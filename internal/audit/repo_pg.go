package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepoPG persists runs in Postgres.
type RepoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG builds a repository over an existing pool.
func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

// EnsureSchema creates the run table when missing.
func (r *RepoPG) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS deid_runs (
			id           UUID PRIMARY KEY,
			method       TEXT NOT NULL,
			started_at   TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL,
			records      INT NOT NULL,
			entities     INT NOT NULL,
			identifiers  INT NOT NULL,
			passthrough  INT NOT NULL,
			failures     INT NOT NULL,
			redactions   JSONB,
			outcome      TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("audit: ensure schema: %w", err)
	}
	return nil
}

// Save implements Repository.
func (r *RepoPG) Save(ctx context.Context, run *Run) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO deid_runs (id, method, started_at, completed_at,
			records, entities, identifiers, passthrough, failures,
			redactions, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		run.ID, run.Method, run.StartedAt, run.CompletedAt,
		run.Records, run.Entities, run.Identifiers, run.Passthrough,
		run.Failures, run.Redactions, run.Outcome)
	if err != nil {
		return fmt.Errorf("audit: save run: %w", err)
	}
	return nil
}

// GetRun loads one run by id.
func (r *RepoPG) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := r.pool.QueryRow(ctx, `
		SELECT id, method, started_at, completed_at,
			records, entities, identifiers, passthrough, failures,
			redactions, outcome
		FROM deid_runs WHERE id = $1`, id).Scan(
		&run.ID, &run.Method, &run.StartedAt, &run.CompletedAt,
		&run.Records, &run.Entities, &run.Identifiers, &run.Passthrough,
		&run.Failures, &run.Redactions, &run.Outcome)
	if err != nil {
		return nil, fmt.Errorf("audit: get run: %w", err)
	}
	return &run, nil
}
