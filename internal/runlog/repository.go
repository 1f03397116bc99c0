package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/park285/chess-archive-insight/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id       UUID PRIMARY KEY,
	player       TEXT NOT NULL,
	start_month  TEXT NOT NULL,
	end_month    TEXT NOT NULL,
	time_class   TEXT NOT NULL,
	months       INTEGER NOT NULL DEFAULT 0,
	games        INTEGER NOT NULL DEFAULT 0,
	outcome      TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT '',
	started_at   TIMESTAMPTZ NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL,
	duration_ms  BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS analysis_runs_player_idx ON analysis_runs (lower(player), started_at DESC);`

// Repository stores one row per pipeline invocation. Game data is never written.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Open connects to Postgres and applies the schema.
func Open(ctx context.Context, databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url required for run log")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	repo := NewRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure analysis_runs schema: %w", err)
	}
	return nil
}

func (r *Repository) RecordRun(ctx context.Context, run pipeline.RunSummary) error {
	const query = `
		INSERT INTO analysis_runs (
			run_id,
			player,
			start_month,
			end_month,
			time_class,
			months,
			games,
			outcome,
			error,
			started_at,
			finished_at,
			duration_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (run_id) DO NOTHING`

	_, err := r.db.ExecContext(
		ctx,
		query,
		run.RunID,
		run.Player,
		run.Start,
		run.End,
		run.TimeClass,
		run.Months,
		run.Games,
		run.Outcome,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
		run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert analysis run: %w", err)
	}
	return nil
}

// RecentRuns returns the latest runs for a player, newest first.
func (r *Repository) RecentRuns(ctx context.Context, player string, limit int) ([]pipeline.RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT
			run_id,
			player,
			start_month,
			end_month,
			time_class,
			months,
			games,
			outcome,
			error,
			started_at,
			finished_at
		FROM analysis_runs
		WHERE lower(player) = lower($1)
		ORDER BY started_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, player, limit)
	if err != nil {
		return nil, fmt.Errorf("select analysis runs: %w", err)
	}
	defer rows.Close()

	runs := make([]pipeline.RunSummary, 0, limit)
	for rows.Next() {
		var run pipeline.RunSummary
		if err := rows.Scan(
			&run.RunID,
			&run.Player,
			&run.Start,
			&run.End,
			&run.TimeClass,
			&run.Months,
			&run.Games,
			&run.Outcome,
			&run.Error,
			&run.StartedAt,
			&run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan analysis run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis runs: %w", err)
	}
	return runs, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
