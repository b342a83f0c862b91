package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/easyapply/internal/model"
)

// PostgresStore keeps job outcomes in Postgres through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and ensures the job_applications table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS job_applications (
		id         BIGSERIAL PRIMARY KEY,
		job_id     TEXT NOT NULL UNIQUE,
		title      TEXT NOT NULL DEFAULT '',
		company    TEXT NOT NULL DEFAULT '',
		location   TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		notes      TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating job_applications table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Upsert inserts or updates the row for job.JobID.
func (s *PostgresStore) Upsert(ctx context.Context, job model.JobSummary, status model.Status, note string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO job_applications (job_id, title, company, location, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id) DO UPDATE SET
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			location = EXCLUDED.location,
			status = EXCLUDED.status,
			updated_at = now(),
			notes = CASE WHEN EXCLUDED.notes = '' THEN job_applications.notes ELSE EXCLUDED.notes END`,
		job.JobID, job.Title, job.Company, job.Location, string(status), note)
	if err != nil {
		return fmt.Errorf("upserting job %s: %w", job.JobID, err)
	}
	return nil
}

// List returns rows newest first.
func (s *PostgresStore) List(ctx context.Context, opts ListOptions) ([]model.JobRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, job_id, title, company, location, status, applied_at, updated_at, notes
		FROM job_applications
		WHERE $1 = '' OR status = $1
		ORDER BY applied_at DESC, id DESC
		LIMIT $2`, string(opts.Status), opts.limit())
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var out []model.JobRecord
	for rows.Next() {
		var (
			rec    model.JobRecord
			status string
		)
		if err := rows.Scan(&rec.ID, &rec.JobID, &rec.Title, &rec.Company, &rec.Location,
			&status, &rec.AppliedAt, &rec.UpdatedAt, &rec.Notes); err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		rec.Status = model.Status(status)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return out, nil
}

// Stats counts applied rows overall and per status for today (UTC).
func (s *PostgresStore) Stats(ctx context.Context, now time.Time) (model.DashboardStats, error) {
	today := now.UTC().Format(dateLayout)
	stats := model.DashboardStats{Date: today}
	err := s.pool.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE status = 'applied'),
			count(*) FILTER (WHERE status = 'applied' AND (updated_at AT TIME ZONE 'UTC')::date = $1::date),
			count(*) FILTER (WHERE status = 'failed' AND (updated_at AT TIME ZONE 'UTC')::date = $1::date),
			count(*) FILTER (WHERE status = 'skipped' AND (updated_at AT TIME ZONE 'UTC')::date = $1::date)
		FROM job_applications`, today).
		Scan(&stats.TotalApplied, &stats.AppliedToday, &stats.FailedToday, &stats.SkippedToday)
	if err != nil {
		return model.DashboardStats{}, fmt.Errorf("computing dashboard stats: %w", err)
	}
	return stats, nil
}

// HasApplied returns true if jobID is stored with status applied.
func (s *PostgresStore) HasApplied(ctx context.Context, jobID string) (bool, error) {
	var exists int
	err := s.pool.QueryRow(ctx,
		"SELECT 1 FROM job_applications WHERE job_id = $1 AND status = 'applied'", jobID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking applied status for %s: %w", jobID, err)
	}
	return true, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
