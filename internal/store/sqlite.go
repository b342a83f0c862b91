package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/easyapply/internal/model"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore keeps job outcomes in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// job_applications table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	// One writer at a time; the run goroutine and API handlers share the file.
	db.SetMaxOpenConns(1)

	createTable := `CREATE TABLE IF NOT EXISTS job_applications (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id     TEXT NOT NULL UNIQUE,
		title      TEXT NOT NULL DEFAULT '',
		company    TEXT NOT NULL DEFAULT '',
		location   TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL,
		applied_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		notes      TEXT NOT NULL DEFAULT ''
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating job_applications table: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Upsert inserts or updates the row for job.JobID.
func (s *SQLiteStore) Upsert(ctx context.Context, job model.JobSummary, status model.Status, note string) error {
	ts := s.now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_applications (job_id, title, company, location, status, applied_at, updated_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			title = excluded.title,
			company = excluded.company,
			location = excluded.location,
			status = excluded.status,
			updated_at = excluded.updated_at,
			notes = CASE WHEN excluded.notes = '' THEN job_applications.notes ELSE excluded.notes END`,
		job.JobID, job.Title, job.Company, job.Location, string(status), ts, ts, note)
	if err != nil {
		return fmt.Errorf("upserting job %s: %w", job.JobID, err)
	}
	return nil
}

// List returns rows newest first.
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]model.JobRecord, error) {
	query := `SELECT id, job_id, title, company, location, status, applied_at, updated_at, notes
		FROM job_applications`
	args := []any{}
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY applied_at DESC, id DESC LIMIT ?`
	args = append(args, opts.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var out []model.JobRecord
	for rows.Next() {
		var (
			rec                  model.JobRecord
			status               string
			appliedAt, updatedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.JobID, &rec.Title, &rec.Company, &rec.Location,
			&status, &appliedAt, &updatedAt, &rec.Notes); err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		rec.Status = model.Status(status)
		if rec.AppliedAt, err = time.Parse(timeLayout, appliedAt); err != nil {
			return nil, fmt.Errorf("parsing applied_at %q: %w", appliedAt, err)
		}
		if rec.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at %q: %w", updatedAt, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return out, nil
}

// Stats counts applied rows overall and per status for today.
func (s *SQLiteStore) Stats(ctx context.Context, now time.Time) (model.DashboardStats, error) {
	today := now.UTC().Format(dateLayout)
	stats := model.DashboardStats{Date: today}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'applied' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'applied' AND substr(updated_at, 1, 10) = ?1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' AND substr(updated_at, 1, 10) = ?1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'skipped' AND substr(updated_at, 1, 10) = ?1 THEN 1 ELSE 0 END), 0)
		FROM job_applications`, today).
		Scan(&stats.TotalApplied, &stats.AppliedToday, &stats.FailedToday, &stats.SkippedToday)
	if err != nil {
		return model.DashboardStats{}, fmt.Errorf("computing dashboard stats: %w", err)
	}
	return stats, nil
}

// HasApplied returns true if jobID is stored with status applied.
func (s *SQLiteStore) HasApplied(ctx context.Context, jobID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM job_applications WHERE job_id = ? AND status = 'applied'", jobID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking applied status for %s: %w", jobID, err)
	}
	return true, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
