package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amishk599/easyapply/internal/model"
)

// Store persists one outcome row per job id.
type Store interface {
	// Upsert records the latest status of job. An empty note never replaces
	// a stored one.
	Upsert(ctx context.Context, job model.JobSummary, status model.Status, note string) error
	List(ctx context.Context, opts ListOptions) ([]model.JobRecord, error)
	// Stats aggregates outcomes; "today" is the UTC date of now.
	Stats(ctx context.Context, now time.Time) (model.DashboardStats, error)
	HasApplied(ctx context.Context, jobID string) (bool, error)
	Close() error
}

// ListOptions filters List. A zero Limit means DefaultListLimit.
type ListOptions struct {
	Limit  int
	Status model.Status
}

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

func (o ListOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultListLimit
	}
	return o.Limit
}

const dateLayout = "2006-01-02"

// Open picks the backend from databaseURL: postgres:// and postgresql:// use
// Postgres, sqlite:///path or a bare path use SQLite.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	switch {
	case databaseURL == "":
		return nil, fmt.Errorf("database url is empty")
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return NewPostgresStore(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite:///"):
		return NewSQLiteStore(strings.TrimPrefix(databaseURL, "sqlite:///"))
	default:
		return NewSQLiteStore(databaseURL)
	}
}
