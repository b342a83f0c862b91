package store

import (
	"context"
	"time"

	"github.com/amishk599/easyapply/internal/model"
)

// NopStore is a no-op store used in dry-run mode. It records nothing, so no
// job is ever reported as already applied.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Upsert(context.Context, model.JobSummary, model.Status, string) error { return nil }
func (s *NopStore) List(context.Context, ListOptions) ([]model.JobRecord, error)         { return nil, nil }
func (s *NopStore) HasApplied(context.Context, string) (bool, error)                     { return false, nil }
func (s *NopStore) Close() error                                                         { return nil }

func (s *NopStore) Stats(_ context.Context, now time.Time) (model.DashboardStats, error) {
	return model.DashboardStats{Date: now.UTC().Format(dateLayout)}, nil
}
