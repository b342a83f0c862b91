// Package handler implements the dashboard's HTTP endpoints.
package handler

import (
	"context"
	"time"

	"github.com/amishk599/easyapply/internal/model"
	"github.com/amishk599/easyapply/internal/settings"
	"github.com/amishk599/easyapply/internal/store"
)

// SettingsService reads and patches the runtime settings.
type SettingsService interface {
	Safe() settings.Values
	Update(p settings.Patch) (settings.Values, error)
	Credentials() model.Credentials
}

// OutcomeReader reads persisted outcomes.
type OutcomeReader interface {
	List(ctx context.Context, opts store.ListOptions) ([]model.JobRecord, error)
	Stats(ctx context.Context, now time.Time) (model.DashboardStats, error)
}

// RunTrigger starts runs and reports whether one is active.
type RunTrigger interface {
	Start(filters model.SearchFilters) bool
	Running() bool
}
