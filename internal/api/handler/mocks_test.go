package handler_test

import (
	"context"
	"time"

	"github.com/amishk599/easyapply/internal/model"
	"github.com/amishk599/easyapply/internal/settings"
	"github.com/amishk599/easyapply/internal/store"
)

type mockSettings struct {
	safe     settings.Values
	creds    model.Credentials
	updateFn func(p settings.Patch) (settings.Values, error)
	patches  []settings.Patch
}

func (m *mockSettings) Safe() settings.Values { return m.safe }

func (m *mockSettings) Credentials() model.Credentials { return m.creds }

func (m *mockSettings) Update(p settings.Patch) (settings.Values, error) {
	m.patches = append(m.patches, p)
	if m.updateFn != nil {
		return m.updateFn(p)
	}
	return m.safe, nil
}

type mockOutcomes struct {
	listFn  func(ctx context.Context, opts store.ListOptions) ([]model.JobRecord, error)
	statsFn func(ctx context.Context, now time.Time) (model.DashboardStats, error)
}

func (m *mockOutcomes) List(ctx context.Context, opts store.ListOptions) ([]model.JobRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx, opts)
	}
	return nil, nil
}

func (m *mockOutcomes) Stats(ctx context.Context, now time.Time) (model.DashboardStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, now)
	}
	return model.DashboardStats{}, nil
}

type mockRuns struct {
	running bool
	accept  bool
	started []model.SearchFilters
}

func (m *mockRuns) Start(filters model.SearchFilters) bool {
	m.started = append(m.started, filters)
	return m.accept
}

func (m *mockRuns) Running() bool { return m.running }
