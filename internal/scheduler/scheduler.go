package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/easyapply/internal/model"
)

// Starter begins a run in the background and reports whether it did.
type Starter interface {
	Start(filters model.SearchFilters) bool
}

// Scheduler owns the unattended loop: it requests a run on an interval. A
// request made while a run is active is refused by the Starter and logged.
type Scheduler struct {
	starter  Starter
	filters  model.SearchFilters
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that requests a run with filters every interval.
func NewScheduler(starter Starter, filters model.SearchFilters, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		starter:  starter,
		filters:  filters,
		interval: interval,
		logger:   logger,
	}
}

// Run requests one immediate run, then one per interval. It returns nil when
// ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	s.trigger()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-ticker.C:
			s.trigger()
		}
	}
}

func (s *Scheduler) trigger() {
	if s.starter.Start(s.filters) {
		s.logger.Info("scheduled run started")
		return
	}
	s.logger.Warn("scheduled run skipped", "error", model.ErrRunActive)
}
