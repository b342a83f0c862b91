package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/easyapply/internal/model"
)

// Ensure LogNotifier implements model.EventSink.
var _ model.EventSink = (*LogNotifier)(nil)

// LogNotifier writes status transitions to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each transition via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Emit logs the transition. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Emit(ctx context.Context, ev model.StatusEvent) error {
	args := []any{
		"run_id", ev.RunID,
		"job_id", ev.Job.JobID,
		"company", ev.Job.Company,
		"title", ev.Job.Title,
		"status", ev.Status,
	}
	if ev.Note != "" {
		args = append(args, "note", ev.Note)
	}
	level := slog.LevelInfo
	if ev.Status == model.StatusFailed {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, "job status", args...)
	return nil
}
