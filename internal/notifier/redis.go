package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/easyapply/internal/model"
)

// Ensure RedisStreamNotifier implements model.EventSink.
var _ model.EventSink = (*RedisStreamNotifier)(nil)

// RedisStreamNotifier appends every status transition to a Redis stream so
// dashboards can follow a run live.
type RedisStreamNotifier struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

// NewRedisStreamNotifier returns a notifier publishing to stream.
func NewRedisStreamNotifier(client *redis.Client, stream string, logger *slog.Logger) *RedisStreamNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStreamNotifier{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// StreamFields flattens ev into stream entry values.
func StreamFields(ev model.StatusEvent) map[string]any {
	return map[string]any{
		"run_id":   ev.RunID,
		"job_id":   ev.Job.JobID,
		"title":    ev.Job.Title,
		"company":  ev.Job.Company,
		"location": ev.Job.Location,
		"status":   string(ev.Status),
		"note":     ev.Note,
		"at":       ev.At.UTC().Format(time.RFC3339Nano),
	}
}

func (n *RedisStreamNotifier) Emit(ctx context.Context, ev model.StatusEvent) error {
	if err := n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		MaxLen: 10000,
		Approx: true,
		Values: StreamFields(ev),
	}).Err(); err != nil {
		return fmt.Errorf("publish status event: %w", err)
	}

	n.logger.DebugContext(ctx, "published status event", "stream", n.stream, "job_id", ev.Job.JobID, "status", ev.Status)
	return nil
}

// Close closes the Redis client.
func (n *RedisStreamNotifier) Close() error {
	return n.client.Close()
}
