package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amishk599/easyapply/internal/model"
)

// Fanout delivers every event to each sink in order. One sink failing does
// not stop delivery to the others.
type Fanout struct {
	sinks []model.EventSink
}

// Ensure Fanout implements model.EventSink.
var _ model.EventSink = (*Fanout)(nil)

// NewFanout returns a sink delivering to sinks. Nil entries are dropped.
func NewFanout(sinks ...model.EventSink) *Fanout {
	kept := make([]model.EventSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Fanout{sinks: kept}
}

// Emit returns the joined errors of every failing sink.
func (f *Fanout) Emit(ctx context.Context, ev model.StatusEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Emit(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", s, err))
		}
	}
	return errors.Join(errs...)
}

// Upserter is the part of the outcome store a StoreSink needs.
type Upserter interface {
	Upsert(ctx context.Context, job model.JobSummary, status model.Status, note string) error
}

// StoreSink persists every status transition.
type StoreSink struct {
	store Upserter
}

// NewStoreSink returns a sink writing to store.
func NewStoreSink(store Upserter) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Emit(ctx context.Context, ev model.StatusEvent) error {
	return s.store.Upsert(ctx, ev.Job, ev.Status, ev.Note)
}

// SendTestMessage emits a synthetic terminal event to verify a sink works.
func SendTestMessage(ctx context.Context, sink model.EventSink) error {
	return sink.Emit(ctx, model.StatusEvent{
		Job: model.JobSummary{
			JobID:    "test-001",
			Title:    "Test Notification",
			Company:  "easyapply",
			Location: "Everywhere",
		},
		Status: model.StatusApplied,
		Note:   "Integration verified",
		At:     time.Now(),
	})
}
