package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/easyapply/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleEvent(status model.Status, note string) model.StatusEvent {
	return model.StatusEvent{
		RunID: 42,
		Job: model.JobSummary{
			JobID:    "123",
			Title:    "Backend Engineer",
			Company:  "Acme Corp",
			Location: "Remote, US",
		},
		Status: status,
		Note:   note,
		At:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestSlackNotifier_IgnoresNonTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, "https://jobs.example.com", srv.Client(), discardLogger())

	for _, s := range []model.Status{model.StatusQueued, model.StatusProcessing} {
		if err := n.Emit(context.Background(), sampleEvent(s, "")); err != nil {
			t.Errorf("Emit(%s) = %v, want nil", s, err)
		}
	}
	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_AppliedPayload(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, "https://jobs.example.com/", srv.Client(), discardLogger())

	if err := n.Emit(context.Background(), sampleEvent(model.StatusApplied, "Submitted")); err != nil {
		t.Fatalf("Emit() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if len(payload.Blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(payload.Blocks))
	}
	if got := payload.Blocks[0].Text.Text; got != "✅ Acme Corp: Backend Engineer" {
		t.Errorf("header text = %q", got)
	}
	if got := payload.Blocks[1].Fields[0].Text; got != "*Status:*\napplied" {
		t.Errorf("status field = %q", got)
	}
	if got := payload.Blocks[2].Text.Text; got != "*Note:* Submitted" {
		t.Errorf("note = %q", got)
	}
	if got := payload.Blocks[3].Elements[0].URL; got != "https://jobs.example.com/jobs/view/123" {
		t.Errorf("action URL = %q", got)
	}
	if payload.Blocks[4].Type != "divider" {
		t.Errorf("block[4] type = %q, want divider", payload.Blocks[4].Type)
	}
}

func TestSlackNotifier_NoLinkWithoutBaseURL(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, "", srv.Client(), discardLogger())
	if err := n.Emit(context.Background(), sampleEvent(model.StatusSkipped, "")); err != nil {
		t.Fatalf("Emit() = %v", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(payload.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(payload.Blocks))
	}
	if got := payload.Blocks[2].Text.Text; got != "*Note:* -" {
		t.Errorf("note = %q, want placeholder", got)
	}
}

func TestSlackNotifier_SlackReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, "", srv.Client(), discardLogger())
	if err := n.Emit(context.Background(), sampleEvent(model.StatusFailed, "boom")); err == nil {
		t.Error("expected error on 500, got nil")
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := calls.Add(1)
		if c == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		} else {
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, "", srv.Client(), discardLogger())
	if err := n.Emit(context.Background(), sampleEvent(model.StatusApplied, "")); err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
}

func TestSlackNotifier_RateLimitedCancelled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	n := NewSlackNotifier(srv.URL, "", srv.Client(), discardLogger())
	if err := n.Emit(ctx, sampleEvent(model.StatusApplied, "")); err == nil {
		t.Fatal("expected error when context ends during backoff")
	}
	if c := calls.Load(); c != 1 {
		t.Errorf("expected 1 HTTP call, got %d", c)
	}
}
