package model

import (
	"context"
	"time"
)

// Status is the lifecycle state of a job within a run.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusApplied    Status = "applied"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether s is a final outcome that is never revised.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApplied, StatusSkipped, StatusFailed:
		return true
	}
	return false
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusQueued || s == StatusProcessing || s.IsTerminal()
}

// JobSummary is one posting as presented by the search results view.
type JobSummary struct {
	JobID    string `json:"job_id"` // site-assigned, positional fallback when absent
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
}

// SearchFilters are supplied per run and read-only for its duration.
type SearchFilters struct {
	Positions     []string `json:"positions" yaml:"positions"`
	Locations     []string `json:"locations" yaml:"locations"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
	RemoteOnly    bool     `json:"remote_only" yaml:"remote_only"`
	EasyApplyOnly bool     `json:"easy_apply_only" yaml:"easy_apply_only"`
	MaxJobsPerRun int      `json:"max_jobs_per_run" yaml:"max_jobs_per_run"`
	SkipApplied   bool     `json:"skip_applied" yaml:"skip_applied"`
}

// DefaultMaxJobsPerRun is used when a filter set leaves MaxJobsPerRun unset.
const DefaultMaxJobsPerRun = 20

// DefaultSearchFilters returns the filter defaults applied to API payloads.
func DefaultSearchFilters() SearchFilters {
	return SearchFilters{
		EasyApplyOnly: true,
		MaxJobsPerRun: DefaultMaxJobsPerRun,
		SkipApplied:   true,
	}
}

// Limit returns MaxJobsPerRun, or the default when it is not positive.
func (f SearchFilters) Limit() int {
	if f.MaxJobsPerRun <= 0 {
		return DefaultMaxJobsPerRun
	}
	return f.MaxJobsPerRun
}

// Outcome is the terminal result of one job's wizard.
type Outcome struct {
	JobID  string
	Status Status
	Note   string
}

// QuestionKind distinguishes free-text prompts from discrete choices.
type QuestionKind int

const (
	QuestionFreeText QuestionKind = iota
	QuestionSingleChoice
)

// Question is a single form prompt met inside one wizard step.
type Question struct {
	Prompt  string
	Kind    QuestionKind
	Options []string
}

// Credentials authenticate the browser session against the job site.
type Credentials struct {
	Email    string
	Password string
}

// Complete reports whether both fields are present.
func (c Credentials) Complete() bool {
	return c.Email != "" && c.Password != ""
}

// StatusEvent is one status transition of one job, delivered to every sink.
type StatusEvent struct {
	RunID  int64
	Job    JobSummary
	Status Status
	Note   string
	At     time.Time
}

// JobRecord is a persisted outcome row as shown on the dashboard.
type JobRecord struct {
	ID        int64     `json:"id"`
	JobID     string    `json:"job_id"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Location  string    `json:"location"`
	Status    Status    `json:"status"`
	AppliedAt time.Time `json:"applied_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes"`
}

// DashboardStats aggregates outcomes for the dashboard header.
type DashboardStats struct {
	TotalApplied int    `json:"total_applied"`
	AppliedToday int    `json:"applied_today"`
	FailedToday  int    `json:"failed_today"`
	SkippedToday int    `json:"skipped_today"`
	Date         string `json:"date"`
}

// EventSink receives every status transition of a run.
type EventSink interface {
	Emit(ctx context.Context, ev StatusEvent) error
}

// JobFilter decides whether a discovered job is kept.
type JobFilter interface {
	Match(job JobSummary) bool
}

// CredentialSource exposes the current site credentials.
type CredentialSource interface {
	Credentials() Credentials
}
