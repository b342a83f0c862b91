// Package runner owns the single-flight run: login, discovery and one wizard
// per discovered job, with every status transition sent to the sinks.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/amishk599/easyapply/internal/browser"
	"github.com/amishk599/easyapply/internal/id"
	"github.com/amishk599/easyapply/internal/model"
)

// NoteAlreadyApplied is the outcome note for jobs applied to in an earlier run.
const NoteAlreadyApplied = "Already applied"

// NoteRunCancelled is the outcome note for jobs never reached because the run
// context ended.
const NoteRunCancelled = "Run cancelled"

var tracer = otel.Tracer("github.com/amishk599/easyapply/internal/runner")

// Authenticator signs the page in.
type Authenticator interface {
	Login(ctx context.Context, page browser.Page, creds model.Credentials) error
}

// Discoverer lists the jobs to apply to.
type Discoverer interface {
	Discover(ctx context.Context, page browser.Page, filters model.SearchFilters) ([]model.JobSummary, error)
}

// Applier drives one job's wizard to a terminal outcome.
type Applier interface {
	Apply(ctx context.Context, page browser.Page, job model.JobSummary, deadline time.Time) model.Outcome
}

// AppliedChecker reports whether a job was applied to before.
type AppliedChecker interface {
	HasApplied(ctx context.Context, jobID string) (bool, error)
}

// Pacer blocks until the next application to host may start.
type Pacer interface {
	Wait(ctx context.Context, host string) error
}

// Deps are the collaborators of a Coordinator. History and Pacer are optional.
type Deps struct {
	Launcher    browser.Launcher
	Credentials model.CredentialSource
	Auth        Authenticator
	Discovery   Discoverer
	Wizard      Applier
	Sink        model.EventSink
	History     AppliedChecker
	Pacer       Pacer
}

// Options bound a run.
type Options struct {
	SiteBaseURL string
	JobBudget   time.Duration
}

// Coordinator admits at most one run at a time.
type Coordinator struct {
	deps   Deps
	opts   Options
	host   string
	base   context.Context
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// NewCoordinator creates a Coordinator. Runs begun by Start use base as their
// context, so cancelling base tears the browser down.
func NewCoordinator(base context.Context, deps Deps, opts Options, logger *slog.Logger) *Coordinator {
	host := opts.SiteBaseURL
	if u, err := url.Parse(opts.SiteBaseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return &Coordinator{
		deps:   deps,
		opts:   opts,
		host:   host,
		base:   base,
		logger: logger,
		now:    time.Now,
	}
}

// Running reports whether a run holds the gate.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Coordinator) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.running = true
	c.wg.Add(1)
	return true
}

func (c *Coordinator) release() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
	c.wg.Done()
}

// Start begins a run in the background. It returns false, without side
// effects, when a run is already active.
func (c *Coordinator) Start(filters model.SearchFilters) bool {
	if !c.acquire() {
		return false
	}
	go func() {
		defer c.release()
		if err := c.execute(c.base, filters); err != nil {
			c.logger.Error("run failed", "error", err)
		}
	}()
	return true
}

// Run executes a run on the calling goroutine. It returns model.ErrRunActive
// when another run holds the gate.
func (c *Coordinator) Run(ctx context.Context, filters model.SearchFilters) error {
	if !c.acquire() {
		return model.ErrRunActive
	}
	defer c.release()
	return c.execute(ctx, filters)
}

// Wait blocks until no run is in flight.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// execute is the run body. A panic is recovered and returned as an error.
func (c *Coordinator) execute(ctx context.Context, filters model.SearchFilters) (err error) {
	runID := id.New()
	logger := c.logger.With("run_id", runID)

	ctx, span := tracer.Start(ctx, "run", trace.WithAttributes(attribute.Int64("run.id", runID)))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("run panicked", "panic", r)
			err = fmt.Errorf("run %d panicked: %v", runID, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	creds := c.deps.Credentials.Credentials()
	if !creds.Complete() {
		return model.ErrMissingCredentials
	}

	started := c.now()
	logger.Info("run started", "max_jobs", filters.Limit(), "skip_applied", filters.SkipApplied)

	session, err := c.deps.Launcher.Launch(ctx)
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Warn("closing browser failed", "error", cerr)
		}
	}()
	page := session.Page()

	if err := c.deps.Auth.Login(ctx, page, creds); err != nil {
		return fmt.Errorf("run %d: %w", runID, err)
	}

	jobs, err := c.deps.Discovery.Discover(ctx, page, filters)
	if err != nil {
		return fmt.Errorf("run %d: discover jobs: %w", runID, err)
	}
	logger.Info("jobs discovered", "count", len(jobs))
	span.SetAttributes(attribute.Int("run.discovered", len(jobs)))

	counts := make(map[model.Status]int)
	for _, job := range jobs {
		out := c.applyOne(ctx, logger, runID, page, job, filters)
		counts[out.Status]++
	}

	logger.Info("run finished",
		"discovered", len(jobs),
		"applied", counts[model.StatusApplied],
		"skipped", counts[model.StatusSkipped],
		"failed", counts[model.StatusFailed],
		"elapsed", c.now().Sub(started).Round(time.Second).String(),
	)
	return nil
}

// applyOne takes job to exactly one terminal outcome and emits it.
func (c *Coordinator) applyOne(ctx context.Context, logger *slog.Logger, runID int64, page browser.Page, job model.JobSummary, filters model.SearchFilters) model.Outcome {
	ctx, span := tracer.Start(ctx, "apply", trace.WithAttributes(
		attribute.String("job.id", job.JobID),
		attribute.String("job.company", job.Company),
	))
	defer span.End()

	out := c.decide(ctx, logger, runID, page, job, filters)
	c.emit(ctx, logger, runID, job, out.Status, out.Note)
	span.SetAttributes(attribute.String("job.status", string(out.Status)))
	if out.Status == model.StatusFailed {
		span.SetStatus(codes.Error, out.Note)
	}
	return out
}

func (c *Coordinator) decide(ctx context.Context, logger *slog.Logger, runID int64, page browser.Page, job model.JobSummary, filters model.SearchFilters) model.Outcome {
	skip := func(note string) model.Outcome {
		return model.Outcome{JobID: job.JobID, Status: model.StatusSkipped, Note: note}
	}

	if ctx.Err() != nil {
		return skip(NoteRunCancelled)
	}
	if c.deps.Pacer != nil {
		if err := c.deps.Pacer.Wait(ctx, c.host); err != nil {
			return skip(NoteRunCancelled)
		}
	}

	if filters.SkipApplied && c.deps.History != nil {
		applied, err := c.deps.History.HasApplied(ctx, job.JobID)
		if err != nil {
			logger.Warn("checking application history failed", "job_id", job.JobID, "error", err)
		} else if applied {
			return skip(NoteAlreadyApplied)
		}
	}

	c.emit(ctx, logger, runID, job, model.StatusProcessing, "")
	deadline := c.now().Add(c.opts.JobBudget)
	return c.deps.Wizard.Apply(ctx, page, job, deadline)
}

// emit delivers one transition. Sink failures never abort the run.
func (c *Coordinator) emit(ctx context.Context, logger *slog.Logger, runID int64, job model.JobSummary, status model.Status, note string) {
	ev := model.StatusEvent{
		RunID:  runID,
		Job:    job,
		Status: status,
		Note:   note,
		At:     c.now(),
	}
	// Terminal events are still recorded when the run context has ended.
	if err := c.deps.Sink.Emit(context.WithoutCancel(ctx), ev); err != nil {
		logger.Warn("delivering status event failed", "job_id", job.JobID, "status", status, "error", err)
	}
}
