// Package wizard drives one job's multi-step quick-apply form to a terminal
// outcome under a deadline.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/easyapply/internal/browser"
	"github.com/amishk599/easyapply/internal/model"
)

// Outcome notes.
const (
	NoteSubmitted  = "Submitted"
	NoteNoEntry    = "No quick-apply entry found"
	NoteOverBudget = "Exceeded per-job time budget"
	NoteStuck      = "Could not continue application flow"
	NoteMaxSteps   = "Exceeded maximum wizard steps"
	NoteCancelled  = "Run cancelled"
)

// DefaultMaxSteps bounds the stepping loop when Options.MaxSteps is unset.
const DefaultMaxSteps = 25

// State is the wizard's position in its lifecycle.
type State int

const (
	Entering State = iota
	Stepping
	Submitted
	Skipped
	Failed
)

func (s State) String() string {
	switch s {
	case Entering:
		return "entering"
	case Stepping:
		return "stepping"
	case Submitted:
		return "submitted"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Status maps a terminal state to the outcome status.
func (s State) Status() model.Status {
	switch s {
	case Submitted:
		return model.StatusApplied
	case Skipped:
		return model.StatusSkipped
	default:
		return model.StatusFailed
	}
}

// Answerer decides an answer for one question. It never fails.
type Answerer interface {
	Answer(ctx context.Context, q model.Question, profile map[string]string) string
}

// ProfileSource supplies the applicant profile handed to the Answerer.
type ProfileSource interface {
	Profile() map[string]string
}

// Selectors locate the wizard's controls.
type Selectors struct {
	Entry      string
	Dismiss    string
	Submit     string
	Next       string
	TextInputs string
	Selects    string
	Radios     string
}

// DefaultSelectors returns the selectors of the supported wizard.
func DefaultSelectors() Selectors {
	return Selectors{
		Entry:      "button.jobs-apply-button",
		Dismiss:    `button[aria-label="Dismiss"]`,
		Submit:     `button[aria-label="Submit application"]`,
		Next:       `button[aria-label="Continue to next step"], button[aria-label="Review your application"]`,
		TextInputs: `input[type="text"], input[type="number"], textarea`,
		Selects:    "select",
		Radios:     `input[type="radio"]`,
	}
}

// Options bound the wizard's waits and loop.
type Options struct {
	BaseURL       string
	EntryTimeout  time.Duration
	ActionTimeout time.Duration
	SettleDelay   time.Duration // pause after each click
	MaxSteps      int
}

// Wizard applies to one job at a time. It holds no per-job state.
type Wizard struct {
	opts     Options
	sel      Selectors
	answerer Answerer
	profile  ProfileSource
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Wizard. profile may be nil.
func New(opts Options, answerer Answerer, profile ProfileSource, logger *slog.Logger) *Wizard {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Wizard{
		opts:     opts,
		sel:      DefaultSelectors(),
		answerer: answerer,
		profile:  profile,
		logger:   logger,
		now:      time.Now,
	}
}

// Apply drives the wizard for job until it is submitted, skipped or failed.
// Once deadline has passed no further fill or click is issued, apart from a
// best-effort dismiss of the open dialog.
func (w *Wizard) Apply(ctx context.Context, page browser.Page, job model.JobSummary, deadline time.Time) model.Outcome {
	state, note, steps := w.run(ctx, page, job, deadline)
	out := model.Outcome{JobID: job.JobID, Status: state.Status(), Note: note}
	w.logger.Info("application finished",
		"job_id", job.JobID,
		"title", job.Title,
		"company", job.Company,
		"state", state,
		"note", note,
		"steps", steps,
	)
	return out
}

// run walks Entering then Stepping and returns the terminal state reached.
func (w *Wizard) run(ctx context.Context, page browser.Page, job model.JobSummary, deadline time.Time) (State, string, int) {
	if w.now().After(deadline) {
		return Skipped, NoteOverBudget, 0
	}
	w.logger.Debug("wizard transition", "job_id", job.JobID, "state", Entering)
	if err := w.enter(page, job); err != nil {
		w.logger.Debug("quick-apply entry unavailable", "job_id", job.JobID, "error", err)
		return Skipped, NoteNoEntry, 0
	}
	w.logger.Debug("wizard transition", "job_id", job.JobID, "state", Stepping)

	for step := 1; ; step++ {
		if step > w.opts.MaxSteps {
			return Failed, NoteMaxSteps, step - 1
		}
		if w.now().After(deadline) {
			w.dismiss(page)
			return Skipped, NoteOverBudget, step - 1
		}
		if ctx.Err() != nil {
			w.dismiss(page)
			return Skipped, NoteCancelled, step - 1
		}

		filled := w.fillStep(ctx, page, job)

		if w.clickIfEnabled(page, w.sel.Submit) {
			_ = sleep(ctx, w.opts.SettleDelay)
			return Submitted, NoteSubmitted, step
		}
		if w.clickIfEnabled(page, w.sel.Next) {
			_ = sleep(ctx, w.opts.SettleDelay)
			continue
		}
		if filled > 0 {
			// Controls may enable once the new values validate.
			continue
		}

		w.logger.Debug("no way forward", "job_id", job.JobID, "step", step, "error", model.ErrFlowUnrecognized)
		return Failed, NoteStuck, step
	}
}

func (w *Wizard) enter(page browser.Page, job model.JobSummary) error {
	if err := page.Navigate(fmt.Sprintf("%s/jobs/view/%s", w.opts.BaseURL, job.JobID)); err != nil {
		return err
	}
	entry, err := page.WaitFor(w.sel.Entry, w.opts.EntryTimeout)
	if err != nil {
		return err
	}
	return entry.Click(w.opts.ActionTimeout)
}

func (w *Wizard) dismiss(page browser.Page) {
	if el, ok := browser.First(page, w.sel.Dismiss); ok {
		_ = el.Click(w.opts.ActionTimeout)
	}
}

// clickIfEnabled clicks the first match of selector when it is enabled.
func (w *Wizard) clickIfEnabled(page browser.Page, selector string) bool {
	el, ok := browser.First(page, selector)
	if !ok {
		return false
	}
	enabled, err := el.Enabled()
	if err != nil || !enabled {
		return false
	}
	if err := el.Click(w.opts.ActionTimeout); err != nil {
		w.logger.Warn("click failed", "selector", selector, "error", err)
		return false
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
