package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/amishk599/easyapply/internal/browser"
	"github.com/amishk599/easyapply/internal/model"
)

const (
	defaultTextPrompt   = "Application question"
	defaultSelectPrompt = "Select best matching option"
)

// fillStep answers every unanswered control on the current page once, in
// document order, and returns how many controls it changed. Per-field errors
// are logged and skipped.
func (w *Wizard) fillStep(ctx context.Context, page browser.Page, job model.JobSummary) int {
	var profile map[string]string
	if w.profile != nil {
		profile = w.profile.Profile()
	}

	filled := 0
	filled += w.fillTextInputs(ctx, page, job, profile)
	filled += w.fillSelects(ctx, page, job, profile)
	filled += w.fillRadios(page, job)
	return filled
}

func (w *Wizard) fillTextInputs(ctx context.Context, page browser.Page, job model.JobSummary, profile map[string]string) int {
	inputs, err := page.Locate(w.sel.TextInputs)
	if err != nil {
		w.logger.Warn("locate text inputs", "job_id", job.JobID, "error", err)
		return 0
	}

	n := 0
	for _, el := range inputs {
		value, err := el.Value()
		if err != nil {
			w.logger.Warn("read input value", "job_id", job.JobID, "error", err)
			continue
		}
		if strings.TrimSpace(value) != "" {
			continue
		}

		q := model.Question{Prompt: labelFor(page, el, defaultTextPrompt), Kind: model.QuestionFreeText}
		answer := w.answerer.Answer(ctx, q, profile)
		if err := el.Fill(answer, w.opts.ActionTimeout); err != nil {
			w.logger.Warn("fill input", "job_id", job.JobID, "question", q.Prompt, "error", err)
			continue
		}
		n++
	}
	return n
}

func (w *Wizard) fillSelects(ctx context.Context, page browser.Page, job model.JobSummary, profile map[string]string) int {
	selects, err := page.Locate(w.sel.Selects)
	if err != nil {
		w.logger.Warn("locate selects", "job_id", job.JobID, "error", err)
		return 0
	}

	n := 0
	for _, el := range selects {
		value, err := el.Value()
		if err != nil {
			w.logger.Warn("read select value", "job_id", job.JobID, "error", err)
			continue
		}
		if strings.TrimSpace(value) != "" {
			continue
		}

		labels := optionLabels(el)
		if len(labels) == 0 {
			continue
		}

		q := model.Question{
			Prompt:  labelFor(page, el, defaultSelectPrompt),
			Kind:    model.QuestionSingleChoice,
			Options: labels,
		}
		answer := w.answerer.Answer(ctx, q, profile)
		if err := choose(el, labels, answer); err != nil {
			w.logger.Warn("select option", "job_id", job.JobID, "question", q.Prompt, "error", err)
			continue
		}
		n++
	}
	return n
}

// choose selects the option labelled answer (exact, then case-insensitive).
// Without a match it falls back to DOM index 1 when at least two labels exist,
// index 0 otherwise.
func choose(el browser.Element, labels []string, answer string) error {
	answer = strings.TrimSpace(answer)
	match := ""
	for _, l := range labels {
		if l == answer {
			match = l
			break
		}
	}
	if match == "" {
		for _, l := range labels {
			if strings.EqualFold(l, answer) {
				match = l
				break
			}
		}
	}
	if match != "" {
		if err := el.SelectLabel(match); err == nil {
			return nil
		}
	}

	idx := 0
	if len(labels) >= 2 {
		idx = 1
	}
	return el.SelectIndex(idx)
}

func optionLabels(el browser.Element) []string {
	opts, err := el.Locate("option")
	if err != nil {
		return nil
	}
	labels := make([]string, 0, len(opts))
	for _, o := range opts {
		text, err := o.Text()
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			labels = append(labels, text)
		}
	}
	return labels
}

// fillRadios checks the first radio of every group that has nothing checked.
// Radios group by name; an unnamed radio is a group of its own.
func (w *Wizard) fillRadios(page browser.Page, job model.JobSummary) int {
	radios, err := page.Locate(w.sel.Radios)
	if err != nil {
		w.logger.Warn("locate radios", "job_id", job.JobID, "error", err)
		return 0
	}

	type group struct {
		first   browser.Element
		checked bool
	}
	var order []string
	groups := make(map[string]*group)
	for i, r := range radios {
		name, ok, _ := r.Attr("name")
		if !ok || name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		g, seen := groups[name]
		if !seen {
			g = &group{first: r}
			groups[name] = g
			order = append(order, name)
		}
		if checked, err := r.Checked(); err == nil && checked {
			g.checked = true
		}
	}

	n := 0
	for _, name := range order {
		g := groups[name]
		if g.checked {
			continue
		}
		if err := g.first.Check(w.opts.ActionTimeout); err != nil {
			w.logger.Warn("check radio", "job_id", job.JobID, "group", name, "error", err)
			continue
		}
		n++
	}
	return n
}

// labelFor resolves a control's question text: aria-label, then the text of
// its label[for=id], then the id itself, then def.
func labelFor(page browser.Page, el browser.Element, def string) string {
	if aria, ok, err := el.Attr("aria-label"); err == nil && ok && strings.TrimSpace(aria) != "" {
		return browser.Collapse(aria)
	}
	id, ok, err := el.Attr("id")
	if err != nil || !ok || id == "" {
		return def
	}
	if text := browser.TextOf(page, fmt.Sprintf("label[for=%q]", id)); text != "" {
		return text
	}
	return id
}
