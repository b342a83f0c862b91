// Package discovery turns search filters into an ordered, bounded list of
// job summaries read from the search results view.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/easyapply/internal/browser"
	"github.com/amishk599/easyapply/internal/filter"
	"github.com/amishk599/easyapply/internal/model"
)

const (
	defaultPosition = "Software Engineer"
	defaultLocation = "United States"
)

// Selectors locate the parts of one result card.
type Selectors struct {
	Card     string
	Link     string
	Title    string
	Company  string
	Location string
}

// DefaultSelectors returns the selectors of the supported results view.
func DefaultSelectors() Selectors {
	return Selectors{
		Card:     "li.jobs-search-results__list-item",
		Link:     "a.job-card-container__link",
		Title:    "strong",
		Company:  ".artdeco-entity-lockup__subtitle",
		Location: ".job-card-container__metadata-item",
	}
}

// Discoverer reads job cards from the search results.
type Discoverer struct {
	baseURL     string
	settleDelay time.Duration
	selectors   Selectors
	logger      *slog.Logger
}

// NewDiscoverer creates a Discoverer for the site at baseURL. settleDelay is
// waited after the results load.
func NewDiscoverer(baseURL string, settleDelay time.Duration, logger *slog.Logger) *Discoverer {
	return &Discoverer{
		baseURL:     strings.TrimRight(baseURL, "/"),
		settleDelay: settleDelay,
		selectors:   DefaultSelectors(),
		logger:      logger,
	}
}

// SearchURL builds the results URL for filters.
func SearchURL(baseURL string, filters model.SearchFilters) string {
	positions := filters.Positions
	if len(positions) == 0 {
		positions = []string{defaultPosition}
	}
	locations := filters.Locations
	if len(locations) == 0 {
		locations = []string{defaultLocation}
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	b.WriteString("/jobs/search/?keywords=")
	b.WriteString(joinEscaped(positions))
	b.WriteString("&location=")
	b.WriteString(joinEscaped(locations))
	if filters.RemoteOnly {
		b.WriteString("&f_WT=2")
	}
	if filters.EasyApplyOnly {
		b.WriteString("&f_AL=true")
	}
	return b.String()
}

func joinEscaped(terms []string) string {
	escaped := make([]string, len(terms))
	for i, t := range terms {
		escaped[i] = url.QueryEscape(t)
	}
	return strings.Join(escaped, "+")
}

// Discover navigates to the results for filters and returns at most
// filters.Limit() jobs in presentation order. A navigation failure is fatal
// to the run; a missing card field never is.
func (d *Discoverer) Discover(ctx context.Context, page browser.Page, filters model.SearchFilters) ([]model.JobSummary, error) {
	target := SearchURL(d.baseURL, filters)
	if err := page.Navigate(target); err != nil {
		return nil, fmt.Errorf("open search results: %w", err)
	}
	if err := sleep(ctx, d.settleDelay); err != nil {
		return nil, err
	}

	cards, err := page.Locate(d.selectors.Card)
	if err != nil {
		return nil, fmt.Errorf("locate result cards: %w", err)
	}

	keep := filter.NewKeywordFilter(filters.Keywords)
	limit := filters.Limit()
	jobs := make([]model.JobSummary, 0, min(limit, len(cards)))
	for i, card := range cards {
		if len(jobs) >= limit {
			break
		}
		job := d.readCard(card, i)
		if !keep.Match(job) {
			d.logger.Debug("job filtered out", "job_id", job.JobID, "title", job.Title)
			continue
		}
		jobs = append(jobs, job)
	}

	d.logger.Info("discovered jobs", "cards", len(cards), "kept", len(jobs), "limit", limit)
	return jobs, nil
}

func (d *Discoverer) readCard(card browser.Element, index int) model.JobSummary {
	job := model.JobSummary{
		JobID:    strconv.Itoa(index),
		Title:    browser.TextOf(card, d.selectors.Title),
		Company:  browser.TextOf(card, d.selectors.Company),
		Location: browser.TextOf(card, d.selectors.Location),
	}
	if link, ok := browser.First(card, d.selectors.Link); ok {
		if href, _, err := link.Attr("href"); err == nil {
			if id := jobIDFromHref(href); id != "" {
				job.JobID = id
			}
		}
	}
	return job
}

// jobIDFromHref extracts the currentJobId query value up to the next '&'.
func jobIDFromHref(href string) string {
	_, after, found := strings.Cut(href, "currentJobId=")
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(after, "&")
	return id
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
