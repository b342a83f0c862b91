package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/easyapply/internal/model"
)

// Ensure SlackNotifier implements model.EventSink.
var _ model.EventSink = (*SlackNotifier)(nil)

// SlackNotifier posts terminal job outcomes to a Slack channel via Incoming
// Webhooks. Non-terminal transitions are ignored.
type SlackNotifier struct {
	webhookURL  string
	siteBaseURL string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each outcome to Slack.
// siteBaseURL is used to link the job posting.
func NewSlackNotifier(webhookURL, siteBaseURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL:  webhookURL,
		siteBaseURL: strings.TrimRight(siteBaseURL, "/"),
		httpClient:  httpClient,
		logger:      logger,
	}
}

// Emit sends one Block Kit message per terminal outcome. A 429 is retried once
// after Retry-After.
func (s *SlackNotifier) Emit(ctx context.Context, ev model.StatusEvent) error {
	if !ev.Status.IsTerminal() {
		return nil
	}

	body, err := json.Marshal(buildPayload(ev, s.siteBaseURL))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(ctx, body)
	if err != nil {
		return err
	}

	if status == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(retryAfter)
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)

		timer := time.NewTimer(time.Duration(secs) * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("post to slack: %w", ctx.Err())
		case <-timer.C:
		}

		status, _, err = s.post(ctx, body)
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		s.logger.Info("slack message sent", "job_id", ev.Job.JobID, "status", ev.Status, "retried", true)
		return nil
	}

	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Info("slack message sent", "job_id", ev.Job.JobID, "status", ev.Status)
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, body []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, resp.Header.Get("Retry-After"), nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style,omitempty"`
}

var statusEmoji = map[model.Status]string{
	model.StatusApplied: "✅",
	model.StatusSkipped: "⏭️",
	model.StatusFailed:  "❌",
}

func buildPayload(ev model.StatusEvent, siteBaseURL string) slackPayload {
	note := ev.Note
	if note == "" {
		note = "-"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: statusEmoji[ev.Status] + " " + ev.Job.Company + ": " + ev.Job.Title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Status:*\n" + string(ev.Status)},
				{Type: "mrkdwn", Text: "*Location:*\n" + ev.Job.Location},
			},
		},
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Note:* " + note},
		},
	}

	if siteBaseURL != "" && ev.Job.JobID != "" {
		blocks = append(blocks, slackBlock{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "View Posting"},
					URL:   siteBaseURL + "/jobs/view/" + ev.Job.JobID,
					Style: "primary",
				},
			},
		})
	}

	blocks = append(blocks, slackBlock{Type: "divider"})
	return slackPayload{Blocks: blocks}
}
