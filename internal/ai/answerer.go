package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/easyapply/internal/model"
)

const (
	systemPrompt = "You answer job application screening questions."
	instruction  = "Return only the best answer text for a job application question. " +
		"If options are present, return one exact option value. Keep it concise and truthful."
	temperature = 0.2
)

// Settings exposes the completion credential and model, read on every call.
type Settings interface {
	APIKey() string
	Model() string
}

// Answerer decides an answer for one screening question. It prefers the
// completion provider when a key is configured and falls back to Heuristic.
type Answerer struct {
	provider LLMProvider
	settings Settings
	logger   *slog.Logger
}

// NewAnswerer creates an Answerer. provider may be nil, which disables completions.
func NewAnswerer(provider LLMProvider, settings Settings, logger *slog.Logger) *Answerer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Answerer{
		provider: provider,
		settings: settings,
		logger:   logger,
	}
}

type answerPrompt struct {
	Question    string            `json:"question"`
	Options     []string          `json:"options"`
	Profile     map[string]string `json:"profile"`
	Instruction string            `json:"instruction"`
}

// Answer never fails: any completion error degrades to the heuristic.
func (a *Answerer) Answer(ctx context.Context, q model.Question, profile map[string]string) string {
	if a.provider == nil || a.settings == nil {
		return Heuristic(q)
	}
	key := a.settings.APIKey()
	if key == "" {
		return Heuristic(q)
	}

	answer, err := a.complete(ctx, key, q, profile)
	if err != nil {
		a.logger.Warn("completion failed, using heuristic", "question", q.Prompt, "error", err)
		return Heuristic(q)
	}
	return answer
}

func (a *Answerer) complete(ctx context.Context, key string, q model.Question, profile map[string]string) (string, error) {
	options := q.Options
	if options == nil {
		options = []string{}
	}
	if profile == nil {
		profile = map[string]string{}
	}
	body, err := json.Marshal(answerPrompt{
		Question:    q.Prompt,
		Options:     options,
		Profile:     profile,
		Instruction: instruction,
	})
	if err != nil {
		return "", fmt.Errorf("marshal prompt: %w", err)
	}

	text, err := a.provider.Complete(ctx, CompletionRequest{
		APIKey:      key,
		Model:       a.settings.Model(),
		System:      systemPrompt,
		User:        string(body),
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &model.ExternalServiceError{Err: fmt.Errorf("empty completion")}
	}
	return text, nil
}
