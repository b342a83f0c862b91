package ai

import "context"

// CompletionRequest is one chat completion call with its per-call credentials.
type CompletionRequest struct {
	APIKey      string
	Model       string
	System      string
	User        string
	Temperature float64
}

// LLMProvider sends a single chat completion and returns the first choice's text.
// Implementations must not retry.
type LLMProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
