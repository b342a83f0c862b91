package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/amishk599/easyapply/internal/model"
)

// OpenAIProvider calls an OpenAI-compatible /chat/completions endpoint.
// A client is built per call because the API key lives in runtime settings
// and may change between calls.
type OpenAIProvider struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewOpenAIProvider creates a provider targeting baseURL. httpClient may be nil.
func NewOpenAIProvider(baseURL string, timeout time.Duration, httpClient *http.Client) *OpenAIProvider {
	return &OpenAIProvider{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// Complete sends one request with SDK retries disabled. Every failure is
// returned as *model.ExternalServiceError.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(req.APIKey),
		option.WithMaxRetries(0),
	}
	if p.baseURL != "" {
		opts = append(opts, option.WithBaseURL(p.baseURL))
	}
	if p.timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(p.timeout))
	}
	if p.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(p.httpClient))
	}
	client := openai.NewClient(opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &model.ExternalServiceError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", &model.ExternalServiceError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &model.ExternalServiceError{Err: fmt.Errorf("no choices in response")}
	}
	return resp.Choices[0].Message.Content, nil
}
