package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/easyapply/internal/model"
)

func chatBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	}
}

func makeTestServer(t *testing.T, statusCode int, body any, calls *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			*calls++
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRequest() CompletionRequest {
	return CompletionRequest{
		APIKey:      "test-key",
		Model:       "test-model",
		System:      systemPrompt,
		User:        `{"question":"q"}`,
		Temperature: temperature,
	}
}

func TestComplete_Success(t *testing.T) {
	srv := makeTestServer(t, http.StatusOK, chatBody("Yes, authorized"), nil)

	provider := NewOpenAIProvider(srv.URL+"/", 5*time.Second, srv.Client())
	got, err := provider.Complete(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Yes, authorized" {
		t.Errorf("got %q, want %q", got, "Yes, authorized")
	}
}

func TestComplete_HTTPErrorIsNotRetried(t *testing.T) {
	calls := 0
	srv := makeTestServer(t, http.StatusInternalServerError, map[string]any{
		"error": map[string]string{"message": "boom", "type": "server_error"},
	}, &calls)

	provider := NewOpenAIProvider(srv.URL+"/", 5*time.Second, srv.Client())
	_, err := provider.Complete(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error on 5xx response")
	}

	var extErr *model.ExternalServiceError
	if !errors.As(err, &extErr) {
		t.Fatalf("error type = %T, want *model.ExternalServiceError", err)
	}
	if extErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", extErr.StatusCode)
	}
	if calls != 1 {
		t.Errorf("server called %d times, want exactly 1", calls)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	body := chatBody("")
	body["choices"] = []any{}
	srv := makeTestServer(t, http.StatusOK, body, nil)

	provider := NewOpenAIProvider(srv.URL+"/", 5*time.Second, srv.Client())
	_, err := provider.Complete(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error when the service returns no choices")
	}
}

func TestComplete_SendsRequestContract(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatBody("ok"))
	}))
	t.Cleanup(srv.Close)

	provider := NewOpenAIProvider(srv.URL+"/", 5*time.Second, srv.Client())
	if _, err := provider.Complete(context.Background(), testRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want Bearer test-key", gotAuth)
	}
	if !strings.HasSuffix(gotPath, "/chat/completions") {
		t.Errorf("path = %q, want suffix /chat/completions", gotPath)
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("model = %v, want test-model", gotBody["model"])
	}
	if gotBody["temperature"] != 0.2 {
		t.Errorf("temperature = %v, want 0.2", gotBody["temperature"])
	}
	msgs, ok := gotBody["messages"].([]any)
	if !ok || len(msgs) != 2 {
		t.Fatalf("messages = %v, want 2 entries", gotBody["messages"])
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" || first["content"] != systemPrompt {
		t.Errorf("system message = %v", first)
	}
}
