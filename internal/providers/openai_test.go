package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/run-o/talehopper/internal/config"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOpenAIProvider(config.OpenAIConfig{
		BaseURL: server.URL + "/v1",
		APIKey:  "test-key",
		Model:   "test-model",
	})
}

func TestOpenAIGenerate(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	provider := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "a paragraph"}},
			},
		})
	})

	out, err := provider.Generate(context.Background(), "tell me a story")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "a paragraph" {
		t.Fatalf("response = %q", out)
	}
	if captured.Model != "test-model" {
		t.Fatalf("model = %q", captured.Model)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("messages = %v", captured.Messages)
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != systemPrompt {
		t.Fatalf("system message = %v", captured.Messages[0])
	}
	if captured.Messages[1].Role != "user" || captured.Messages[1].Content != "tell me a story" {
		t.Fatalf("user message = %v", captured.Messages[1])
	}
}

func TestOpenAIGenerateAPIError(t *testing.T) {
	provider := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited", "type": "requests"}}`))
	})

	_, err := provider.Generate(context.Background(), "p")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("want ProviderError, got %T: %v", err, err)
	}
	if provErr.Method != "openai" {
		t.Fatalf("method = %q", provErr.Method)
	}
}

func TestOpenAIGenerateNoChoices(t *testing.T) {
	provider := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := provider.Generate(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("want ProviderError, got %T: %v", err, err)
	}
}
