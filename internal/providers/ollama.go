package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/run-o/talehopper/internal/config"
)

const defaultOllamaTimeout = 60 * time.Second

// OllamaProvider posts the prompt to a local Ollama-style generation
// endpoint with a bounded timeout.
type OllamaProvider struct {
	httpClient *http.Client
	url        string
	model      string
}

func NewOllamaProvider(cfg config.OllamaConfig) *OllamaProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultOllamaTimeout
	}

	return &OllamaProvider{
		httpClient: &http.Client{Timeout: timeout},
		url:        cfg.URL,
		model:      cfg.Model,
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	// Pointer so an absent field is distinguishable from an empty one.
	Response *string `json:"response"`
}

func (p *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  p.model,
		System: systemPrompt,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", &ProviderError{Method: "ollama", Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", &ProviderError{Method: "ollama", Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Method: "ollama", Err: fmt.Errorf("network error: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Method: "ollama", Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Method: "ollama", Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))}
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &ProviderError{Method: "ollama", Err: fmt.Errorf("malformed response body: %w", err)}
	}
	if parsed.Response == nil {
		return "", &ProviderError{Method: "ollama", Err: errors.New("response field missing")}
	}

	return *parsed.Response, nil
}
