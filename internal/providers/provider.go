package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/run-o/talehopper/internal/config"
)

// systemPrompt frames every request to every backend.
const systemPrompt = "You are a children's storyteller."

// Provider turns a compiled story prompt into raw model text. One
// implementation exists per backend; the active one is selected once
// at startup and shared read-only by all requests.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderError reports a failure from, or misconfiguration of, the
// selected backend.
type ProviderError struct {
	Method string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Method, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Deps carries optional capabilities a provider variant may need.
type Deps struct {
	// Pipeline backs the "local" method. The default binary ships
	// without one; deployments wire their own in at startup.
	Pipeline Pipeline
}

// New builds the provider for the configured method. An unknown method
// is a deployment fault, reported once at startup and never retried.
func New(cfg config.LLMConfig, deps Deps) (Provider, error) {
	switch cfg.Method {
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI), nil
	case "ollama":
		return NewOllamaProvider(cfg.Ollama), nil
	case "local":
		if deps.Pipeline == nil {
			return nil, &ProviderError{Method: cfg.Method, Err: errors.New("no local pipeline wired in")}
		}
		return NewLocalProvider(cfg.Local, deps.Pipeline), nil
	default:
		return nil, &ProviderError{Method: cfg.Method, Err: errors.New("unsupported LLM method")}
	}
}
