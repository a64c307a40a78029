package providers

import (
	"context"

	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"

	"github.com/run-o/talehopper/internal/config"
)

// Pipeline runs a text-generation model inside this process.
type Pipeline interface {
	Generate(prompt string, maxNewTokens int, temperature float64) (string, error)
}

const (
	defaultMaxNewTokens = 300
	defaultTemperature  = 0.8
	defaultLocalWorkers = 2
)

// LocalProvider runs a Pipeline on a bounded worker pool so CPU-bound
// generation never stalls the request-handling goroutines.
type LocalProvider struct {
	pipeline Pipeline
	workers  *semaphore.Weighted
	inFlight *atomic.Int64

	maxNewTokens int
	temperature  float64
}

func NewLocalProvider(cfg config.LocalConfig, pipeline Pipeline) *LocalProvider {
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = defaultLocalWorkers
	}
	maxNewTokens := cfg.MaxNewTokens
	if maxNewTokens <= 0 {
		maxNewTokens = defaultMaxNewTokens
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	return &LocalProvider{
		pipeline:     pipeline,
		workers:      semaphore.NewWeighted(int64(workers)),
		inFlight:     atomic.NewInt64(0),
		maxNewTokens: maxNewTokens,
		temperature:  temperature,
	}
}

// InFlight reports how many generations are currently running.
func (p *LocalProvider) InFlight() int64 { return p.inFlight.Load() }

func (p *LocalProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := p.workers.Acquire(ctx, 1); err != nil {
		return "", &ProviderError{Method: "local", Err: err}
	}

	type result struct {
		text string
		err  error
	}

	// The pipeline runs off the request goroutine: a disconnecting
	// caller abandons the wait while the worker slot stays held until
	// the model actually finishes, keeping the pool bounded.
	p.inFlight.Inc()
	resCh := make(chan result, 1)
	go func() {
		defer p.workers.Release(1)
		defer p.inFlight.Dec()
		text, err := p.pipeline.Generate(systemPrompt+"\n\n"+prompt, p.maxNewTokens, p.temperature)
		resCh <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", &ProviderError{Method: "local", Err: ctx.Err()}
	case res := <-resCh:
		if res.err != nil {
			return "", &ProviderError{Method: "local", Err: res.err}
		}
		return res.text, nil
	}
}
