package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/run-o/talehopper/internal/models"
	"github.com/run-o/talehopper/internal/prompts"
	"github.com/run-o/talehopper/internal/providers"
	"github.com/run-o/talehopper/internal/stages"
)

// TurnResult is the outcome of one story turn: the new paragraph, the
// choices for the next step and the stage plan the caller must echo
// back on its next request.
type TurnResult struct {
	Paragraph string
	Choices   []string
	StagePlan map[string]int
}

// StoryEngine orchestrates one story turn end to end: resolve the
// stage plan, compile the prompt, dispatch it to the configured
// provider and extract the structured result. It holds no per-story
// state; everything is recomputed from the caller-supplied history, so
// concurrent turns never contend beyond the shared provider handle.
type StoryEngine struct {
	provider providers.Provider
	logger   *slog.Logger

	// rand.Rand is not safe for concurrent use; plan generation is the
	// only place that draws from it.
	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*StoryEngine)

// WithRand injects the entropy source used for stage plan generation.
func WithRand(rng *rand.Rand) Option {
	return func(e *StoryEngine) { e.rng = rng }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *StoryEngine) { e.logger = logger }
}

func NewStoryEngine(provider providers.Provider, opts ...Option) *StoryEngine {
	e := &StoryEngine{
		provider: provider,
		logger:   slog.Default(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateTurn produces the next paragraph of the story described by
// req. Either a fully valid result is returned or the call fails as a
// whole; there is no partial result and no automatic retry.
func (e *StoryEngine) GenerateTurn(ctx context.Context, req *models.StoryRequest) (*TurnResult, error) {
	plan := e.resolvePlan(req.Prompt.Length, req.StagePlan)

	step := len(req.History) + 1
	stage := plan.StageForStep(step)
	prompt := prompts.BuildStoryPrompt(req.Prompt, req.History, req.Choice, stages.Guidance(stage))

	e.logger.Debug("dispatching story turn",
		"step", step, "stage", stage.String(), "prompt_bytes", len(prompt))

	raw, err := e.provider.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("story generation failed: %w", err)
	}

	paragraph, choices, err := ExtractStoryJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("story generation failed: %w", err)
	}

	// Final turn: the contract guarantees an empty choice list once the
	// story reaches its target length, even if the model proposed more.
	if len(req.History) >= req.Prompt.Length-1 {
		choices = []string{}
	}

	return &TurnResult{
		Paragraph: paragraph,
		Choices:   choices,
		StagePlan: plan.Strings(),
	}, nil
}

func (e *StoryEngine) resolvePlan(totalSteps int, existing map[string]int) stages.Plan {
	e.mu.Lock()
	defer e.mu.Unlock()
	return stages.ResolvePlan(totalSteps, existing, e.rng)
}
