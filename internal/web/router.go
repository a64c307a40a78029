package web

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/run-o/talehopper/internal/config"
	"github.com/run-o/talehopper/internal/engine"
	"github.com/run-o/talehopper/internal/feedback"
	"github.com/run-o/talehopper/internal/storage"
)

// NewRouter assembles the HTTP front door: CORS, request IDs, request
// logging, panic recovery and per-IP rate limits around the story and
// feedback handlers. redisStore may be nil; limits then fall back to
// in-memory buckets.
func NewRouter(
	cfg *config.Config,
	storyEngine *engine.StoryEngine,
	feedbackService *feedback.Service,
	redisStore *storage.RedisStore,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoveryMiddleware(logger))
	r.Use(corsMiddleware)

	limits := newRateLimiter(redisStore, logger)
	storyHandlers := NewStoryHandlers(storyEngine, logger)
	feedbackHandlers := NewFeedbackHandlers(feedbackService, logger)

	r.Get("/healthz", HealthCheck)
	r.Route("/api", func(r chi.Router) {
		r.With(limits.Middleware("story", cfg.RateLimit.Story)).
			Post("/story/generate", storyHandlers.GenerateStory)
		r.With(limits.Middleware("feedback", cfg.RateLimit.Feedback)).
			Post("/feedback", feedbackHandlers.SubmitFeedback)
	})

	return r
}
