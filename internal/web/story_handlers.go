package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/run-o/talehopper/internal/engine"
	"github.com/run-o/talehopper/internal/models"
)

// StoryHandlers handles story generation requests.
type StoryHandlers struct {
	engine   *engine.StoryEngine
	validate *validator.Validate
	logger   *slog.Logger
}

func NewStoryHandlers(storyEngine *engine.StoryEngine, logger *slog.Logger) *StoryHandlers {
	return &StoryHandlers{
		engine:   storyEngine,
		validate: validator.New(),
		logger:   logger,
	}
}

// GenerateStory serves both ends of a story: a request with only a
// prompt starts a new one, a request with a history and the reader's
// choice continues it. Either way the response carries the next
// paragraph appended to the history, the choices for the next step and
// the stage plan to echo back on the following turn.
func (h *StoryHandlers) GenerateStory(w http.ResponseWriter, r *http.Request) {
	var req models.StoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.History) > 0 && req.Choice == "" {
		writeError(w, http.StatusBadRequest, "Story choice missing.")
		return
	}
	if req.Choice != "" && len(req.History) == 0 {
		writeError(w, http.StatusBadRequest, "Story history missing.")
		return
	}

	result, err := h.engine.GenerateTurn(r.Context(), &req)
	if err != nil {
		h.logger.Error("story generation failed",
			"error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.StoryResponse{
		History:   append(req.History, result.Paragraph),
		Choices:   result.Choices,
		StagePlan: result.StagePlan,
	})
}
