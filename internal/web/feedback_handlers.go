package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/run-o/talehopper/internal/feedback"
)

const maxFeedbackLength = 5000

// FeedbackHandlers handles user feedback submissions.
type FeedbackHandlers struct {
	service *feedback.Service
	logger  *slog.Logger
}

func NewFeedbackHandlers(service *feedback.Service, logger *slog.Logger) *FeedbackHandlers {
	return &FeedbackHandlers{service: service, logger: logger}
}

type FeedbackRequest struct {
	Message string `json:"message"`
	// Gathering the feedback matters more than the address, so the
	// email is a plain unvalidated string.
	Email string `json:"email,omitempty"`
}

type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SubmitFeedback accepts a free-text feedback message.
func (h *FeedbackHandlers) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "Feedback message cannot be empty")
		return
	}
	if len(message) > maxFeedbackLength {
		writeError(w, http.StatusBadRequest, "Feedback message too long (max 5000 characters)")
		return
	}

	if err := h.service.Submit(r.Context(), message, req.Email); err != nil {
		h.logger.Error("feedback submission failed",
			"error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "Failed to send feedback. Please try again later.")
		return
	}

	writeJSON(w, http.StatusOK, FeedbackResponse{
		Success: true,
		Message: "Thank you for your feedback! We'll review it soon.",
	})
}
