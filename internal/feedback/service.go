package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/run-o/talehopper/internal/config"
	"github.com/run-o/talehopper/internal/models"
)

const (
	sendgridSendURL = "https://api.sendgrid.com/v3/mail/send"
	sendTimeout     = 15 * time.Second
	emailSubject    = "TaleHopper Feedback"
)

// Store persists feedback submissions; absent when MySQL is not
// configured.
type Store interface {
	SaveFeedback(ctx context.Context, fb *models.Feedback) error
	MarkDelivered(ctx context.Context, id string) error
}

// Service delivers user feedback. Submissions are persisted when a
// store is wired, then emailed via SendGrid when configured; without
// SendGrid the feedback is logged so it is never silently dropped.
type Service struct {
	cfg        config.FeedbackConfig
	httpClient *http.Client
	store      Store
	logger     *slog.Logger
	sendURL    string
}

func NewService(cfg config.FeedbackConfig, store Store, logger *slog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: sendTimeout},
		store:      store,
		logger:     logger,
		sendURL:    sendgridSendURL,
	}
}

// Submit records and delivers one feedback message.
func (s *Service) Submit(ctx context.Context, message, email string) error {
	fb := &models.Feedback{
		ID:        uuid.NewString(),
		Message:   message,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.SaveFeedback(ctx, fb); err != nil {
			s.logger.Warn("failed to persist feedback", "error", err)
		}
	}

	if s.cfg.SendGridAPIKey == "" || s.cfg.EmailFrom == "" || s.cfg.EmailTo == "" {
		s.logger.Info("feedback received (email delivery not configured)",
			"feedback_id", fb.ID, "email", email, "message", message)
		return nil
	}

	if err := s.sendEmail(ctx, fb); err != nil {
		s.logger.Error("failed to send feedback email", "feedback_id", fb.ID, "error", err)
		return err
	}

	if s.store != nil {
		if err := s.store.MarkDelivered(ctx, fb.ID); err != nil {
			s.logger.Warn("failed to mark feedback delivered", "feedback_id", fb.ID, "error", err)
		}
	}
	return nil
}

// SendGrid v3 mail-send payload.
type sgAddress struct {
	Email string `json:"email"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgMail struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

func (s *Service) sendEmail(ctx context.Context, fb *models.Feedback) error {
	payload := sgMail{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: s.cfg.EmailTo}}}},
		From:             sgAddress{Email: s.cfg.EmailFrom},
		Subject:          emailSubject,
		Content:          []sgContent{{Type: "text/html", Value: formatEmailBody(fb)}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.SendGridAPIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SendGrid HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func formatEmailBody(fb *models.Feedback) string {
	userEmail := fb.Email
	if userEmail == "" {
		userEmail = "Not provided"
	}

	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <h2 style="color: #007bff;">New TaleHopper Feedback</h2>
  <div style="background-color: #f8f9fa; padding: 20px; border-radius: 5px;">
    <h3>Feedback Message:</h3>
    <p style="white-space: pre-wrap;">%s</p>
  </div>
  <p><strong>User Email:</strong> %s</p>
  <p><strong>Timestamp:</strong> %s</p>
</body>
</html>`, fb.Message, userEmail, fb.CreatedAt.Format("2006-01-02 15:04:05 UTC"))
}
