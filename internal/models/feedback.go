package models

import "time"

// Feedback is one user feedback submission. Stored so submissions are
// never lost when email delivery is unavailable.
type Feedback struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Message   string    `gorm:"type:text" json:"message"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `json:"created_at"`
}
