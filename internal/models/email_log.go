package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailType for automation.
const (
	EmailTypeInvitation = "invitation"
	EmailTypeReminder   = "reminder"
)

// EmailLogStatus for delivery.
const (
	EmailLogStatusPending = "pending"
	EmailLogStatusSent    = "sent"
	EmailLogStatusFailed  = "failed"
)

// EmailLog records invitation and reminder emails sent to guests.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	EventID        *uuid.UUID `json:"event_id,omitempty"`
	GuestID        *uuid.UUID `json:"guest_id,omitempty"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
