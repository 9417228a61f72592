package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a gathering organized by a user. Read-only within the RSVP workflow.
type Event struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	Date        *time.Time `json:"date,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EventGuest links a guest to an event with invitation metadata.
type EventGuest struct {
	EventID      uuid.UUID  `json:"event_id"`
	GuestID      uuid.UUID  `json:"guest_id"`
	InviteSent   bool       `json:"invite_sent"`
	InviteMethod string     `json:"invite_method,omitempty"`
	InviteNotes  string     `json:"invite_notes,omitempty"`
	InviteSentAt *time.Time `json:"invite_sent_at,omitempty"`
	AddedAt      time.Time  `json:"added_at"`
}
