package models

import (
	"time"

	"github.com/google/uuid"
)

// RSVPToken is a time-limited credential embedded in an invitation link. The
// token string is an opaque random identifier; validity is always checked
// against the stored expires_at, never against client-supplied data.
type RSVPToken struct {
	ID        uuid.UUID  `json:"id"`
	Token     string     `json:"token"`
	GuestID   uuid.UUID  `json:"guest_id"`
	EventID   uuid.UUID  `json:"event_id"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
