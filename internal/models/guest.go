package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority is the organizer-assigned importance of a guest.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// GuestStatus is the organizer-tracked attendance status.
type GuestStatus string

const (
	GuestStatusPending   GuestStatus = "pending"
	GuestStatusConfirmed GuestStatus = "confirmed"
	GuestStatusDeclined  GuestStatus = "declined"
)

// RSVPStatus is the guest's own response through an invitation link.
type RSVPStatus string

const (
	RSVPPending  RSVPStatus = "pending"
	RSVPAccepted RSVPStatus = "accepted"
	RSVPDeclined RSVPStatus = "declined"
)

// RSVPDetails is the response payload a guest submits with their RSVP.
type RSVPDetails struct {
	GuestsCount int    `json:"guests_count"`
	Notes       string `json:"notes,omitempty"`
}

// Guest is an invitee record owned by an organizer. RSVP fields are mutated
// only by the RSVP response recorder.
type Guest struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Category    string       `json:"category,omitempty"`
	Priority    Priority     `json:"priority"`
	Status      GuestStatus  `json:"status"`
	RSVPStatus  RSVPStatus   `json:"rsvp_status"`
	RSVPAt      *time.Time   `json:"rsvp_at,omitempty"`
	RSVPDetails *RSVPDetails `json:"rsvp_details,omitempty"`
	InvitedAt   *time.Time   `json:"invited_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// DisplayName returns "First Last", or just the first name when no last name is set.
func (g *Guest) DisplayName() string {
	if g.LastName == "" {
		return g.FirstName
	}
	return g.FirstName + " " + g.LastName
}
