package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is an organizer-defined label for grouping guests (family, work, ...).
type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
