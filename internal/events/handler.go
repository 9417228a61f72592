package events

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Date        *string `json:"date"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
}

// AttachGuestsRequest is the body for POST /events/:id/guests.
type AttachGuestsRequest struct {
	GuestIDs []string `json:"guest_ids" binding:"required,min=1"`
}

// Store is the event persistence the handler needs.
type Store interface {
	Create(ctx context.Context, e *models.Event) error
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Event, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Event, error)
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	AttachGuest(ctx context.Context, eventID, guestID uuid.UUID) error
	DetachGuest(ctx context.Context, eventID, guestID uuid.UUID) error
	ListGuests(ctx context.Context, eventID uuid.UUID) ([]EventGuestRow, error)
}

// GuestChecker verifies guest ownership before attaching.
type GuestChecker interface {
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Guest, error)
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo      Store
	guestRepo GuestChecker
}

// NewHandler creates an events handler.
func NewHandler(repo Store, guestRepo GuestChecker) *Handler {
	return &Handler{repo: repo, guestRepo: guestRepo}
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var date *time.Time
	if req.Date != nil {
		t, err := parseTime(*req.Date)
		if err != nil {
			response.BadRequest(c, "invalid date")
			return
		}
		date = &t
	}
	e := &models.Event{
		UserID:      userID,
		Name:        req.Name,
		Date:        date,
		Description: req.Description,
		Location:    req.Location,
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, e)
}

// List handles GET /events.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	e, err := h.repo.GetByIDForUser(c.Request.Context(), id, userID)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// Update handles PATCH /events/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	e, err := h.repo.GetByIDForUser(c.Request.Context(), id, userID)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Date        *string `json:"date"`
		Description *string `json:"description"`
		Location    *string `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Date != nil {
		t, err := parseTime(*req.Date)
		if err != nil {
			response.BadRequest(c, "invalid date")
			return
		}
		e.Date = &t
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if err := h.repo.Update(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to update event")
		return
	}
	updated, err := h.repo.GetByIDForUser(c.Request.Context(), id, userID)
	if err != nil {
		// update committed; fall back to the in-memory row rather than 200 with no body
		updated = e
	}
	response.OK(c, updated)
}

// Delete handles DELETE /events/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if _, err := h.repo.GetByIDForUser(c.Request.Context(), id, userID); err != nil {
		response.NotFound(c, "event not found")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id, userID); err != nil {
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// AttachGuests handles POST /events/:id/guests. Guests not owned by the caller
// are reported per id and skipped.
func (h *Handler) AttachGuests(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if _, err := h.repo.GetByIDForUser(c.Request.Context(), eventID, userID); err != nil {
		response.NotFound(c, "event not found")
		return
	}
	var req AttachGuestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	attached := make([]uuid.UUID, 0, len(req.GuestIDs))
	var failed []gin.H
	for _, idStr := range req.GuestIDs {
		guestID, err := uuid.Parse(idStr)
		if err != nil {
			failed = append(failed, gin.H{"guest_id": idStr, "error": "invalid guest id"})
			continue
		}
		if _, err := h.guestRepo.GetByIDForUser(c.Request.Context(), guestID, userID); err != nil {
			failed = append(failed, gin.H{"guest_id": idStr, "error": "guest not found"})
			continue
		}
		if err := h.repo.AttachGuest(c.Request.Context(), eventID, guestID); err != nil {
			failed = append(failed, gin.H{"guest_id": idStr, "error": "attach failed"})
			continue
		}
		attached = append(attached, guestID)
	}
	response.OK(c, gin.H{"attached": attached, "failed": failed})
}

// ListGuests handles GET /events/:id/guests.
func (h *Handler) ListGuests(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if _, err := h.repo.GetByIDForUser(c.Request.Context(), eventID, userID); err != nil {
		response.NotFound(c, "event not found")
		return
	}
	list, err := h.repo.ListGuests(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to list event guests")
		return
	}
	response.OK(c, list)
}

// DetachGuest handles DELETE /events/:id/guests/:guestId.
func (h *Handler) DetachGuest(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	guestID, err := uuid.Parse(c.Param("guestId"))
	if err != nil {
		response.BadRequest(c, "invalid guest id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if _, err := h.repo.GetByIDForUser(c.Request.Context(), eventID, userID); err != nil {
		response.NotFound(c, "event not found")
		return
	}
	if err := h.repo.DetachGuest(c.Request.Context(), eventID, guestID); err != nil {
		response.Internal(c, "failed to detach guest")
		return
	}
	response.NoContent(c)
}
