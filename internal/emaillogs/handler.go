package emaillogs

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/rsvp"
	"github.com/gatherly/backend/pkg/queue"
	"github.com/gatherly/backend/pkg/response"
)

// Handler handles email log HTTP endpoints.
type Handler struct {
	repo           *Repository
	eventRepo      *events.Repository
	issuer         *rsvp.Issuer
	queue          *queue.Queue
	defaultBaseURL string
	logger         *zap.Logger
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository, eventRepo *events.Repository, issuer *rsvp.Issuer, q *queue.Queue, defaultBaseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, issuer: issuer, queue: q, defaultBaseURL: defaultBaseURL, logger: logger}
}

// ListByEvent handles GET /events/:id/emails.
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if _, err := h.eventRepo.GetByIDForUser(c.Request.Context(), eventID, userID); err != nil {
		response.NotFound(c, "event not found")
		return
	}
	logs, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("list email logs failed", zap.Error(err))
		response.Internal(c, "failed to load email logs")
		return
	}
	response.OK(c, logs)
}

// ResendRequest is the body for POST /events/:id/emails/resend.
type ResendRequest struct {
	GuestID string `json:"guest_id" binding:"required,uuid"`
	BaseURL string `json:"base_url"`
}

// Resend handles POST /events/:id/emails/resend. Issues a fresh token for the
// guest and hands the reminder to the background worker; the worker records
// the delivery outcome in email_logs.
func (h *Handler) Resend(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	event, err := h.eventRepo.GetByIDForUser(c.Request.Context(), eventID, userID)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}

	var body ResendRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "guest_id required")
		return
	}
	guestID := uuid.MustParse(body.GuestID)
	baseURL := body.BaseURL
	if baseURL == "" {
		baseURL = h.defaultBaseURL
	}

	guest, msg, err := h.issuer.BuildReminder(c.Request.Context(), event, guestID, baseURL)
	if err != nil {
		switch {
		case errors.Is(err, rsvp.ErrGuestNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, rsvp.ErrNoEmailAddress):
			response.BadRequest(c, err.Error())
		default:
			h.logger.Error("build reminder failed", zap.Error(err))
			response.Internal(c, "failed to build reminder")
		}
		return
	}

	payload := queue.EmailPayload{
		EmailType:      models.EmailTypeReminder,
		EventID:        event.ID,
		GuestID:        guest.ID,
		RecipientEmail: msg.To,
		Subject:        msg.Subject,
		BodyHTML:       msg.HTML,
	}
	if err := h.queue.EnqueueEmail(c.Request.Context(), payload); err != nil {
		h.logger.Error("enqueue reminder failed", zap.Error(err))
		response.Internal(c, "failed to queue reminder")
		return
	}
	response.OK(c, gin.H{"message": "reminder queued", "guest_id": guest.ID})
}
