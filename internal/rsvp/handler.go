package rsvp

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

// SendInvitesRequest is the body for POST /events/:id/invites.
type SendInvitesRequest struct {
	GuestIDs []string `json:"guest_ids" binding:"required,min=1"`
	BaseURL  string   `json:"base_url"`
}

// RespondRequest is the body for POST /rsvp/:token.
type RespondRequest struct {
	Attending   *bool  `json:"attending" binding:"required"`
	GuestsCount int    `json:"guests_count"`
	Notes       string `json:"notes"`
}

// FeedPublisher pushes RSVP activity to the organizer's live dashboard feed.
type FeedPublisher interface {
	PublishToOrganizer(userID uuid.UUID, event string, payload interface{})
}

// ResponseStore is the token access the resolver and recorder need.
type ResponseStore interface {
	GetByToken(ctx context.Context, tokenStr string) (*models.RSVPToken, error)
	RecordResponse(ctx context.Context, tokenID, guestID uuid.UUID, status models.RSVPStatus, details models.RSVPDetails) error
}

// GuestReader loads the guest a token points at.
type GuestReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Guest, error)
}

// EventReader loads events for the RSVP endpoints.
type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Event, error)
}

// Handler handles the three RSVP endpoints: issue, resolve, respond.
type Handler struct {
	repo           ResponseStore
	guestRepo      GuestReader
	eventRepo      EventReader
	issuer         *Issuer
	feed           FeedPublisher // nil when realtime is disabled
	defaultBaseURL string
	logger         *zap.Logger
}

// NewHandler creates an RSVP handler.
func NewHandler(repo ResponseStore, guestRepo GuestReader, eventRepo EventReader, issuer *Issuer, feed FeedPublisher, defaultBaseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:           repo,
		guestRepo:      guestRepo,
		eventRepo:      eventRepo,
		issuer:         issuer,
		feed:           feed,
		defaultBaseURL: defaultBaseURL,
		logger:         logger,
	}
}

// SendInvites handles POST /events/:id/invites. The event must belong to the
// authenticated organizer.
func (h *Handler) SendInvites(c *gin.Context) {
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

	var req SendInvitesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	baseURL := req.BaseURL
	if baseURL == "" {
		baseURL = h.defaultBaseURL
	}

	guestIDs := make([]uuid.UUID, 0, len(req.GuestIDs))
	var failed []FailedInvite
	for _, idStr := range req.GuestIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			// keep malformed ids visible in the result rather than 400ing the batch
			failed = append(failed, FailedInvite{GuestID: idStr, Error: "invalid guest id"})
			continue
		}
		guestIDs = append(guestIDs, id)
	}

	result := h.issuer.SendInvites(c.Request.Context(), event, guestIDs, baseURL)
	result.Failed = append(result.Failed, failed...)
	response.OK(c, result)
}

// rsvpView is the combined guest/event payload for the invitation page.
type rsvpView struct {
	Guest struct {
		ID          uuid.UUID           `json:"id"`
		Name        string              `json:"name"`
		Email       string              `json:"email,omitempty"`
		RSVPStatus  models.RSVPStatus   `json:"rsvp_status"`
		RSVPDetails *models.RSVPDetails `json:"rsvp_details,omitempty"`
	} `json:"guest"`
	Event struct {
		ID          uuid.UUID  `json:"id"`
		Name        string     `json:"name"`
		Date        *time.Time `json:"date,omitempty"`
		Description string     `json:"description,omitempty"`
	} `json:"event"`
	Token string `json:"token"`
}

// loadForToken re-resolves a token: existence, expiry, then guest and event.
// Shared by Resolve and Respond so both paths apply identical checks.
func (h *Handler) loadForToken(c *gin.Context) (*models.RSVPToken, *models.Guest, *models.Event, bool) {
	tokenStr := c.Param("token")
	if tokenStr == "" {
		response.BadRequest(c, "token required")
		return nil, nil, nil, false
	}
	tok, err := h.repo.GetByToken(c.Request.Context(), tokenStr)
	if err != nil {
		h.logger.Error("token lookup failed", zap.Error(err))
		response.Internal(c, "failed to load invitation")
		return nil, nil, nil, false
	}
	switch validateToken(tok, time.Now()) {
	case ErrTokenNotFound:
		response.NotFound(c, ErrTokenNotFound.Error())
		return nil, nil, nil, false
	case ErrTokenExpired:
		response.Forbidden(c, ErrTokenExpired.Error())
		return nil, nil, nil, false
	}

	guest, err := h.guestRepo.GetByID(c.Request.Context(), tok.GuestID)
	if err != nil {
		response.NotFound(c, "guest not found")
		return nil, nil, nil, false
	}
	event, err := h.eventRepo.GetByID(c.Request.Context(), tok.EventID)
	if err != nil {
		response.NotFound(c, "event not found")
		return nil, nil, nil, false
	}
	return tok, guest, event, true
}

// Resolve handles GET /rsvp/:token. Read-only; repeated resolves return the
// same view.
func (h *Handler) Resolve(c *gin.Context) {
	tok, guest, event, ok := h.loadForToken(c)
	if !ok {
		return
	}

	var view rsvpView
	view.Guest.ID = guest.ID
	view.Guest.Name = guest.DisplayName()
	view.Guest.Email = guest.Email
	view.Guest.RSVPStatus = guest.RSVPStatus
	view.Guest.RSVPDetails = guest.RSVPDetails
	view.Event.ID = event.ID
	view.Event.Name = event.Name
	view.Event.Date = event.Date
	view.Event.Description = event.Description
	view.Token = tok.Token
	response.OK(c, view)
}

// Respond handles POST /rsvp/:token. Re-submission through the same unexpired
// link overwrites the prior response; the guest update and the used_at stamp
// commit together.
func (h *Handler) Respond(c *gin.Context) {
	tok, guest, event, ok := h.loadForToken(c)
	if !ok {
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	attending := *req.Attending
	status, details := decideResponse(attending, req.GuestsCount, req.Notes)

	if err := h.repo.RecordResponse(c.Request.Context(), tok.ID, guest.ID, status, details); err != nil {
		h.logger.Error("record response failed", zap.Error(err),
			zap.String("guest_id", guest.ID.String()), zap.String("event_id", event.ID.String()))
		response.Internal(c, "failed to record response")
		return
	}

	if h.feed != nil {
		h.feed.PublishToOrganizer(event.UserID, "rsvp_response", gin.H{
			"guest_id":     guest.ID,
			"guest_name":   guest.DisplayName(),
			"event_id":     event.ID,
			"event_name":   event.Name,
			"rsvp_status":  status,
			"guests_count": details.GuestsCount,
		})
	}

	response.OK(c, gin.H{"success": true, "message": responseMessage(attending, event.Name)})
}

// decideResponse maps the submitted form to the stored RSVP state. A decline
// never carries a party size, whatever the form said.
func decideResponse(attending bool, guestsCount int, notes string) (models.RSVPStatus, models.RSVPDetails) {
	if attending {
		return models.RSVPAccepted, models.RSVPDetails{GuestsCount: guestsCount, Notes: notes}
	}
	return models.RSVPDeclined, models.RSVPDetails{GuestsCount: 0, Notes: notes}
}

// responseMessage returns the confirmation shown to the guest.
func responseMessage(attending bool, eventName string) string {
	if attending {
		return "Thank you! Your attendance at " + eventName + " is confirmed."
	}
	return "Thanks for letting us know you can't make it to " + eventName + "."
}
