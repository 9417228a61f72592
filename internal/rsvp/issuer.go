package rsvp

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/mailer"
)

// GuestStore is the guest access the issuer needs.
type GuestStore interface {
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Guest, error)
	MarkInvited(ctx context.Context, id uuid.UUID) error
}

// TokenStore persists issued tokens.
type TokenStore interface {
	CreateToken(ctx context.Context, t *models.RSVPToken) error
}

// InviteStore records invite-sent metadata on the event/guest link.
type InviteStore interface {
	MarkInviteSent(ctx context.Context, eventID, guestID uuid.UUID, method string) error
}

// EmailLogStore records delivery outcomes.
type EmailLogStore interface {
	Create(ctx context.Context, log *models.EmailLog) error
}

var (
	// ErrGuestNotFound means the guest id does not exist or belongs to another organizer.
	ErrGuestNotFound = errors.New("guest not found")
	// ErrNoEmailAddress means the guest has no email to deliver an invitation to.
	ErrNoEmailAddress = errors.New("no email address")
)

// FailedInvite is one guest the issuer could not invite. GuestID is the id as
// submitted, so malformed ids stay recognizable in the result.
type FailedInvite struct {
	GuestID string `json:"guest_id"`
	Error   string `json:"error"`
}

// IssueResult reports per-guest outcomes of an invitation batch.
type IssueResult struct {
	Success []uuid.UUID    `json:"success"`
	Failed  []FailedInvite `json:"failed"`
}

// Issuer creates RSVP tokens and dispatches invitation emails. Guests are
// processed sequentially and independently: one guest's failure never aborts
// the rest, and nothing is retried.
type Issuer struct {
	guests  GuestStore
	tokens  TokenStore
	invites InviteStore
	emails  EmailLogStore
	mailer  mailer.EmailClient
	logger  *zap.Logger
	now     func() time.Time
}

// NewIssuer creates an invitation issuer.
func NewIssuer(guests GuestStore, tokens TokenStore, invites InviteStore, emails EmailLogStore, mail mailer.EmailClient, logger *zap.Logger) *Issuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Issuer{guests: guests, tokens: tokens, invites: invites, emails: emails, mailer: mail, logger: logger, now: time.Now}
}

// SendInvites issues one token per guest and emails the RSVP link. The event
// must already be ownership-checked by the caller; guests are re-checked here
// against the event owner so a foreign guest id lands in Failed, not in a
// cross-account invite.
func (i *Issuer) SendInvites(ctx context.Context, event *models.Event, guestIDs []uuid.UUID, baseURL string) IssueResult {
	result := IssueResult{Success: []uuid.UUID{}, Failed: []FailedInvite{}}

	for _, guestID := range guestIDs {
		if err := i.inviteOne(ctx, event, guestID, baseURL); err != nil {
			result.Failed = append(result.Failed, FailedInvite{GuestID: guestID.String(), Error: err.Error()})
			continue
		}
		result.Success = append(result.Success, guestID)
	}
	return result
}

func (i *Issuer) inviteOne(ctx context.Context, event *models.Event, guestID uuid.UUID, baseURL string) error {
	guest, err := i.guests.GetByIDForUser(ctx, guestID, event.UserID)
	if err != nil {
		return ErrGuestNotFound
	}
	if guest.Email == "" {
		return ErrNoEmailAddress
	}

	tokenStr, err := generateToken()
	if err != nil {
		return err
	}
	tok := &models.RSVPToken{
		Token:     tokenStr,
		GuestID:   guest.ID,
		EventID:   event.ID,
		ExpiresAt: i.now().Add(TokenTTL),
	}
	if err := i.tokens.CreateToken(ctx, tok); err != nil {
		return err
	}

	html, err := renderInvite(guest, event, baseURL, tokenStr)
	if err != nil {
		return err
	}
	subject := inviteSubject(event)

	if err := i.mailer.Send(ctx, mailer.Message{To: guest.Email, Subject: subject, HTML: html}); err != nil {
		i.logEmail(ctx, event.ID, guest.ID, guest.Email, subject, models.EmailLogStatusFailed, err.Error())
		return err
	}

	// Send succeeded; bookkeeping failures are logged but do not fail the guest.
	if err := i.guests.MarkInvited(ctx, guest.ID); err != nil {
		i.logger.Error("mark invited failed", zap.Error(err), zap.String("guest_id", guest.ID.String()))
	}
	if err := i.invites.MarkInviteSent(ctx, event.ID, guest.ID, "email"); err != nil {
		i.logger.Warn("mark invite sent failed", zap.Error(err), zap.String("guest_id", guest.ID.String()))
	}
	i.logEmail(ctx, event.ID, guest.ID, guest.Email, subject, models.EmailLogStatusSent, "")
	return nil
}

// BuildReminder issues a fresh token for the guest and returns the rendered
// reminder email. The caller decides delivery (usually via the worker queue),
// so nothing is sent or logged here.
func (i *Issuer) BuildReminder(ctx context.Context, event *models.Event, guestID uuid.UUID, baseURL string) (*models.Guest, mailer.Message, error) {
	guest, err := i.guests.GetByIDForUser(ctx, guestID, event.UserID)
	if err != nil {
		return nil, mailer.Message{}, ErrGuestNotFound
	}
	if guest.Email == "" {
		return nil, mailer.Message{}, ErrNoEmailAddress
	}

	tokenStr, err := generateToken()
	if err != nil {
		return nil, mailer.Message{}, err
	}
	tok := &models.RSVPToken{
		Token:     tokenStr,
		GuestID:   guest.ID,
		EventID:   event.ID,
		ExpiresAt: i.now().Add(TokenTTL),
	}
	if err := i.tokens.CreateToken(ctx, tok); err != nil {
		return nil, mailer.Message{}, err
	}

	html, err := renderReminder(guest, event, baseURL, tokenStr)
	if err != nil {
		return nil, mailer.Message{}, err
	}
	return guest, mailer.Message{To: guest.Email, Subject: reminderSubject(event), HTML: html}, nil
}

func (i *Issuer) logEmail(ctx context.Context, eventID, guestID uuid.UUID, recipient, subject, status, errMsg string) {
	now := i.now()
	log := &models.EmailLog{
		EventID:        &eventID,
		GuestID:        &guestID,
		EmailType:      models.EmailTypeInvitation,
		RecipientEmail: recipient,
		Subject:        subject,
		Status:         status,
		ErrorMessage:   errMsg,
	}
	if status == models.EmailLogStatusSent {
		log.SentAt = &now
	}
	if err := i.emails.Create(ctx, log); err != nil {
		i.logger.Warn("email log write failed", zap.Error(err), zap.String("recipient", recipient))
	}
}
