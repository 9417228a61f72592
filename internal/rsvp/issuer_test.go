package rsvp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/mailer"
)

type fakeGuestStore struct {
	guests  map[uuid.UUID]*models.Guest
	invited []uuid.UUID
}

func (f *fakeGuestStore) GetByIDForUser(_ context.Context, id, userID uuid.UUID) (*models.Guest, error) {
	g, ok := f.guests[id]
	if !ok || g.UserID != userID {
		return nil, errors.New("no rows")
	}
	return g, nil
}

func (f *fakeGuestStore) MarkInvited(_ context.Context, id uuid.UUID) error {
	f.invited = append(f.invited, id)
	return nil
}

type fakeTokenStore struct {
	created []*models.RSVPToken
	err     error
}

func (f *fakeTokenStore) CreateToken(_ context.Context, t *models.RSVPToken) error {
	if f.err != nil {
		return f.err
	}
	t.ID = uuid.New()
	f.created = append(f.created, t)
	return nil
}

type fakeInviteStore struct {
	marked []uuid.UUID
}

func (f *fakeInviteStore) MarkInviteSent(_ context.Context, _, guestID uuid.UUID, _ string) error {
	f.marked = append(f.marked, guestID)
	return nil
}

type fakeEmailLogStore struct {
	logs []*models.EmailLog
}

func (f *fakeEmailLogStore) Create(_ context.Context, log *models.EmailLog) error {
	f.logs = append(f.logs, log)
	return nil
}

type fakeMailer struct {
	sent    []mailer.Message
	failFor map[string]error // keyed by recipient
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if err, ok := f.failFor[msg.To]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestSendInvitesPartialFailure(t *testing.T) {
	userID := uuid.New()
	event := &models.Event{ID: uuid.New(), UserID: userID, Name: "Summer Party"}

	alice := &models.Guest{ID: uuid.New(), UserID: userID, FirstName: "Alice", Email: "alice@example.com"}
	bob := &models.Guest{ID: uuid.New(), UserID: userID, FirstName: "Bob"} // no email
	carol := &models.Guest{ID: uuid.New(), UserID: userID, FirstName: "Carol", Email: "carol@example.com"}

	guestStore := &fakeGuestStore{guests: map[uuid.UUID]*models.Guest{
		alice.ID: alice, bob.ID: bob, carol.ID: carol,
	}}
	tokenStore := &fakeTokenStore{}
	inviteStore := &fakeInviteStore{}
	logStore := &fakeEmailLogStore{}
	mail := &fakeMailer{failFor: map[string]error{
		"carol@example.com": errors.New("smtp timeout"),
	}}

	issuer := NewIssuer(guestStore, tokenStore, inviteStore, logStore, mail, nil)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return now }

	result := issuer.SendInvites(context.Background(), event, []uuid.UUID{alice.ID, bob.ID, carol.ID}, "https://app.example.com/rsvp")

	if len(result.Success) != 1 || result.Success[0] != alice.ID {
		t.Fatalf("success = %v, want [%s]", result.Success, alice.ID)
	}
	if len(result.Failed) != 2 {
		t.Fatalf("failed = %v, want 2 entries", result.Failed)
	}
	byGuest := map[string]string{}
	for _, f := range result.Failed {
		byGuest[f.GuestID] = f.Error
	}
	if byGuest[bob.ID.String()] != "no email address" {
		t.Errorf("bob error = %q, want %q", byGuest[bob.ID.String()], "no email address")
	}
	if byGuest[carol.ID.String()] != "smtp timeout" {
		t.Errorf("carol error = %q, want %q", byGuest[carol.ID.String()], "smtp timeout")
	}

	// Bob never got a token; Carol's token was created before the send failed.
	if len(tokenStore.created) != 2 {
		t.Fatalf("tokens created = %d, want 2", len(tokenStore.created))
	}
	for _, tok := range tokenStore.created {
		if tok.GuestID == bob.ID {
			t.Errorf("token created for guest without email")
		}
		if want := now.Add(TokenTTL); !tok.ExpiresAt.Equal(want) {
			t.Errorf("expires_at = %v, want %v", tok.ExpiresAt, want)
		}
	}

	// Only Alice was actually emailed and marked invited.
	if len(mail.sent) != 1 || mail.sent[0].To != "alice@example.com" {
		t.Fatalf("sent = %v, want one message to alice", mail.sent)
	}
	if len(guestStore.invited) != 1 || guestStore.invited[0] != alice.ID {
		t.Errorf("invited = %v, want [%s]", guestStore.invited, alice.ID)
	}
	if len(inviteStore.marked) != 1 || inviteStore.marked[0] != alice.ID {
		t.Errorf("invite-sent marks = %v, want [%s]", inviteStore.marked, alice.ID)
	}
}

func TestSendInvitesUnknownGuest(t *testing.T) {
	userID := uuid.New()
	event := &models.Event{ID: uuid.New(), UserID: userID, Name: "Launch"}
	guestStore := &fakeGuestStore{guests: map[uuid.UUID]*models.Guest{}}

	issuer := NewIssuer(guestStore, &fakeTokenStore{}, &fakeInviteStore{}, &fakeEmailLogStore{}, &fakeMailer{}, nil)
	result := issuer.SendInvites(context.Background(), event, []uuid.UUID{uuid.New()}, "https://app.example.com/rsvp")

	if len(result.Success) != 0 {
		t.Fatalf("success = %v, want empty", result.Success)
	}
	if len(result.Failed) != 1 || result.Failed[0].Error != "guest not found" {
		t.Fatalf("failed = %v, want one guest-not-found entry", result.Failed)
	}
}

func TestSendInvitesForeignGuest(t *testing.T) {
	owner := uuid.New()
	event := &models.Event{ID: uuid.New(), UserID: owner, Name: "Board dinner"}
	foreign := &models.Guest{ID: uuid.New(), UserID: uuid.New(), FirstName: "Mallory", Email: "mallory@example.com"}
	guestStore := &fakeGuestStore{guests: map[uuid.UUID]*models.Guest{foreign.ID: foreign}}
	mail := &fakeMailer{}

	issuer := NewIssuer(guestStore, &fakeTokenStore{}, &fakeInviteStore{}, &fakeEmailLogStore{}, mail, nil)
	result := issuer.SendInvites(context.Background(), event, []uuid.UUID{foreign.ID}, "https://app.example.com/rsvp")

	if len(result.Failed) != 1 || result.Failed[0].Error != "guest not found" {
		t.Fatalf("failed = %v, want guest-not-found for foreign guest", result.Failed)
	}
	if len(mail.sent) != 0 {
		t.Errorf("mail sent across accounts: %v", mail.sent)
	}
}

func TestSendInvitesLogsOutcomes(t *testing.T) {
	userID := uuid.New()
	event := &models.Event{ID: uuid.New(), UserID: userID, Name: "Retreat"}
	ok := &models.Guest{ID: uuid.New(), UserID: userID, FirstName: "Dan", Email: "dan@example.com"}
	bad := &models.Guest{ID: uuid.New(), UserID: userID, FirstName: "Eve", Email: "eve@example.com"}
	guestStore := &fakeGuestStore{guests: map[uuid.UUID]*models.Guest{ok.ID: ok, bad.ID: bad}}
	logStore := &fakeEmailLogStore{}
	mail := &fakeMailer{failFor: map[string]error{"eve@example.com": errors.New("bounced")}}

	issuer := NewIssuer(guestStore, &fakeTokenStore{}, &fakeInviteStore{}, logStore, mail, nil)
	issuer.SendInvites(context.Background(), event, []uuid.UUID{ok.ID, bad.ID}, "https://app.example.com/rsvp")

	if len(logStore.logs) != 2 {
		t.Fatalf("email logs = %d, want 2", len(logStore.logs))
	}
	byRecipient := map[string]*models.EmailLog{}
	for _, l := range logStore.logs {
		byRecipient[l.RecipientEmail] = l
	}
	sent := byRecipient["dan@example.com"]
	if sent == nil || sent.Status != models.EmailLogStatusSent || sent.SentAt == nil {
		t.Errorf("dan log = %+v, want sent with timestamp", sent)
	}
	failed := byRecipient["eve@example.com"]
	if failed == nil || failed.Status != models.EmailLogStatusFailed || failed.ErrorMessage != "bounced" {
		t.Errorf("eve log = %+v, want failed with error message", failed)
	}
	for _, l := range logStore.logs {
		if l.EmailType != models.EmailTypeInvitation {
			t.Errorf("email_type = %q, want invitation", l.EmailType)
		}
		if !strings.Contains(l.Subject, event.Name) {
			t.Errorf("subject %q does not mention event", l.Subject)
		}
	}
}
