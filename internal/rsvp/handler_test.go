package rsvp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
)

type recordedResponse struct {
	tokenID uuid.UUID
	guestID uuid.UUID
	status  models.RSVPStatus
	details models.RSVPDetails
}

type fakeResponseStore struct {
	tokens   map[string]*models.RSVPToken
	recorded []recordedResponse
}

func (f *fakeResponseStore) GetByToken(_ context.Context, tokenStr string) (*models.RSVPToken, error) {
	return f.tokens[tokenStr], nil
}

func (f *fakeResponseStore) RecordResponse(_ context.Context, tokenID, guestID uuid.UUID, status models.RSVPStatus, details models.RSVPDetails) error {
	f.recorded = append(f.recorded, recordedResponse{tokenID, guestID, status, details})
	return nil
}

type fakeGuestReader struct {
	guests map[uuid.UUID]*models.Guest
}

func (f *fakeGuestReader) GetByID(_ context.Context, id uuid.UUID) (*models.Guest, error) {
	g, ok := f.guests[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return g, nil
}

type fakeEventReader struct {
	events map[uuid.UUID]*models.Event
}

func (f *fakeEventReader) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return e, nil
}

func (f *fakeEventReader) GetByIDForUser(_ context.Context, id, userID uuid.UUID) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok || e.UserID != userID {
		return nil, errors.New("no rows")
	}
	return e, nil
}

type respondFixture struct {
	store  *fakeResponseStore
	router *gin.Engine
	token  *models.RSVPToken
	guest  *models.Guest
	event  *models.Event
}

func newRespondFixture(t *testing.T, expiresAt time.Time) *respondFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userID := uuid.New()
	event := &models.Event{ID: uuid.New(), UserID: userID, Name: "Garden Party"}
	guest := &models.Guest{ID: uuid.New(), UserID: userID, FirstName: "Alice", RSVPStatus: models.RSVPPending}
	tok := &models.RSVPToken{ID: uuid.New(), Token: "tok-alice", GuestID: guest.ID, EventID: event.ID, ExpiresAt: expiresAt}

	store := &fakeResponseStore{tokens: map[string]*models.RSVPToken{tok.Token: tok}}
	h := NewHandler(store,
		&fakeGuestReader{guests: map[uuid.UUID]*models.Guest{guest.ID: guest}},
		&fakeEventReader{events: map[uuid.UUID]*models.Event{event.ID: event}},
		nil, nil, "https://app.example.com/rsvp", nil)

	router := gin.New()
	router.GET("/rsvp/:token", h.Resolve)
	router.POST("/rsvp/:token", h.Respond)
	return &respondFixture{store: store, router: router, token: tok, guest: guest, event: event}
}

func postRSVP(router *gin.Engine, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/rsvp/"+token, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRespondAccept(t *testing.T) {
	fx := newRespondFixture(t, time.Now().Add(time.Hour))

	w := postRSVP(fx.router, fx.token.Token, `{"attending": true, "guests_count": 3, "notes": "vegetarian"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(fx.store.recorded) != 1 {
		t.Fatalf("recorded = %d calls, want 1", len(fx.store.recorded))
	}
	rec := fx.store.recorded[0]
	if rec.tokenID != fx.token.ID || rec.guestID != fx.guest.ID {
		t.Errorf("recorded ids = %v/%v, want %v/%v", rec.tokenID, rec.guestID, fx.token.ID, fx.guest.ID)
	}
	if rec.status != models.RSVPAccepted {
		t.Errorf("status = %q, want accepted", rec.status)
	}
	if rec.details.GuestsCount != 3 || rec.details.Notes != "vegetarian" {
		t.Errorf("details = %+v", rec.details)
	}
	if !strings.Contains(w.Body.String(), "confirmed") {
		t.Errorf("accept message missing confirmation: %s", w.Body.String())
	}
}

func TestRespondDeclineZeroesGuestsCount(t *testing.T) {
	fx := newRespondFixture(t, time.Now().Add(time.Hour))

	w := postRSVP(fx.router, fx.token.Token, `{"attending": false, "guests_count": 5, "notes": "sorry"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(fx.store.recorded) != 1 {
		t.Fatalf("recorded = %d calls, want 1", len(fx.store.recorded))
	}
	rec := fx.store.recorded[0]
	if rec.status != models.RSVPDeclined {
		t.Errorf("status = %q, want declined", rec.status)
	}
	if rec.details.GuestsCount != 0 {
		t.Errorf("guests_count = %d, want 0 on decline", rec.details.GuestsCount)
	}
	if rec.details.Notes != "sorry" {
		t.Errorf("notes = %q", rec.details.Notes)
	}
	if strings.Contains(w.Body.String(), "confirmed") {
		t.Errorf("decline reused the accept message: %s", w.Body.String())
	}
}

func TestRespondExpiredToken(t *testing.T) {
	fx := newRespondFixture(t, time.Now().Add(-time.Hour))

	w := postRSVP(fx.router, fx.token.Token, `{"attending": true, "guests_count": 2}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invitation expired") {
		t.Errorf("body = %s", w.Body.String())
	}
	if len(fx.store.recorded) != 0 {
		t.Errorf("expired token mutated state: %+v", fx.store.recorded)
	}
}

func TestRespondUnknownToken(t *testing.T) {
	fx := newRespondFixture(t, time.Now().Add(time.Hour))

	w := postRSVP(fx.router, "no-such-token", `{"attending": true}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid or expired token") {
		t.Errorf("body = %s", w.Body.String())
	}
	if len(fx.store.recorded) != 0 {
		t.Errorf("unknown token mutated state: %+v", fx.store.recorded)
	}
}

func TestDecideResponse(t *testing.T) {
	tests := []struct {
		name        string
		attending   bool
		guestsCount int
		notes       string
		wantStatus  models.RSVPStatus
		wantCount   int
	}{
		{"accept with party", true, 4, "gluten free", models.RSVPAccepted, 4},
		{"accept alone", true, 1, "", models.RSVPAccepted, 1},
		{"decline drops count", false, 7, "away", models.RSVPDeclined, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, details := decideResponse(tt.attending, tt.guestsCount, tt.notes)
			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if details.GuestsCount != tt.wantCount {
				t.Errorf("guests_count = %d, want %d", details.GuestsCount, tt.wantCount)
			}
			if details.Notes != tt.notes {
				t.Errorf("notes = %q, want %q", details.Notes, tt.notes)
			}
		})
	}
}

func TestSendInvitesReportsMalformedID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()
	event := &models.Event{ID: uuid.New(), UserID: userID, Name: "Offsite"}
	good := &models.Guest{ID: uuid.New(), UserID: userID, FirstName: "Dana", Email: "dana@example.com"}

	guestStore := &fakeGuestStore{guests: map[uuid.UUID]*models.Guest{good.ID: good}}
	issuer := NewIssuer(guestStore, &fakeTokenStore{}, &fakeInviteStore{}, &fakeEmailLogStore{}, &fakeMailer{}, nil)
	h := NewHandler(&fakeResponseStore{tokens: map[string]*models.RSVPToken{}},
		&fakeGuestReader{guests: map[uuid.UUID]*models.Guest{good.ID: good}},
		&fakeEventReader{events: map[uuid.UUID]*models.Event{event.ID: event}},
		issuer, nil, "https://app.example.com/rsvp", nil)

	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, userID) })
	router.POST("/events/:id/invites", h.SendInvites)

	body := `{"guest_ids": ["not-a-uuid", "` + good.ID.String() + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/events/"+event.ID.String()+"/invites", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var envelope struct {
		Data IssueResult `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(envelope.Data.Success) != 1 || envelope.Data.Success[0] != good.ID {
		t.Errorf("success = %v, want [%s]", envelope.Data.Success, good.ID)
	}
	if len(envelope.Data.Failed) != 1 {
		t.Fatalf("failed = %v, want one entry", envelope.Data.Failed)
	}
	if envelope.Data.Failed[0].GuestID != "not-a-uuid" {
		t.Errorf("failed guest_id = %q, want the raw input id", envelope.Data.Failed[0].GuestID)
	}
}
