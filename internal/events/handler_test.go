package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
)

type fakeStore struct {
	event      *models.Event
	reads      int
	failReload bool
	updated    bool
}

func (f *fakeStore) Create(_ context.Context, _ *models.Event) error { return nil }

func (f *fakeStore) GetByIDForUser(_ context.Context, id, userID uuid.UUID) (*models.Event, error) {
	if f.event == nil || f.event.ID != id || f.event.UserID != userID {
		return nil, errors.New("no rows")
	}
	f.reads++
	if f.failReload && f.reads > 1 {
		return nil, errors.New("connection reset")
	}
	e := *f.event
	return &e, nil
}

func (f *fakeStore) ListByUser(_ context.Context, _ uuid.UUID) ([]models.Event, error) {
	return nil, nil
}

func (f *fakeStore) Update(_ context.Context, _ *models.Event) error {
	f.updated = true
	return nil
}

func (f *fakeStore) Delete(_ context.Context, _, _ uuid.UUID) error            { return nil }
func (f *fakeStore) AttachGuest(_ context.Context, _, _ uuid.UUID) error       { return nil }
func (f *fakeStore) DetachGuest(_ context.Context, _, _ uuid.UUID) error       { return nil }
func (f *fakeStore) ListGuests(_ context.Context, _ uuid.UUID) ([]EventGuestRow, error) {
	return nil, nil
}

func TestUpdateFallsBackWhenReloadFails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	store := &fakeStore{
		event:      &models.Event{ID: uuid.New(), UserID: userID, Name: "Old Name"},
		failReload: true,
	}

	h := NewHandler(store, nil)
	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, userID) })
	router.PATCH("/events/:id", h.Update)

	req := httptest.NewRequest(http.MethodPatch, "/events/"+store.event.ID.String(), strings.NewReader(`{"name": "New Name"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !store.updated {
		t.Fatal("update was never persisted")
	}
	var envelope struct {
		Data *models.Event `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Data == nil {
		t.Fatal("data is null; expected the in-memory event when the reload fails")
	}
	if envelope.Data.Name != "New Name" {
		t.Errorf("name = %q, want the updated value", envelope.Data.Name)
	}
}
