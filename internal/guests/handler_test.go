package guests

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

// fakeStore serves one guest and can be told to fail the reload that follows
// a successful update.
type fakeStore struct {
	guest      *models.Guest
	reads      int
	failReload bool
	updated    bool
}

func (f *fakeStore) Create(_ context.Context, _ *models.Guest) error { return nil }

func (f *fakeStore) GetByIDForUser(_ context.Context, id, userID uuid.UUID) (*models.Guest, error) {
	if f.guest == nil || f.guest.ID != id || f.guest.UserID != userID {
		return nil, errors.New("no rows")
	}
	f.reads++
	if f.failReload && f.reads > 1 {
		return nil, errors.New("connection reset")
	}
	g := *f.guest
	return &g, nil
}

func (f *fakeStore) ListByUser(_ context.Context, _ uuid.UUID, _ ListFilter) ([]models.Guest, error) {
	return nil, nil
}

func (f *fakeStore) CountByUser(_ context.Context, _ uuid.UUID) (int, error) { return 0, nil }

func (f *fakeStore) Update(_ context.Context, _ *models.Guest) error {
	f.updated = true
	return nil
}

func (f *fakeStore) Delete(_ context.Context, _, _ uuid.UUID) error { return nil }

func patchGuest(store *fakeStore, userID uuid.UUID, guestID, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, nil, nil, nil)
	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, userID) })
	router.PATCH("/guests/:id", h.Update)

	req := httptest.NewRequest(http.MethodPatch, "/guests/"+guestID, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUpdateReturnsFreshRow(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{guest: &models.Guest{ID: uuid.New(), UserID: userID, FirstName: "Ann", Priority: models.PriorityMedium, Status: models.GuestStatusPending}}

	w := patchGuest(store, userID, store.guest.ID.String(), `{"first_name": "Anna"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !store.updated {
		t.Fatal("update was never persisted")
	}
}

func TestUpdateFallsBackWhenReloadFails(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{
		guest:      &models.Guest{ID: uuid.New(), UserID: userID, FirstName: "Ann", Priority: models.PriorityMedium, Status: models.GuestStatusPending},
		failReload: true,
	}

	w := patchGuest(store, userID, store.guest.ID.String(), `{"first_name": "Anna"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var envelope struct {
		Data *models.Guest `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Data == nil {
		t.Fatal("data is null; expected the in-memory guest when the reload fails")
	}
	if envelope.Data.FirstName != "Anna" {
		t.Errorf("first_name = %q, want the updated value", envelope.Data.FirstName)
	}
}
