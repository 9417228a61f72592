package realtime

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func newTestClient(userID uuid.UUID) *Client {
	return &Client{ID: uuid.New().String(), UserID: userID, send: make(chan WSMessage, 8)}
}

func TestHubFanOutPerOrganizer(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	alice := uuid.New()
	bob := uuid.New()

	a1 := newTestClient(alice)
	a2 := newTestClient(alice)
	b1 := newTestClient(bob)
	for _, c := range []*Client{a1, a2, b1} {
		hub.Register(c)
	}

	hub.PublishToOrganizer(alice, "rsvp_response", map[string]string{"guest_name": "Carol"})

	for _, c := range []*Client{a1, a2} {
		select {
		case msg := <-c.send:
			if msg.Event != "rsvp_response" {
				t.Errorf("event = %q, want rsvp_response", msg.Event)
			}
			var body map[string]string
			if err := json.Unmarshal(msg.Data, &body); err != nil || body["guest_name"] != "Carol" {
				t.Errorf("data = %s", msg.Data)
			}
		default:
			t.Error("alice session did not receive the event")
		}
	}
	select {
	case msg := <-b1.send:
		t.Errorf("bob received alice's event: %v", msg)
	default:
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	userID := uuid.New()
	c := newTestClient(userID)

	hub.Register(c)
	if got := hub.SessionCount(userID); got != 1 {
		t.Fatalf("session count = %d, want 1", got)
	}
	hub.Unregister(c)
	if got := hub.SessionCount(userID); got != 0 {
		t.Fatalf("session count after unregister = %d, want 0", got)
	}

	hub.PublishToOrganizer(userID, "rsvp_response", map[string]string{"guest_name": "Dan"})
	select {
	case msg := <-c.send:
		t.Errorf("unregistered session received event: %v", msg)
	default:
	}
}
