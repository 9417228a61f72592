package rsvp

import (
	"strings"
	"testing"
	"time"

	"github.com/gatherly/backend/internal/models"
)

func TestRenderInvite(t *testing.T) {
	date := time.Date(2026, 7, 18, 18, 30, 0, 0, time.UTC)
	guest := &models.Guest{FirstName: "Alice", LastName: "Nguyen"}
	event := &models.Event{Name: "Summer Party", Date: &date, Location: "Rooftop, 5th Ave"}

	html, err := renderInvite(guest, event, "https://app.example.com/rsvp/", "abc123token")
	if err != nil {
		t.Fatalf("renderInvite: %v", err)
	}
	for _, want := range []string{
		"Alice Nguyen",
		"Summer Party",
		"Rooftop, 5th Ave",
		"https://app.example.com/rsvp/abc123token",
		"Saturday, July 18, 2026",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered invite missing %q", want)
		}
	}
	if strings.Contains(html, "rsvp//abc123token") {
		t.Error("trailing slash in base URL not trimmed")
	}
}

func TestRenderInviteNoDate(t *testing.T) {
	guest := &models.Guest{FirstName: "Bob"}
	event := &models.Event{Name: "TBD Hangout"}

	html, err := renderInvite(guest, event, "https://app.example.com/rsvp", "tok")
	if err != nil {
		t.Fatalf("renderInvite: %v", err)
	}
	if strings.Contains(html, "When:") {
		t.Error("date block rendered for event without date")
	}
	if !strings.Contains(html, "Hi Bob,") {
		t.Error("greeting missing single-name guest")
	}
}

func TestInviteSubject(t *testing.T) {
	got := inviteSubject(&models.Event{Name: "Launch Night"})
	if got != "You're invited: Launch Night" {
		t.Errorf("subject = %q", got)
	}
}
