package rsvp

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/gatherly/backend/internal/models"
)

var inviteTemplate = template.Must(template.New("invite").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>You're invited to {{.EventName}}</h2>
  <p>Hi {{.GuestName}},</p>
  {{if .EventDate}}<p><strong>When:</strong> {{.EventDate}}</p>{{end}}
  {{if .Location}}<p><strong>Where:</strong> {{.Location}}</p>{{end}}
  {{if .Description}}<p>{{.Description}}</p>{{end}}
  <p>Please let us know if you can make it:</p>
  <p><a href="{{.Link}}" style="background: #4f46e5; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Respond to invitation</a></p>
  <p style="color: #888; font-size: 12px;">This link expires in 7 days. If the button does not work, open {{.Link}} in your browser.</p>
</body>
</html>`))

var reminderTemplate = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Reminder: {{.EventName}}</h2>
  <p>Hi {{.GuestName}},</p>
  <p>We haven't heard back from you yet about {{.EventName}}.{{if .EventDate}} It takes place on {{.EventDate}}.{{end}}</p>
  {{if .Location}}<p><strong>Where:</strong> {{.Location}}</p>{{end}}
  <p><a href="{{.Link}}" style="background: #4f46e5; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Respond to invitation</a></p>
  <p style="color: #888; font-size: 12px;">This link expires in 7 days. If the button does not work, open {{.Link}} in your browser.</p>
</body>
</html>`))

type inviteData struct {
	GuestName   string
	EventName   string
	EventDate   string
	Location    string
	Description string
	Link        string
}

// inviteSubject returns the subject line for an invitation email.
func inviteSubject(event *models.Event) string {
	return fmt.Sprintf("You're invited: %s", event.Name)
}

// reminderSubject returns the subject line for a reminder email.
func reminderSubject(event *models.Event) string {
	return fmt.Sprintf("Reminder: %s", event.Name)
}

func buildInviteData(guest *models.Guest, event *models.Event, baseURL, token string) inviteData {
	data := inviteData{
		GuestName:   guest.DisplayName(),
		EventName:   event.Name,
		Location:    event.Location,
		Description: event.Description,
		Link:        strings.TrimRight(baseURL, "/") + "/" + token,
	}
	if event.Date != nil {
		data.EventDate = event.Date.Format("Monday, January 2, 2006 at 3:04 PM")
	}
	return data
}

// renderReminder builds the HTML reminder email for one guest.
func renderReminder(guest *models.Guest, event *models.Event, baseURL, token string) (string, error) {
	var buf bytes.Buffer
	if err := reminderTemplate.Execute(&buf, buildInviteData(guest, event, baseURL, token)); err != nil {
		return "", fmt.Errorf("render reminder: %w", err)
	}
	return buf.String(), nil
}

// renderInvite builds the HTML invitation email for one guest. The RSVP link
// is {baseURL}/{token}.
func renderInvite(guest *models.Guest, event *models.Event, baseURL, token string) (string, error) {
	var buf bytes.Buffer
	if err := inviteTemplate.Execute(&buf, buildInviteData(guest, event, baseURL, token)); err != nil {
		return "", fmt.Errorf("render invite: %w", err)
	}
	return buf.String(), nil
}
