package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridClient implements EmailClient via the SendGrid API.
type SendGridClient struct {
	apiKey      string
	fromAddress string
	fromName    string
}

// NewSendGridClient creates a SendGrid-backed mailer.
func NewSendGridClient(apiKey, fromAddress, fromName string) *SendGridClient {
	return &SendGridClient{apiKey: apiKey, fromAddress: fromAddress, fromName: fromName}
}

// Send delivers one email. Returns an error on non-2xx SendGrid responses so
// callers can record the failure per recipient.
func (c *SendGridClient) Send(_ context.Context, msg Message) error {
	if c.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if msg.To == "" {
		return fmt.Errorf("recipient address is empty")
	}

	from := sgmail.NewEmail(c.fromName, c.fromAddress)
	to := sgmail.NewEmail("", msg.To)
	message := sgmail.NewSingleEmail(from, msg.Subject, to, "", msg.HTML)

	client := sendgrid.NewSendClient(c.apiKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
