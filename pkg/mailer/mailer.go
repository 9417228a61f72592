// Package mailer abstracts outbound email delivery. The RSVP issuer and the
// background worker treat it as an opaque collaborator with no retry.
package mailer

import (
	"context"

	"go.uber.org/zap"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// EmailClient sends a single email. Implementations: SendGrid, log-only dev mailer.
type EmailClient interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer is a development mailer that logs instead of sending.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a log-only mailer for local development.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message and reports success.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email (dev mode, not sent)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
