package rsvp

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/gatherly/backend/internal/models"
)

// TokenTTL is how long an invitation link stays valid after issuance.
const TokenTTL = 7 * 24 * time.Hour

var (
	// ErrTokenNotFound covers unknown token strings.
	ErrTokenNotFound = errors.New("invalid or expired token")
	// ErrTokenExpired covers tokens past their server-side expiry.
	ErrTokenExpired = errors.New("invitation expired")
)

// generateToken returns an opaque URL-safe random token. The token carries no
// decodable claims; guest and event identity live only in the stored record.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:43], nil
}

// validateToken checks a loaded token record against the clock. A nil record
// means the lookup missed. used_at is deliberately not checked: re-submission
// through the same link overwrites the prior response until the link expires.
func validateToken(t *models.RSVPToken, now time.Time) error {
	if t == nil {
		return ErrTokenNotFound
	}
	if !now.Before(t.ExpiresAt) {
		return ErrTokenExpired
	}
	return nil
}
