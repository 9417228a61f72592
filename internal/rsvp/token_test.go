package rsvp

import (
	"testing"
	"time"

	"github.com/gatherly/backend/internal/models"
)

func TestGenerateToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := generateToken()
		if err != nil {
			t.Fatalf("generateToken: %v", err)
		}
		if len(tok) != 43 {
			t.Fatalf("token length = %d, want 43", len(tok))
		}
		for _, r := range tok {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			default:
				t.Fatalf("token contains non URL-safe char %q", r)
			}
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %s", tok)
		}
		seen[tok] = true
	}
}

func TestValidateToken(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	used := now.Add(-time.Hour)

	tests := []struct {
		name string
		tok  *models.RSVPToken
		want error
	}{
		{"nil record", nil, ErrTokenNotFound},
		{"valid", &models.RSVPToken{ExpiresAt: now.Add(time.Hour)}, nil},
		{"expired", &models.RSVPToken{ExpiresAt: now.Add(-time.Minute)}, ErrTokenExpired},
		{"expires exactly now", &models.RSVPToken{ExpiresAt: now}, ErrTokenExpired},
		{"used but unexpired", &models.RSVPToken{ExpiresAt: now.Add(time.Hour), UsedAt: &used}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateToken(tt.tok, now); got != tt.want {
				t.Errorf("validateToken() = %v, want %v", got, tt.want)
			}
		})
	}
}
