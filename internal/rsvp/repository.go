package rsvp

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles RSVP token persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an RSVP token repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateToken inserts a token record.
func (r *Repository) CreateToken(ctx context.Context, t *models.RSVPToken) error {
	const q = `INSERT INTO rsvp_tokens (token, guest_id, event_id, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, used_at, created_at`
	return r.pool.QueryRow(ctx, q, t.Token, t.GuestID, t.EventID, t.ExpiresAt).
		Scan(&t.ID, &t.UsedAt, &t.CreatedAt)
}

// GetByToken returns a token record by its string. Expired tokens are returned
// as-is; expiry is the caller's check (the row is never deleted on expiry).
func (r *Repository) GetByToken(ctx context.Context, tokenStr string) (*models.RSVPToken, error) {
	const q = `SELECT id, token, guest_id, event_id, expires_at, used_at, created_at
		FROM rsvp_tokens WHERE token = $1`
	var t models.RSVPToken
	err := r.pool.QueryRow(ctx, q, tokenStr).
		Scan(&t.ID, &t.Token, &t.GuestID, &t.EventID, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// RecordResponse writes the guest's RSVP fields and marks the token used in a
// single transaction, so a partial failure cannot leave the guest updated with
// the token still formally unused.
func (r *Repository) RecordResponse(ctx context.Context, tokenID, guestID uuid.UUID, status models.RSVPStatus, details models.RSVPDetails) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const updateGuest = `UPDATE guests SET rsvp_status = $2, rsvp_at = NOW(), rsvp_details = $3, updated_at = NOW()
		WHERE id = $1`
	if _, err := tx.Exec(ctx, updateGuest, guestID, string(status), details); err != nil {
		return err
	}
	const markUsed = `UPDATE rsvp_tokens SET used_at = NOW() WHERE id = $1`
	if _, err := tx.Exec(ctx, markUsed, tokenID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
