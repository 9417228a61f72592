package guests

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles guest persistence. Every query is scoped by the owning
// user id, so a caller can never read or mutate another organizer's guests.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a guests repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const guestColumns = `id, user_id, first_name, COALESCE(last_name,''), COALESCE(email,''), COALESCE(phone,''),
	COALESCE(category,''), priority, status, rsvp_status, rsvp_at, rsvp_details, invited_at, created_at, updated_at`

func scanGuest(row interface{ Scan(dest ...any) error }) (*models.Guest, error) {
	var g models.Guest
	err := row.Scan(&g.ID, &g.UserID, &g.FirstName, &g.LastName, &g.Email, &g.Phone,
		&g.Category, &g.Priority, &g.Status, &g.RSVPStatus, &g.RSVPAt, &g.RSVPDetails,
		&g.InvitedAt, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a guest owned by userID.
func (r *Repository) Create(ctx context.Context, g *models.Guest) error {
	const q = `INSERT INTO guests (user_id, first_name, last_name, email, phone, category, priority, status)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), $7, $8)
		RETURNING id, rsvp_status, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, g.UserID, g.FirstName, g.LastName, g.Email, g.Phone,
		g.Category, string(g.Priority), string(g.Status)).
		Scan(&g.ID, &g.RSVPStatus, &g.CreatedAt, &g.UpdatedAt)
}

// GetByIDForUser returns a guest by id only if owned by userID.
func (r *Repository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Guest, error) {
	q := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1 AND user_id = $2`
	return scanGuest(r.pool.QueryRow(ctx, q, id, userID))
}

// GetByID returns a guest by id regardless of owner. Used by the RSVP workflow,
// where authorization comes from the token record instead of a session.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	q := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`
	return scanGuest(r.pool.QueryRow(ctx, q, id))
}

// ListFilter narrows ListByUser results.
type ListFilter struct {
	Category   string
	RSVPStatus string
}

// ListByUser returns all guests owned by userID, optionally filtered.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Guest, error) {
	q := `SELECT ` + guestColumns + ` FROM guests WHERE user_id = $1`
	args := []any{userID}
	if filter.Category != "" {
		args = append(args, filter.Category)
		q += ` AND category = $2`
	}
	if filter.RSVPStatus != "" {
		args = append(args, filter.RSVPStatus)
		if filter.Category != "" {
			q += ` AND rsvp_status = $3`
		} else {
			q += ` AND rsvp_status = $2`
		}
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *g)
	}
	return list, rows.Err()
}

// CountByUser returns the number of guests owned by userID (for plan limits).
func (r *Repository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM guests WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// Update persists organizer-editable fields of a guest owned by userID.
func (r *Repository) Update(ctx context.Context, g *models.Guest) error {
	const q = `UPDATE guests SET first_name = $3, last_name = NULLIF($4,''), email = NULLIF($5,''),
		phone = NULLIF($6,''), category = NULLIF($7,''), priority = $8, status = $9, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, q, g.ID, g.UserID, g.FirstName, g.LastName, g.Email, g.Phone,
		g.Category, string(g.Priority), string(g.Status))
	return err
}

// Delete removes a guest owned by userID.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM guests WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

// MarkInvited stamps invited_at after a successful invitation send.
func (r *Repository) MarkInvited(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE guests SET invited_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	return err
}
