package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles event and event_guest persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, user_id, name, date, COALESCE(description,''), COALESCE(location,''), created_at, updated_at`

// Create inserts an event owned by userID.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (user_id, name, date, description, location)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''))
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.UserID, e.Name, e.Date, e.Description, e.Location).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByIDForUser returns an event by id only if owned by userID.
func (r *Repository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND user_id = $2`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, id, userID).
		Scan(&e.ID, &e.UserID, &e.Name, &e.Date, &e.Description, &e.Location, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByID returns an event by id regardless of owner. Used by the RSVP workflow,
// where authorization comes from the token record instead of a session.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&e.ID, &e.UserID, &e.Name, &e.Date, &e.Description, &e.Location, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByUser returns all events owned by userID, soonest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE user_id = $1 ORDER BY date NULLS LAST, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.Date, &e.Description, &e.Location, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update persists editable fields of an event owned by userID.
func (r *Repository) Update(ctx context.Context, e *models.Event) error {
	const q = `UPDATE events SET name = $3, date = $4, description = NULLIF($5,''), location = NULLIF($6,''), updated_at = NOW()
		WHERE id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, q, e.ID, e.UserID, e.Name, e.Date, e.Description, e.Location)
	return err
}

// Delete removes an event owned by userID.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

// AttachGuest links a guest to an event; re-attaching is a no-op.
func (r *Repository) AttachGuest(ctx context.Context, eventID, guestID uuid.UUID) error {
	const q = `INSERT INTO event_guests (event_id, guest_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, guest_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, eventID, guestID)
	return err
}

// DetachGuest removes a guest from an event.
func (r *Repository) DetachGuest(ctx context.Context, eventID, guestID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM event_guests WHERE event_id = $1 AND guest_id = $2`, eventID, guestID)
	return err
}

// EventGuestRow is a guest joined with its invitation metadata for one event.
type EventGuestRow struct {
	Guest  models.Guest      `json:"guest"`
	Invite models.EventGuest `json:"invite"`
}

// ListGuests returns guests attached to an event with invite metadata.
func (r *Repository) ListGuests(ctx context.Context, eventID uuid.UUID) ([]EventGuestRow, error) {
	const q = `SELECT g.id, g.user_id, g.first_name, COALESCE(g.last_name,''), COALESCE(g.email,''), COALESCE(g.phone,''),
		COALESCE(g.category,''), g.priority, g.status, g.rsvp_status, g.rsvp_at, g.rsvp_details, g.invited_at, g.created_at, g.updated_at,
		eg.event_id, eg.guest_id, eg.invite_sent, COALESCE(eg.invite_method,''), COALESCE(eg.invite_notes,''), eg.invite_sent_at, eg.added_at
		FROM event_guests eg
		JOIN guests g ON g.id = eg.guest_id
		WHERE eg.event_id = $1
		ORDER BY eg.added_at`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []EventGuestRow
	for rows.Next() {
		var row EventGuestRow
		g := &row.Guest
		eg := &row.Invite
		if err := rows.Scan(&g.ID, &g.UserID, &g.FirstName, &g.LastName, &g.Email, &g.Phone,
			&g.Category, &g.Priority, &g.Status, &g.RSVPStatus, &g.RSVPAt, &g.RSVPDetails, &g.InvitedAt, &g.CreatedAt, &g.UpdatedAt,
			&eg.EventID, &eg.GuestID, &eg.InviteSent, &eg.InviteMethod, &eg.InviteNotes, &eg.InviteSentAt, &eg.AddedAt); err != nil {
			return nil, err
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// MarkInviteSent records that an invitation email went out for this event/guest pair.
func (r *Repository) MarkInviteSent(ctx context.Context, eventID, guestID uuid.UUID, method string) error {
	const q = `UPDATE event_guests SET invite_sent = TRUE, invite_method = $3, invite_sent_at = NOW()
		WHERE event_id = $1 AND guest_id = $2`
	_, err := r.pool.Exec(ctx, q, eventID, guestID, method)
	return err
}
