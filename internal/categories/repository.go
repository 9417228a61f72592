package categories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles category persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a categories repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a category owned by userID. Duplicate names per user upsert.
func (r *Repository) Create(ctx context.Context, cat *models.Category) error {
	const q = `INSERT INTO categories (user_id, name)
		VALUES ($1, $2)
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, cat.UserID, cat.Name).Scan(&cat.ID, &cat.CreatedAt)
}

// ListByUser returns categories owned by userID.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, name, created_at FROM categories WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, cat)
	}
	return list, rows.Err()
}

// Delete removes a category owned by userID. Guests keep their label text.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
