package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andrefranchin/treine-me-api/internal/models"
)

// AdminRepository handles platform administrator access.
type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `
		SELECT id, nome, email, password_hash, created_at, updated_at
		FROM admins
		WHERE email = $1
	`

	admin := &models.Admin{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&admin.ID,
		&admin.Nome,
		&admin.Email,
		&admin.PasswordHash,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, "admin", "failed to get admin by email")
	}

	return admin, nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	query := `
		SELECT id, nome, email, password_hash, created_at, updated_at
		FROM admins
		WHERE id = $1
	`

	admin := &models.Admin{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&admin.ID,
		&admin.Nome,
		&admin.Email,
		&admin.PasswordHash,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, "admin", "failed to get admin")
	}

	return admin, nil
}
