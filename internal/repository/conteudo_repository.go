package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/models"
)

type ConteudoRepository struct {
	pool *pgxpool.Pool
}

func NewConteudoRepository(pool *pgxpool.Pool) *ConteudoRepository {
	return &ConteudoRepository{pool: pool}
}

const conteudoColumns = "id, aula_id, filename, original_filename, mime_type, file_size, storage_path, public_url, thumb_url, status, created_at, updated_at"

func scanConteudo(row interface{ Scan(...any) error }) (*models.Conteudo, error) {
	c := &models.Conteudo{}
	err := row.Scan(
		&c.ID,
		&c.AulaID,
		&c.Filename,
		&c.OriginalFilename,
		&c.MimeType,
		&c.FileSize,
		&c.StoragePath,
		&c.PublicURL,
		&c.ThumbURL,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateConteudoParams carries everything the upload service resolved.
type CreateConteudoParams struct {
	AulaID           uuid.UUID
	Filename         string
	OriginalFilename string
	MimeType         string
	FileSize         int64
	StoragePath      string
	PublicURL        string
	Status           models.ConteudoStatus
}

func (r *ConteudoRepository) Create(ctx context.Context, params *CreateConteudoParams) (*models.Conteudo, error) {
	query := `
		INSERT INTO conteudos (aula_id, filename, original_filename, mime_type, file_size, storage_path, public_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + conteudoColumns

	conteudo, err := scanConteudo(r.pool.QueryRow(ctx, query,
		params.AulaID,
		params.Filename,
		params.OriginalFilename,
		params.MimeType,
		params.FileSize,
		params.StoragePath,
		params.PublicURL,
		params.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create conteudo: %w", err)
	}

	return conteudo, nil
}

func (r *ConteudoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conteudo, error) {
	query := `SELECT ` + conteudoColumns + ` FROM conteudos WHERE id = $1`

	conteudo, err := scanConteudo(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "conteudo", "failed to get conteudo")
	}

	return conteudo, nil
}

func (r *ConteudoRepository) ListByAula(ctx context.Context, aulaID uuid.UUID) ([]models.Conteudo, error) {
	query := `SELECT ` + conteudoColumns + `
		FROM conteudos
		WHERE aula_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, aulaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conteudos: %w", err)
	}
	defer rows.Close()

	conteudos := []models.Conteudo{}
	for rows.Next() {
		conteudo, err := scanConteudo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conteudo: %w", err)
		}
		conteudos = append(conteudos, *conteudo)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating conteudos: %w", rows.Err())
	}

	return conteudos, nil
}

func (r *ConteudoRepository) Delete(ctx context.Context, aulaID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		"DELETE FROM conteudos WHERE id = $1 AND aula_id = $2",
		id, aulaID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete conteudo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("conteudo")
	}
	return nil
}

func (r *ConteudoRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ConteudoStatus) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE conteudos SET status = $1, updated_at = now() WHERE id = $2",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update conteudo status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("conteudo")
	}
	return nil
}

func (r *ConteudoRepository) SetThumbURL(ctx context.Context, id uuid.UUID, thumbURL string) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE conteudos SET thumb_url = $1, updated_at = now() WHERE id = $2",
		thumbURL, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set conteudo thumb: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("conteudo")
	}
	return nil
}
