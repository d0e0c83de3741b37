package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/models"
)

type InscricaoRepository struct {
	pool *pgxpool.Pool
}

func NewInscricaoRepository(pool *pgxpool.Pool) *InscricaoRepository {
	return &InscricaoRepository{pool: pool}
}

const inscricaoColumns = "id, aluno_id, plano_id, status, created_at, updated_at"

func scanInscricao(row interface{ Scan(...any) error }) (*models.Inscricao, error) {
	i := &models.Inscricao{}
	err := row.Scan(
		&i.ID,
		&i.AlunoID,
		&i.PlanoID,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// Create enrolls the aluno into a plano. A partial unique index on
// (aluno_id, plano_id) for active rows turns a double enrollment into a
// conflict.
func (r *InscricaoRepository) Create(ctx context.Context, alunoID, planoID uuid.UUID) (*models.Inscricao, error) {
	query := `
		INSERT INTO inscricoes (aluno_id, plano_id, status)
		VALUES ($1, $2, 'active')
		RETURNING ` + inscricaoColumns

	inscricao, err := scanInscricao(r.pool.QueryRow(ctx, query, alunoID, planoID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("already enrolled in this plano")
		}
		return nil, fmt.Errorf("failed to create inscricao: %w", err)
	}

	return inscricao, nil
}

func (r *InscricaoRepository) GetOwned(ctx context.Context, alunoID, id uuid.UUID) (*models.Inscricao, error) {
	query := `SELECT ` + inscricaoColumns + ` FROM inscricoes WHERE id = $1 AND aluno_id = $2`

	inscricao, err := scanInscricao(r.pool.QueryRow(ctx, query, id, alunoID))
	if err != nil {
		return nil, notFoundOr(err, "inscricao", "failed to get inscricao")
	}

	return inscricao, nil
}

func (r *InscricaoRepository) ListByAluno(ctx context.Context, alunoID uuid.UUID) ([]models.Inscricao, error) {
	query := `SELECT ` + inscricaoColumns + `
		FROM inscricoes
		WHERE aluno_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, alunoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inscricoes: %w", err)
	}
	defer rows.Close()

	inscricoes := []models.Inscricao{}
	for rows.Next() {
		inscricao, err := scanInscricao(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inscricao: %w", err)
		}
		inscricoes = append(inscricoes, *inscricao)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating inscricoes: %w", rows.Err())
	}

	return inscricoes, nil
}

// Cancel marks the aluno's own inscricao cancelled.
func (r *InscricaoRepository) Cancel(ctx context.Context, alunoID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE inscricoes SET status = 'cancelled', updated_at = now() WHERE id = $1 AND aluno_id = $2 AND status = 'active'",
		id, alunoID,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel inscricao: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("inscricao")
	}
	return nil
}
