package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/models"
)

// AulaRepository handles lesson data access, keyed by the parent modulo id.
type AulaRepository struct {
	pool *pgxpool.Pool
}

func NewAulaRepository(pool *pgxpool.Pool) *AulaRepository {
	return &AulaRepository{pool: pool}
}

const aulaColumns = "id, modulo_id, titulo, descricao, position, created_at, updated_at"

func scanAula(row interface{ Scan(...any) error }) (*models.Aula, error) {
	a := &models.Aula{}
	err := row.Scan(
		&a.ID,
		&a.ModuloID,
		&a.Titulo,
		&a.Descricao,
		&a.Position,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AulaRepository) ListByModulo(ctx context.Context, moduloID uuid.UUID) ([]models.Aula, error) {
	query := `SELECT ` + aulaColumns + `
		FROM aulas
		WHERE modulo_id = $1
		ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, moduloID)
	if err != nil {
		return nil, fmt.Errorf("failed to list aulas: %w", err)
	}
	defer rows.Close()

	aulas := []models.Aula{}
	for rows.Next() {
		aula, err := scanAula(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan aula: %w", err)
		}
		aulas = append(aulas, *aula)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating aulas: %w", rows.Err())
	}

	return aulas, nil
}

// Create appends an aula at the end of the modulo's order.
func (r *AulaRepository) Create(ctx context.Context, moduloID uuid.UUID, req *models.CreateAulaRequest) (*models.Aula, error) {
	query := `
		INSERT INTO aulas (modulo_id, titulo, descricao, position)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), 0) + 1 FROM aulas WHERE modulo_id = $1))
		RETURNING ` + aulaColumns

	aula, err := scanAula(r.pool.QueryRow(ctx, query, moduloID, req.Titulo, req.Descricao))
	if err != nil {
		return nil, fmt.Errorf("failed to create aula: %w", err)
	}

	return aula, nil
}

func (r *AulaRepository) Update(ctx context.Context, moduloID, id uuid.UUID, req *models.UpdateAulaRequest) (*models.Aula, error) {
	updates := []string{}
	args := []interface{}{}
	argIndex := 1

	if req.Titulo != nil {
		updates = append(updates, fmt.Sprintf("titulo = $%d", argIndex))
		args = append(args, *req.Titulo)
		argIndex++
	}
	if req.Descricao != nil {
		updates = append(updates, fmt.Sprintf("descricao = $%d", argIndex))
		args = append(args, *req.Descricao)
		argIndex++
	}

	if len(updates) == 0 {
		query := `SELECT ` + aulaColumns + ` FROM aulas WHERE id = $1 AND modulo_id = $2`
		aula, err := scanAula(r.pool.QueryRow(ctx, query, id, moduloID))
		if err != nil {
			return nil, notFoundOr(err, "aula", "failed to get aula")
		}
		return aula, nil
	}

	query := fmt.Sprintf(
		"UPDATE aulas SET %s, updated_at = now() WHERE id = $%d AND modulo_id = $%d RETURNING %s",
		joinStrings(updates, ", "), argIndex, argIndex+1, aulaColumns,
	)
	args = append(args, id, moduloID)

	aula, err := scanAula(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err, "aula", "failed to update aula")
	}

	return aula, nil
}

func (r *AulaRepository) Delete(ctx context.Context, moduloID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		"DELETE FROM aulas WHERE id = $1 AND modulo_id = $2",
		id, moduloID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete aula: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("aula")
	}
	return nil
}

// Reorder rewrites the positions of a modulo's aulas transactionally; see
// reorderChildren for the set-equality rule.
func (r *AulaRepository) Reorder(ctx context.Context, moduloID uuid.UUID, ids []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reorder: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := reorderChildren(ctx, tx, "aulas", "modulo_id", moduloID, ids); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}
