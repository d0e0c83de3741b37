package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/models"
)

// ModuloRepository handles module data access. All operations are keyed by
// the parent produto id, so a modulo reached through the wrong produto scans
// as no rows.
type ModuloRepository struct {
	pool *pgxpool.Pool
}

func NewModuloRepository(pool *pgxpool.Pool) *ModuloRepository {
	return &ModuloRepository{pool: pool}
}

const moduloColumns = "id, produto_id, titulo, position, created_at, updated_at"

func scanModulo(row interface{ Scan(...any) error }) (*models.Modulo, error) {
	m := &models.Modulo{}
	err := row.Scan(
		&m.ID,
		&m.ProdutoID,
		&m.Titulo,
		&m.Position,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListByProduto returns the produto's modules in their current order.
func (r *ModuloRepository) ListByProduto(ctx context.Context, produtoID uuid.UUID) ([]models.Modulo, error) {
	query := `SELECT ` + moduloColumns + `
		FROM modulos
		WHERE produto_id = $1
		ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, produtoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modulos: %w", err)
	}
	defer rows.Close()

	modulos := []models.Modulo{}
	for rows.Next() {
		modulo, err := scanModulo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan modulo: %w", err)
		}
		modulos = append(modulos, *modulo)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating modulos: %w", rows.Err())
	}

	return modulos, nil
}

// Create appends a modulo at the end of the produto's order.
func (r *ModuloRepository) Create(ctx context.Context, produtoID uuid.UUID, titulo string) (*models.Modulo, error) {
	query := `
		INSERT INTO modulos (produto_id, titulo, position)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM modulos WHERE produto_id = $1))
		RETURNING ` + moduloColumns

	modulo, err := scanModulo(r.pool.QueryRow(ctx, query, produtoID, titulo))
	if err != nil {
		return nil, fmt.Errorf("failed to create modulo: %w", err)
	}

	return modulo, nil
}

func (r *ModuloRepository) Update(ctx context.Context, produtoID, id uuid.UUID, req *models.UpdateModuloRequest) (*models.Modulo, error) {
	if req.Titulo == nil {
		query := `SELECT ` + moduloColumns + ` FROM modulos WHERE id = $1 AND produto_id = $2`
		modulo, err := scanModulo(r.pool.QueryRow(ctx, query, id, produtoID))
		if err != nil {
			return nil, notFoundOr(err, "modulo", "failed to get modulo")
		}
		return modulo, nil
	}

	query := `
		UPDATE modulos SET titulo = $1, updated_at = now()
		WHERE id = $2 AND produto_id = $3
		RETURNING ` + moduloColumns

	modulo, err := scanModulo(r.pool.QueryRow(ctx, query, *req.Titulo, id, produtoID))
	if err != nil {
		return nil, notFoundOr(err, "modulo", "failed to update modulo")
	}

	return modulo, nil
}

func (r *ModuloRepository) Delete(ctx context.Context, produtoID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		"DELETE FROM modulos WHERE id = $1 AND produto_id = $2",
		id, produtoID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete modulo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("modulo")
	}
	return nil
}

// Reorder rewrites the positions of a produto's modules in one transaction.
// The request must name exactly the produto's current children; anything
// else is a validation error and nothing is written.
func (r *ModuloRepository) Reorder(ctx context.Context, produtoID uuid.UUID, ids []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reorder: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := reorderChildren(ctx, tx, "modulos", "produto_id", produtoID, ids); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}

// reorderChildren locks the parent's children, checks the requested id set
// matches them exactly, then assigns positions 1..n in request order.
func reorderChildren(ctx context.Context, tx pgx.Tx, table, parentColumn string, parentID uuid.UUID, ids []uuid.UUID) error {
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s = $1 FOR UPDATE", table, parentColumn)
	rows, err := tx.Query(ctx, query, parentID)
	if err != nil {
		return fmt.Errorf("failed to lock children: %w", err)
	}

	current := map[uuid.UUID]bool{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan child id: %w", err)
		}
		current[id] = true
	}
	rows.Close()
	if rows.Err() != nil {
		return fmt.Errorf("error iterating children: %w", rows.Err())
	}

	if len(ids) != len(current) {
		return apperrors.Validation("ids", "reorder must include every item exactly once")
	}
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if !current[id] || seen[id] {
			return apperrors.Validation("ids", "reorder must include every item exactly once")
		}
		seen[id] = true
	}

	update := fmt.Sprintf("UPDATE %s SET position = $1, updated_at = now() WHERE id = $2", table)
	for i, id := range ids {
		if _, err := tx.Exec(ctx, update, i+1, id); err != nil {
			return fmt.Errorf("failed to set position: %w", err)
		}
	}

	return nil
}
