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

type PlanoRepository struct {
	pool *pgxpool.Pool
}

func NewPlanoRepository(pool *pgxpool.Pool) *PlanoRepository {
	return &PlanoRepository{pool: pool}
}

const planoColumns = "id, professor_id, nome, descricao, preco_centavos, ativo, created_at, updated_at"

func scanPlano(row interface{ Scan(...any) error }) (*models.Plano, error) {
	p := &models.Plano{}
	err := row.Scan(
		&p.ID,
		&p.ProfessorID,
		&p.Nome,
		&p.Descricao,
		&p.PrecoCentavos,
		&p.Ativo,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts the plano and its produto links in one transaction. Linked
// produtos must belong to the same professor; ids outside the tenant fail
// the whole create as NotFound.
func (r *PlanoRepository) Create(ctx context.Context, professorID uuid.UUID, req *models.CreatePlanoRequest) (*models.Plano, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin plano create: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO planos (professor_id, nome, descricao, preco_centavos)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + planoColumns

	plano, err := scanPlano(tx.QueryRow(ctx, query, professorID, req.Nome, req.Descricao, req.PrecoCentavos))
	if err != nil {
		return nil, fmt.Errorf("failed to create plano: %w", err)
	}

	if len(req.ProdutoIDs) > 0 {
		linked, err := linkProdutos(ctx, tx, plano.ID, professorID, req.ProdutoIDs)
		if err != nil {
			return nil, err
		}
		if linked != len(req.ProdutoIDs) {
			return nil, apperrors.NotFound("produto")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit plano create: %w", err)
	}

	return plano, nil
}

// linkProdutos inserts plano_produtos rows, restricted to produtos the
// professor owns, and returns how many rows were actually linked.
func linkProdutos(ctx context.Context, tx pgx.Tx, planoID, professorID uuid.UUID, produtoIDs []uuid.UUID) (int, error) {
	result, err := tx.Exec(ctx, `
		INSERT INTO plano_produtos (plano_id, produto_id)
		SELECT $1, id FROM produtos WHERE id = ANY($2) AND professor_id = $3
	`, planoID, produtoIDs, professorID)
	if err != nil {
		return 0, fmt.Errorf("failed to link produtos: %w", err)
	}
	return int(result.RowsAffected()), nil
}

func (r *PlanoRepository) GetOwned(ctx context.Context, professorID, id uuid.UUID) (*models.Plano, error) {
	query := `SELECT ` + planoColumns + ` FROM planos WHERE id = $1 AND professor_id = $2`

	plano, err := scanPlano(r.pool.QueryRow(ctx, query, id, professorID))
	if err != nil {
		return nil, notFoundOr(err, "plano", "failed to get plano")
	}

	return plano, nil
}

// GetActive fetches an active plano by id, for aluno enrollment. Not owner
// scoped: any aluno of the plano's professor may enroll.
func (r *PlanoRepository) GetActive(ctx context.Context, id uuid.UUID) (*models.Plano, error) {
	query := `SELECT ` + planoColumns + ` FROM planos WHERE id = $1 AND ativo = true`

	plano, err := scanPlano(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "plano", "failed to get plano")
	}

	return plano, nil
}

func (r *PlanoRepository) ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]models.Plano, error) {
	query := `SELECT ` + planoColumns + `
		FROM planos
		WHERE professor_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, professorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list planos: %w", err)
	}
	defer rows.Close()

	planos := []models.Plano{}
	for rows.Next() {
		plano, err := scanPlano(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plano: %w", err)
		}
		planos = append(planos, *plano)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating planos: %w", rows.Err())
	}

	return planos, nil
}

func (r *PlanoRepository) UpdateOwned(ctx context.Context, professorID, id uuid.UUID, req *models.UpdatePlanoRequest) (*models.Plano, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin plano update: %w", err)
	}
	defer tx.Rollback(ctx)

	updates := []string{}
	args := []interface{}{}
	argIndex := 1

	if req.Nome != nil {
		updates = append(updates, fmt.Sprintf("nome = $%d", argIndex))
		args = append(args, *req.Nome)
		argIndex++
	}
	if req.Descricao != nil {
		updates = append(updates, fmt.Sprintf("descricao = $%d", argIndex))
		args = append(args, *req.Descricao)
		argIndex++
	}
	if req.PrecoCentavos != nil {
		updates = append(updates, fmt.Sprintf("preco_centavos = $%d", argIndex))
		args = append(args, *req.PrecoCentavos)
		argIndex++
	}
	if req.Ativo != nil {
		updates = append(updates, fmt.Sprintf("ativo = $%d", argIndex))
		args = append(args, *req.Ativo)
		argIndex++
	}

	var plano *models.Plano
	if len(updates) > 0 {
		query := fmt.Sprintf(
			"UPDATE planos SET %s, updated_at = now() WHERE id = $%d AND professor_id = $%d RETURNING %s",
			joinStrings(updates, ", "), argIndex, argIndex+1, planoColumns,
		)
		args = append(args, id, professorID)
		plano, err = scanPlano(tx.QueryRow(ctx, query, args...))
	} else {
		query := `SELECT ` + planoColumns + ` FROM planos WHERE id = $1 AND professor_id = $2`
		plano, err = scanPlano(tx.QueryRow(ctx, query, id, professorID))
	}
	if err != nil {
		return nil, notFoundOr(err, "plano", "failed to update plano")
	}

	if req.ProdutoIDs != nil {
		if _, err := tx.Exec(ctx, "DELETE FROM plano_produtos WHERE plano_id = $1", id); err != nil {
			return nil, fmt.Errorf("failed to reset plano produtos: %w", err)
		}
		if len(req.ProdutoIDs) > 0 {
			result, err := tx.Exec(ctx, `
				INSERT INTO plano_produtos (plano_id, produto_id)
				SELECT $1, id FROM produtos WHERE id = ANY($2) AND professor_id = $3
			`, id, req.ProdutoIDs, professorID)
			if err != nil {
				return nil, fmt.Errorf("failed to link produtos: %w", err)
			}
			if int(result.RowsAffected()) != len(req.ProdutoIDs) {
				return nil, apperrors.NotFound("produto")
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit plano update: %w", err)
	}

	return plano, nil
}

func (r *PlanoRepository) DeleteOwned(ctx context.Context, professorID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		"DELETE FROM planos WHERE id = $1 AND professor_id = $2",
		id, professorID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete plano: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("plano")
	}
	return nil
}

// ListProdutoIDs returns the produtos included in a plano.
func (r *PlanoRepository) ListProdutoIDs(ctx context.Context, planoID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT produto_id FROM plano_produtos WHERE plano_id = $1 ORDER BY produto_id",
		planoID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list plano produtos: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan produto id: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating plano produtos: %w", rows.Err())
	}

	return ids, nil
}
