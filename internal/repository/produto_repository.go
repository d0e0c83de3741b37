package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/models"
)

// ProdutoRepository handles course data access. Every query on behalf of a
// professor carries the professor id in the WHERE clause: a produto owned by
// someone else scans as no rows, which surfaces as the same NotFound an
// absent id produces.
type ProdutoRepository struct {
	pool *pgxpool.Pool
}

func NewProdutoRepository(pool *pgxpool.Pool) *ProdutoRepository {
	return &ProdutoRepository{pool: pool}
}

const produtoColumns = "id, professor_id, titulo, descricao, cover_url, ativo, created_at, updated_at"

func scanProduto(row interface{ Scan(...any) error }) (*models.Produto, error) {
	p := &models.Produto{}
	err := row.Scan(
		&p.ID,
		&p.ProfessorID,
		&p.Titulo,
		&p.Descricao,
		&p.CoverURL,
		&p.Ativo,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProdutoRepository) Create(ctx context.Context, professorID uuid.UUID, req *models.CreateProdutoRequest) (*models.Produto, error) {
	query := `
		INSERT INTO produtos (professor_id, titulo, descricao)
		VALUES ($1, $2, $3)
		RETURNING ` + produtoColumns

	produto, err := scanProduto(r.pool.QueryRow(ctx, query, professorID, req.Titulo, req.Descricao))
	if err != nil {
		return nil, fmt.Errorf("failed to create produto: %w", err)
	}

	return produto, nil
}

// GetOwned fetches a produto only if it belongs to the professor.
func (r *ProdutoRepository) GetOwned(ctx context.Context, professorID, id uuid.UUID) (*models.Produto, error) {
	query := `SELECT ` + produtoColumns + ` FROM produtos WHERE id = $1 AND professor_id = $2`

	produto, err := scanProduto(r.pool.QueryRow(ctx, query, id, professorID))
	if err != nil {
		return nil, notFoundOr(err, "produto", "failed to get produto")
	}

	return produto, nil
}

func (r *ProdutoRepository) ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]models.Produto, error) {
	query := `SELECT ` + produtoColumns + `
		FROM produtos
		WHERE professor_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, professorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list produtos: %w", err)
	}
	defer rows.Close()

	produtos := []models.Produto{}
	for rows.Next() {
		produto, err := scanProduto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan produto: %w", err)
		}
		produtos = append(produtos, *produto)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating produtos: %w", rows.Err())
	}

	return produtos, nil
}

func (r *ProdutoRepository) UpdateOwned(ctx context.Context, professorID, id uuid.UUID, req *models.UpdateProdutoRequest) (*models.Produto, error) {
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
	if req.Ativo != nil {
		updates = append(updates, fmt.Sprintf("ativo = $%d", argIndex))
		args = append(args, *req.Ativo)
		argIndex++
	}

	if len(updates) == 0 {
		return r.GetOwned(ctx, professorID, id)
	}

	query := fmt.Sprintf(
		"UPDATE produtos SET %s, updated_at = now() WHERE id = $%d AND professor_id = $%d RETURNING %s",
		joinStrings(updates, ", "), argIndex, argIndex+1, produtoColumns,
	)
	args = append(args, id, professorID)

	produto, err := scanProduto(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err, "produto", "failed to update produto")
	}

	return produto, nil
}

func (r *ProdutoRepository) DeleteOwned(ctx context.Context, professorID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		"DELETE FROM produtos WHERE id = $1 AND professor_id = $2",
		id, professorID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete produto: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("produto")
	}
	return nil
}

func (r *ProdutoRepository) SetCoverURL(ctx context.Context, professorID, id uuid.UUID, coverURL string) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE produtos SET cover_url = $1, updated_at = now() WHERE id = $2 AND professor_id = $3",
		coverURL, id, professorID,
	)
	if err != nil {
		return fmt.Errorf("failed to set produto cover: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("produto")
	}
	return nil
}

// ListForAluno returns the active produtos an aluno can reach through an
// active inscricao in a plano that includes them.
func (r *ProdutoRepository) ListForAluno(ctx context.Context, alunoID uuid.UUID) ([]models.Produto, error) {
	query := `
		SELECT DISTINCT p.id, p.professor_id, p.titulo, p.descricao, p.cover_url, p.ativo, p.created_at, p.updated_at
		FROM produtos p
		JOIN plano_produtos pp ON pp.produto_id = p.id
		JOIN inscricoes i ON i.plano_id = pp.plano_id
		WHERE i.aluno_id = $1 AND i.status = 'active' AND p.ativo = true
		ORDER BY p.titulo
	`

	rows, err := r.pool.Query(ctx, query, alunoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list produtos for aluno: %w", err)
	}
	defer rows.Close()

	produtos := []models.Produto{}
	for rows.Next() {
		produto, err := scanProduto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan produto: %w", err)
		}
		produtos = append(produtos, *produto)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating produtos: %w", rows.Err())
	}

	return produtos, nil
}

// GetForAluno fetches a produto only if the aluno has an active inscricao
// granting access. Courses outside the aluno's enrollment are NotFound.
func (r *ProdutoRepository) GetForAluno(ctx context.Context, alunoID, id uuid.UUID) (*models.Produto, error) {
	query := `
		SELECT p.id, p.professor_id, p.titulo, p.descricao, p.cover_url, p.ativo, p.created_at, p.updated_at
		FROM produtos p
		JOIN plano_produtos pp ON pp.produto_id = p.id
		JOIN inscricoes i ON i.plano_id = pp.plano_id
		WHERE p.id = $1 AND i.aluno_id = $2 AND i.status = 'active' AND p.ativo = true
		LIMIT 1
	`

	produto, err := scanProduto(r.pool.QueryRow(ctx, query, id, alunoID))
	if err != nil {
		return nil, notFoundOr(err, "produto", "failed to get produto for aluno")
	}

	return produto, nil
}
