package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andrefranchin/treine-me-api/internal/ownership"
)

// OwnerDirectory implements ownership.Lookup over the relational schema.
// Nested resources resolve their owner through joins, so the answer is
// always the current state of the chain, not a denormalized copy.
type OwnerDirectory struct {
	pool *pgxpool.Pool
}

func NewOwnerDirectory(pool *pgxpool.Pool) *OwnerDirectory {
	return &OwnerDirectory{pool: pool}
}

func (d *OwnerDirectory) OwnerIDOf(ctx context.Context, resource ownership.Resource, id uuid.UUID) (uuid.UUID, error) {
	var query string
	switch resource {
	case ownership.ResourceProduto:
		query = "SELECT professor_id FROM produtos WHERE id = $1"
	case ownership.ResourceModulo:
		query = `SELECT p.professor_id FROM modulos m
			JOIN produtos p ON p.id = m.produto_id
			WHERE m.id = $1`
	case ownership.ResourceAula:
		query = `SELECT p.professor_id FROM aulas a
			JOIN modulos m ON m.id = a.modulo_id
			JOIN produtos p ON p.id = m.produto_id
			WHERE a.id = $1`
	case ownership.ResourceConteudo:
		query = `SELECT p.professor_id FROM conteudos c
			JOIN aulas a ON a.id = c.aula_id
			JOIN modulos m ON m.id = a.modulo_id
			JOIN produtos p ON p.id = m.produto_id
			WHERE c.id = $1`
	case ownership.ResourcePlano:
		query = "SELECT professor_id FROM planos WHERE id = $1"
	case ownership.ResourceInscricao:
		query = "SELECT aluno_id FROM inscricoes WHERE id = $1"
	default:
		return uuid.Nil, fmt.Errorf("no owner lookup for resource %q", resource)
	}

	var owner uuid.UUID
	if err := d.pool.QueryRow(ctx, query, id).Scan(&owner); err != nil {
		return uuid.Nil, notFoundOr(err, string(resource), "failed to resolve owner")
	}
	return owner, nil
}

func (d *OwnerDirectory) ParentIDOf(ctx context.Context, resource ownership.Resource, id uuid.UUID) (uuid.UUID, error) {
	var query string
	switch resource {
	case ownership.ResourceModulo:
		query = "SELECT produto_id FROM modulos WHERE id = $1"
	case ownership.ResourceAula:
		query = "SELECT modulo_id FROM aulas WHERE id = $1"
	case ownership.ResourceConteudo:
		query = "SELECT aula_id FROM conteudos WHERE id = $1"
	default:
		return uuid.Nil, fmt.Errorf("resource %q has no parent", resource)
	}

	var parent uuid.UUID
	if err := d.pool.QueryRow(ctx, query, id).Scan(&parent); err != nil {
		return uuid.Nil, notFoundOr(err, string(resource), "failed to resolve parent")
	}
	return parent, nil
}
