package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/models"
)

type ProfessorRepository struct {
	pool *pgxpool.Pool
}

func NewProfessorRepository(pool *pgxpool.Pool) *ProfessorRepository {
	return &ProfessorRepository{pool: pool}
}

const professorColumns = "id, nome, email, password_hash, bio, avatar_url, ativo, created_at, updated_at"

func scanProfessor(row interface{ Scan(...any) error }) (*models.Professor, error) {
	p := &models.Professor{}
	err := row.Scan(
		&p.ID,
		&p.Nome,
		&p.Email,
		&p.PasswordHash,
		&p.Bio,
		&p.AvatarURL,
		&p.Ativo,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfessorRepository) Create(ctx context.Context, nome, email, passwordHash string) (*models.Professor, error) {
	query := `
		INSERT INTO professores (nome, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + professorColumns

	professor, err := scanProfessor(r.pool.QueryRow(ctx, query, nome, email, passwordHash))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, fmt.Errorf("failed to create professor: %w", err)
	}

	return professor, nil
}

func (r *ProfessorRepository) GetByEmail(ctx context.Context, email string) (*models.Professor, error) {
	query := `SELECT ` + professorColumns + ` FROM professores WHERE email = $1 AND ativo = true`

	professor, err := scanProfessor(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, notFoundOr(err, "professor", "failed to get professor by email")
	}

	return professor, nil
}

func (r *ProfessorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Professor, error) {
	query := `SELECT ` + professorColumns + ` FROM professores WHERE id = $1`

	professor, err := scanProfessor(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "professor", "failed to get professor")
	}

	return professor, nil
}

func (r *ProfessorRepository) List(ctx context.Context, page, pageSize int) ([]models.Professor, int, error) {
	offset := (page - 1) * pageSize

	var totalCount int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM professores").Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count professores: %w", err)
	}

	query := `SELECT ` + professorColumns + `
		FROM professores
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list professores: %w", err)
	}
	defer rows.Close()

	professores := []models.Professor{}
	for rows.Next() {
		professor, err := scanProfessor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan professor: %w", err)
		}
		professores = append(professores, *professor)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("error iterating professores: %w", rows.Err())
	}

	return professores, totalCount, nil
}

func (r *ProfessorRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateProfessorRequest) (*models.Professor, error) {
	updates := []string{}
	args := []interface{}{}
	argIndex := 1

	if req.Nome != nil {
		updates = append(updates, fmt.Sprintf("nome = $%d", argIndex))
		args = append(args, *req.Nome)
		argIndex++
	}
	if req.Bio != nil {
		updates = append(updates, fmt.Sprintf("bio = $%d", argIndex))
		args = append(args, *req.Bio)
		argIndex++
	}
	if req.Ativo != nil {
		updates = append(updates, fmt.Sprintf("ativo = $%d", argIndex))
		args = append(args, *req.Ativo)
		argIndex++
	}

	if len(updates) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf(
		"UPDATE professores SET %s, updated_at = now() WHERE id = $%d RETURNING %s",
		joinStrings(updates, ", "), argIndex, professorColumns,
	)
	args = append(args, id)

	professor, err := scanProfessor(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err, "professor", "failed to update professor")
	}

	return professor, nil
}

func (r *ProfessorRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE professores SET avatar_url = $1, updated_at = now() WHERE id = $2",
		avatarURL, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update professor avatar: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("professor")
	}
	return nil
}

func (r *ProfessorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, "UPDATE professores SET ativo = false, updated_at = now() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete professor: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("professor")
	}
	return nil
}

// joinStrings joins SQL fragments for dynamic update statements.
func joinStrings(strs []string, sep string) string {
	if len(strs) == 0 {
		return ""
	}
	result := strs[0]
	for i := 1; i < len(strs); i++ {
		result += sep + strs[i]
	}
	return result
}
