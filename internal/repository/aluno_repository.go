package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/models"
)

type AlunoRepository struct {
	pool *pgxpool.Pool
}

func NewAlunoRepository(pool *pgxpool.Pool) *AlunoRepository {
	return &AlunoRepository{pool: pool}
}

const alunoColumns = "id, professor_id, nome, email, password_hash, avatar_url, created_at, updated_at"

func scanAluno(row interface{ Scan(...any) error }) (*models.Aluno, error) {
	a := &models.Aluno{}
	err := row.Scan(
		&a.ID,
		&a.ProfessorID,
		&a.Nome,
		&a.Email,
		&a.PasswordHash,
		&a.AvatarURL,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AlunoRepository) Create(ctx context.Context, professorID uuid.UUID, nome, email, passwordHash string) (*models.Aluno, error) {
	query := `
		INSERT INTO alunos (professor_id, nome, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + alunoColumns

	aluno, err := scanAluno(r.pool.QueryRow(ctx, query, professorID, nome, email, passwordHash))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("email already registered for this professor")
		}
		return nil, fmt.Errorf("failed to create aluno: %w", err)
	}

	return aluno, nil
}

// GetByEmailAndProfessor looks up an aluno inside one professor's tenant.
// The same email may exist under several professors, which is why aluno
// login carries a professor_id selector.
func (r *AlunoRepository) GetByEmailAndProfessor(ctx context.Context, email string, professorID uuid.UUID) (*models.Aluno, error) {
	query := `SELECT ` + alunoColumns + ` FROM alunos WHERE email = $1 AND professor_id = $2`

	aluno, err := scanAluno(r.pool.QueryRow(ctx, query, email, professorID))
	if err != nil {
		return nil, notFoundOr(err, "aluno", "failed to get aluno by email")
	}

	return aluno, nil
}

func (r *AlunoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Aluno, error) {
	query := `SELECT ` + alunoColumns + ` FROM alunos WHERE id = $1`

	aluno, err := scanAluno(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "aluno", "failed to get aluno")
	}

	return aluno, nil
}

// ListByProfessor returns the professor's own students, paginated.
func (r *AlunoRepository) ListByProfessor(ctx context.Context, professorID uuid.UUID, page, pageSize int) ([]models.Aluno, int, error) {
	offset := (page - 1) * pageSize

	var totalCount int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM alunos WHERE professor_id = $1", professorID).Scan(&totalCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count alunos: %w", err)
	}

	query := `SELECT ` + alunoColumns + `
		FROM alunos
		WHERE professor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, professorID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alunos: %w", err)
	}
	defer rows.Close()

	alunos := []models.Aluno{}
	for rows.Next() {
		aluno, err := scanAluno(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan aluno: %w", err)
		}
		alunos = append(alunos, *aluno)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("error iterating alunos: %w", rows.Err())
	}

	return alunos, totalCount, nil
}

// ListAll returns every aluno on the platform, for the admin panel.
func (r *AlunoRepository) ListAll(ctx context.Context, page, pageSize int) ([]models.Aluno, int, error) {
	offset := (page - 1) * pageSize

	var totalCount int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM alunos").Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count alunos: %w", err)
	}

	query := `SELECT ` + alunoColumns + ` FROM alunos ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alunos: %w", err)
	}
	defer rows.Close()

	alunos := []models.Aluno{}
	for rows.Next() {
		aluno, err := scanAluno(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan aluno: %w", err)
		}
		alunos = append(alunos, *aluno)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("error iterating alunos: %w", rows.Err())
	}

	return alunos, totalCount, nil
}

func (r *AlunoRepository) UpdateProfile(ctx context.Context, id uuid.UUID, nome string) (*models.Aluno, error) {
	query := `
		UPDATE alunos SET nome = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + alunoColumns

	aluno, err := scanAluno(r.pool.QueryRow(ctx, query, nome, id))
	if err != nil {
		return nil, notFoundOr(err, "aluno", "failed to update aluno")
	}

	return aluno, nil
}

func (r *AlunoRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE alunos SET avatar_url = $1, updated_at = now() WHERE id = $2",
		avatarURL, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update aluno avatar: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("aluno")
	}
	return nil
}
