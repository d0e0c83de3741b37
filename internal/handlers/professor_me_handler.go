package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/auth"
	"github.com/andrefranchin/treine-me-api/internal/httpapi"
	"github.com/andrefranchin/treine-me-api/internal/models"
)

// ProfessorAccount is the persistence surface for the professor's own
// profile and roster.
type ProfessorAccount interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Professor, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateProfessorRequest) (*models.Professor, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
}

// ProfessorRoster lists and registers the alunos under a professor.
type ProfessorRoster interface {
	ListByProfessor(ctx context.Context, professorID uuid.UUID, page, pageSize int) ([]models.Aluno, int, error)
	Create(ctx context.Context, professorID uuid.UUID, nome, email, passwordHash string) (*models.Aluno, error)
}

// ProfessorMeHandler serves /professores/me: the professor's own profile,
// avatar and student roster.
type ProfessorMeHandler struct {
	professores ProfessorAccount
	alunos      ProfessorRoster
	uploader    AvatarUploader
	hasher      *auth.PasswordHasher
}

func NewProfessorMeHandler(professores ProfessorAccount, alunos ProfessorRoster, uploader AvatarUploader, hasher *auth.PasswordHasher) *ProfessorMeHandler {
	return &ProfessorMeHandler{professores: professores, alunos: alunos, uploader: uploader, hasher: hasher}
}

func (h *ProfessorMeHandler) Get(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	professor, err := h.professores.GetByID(c.Request.Context(), p.Subject)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, professor)
}

func (h *ProfessorMeHandler) Update(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	// Ativo is an admin-only switch, so it never crosses this endpoint.
	professor, err := h.professores.Update(c.Request.Context(), p.Subject, &models.UpdateProfessorRequest{
		Nome: req.Nome,
		Bio:  req.Bio,
	})
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, professor)
}

func (h *ProfessorMeHandler) UploadAvatar(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		httpapi.Fail(c, apperrors.Validation("file", "file is required"))
		return
	}

	ctx := c.Request.Context()
	avatarURL, err := h.uploader.UploadAvatar(ctx, "professores", p.Subject, file)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	if err := h.professores.UpdateAvatar(ctx, p.Subject, avatarURL); err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, gin.H{"avatar_url": avatarURL})
}

// ListAlunos returns the professor's students, paginated.
func (h *ProfessorMeHandler) ListAlunos(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	page, pageSize := pageParams(c)
	alunos, total, err := h.alunos.ListByProfessor(c.Request.Context(), p.Subject, page, pageSize)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, gin.H{
		"alunos":    alunos,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// CreateAluno registers a new student under the professor's tenancy.
func (h *ProfessorMeHandler) CreateAluno(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.CreateAlunoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	aluno, err := h.alunos.Create(c.Request.Context(), p.Subject, req.Nome, normalizeEmail(req.Email), hash)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusCreated, aluno)
}
