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

// ProfessorAdminStore is the platform-level professor management surface.
type ProfessorAdminStore interface {
	Create(ctx context.Context, nome, email, passwordHash string) (*models.Professor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Professor, error)
	List(ctx context.Context, page, pageSize int) ([]models.Professor, int, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateProfessorRequest) (*models.Professor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AlunoAdminStore lists alunos across every professor.
type AlunoAdminStore interface {
	ListAll(ctx context.Context, page, pageSize int) ([]models.Aluno, int, error)
}

// AdminHandler serves platform administration: professor accounts and a
// cross-tenant view of alunos.
type AdminHandler struct {
	professores ProfessorAdminStore
	alunos      AlunoAdminStore
	hasher      *auth.PasswordHasher
}

func NewAdminHandler(professores ProfessorAdminStore, alunos AlunoAdminStore, hasher *auth.PasswordHasher) *AdminHandler {
	return &AdminHandler{professores: professores, alunos: alunos, hasher: hasher}
}

func (h *AdminHandler) CreateProfessor(c *gin.Context) {
	var req models.CreateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	professor, err := h.professores.Create(c.Request.Context(), req.Nome, normalizeEmail(req.Email), hash)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusCreated, professor)
}

func (h *AdminHandler) GetProfessor(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	professor, err := h.professores.GetByID(c.Request.Context(), id)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, professor)
}

func (h *AdminHandler) ListProfessores(c *gin.Context) {
	page, pageSize := pageParams(c)
	professores, total, err := h.professores.List(c.Request.Context(), page, pageSize)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, gin.H{
		"professores": professores,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
	})
}

func (h *AdminHandler) UpdateProfessor(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.UpdateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	professor, err := h.professores.Update(c.Request.Context(), id, &req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, professor)
}

// DeleteProfessor deactivates the account. The row stays so the
// professor's catalog and students remain intact.
func (h *AdminHandler) DeleteProfessor(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	if err := h.professores.Delete(c.Request.Context(), id); err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, gin.H{"deactivated": id})
}

func (h *AdminHandler) ListAlunos(c *gin.Context) {
	page, pageSize := pageParams(c)
	alunos, total, err := h.alunos.ListAll(c.Request.Context(), page, pageSize)
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
