package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/httpapi"
	"github.com/andrefranchin/treine-me-api/internal/models"
)

type InscricaoStore interface {
	Create(ctx context.Context, alunoID, planoID uuid.UUID) (*models.Inscricao, error)
	GetOwned(ctx context.Context, alunoID, id uuid.UUID) (*models.Inscricao, error)
	ListByAluno(ctx context.Context, alunoID uuid.UUID) ([]models.Inscricao, error)
	Cancel(ctx context.Context, alunoID, id uuid.UUID) error
}

// PlanoCatalog resolves planos visible to enrolling alunos.
type PlanoCatalog interface {
	GetActive(ctx context.Context, id uuid.UUID) (*models.Plano, error)
}

// AlunoProfile resolves the caller's aluno record.
type AlunoProfile interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Aluno, error)
}

// InscricaoHandler manages an aluno's enrollments. An aluno can only
// enroll in planos published by their own professor; anything else is
// reported as a missing plano.
type InscricaoHandler struct {
	inscricoes InscricaoStore
	planos     PlanoCatalog
	alunos     AlunoProfile
}

func NewInscricaoHandler(inscricoes InscricaoStore, planos PlanoCatalog, alunos AlunoProfile) *InscricaoHandler {
	return &InscricaoHandler{inscricoes: inscricoes, planos: planos, alunos: alunos}
}

func (h *InscricaoHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	inscricoes, err := h.inscricoes.ListByAluno(c.Request.Context(), p.Subject)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, inscricoes)
}

func (h *InscricaoHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.CreateInscricaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	ctx := c.Request.Context()

	aluno, err := h.alunos.GetByID(ctx, p.Subject)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	plano, err := h.planos.GetActive(ctx, req.PlanoID)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	if plano.ProfessorID != aluno.ProfessorID {
		httpapi.Fail(c, apperrors.NotFound("plano"))
		return
	}

	inscricao, err := h.inscricoes.Create(ctx, p.Subject, plano.ID)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusCreated, inscricao)
}

func (h *InscricaoHandler) Get(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	inscricaoID, err := pathID(c, "id")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	inscricao, err := h.inscricoes.GetOwned(c.Request.Context(), p.Subject, inscricaoID)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, inscricao)
}

// Cancel deactivates an active enrollment. The row is kept with status
// cancelled so the aluno's history survives.
func (h *InscricaoHandler) Cancel(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	inscricaoID, err := pathID(c, "id")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	if err := h.inscricoes.Cancel(c.Request.Context(), p.Subject, inscricaoID); err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, gin.H{"cancelled": inscricaoID})
}
