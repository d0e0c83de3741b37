package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/httpapi"
	"github.com/andrefranchin/treine-me-api/internal/models"
	"github.com/andrefranchin/treine-me-api/internal/ownership"
)

type PlanoStore interface {
	ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]models.Plano, error)
	Create(ctx context.Context, professorID uuid.UUID, req *models.CreatePlanoRequest) (*models.Plano, error)
	GetOwned(ctx context.Context, professorID, id uuid.UUID) (*models.Plano, error)
	UpdateOwned(ctx context.Context, professorID, id uuid.UUID, req *models.UpdatePlanoRequest) (*models.Plano, error)
	DeleteOwned(ctx context.Context, professorID, id uuid.UUID) error
	ListProdutoIDs(ctx context.Context, planoID uuid.UUID) ([]uuid.UUID, error)
}

// PlanoHandler manages a professor's subscription plans. Every query is
// scoped to the authenticated professor, so a foreign plano id reads as
// not found.
type PlanoHandler struct {
	planos PlanoStore
	filter *ownership.Filter
}

func NewPlanoHandler(planos PlanoStore, filter *ownership.Filter) *PlanoHandler {
	return &PlanoHandler{planos: planos, filter: filter}
}

func (h *PlanoHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	planos, err := h.planos.ListByProfessor(c.Request.Context(), p.Subject)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, planos)
}

func (h *PlanoHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.CreatePlanoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	plano, err := h.planos.Create(c.Request.Context(), p.Subject, &req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusCreated, plano)
}

func (h *PlanoHandler) Get(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	planoID, err := pathID(c, "id")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	plano, err := h.planos.GetOwned(c.Request.Context(), p.Subject, planoID)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	produtoIDs, err := h.planos.ListProdutoIDs(c.Request.Context(), plano.ID)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, gin.H{"plano": plano, "produto_ids": produtoIDs})
}

func (h *PlanoHandler) Update(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	planoID, err := pathID(c, "id")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.UpdatePlanoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	plano, err := h.planos.UpdateOwned(c.Request.Context(), p.Subject, planoID, &req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, plano)
}

func (h *PlanoHandler) Delete(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	planoID, err := pathID(c, "id")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	if err := h.planos.DeleteOwned(c.Request.Context(), p.Subject, planoID); err != nil {
		httpapi.Fail(c, err)
		return
	}
	// Nothing resolves plano owners through the cache yet; the drop is
	// here so a future Scope caller never reads a deleted plano's entry.
	h.filter.Invalidate(c.Request.Context(), ownership.ResourcePlano, planoID)

	httpapi.OK(c, http.StatusOK, gin.H{"deleted": planoID})
}
