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

// ModuloStore is the persistence surface ModuloHandler needs; everything is
// keyed by the parent produto id.
type ModuloStore interface {
	ListByProduto(ctx context.Context, produtoID uuid.UUID) ([]models.Modulo, error)
	Create(ctx context.Context, produtoID uuid.UUID, titulo string) (*models.Modulo, error)
	Update(ctx context.Context, produtoID, id uuid.UUID, req *models.UpdateModuloRequest) (*models.Modulo, error)
	Delete(ctx context.Context, produtoID, id uuid.UUID) error
	Reorder(ctx context.Context, produtoID uuid.UUID, ids []uuid.UUID) error
}

// ModuloHandler serves modules nested under a professor's produto. The
// produto level of the path is ownership-checked before any module work,
// and module operations are additionally keyed by produto id in SQL.
type ModuloHandler struct {
	store  ModuloStore
	filter *ownership.Filter
}

func NewModuloHandler(store ModuloStore, filter *ownership.Filter) *ModuloHandler {
	return &ModuloHandler{store: store, filter: filter}
}

// scopeProduto verifies the produto in the path belongs to the caller.
func (h *ModuloHandler) scopeProduto(c *gin.Context) (uuid.UUID, error) {
	p, err := principal(c)
	if err != nil {
		return uuid.Nil, err
	}
	produtoID, err := pathID(c, "id")
	if err != nil {
		return uuid.Nil, err
	}
	if err := h.filter.Scope(c.Request.Context(), p, ownership.ResourceProduto, produtoID); err != nil {
		return uuid.Nil, err
	}
	return produtoID, nil
}

func (h *ModuloHandler) List(c *gin.Context) {
	produtoID, err := h.scopeProduto(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	modulos, err := h.store.ListByProduto(c.Request.Context(), produtoID)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, modulos)
}

func (h *ModuloHandler) Create(c *gin.Context) {
	produtoID, err := h.scopeProduto(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.CreateModuloRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	modulo, err := h.store.Create(c.Request.Context(), produtoID, req.Titulo)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusCreated, modulo)
}

func (h *ModuloHandler) Update(c *gin.Context) {
	produtoID, err := h.scopeProduto(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	moduloID, err := pathID(c, "moduloId")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.UpdateModuloRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	modulo, err := h.store.Update(c.Request.Context(), produtoID, moduloID, &req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, modulo)
}

func (h *ModuloHandler) Delete(c *gin.Context) {
	produtoID, err := h.scopeProduto(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	moduloID, err := pathID(c, "moduloId")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	if err := h.store.Delete(c.Request.Context(), produtoID, moduloID); err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.filter.Invalidate(c.Request.Context(), ownership.ResourceModulo, moduloID)

	httpapi.OK(c, http.StatusOK, gin.H{"deleted": moduloID})
}

// Reorder rewrites the produto's module order from the full id list.
func (h *ModuloHandler) Reorder(c *gin.Context) {
	produtoID, err := h.scopeProduto(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	if err := h.store.Reorder(c.Request.Context(), produtoID, req.IDs); err != nil {
		httpapi.Fail(c, err)
		return
	}

	modulos, err := h.store.ListByProduto(c.Request.Context(), produtoID)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, modulos)
}
