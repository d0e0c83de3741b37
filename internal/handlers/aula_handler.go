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

// AulaStore is the persistence surface AulaHandler needs, keyed by the
// parent modulo id.
type AulaStore interface {
	ListByModulo(ctx context.Context, moduloID uuid.UUID) ([]models.Aula, error)
	Create(ctx context.Context, moduloID uuid.UUID, req *models.CreateAulaRequest) (*models.Aula, error)
	Update(ctx context.Context, moduloID, id uuid.UUID, req *models.UpdateAulaRequest) (*models.Aula, error)
	Delete(ctx context.Context, moduloID, id uuid.UUID) error
	Reorder(ctx context.Context, moduloID uuid.UUID, ids []uuid.UUID) error
}

// AulaHandler serves lessons nested two levels deep: produto -> modulo ->
// aula. Both ancestors are verified on every request; a modulo that hangs
// under someone else's produto is NotFound even when the caller owns the
// produto named in the path.
type AulaHandler struct {
	store  AulaStore
	filter *ownership.Filter
}

func NewAulaHandler(store AulaStore, filter *ownership.Filter) *AulaHandler {
	return &AulaHandler{store: store, filter: filter}
}

// scopeModulo verifies the produto/modulo chain in the path.
func (h *AulaHandler) scopeModulo(c *gin.Context) (uuid.UUID, error) {
	p, err := principal(c)
	if err != nil {
		return uuid.Nil, err
	}
	produtoID, err := pathID(c, "id")
	if err != nil {
		return uuid.Nil, err
	}
	moduloID, err := pathID(c, "moduloId")
	if err != nil {
		return uuid.Nil, err
	}
	err = h.filter.ScopeChain(c.Request.Context(), p,
		ownership.Node{Resource: ownership.ResourceProduto, ID: produtoID},
		ownership.Node{Resource: ownership.ResourceModulo, ID: moduloID},
	)
	if err != nil {
		return uuid.Nil, err
	}
	return moduloID, nil
}

func (h *AulaHandler) List(c *gin.Context) {
	moduloID, err := h.scopeModulo(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	aulas, err := h.store.ListByModulo(c.Request.Context(), moduloID)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, aulas)
}

func (h *AulaHandler) Create(c *gin.Context) {
	moduloID, err := h.scopeModulo(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.CreateAulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	aula, err := h.store.Create(c.Request.Context(), moduloID, &req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusCreated, aula)
}

func (h *AulaHandler) Update(c *gin.Context) {
	moduloID, err := h.scopeModulo(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	aulaID, err := pathID(c, "aulaId")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.UpdateAulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	aula, err := h.store.Update(c.Request.Context(), moduloID, aulaID, &req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, aula)
}

func (h *AulaHandler) Delete(c *gin.Context) {
	moduloID, err := h.scopeModulo(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	aulaID, err := pathID(c, "aulaId")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	if err := h.store.Delete(c.Request.Context(), moduloID, aulaID); err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.filter.Invalidate(c.Request.Context(), ownership.ResourceAula, aulaID)

	httpapi.OK(c, http.StatusOK, gin.H{"deleted": aulaID})
}

// Reorder rewrites the modulo's lesson order from the full id list.
func (h *AulaHandler) Reorder(c *gin.Context) {
	moduloID, err := h.scopeModulo(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	if err := h.store.Reorder(c.Request.Context(), moduloID, req.IDs); err != nil {
		httpapi.Fail(c, err)
		return
	}

	aulas, err := h.store.ListByModulo(c.Request.Context(), moduloID)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, aulas)
}
