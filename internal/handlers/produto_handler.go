package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/httpapi"
	"github.com/andrefranchin/treine-me-api/internal/models"
	"github.com/andrefranchin/treine-me-api/internal/ownership"
)

// ProdutoStore is the persistence surface ProdutoHandler needs. Every
// method takes the owning professor id; the store treats a mismatch as
// NotFound.
type ProdutoStore interface {
	Create(ctx context.Context, professorID uuid.UUID, req *models.CreateProdutoRequest) (*models.Produto, error)
	GetOwned(ctx context.Context, professorID, id uuid.UUID) (*models.Produto, error)
	ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]models.Produto, error)
	UpdateOwned(ctx context.Context, professorID, id uuid.UUID, req *models.UpdateProdutoRequest) (*models.Produto, error)
	DeleteOwned(ctx context.Context, professorID, id uuid.UUID) error
	SetCoverURL(ctx context.Context, professorID, id uuid.UUID, coverURL string) error
}

// CoverUploader stores course cover images.
type CoverUploader interface {
	UploadCover(ctx context.Context, professorID, produtoID uuid.UUID, file *multipart.FileHeader) (string, error)
}

// ProdutoHandler serves a professor's own courses. The owner id is always
// the principal's subject, never a client-supplied id.
type ProdutoHandler struct {
	store   ProdutoStore
	uploads CoverUploader
	filter  *ownership.Filter
}

func NewProdutoHandler(store ProdutoStore, uploads CoverUploader, filter *ownership.Filter) *ProdutoHandler {
	return &ProdutoHandler{store: store, uploads: uploads, filter: filter}
}

func (h *ProdutoHandler) List(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	produtos, err := h.store.ListByProfessor(c.Request.Context(), p.Subject)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, produtos)
}

func (h *ProdutoHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.CreateProdutoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	produto, err := h.store.Create(c.Request.Context(), p.Subject, &req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusCreated, produto)
}

func (h *ProdutoHandler) Get(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	produto, err := h.store.GetOwned(c.Request.Context(), p.Subject, id)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, produto)
}

func (h *ProdutoHandler) Update(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	var req models.UpdateProdutoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	produto, err := h.store.UpdateOwned(c.Request.Context(), p.Subject, id, &req)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, produto)
}

func (h *ProdutoHandler) Delete(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	if err := h.store.DeleteOwned(c.Request.Context(), p.Subject, id); err != nil {
		httpapi.Fail(c, err)
		return
	}
	// Cached owner entries for cascade-deleted modulos and aulas are left to
	// expire; their owner is re-derived by join, so a stale entry cannot
	// resurrect access under a produto this drop has removed.
	h.filter.Invalidate(c.Request.Context(), ownership.ResourceProduto, id)

	httpapi.OK(c, http.StatusOK, gin.H{"deleted": id})
}

// UploadCover stores a cover image for the professor's own produto.
func (h *ProdutoHandler) UploadCover(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	// Ownership first, so a cross-tenant id 404s before any file work.
	if _, err := h.store.GetOwned(c.Request.Context(), p.Subject, id); err != nil {
		httpapi.Fail(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		httpapi.Fail(c, apperrors.Validation("file", "file is required"))
		return
	}

	coverURL, err := h.uploads.UploadCover(c.Request.Context(), p.Subject, id, file)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	if err := h.store.SetCoverURL(c.Request.Context(), p.Subject, id, coverURL); err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, gin.H{"cover_url": coverURL})
}
