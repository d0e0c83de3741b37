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

type ConteudoStore interface {
	ListByAula(ctx context.Context, aulaID uuid.UUID) ([]models.Conteudo, error)
}

// ConteudoUploader pushes the file to storage and records the conteudo row.
type ConteudoUploader interface {
	UploadConteudo(ctx context.Context, professorID, produtoID, aulaID uuid.UUID, file *multipart.FileHeader) (*models.Conteudo, error)
	DeleteConteudo(ctx context.Context, aulaID, id uuid.UUID) error
}

// ConteudoHandler serves lesson attachments. The full produto -> modulo ->
// aula chain is verified before touching the file or the row.
type ConteudoHandler struct {
	store    ConteudoStore
	uploader ConteudoUploader
	filter   *ownership.Filter
}

func NewConteudoHandler(store ConteudoStore, uploader ConteudoUploader, filter *ownership.Filter) *ConteudoHandler {
	return &ConteudoHandler{store: store, uploader: uploader, filter: filter}
}

func (h *ConteudoHandler) scopeAula(c *gin.Context) (produtoID, aulaID uuid.UUID, err error) {
	p, err := principal(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	produtoID, err = pathID(c, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	moduloID, err := pathID(c, "moduloId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	aulaID, err = pathID(c, "aulaId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	err = h.filter.ScopeChain(c.Request.Context(), p,
		ownership.Node{Resource: ownership.ResourceProduto, ID: produtoID},
		ownership.Node{Resource: ownership.ResourceModulo, ID: moduloID},
		ownership.Node{Resource: ownership.ResourceAula, ID: aulaID},
	)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return produtoID, aulaID, nil
}

func (h *ConteudoHandler) List(c *gin.Context) {
	_, aulaID, err := h.scopeAula(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	conteudos, err := h.store.ListByAula(c.Request.Context(), aulaID)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, conteudos)
}

// Upload receives a multipart file and stores it under the owning
// professor's path. Image uploads come back with status pending until the
// worker generates the thumbnail.
func (h *ConteudoHandler) Upload(c *gin.Context) {
	produtoID, aulaID, err := h.scopeAula(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
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

	conteudo, err := h.uploader.UploadConteudo(c.Request.Context(), p.Subject, produtoID, aulaID, file)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusCreated, conteudo)
}

func (h *ConteudoHandler) Delete(c *gin.Context) {
	_, aulaID, err := h.scopeAula(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	conteudoID, err := pathID(c, "conteudoId")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	if err := h.uploader.DeleteConteudo(c.Request.Context(), aulaID, conteudoID); err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.filter.Invalidate(c.Request.Context(), ownership.ResourceConteudo, conteudoID)

	httpapi.OK(c, http.StatusOK, gin.H{"deleted": conteudoID})
}
