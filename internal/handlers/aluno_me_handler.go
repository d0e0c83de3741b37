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
)

// AlunoAccount is the persistence surface for the aluno's own profile.
type AlunoAccount interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Aluno, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, nome string) (*models.Aluno, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
}

// AlunoLibrary resolves the catalog an enrolled aluno can see.
type AlunoLibrary interface {
	ListForAluno(ctx context.Context, alunoID uuid.UUID) ([]models.Produto, error)
	GetForAluno(ctx context.Context, alunoID, id uuid.UUID) (*models.Produto, error)
}

// CourseOutline loads the ordered structure under a produto.
type CourseOutline interface {
	ListByProduto(ctx context.Context, produtoID uuid.UUID) ([]models.Modulo, error)
	ListByModulo(ctx context.Context, moduloID uuid.UUID) ([]models.Aula, error)
}

// AvatarUploader stores profile pictures.
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, role string, ownerID uuid.UUID, file *multipart.FileHeader) (string, error)
}

// AlunoMeHandler serves everything mounted under /alunos/me. Content is
// only reachable through an active enrollment; produtos outside the
// aluno's library read as not found.
type AlunoMeHandler struct {
	alunos   AlunoAccount
	library  AlunoLibrary
	outline  CourseOutline
	uploader AvatarUploader
}

func NewAlunoMeHandler(alunos AlunoAccount, library AlunoLibrary, outline CourseOutline, uploader AvatarUploader) *AlunoMeHandler {
	return &AlunoMeHandler{alunos: alunos, library: library, outline: outline, uploader: uploader}
}

func (h *AlunoMeHandler) Get(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	aluno, err := h.alunos.GetByID(c.Request.Context(), p.Subject)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, aluno)
}

func (h *AlunoMeHandler) Update(c *gin.Context) {
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
	if req.Nome == nil || *req.Nome == "" {
		httpapi.Fail(c, apperrors.Validation("nome", "nome is required"))
		return
	}

	aluno, err := h.alunos.UpdateProfile(c.Request.Context(), p.Subject, *req.Nome)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, aluno)
}

func (h *AlunoMeHandler) UploadAvatar(c *gin.Context) {
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
	avatarURL, err := h.uploader.UploadAvatar(ctx, "alunos", p.Subject, file)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	if err := h.alunos.UpdateAvatar(ctx, p.Subject, avatarURL); err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, gin.H{"avatar_url": avatarURL})
}

// ListProdutos returns the produtos covered by the aluno's active
// enrollments.
func (h *AlunoMeHandler) ListProdutos(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	produtos, err := h.library.ListForAluno(c.Request.Context(), p.Subject)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, produtos)
}

// GetProduto returns one enrolled produto with its ordered modulos and
// aulas inlined.
func (h *AlunoMeHandler) GetProduto(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	produtoID, err := pathID(c, "id")
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	ctx := c.Request.Context()

	produto, err := h.library.GetForAluno(ctx, p.Subject, produtoID)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	modulos, err := h.outline.ListByProduto(ctx, produto.ID)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}

	type moduloView struct {
		models.Modulo
		Aulas []models.Aula `json:"aulas"`
	}
	views := make([]moduloView, 0, len(modulos))
	for _, m := range modulos {
		aulas, err := h.outline.ListByModulo(ctx, m.ID)
		if err != nil {
			httpapi.Fail(c, err)
			return
		}
		views = append(views, moduloView{Modulo: m, Aulas: aulas})
	}

	httpapi.OK(c, http.StatusOK, gin.H{"produto": produto, "modulos": views})
}
