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

// AdminDirectory looks up platform administrators for login.
type AdminDirectory interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// ProfessorDirectory looks up professors for login.
type ProfessorDirectory interface {
	GetByEmail(ctx context.Context, email string) (*models.Professor, error)
}

// AlunoDirectory looks up alunos for login, scoped by the professor tenant
// selector.
type AlunoDirectory interface {
	GetByEmailAndProfessor(ctx context.Context, email string, professorID uuid.UUID) (*models.Aluno, error)
}

// AuthHandler serves the three login endpoints. Unknown email and wrong
// password are indistinguishable in the response: both produce the same
// generic invalid-credentials envelope.
type AuthHandler struct {
	admins      AdminDirectory
	professores ProfessorDirectory
	alunos      AlunoDirectory
	hasher      *auth.PasswordHasher
	codec       *auth.TokenCodec

	// dummyHash is verified against on unknown-email paths so a lookup
	// miss costs the same bcrypt compare as a wrong password.
	dummyHash string
}

func NewAuthHandler(admins AdminDirectory, professores ProfessorDirectory, alunos AlunoDirectory, hasher *auth.PasswordHasher, codec *auth.TokenCodec) *AuthHandler {
	dummyHash, _ := hasher.Hash(uuid.NewString())
	return &AuthHandler{
		admins:      admins,
		professores: professores,
		alunos:      alunos,
		hasher:      hasher,
		codec:       codec,
		dummyHash:   dummyHash,
	}
}

func invalidCredentials() error {
	return apperrors.Unauthenticated("invalid credentials")
}

// AdminLogin authenticates a platform administrator.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	admin, err := h.admins.GetByEmail(c.Request.Context(), normalizeEmail(req.Email))
	if err != nil {
		h.hasher.Verify(req.Password, h.dummyHash)
		httpapi.Fail(c, invalidCredentials())
		return
	}
	if !h.hasher.Verify(req.Password, admin.PasswordHash) {
		httpapi.Fail(c, invalidCredentials())
		return
	}

	token, err := h.codec.Issue(admin.ID, auth.RoleAdmin, admin.Email)
	if err != nil {
		httpapi.Fail(c, apperrors.Internal(err))
		return
	}

	httpapi.OK(c, http.StatusOK, models.LoginResponse{
		Token: token,
		User: models.UserInfo{
			ID:    admin.ID,
			Nome:  admin.Nome,
			Email: admin.Email,
			Role:  string(auth.RoleAdmin),
		},
	})
}

// ProfessorLogin authenticates a professor.
func (h *AuthHandler) ProfessorLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	professor, err := h.professores.GetByEmail(c.Request.Context(), normalizeEmail(req.Email))
	if err != nil {
		h.hasher.Verify(req.Password, h.dummyHash)
		httpapi.Fail(c, invalidCredentials())
		return
	}
	if !h.hasher.Verify(req.Password, professor.PasswordHash) {
		httpapi.Fail(c, invalidCredentials())
		return
	}

	token, err := h.codec.Issue(professor.ID, auth.RoleProfessor, professor.Email)
	if err != nil {
		httpapi.Fail(c, apperrors.Internal(err))
		return
	}

	httpapi.OK(c, http.StatusOK, models.LoginResponse{
		Token: token,
		User: models.UserInfo{
			ID:        professor.ID,
			Nome:      professor.Nome,
			Email:     professor.Email,
			Role:      string(auth.RoleProfessor),
			AvatarURL: professor.AvatarURL,
		},
	})
}

// AlunoLogin authenticates a student within one professor's tenant.
func (h *AuthHandler) AlunoLogin(c *gin.Context) {
	var req models.AlunoLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, apperrors.Validation("", err.Error()))
		return
	}

	aluno, err := h.alunos.GetByEmailAndProfessor(c.Request.Context(), normalizeEmail(req.Email), req.ProfessorID)
	if err != nil {
		h.hasher.Verify(req.Password, h.dummyHash)
		httpapi.Fail(c, invalidCredentials())
		return
	}
	if !h.hasher.Verify(req.Password, aluno.PasswordHash) {
		httpapi.Fail(c, invalidCredentials())
		return
	}

	token, err := h.codec.Issue(aluno.ID, auth.RoleAluno, aluno.Email)
	if err != nil {
		httpapi.Fail(c, apperrors.Internal(err))
		return
	}

	httpapi.OK(c, http.StatusOK, models.LoginResponse{
		Token: token,
		User: models.UserInfo{
			ID:        aluno.ID,
			Nome:      aluno.Nome,
			Email:     aluno.Email,
			Role:      string(auth.RoleAluno),
			AvatarURL: aluno.AvatarURL,
		},
	})
}
