package handlers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/auth"
	"github.com/andrefranchin/treine-me-api/internal/middleware"
	"github.com/andrefranchin/treine-me-api/internal/models"
)

type fakeAlunoAccount struct {
	alunos map[uuid.UUID]*models.Aluno
}

func (f *fakeAlunoAccount) GetByID(_ context.Context, id uuid.UUID) (*models.Aluno, error) {
	aluno, ok := f.alunos[id]
	if !ok {
		return nil, apperrors.NotFound("aluno")
	}
	return aluno, nil
}

func (f *fakeAlunoAccount) UpdateProfile(_ context.Context, id uuid.UUID, nome string) (*models.Aluno, error) {
	aluno, err := f.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	aluno.Nome = nome
	return aluno, nil
}

func (f *fakeAlunoAccount) UpdateAvatar(_ context.Context, id uuid.UUID, avatarURL string) error {
	aluno, err := f.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	aluno.AvatarURL = &avatarURL
	return nil
}

// fakeAlunoLibrary keys visibility by aluno, the way the enrollment join
// does: a produto outside the library and a produto that never existed are
// the same miss.
type fakeAlunoLibrary struct {
	libraries map[uuid.UUID][]*models.Produto
}

func (f *fakeAlunoLibrary) ListForAluno(_ context.Context, alunoID uuid.UUID) ([]models.Produto, error) {
	out := []models.Produto{}
	for _, produto := range f.libraries[alunoID] {
		out = append(out, *produto)
	}
	return out, nil
}

func (f *fakeAlunoLibrary) GetForAluno(_ context.Context, alunoID, id uuid.UUID) (*models.Produto, error) {
	for _, produto := range f.libraries[alunoID] {
		if produto.ID == id {
			return produto, nil
		}
	}
	return nil, apperrors.NotFound("produto")
}

type fakeOutline struct {
	modulos map[uuid.UUID][]models.Modulo
	aulas   map[uuid.UUID][]models.Aula
}

func (f *fakeOutline) ListByProduto(_ context.Context, produtoID uuid.UUID) ([]models.Modulo, error) {
	return f.modulos[produtoID], nil
}

func (f *fakeOutline) ListByModulo(_ context.Context, moduloID uuid.UUID) ([]models.Aula, error) {
	return f.aulas[moduloID], nil
}

type fakeAvatarUploader struct{}

func (fakeAvatarUploader) UploadAvatar(context.Context, string, uuid.UUID, *multipart.FileHeader) (string, error) {
	return "/uploads/avatar.jpg", nil
}

func alunoMeRouter(t *testing.T, account *fakeAlunoAccount, library *fakeAlunoLibrary, outline *fakeOutline) (*gin.Engine, func(uuid.UUID) string) {
	t.Helper()
	codec := testCodec(t)
	handler := NewAlunoMeHandler(account, library, outline, fakeAvatarUploader{})

	router := gin.New()
	group := router.Group("/alunos/me")
	group.Use(middleware.Authenticate(codec))
	group.Use(middleware.RequireRoles(auth.RoleAluno))
	group.GET("", handler.Get)
	group.PUT("", handler.Update)
	group.GET("/produtos", handler.ListProdutos)
	group.GET("/produtos/:id", handler.GetProduto)

	tokenFor := func(subject uuid.UUID) string {
		token, err := codec.Issue(subject, auth.RoleAluno, "aluno@example.com")
		require.NoError(t, err)
		return token
	}
	return router, tokenFor
}

// A produto the aluno is not enrolled in must be indistinguishable from a
// produto that does not exist at all.
func TestAlunoProdutoOutsideLibraryReadsAsMissing(t *testing.T) {
	alunoID := uuid.New()
	outsider := &models.Produto{ID: uuid.New(), ProfessorID: uuid.New(), Titulo: "Fora"}

	library := &fakeAlunoLibrary{libraries: map[uuid.UUID][]*models.Produto{
		uuid.New(): {outsider},
	}}
	router, tokenFor := alunoMeRouter(t,
		&fakeAlunoAccount{alunos: map[uuid.UUID]*models.Aluno{}},
		library,
		&fakeOutline{modulos: map[uuid.UUID][]models.Modulo{}, aulas: map[uuid.UUID][]models.Aula{}})

	token := tokenFor(alunoID)

	foreign := authedRequest(router, http.MethodGet, "/alunos/me/produtos/"+outsider.ID.String(), token, "")
	require.Equal(t, http.StatusNotFound, foreign.Code)

	missing := authedRequest(router, http.MethodGet, "/alunos/me/produtos/"+uuid.NewString(), token, "")
	require.Equal(t, http.StatusNotFound, missing.Code)

	require.Equal(t, missing.Body.String(), foreign.Body.String())
}

func TestAlunoProdutoInlinesOrderedOutline(t *testing.T) {
	alunoID := uuid.New()
	produto := &models.Produto{ID: uuid.New(), ProfessorID: uuid.New(), Titulo: "Curso de Violão"}
	modulo1 := models.Modulo{ID: uuid.New(), ProdutoID: produto.ID, Titulo: "Acordes", Position: 1}
	modulo2 := models.Modulo{ID: uuid.New(), ProdutoID: produto.ID, Titulo: "Ritmos", Position: 2}
	aula := models.Aula{ID: uuid.New(), ModuloID: modulo1.ID, Titulo: "Dó maior", Position: 1}

	library := &fakeAlunoLibrary{libraries: map[uuid.UUID][]*models.Produto{
		alunoID: {produto},
	}}
	outline := &fakeOutline{
		modulos: map[uuid.UUID][]models.Modulo{produto.ID: {modulo1, modulo2}},
		aulas:   map[uuid.UUID][]models.Aula{modulo1.ID: {aula}},
	}
	router, tokenFor := alunoMeRouter(t,
		&fakeAlunoAccount{alunos: map[uuid.UUID]*models.Aluno{}},
		library, outline)

	w := authedRequest(router, http.MethodGet, "/alunos/me/produtos/"+produto.ID.String(), tokenFor(alunoID), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Produto models.Produto `json:"produto"`
			Modulos []struct {
				models.Modulo
				Aulas []models.Aula `json:"aulas"`
			} `json:"modulos"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, produto.ID, resp.Data.Produto.ID)
	require.Len(t, resp.Data.Modulos, 2)
	require.Equal(t, "Acordes", resp.Data.Modulos[0].Titulo)
	require.Len(t, resp.Data.Modulos[0].Aulas, 1)
	require.Equal(t, "Dó maior", resp.Data.Modulos[0].Aulas[0].Titulo)
	require.Empty(t, resp.Data.Modulos[1].Aulas)
}
