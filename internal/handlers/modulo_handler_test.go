package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/auth"
	"github.com/andrefranchin/treine-me-api/internal/middleware"
	"github.com/andrefranchin/treine-me-api/internal/models"
	"github.com/andrefranchin/treine-me-api/internal/ownership"
)

// fakeModuloStore keeps modulos per produto and applies the same reorder
// contract as the SQL layer: the id list must cover the produto's modulos
// exactly once.
type fakeModuloStore struct {
	byProduto map[uuid.UUID][]*models.Modulo
}

func (f *fakeModuloStore) ListByProduto(_ context.Context, produtoID uuid.UUID) ([]models.Modulo, error) {
	modulos := append([]*models.Modulo{}, f.byProduto[produtoID]...)
	sort.Slice(modulos, func(i, j int) bool { return modulos[i].Position < modulos[j].Position })
	out := make([]models.Modulo, 0, len(modulos))
	for _, m := range modulos {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeModuloStore) Create(_ context.Context, produtoID uuid.UUID, titulo string) (*models.Modulo, error) {
	modulo := &models.Modulo{ID: uuid.New(), ProdutoID: produtoID, Titulo: titulo, Position: len(f.byProduto[produtoID]) + 1}
	f.byProduto[produtoID] = append(f.byProduto[produtoID], modulo)
	return modulo, nil
}

func (f *fakeModuloStore) Update(_ context.Context, produtoID, id uuid.UUID, req *models.UpdateModuloRequest) (*models.Modulo, error) {
	for _, m := range f.byProduto[produtoID] {
		if m.ID == id {
			if req.Titulo != nil {
				m.Titulo = *req.Titulo
			}
			return m, nil
		}
	}
	return nil, apperrors.NotFound("modulo")
}

func (f *fakeModuloStore) Delete(_ context.Context, produtoID, id uuid.UUID) error {
	modulos := f.byProduto[produtoID]
	for i, m := range modulos {
		if m.ID == id {
			f.byProduto[produtoID] = append(modulos[:i], modulos[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("modulo")
}

func (f *fakeModuloStore) Reorder(_ context.Context, produtoID uuid.UUID, ids []uuid.UUID) error {
	current := f.byProduto[produtoID]
	if len(ids) != len(current) {
		return apperrors.Validation("ids", "reorder must include every item exactly once")
	}
	seen := map[uuid.UUID]bool{}
	byID := map[uuid.UUID]*models.Modulo{}
	for _, m := range current {
		byID[m.ID] = m
	}
	for i, id := range ids {
		m, ok := byID[id]
		if !ok || seen[id] {
			return apperrors.Validation("ids", "reorder must include every item exactly once")
		}
		seen[id] = true
		m.Position = i + 1
	}
	return nil
}

type staticLookup struct {
	owners map[uuid.UUID]uuid.UUID
}

func (s *staticLookup) OwnerIDOf(_ context.Context, resource ownership.Resource, id uuid.UUID) (uuid.UUID, error) {
	owner, ok := s.owners[id]
	if !ok {
		return uuid.Nil, apperrors.NotFound(string(resource))
	}
	return owner, nil
}

func (s *staticLookup) ParentIDOf(_ context.Context, resource ownership.Resource, _ uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, apperrors.NotFound(string(resource))
}

type moduloFixture struct {
	router  *gin.Engine
	store   *fakeModuloStore
	owner   uuid.UUID
	produto uuid.UUID
	token   string
}

func newModuloFixture(t *testing.T) *moduloFixture {
	t.Helper()
	codec := testCodec(t)
	owner := uuid.New()
	produto := uuid.New()

	store := &fakeModuloStore{byProduto: map[uuid.UUID][]*models.Modulo{}}
	filter := ownership.New(&staticLookup{owners: map[uuid.UUID]uuid.UUID{produto: owner}}, nil)
	handler := NewModuloHandler(store, filter)

	router := gin.New()
	group := router.Group("/produtos/:id/modulos")
	group.Use(middleware.Authenticate(codec))
	group.Use(middleware.RequireRoles(auth.RoleProfessor))
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.PUT("/reorder", handler.Reorder)
	group.PUT("/:moduloId", handler.Update)
	group.DELETE("/:moduloId", handler.Delete)

	token, err := codec.Issue(owner, auth.RoleProfessor, "ana@example.com")
	require.NoError(t, err)

	return &moduloFixture{router: router, store: store, owner: owner, produto: produto, token: token}
}

func (fx *moduloFixture) seed(t *testing.T, titles ...string) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, len(titles))
	for _, titulo := range titles {
		m, err := fx.store.Create(context.Background(), fx.produto, titulo)
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}
	return ids
}

func (fx *moduloFixture) reorderBody(t *testing.T, ids []uuid.UUID) string {
	t.Helper()
	body, err := json.Marshal(models.ReorderRequest{IDs: ids})
	require.NoError(t, err)
	return string(body)
}

func decodeModulos(t *testing.T, body []byte) []models.Modulo {
	t.Helper()
	var resp struct {
		Data []models.Modulo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Data
}

func TestModuloCreateAssignsNextPosition(t *testing.T) {
	fx := newModuloFixture(t)
	fx.seed(t, "Intro", "Acordes")

	w := authedRequest(fx.router, http.MethodGet, "/produtos/"+fx.produto.String()+"/modulos", fx.token, "")
	require.Equal(t, http.StatusOK, w.Code)

	modulos := decodeModulos(t, w.Body.Bytes())
	require.Len(t, modulos, 2)
	require.Equal(t, 1, modulos[0].Position)
	require.Equal(t, 2, modulos[1].Position)
}

func TestModuloReorderRewritesPositions(t *testing.T) {
	fx := newModuloFixture(t)
	ids := fx.seed(t, "Intro", "Acordes", "Ritmos")

	reversed := []uuid.UUID{ids[2], ids[0], ids[1]}
	w := authedRequest(fx.router, http.MethodPut, "/produtos/"+fx.produto.String()+"/modulos/reorder", fx.token, fx.reorderBody(t, reversed))
	require.Equal(t, http.StatusOK, w.Code)

	modulos := decodeModulos(t, w.Body.Bytes())
	require.Len(t, modulos, 3)
	require.Equal(t, "Ritmos", modulos[0].Titulo)
	require.Equal(t, "Intro", modulos[1].Titulo)
	require.Equal(t, "Acordes", modulos[2].Titulo)
	for i, m := range modulos {
		require.Equal(t, i+1, m.Position)
	}
}

func TestModuloReorderRejectsIncompleteOrDuplicatedSets(t *testing.T) {
	fx := newModuloFixture(t)
	ids := fx.seed(t, "Intro", "Acordes", "Ritmos")

	base := "/produtos/" + fx.produto.String() + "/modulos/reorder"

	// Missing one id.
	w := authedRequest(fx.router, http.MethodPut, base, fx.token, fx.reorderBody(t, ids[:2]))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Duplicated id.
	w = authedRequest(fx.router, http.MethodPut, base, fx.token, fx.reorderBody(t, []uuid.UUID{ids[0], ids[0], ids[1]}))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Foreign id mixed in.
	w = authedRequest(fx.router, http.MethodPut, base, fx.token, fx.reorderBody(t, []uuid.UUID{ids[0], ids[1], uuid.New()}))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Order untouched after the failed attempts.
	w = authedRequest(fx.router, http.MethodGet, "/produtos/"+fx.produto.String()+"/modulos", fx.token, "")
	modulos := decodeModulos(t, w.Body.Bytes())
	require.Equal(t, "Intro", modulos[0].Titulo)
}

// The produto segment of the path is ownership-checked before any module
// work, so a foreign produto 404s even when the modulo ids are real.
func TestModuloRoutesHideForeignProduto(t *testing.T) {
	fx := newModuloFixture(t)
	fx.seed(t, "Intro")

	codec := testCodec(t)
	intruderToken, err := codec.Issue(uuid.New(), auth.RoleProfessor, "x@example.com")
	require.NoError(t, err)

	w := authedRequest(fx.router, http.MethodGet, "/produtos/"+fx.produto.String()+"/modulos", intruderToken, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
