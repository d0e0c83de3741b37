package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/auth"
	"github.com/andrefranchin/treine-me-api/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAdmins struct {
	byEmail map[string]*models.Admin
}

func (f *fakeAdmins) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	admin, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.NotFound("admin")
	}
	return admin, nil
}

type fakeProfessores struct {
	byEmail map[string]*models.Professor
}

func (f *fakeProfessores) GetByEmail(_ context.Context, email string) (*models.Professor, error) {
	professor, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.NotFound("professor")
	}
	return professor, nil
}

type fakeAlunos struct {
	byKey map[string]*models.Aluno
}

func alunoKey(email string, professorID uuid.UUID) string {
	return email + "/" + professorID.String()
}

func (f *fakeAlunos) GetByEmailAndProfessor(_ context.Context, email string, professorID uuid.UUID) (*models.Aluno, error) {
	aluno, ok := f.byKey[alunoKey(email, professorID)]
	if !ok {
		return nil, apperrors.NotFound("aluno")
	}
	return aluno, nil
}

func testHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(bcrypt.MinCost)
}

func testCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec(auth.CodecConfig{
		Issuer:   "treine-me-api",
		Audience: "treine-me-app",
		Key:      []byte("handler-test-key"),
	})
	require.NoError(t, err)
	return codec
}

func mustHash(t *testing.T, hasher *auth.PasswordHasher, password string) string {
	t.Helper()
	hash, err := hasher.Hash(password)
	require.NoError(t, err)
	return hash
}

type loginFixture struct {
	router      *gin.Engine
	codec       *auth.TokenCodec
	professorID uuid.UUID
	alunoID     uuid.UUID
}

func newLoginFixture(t *testing.T) *loginFixture {
	t.Helper()
	hasher := testHasher()
	codec := testCodec(t)

	professorID := uuid.New()
	alunoID := uuid.New()

	handler := NewAuthHandler(
		&fakeAdmins{byEmail: map[string]*models.Admin{
			"root@treine.me": {ID: uuid.New(), Nome: "Root", Email: "root@treine.me", PasswordHash: mustHash(t, hasher, "admin-pass")},
		}},
		&fakeProfessores{byEmail: map[string]*models.Professor{
			"ana@example.com": {ID: professorID, Nome: "Ana", Email: "ana@example.com", PasswordHash: mustHash(t, hasher, "prof-pass")},
		}},
		&fakeAlunos{byKey: map[string]*models.Aluno{
			alunoKey("joao@example.com", professorID): {ID: alunoID, ProfessorID: professorID, Nome: "João", Email: "joao@example.com", PasswordHash: mustHash(t, hasher, "aluno-pass")},
		}},
		hasher, codec,
	)

	router := gin.New()
	router.POST("/auth/admin/login", handler.AdminLogin)
	router.POST("/auth/professores/login", handler.ProfessorLogin)
	router.POST("/auth/alunos/login", handler.AlunoLogin)

	return &loginFixture{router: router, codec: codec, professorID: professorID, alunoID: alunoID}
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type loginEnvelope struct {
	Success bool `json:"success"`
	Data    *struct {
		Token string          `json:"token"`
		User  models.UserInfo `json:"user"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func decodeLogin(t *testing.T, w *httptest.ResponseRecorder) loginEnvelope {
	t.Helper()
	var env loginEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestProfessorLoginIssuesUsableToken(t *testing.T) {
	fx := newLoginFixture(t)

	w := postJSON(fx.router, "/auth/professores/login", `{"email":"ana@example.com","password":"prof-pass"}`)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeLogin(t, w)
	require.True(t, env.Success)
	require.NotNil(t, env.Data)
	require.Equal(t, "ana@example.com", env.Data.User.Email)

	p, err := fx.codec.Verify(env.Data.Token)
	require.NoError(t, err)
	require.Equal(t, fx.professorID, p.Subject)
	require.Equal(t, auth.RoleProfessor, p.Role)
}

func TestLoginNormalizesEmail(t *testing.T) {
	fx := newLoginFixture(t)

	w := postJSON(fx.router, "/auth/professores/login", `{"email":"  Ana@Example.COM ","password":"prof-pass"}`)
	require.Equal(t, http.StatusOK, w.Code)
}

// Unknown email and wrong password must produce byte-identical error
// bodies, or the endpoint leaks which emails exist.
func TestLoginDoesNotLeakAccountExistence(t *testing.T) {
	fx := newLoginFixture(t)

	unknown := postJSON(fx.router, "/auth/professores/login", `{"email":"nobody@example.com","password":"prof-pass"}`)
	wrongPass := postJSON(fx.router, "/auth/professores/login", `{"email":"ana@example.com","password":"wrong"}`)

	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, unknown.Body.String(), wrongPass.Body.String())

	env := decodeLogin(t, unknown)
	require.False(t, env.Success)
	require.Equal(t, "invalid credentials", env.Error.Message)
}

// An unknown email must pay the same bcrypt compare as a wrong password,
// so the throwaway hash used on the miss path has to be a well-formed
// bcrypt hash; CompareHashAndPassword rejects malformed input before
// doing any work.
func TestLoginMissPathHashIsRealBcrypt(t *testing.T) {
	hasher := testHasher()
	handler := NewAuthHandler(
		&fakeAdmins{byEmail: map[string]*models.Admin{}},
		&fakeProfessores{byEmail: map[string]*models.Professor{}},
		&fakeAlunos{byKey: map[string]*models.Aluno{}},
		hasher, testCodec(t),
	)

	_, err := bcrypt.Cost([]byte(handler.dummyHash))
	require.NoError(t, err)
	require.False(t, hasher.Verify("any-password", handler.dummyHash))
}

func TestAlunoLoginScopedToProfessor(t *testing.T) {
	fx := newLoginFixture(t)

	body := `{"email":"joao@example.com","password":"aluno-pass","professor_id":"` + fx.professorID.String() + `"}`
	w := postJSON(fx.router, "/auth/alunos/login", body)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeLogin(t, w)
	p, err := fx.codec.Verify(env.Data.Token)
	require.NoError(t, err)
	require.Equal(t, fx.alunoID, p.Subject)
	require.Equal(t, auth.RoleAluno, p.Role)

	// Same credentials under a different professor do not exist.
	other := `{"email":"joao@example.com","password":"aluno-pass","professor_id":"` + uuid.NewString() + `"}`
	w = postJSON(fx.router, "/auth/alunos/login", other)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminLogin(t *testing.T) {
	fx := newLoginFixture(t)

	w := postJSON(fx.router, "/auth/admin/login", `{"email":"root@treine.me","password":"admin-pass"}`)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeLogin(t, w)
	p, err := fx.codec.Verify(env.Data.Token)
	require.NoError(t, err)
	require.Equal(t, auth.RoleAdmin, p.Role)
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	fx := newLoginFixture(t)

	for _, body := range []string{``, `{}`, `{"email":"not-an-email","password":"x"}`} {
		w := postJSON(fx.router, "/auth/professores/login", body)
		require.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
	}
}
