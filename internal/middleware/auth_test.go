package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andrefranchin/treine-me-api/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newCodec(t *testing.T, now func() time.Time) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec(auth.CodecConfig{
		Issuer:   "treine-me-api",
		Audience: "treine-me-app",
		Key:      []byte("middleware-test-key"),
		Now:      now,
	})
	require.NoError(t, err)
	return codec
}

func newRouter(codec *auth.TokenCodec, roles ...auth.Role) *gin.Engine {
	router := gin.New()
	group := router.Group("/")
	group.Use(Authenticate(codec))
	if len(roles) > 0 {
		group.Use(RequireRoles(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"subject": p.Subject})
	})
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	codec := newCodec(t, nil)
	subject := uuid.New()
	token, err := codec.Issue(subject, auth.RoleProfessor, "ana@example.com")
	require.NoError(t, err)

	w := doRequest(newRouter(codec), "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Subject uuid.UUID `json:"subject"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, subject, body.Subject)
}

func TestAuthenticateRejectsMissingAndMalformedHeaders(t *testing.T) {
	codec := newCodec(t, nil)
	router := newRouter(codec)

	for _, header := range []string{
		"",
		"Bearer",
		"Token abc",
		"Bearer abc def",
		"Bearer not-a-token",
	} {
		w := doRequest(router, header)
		require.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)

		var env struct {
			Success bool `json:"success"`
			Error   *struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		require.False(t, env.Success)
		require.NotNil(t, env.Error)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	codec := newCodec(t, func() time.Time { return clock })

	token, err := codec.Issue(uuid.New(), auth.RoleAluno, "joao@example.com")
	require.NoError(t, err)

	clock = issued.Add(8 * 24 * time.Hour)
	w := doRequest(newRouter(codec), "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	codec := newCodec(t, nil)
	token, err := codec.Issue(uuid.New(), auth.RoleProfessor, "ana@example.com")
	require.NoError(t, err)

	w := doRequest(newRouter(codec, auth.RoleProfessor), "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesForbidsWrongRole(t *testing.T) {
	codec := newCodec(t, nil)
	token, err := codec.Issue(uuid.New(), auth.RoleAluno, "joao@example.com")
	require.NoError(t, err)

	w := doRequest(newRouter(codec, auth.RoleProfessor), "Bearer "+token)
	require.Equal(t, http.StatusForbidden, w.Code)
}

// A request that fails authentication on a role-guarded route must read as
// unauthenticated, not forbidden.
func TestUnauthenticatedTakesPrecedenceOverForbidden(t *testing.T) {
	codec := newCodec(t, nil)
	router := newRouter(codec, auth.RoleAdmin)

	w := doRequest(router, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, "Bearer garbage")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesAllowsAnyOfSeveral(t *testing.T) {
	codec := newCodec(t, nil)
	token, err := codec.Issue(uuid.New(), auth.RoleAdmin, "admin@example.com")
	require.NoError(t, err)

	w := doRequest(newRouter(codec, auth.RoleProfessor, auth.RoleAdmin), "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
}
