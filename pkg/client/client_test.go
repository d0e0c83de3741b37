package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAPI answers like the real server: login issues a token, protected
// routes demand it, and a revoked token turns into 401 envelopes.
type fakeAPI struct {
	validToken string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/professores/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "correta" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   map[string]any{"message": "invalid credentials"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"token": f.validToken},
		})
	})
	mux.HandleFunc("/api/v1/professores/me", func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") || strings.TrimPrefix(authz, "Bearer ") != f.validToken {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   map[string]any{"message": "invalid or expired token"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"nome": "Ana"},
		})
	})
	return mux
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{validToken: "token-abc"}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return New(srv.URL), api
}

func TestLoginStoresTokenAndAuthorizesRequests(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.False(t, c.Session().LoggedIn())

	require.NoError(t, c.LoginProfessor(ctx, "ana@example.com", "correta"))
	require.True(t, c.Session().LoggedIn())

	var me struct {
		Nome string `json:"nome"`
	}
	require.NoError(t, c.Get(ctx, "/api/v1/professores/me", &me))
	require.Equal(t, "Ana", me.Nome)
}

func TestFailedLoginLeavesSessionLoggedOut(t *testing.T) {
	c, _ := newTestClient(t)

	err := c.LoginProfessor(context.Background(), "ana@example.com", "errada")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "invalid credentials", apiErr.Message)
	require.False(t, c.Session().LoggedIn())
}

func TestLogoutClearsSession(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.LoginProfessor(ctx, "ana@example.com", "correta"))
	c.Logout()
	require.False(t, c.Session().LoggedIn())

	err := c.Get(ctx, "/api/v1/professores/me", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

// A 401 from the server clears the slot, so the caller sees the logged-out
// state on the very next call without a round trip.
func TestObserved401ClearsSession(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.LoginProfessor(ctx, "ana@example.com", "correta"))

	// Server-side rotation makes the held token worthless.
	api.validToken = "token-rotated"

	err := c.Get(ctx, "/api/v1/professores/me", nil)
	require.Error(t, err)
	require.False(t, c.Session().LoggedIn())
}

func TestLoginReplacesPreviousToken(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.LoginProfessor(ctx, "ana@example.com", "correta"))

	api.validToken = "token-new"
	require.NoError(t, c.LoginProfessor(ctx, "ana@example.com", "correta"))

	token, ok := c.Session().Token()
	require.True(t, ok)
	require.Equal(t, "token-new", token)

	require.NoError(t, c.Get(ctx, "/api/v1/professores/me", nil))
}
