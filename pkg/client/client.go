package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Session holds the bearer token for an authenticated API client. It is a
// single slot: logging in replaces whatever token was there, logging out
// clears it, and a 401 observed on any request clears it too so the caller
// sees the logged-out state immediately.
type Session struct {
	mu    sync.RWMutex
	token string
}

func (s *Session) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Token returns the current token and whether one is held. Each request
// reads the slot fresh, so a login or logout on another goroutine takes
// effect on the very next call.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *Session) LoggedIn() bool {
	_, ok := s.Token()
	return ok
}

// APIError carries the error body from a failed API response.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
		Field   string `json:"field,omitempty"`
	} `json:"error"`
}

// Client is a thin HTTP client for the API. All authenticated calls read
// the session's token at request time; they never cache it.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: &Session{},
	}
}

func (c *Client) Session() *Session { return c.session }

type loginResponse struct {
	Token string `json:"token"`
}

// LoginProfessor authenticates against the professor login endpoint and
// stores the returned token in the session.
func (c *Client) LoginProfessor(ctx context.Context, email, password string) error {
	return c.login(ctx, "/api/v1/auth/professores/login", map[string]any{
		"email":    email,
		"password": password,
	})
}

// LoginAluno authenticates an aluno. The professor id selects which
// professor's roster the email is looked up in.
func (c *Client) LoginAluno(ctx context.Context, email, password, professorID string) error {
	return c.login(ctx, "/api/v1/auth/alunos/login", map[string]any{
		"email":        email,
		"password":     password,
		"professor_id": professorID,
	})
}

// LoginAdmin authenticates a platform admin.
func (c *Client) LoginAdmin(ctx context.Context, email, password string) error {
	return c.login(ctx, "/api/v1/auth/admin/login", map[string]any{
		"email":    email,
		"password": password,
	})
}

func (c *Client) login(ctx context.Context, path string, body map[string]any) error {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp, false); err != nil {
		return err
	}
	c.session.Set(resp.Token)
	return nil
}

// Logout clears the session. Tokens are stateless on the server side, so
// this is purely a client-side operation.
func (c *Client) Logout() {
	c.session.Clear()
}

// Get performs an authenticated GET and decodes the data field into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out, true)
}

// Post performs an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out, true)
}

// Put performs an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out, true)
}

// Delete performs an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, true)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, ok := c.session.Token()
		if !ok {
			return &APIError{StatusCode: http.StatusUnauthorized, Message: "not logged in"}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// The token is no longer usable; drop it.
		c.session.Clear()
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: "request failed"}
		if env.Error != nil {
			apiErr.Message = env.Error.Message
			apiErr.Field = env.Error.Field
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
