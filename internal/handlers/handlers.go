package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/auth"
	"github.com/andrefranchin/treine-me-api/internal/middleware"
)

// principal returns the resolved Principal or an unauthenticated error.
// Routes are registered behind the auth middleware, so a miss here means a
// wiring bug, but it still surfaces as 401 rather than a panic.
func principal(c *gin.Context) (*auth.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, apperrors.Unauthenticated("")
	}
	return p, nil
}

// pathID parses a UUID path parameter.
func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.Validation(name, "invalid id")
	}
	return id, nil
}

// pageParams reads pagination query parameters with sane bounds.
func pageParams(c *gin.Context) (page, pageSize int) {
	page = intQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize = intQuery(c, "page_size", 20)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// normalizeEmail lowercases and trims an email before lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
