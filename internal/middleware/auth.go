package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/auth"
	"github.com/andrefranchin/treine-me-api/internal/httpapi"
)

const principalKey = "principal"

// Authenticate extracts and verifies the bearer token and injects the
// resolved Principal into the request context. Missing, malformed, expired
// and mis-signed tokens all abort with the same unauthenticated envelope.
func Authenticate(codec *auth.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httpapi.Abort(c, apperrors.Unauthenticated("authorization header required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httpapi.Abort(c, apperrors.Unauthenticated("invalid authorization format"))
			return
		}

		principal, err := codec.Verify(parts[1])
		if err != nil {
			httpapi.Abort(c, apperrors.Unauthenticated("invalid or expired token"))
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRoles enforces that the resolved principal carries one of the
// allowed roles. A missing principal surfaces as unauthenticated, never as
// forbidden: authentication failure always takes precedence.
func RequireRoles(allowed ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			httpapi.Abort(c, apperrors.Unauthenticated(""))
			return
		}

		for _, role := range allowed {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		httpapi.Abort(c, apperrors.Forbidden("insufficient role"))
	}
}

// PrincipalFrom returns the Principal resolved by Authenticate, if any.
func PrincipalFrom(c *gin.Context) (*auth.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*auth.Principal)
	return principal, ok
}
