package middleware

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
	"github.com/andrefranchin/treine-me-api/internal/httpapi"
)

// Recovery catches panics from deeper layers at the outermost request
// boundary and maps them to the generic internal-error envelope. Details go
// to the server log only.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, rec)
				httpapi.Abort(c, apperrors.Internal(nil))
			}
		}()
		c.Next()
	}
}
