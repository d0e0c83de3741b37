package httpapi

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/andrefranchin/treine-me-api/internal/apperrors"
)

// ErrorBody is the error half of the response envelope.
type ErrorBody struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
}

// Envelope wraps every response, success or failure, in the same shape.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data"`
	Error   *ErrorBody `json:"error"`
}

// OK writes a success envelope with the given status.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// Fail normalizes err and writes a failure envelope. Internal errors are
// logged server-side; the client only ever sees the generic message.
func Fail(c *gin.Context, err error) {
	e := apperrors.From(err)
	if e.Kind == apperrors.KindInternal {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, e.Err)
	}
	c.JSON(e.HTTPStatus(), Envelope{
		Success: false,
		Error:   &ErrorBody{Message: e.Message, Field: e.Field},
	})
}

// Abort writes the failure envelope and stops the middleware chain.
func Abort(c *gin.Context, err error) {
	Fail(c, err)
	c.Abort()
}
