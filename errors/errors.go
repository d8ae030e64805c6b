package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation rejects malformed or missing input before any state change.
func Validation(message string) *Error {
	return New(http.StatusBadRequest, message, nil)
}

// NotFound means a referenced id did not resolve.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message, nil)
}

// Conflict means the current state does not permit the requested
// transition, or stock is insufficient.
func Conflict(message string) *Error {
	return New(http.StatusConflict, message, nil)
}

// Forbidden means the caller does not own the resource.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message, nil)
}

// ExternalService wraps a failed gateway or object-store call. The
// order/inventory state is expected to be untouched by the caller.
func ExternalService(message string, err error) *Error {
	return New(http.StatusBadGateway, message, err)
}

// DataInconsistency flags a violated internal invariant, e.g. an
// inventory row missing for an active component. Not user-recoverable.
func DataInconsistency(message string) *Error {
	return New(http.StatusInternalServerError, message, nil)
}

// Common error types
var (
	ErrBadRequest     = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized   = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden      = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound       = New(http.StatusNotFound, "Not found", nil)
	ErrConflict       = New(http.StatusConflict, "Conflict", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)
)

// HandleError writes err to c as a JSON response. Application errors
// keep their status and message; anything else becomes a generic 500
// so internals never leak to the client.
func HandleError(c *gin.Context, err error) {
	if appErr, ok := err.(*Error); ok {
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": ErrInternalServer.Message})
}

// ErrorMiddleware renders errors attached to the gin context.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			HandleError(c, c.Errors.Last().Err)
			c.Abort()
		}
	}
}
