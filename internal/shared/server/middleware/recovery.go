package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/shared/server/respond"
	"assessment-backend/internal/shared/telemetry"
)

const maxStackBytes = 4096

// Recovery turns a handler panic into a logged 500 with the standard error body.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			stack := debug.Stack()
			if len(stack) > maxStackBytes {
				stack = stack[:maxStackBytes]
			}
			telemetry.Error("panic", map[string]any{
				"request_id":    RequestIDFromContext(c),
				"user_id":       UserIDFromContext(c),
				"submission_id": c.GetString(submissionIDKey),
				"error":         rec,
				"stack":         string(stack),
				"path":          c.Request.URL.Path,
				"method":        c.Request.Method,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
		}()
		c.Next()
	}
}
