package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/shared/telemetry"
)

const (
	submissionIDKey     = "submissionId"
	submissionStatusKey = "submissionStatus"
)

// SetSubmission records the submission a request touched so the request log carries it.
func SetSubmission(c *gin.Context, id, status string) {
	if c == nil {
		return
	}
	c.Set(submissionIDKey, id)
	if status != "" {
		c.Set(submissionStatusKey, status)
	}
}

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		telemetry.Info("request.complete", map[string]any{
			"request_id":        RequestIDFromContext(c),
			"method":            c.Request.Method,
			"path":              c.Request.URL.Path,
			"status":            c.Writer.Status(),
			"duration_ms":       float64(latency.Microseconds()) / 1000.0,
			"user_id":           UserIDFromContext(c),
			"submission_id":     stringFromContext(c, submissionIDKey),
			"submission_status": stringFromContext(c, submissionStatusKey),
			"client_ip":         c.ClientIP(),
			"user_agent":        c.Request.UserAgent(),
		})
	}
}
