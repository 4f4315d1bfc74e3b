package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/telemetry"
)

// Context keys handlers may set for the request log line.
const (
	CandidateIDKey = "candidateId"
	SubmissionKey  = "submissionState"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if id := c.GetString(CandidateIDKey); id != "" {
			fields["candidate_id"] = id
		}
		if state := c.GetString(SubmissionKey); state != "" {
			fields["submission_state"] = state
		}
		telemetry.Info("request.complete", fields)
	}
}
