package respond

import (
	"github.com/gin-gonic/gin"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/telemetry"
)

// FieldError addresses one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for failed API calls. Errors is only set
// for validation failures.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Error logs and sends a summary-level error.
func Error(c *gin.Context, status int, message string) {
	send(c, status, message, nil)
}

// ValidationError sends a field-addressable error list.
func ValidationError(c *gin.Context, status int, message string, errs []FieldError) {
	send(c, status, message, errs)
}

func send(c *gin.Context, status int, message string, errs []FieldError) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if len(errs) > 0 {
		fields["error_count"] = len(errs)
		fields["first_field"] = errs[0].Field
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error:   message,
		Errors:  errs,
	})
}
