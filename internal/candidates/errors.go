package candidates

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates the candidate does not exist.
	ErrNotFound = errors.New("candidate not found")

	// ErrEmailConflict indicates another candidate already uses the email.
	ErrEmailConflict = errors.New("a candidate with this email already exists")

	// ErrStorage wraps file or persistence failures.
	ErrStorage = errors.New("candidate storage failure")
)

// ValidationError addresses one invalid input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationFailedError carries every validation problem of a submission.
type ValidationFailedError struct {
	Errors []ValidationError
}

func (e *ValidationFailedError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		fields = append(fields, ve.Field)
	}
	return "validation failed: " + strings.Join(fields, ", ")
}
