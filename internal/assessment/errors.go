package assessment

import (
	"errors"
	"strings"
)

// ErrNotFound means the user has no matching submission.
var ErrNotFound = errors.New("not found")

// ValidationError describes a rejected answer set.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid answers"
	}
	return "invalid answers: " + strings.Join(e.Issues, "; ")
}

func newValidationError(issues ...string) *ValidationError {
	return &ValidationError{Issues: issues}
}
