package order

import (
	"fmt"
	"strings"
)

// Issue describes one rejected field of a checkout request.
type Issue struct {
	Code    string `json:"code"`
	Path    []any  `json:"path"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a checkout request.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		fields = append(fields, is.Field)
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasField reports whether any issue targets field.
func (e *ValidationError) HasField(field string) bool {
	for _, is := range e.Issues {
		if is.Field == field {
			return true
		}
	}
	return false
}

// DependencyError wraps a storage failure. Err is for logs only.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
