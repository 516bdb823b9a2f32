package services

import (
	"fmt"
	"strings"
)

// marker tags a failure with a classification the queue can map to a status.
type marker struct {
	kind string
	text string
}

func (m *marker) Error() string { return m.text }

// ErrorKind reports the classification used by queue.FailureStatus.
func (m *marker) ErrorKind() string { return m.kind }

var (
	ErrExternalTool  error = &marker{kind: "external_tool", text: "external tool error"}
	ErrValidation    error = &marker{kind: "validation", text: "validation error"}
	ErrConfiguration error = &marker{kind: "configuration", text: "configuration error"}
	ErrNotFound      error = &marker{kind: "not_found", text: "not found"}
	ErrTimeout       error = &marker{kind: "timeout", text: "timeout"}
	ErrTransient     error = &marker{kind: "transient", text: "transient failure"}
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{stage, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
