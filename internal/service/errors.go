package service

import "fmt"

// NotFoundError reports a missing entity by its display name. The API layer
// renders it as a 404 with the message verbatim.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// ValidationError reports a bad request parameter. Rendered as a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func notFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
