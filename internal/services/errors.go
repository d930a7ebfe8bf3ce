package services

import (
	"errors"
	"fmt"

	"github.com/anonto42/quillpress/backend/internal/repositories"
)

// ValidationError rejects malformed input before any write.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// PermissionError rejects a caller that may not perform the operation.
type PermissionError struct {
	msg string
}

func (e *PermissionError) Error() string {
	return e.msg
}

// NotFoundError reports a missing target document.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func invalid(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...interface{}) error {
	return &PermissionError{msg: fmt.Sprintf(format, args...)}
}

// notFound translates repositories.ErrNotFound into a NotFoundError and
// passes every other error through.
func notFound(err error, resource, id string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return err
}
