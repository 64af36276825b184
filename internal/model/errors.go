// Package model defines the Filmorate domain entities, their validation rules
// and the error kinds shared by the storage, service and HTTP layers.
package model

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers translate them into HTTP responses with errors.Is:
// ErrValidation and ErrBadRequest become 400, ErrNotFound 404 and
// ErrAlreadyExists 409. Anything else is an internal error.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
)

// Error carries a human-readable message together with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError reports input that violates a domain rule.
func NewValidationError(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

// NewNotFoundError reports a reference to an unknown entity.
func NewNotFoundError(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

// NewAlreadyExistsError reports a duplicate relation.
func NewAlreadyExistsError(format string, args ...any) error {
	return newError(ErrAlreadyExists, format, args...)
}

// NewBadRequestError reports a malformed request: bad path parameters,
// unparseable bodies or unknown fields.
func NewBadRequestError(format string, args ...any) error {
	return newError(ErrBadRequest, format, args...)
}
