// Package errors provides custom error types for catalog operations.
package errors

import "errors"

var (
	ErrEmptyRequest    = errors.New("request body is empty")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("another object with same code field already exists in system")
	ErrProductNotFound = errors.New("product was not found")
	ErrNilInput        = errors.New("validation input is nil")
)

// ValidationError carries the aggregated validation message. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
