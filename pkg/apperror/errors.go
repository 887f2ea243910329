package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidID          = errors.New("invalid id format")
)

// FieldViolation is a single field-level validation failure.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found for one payload.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages(), "; ")
}

func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return msgs
}

// Has reports whether field has at least one violation.
func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

func NewValidation(violations ...FieldViolation) *ValidationError {
	return &ValidationError{Violations: violations}
}

type DuplicateKeyError struct {
	Field string
	Label string
}

func (e *DuplicateKeyError) Error() string {
	label := e.Label
	if label == "" {
		label = e.Field
	}
	return fmt.Sprintf("%s already exists", label)
}

type NotFoundError struct {
	Resource string
	Label    string
	ID       string
}

func (e *NotFoundError) Error() string {
	label := e.Label
	if label == "" {
		label = "Resource"
	}
	return fmt.Sprintf("%s not found", label)
}

type InvalidFieldError struct {
	Resource string
	Field    string
	Reason   string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q on %s: %s", e.Field, e.Resource, e.Reason)
}

type UnknownResourceError struct {
	Name string
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("unknown resource %q", e.Name)
}

type SchemaError struct {
	Resource string
	Field    string
	Reason   string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema %s: %s", e.Resource, e.Reason)
	}
	return fmt.Sprintf("schema %s.%s: %s", e.Resource, e.Field, e.Reason)
}

// Kind returns a short machine-readable name for err, used in the error envelope.
func Kind(err error) string {
	var (
		ve *ValidationError
		de *DuplicateKeyError
		ne *NotFoundError
		fe *InvalidFieldError
		ue *UnknownResourceError
		se *SchemaError
	)
	switch {
	case errors.As(err, &ve):
		return "validation_error"
	case errors.As(err, &de):
		return "duplicate_key"
	case errors.As(err, &ne):
		return "not_found"
	case errors.As(err, &fe):
		return "invalid_field"
	case errors.As(err, &ue):
		return "unknown_resource"
	case errors.As(err, &se):
		return "schema_error"
	case errors.Is(err, ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	}
	return "internal_error"
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	var (
		ve *ValidationError
		de *DuplicateKeyError
		ne *NotFoundError
		fe *InvalidFieldError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &de), errors.As(err, &fe), errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.As(err, &ne):
		return http.StatusNotFound
	}
	// UnknownResource, SchemaError and storage failures are wiring or
	// infrastructure faults.
	return http.StatusInternalServerError
}
