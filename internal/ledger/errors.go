package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/violet-vault/backend/internal/store"
	"golang.org/x/exp/slices"
)

var (
	ErrMissingEnvelope  = errors.New("a transaction must reference an envelope")
	ErrEnvelopeNotFound = errors.New("the referenced envelope does not exist")
	ErrValidationFailed = errors.New("validation failed")

	// ErrNotFound is returned when a record required by an operation does not exist.
	ErrNotFound = store.ErrNotFound

	// ErrStorageFailure is returned when the local database fails.
	ErrStorageFailure = store.ErrStorage
)

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, e.Fields[field])
	}

	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(messages, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// fieldErrorText converts a validator error to a human readable message.
func fieldErrorText(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "max":
		return fmt.Sprintf("%s cannot be longer than %s characters", e.Field(), e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	}
	return fmt.Sprintf("%s is not valid", e.Field())
}

// validationError converts the result of validator.Struct.
func validationError(err error) error {
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	v := &ValidationError{Fields: map[string]string{}}
	for _, e := range errs {
		v.Fields[e.Field()] = fieldErrorText(e)
	}
	return v
}
