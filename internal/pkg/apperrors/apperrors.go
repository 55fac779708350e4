package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ValidationError means the caller sent missing or invalid input. Validation
// runs before any write, so a ValidationError guarantees no partial effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Validation builds a ValidationError for a field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError means the operation is blocked by existing references or a
// duplicate name. Not retried automatically.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(message string) error {
	return &ConflictError{Message: message}
}

// NotFoundError means a referenced id is absent.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// IntegrityError is a server-side invariant violation (e.g. a contribution
// row pointing at a missing impact). Logged and repaired by recalculation,
// never surfaced with details to the end user.
type IntegrityError struct {
	Message string
}

func (e *IntegrityError) Error() string { return e.Message }

func Integrity(message string) error {
	return &IntegrityError{Message: message}
}

// StatusCode maps a service error to its HTTP status.
func StatusCode(err error) int {
	var ve *ValidationError
	var ce *ConflictError
	var ne *NotFoundError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.As(err, &ce):
		return fiber.StatusConflict
	case errors.As(err, &ne):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show the caller. Integrity and
// unknown errors collapse to a generic message.
func PublicMessage(err error) string {
	switch StatusCode(err) {
	case fiber.StatusInternalServerError:
		return "Internal Server Error"
	default:
		return err.Error()
	}
}
