// Package apperr classifies failures so the transport layer can map them to responses.
package apperr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrPersistence     = errors.New("persistence failed")
	ErrBadRequest      = errors.New("bad request")
)

type (
	// Error is a single classified failure attached to a request field.
	Error struct {
		Kind    error
		Field   string
		Message string
	}

	// FieldErrors maps a request field to its messages.
	FieldErrors map[string][]string

	ValidationError struct {
		Fields FieldErrors
	}
)

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = FieldErrors{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// OrNil returns nil when no field failed, so callers can collect and return in one step.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func Invalid(field, message string) error {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

func NotFound(field, message string) error {
	return &Error{Kind: ErrNotFound, Field: field, Message: message}
}

func Conflict(field, message string) error {
	return &Error{Kind: ErrConflict, Field: field, Message: message}
}

// Deny classifies a refused permission: anonymous actors are unauthenticated,
// everyone else is forbidden.
func Deny(actor *models.User, message string) error {
	if actor == nil || actor.ID == 0 {
		return &Error{Kind: ErrUnauthenticated, Field: "auth", Message: "You were not successfully authenticated."}
	}
	return &Error{Kind: ErrForbidden, Field: "auth", Message: message}
}

func Unauthenticated(message string) error {
	return &Error{Kind: ErrUnauthenticated, Field: "auth", Message: message}
}

// Persistence reports a failed save; the store's message is exposed under "database".
func Persistence(err error) error {
	return &Error{Kind: ErrPersistence, Field: "database", Message: err.Error()}
}

func BadRequest(field, message string) error {
	return &Error{Kind: ErrBadRequest, Field: field, Message: message}
}
