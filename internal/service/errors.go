package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"todolist/internal/permission"
	"todolist/internal/repository"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")

	ErrValidation = errors.New("validation failed")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// denied turns a permission decision into nil or a service error. Visibility denials
// become ErrNotFound so callers cannot discover foreign entities.
func denied(d permission.Decision) error {
	if d.Allowed {
		return nil
	}
	if d.Reason == permission.ReasonNotVisible {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
}

// translate maps repository errors onto the service taxonomy. Cascade failures pass
// through untouched.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrBoardNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrGoalNotFound),
		errors.Is(err, repository.ErrCommentNotFound),
		errors.Is(err, repository.ErrParticipantNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, repository.ErrInvalidOrdering):
		return invalid("ordering", err.Error())
	}
	return err
}
