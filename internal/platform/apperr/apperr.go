package apperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindNotFound      Kind = "not_found"
	KindStateConflict Kind = "state_conflict"
	KindCollaborator  Kind = "collaborator_error"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrStateConflict = errors.New("state conflict")
	ErrCollaborator  = errors.New("collaborator failure")
)

// Error carries the failure kind plus the field or entity it concerns so the
// transport layer can build an actionable message.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrStateConflict:
		return e.Kind == KindStateConflict
	case ErrCollaborator:
		return e.Kind == KindCollaborator
	}
	return false
}

func Validation(field, message string) error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func NotFound(entity string, id any) error {
	return &Error{Kind: KindNotFound, Field: entity, Message: fmt.Sprintf("%v not found", id)}
}

func StateConflict(entity, message string) error {
	return &Error{Kind: KindStateConflict, Field: entity, Message: message}
}

// Collaborator wraps a persistence or delivery failure with eris so the stack
// survives until it is logged.
func Collaborator(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindCollaborator, Message: op, Err: eris.Wrap(err, op)}
}

// FromStore classifies a store error: missing rows become NotFound for the
// given entity, anything else a collaborator failure.
func FromStore(err error, entity string, id any, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound(entity, id)
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return Collaborator(op, err)
}

func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindCollaborator
}

func FieldOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
