package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

// Kind groups failures by how an operator should react to them.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindDuplicate   Kind = "duplicate"
	KindStore       Kind = "store"
	KindReferential Kind = "referential_integrity"
	KindBusy        Kind = "busy"
	KindUnknown     Kind = "unknown"
)

var (
	ErrBusy           = errors.New("another action is awaiting confirmation")
	ErrNoPending      = errors.New("no action is awaiting confirmation")
	ErrStaleToken     = errors.New("the pending action was replaced or cancelled")
	ErrChoiceRequired = errors.New("several people match; choose one")
	ErrNotCandidate   = errors.New("chosen person is not one of the candidates")
	ErrNoChoice       = errors.New("the pending action does not need a choice")
	ErrNotConfigured  = errors.New("feature is not configured")
)

const offlineMessage = "The data store is unreachable, nothing was saved. Try again once the connection is back."

// Error is the single error shape surfaced to operators. Message is meant
// for display; Err keeps the cause for logs and errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Classify maps any failure onto the operator-facing taxonomy. It returns
// nil for a nil error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var argErr *action.ArgumentError

	switch {
	case errors.Is(err, ErrBusy):
		return newError(KindBusy, err, "Another action is waiting for confirmation. Confirm or cancel it first.")
	case errors.As(err, &argErr):
		return newError(KindValidation, err, "Invalid request: %s", argErr.Error())
	case errors.Is(err, action.ErrUnknownAction), errors.Is(err, action.ErrInvalidArgs):
		return newError(KindValidation, err, "The request could not be understood.")
	case errors.Is(err, ErrNoPending), errors.Is(err, ErrStaleToken),
		errors.Is(err, ErrChoiceRequired), errors.Is(err, ErrNotCandidate),
		errors.Is(err, ErrNoChoice), errors.Is(err, ErrNotConfigured):
		return newError(KindValidation, err, "%s", capitalize(err.Error()))
	case errors.Is(err, entity.ErrAlreadyReturned):
		return newError(KindValidation, err, "That invoice was already returned.")
	case errors.Is(err, entity.ErrNotFound):
		return newError(KindNotFound, err, "The record no longer exists.")
	case errors.Is(err, entity.ErrDuplicate):
		return newError(KindDuplicate, err, "A record with that name already exists.")
	case errors.Is(err, entity.ErrHasDependents):
		return newError(KindReferential, err, "It cannot be deleted because other records refer to it.")
	case errors.Is(err, entity.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return newError(KindStore, err, offlineMessage)
	}

	return newError(KindUnknown, err, "Something went wrong, nothing was saved.")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}

	return s
}
