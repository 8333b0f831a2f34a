package services

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow error so handlers can map it to a stable
// response. Not-found and forbidden are distinct on purpose: callers must be
// able to tell "doesn't exist" from "exists but you can't touch it".
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindPrecondition
	KindForbidden
	KindValidation
)

// Error is the typed error returned by every service operation.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func notFoundErr(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func preconditionErr(format string, args ...interface{}) error {
	return &Error{Kind: KindPrecondition, Message: fmt.Sprintf(format, args...)}
}

func forbiddenErr(format string, args ...interface{}) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func validationErr(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func isKind(err error, kind Kind) bool {
	var we *Error
	return errors.As(err, &we) && we.Kind == kind
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsPrecondition reports whether err is a precondition failure (wrong source
// status, duplicate row, update on a non-draft submission).
func IsPrecondition(err error) bool { return isKind(err, KindPrecondition) }

// IsForbidden reports whether err is an authorization failure.
func IsForbidden(err error) bool { return isKind(err, KindForbidden) }

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// ErrAIUnavailable is returned by the disabled AI adapter. Callers downgrade
// it to a soft no-op; it never aborts a submission action.
var ErrAIUnavailable = errors.New("ai assist is not configured")
