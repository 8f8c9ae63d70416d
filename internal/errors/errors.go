// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure of the session layer carries a Kind so callers can decide
// whether to show the message, start a refresh, or silently treat the user
// as logged out.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Validation marks input rejected before any network call.
	Validation Kind = "validation"
	// Authentication marks credentials refused by the backend.
	Authentication Kind = "authentication"
	// Authorization marks a 401/403 on an already authenticated call.
	Authorization Kind = "authorization"
	// SessionExpired marks an unrecoverable refresh failure.
	SessionExpired Kind = "session_expired"
	// Storage marks a failure of the durable session storage.
	Storage Kind = "storage"
	// Network marks transport failures and 5xx responses.
	Network Kind = "network"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the Kind of the first *E in err's chain, or "".
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the human message of the first *E in err's chain,
// falling back to err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
