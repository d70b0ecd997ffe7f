// Package apperror defines the closed set of error kinds the auth core can
// surface. The transport layer matches on Kind exhaustively; internal causes
// stay wrapped for logging and never reach the client.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation covers malformed input and policy violations. Details
	// always carries the complete list of violations, never a partial one.
	KindValidation
	// KindAuthentication covers wrong credentials, missing or unusable
	// bearer tokens, and deleted accounts. The message is deliberately
	// generic at the login boundary so "no such user" and "wrong password"
	// are indistinguishable to the caller.
	KindAuthentication
	KindAccountLocked
	KindConflict
	KindToken
	KindNotFound
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAccountLocked:
		return "account_locked"
	case KindConflict:
		return "conflict"
	case KindToken:
		return "token"
	case KindNotFound:
		return "not_found"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Details []string
	cause   error
}

func (e *Error) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Details, "; "))
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf reports the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// DetailsOf returns the violation list of err, if any.
func DetailsOf(err error) []string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}

// MessageOf returns the client-safe message of err without the joined
// details, falling back to err.Error() for foreign errors.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func AccountLocked(message string) *Error {
	return &Error{Kind: KindAccountLocked, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Token(message string) *Error {
	return &Error{Kind: KindToken, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Internal wraps a storage or infrastructure failure. The wrapped cause is
// for logs only; the client sees just the message.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}
