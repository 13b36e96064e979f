package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrTooManyRequests = errors.New("too many requests")
)

// ErrReferralNotFound is returned by Resolve when no account owns a code.
var ErrReferralNotFound = fmt.Errorf("%w: referral code", ErrNotFound)

// Error carries a client-facing message and an optional machine code
// alongside one of the kinds above.
type Error struct {
	Kind    error
	Message string
	Code    string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflict(code, message string) error {
	return &Error{Kind: ErrConflict, Message: message, Code: code}
}

func unauthorized(message string) error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}
