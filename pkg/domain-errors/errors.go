// Package domainerrors defines the error taxonomy shared by services and transports.
//
// Services return *Error values carrying a Code (the taxonomy kind) and an optional
// Reason (a stable machine-readable refinement such as "already_terminal"). Stores do
// not use this package; they return pkg/platform/sentinel errors which services
// translate.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers and transports.
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
	CodeRateLimited        Code = "rate_limit_exceeded"
	CodeInternal           Code = "internal_error"
)

// Reason refines a Code for cases callers need to tell apart.
type Reason string

const (
	ReasonUnlinkedProfile   Reason = "unlinked_profile"
	ReasonMissingCandidate  Reason = "missing_candidate"
	ReasonInvalidTransition Reason = "invalid_transition"
	ReasonAlreadyTerminal   Reason = "already_terminal"
)

// Error is a domain error with a taxonomy code.
type Error struct {
	Code    Code
	Reason  Reason
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

// New creates an error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// NewWithReason creates an error carrying both a code and a reason.
func NewWithReason(code Code, reason Reason, msg string) *Error {
	return &Error{Code: code, Reason: reason, Message: msg}
}

// Wrap annotates err with a code and message while keeping it in the chain.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost domain error in err's chain has code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is an alias of HasCode kept for handler readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// HasReason reports whether the outermost domain error in err's chain has reason.
func HasReason(err error, reason Reason) bool {
	de, ok := As(err)
	return ok && de.Reason == reason
}
