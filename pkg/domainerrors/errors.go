// Package domainerrors defines coded errors returned by domain services.
//
// Stores return sentinel infrastructure errors (pkg/platform/sentinel);
// services translate them into coded errors here so transport layers map
// them to stable machine-readable kinds without string matching.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error kind.
type Code string

const (
	// Input and lookup failures.
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"

	// Draw state outcomes. These are expected results of concurrent or racy
	// usage, not exceptional failures; callers handle them as control flow.
	CodeWindowNotActive       Code = "window_not_active"
	CodeAlreadyRegistered     Code = "already_registered"
	CodeWindowNotClosed       Code = "window_not_closed"
	CodeWinnerAlreadySelected Code = "winner_already_selected"
	CodeNoRegistrants         Code = "no_registrants"
	CodeNotARegistrant        Code = "not_a_registrant"

	// Infrastructure failures.
	CodeUnavailable Code = "unavailable"
	CodeInternal    Code = "internal_error"
)

// Error is a coded domain error. Message is safe to show to API callers
// except when the code is CodeInternal.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is/As.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-safe message from err. Internal errors get a
// generic message so storage details never leak.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != CodeInternal {
		return de.Message
	}
	return "internal server error"
}

// ToHTTPStatus maps a code to an HTTP status. Draw state outcomes are client
// errors per the API contract: the request was well-formed but the draw is
// not in a state that permits it.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput,
		CodeWindowNotActive, CodeAlreadyRegistered, CodeWindowNotClosed,
		CodeWinnerAlreadySelected, CodeNoRegistrants, CodeNotARegistrant:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
