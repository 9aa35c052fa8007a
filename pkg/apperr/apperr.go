// Package apperr defines the coded error type shared by services and HTTP
// handlers.
//
// Services return *Error values carrying a Code; the HTTP layer maps the code
// to a status with HTTPStatus and renders Msg to the client. Errors without a
// code are treated as internal and their text is never sent to clients.
//
//	return &apperr.Error{
//	    Code: apperr.ENotFound,
//	    Op:   "services.ItemService.Get",
//	    Msg:  "item not found",
//	}
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	EUnauthorized  = "unauthorized"  // missing or invalid credential
	EForbidden     = "forbidden"     // role or tenant mismatch
	EInvalid       = "invalid"       // validation failed
	ENotFound      = "not found"     // id/tenant predicate miss
	EConflict      = "conflict"      // action cannot be performed in current state
	EConfiguration = "configuration" // incomplete tenant or mail settings
	ETransport     = "transport"     // SMTP connect/send failure
	EInternal      = "internal error"
)

// Error is a coded application error.
type Error struct {
	Code    string
	Msg     string
	Op      string
	Err     error
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Msg != "" && e.Err != nil {
		var b strings.Builder
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
		return b.String()
	} else if e.Msg != "" {
		return e.Msg
	} else if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("<%s>", e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the code of the outermost coded error in err's chain, or
// EInternal when there is none.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return EInternal
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Err != nil {
		return Code(e.Err)
	}
	return EInternal
}

// Message returns a client-safe message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) || Code(err) == EInternal {
		return "An internal error has occurred."
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return Message(e.Err)
	}
	return e.Code
}

// DetailsOf returns the structured details attached to err, if any.
func DetailsOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

var statusByCode = map[string]int{
	EUnauthorized:  http.StatusUnauthorized,
	EForbidden:     http.StatusForbidden,
	EInvalid:       http.StatusBadRequest,
	ENotFound:      http.StatusNotFound,
	EConflict:      http.StatusConflict,
	EConfiguration: http.StatusInternalServerError,
	ETransport:     http.StatusBadGateway,
	EInternal:      http.StatusInternalServerError,
}

// HTTPStatus maps err's code to an HTTP status.
func HTTPStatus(err error) int {
	if s, ok := statusByCode[Code(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && Code(err) == code
}

// Invalid builds a validation error.
func Invalid(op, format string, args ...any) *Error {
	return &Error{Code: EInvalid, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found error for the named entity.
func NotFound(op, entity string) *Error {
	return &Error{Code: ENotFound, Op: op, Msg: entity + " not found"}
}

// Forbidden builds an authorization error.
func Forbidden(op, msg string) *Error {
	return &Error{Code: EForbidden, Op: op, Msg: msg}
}

// Internal wraps an unexpected error.
func Internal(op string, err error) *Error {
	return &Error{Code: EInternal, Op: op, Err: err}
}

// Conflict builds an error for an action the current state does not allow.
func Conflict(op, msg string) *Error {
	return &Error{Code: EConflict, Op: op, Msg: msg}
}

// Configuration builds an error for incomplete settings.
func Configuration(op, msg string) *Error {
	return &Error{Code: EConfiguration, Op: op, Msg: msg}
}

// Transport wraps a delivery failure.
func Transport(op string, err error) *Error {
	return &Error{Code: ETransport, Op: op, Msg: "mail transport failed", Err: err}
}
