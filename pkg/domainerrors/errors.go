// Package domainerrors defines the coded errors shared across services so
// handlers can map failures to HTTP responses without inspecting provider
// internals.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport mapping.
type Code string

const (
	// CodeBadRequest covers missing or invalid request fields.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound covers lookups with no matching record, e.g. a purchase
	// referencing a checkout session that was never created.
	CodeNotFound Code = "not_found"
	// CodeUpstream covers non-2xx responses from the payment processor or
	// the registrar. The provider's own status code is carried when known.
	CodeUpstream Code = "upstream_error"
	// CodeSignature covers webhook deliveries that fail signature checks.
	CodeSignature Code = "invalid_signature"
	// CodeInternal covers anything unanticipated.
	CodeInternal Code = "internal_error"
)

// Error is the coded error type used throughout the services. Fields carries
// field-level validation detail returned by the registrar, echoed back to the
// caller verbatim.
type Error struct {
	Code           Code
	Message        string
	UpstreamStatus int
	Fields         any
	err            error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// New builds a coded error with a human-readable message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a cause to a coded error.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, err: err}
}

// Upstream builds a provider error that remembers the provider's HTTP status
// and field detail so the response can echo both.
func Upstream(status int, message string, fields any) *Error {
	return &Error{Code: CodeUpstream, Message: message, UpstreamStatus: status, Fields: fields}
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// From extracts the coded error from err, wrapping unknown errors as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeInternal, Message: "internal error", err: err}
}

// HTTPStatus maps an error to the status the request boundary should return.
// Upstream errors keep the provider's status when it was a valid HTTP code.
func HTTPStatus(err error) int {
	e := From(err)
	switch e.Code {
	case CodeBadRequest, CodeSignature:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUpstream:
		if e.UpstreamStatus >= 400 && e.UpstreamStatus < 600 {
			return e.UpstreamStatus
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
