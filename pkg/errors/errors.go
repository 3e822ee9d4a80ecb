// Package errors provides the error taxonomy shared by the inference client,
// the explanation orchestrator and the HTTP boundary.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Error codes.
const (
	CodeModelUnavailable       = "MODEL_UNAVAILABLE"
	CodeTimeout                = "TIMEOUT"
	CodeProtocol               = "PROTOCOL_ERROR"
	CodeMalformedResponse      = "MALFORMED_RESPONSE"
	CodeTransport              = "TRANSPORT_ERROR"
	CodeNoExplanationGenerated = "NO_EXPLANATION_GENERATED"
	CodeCanceled               = "CANCELED"
	CodeInvalidInput           = "INVALID_INPUT"
)

// Error is a classified failure. StatusCode and Body are only set for
// protocol errors returned by the inference endpoint.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	Body       string `json:"body,omitempty"`
	Cause      error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d: %s)", msg, e.StatusCode, e.Body)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on code only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrModelUnavailable       = &Error{Code: CodeModelUnavailable, Message: "model unavailable"}
	ErrNoExplanationGenerated = &Error{Code: CodeNoExplanationGenerated, Message: "could not generate explanation"}
	ErrCanceled               = &Error{Code: CodeCanceled, Message: "request canceled"}
	ErrTimeout                = &Error{Code: CodeTimeout, Message: "request timed out"}
	ErrProtocol               = &Error{Code: CodeProtocol, Message: "inference endpoint returned an error status"}
	ErrMalformedResponse      = &Error{Code: CodeMalformedResponse, Message: "unexpected response format"}
	ErrTransport              = &Error{Code: CodeTransport, Message: "inference endpoint unreachable"}
	ErrInvalidInput           = &Error{Code: CodeInvalidInput, Message: "invalid input"}
)

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap wraps err with a code and message. It returns nil for a nil err.
func Wrap(err error, code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// Protocol builds a protocol error carrying the endpoint's status and body.
func Protocol(statusCode int, body string) *Error {
	return &Error{
		Code:       CodeProtocol,
		Message:    ErrProtocol.Message,
		StatusCode: statusCode,
		Body:       body,
	}
}

// GetCode extracts the code from err. Context errors map to their own codes;
// anything unclassified is a transport error.
func GetCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	switch {
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	}
	return CodeTransport
}

// As is errors.As, re-exported so callers need a single errors import.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is errors.Is, re-exported so callers need a single errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetMessage returns the human-readable message of err.
func GetMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool { return GetCode(err) == CodeTimeout }

// IsCanceled reports whether err is a cancellation.
func IsCanceled(err error) bool { return GetCode(err) == CodeCanceled }
