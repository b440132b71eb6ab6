package providers

import (
	"errors"
	"fmt"
)

// FailureKind classifies a Failure.
type FailureKind string

// Failure kinds
const (
	KindValidation FailureKind = "validation_failure"
	KindAuth       FailureKind = "auth_failure"
	KindTransport  FailureKind = "transport_failure"
	KindDecode     FailureKind = "decode_failure"
)

// Messages carried by failures produced in this module.
const (
	MessageInvalidCredentials = "invalid credentials format"
	MessageUnauthorized       = "unauthorized"
	MessageOTPRequired        = "two-factor authentication required"
	MessageServerError        = "server error"
	MessageRequestFailed      = "authorization request failed"
	MessageMalformedResponse  = "malformed authorization response"
	MessageAuthFailed         = "authentication failed"
)

// Failure is the error type returned by token issuance and authentication.
type Failure struct {
	Kind    FailureKind // what went wrong
	Code    int         // HTTP status, 0 for local and transport failures
	Message string      // human-readable description
	Err     error       // underlying cause, if any
}

// Error implements the error interface
func (f *Failure) Error() string {
	if f.Code != 0 {
		return fmt.Sprintf("%s (%d): %s", f.Kind, f.Code, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure creates a new failure
func NewFailure(kind FailureKind, code int, message string) *Failure {
	return &Failure{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

var (
	// ErrValidation reports malformed or missing credentials.
	ErrValidation = func() *Failure {
		return NewFailure(KindValidation, 0, MessageInvalidCredentials)
	}

	// ErrStatus reports a non-2xx answer from the authorization endpoint.
	ErrStatus = func(status int) *Failure {
		return NewFailure(KindAuth, status, StatusMessage(status))
	}

	// ErrTransport reports a network level failure (unreachable host, timeout).
	ErrTransport = func(err error) *Failure {
		f := NewFailure(KindTransport, 0, err.Error())
		f.Err = err
		return f
	}

	// ErrDecode reports a 2xx answer whose body could not be used.
	ErrDecode = func(err error) *Failure {
		f := NewFailure(KindDecode, 0, MessageMalformedResponse)
		f.Err = err
		return f
	}
)

// StatusMessage derives the failure message for an HTTP status.
func StatusMessage(status int) string {
	switch {
	case status == 401:
		return MessageUnauthorized
	case status >= 500:
		return MessageServerError
	default:
		return MessageRequestFailed
	}
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is a failure with HTTP status 401.
func IsUnauthorized(err error) bool {
	f, ok := AsFailure(err)
	return ok && f.Code == 401
}
