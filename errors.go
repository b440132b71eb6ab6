package ghauth

import "github.com/giantswarm/ghe-auth/providers"

// AuthError is the error type passed to callbacks and returned by the
// authenticator. Code is the HTTP status from the host, or 0.
type AuthError = providers.Failure

// Failure kinds re-exported for callers of this package.
const (
	KindValidation = providers.KindValidation
	KindAuth       = providers.KindAuth
	KindTransport  = providers.KindTransport
	KindDecode     = providers.KindDecode
)

// User-facing messages produced by Authenticate.
const (
	MessageInvalidCredentials = providers.MessageInvalidCredentials
	MessageUnauthorized       = providers.MessageUnauthorized
	MessageAuthFailed         = providers.MessageAuthFailed
)

// authenticationFailure converts a token issuance error into the error
// reported by Authenticate. The host's status code is kept, the message is
// reduced to "unauthorized" or "authentication failed".
func authenticationFailure(err error) *AuthError {
	failure, ok := providers.AsFailure(err)
	if !ok {
		failure = providers.ErrTransport(err)
	}

	message := MessageAuthFailed
	if providers.IsUnauthorized(failure) {
		message = MessageUnauthorized
	}

	return &AuthError{
		Kind:    failure.Kind,
		Code:    failure.Code,
		Message: message,
		Err:     failure,
	}
}

// AsAuthError extracts an *AuthError from err.
func AsAuthError(err error) (*AuthError, bool) {
	return providers.AsFailure(err)
}
