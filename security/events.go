package security

// Event type constants for security audit logging.
// These constants ensure consistency across the codebase and prevent typos
// when logging security-relevant events.
const (
	// EventAuthSuccess is logged when a token was issued for a user
	EventAuthSuccess = "auth_success"

	// EventAuthFailure is logged when the host rejected the credentials or failed
	EventAuthFailure = "auth_failure"

	// EventCredentialsInvalid is logged when a login attempt carried malformed credentials
	EventCredentialsInvalid = "credentials_invalid"

	// EventOTPRequired is logged when the host asked for a two-factor code
	EventOTPRequired = "otp_required"

	// EventProfileFallback is logged when the default email replaced a profile lookup
	EventProfileFallback = "profile_fallback"
)
