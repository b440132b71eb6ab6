// Package security provides audit logging and request correlation for
// authentication attempts.
//
// # Audit Logging
//
// The Auditor writes one structured "security_audit" log entry per
// authentication outcome. Usernames are never logged in clear text; they are
// replaced by HashForLogging, a truncated SHA-256 digest that still allows
// correlating repeated attempts for the same account. Passwords and tokens
// are never passed to the auditor.
//
//	auditor := security.NewAuditor(logger, true)
//	auditor.SetInstrumentation(inst)
//	auditor.LogAuthFailure(ctx, "octocat", "github.example.com", 401, "unauthorized")
//
// # Request IDs
//
// Every authentication runs with a request ID in its context. Callers that
// already have one (e.g. from an upstream X-Request-ID header) store it with
// WithRequestID; otherwise EnsureRequestID generates a ULID. The ID appears in
// audit entries, log lines and span attributes.
package security
