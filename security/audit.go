// Package security provides audit logging and request correlation for
// authentication attempts.
package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/giantswarm/ghe-auth/instrumentation"
)

// Auditor handles security event logging with PII protection.
type Auditor struct {
	logger  *slog.Logger
	enabled bool
	metrics *instrumentation.Metrics
}

// NewAuditor creates a new security auditor
func NewAuditor(logger *slog.Logger, enabled bool) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		logger:  logger,
		enabled: enabled,
	}
}

// SetInstrumentation makes the auditor count events in the audit metric.
func (a *Auditor) SetInstrumentation(inst *instrumentation.Instrumentation) {
	if inst != nil {
		a.metrics = inst.Metrics()
	}
}

// Event represents a security audit event
type Event struct {
	Type      string
	User      string
	Host      string
	Details   map[string]any
	Timestamp time.Time
}

// LogEvent logs a security event with hashed PII.
// The request ID stored in ctx, if any, is attached to the entry.
func (a *Auditor) LogEvent(ctx context.Context, event Event) {
	if !a.enabled {
		return
	}

	event.Timestamp = time.Now()

	a.logger.InfoContext(ctx, "security_audit",
		"event_type", event.Type,
		"user_hash", HashForLogging(event.User),
		"host", event.Host,
		"request_id", GetRequestID(ctx),
		"details", event.Details,
		"timestamp", event.Timestamp,
	)
	a.metrics.RecordAuditEvent(ctx, event.Type)
}

// LogAuthSuccess logs a successful authentication
func (a *Auditor) LogAuthSuccess(ctx context.Context, user, host string, emailDefaulted bool) {
	a.LogEvent(ctx, Event{
		Type: EventAuthSuccess,
		User: user,
		Host: host,
		Details: map[string]any{
			"email_defaulted": emailDefaulted,
		},
	})
}

// LogAuthFailure logs an authentication failure reported by the host
func (a *Auditor) LogAuthFailure(ctx context.Context, user, host string, code int, reason string) {
	a.LogEvent(ctx, Event{
		Type: EventAuthFailure,
		User: user,
		Host: host,
		Details: map[string]any{
			"code":   code,
			"reason": reason,
		},
	})
}

// LogOTPRequired logs that the host refused Basic credentials without a two-factor code
func (a *Auditor) LogOTPRequired(ctx context.Context, user, host string) {
	a.LogEvent(ctx, Event{
		Type: EventOTPRequired,
		User: user,
		Host: host,
	})
}

// LogCredentialsInvalid logs a login attempt with malformed credentials.
// The user may be empty when the request carried no name at all.
func (a *Auditor) LogCredentialsInvalid(ctx context.Context, user, host string) {
	a.LogEvent(ctx, Event{
		Type: EventCredentialsInvalid,
		User: user,
		Host: host,
	})
}

// LogProfileFallback logs that a profile lookup could not provide an email
func (a *Auditor) LogProfileFallback(ctx context.Context, user, host, reason string) {
	a.LogEvent(ctx, Event{
		Type: EventProfileFallback,
		User: user,
		Host: host,
		Details: map[string]any{
			"reason": reason,
		},
	})
}

// HashForLogging creates a truncated SHA256 hash of sensitive data for logs and traces
func HashForLogging(sensitive string) string {
	if sensitive == "" {
		return "<empty>"
	}
	hash := sha256.Sum256([]byte(sensitive))
	return hex.EncodeToString(hash[:])[:16]
}
