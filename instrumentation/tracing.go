package instrumentation

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common span attribute keys
//
// SECURITY WARNING: Never put passwords or tokens in span attributes. Usernames
// are recorded only as hashes (see security.HashForLogging).
const (
	// Authentication attributes
	AttrUserHash     = "auth.user_hash"
	AttrRequestID    = "auth.request_id"
	AttrOutcome      = "auth.outcome"
	AttrFailureKind  = "auth.failure.kind"
	AttrFailureCode  = "auth.failure.code"
	AttrEmailDefault = "auth.profile.email_default"

	// Provider attributes
	AttrProviderName      = "provider.name"
	AttrProviderOperation = "provider.operation"
	AttrProviderHost      = "provider.host"

	// HTTP attributes (in addition to standard semantic conventions)
	AttrHTTPEndpoint   = "http.endpoint"
	AttrHTTPMethod     = "http.method"
	AttrHTTPStatusCode = "http.status_code"
)

// RecordError records an error on a span with proper status codes (nil-safe)
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks a span as successful (nil-safe)
func SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// SetSpanError sets an error status on a span (nil-safe)
func SetSpanError(span trace.Span, message string) {
	if span != nil {
		span.SetStatus(codes.Error, message)
	}
}

// SetSpanAttributes sets attributes on a span (nil-safe)
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// AddAuthenticationAttributes adds the hashed user and request ID to a span (nil-safe)
func AddAuthenticationAttributes(span trace.Span, userHash, requestID string) {
	if userHash != "" {
		SetSpanAttributes(span, attribute.String(AttrUserHash, userHash))
	}
	if requestID != "" {
		SetSpanAttributes(span, attribute.String(AttrRequestID, requestID))
	}
}

// AddFailureAttributes adds failure classification to a span (nil-safe)
func AddFailureAttributes(span trace.Span, kind string, code int) {
	SetSpanAttributes(span,
		attribute.String(AttrFailureKind, kind),
		attribute.Int(AttrFailureCode, code),
	)
}

// AddProviderAttributes adds provider attributes to a span (nil-safe)
func AddProviderAttributes(span trace.Span, providerName, operation, host string) {
	SetSpanAttributes(span,
		attribute.String(AttrProviderName, providerName),
		attribute.String(AttrProviderOperation, operation),
	)
	if host != "" {
		SetSpanAttributes(span, attribute.String(AttrProviderHost, host))
	}
}

// AddHTTPAttributes adds HTTP request attributes to a span (nil-safe)
func AddHTTPAttributes(span trace.Span, method, endpoint string, statusCode int) {
	SetSpanAttributes(span,
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPEndpoint, endpoint),
		attribute.Int(AttrHTTPStatusCode, statusCode),
	)
}
