package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Authentication outcomes recorded by RecordAuthentication
const (
	OutcomeSuccess           = "success"
	OutcomeValidationFailure = "validation_failure"
	OutcomeAuthFailure       = "auth_failure"
)

// Metrics holds all metric instruments. All Record methods are nil-safe.
type Metrics struct {
	// Authentication Metrics
	AuthenticationsTotal   metric.Int64Counter
	AuthenticationDuration metric.Float64Histogram
	ProfileFallbacksTotal  metric.Int64Counter

	// Provider Metrics
	ProviderAPICallsTotal metric.Int64Counter
	ProviderAPIDuration   metric.Float64Histogram
	ProviderAPIErrors     metric.Int64Counter

	// Audit Metrics
	AuditEventsTotal metric.Int64Counter
}

// newMetrics creates and registers all metric instruments
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}
	authMeter := inst.Meter("authenticator")
	providerMeter := inst.Meter("provider")
	securityMeter := inst.Meter("security")

	var err error
	m.AuthenticationsTotal, err = authMeter.Int64Counter(
		"ghe_auth.authentications.total",
		metric.WithDescription("Number of authentication attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authentications.total counter: %w", err)
	}

	m.AuthenticationDuration, err = authMeter.Float64Histogram(
		"ghe_auth.authentication.duration",
		metric.WithDescription("End-to-end authentication duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authentication.duration histogram: %w", err)
	}

	m.ProfileFallbacksTotal, err = authMeter.Int64Counter(
		"ghe_auth.profile.fallbacks.total",
		metric.WithDescription("Number of times the default email replaced a profile lookup"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile.fallbacks.total counter: %w", err)
	}

	m.ProviderAPICallsTotal, err = providerMeter.Int64Counter(
		"ghe_auth.provider.api.calls.total",
		metric.WithDescription("Total number of calls to the GitHub host"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.calls.total counter: %w", err)
	}

	m.ProviderAPIDuration, err = providerMeter.Float64Histogram(
		"ghe_auth.provider.api.duration",
		metric.WithDescription("GitHub host call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.duration histogram: %w", err)
	}

	m.ProviderAPIErrors, err = providerMeter.Int64Counter(
		"ghe_auth.provider.api.errors.total",
		metric.WithDescription("Number of failed calls to the GitHub host"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.errors.total counter: %w", err)
	}

	m.AuditEventsTotal, err = securityMeter.Int64Counter(
		"ghe_auth.audit.events.total",
		metric.WithDescription("Number of security audit events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit.events.total counter: %w", err)
	}

	return m, nil
}

// RecordAuthentication records a finished authentication attempt
func (m *Metrics) RecordAuthentication(ctx context.Context, outcome string, durationMs float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.AuthenticationsTotal.Add(ctx, 1, attrs)
	m.AuthenticationDuration.Record(ctx, durationMs, attrs)
}

// RecordProfileFallback records the default email being used instead of a looked up one
func (m *Metrics) RecordProfileFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.ProfileFallbacksTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordProviderAPICall records a provider API call
func (m *Metrics) RecordProviderAPICall(ctx context.Context, provider, operation string, statusCode int, durationMs float64, err error) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.Int("status", statusCode),
	}

	m.ProviderAPICallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ProviderAPIDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
	))

	if err != nil {
		errorType := "transport_error"
		if statusCode >= 400 && statusCode < 500 {
			errorType = "client_error"
		} else if statusCode >= 500 {
			errorType = "server_error"
		} else if statusCode >= 200 && statusCode < 300 {
			errorType = "decode_error"
		}

		m.ProviderAPIErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("operation", operation),
			attribute.String("error_type", errorType),
		))
	}
}

// RecordAuditEvent records an audit event
func (m *Metrics) RecordAuditEvent(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.AuditEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}
