package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestInstrumentation returns an instrumentation whose metrics can be collected.
func newTestInstrumentation(t *testing.T) (*Instrumentation, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	inst, err := New(Config{
		Enabled:       true,
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = inst.Shutdown(context.Background()) })
	return inst, reader
}

// sumValue returns the total of an int64 sum metric, filtered by one attribute.
func sumValue(t *testing.T, reader *sdkmetric.ManualReader, name string, attr attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attr.Key); ok && v == attr.Value {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestMetrics_RecordAuthentication(t *testing.T) {
	inst, reader := newTestInstrumentation(t)
	ctx := context.Background()

	inst.Metrics().RecordAuthentication(ctx, OutcomeSuccess, 10)
	inst.Metrics().RecordAuthentication(ctx, OutcomeSuccess, 20)
	inst.Metrics().RecordAuthentication(ctx, OutcomeAuthFailure, 5)

	if got := sumValue(t, reader, "ghe_auth.authentications.total", attribute.String("outcome", OutcomeSuccess)); got != 2 {
		t.Errorf("success count = %d, want 2", got)
	}
	if got := sumValue(t, reader, "ghe_auth.authentications.total", attribute.String("outcome", OutcomeAuthFailure)); got != 1 {
		t.Errorf("auth_failure count = %d, want 1", got)
	}
}

func TestMetrics_RecordProviderAPICall(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		err           error
		wantErrorType string
	}{
		{"success", 201, nil, ""},
		{"unauthorized", 401, errors.New("unauthorized"), "client_error"},
		{"server error", 500, errors.New("server error"), "server_error"},
		{"transport", 0, errors.New("connection refused"), "transport_error"},
		{"malformed body", 200, errors.New("malformed"), "decode_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, reader := newTestInstrumentation(t)
			inst.Metrics().RecordProviderAPICall(context.Background(), "github-enterprise", "issue_token", tt.statusCode, 12, tt.err)

			calls := sumValue(t, reader, "ghe_auth.provider.api.calls.total", attribute.String("operation", "issue_token"))
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}

			if tt.wantErrorType == "" {
				if got := sumValue(t, reader, "ghe_auth.provider.api.errors.total", attribute.String("operation", "issue_token")); got != 0 {
					t.Errorf("errors = %d, want 0", got)
				}
				return
			}
			if got := sumValue(t, reader, "ghe_auth.provider.api.errors.total", attribute.String("error_type", tt.wantErrorType)); got != 1 {
				t.Errorf("errors{error_type=%s} = %d, want 1", tt.wantErrorType, got)
			}
		})
	}
}

func TestMetrics_RecordProfileFallback(t *testing.T) {
	inst, reader := newTestInstrumentation(t)

	inst.Metrics().RecordProfileFallback(context.Background(), "no_email")

	if got := sumValue(t, reader, "ghe_auth.profile.fallbacks.total", attribute.String("reason", "no_email")); got != 1 {
		t.Errorf("fallbacks = %d, want 1", got)
	}
}

func TestMetrics_RecordAuditEvent(t *testing.T) {
	inst, reader := newTestInstrumentation(t)

	inst.Metrics().RecordAuditEvent(context.Background(), "auth_failure")

	if got := sumValue(t, reader, "ghe_auth.audit.events.total", attribute.String("event_type", "auth_failure")); got != 1 {
		t.Errorf("audit events = %d, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	// Should not panic
	m.RecordAuthentication(ctx, OutcomeSuccess, 1)
	m.RecordProfileFallback(ctx, "lookup_failed")
	m.RecordProviderAPICall(ctx, "p", "op", 200, 1, nil)
	m.RecordAuditEvent(ctx, "x")
}
