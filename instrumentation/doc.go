// Package instrumentation provides OpenTelemetry instrumentation for ghe-auth.
//
// The authenticator and the GitHub provider record spans and metrics through
// an *Instrumentation. When none is configured, a disabled instance backed by
// no-op providers is used, so instrumentation never has to be nil-checked.
//
// # Quick Start
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		ServiceName:    "registry-login",
//		ServiceVersion: "1.0.0",
//		Enabled:        true,
//		TracerProvider: otel.GetTracerProvider(),
//		MeterProvider:  otel.GetMeterProvider(),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer inst.Shutdown(context.Background())
//
//	auth, err := ghauth.New(&ghauth.Config{
//		GitHubHost:      "https://github.example.com",
//		Instrumentation: inst,
//	})
//
// # Available Metrics
//
// Authentication:
//   - ghe_auth.authentications.total{outcome} - Authentication attempts
//   - ghe_auth.authentication.duration{outcome} - Duration in milliseconds
//   - ghe_auth.profile.fallbacks.total{reason} - Default email substitutions
//
// Provider:
//   - ghe_auth.provider.api.calls.total{provider, operation, status} - Calls to the host
//   - ghe_auth.provider.api.duration{provider, operation} - Call duration in milliseconds
//   - ghe_auth.provider.api.errors.total{provider, operation, error_type} - Failed calls
//
// Security:
//   - ghe_auth.audit.events.total{event_type} - Audit events
//
// # Traces
//
// Spans are created for:
//   - authenticator.authenticate (root span of one authentication)
//   - github.issue_token
//   - github.resolve_profile
//   - github.health_check
//
// Span attributes never contain passwords or tokens; usernames are hashed.
package instrumentation
