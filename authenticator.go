package ghauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/giantswarm/ghe-auth/instrumentation"
	"github.com/giantswarm/ghe-auth/providers"
	"github.com/giantswarm/ghe-auth/providers/github"
	"github.com/giantswarm/ghe-auth/security"
)

// Reasons recorded when the default email is used.
const (
	fallbackLookupFailed = "lookup_failed"
	fallbackNoEmail      = "no_email"
	fallbackPanic        = "panic"
)

// Authenticator exchanges registry credentials for GitHub Enterprise tokens.
// It holds no per-request state and is safe for concurrent use.
type Authenticator struct {
	provider providers.Provider
	config   Config
	host     string
	logger   *slog.Logger
	auditor  *security.Auditor
	tracer   trace.Tracer
	metrics  *instrumentation.Metrics
}

// New creates an Authenticator backed by the GitHub Enterprise provider
// for config.GitHubHost.
func New(config Config) (*Authenticator, error) {
	if config.GitHubHost == "" {
		return nil, ErrGitHubHostRequired
	}
	config = applyDefaults(config)

	provider, err := github.NewProvider(&github.Config{
		Host:            config.GitHubHost,
		HTTPClient:      config.HTTPClient,
		RequestTimeout:  config.RequestTimeout,
		Logger:          config.Logger,
		Instrumentation: config.Instrumentation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create github provider: %w", err)
	}

	a, err := NewWithProvider(provider, config)
	if err != nil {
		return nil, err
	}
	a.host = provider.Host()
	return a, nil
}

// NewWithProvider creates an Authenticator that uses provider for token
// issuance and profile lookup. config.GitHubHost is only used for logging.
func NewWithProvider(provider providers.Provider, config Config) (*Authenticator, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	config = applyDefaults(config)

	inst := config.Instrumentation
	if inst == nil {
		var err error
		inst, err = instrumentation.New(instrumentation.Config{Enabled: false})
		if err != nil {
			return nil, fmt.Errorf("failed to create instrumentation: %w", err)
		}
	}

	auditor := security.NewAuditor(config.Logger, config.EnableAuditLogging)
	auditor.SetInstrumentation(inst)

	return &Authenticator{
		provider: provider,
		config:   config,
		host:     config.GitHubHost,
		logger:   config.Logger,
		auditor:  auditor,
		tracer:   inst.Tracer("authenticator"),
		metrics:  inst.Metrics(),
	}, nil
}

// Provider returns the provider used by the authenticator.
func (a *Authenticator) Provider() providers.Provider {
	return a.provider
}

// GetAuthorizationToken creates an authorization on the host for username
// and returns its token. The note carries the configured timestamp.
//
// The error is an *AuthError whose Code is the HTTP status returned by the
// host, or 0 when no usable response was received.
func (a *Authenticator) GetAuthorizationToken(ctx context.Context, username, password string) (string, error) {
	return a.GetAuthorizationTokenWithOTP(ctx, username, password, "")
}

// GetAuthorizationTokenWithOTP is GetAuthorizationToken for accounts with
// two-factor authentication. An empty otp sends no code.
func (a *Authenticator) GetAuthorizationTokenWithOTP(ctx context.Context, username, password, otp string) (string, error) {
	ctx, _ = security.EnsureRequestID(ctx)
	return a.provider.IssueToken(ctx, username, password, a.authorizationRequest(otp))
}

// authorizationRequest builds the authorization body with a fresh timestamp.
func (a *Authenticator) authorizationRequest(otp string) providers.AuthorizationRequest {
	req := providers.NewAuthorizationRequest(a.config.Timestamp())
	req.OTP = otp
	return req
}

// Authenticate runs the authentication workflow and reports the outcome to cb:
// cb(nil, user) on success, cb(err, nil) on failure with err an *AuthError
// whose Message is "invalid credentials format", "unauthorized" or
// "authentication failed". cb is called exactly once, on the calling goroutine.
func (a *Authenticator) Authenticate(ctx context.Context, req *Request, cb Callback) {
	user, err := a.AuthenticateUser(ctx, req)
	if err != nil {
		cb(err, nil)
		return
	}
	cb(nil, user)
}

// AuthenticateUser runs the authentication workflow:
//  1. credentials are validated, without any network call
//  2. a token is issued by the host
//  3. the profile email is looked up; any failure there falls back to the
//     default email and never fails the authentication
func (a *Authenticator) AuthenticateUser(ctx context.Context, req *Request) (*AuthenticatedUser, error) {
	start := time.Now()
	ctx, requestID := security.EnsureRequestID(ctx)

	ctx, span := a.tracer.Start(ctx, "ghauth.authenticate")
	defer span.End()

	creds, ok := req.credentials()
	name := creds.Name
	instrumentation.AddAuthenticationAttributes(span, security.HashForLogging(name), requestID)
	logger := a.logger.With("request_id", requestID)

	if !ok {
		failure := providers.ErrValidation()
		a.auditor.LogCredentialsInvalid(ctx, name, a.host)
		a.recordFailure(ctx, span, instrumentation.OutcomeValidationFailure, failure, start)
		logger.DebugContext(ctx, "Rejected malformed credentials")
		return nil, failure
	}

	token, err := a.provider.IssueToken(ctx, name, creds.Password, a.authorizationRequest(creds.OTP))
	if err != nil {
		failure := authenticationFailure(err)
		if cause, ok := providers.AsFailure(err); ok && cause.Message == providers.MessageOTPRequired {
			a.auditor.LogOTPRequired(ctx, name, a.host)
		} else {
			a.auditor.LogAuthFailure(ctx, name, a.host, failure.Code, err.Error())
		}
		a.recordFailure(ctx, span, instrumentation.OutcomeAuthFailure, failure, start)
		logger.InfoContext(ctx, "Authentication failed",
			"user_hash", security.HashForLogging(name),
			"code", failure.Code,
			"error", err)
		return nil, failure
	}

	email, fallback := a.resolveEmail(ctx, logger, token)
	if fallback != "" {
		a.metrics.RecordProfileFallback(ctx, fallback)
		a.auditor.LogProfileFallback(ctx, name, a.host, fallback)
	}

	a.auditor.LogAuthSuccess(ctx, name, a.host, fallback != "")
	instrumentation.SetSpanAttributes(span,
		attribute.String(instrumentation.AttrOutcome, instrumentation.OutcomeSuccess),
		attribute.Bool(instrumentation.AttrEmailDefault, fallback != ""),
	)
	instrumentation.SetSpanSuccess(span)
	a.metrics.RecordAuthentication(ctx, instrumentation.OutcomeSuccess, durationMs(start))
	logger.InfoContext(ctx, "Authentication succeeded",
		"user_hash", security.HashForLogging(name),
		"email_defaulted", fallback != "")

	return &AuthenticatedUser{
		Token: token,
		User: User{
			Name:  name,
			Email: email,
		},
	}, nil
}

// resolveEmail looks up the email for token. It returns the default email
// and a non-empty fallback reason when the lookup fails, times out, panics or
// yields no email. Nothing raised here escapes this step.
func (a *Authenticator) resolveEmail(ctx context.Context, logger *slog.Logger, token string) (email, fallback string) {
	ctx, cancel := context.WithTimeout(ctx, a.config.ProfileTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.WarnContext(ctx, "Profile lookup panicked", "panic", r)
			email, fallback = a.config.DefaultEmail, fallbackPanic
		}
	}()

	info, err := a.provider.ResolveProfile(ctx, token)
	switch {
	case err != nil:
		level := slog.LevelDebug
		if errors.Is(err, context.DeadlineExceeded) {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "Profile lookup failed, using default email", "error", err)
		return a.config.DefaultEmail, fallbackLookupFailed
	case info == nil || info.Email == "":
		logger.DebugContext(ctx, "Profile has no email, using default email")
		return a.config.DefaultEmail, fallbackNoEmail
	default:
		return info.Email, ""
	}
}

func (a *Authenticator) recordFailure(ctx context.Context, span trace.Span, outcome string, failure *AuthError, start time.Time) {
	instrumentation.SetSpanAttributes(span, attribute.String(instrumentation.AttrOutcome, outcome))
	instrumentation.AddFailureAttributes(span, string(failure.Kind), failure.Code)
	instrumentation.SetSpanError(span, failure.Message)
	a.metrics.RecordAuthentication(ctx, outcome, durationMs(start))
}

// HealthCheck reports whether the host is reachable.
func (a *Authenticator) HealthCheck(ctx context.Context) error {
	return a.provider.HealthCheck(ctx)
}

func durationMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
