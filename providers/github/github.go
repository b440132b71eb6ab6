package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gogithub "github.com/google/go-github/github"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/giantswarm/ghe-auth/instrumentation"
	"github.com/giantswarm/ghe-auth/internal/util"
	"github.com/giantswarm/ghe-auth/providers"
)

// Compile-time check that Provider implements the providers.Provider interface.
var _ providers.Provider = (*Provider)(nil)

// providerName is the name returned by Provider.Name().
const providerName = "github-enterprise"

// GitHub Enterprise API paths, relative to the configured host.
const (
	apiPrefix          = "/api/v3/"
	authorizationsPath = "/api/v3/authorizations"
	metaPath           = "/api/v3/meta"
)

const defaultRequestTimeout = 30 * time.Second

// ErrHostRequired is returned by NewProvider when no host is configured.
var ErrHostRequired = errors.New("github host is required")

// Provider talks to a GitHub Enterprise (or github.com compatible) host.
// It is safe for concurrent use.
type Provider struct {
	baseURL        *url.URL
	httpClient     *http.Client
	requestTimeout time.Duration
	logger         *slog.Logger
	tracer         trace.Tracer
	metrics        *instrumentation.Metrics
}

// Config holds GitHub Enterprise provider configuration.
type Config struct {
	// Host is the base URL of the host, e.g. "https://github.example.com:4444".
	// Scheme, hostname and port are preserved. A trailing "/api/v3" is accepted.
	Host string

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client

	// RequestTimeout is the timeout for each call to the host (default: 30s).
	// Applied only when the caller's context has no deadline.
	RequestTimeout time.Duration

	// Logger for structured logging (optional, uses slog.Default() if not provided)
	Logger *slog.Logger

	// Instrumentation records spans and metrics (optional, disabled if not provided)
	Instrumentation *instrumentation.Instrumentation
}

// NewProvider creates a new GitHub Enterprise provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil || cfg.Host == "" {
		return nil, ErrHostRequired
	}

	baseURL, err := ParseHost(cfg.Host)
	if err != nil {
		return nil, err
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = defaultRequestTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: requestTimeout,
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	inst := cfg.Instrumentation
	if inst == nil {
		inst, err = instrumentation.New(instrumentation.Config{Enabled: false})
		if err != nil {
			return nil, fmt.Errorf("failed to create instrumentation: %w", err)
		}
	}

	return &Provider{
		baseURL:        baseURL,
		httpClient:     httpClient,
		requestTimeout: requestTimeout,
		logger:         logger.With("provider", providerName, "host", baseURL.Host),
		tracer:         inst.Tracer("provider"),
		metrics:        inst.Metrics(),
	}, nil
}

// ParseHost parses and validates a configured host URL.
// The returned URL keeps the scheme, hostname, explicit port and any path
// prefix, with trailing slashes and a trailing "/api/v3" removed.
func ParseHost(raw string) (*url.URL, error) {
	u, err := url.Parse(util.NormalizeBaseURL(strings.TrimSpace(raw)))
	if err != nil {
		return nil, fmt.Errorf("invalid github host %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid github host %q: scheme must be http or https", raw)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("invalid github host %q: missing hostname", raw)
	}
	if port := u.Port(); port != "" {
		if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("invalid github host %q: bad port %q", raw, port)
		}
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// Host returns the host and port requests are sent to.
func (p *Provider) Host() string {
	return p.baseURL.Host
}

// BaseURL returns the normalized base URL of the host.
func (p *Provider) BaseURL() string {
	return p.baseURL.String()
}

// enterpriseClient returns a go-github client for the host's API that sends
// its requests through httpClient.
func (p *Provider) enterpriseClient(httpClient *http.Client) (*gogithub.Client, error) {
	apiURL := p.baseURL.String() + apiPrefix
	client, err := gogithub.NewEnterpriseClient(apiURL, apiURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	return client, nil
}

// ensureContextTimeout ensures the context has a deadline, adding one if needed.
// Returns a new context with timeout and a cancel function that should be deferred.
// If the context already has a deadline, returns the original context with a no-op cancel.
func (p *Provider) ensureContextTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.requestTimeout)
}

// IssueToken creates an authorization on the host with HTTP Basic credentials
// and returns its token. Exactly one request is sent; nothing is retried.
//
// Errors are *providers.Failure values:
//   - non-2xx answer: Code is the HTTP status
//   - 2xx answer without a usable token: Code 0, decode failure
//   - network error or deadline: Code 0, transport failure
func (p *Provider) IssueToken(ctx context.Context, username, password string, authReq providers.AuthorizationRequest) (string, error) {
	ctx, cancel := p.ensureContextTimeout(ctx)
	defer cancel()

	ctx, span := p.tracer.Start(ctx, "github.issue_token")
	defer span.End()
	instrumentation.AddProviderAttributes(span, providerName, "issue_token", p.baseURL.Host)

	start := time.Now()
	token, status, err := p.createAuthorization(ctx, username, password, authReq)
	p.metrics.RecordProviderAPICall(ctx, providerName, "issue_token", status, durationMs(start), err)
	instrumentation.AddHTTPAttributes(span, http.MethodPost, authorizationsPath, status)

	if err != nil {
		instrumentation.RecordError(span, err)
		p.logger.DebugContext(ctx, "Authorization request failed", "status", status, "error", err)
		return "", err
	}

	instrumentation.SetSpanSuccess(span)
	p.logger.DebugContext(ctx, "Authorization created", "status", status, "token", util.TokenPrefix(token))
	return token, nil
}

// createAuthorization performs the POST and returns the token and HTTP status
// (0 when no response was received).
func (p *Provider) createAuthorization(ctx context.Context, username, password string, authReq providers.AuthorizationRequest) (string, int, error) {
	tp := &gogithub.BasicAuthTransport{
		Username:  username,
		Password:  password,
		OTP:       authReq.OTP,
		Transport: p.httpClient.Transport,
	}
	httpClient := tp.Client()
	httpClient.Timeout = p.httpClient.Timeout

	client, err := p.enterpriseClient(httpClient)
	if err != nil {
		return "", 0, providers.ErrTransport(err)
	}

	auth, resp, err := client.Authorizations.Create(ctx, toGitHubAuthorization(authReq))
	status := responseStatus(resp)
	switch {
	case err != nil && status == 0:
		return "", 0, providers.ErrTransport(err)
	case status < 200 || status >= 300:
		failure := providers.ErrStatus(status)
		failure.Err = err
		var tfa *gogithub.TwoFactorAuthError
		if errors.As(err, &tfa) {
			failure.Message = providers.MessageOTPRequired
		}
		return "", status, failure
	case err != nil:
		return "", status, providers.ErrDecode(fmt.Errorf("failed to decode authorization: %w", err))
	case auth.GetToken() == "":
		return "", status, providers.ErrDecode(errors.New("authorization response has no token"))
	}

	return auth.GetToken(), status, nil
}

// toGitHubAuthorization converts the request into the go-github body.
// The OTP is not part of the body.
func toGitHubAuthorization(authReq providers.AuthorizationRequest) *gogithub.AuthorizationRequest {
	scopes := make([]gogithub.Scope, 0, len(authReq.Scopes))
	for _, scope := range authReq.Scopes {
		scopes = append(scopes, gogithub.Scope(scope))
	}
	return &gogithub.AuthorizationRequest{
		Scopes:  scopes,
		Note:    gogithub.String(authReq.Note),
		NoteURL: gogithub.String(authReq.NoteURL),
	}
}

// ResolveProfile fetches the profile of the account that owns token.
// When the profile hides the email, the primary address from /user/emails
// is used instead. A missing email is not an error.
func (p *Provider) ResolveProfile(ctx context.Context, token string) (*providers.UserInfo, error) {
	ctx, cancel := p.ensureContextTimeout(ctx)
	defer cancel()

	ctx, span := p.tracer.Start(ctx, "github.resolve_profile")
	defer span.End()
	instrumentation.AddProviderAttributes(span, providerName, "resolve_profile", p.baseURL.Host)

	client, err := p.apiClient(ctx, token)
	if err != nil {
		instrumentation.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	user, resp, err := client.Users.Get(ctx, "")
	p.metrics.RecordProviderAPICall(ctx, providerName, "get_user", responseStatus(resp), durationMs(start), err)
	if err != nil {
		instrumentation.RecordError(span, err)
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	userInfo := &providers.UserInfo{
		ID:            strconv.FormatInt(user.GetID(), 10),
		Login:         user.GetLogin(),
		Name:          user.GetName(),
		Email:         user.GetEmail(),
		EmailVerified: user.GetEmail() != "", // Assume verified if email is public
	}

	if userInfo.Email == "" {
		email, verified, emailErr := p.fetchPrimaryEmail(ctx, client)
		if emailErr != nil {
			p.logger.DebugContext(ctx, "Failed to list user emails", "error", emailErr)
		} else if email != "" {
			userInfo.Email = email
			userInfo.EmailVerified = verified
		}
	}

	instrumentation.SetSpanSuccess(span)
	return userInfo, nil
}

// apiClient returns a go-github client for the host that authenticates with token.
// The provider's HTTP client is the base transport.
func (p *Provider) apiClient(ctx context.Context, token string) (*gogithub.Client, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(p.GetProviderToken(token)))
	httpClient.Timeout = p.httpClient.Timeout

	return p.enterpriseClient(httpClient)
}

// fetchPrimaryEmail returns the primary email from /user/emails, preferring
// a verified primary, then any primary, then the first verified address.
func (p *Provider) fetchPrimaryEmail(ctx context.Context, client *gogithub.Client) (string, bool, error) {
	start := time.Now()
	emails, resp, err := client.Users.ListEmails(ctx, nil)
	p.metrics.RecordProviderAPICall(ctx, providerName, "list_emails", responseStatus(resp), durationMs(start), err)
	if err != nil {
		return "", false, fmt.Errorf("failed to list emails: %w", err)
	}

	for _, e := range emails {
		if e.GetPrimary() && e.GetVerified() {
			return e.GetEmail(), true, nil
		}
	}
	for _, e := range emails {
		if e.GetPrimary() {
			return e.GetEmail(), e.GetVerified(), nil
		}
	}
	for _, e := range emails {
		if e.GetVerified() {
			return e.GetEmail(), true, nil
		}
	}

	return "", false, nil
}

// HealthCheck verifies that the host's API is reachable by calling the
// unauthenticated meta endpoint.
//
// Security Considerations:
//   - This method is designed for server-side health monitoring
//   - DO NOT expose error details to untrusted clients
func (p *Provider) HealthCheck(ctx context.Context) error {
	ctx, cancel := p.ensureContextTimeout(ctx)
	defer cancel()

	ctx, span := p.tracer.Start(ctx, "github.health_check")
	defer span.End()
	instrumentation.AddProviderAttributes(span, providerName, "health_check", p.baseURL.Host)

	client, err := p.enterpriseClient(p.httpClient)
	if err != nil {
		return err
	}

	start := time.Now()
	_, resp, err := client.APIMeta(ctx)
	status := responseStatus(resp)
	p.metrics.RecordProviderAPICall(ctx, providerName, "health_check", status, durationMs(start), err)
	instrumentation.AddHTTPAttributes(span, http.MethodGet, metaPath, status)
	if err != nil {
		instrumentation.RecordError(span, err)
		if status == 0 {
			return fmt.Errorf("github host unreachable: %w", err)
		}
		return fmt.Errorf("github health check failed with status %d: %w", status, err)
	}

	instrumentation.SetSpanSuccess(span)
	return nil
}

// GetProviderToken wraps an issued token for use with oauth2-aware clients.
// GitHub Enterprise accepts the classic "token" authorization scheme on every
// supported version, so it is used instead of "Bearer".
func (p *Provider) GetProviderToken(token string) *oauth2.Token {
	return &oauth2.Token{
		AccessToken: token,
		TokenType:   "token",
	}
}

func responseStatus(resp *gogithub.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

func durationMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
