package ghauth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/giantswarm/ghe-auth/instrumentation"
)

const (
	// DefaultEmail is reported when the host does not disclose an email.
	DefaultEmail = "npme@example.com"

	// DefaultRequestTimeout bounds each call to the host when the caller's
	// context has no deadline.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultProfileTimeout bounds the best-effort profile lookup.
	DefaultProfileTimeout = 10 * time.Second
)

// ErrGitHubHostRequired is returned by New when Config.GitHubHost is empty.
var ErrGitHubHostRequired = errors.New("github host is required")

// Config holds the authenticator configuration
type Config struct {
	// GitHubHost is the base URL of the GitHub Enterprise host
	// (e.g. "https://github.example.com:4444"). Required.
	// Scheme, hostname and port are preserved.
	GitHubHost string

	// Timestamp returns the value embedded in each authorization note.
	// The host rejects a second authorization with the same note, so the
	// value must change between calls.
	// Default: Unix time in milliseconds
	Timestamp func() int64

	// HTTPClient is a custom HTTP client for calls to the host
	// If not provided, a client with RequestTimeout is used
	HTTPClient *http.Client

	// RequestTimeout bounds each call to the host when the caller's context
	// has no deadline
	// Default: 30 seconds
	RequestTimeout time.Duration

	// ProfileTimeout bounds the profile lookup after a token was issued.
	// On expiry the default email is used and authentication still succeeds.
	// Default: 10 seconds
	ProfileTimeout time.Duration

	// DefaultEmail is reported when the profile has no email
	// Default: "npme@example.com"
	DefaultEmail string

	// Logger for structured logging (optional, uses slog.Default() if not provided)
	Logger *slog.Logger

	// Instrumentation records spans and metrics (optional, disabled if not provided)
	Instrumentation *instrumentation.Instrumentation

	// EnableAuditLogging enables security audit logging.
	// Usernames are hashed, passwords and tokens are never logged.
	EnableAuditLogging bool
}

// applyDefaults fills unset fields of a copy of config
func applyDefaults(config Config) Config {
	if config.Timestamp == nil {
		config.Timestamp = func() int64 { return time.Now().UnixMilli() }
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.ProfileTimeout == 0 {
		config.ProfileTimeout = DefaultProfileTimeout
	}
	if config.DefaultEmail == "" {
		config.DefaultEmail = DefaultEmail
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return config
}
