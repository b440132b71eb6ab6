// Package providers defines the interfaces a GitHub-Enterprise-compatible host
// adapter implements, plus the request and user types shared between the
// authenticator and its providers.
package providers

import (
	"context"
	"fmt"
)

// NoteURL is sent with every authorization request so administrators can see
// which application created the token.
const NoteURL = "https://www.npmjs.org"

// notePrefix is the human-readable part of the authorization note.
const notePrefix = "npm on premises solution"

// authorizationScopes are requested for every token, in this order.
var authorizationScopes = []string{"user", "public_repo", "repo", "repo:status", "gist"}

// AuthorizationRequest is the body of an authorization creation call.
// It is built per call and never persisted.
type AuthorizationRequest struct {
	Scopes  []string `json:"scopes"`
	Note    string   `json:"note"`
	NoteURL string   `json:"note_url"`

	// OTP is a two-factor code for accounts that require one. It is sent as
	// the X-GitHub-OTP header, never in the body.
	OTP string `json:"-"`
}

// NewAuthorizationRequest builds the authorization body for the given timestamp.
// The timestamp keeps the note unique so the host does not reject a second
// authorization for the same user as a duplicate.
func NewAuthorizationRequest(timestamp int64) AuthorizationRequest {
	return AuthorizationRequest{
		Scopes:  AuthorizationScopes(),
		Note:    fmt.Sprintf("%s (%d)", notePrefix, timestamp),
		NoteURL: NoteURL,
	}
}

// AuthorizationScopes returns a copy of the scopes requested for every token.
func AuthorizationScopes() []string {
	scopes := make([]string, len(authorizationScopes))
	copy(scopes, authorizationScopes)
	return scopes
}

// TokenIssuer exchanges a username and password for an API token.
type TokenIssuer interface {
	// IssueToken creates an authorization on the host using HTTP Basic
	// credentials and returns the token from the response.
	// Errors are *Failure values carrying the HTTP status (or 0).
	IssueToken(ctx context.Context, username, password string, req AuthorizationRequest) (string, error)
}

// ProfileResolver looks up the profile of the account owning a token.
type ProfileResolver interface {
	ResolveProfile(ctx context.Context, token string) (*UserInfo, error)
}

// Provider is a complete host adapter.
type Provider interface {
	TokenIssuer
	ProfileResolver

	// Name returns the provider name (e.g., "github-enterprise")
	Name() string

	// HealthCheck verifies that the host is reachable.
	// Returns nil if the host is healthy, or an error describing the issue.
	HealthCheck(ctx context.Context) error
}

// UserInfo represents user information from a provider
type UserInfo struct {
	// ID is the unique user identifier from the provider
	ID string

	// Login is the account name on the host
	Login string

	// Email is the user's email address, empty when the host did not disclose one
	Email string

	// EmailVerified indicates if the email is verified
	EmailVerified bool

	// Name is the user's full name
	Name string
}
