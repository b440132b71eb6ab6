// Package github implements the provider interfaces for GitHub Enterprise
// hosts (and github.com-compatible APIs).
//
// Token issuance uses the OAuth Authorizations API with HTTP Basic
// credentials:
//
//	POST <host>/api/v3/authorizations
//	Authorization: Basic base64(username:password)
//
//	{"scopes": [...], "note": "npm on premises solution (<ts>)", "note_url": "https://www.npmjs.org"}
//
// The host answers 201 (or 200) with a JSON body whose "token" field is the
// issued token. Any other status becomes a *providers.Failure carrying that
// status; a 401 with an "X-GitHub-OTP: required" header is reported as a
// two-factor failure.
//
// # Host Parsing
//
// The configured host keeps its scheme, hostname and explicit port:
// "https://github.example.com:4444" sends requests to port 4444. A trailing
// "/api/v3" and trailing slashes are stripped so both forms are accepted.
//
// # Profile Lookup
//
// ResolveProfile calls /api/v3/user with the issued token through go-github.
// When the account hides its email, /api/v3/user/emails is consulted for the
// primary address. The authenticator treats every ResolveProfile error as
// advisory.
//
// # Timeouts
//
// Each call runs under the caller's context deadline, or RequestTimeout
// (default 30s) when the context has none. No call is retried.
//
// # Example Usage
//
//	provider, err := github.NewProvider(&github.Config{
//	    Host:           "https://github.example.com",
//	    RequestTimeout: 10 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, err := provider.IssueToken(ctx, "octocat", password,
//	    providers.NewAuthorizationRequest(time.Now().UnixMilli()))
package github
