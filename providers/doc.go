// Package providers defines the host adapter interfaces and the types shared
// between the authenticator and its providers.
//
// A provider implements two operations:
//   - TokenIssuer: exchange a username and password for an API token
//   - ProfileResolver: look up the profile that owns a token
//
// Implementations are provided in subpackages:
//   - providers/github: GitHub Enterprise (and github.com compatible) hosts
//   - providers/mock: Mock provider for testing
//
// All failures produced while issuing a token are *Failure values. The Code
// field carries the HTTP status returned by the host, or 0 when the request
// never produced a usable response (validation, transport and decode
// failures).
//
// Example usage:
//
//	provider, err := github.NewProvider(&github.Config{
//	    Host: "https://github.example.com",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, err := provider.IssueToken(ctx, "octocat", "secret",
//	    providers.NewAuthorizationRequest(time.Now().UnixMilli()))
package providers
