// Package ghauth authenticates package-registry users against a GitHub
// Enterprise host.
//
// A login is exchanged for a long-lived API token by creating an
// authorization with HTTP Basic credentials (POST /api/v3/authorizations).
// The token is then used for a best-effort lookup of the user's email.
//
// Basic usage:
//
//	auth, err := ghauth.New(ghauth.Config{
//		GitHubHost: "https://github.example.com",
//		Logger:     slog.Default(),
//	})
//	if err != nil {
//		return err
//	}
//
//	auth.Authenticate(ctx, &ghauth.Request{
//		Body: &ghauth.Credentials{Name: "octocat", Password: password},
//	}, func(err error, user *ghauth.AuthenticatedUser) {
//		if err != nil {
//			// err is an *ghauth.AuthError; err.(*ghauth.AuthError).Message is
//			// "invalid credentials format", "unauthorized" or "authentication failed"
//			return
//		}
//		fmt.Println(user.Token, user.User.Email)
//	})
//
// Errors:
//
// Every error returned by this package is an *AuthError. Code carries the
// HTTP status of the host's answer, or 0 when the credentials were rejected
// locally or no usable answer was received.
//
// Profile lookup:
//
// After a token is issued the profile is fetched from /api/v3/user, falling
// back to the primary address from /api/v3/user/emails. When neither yields
// an email, or the lookup fails or exceeds Config.ProfileTimeout, the
// configured default email ("npme@example.com") is reported instead. A failed
// lookup never turns a successful authentication into a failure.
package ghauth
