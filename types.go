package ghauth

import "context"

// Credentials are the username and password a registry client logged in with.
type Credentials struct {
	// Name is the account name on the GitHub Enterprise host
	Name string `json:"name"`

	// Password is the account password. It is only ever sent to the host
	// as HTTP Basic credentials.
	Password string `json:"password"`

	// OTP is an optional two-factor code, for accounts that have
	// two-factor authentication enabled.
	OTP string `json:"otp,omitempty"`
}

// Request is an authentication request as received from the registry server.
// Body may be nil when the client sent no credentials at all.
type Request struct {
	Body *Credentials `json:"body"`
}

// User is the identity attached to an issued token
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthenticatedUser is the result of a successful authentication.
// It never carries the password.
type AuthenticatedUser struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Callback receives the outcome of Authenticate. Exactly one of err and user
// is non-nil. err is always an *AuthError.
type Callback func(err error, user *AuthenticatedUser)

// credentials returns the credentials from req, and false when the name or
// password is missing.
func (r *Request) credentials() (Credentials, bool) {
	if r == nil || r.Body == nil {
		return Credentials{}, false
	}
	if r.Body.Name == "" || r.Body.Password == "" {
		return Credentials{Name: r.Body.Name}, false
	}
	return *r.Body, true
}

// TokenAuthenticator is implemented by *Authenticator. Registry servers that
// only need the promise-style token call can depend on this instead.
type TokenAuthenticator interface {
	GetAuthorizationToken(ctx context.Context, username, password string) (string, error)
	GetAuthorizationTokenWithOTP(ctx context.Context, username, password, otp string) (string, error)
	AuthenticateUser(ctx context.Context, req *Request) (*AuthenticatedUser, error)
}

var _ TokenAuthenticator = (*Authenticator)(nil)
