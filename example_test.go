package ghauth_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	ghauth "github.com/giantswarm/ghe-auth"
)

func ExampleAuthenticator_Authenticate() {
	// A stand-in for the GitHub Enterprise host.
	ghe := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/authorizations":
			_, _ = io.WriteString(w, `{"token":"cc84252fd8061b232beb5e345f33b13d120c236c"}`)
		case "/api/v3/user":
			_, _ = io.WriteString(w, `{"login":"octocat","id":1,"email":"octocat@example.com"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ghe.Close()

	auth, err := ghauth.New(ghauth.Config{
		GitHubHost: ghe.URL,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	auth.Authenticate(context.Background(), &ghauth.Request{
		Body: &ghauth.Credentials{Name: "octocat", Password: "hunter2"},
	}, func(err error, user *ghauth.AuthenticatedUser) {
		if err != nil {
			fmt.Println("login failed:", err.(*ghauth.AuthError).Message)
			return
		}
		fmt.Println(user.Token)
		fmt.Println(user.User.Name, user.User.Email)
	})

	auth.Authenticate(context.Background(), &ghauth.Request{
		Body: &ghauth.Credentials{Name: "octocat"},
	}, func(err error, user *ghauth.AuthenticatedUser) {
		if err != nil {
			fmt.Println("login failed:", err.(*ghauth.AuthError).Message)
		}
	})

	// Output:
	// cc84252fd8061b232beb5e345f33b13d120c236c
	// octocat octocat@example.com
	// login failed: invalid credentials format
}
