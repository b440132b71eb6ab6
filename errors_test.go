package ghauth

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/giantswarm/ghe-auth/providers"
)

func TestAuthenticationFailure(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantKind    providers.FailureKind
		wantCode    int
		wantMessage string
	}{
		{
			name:        "unauthorized",
			err:         providers.ErrStatus(http.StatusUnauthorized),
			wantKind:    KindAuth,
			wantCode:    http.StatusUnauthorized,
			wantMessage: "unauthorized",
		},
		{
			name: "two-factor required",
			err: &providers.Failure{
				Kind:    providers.KindAuth,
				Code:    http.StatusUnauthorized,
				Message: providers.MessageOTPRequired,
			},
			wantKind:    KindAuth,
			wantCode:    http.StatusUnauthorized,
			wantMessage: "unauthorized",
		},
		{
			name:        "server error",
			err:         providers.ErrStatus(http.StatusInternalServerError),
			wantKind:    KindAuth,
			wantCode:    http.StatusInternalServerError,
			wantMessage: "authentication failed",
		},
		{
			name:        "forbidden",
			err:         providers.ErrStatus(http.StatusForbidden),
			wantKind:    KindAuth,
			wantCode:    http.StatusForbidden,
			wantMessage: "authentication failed",
		},
		{
			name:        "transport",
			err:         providers.ErrTransport(errors.New("connection reset by peer")),
			wantKind:    KindTransport,
			wantCode:    0,
			wantMessage: "authentication failed",
		},
		{
			name:        "decode",
			err:         providers.ErrDecode(errors.New("unexpected EOF")),
			wantKind:    KindDecode,
			wantCode:    0,
			wantMessage: "authentication failed",
		},
		{
			name:        "wrapped failure",
			err:         fmt.Errorf("issue: %w", providers.ErrStatus(http.StatusUnauthorized)),
			wantKind:    KindAuth,
			wantCode:    http.StatusUnauthorized,
			wantMessage: "unauthorized",
		},
		{
			name:        "plain error",
			err:         errors.New("something else"),
			wantKind:    KindTransport,
			wantCode:    0,
			wantMessage: "authentication failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := authenticationFailure(tt.err)

			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
			if !errors.Is(got, got.Err) || got.Err == nil {
				t.Error("cause should be kept for errors.Is/As")
			}
		})
	}
}

func TestAsAuthError(t *testing.T) {
	if _, ok := AsAuthError(errors.New("plain")); ok {
		t.Error("AsAuthError() should not match a plain error")
	}

	wrapped := fmt.Errorf("context: %w", providers.ErrValidation())
	authErr, ok := AsAuthError(wrapped)
	if !ok {
		t.Fatal("AsAuthError() should unwrap")
	}
	if authErr.Message != MessageInvalidCredentials {
		t.Errorf("Message = %q, want %q", authErr.Message, MessageInvalidCredentials)
	}
}
