package ghauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/giantswarm/ghe-auth/internal/testutil"
	"github.com/giantswarm/ghe-auth/providers"
	"github.com/giantswarm/ghe-auth/providers/mock"
)

func newTestHandler(t *testing.T, provider *mock.MockProvider) *Handler {
	t.Helper()
	auth, err := NewWithProvider(provider, Config{Timestamp: zeroTimestamp})
	if err != nil {
		t.Fatalf("NewWithProvider() error = %v", err)
	}
	return NewHandler(auth, nil, nil)
}

func TestHandler_ServeLogin(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		basicAuth  bool
		issueErr   error
		wantStatus int
		wantError  string
		wantCode   int
	}{
		{
			name:       "json credentials",
			method:     http.MethodPost,
			body:       `{"name":"bcoe-test","password":"foobar"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "basic credentials",
			method:     http.MethodPost,
			basicAuth:  true,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing password",
			method:     http.MethodPost,
			body:       `{"name":"bcoe-test"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  MessageInvalidCredentials,
		},
		{
			name:       "empty body",
			method:     http.MethodPost,
			wantStatus: http.StatusBadRequest,
			wantError:  MessageInvalidCredentials,
		},
		{
			name:       "malformed json",
			method:     http.MethodPost,
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantError:  MessageInvalidCredentials,
		},
		{
			name:       "bad password",
			method:     http.MethodPost,
			body:       `{"name":"bcoe-test","password":"nope"}`,
			issueErr:   providers.ErrStatus(http.StatusUnauthorized),
			wantStatus: http.StatusUnauthorized,
			wantError:  MessageUnauthorized,
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "host error",
			method:     http.MethodPost,
			body:       `{"name":"bcoe-test","password":"foobar"}`,
			issueErr:   providers.ErrStatus(http.StatusInternalServerError),
			wantStatus: http.StatusBadGateway,
			wantError:  MessageAuthFailed,
			wantCode:   http.StatusInternalServerError,
		},
		{
			name:       "wrong method",
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := mock.NewMockProvider()
			if tt.issueErr != nil {
				provider.IssueTokenFunc = func(ctx context.Context, username, password string, req providers.AuthorizationRequest) (string, error) {
					return "", tt.issueErr
				}
			}
			h := newTestHandler(t, provider)

			req := httptest.NewRequest(tt.method, "/login", strings.NewReader(tt.body))
			if tt.basicAuth {
				req.SetBasicAuth(testutil.TestUsername, testutil.TestPassword)
			}
			rec := httptest.NewRecorder()

			h.ServeLogin(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			switch {
			case tt.wantStatus == http.StatusCreated:
				var user AuthenticatedUser
				if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if user.Token != mock.DefaultToken {
					t.Errorf("token = %q, want %q", user.Token, mock.DefaultToken)
				}
				if user.User.Name != testutil.TestUsername {
					t.Errorf("user.name = %q, want %q", user.User.Name, testutil.TestUsername)
				}
				if strings.Contains(rec.Body.String(), testutil.TestPassword) {
					t.Error("response leaks the password")
				}
			case tt.wantError != "":
				var resp struct {
					Error string `json:"error"`
					Code  int    `json:"code"`
				}
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode error response: %v", err)
				}
				if resp.Error != tt.wantError {
					t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
				}
				if resp.Code != tt.wantCode {
					t.Errorf("code = %d, want %d", resp.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestHandler_ServeLogin_NoIssueOnInvalidInput(t *testing.T) {
	provider := mock.NewMockProvider()
	h := newTestHandler(t, provider)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"password":"foobar"}`))
	h.ServeLogin(httptest.NewRecorder(), req)

	if got := provider.GetCallCount("IssueToken"); got != 0 {
		t.Errorf("IssueToken called %d times, want 0", got)
	}
}

func TestHandler_ServeLogin_OversizedBody(t *testing.T) {
	provider := mock.NewMockProvider()
	h := newTestHandler(t, provider)

	body := `{"name":"bcoe-test","password":"` + strings.Repeat("x", maxLoginBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := provider.GetCallCount("IssueToken"); got != 0 {
		t.Errorf("IssueToken called %d times, want 0", got)
	}
}

func TestHandler_ServeLogin_PassesOTP(t *testing.T) {
	tests := []struct {
		name  string
		build func() *http.Request
	}{
		{
			name: "json body",
			build: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/login",
					strings.NewReader(`{"name":"bcoe-test","password":"foobar","otp":"123456"}`))
			},
		},
		{
			name: "basic with header",
			build: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/login", nil)
				req.SetBasicAuth(testutil.TestUsername, testutil.TestPassword)
				req.Header.Set("npm-otp", "123456")
				return req
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := mock.NewMockProvider()
			h := newTestHandler(t, provider)

			rec := httptest.NewRecorder()
			h.ServeLogin(rec, tt.build())
			if rec.Code != http.StatusCreated {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
			}

			authReq, ok := provider.LastAuthorizationRequest()
			if !ok {
				t.Fatal("IssueToken was not called")
			}
			if authReq.OTP != "123456" {
				t.Errorf("OTP = %q, want %q", authReq.OTP, "123456")
			}
		})
	}
}

func TestHandler_ServeHealth(t *testing.T) {
	provider := mock.NewMockProvider()
	h := newTestHandler(t, provider)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d, want %d", rec.Code, http.StatusOK)
	}

	provider.HealthCheckFunc = func(ctx context.Context) error {
		return errors.New("github host unreachable: dial tcp 10.0.0.1:443")
	}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.1") {
		t.Error("health response leaks error details")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestLoginStatus(t *testing.T) {
	if got := loginStatus(nil); got != http.StatusInternalServerError {
		t.Errorf("loginStatus(nil) = %d", got)
	}
	if got := loginStatus(providers.ErrValidation()); got != http.StatusBadRequest {
		t.Errorf("validation = %d, want 400", got)
	}
	if got := loginStatus(authenticationFailure(providers.ErrStatus(401))); got != http.StatusUnauthorized {
		t.Errorf("unauthorized = %d, want 401", got)
	}
	if got := loginStatus(authenticationFailure(providers.ErrStatus(503))); got != http.StatusBadGateway {
		t.Errorf("server error = %d, want 502", got)
	}
}
