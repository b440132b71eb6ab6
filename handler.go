package ghauth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/giantswarm/ghe-auth/instrumentation"
	"github.com/giantswarm/ghe-auth/security"
)

// maxLoginBodyBytes caps the size of a login request body.
const maxLoginBodyBytes = 64 << 10

// otpHeader carries a two-factor code on HTTP Basic logins, as npm sends it.
const otpHeader = "npm-otp"

// Handler exposes an Authenticator over HTTP for registry servers that run
// it out of process.
//
//	POST /login   body {"name": "...", "password": "...", "otp": "..."}
//	              or HTTP Basic with an optional npm-otp header
//	GET  /healthz
type Handler struct {
	auth   *Authenticator
	logger *slog.Logger
	tracer trace.Tracer
}

// NewHandler creates a new HTTP handler for auth.
func NewHandler(auth *Authenticator, inst *instrumentation.Instrumentation, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		auth:   auth,
		logger: logger,
		tracer: noop.NewTracerProvider().Tracer("http"),
	}
	if inst != nil {
		h.tracer = inst.Tracer("http")
	}
	return h
}

// RegisterRoutes registers the handler's endpoints on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/login", h.ServeLogin)
	mux.HandleFunc("/healthz", h.ServeHealth)
}

// ServeLogin authenticates the credentials in the request.
// Responds 201 with the AuthenticatedUser, or an error body
// {"error": message, "code": host status} with status 400, 401 or 502.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, requestID := security.EnsureRequestID(r.Context())
	ctx, span := h.tracer.Start(ctx, "http.login")
	defer span.End()
	instrumentation.AddHTTPAttributes(span, r.Method, "/login", 0)

	req, err := h.parseLoginRequest(w, r)
	if err != nil {
		h.logger.DebugContext(ctx, "Failed to parse login request", "request_id", requestID, "error", err)
	}

	user, err := h.auth.AuthenticateUser(ctx, req)
	if err != nil {
		authErr, _ := AsAuthError(err)
		status := loginStatus(authErr)
		instrumentation.AddHTTPAttributes(span, r.Method, "/login", status)
		instrumentation.RecordError(span, err)
		h.writeError(w, authErr, status)
		return
	}

	instrumentation.AddHTTPAttributes(span, r.Method, "/login", http.StatusCreated)
	instrumentation.SetSpanSuccess(span)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(user)
}

// ServeHealth reports whether the GitHub Enterprise host is reachable.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.auth.HealthCheck(r.Context()); err != nil {
		// Details stay in the log, not in the response.
		h.logger.WarnContext(r.Context(), "Health check failed", "error", err)
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

// parseLoginRequest reads credentials from a JSON body, falling back to HTTP
// Basic. A request without usable credentials yields an empty Request, which
// the authenticator rejects as "invalid credentials format".
func (h *Handler) parseLoginRequest(w http.ResponseWriter, r *http.Request) (*Request, error) {
	if username, password, ok := r.BasicAuth(); ok {
		return &Request{Body: &Credentials{
			Name:     username,
			Password: password,
			OTP:      r.Header.Get(otpHeader),
		}}, nil
	}

	var creds Credentials
	body := http.MaxBytesReader(w, r.Body, maxLoginBodyBytes)
	if err := json.NewDecoder(body).Decode(&creds); err != nil {
		if errors.Is(err, io.EOF) {
			return &Request{}, nil
		}
		return &Request{}, err
	}
	return &Request{Body: &creds}, nil
}

// loginStatus maps an authentication error to the HTTP status of the response.
func loginStatus(authErr *AuthError) int {
	switch {
	case authErr == nil:
		return http.StatusInternalServerError
	case authErr.Kind == KindValidation:
		return http.StatusBadRequest
	case authErr.Message == MessageUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) writeError(w http.ResponseWriter, authErr *AuthError, status int) {
	message := MessageAuthFailed
	code := 0
	if authErr != nil {
		message = authErr.Message
		code = authErr.Code
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": message,
		"code":  code,
	})
}
