package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Credentials and token used across tests.
const (
	TestUsername  = "bcoe-test"
	TestPassword  = "foobar"
	TestBasicAuth = "Basic YmNvZS10ZXN0OmZvb2Jhcg=="
	TestToken     = "cc84252fd8061b232beb5e345f33b13d120c236c"
	TestEmail     = "bcoe@example.com"
)

// API paths served by FakeGHE.
const (
	AuthorizationsPath = "/api/v3/authorizations"
	UserPath           = "/api/v3/user"
	EmailsPath         = "/api/v3/user/emails"
	MetaPath           = "/api/v3/meta"
)

// AuthorizationSuccessJSON is a successful authorization creation response.
const AuthorizationSuccessJSON = `{
  "id": 1,
  "url": "https://github.example.com/api/v3/authorizations/1",
  "app": {
    "name": "npm on premises solution (0)",
    "url": "https://www.npmjs.org",
    "client_id": "00000000000000000000"
  },
  "token": "cc84252fd8061b232beb5e345f33b13d120c236c",
  "note": "npm on premises solution (0)",
  "note_url": "https://www.npmjs.org",
  "created_at": "2014-06-03T18:54:46Z",
  "updated_at": "2014-06-03T18:54:46Z",
  "scopes": ["user", "public_repo", "repo", "repo:status", "gist"]
}`

// UserWithEmailJSON is a /user response with a public email.
const UserWithEmailJSON = `{"login":"bcoe-test","id":1,"name":"Benjamin Coe","email":"bcoe@example.com"}`

// UserWithoutEmailJSON is a /user response for an account with a private email.
const UserWithoutEmailJSON = `{"login":"bcoe-test","id":1,"name":"Benjamin Coe","email":null}`

// EmailsJSON is a /user/emails response with a verified primary address.
const EmailsJSON = `[
  {"email":"secondary@example.com","primary":false,"verified":true},
  {"email":"bcoe@example.com","primary":true,"verified":true}
]`

// RecordedRequest is a request received by FakeGHE.
type RecordedRequest struct {
	Method        string
	Path          string
	Host          string
	Authorization string
	ContentType   string
	OTP           string
	Body          []byte
}

type cannedResponse struct {
	status  int
	body    string
	headers map[string]string
}

// FakeGHE is an httptest-backed GitHub Enterprise double.
// Unconfigured paths answer 404.
type FakeGHE struct {
	Server *httptest.Server

	mu        sync.Mutex
	responses map[string]cannedResponse
	handlers  map[string]http.HandlerFunc
	requests  []RecordedRequest
}

// NewFakeGHE starts a fake host that issues AuthorizationSuccessJSON and has no
// user profile configured. The server is closed when the test finishes.
func NewFakeGHE(t testing.TB) *FakeGHE {
	t.Helper()
	f := &FakeGHE{
		responses: make(map[string]cannedResponse),
		handlers:  make(map[string]http.HandlerFunc),
	}
	f.SetResponse(AuthorizationsPath, http.StatusOK, AuthorizationSuccessJSON)
	f.Server = httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake host, including its port.
func (f *FakeGHE) URL() string {
	return f.Server.URL
}

// SetResponse configures a canned response for path.
func (f *FakeGHE) SetResponse(path string, status int, body string) {
	f.SetResponseWithHeaders(path, status, body, nil)
}

// SetResponseWithHeaders configures a canned response with extra headers.
func (f *FakeGHE) SetResponseWithHeaders(path string, status int, body string, headers map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = cannedResponse{status: status, body: body, headers: headers}
}

// SetHandler replaces the canned response for path with a handler.
func (f *FakeGHE) SetHandler(path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[path] = h
}

// Requests returns a copy of all requests received so far.
func (f *FakeGHE) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestCount returns how many requests were received for path.
// An empty path counts all requests.
func (f *FakeGHE) RequestCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if path == "" || r.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeGHE) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Host:          r.Host,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		OTP:           r.Header.Get("X-GitHub-OTP"),
		Body:          body,
	})
	handler, hasHandler := f.handlers[r.URL.Path]
	resp, hasResp := f.responses[r.URL.Path]
	f.mu.Unlock()

	if hasHandler {
		handler(w, r)
		return
	}
	if !hasResp {
		http.NotFound(w, r)
		return
	}

	for k, v := range resp.headers {
		w.Header().Set(k, v)
	}
	if resp.body != "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}
