// Package mock provides a function-field implementation of providers.Provider
// for authenticator tests.
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/giantswarm/ghe-auth/providers"
)

var _ providers.Provider = (*MockProvider)(nil)

// Default values returned by NewMockProvider.
const (
	DefaultToken = "mock-token"
	DefaultEmail = "mock@example.com"
)

// MockProvider is a mock implementation of the Provider interface for testing
type MockProvider struct {
	// NameFunc is called when Name() is invoked
	NameFunc func() string

	// IssueTokenFunc is called when IssueToken() is invoked
	IssueTokenFunc func(ctx context.Context, username, password string, req providers.AuthorizationRequest) (string, error)

	// ResolveProfileFunc is called when ResolveProfile() is invoked
	ResolveProfileFunc func(ctx context.Context, token string) (*providers.UserInfo, error)

	// HealthCheckFunc is called when HealthCheck() is invoked
	HealthCheckFunc func(ctx context.Context) error

	// CallCounts tracks how many times each method was called
	CallCounts map[string]int

	// AuthorizationRequests holds every request body passed to IssueToken
	AuthorizationRequests []providers.AuthorizationRequest

	// mu protects CallCounts and AuthorizationRequests
	mu sync.RWMutex
}

// NewMockProvider creates a new mock provider with default implementations
func NewMockProvider() *MockProvider {
	return &MockProvider{
		CallCounts: make(map[string]int),
		NameFunc: func() string {
			return "mock"
		},
		IssueTokenFunc: func(ctx context.Context, username, password string, req providers.AuthorizationRequest) (string, error) {
			return DefaultToken, nil
		},
		ResolveProfileFunc: func(ctx context.Context, token string) (*providers.UserInfo, error) {
			return &providers.UserInfo{
				ID:            "1",
				Login:         "mock-user",
				Email:         DefaultEmail,
				EmailVerified: true,
				Name:          "Mock User",
			}, nil
		},
		HealthCheckFunc: func(ctx context.Context) error {
			return nil
		},
	}
}

// Name returns the provider name
func (m *MockProvider) Name() string {
	// Release the lock before calling fn; it may call back into the mock.
	m.mu.Lock()
	m.CallCounts["Name"]++
	fn := m.NameFunc
	m.mu.Unlock()

	if fn == nil {
		return "mock"
	}
	return fn()
}

// IssueToken records the authorization request and delegates to IssueTokenFunc
func (m *MockProvider) IssueToken(ctx context.Context, username, password string, req providers.AuthorizationRequest) (string, error) {
	m.mu.Lock()
	m.CallCounts["IssueToken"]++
	m.AuthorizationRequests = append(m.AuthorizationRequests, req)
	fn := m.IssueTokenFunc
	m.mu.Unlock()
	if fn == nil {
		return "", errors.New("IssueTokenFunc not configured")
	}
	return fn(ctx, username, password, req)
}

// ResolveProfile delegates to ResolveProfileFunc
func (m *MockProvider) ResolveProfile(ctx context.Context, token string) (*providers.UserInfo, error) {
	m.mu.Lock()
	m.CallCounts["ResolveProfile"]++
	fn := m.ResolveProfileFunc
	m.mu.Unlock()
	if fn == nil {
		return nil, errors.New("ResolveProfileFunc not configured")
	}
	return fn(ctx, token)
}

// HealthCheck delegates to HealthCheckFunc
func (m *MockProvider) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.CallCounts["HealthCheck"]++
	fn := m.HealthCheckFunc
	m.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// LastAuthorizationRequest returns the most recent request passed to IssueToken.
func (m *MockProvider) LastAuthorizationRequest() (providers.AuthorizationRequest, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.AuthorizationRequests) == 0 {
		return providers.AuthorizationRequest{}, false
	}
	return m.AuthorizationRequests[len(m.AuthorizationRequests)-1], true
}

// ResetCallCounts resets all call counters
func (m *MockProvider) ResetCallCounts() {
	m.mu.Lock()
	m.CallCounts = make(map[string]int)
	m.AuthorizationRequests = nil
	m.mu.Unlock()
}

// GetCallCount returns the number of times a method was called
func (m *MockProvider) GetCallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.CallCounts[method]
}
