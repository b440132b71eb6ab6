package security

import (
	"context"
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// requestIDContextKey is the context key for storing request IDs
type requestIDContextKey struct{}

// GenerateRequestID returns a new ULID for correlating the log lines, audit
// entries and spans of one authentication. Each call reads fresh entropy from
// crypto/rand; no generator state is shared between callers.
func GenerateRequestID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDContextKey{}).(string); ok {
		return requestID
	}
	return ""
}

// EnsureRequestID returns ctx unchanged when it already carries a request ID
// (e.g. one set by the registry server), otherwise a copy with a new one.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := GetRequestID(ctx); id != "" {
		return ctx, id
	}
	id := GenerateRequestID()
	return WithRequestID(ctx, id), id
}
