package ghauth

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	config := applyDefaults(Config{GitHubHost: "https://github.example.com"})

	if config.DefaultEmail != "npme@example.com" {
		t.Errorf("DefaultEmail = %q, want %q", config.DefaultEmail, "npme@example.com")
	}
	if config.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want %v", config.RequestTimeout, 30*time.Second)
	}
	if config.ProfileTimeout != 10*time.Second {
		t.Errorf("ProfileTimeout = %v, want %v", config.ProfileTimeout, 10*time.Second)
	}
	if config.Logger == nil {
		t.Error("Logger should default to slog.Default()")
	}
	if config.Timestamp == nil {
		t.Fatal("Timestamp should have a default")
	}
	if config.HTTPClient != nil {
		t.Error("HTTPClient should stay nil so the provider builds its own")
	}
	if config.EnableAuditLogging {
		t.Error("EnableAuditLogging should be off by default")
	}

	before := time.Now().UnixMilli()
	got := config.Timestamp()
	after := time.Now().UnixMilli()
	if got < before || got > after {
		t.Errorf("Timestamp() = %d, want Unix milliseconds in [%d, %d]", got, before, after)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := &http.Client{}
	config := applyDefaults(Config{
		GitHubHost:     "https://github.example.com",
		Timestamp:      func() int64 { return 42 },
		HTTPClient:     client,
		RequestTimeout: time.Second,
		ProfileTimeout: 2 * time.Second,
		DefaultEmail:   "nobody@example.com",
		Logger:         logger,
	})

	if got := config.Timestamp(); got != 42 {
		t.Errorf("Timestamp() = %d, want 42", got)
	}
	if config.HTTPClient != client {
		t.Error("HTTPClient was replaced")
	}
	if config.RequestTimeout != time.Second {
		t.Errorf("RequestTimeout = %v, want 1s", config.RequestTimeout)
	}
	if config.ProfileTimeout != 2*time.Second {
		t.Errorf("ProfileTimeout = %v, want 2s", config.ProfileTimeout)
	}
	if config.DefaultEmail != "nobody@example.com" {
		t.Errorf("DefaultEmail = %q, want %q", config.DefaultEmail, "nobody@example.com")
	}
	if config.Logger != logger {
		t.Error("Logger was replaced")
	}
}

func TestApplyDefaults_DoesNotMutateInput(t *testing.T) {
	in := Config{GitHubHost: "https://github.example.com"}
	_ = applyDefaults(in)

	if in.DefaultEmail != "" || in.Timestamp != nil || in.Logger != nil {
		t.Error("applyDefaults modified the caller's config")
	}
}
