// Package config loads the ghe-auth command line configuration from
// ~/.ghe-auth/config.yaml and GHE_AUTH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvHost           = "GHE_AUTH_HOST"
	EnvDefaultEmail   = "GHE_AUTH_DEFAULT_EMAIL"
	EnvRequestTimeout = "GHE_AUTH_REQUEST_TIMEOUT"
	EnvProfileTimeout = "GHE_AUTH_PROFILE_TIMEOUT"
)

// Config holds ghe-auth settings.
type Config struct {
	// Host is the GitHub Enterprise base URL.
	Host string `yaml:"host"`

	// DefaultEmail replaces a missing profile email. Empty uses the library default.
	DefaultEmail string `yaml:"default_email"`

	// RequestTimeout bounds each call to the host.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ProfileTimeout bounds the profile lookup.
	ProfileTimeout time.Duration `yaml:"profile_timeout"`

	// Audit enables security audit log entries.
	Audit bool `yaml:"audit"`

	Log LogConfig `yaml:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Format is "text" or "json".
	Format string `yaml:"format"`

	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		RequestTimeout: 30 * time.Second,
		ProfileTimeout: 10 * time.Second,
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// Dir returns the path to ~/.ghe-auth.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".ghe-auth")
	}
	return filepath.Join(homeDir, ".ghe-auth")
}

// DefaultPath returns the path to ~/.ghe-auth/config.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the configuration file at path and applies environment overrides.
// An empty path reads DefaultPath, which may be absent. An explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file, defaults and environment only
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if host := os.Getenv(EnvHost); host != "" {
		c.Host = host
	}
	if email := os.Getenv(EnvDefaultEmail); email != "" {
		c.DefaultEmail = email
	}
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvRequestTimeout, v, err)
		}
		c.RequestTimeout = d
	}
	if v := os.Getenv(EnvProfileTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvProfileTimeout, v, err)
		}
		c.ProfileTimeout = d
	}
	return nil
}

// Validate checks that the configuration can be used to authenticate.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("github host is required (set %s, --host or host in %s)", EnvHost, DefaultPath())
	}
	if c.RequestTimeout < 0 || c.ProfileTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
