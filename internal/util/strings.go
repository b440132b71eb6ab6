package util

import "strings"

// apiPathSuffix is the REST prefix of GitHub Enterprise hosts.
const apiPathSuffix = "/api/v3"

// SafeTruncate safely truncates a string to maxLen bytes without panicking.
// It is used when logging tokens, where only a prefix may be shown.
//
// If maxLen is negative, it's treated as 0 and returns an empty string.
//
// Example:
//
//	SafeTruncate("cc84252fd8061b232beb", 8) // Returns: "cc84252f"
//	SafeTruncate("short", 10)               // Returns: "short"
func SafeTruncate(s string, maxLen int) string {
	if maxLen < 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// TokenPrefix returns a loggable prefix of a token, never the whole value.
func TokenPrefix(token string) string {
	if token == "" {
		return ""
	}
	return SafeTruncate(token, 8) + "..."
}

// trimTrailingSlashes removes all trailing slashes from url.
func trimTrailingSlashes(url string) string {
	return strings.TrimRight(url, "/")
}

// NormalizeBaseURL normalizes a configured host URL to the form
// "<scheme>://<host>[:<port>][/<prefix>]" without trailing slashes or a
// trailing "/api/v3", so API paths can be appended uniformly.
func NormalizeBaseURL(url string) string {
	url = trimTrailingSlashes(url)
	url = strings.TrimSuffix(url, apiPathSuffix)
	return trimTrailingSlashes(url)
}
