// Package util provides common utility functions used across ghe-auth.
//
// Key utilities:
//   - SafeTruncate / TokenPrefix: log at most a prefix of a token
//   - NormalizeBaseURL: canonical form of the configured host
package util
