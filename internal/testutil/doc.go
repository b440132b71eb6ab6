// Package testutil provides testing utilities and fixtures for ghe-auth,
// most importantly FakeGHE, an httptest server that imitates the GitHub
// Enterprise endpoints used by the authenticator and records every request
// it receives.
package testutil
