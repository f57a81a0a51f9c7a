// Package testutil holds helpers shared by tests: .env loading and the
// guard that skips integration tests when no live server is configured.
package testutil

import (
	"testing"

	"github.com/golovatskygroup/mcp-ado/internal/config"
)

// RequireServerEnv loads .env and returns the server configuration, skipping
// the test when the required variables are absent. Integration tests against
// a live collection are opt-in.
func RequireServerEnv(t *testing.T) config.Config {
	t.Helper()
	_ = LoadDotEnv()
	cfg, err := config.FromEnv()
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	return cfg
}
