package testutil

import (
	"os"
	"testing"
)

// MustSetTestEnvironment pins GO_ENV to test for the rest of the process so
// that config.Load never picks up a development or production .env file.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}
	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("GO_ENV is %q after setting it to test", env)
	}
}
