package main

import (
	"os"
	"path/filepath"
	"testing"
)

// getBinaryPath returns the path to the skillmatch binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "skillmatch"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/%s ./cmd/skillmatch'", binaryPath, binaryName)
	}

	return binaryPath
}

// scrubbedEnv returns a minimal environment without DATABASE_URL so
// tests hit the required-flag paths regardless of the host setup.
func scrubbedEnv() []string {
	return []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + os.Getenv("HOME"),
	}
}
