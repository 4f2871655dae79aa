// Package testsupport provides shared constructors and recording fakes for
// package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"btroute/internal/config"
)

// NewConfig returns a config rooted in a fresh temp directory with every
// profile group enabled.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(dir, "state")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.SocketPath = filepath.Join(dir, "state", "btroute.sock")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}
