package testutil

import (
	"os"
	"testing"

	"github.com/godebootstrap/godebootstrap/internal/config"
)

// TempDir creates a temporary directory and returns a cleanup function
func TempDir(t *testing.T) (string, func()) {
	t.Helper()
	dir, err := os.MkdirTemp("", "godebootstrap-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	return dir, func() { os.RemoveAll(dir) }
}

// NewTestConfig creates a config rooted at a temporary directory for testing.
func NewTestConfig(t *testing.T) (*config.Config, func()) {
	t.Helper()
	tmpDir, cleanup := TempDir(t)

	cfg := &config.Config{
		ConfigDir:  tmpDir,
		KeyringDir: tmpDir + "/keyrings",
		SuitesDir:  tmpDir + "/suites",
		ScriptsDir: tmpDir + "/scripts",
		IndexCache: tmpDir + "/cache/index",
		DebCache:   tmpDir + "/cache/archives",
	}

	if err := cfg.EnsureDirectories(); err != nil {
		cleanup()
		t.Fatalf("failed to create config directories: %v", err)
	}
	for _, dir := range []string{cfg.KeyringDir, cfg.SuitesDir, cfg.ScriptsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			cleanup()
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	return cfg, cleanup
}

// NewTestTargetRoot creates an empty temporary directory to use as a
// bootstrap target root.
func NewTestTargetRoot(t *testing.T) (string, func()) {
	t.Helper()
	return TempDir(t)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// AssertFileExists checks if a file exists at the given path
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if !FileExists(path) {
		t.Errorf("file does not exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does NOT exist at the given path
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if FileExists(path) {
		t.Errorf("file should not exist: %s", path)
	}
}
