// Package config resolves environment-driven defaults for godebootstrap:
// where to look for keyrings and cached indexes, and how long to wait on
// network operations. Each Get* function follows the same shape: read the
// environment variable, validate it falls in a sane range, and fall back to
// a documented default with a warning on stderr otherwise.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// EnvConfigDir overrides the directory godebootstrap reads its own
	// configuration and cached indexes from (distinct from the target root
	// being bootstrapped).
	EnvConfigDir = "GODEBOOTSTRAP_CONFIGDIR"

	// EnvKeyringDir overrides the directory searched for suite keyrings
	// when -k/--keyring is not given explicitly.
	EnvKeyringDir = "GODEBOOTSTRAP_KEYRING_DIR"

	// EnvFetchTimeout configures the per-request timeout for the native
	// HTTP fetch backend.
	EnvFetchTimeout = "GODEBOOTSTRAP_FETCH_TIMEOUT"

	// EnvNativeHTTP switches the fetch backend from shelling out to wget
	// to using the in-process HTTP client in internal/fetch.
	EnvNativeHTTP = "GODEBOOTSTRAP_NATIVE_HTTP"

	// DefaultFetchTimeout is the default per-request timeout for index
	// and .deb downloads.
	DefaultFetchTimeout = 5 * time.Minute
)

// GetFetchTimeout returns the configured fetch timeout from
// GODEBOOTSTRAP_FETCH_TIMEOUT. If not set or invalid, returns
// DefaultFetchTimeout. Accepts duration strings like "30s", "5m".
func GetFetchTimeout() time.Duration {
	envValue := os.Getenv(EnvFetchTimeout)
	if envValue == "" {
		return DefaultFetchTimeout
	}

	duration, err := time.ParseDuration(envValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n",
			EnvFetchTimeout, envValue, DefaultFetchTimeout)
		return DefaultFetchTimeout
	}

	if duration < 5*time.Second {
		fmt.Fprintf(os.Stderr, "Warning: %s too low (%v), using minimum 5s\n",
			EnvFetchTimeout, duration)
		return 5 * time.Second
	}
	if duration > 30*time.Minute {
		fmt.Fprintf(os.Stderr, "Warning: %s too high (%v), using maximum 30m\n",
			EnvFetchTimeout, duration)
		return 30 * time.Minute
	}

	return duration
}

// GetNativeHTTP reports whether the native HTTP fetch backend is enabled.
// Reads GODEBOOTSTRAP_NATIVE_HTTP. Accepts "true", "1", "yes", "on" and
// "false", "0", "no", "off" (case-insensitive). Default is false (shell out to wget, matching the
// original tool's transport model).
func GetNativeHTTP() bool {
	envValue := os.Getenv(EnvNativeHTTP)
	if envValue == "" {
		return false
	}

	switch strings.ToLower(envValue) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default false\n",
			EnvNativeHTTP, envValue)
		return false
	}
}

// DefaultConfigDirOverride can be set by the binary's main package (via
// ldflags) to change the default config directory for dev builds.
// GODEBOOTSTRAP_CONFIGDIR still takes precedence.
var DefaultConfigDirOverride string

// Config holds godebootstrap's own working directories. TargetRoot (the
// filesystem being bootstrapped) is passed as a positional CLI argument and
// is not part of Config - these directories hold godebootstrap's own state,
// analogous to APT's /etc/apt and /var/lib/apt/lists but self-contained so
// multiple concurrent bootstraps never collide.
type Config struct {
	ConfigDir    string // $GODEBOOTSTRAP_CONFIGDIR, default /etc/godebootstrap
	KeyringDir   string // $GODEBOOTSTRAP_CONFIGDIR/keyrings, or $GODEBOOTSTRAP_KEYRING_DIR
	SuitesDir    string // $GODEBOOTSTRAP_CONFIGDIR/suites (suite config stanzas)
	ScriptsDir   string // $GODEBOOTSTRAP_CONFIGDIR/scripts (per-suite setup/generator hooks)
	IndexCache   string // $GODEBOOTSTRAP_CONFIGDIR/cache/index (fetched Release/Packages)
	DebCache     string // $GODEBOOTSTRAP_CONFIGDIR/cache/archives (fetched .deb files)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() (*Config, error) {
	configDir := os.Getenv(EnvConfigDir)
	if configDir == "" {
		if DefaultConfigDirOverride != "" {
			configDir = DefaultConfigDirOverride
		} else {
			configDir = "/etc/godebootstrap"
		}
	}

	keyringDir := os.Getenv(EnvKeyringDir)
	if keyringDir == "" {
		keyringDir = filepath.Join(configDir, "keyrings")
	}

	return &Config{
		ConfigDir:  configDir,
		KeyringDir: keyringDir,
		SuitesDir:  filepath.Join(configDir, "suites"),
		ScriptsDir: filepath.Join(configDir, "scripts"),
		IndexCache: filepath.Join(configDir, "cache", "index"),
		DebCache:   filepath.Join(configDir, "cache", "archives"),
	}, nil
}

// EnsureDirectories creates all directories godebootstrap writes to. It
// does not create KeyringDir, SuitesDir, or ScriptsDir, which are
// read-only inputs expected to already exist.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.ConfigDir,
		c.IndexCache,
		c.DebCache,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// KeyringPath returns the path to a suite's keyring file, used when the
// -k/--keyring flag is not given explicitly.
func (c *Config) KeyringPath(suite string) string {
	return filepath.Join(c.KeyringDir, suite+".gpg")
}

// SuiteConfigPath returns the path to a suite's configuration stanza file.
func (c *Config) SuiteConfigPath(suite string) string {
	return filepath.Join(c.SuitesDir, suite)
}

// DebCachePath returns the path a fetched .deb for the given package name
// and version is cached at.
func (c *Config) DebCachePath(name, version string) string {
	return filepath.Join(c.DebCache, fmt.Sprintf("%s_%s.deb", name, version))
}
