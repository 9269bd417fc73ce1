// Package testutil provides utilities for testing hcdl in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// hcdlEnv lists the variables the configuration layer reads.
var hcdlEnv = []string{
	"HCDL_CHECKPOINT_URL",
	"HCDL_CONFIG",
	"HCDL_INSTALL_DIR",
	"HCDL_KEY_URL",
	"HCDL_KEYRING",
	"HCDL_LOG_FORMAT",
	"HCDL_LOG_LEVEL",
	"HCDL_RELEASES_URL",
	"HCDL_RETRIES",
	"HCDL_TIMEOUT",
	"NO_COLOR",
}

// Env holds the isolated directories created by SetupTestEnv.
type Env struct {
	Home      string
	ConfigDir string
	BinDir    string
}

// SetupTestEnv points HOME and the user config directory at a temp location
// and clears every HCDL_ variable so tests never read or write the user's
// real keyring or install directory.
//
// The cleanup function is automatically handled by t.TempDir() and
// t.Setenv(), so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	tmpDir := t.TempDir()

	env := &Env{
		Home:      filepath.Join(tmpDir, "home"),
		ConfigDir: filepath.Join(tmpDir, "config"),
		BinDir:    filepath.Join(tmpDir, "home", ".local", "bin"),
	}

	t.Setenv("HOME", env.Home)
	t.Setenv("XDG_CONFIG_HOME", env.ConfigDir)

	for _, key := range hcdlEnv {
		// Setenv registers the restore, Unsetenv makes the variable absent.
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}

	for _, dir := range []string{env.Home, env.ConfigDir, env.BinDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}
