// Package config loads hcdl settings from the environment.
//
// Variables use the HCDL_ prefix (HCDL_RELEASES_URL, HCDL_LOG_LEVEL, ...).
// NO_COLOR is read without prefix: when it is set to any value, including an
// empty one, colored output is disabled. Resolve also reads an optional YAML
// file (HCDL_CONFIG, or config.yaml in the user config dir) underneath the
// environment.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap/zapcore"
)

const (
	// EnvPrefix is prepended to every hcdl variable
	EnvPrefix = "HCDL_"
	// NoColorEnv disables colored output when present
	NoColorEnv = "NO_COLOR"
	// KeyringFilename is the keyring stored under the user config dir
	KeyringFilename = "hashicorp.asc"
	// MaxRetries bounds HCDL_RETRIES
	MaxRetries = 10
)

// Config holds settings that can come from the environment.
type Config struct {
	CheckpointURL string        `env:"CHECKPOINT_URL,default=https://checkpoint-api.hashicorp.com/v1/check/"`
	InstallDir    string        `env:"INSTALL_DIR"`
	KeyURL        string        `env:"KEY_URL,default=https://www.hashicorp.com/.well-known/pgp-key.txt"`
	Keyring       string        `env:"KEYRING"`
	Log           *Log          `env:",prefix=LOG_"`
	ReleasesURL   string        `env:"RELEASES_URL,default=https://releases.hashicorp.com/"`
	Retries       int           `env:"RETRIES,default=3"`
	Timeout       time.Duration `env:"TIMEOUT,default=5m"`

	// Color is false when NO_COLOR is present.
	Color bool
	// InstallDirSet is true when InstallDir was configured rather than
	// defaulted.
	InstallDirSet bool
}

// Log configures diagnostic logging.
type Log struct {
	Format string `env:"FORMAT,default=console"`
	Level  string `env:"LEVEL,default=warn"`
}

func (cfg *Config) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("releases_url", cfg.ReleasesURL)
	enc.AddString("checkpoint_url", cfg.CheckpointURL)
	enc.AddString("install_dir", cfg.InstallDir)
	enc.AddString("keyring", cfg.Keyring)
	enc.AddInt("retries", cfg.Retries)
	enc.AddDuration("timeout", cfg.Timeout)
	enc.AddBool("color", cfg.Color)
	return nil
}

// Load reads the configuration through l. Pass envconfig.OsLookuper() for
// the process environment.
func Load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &cfg, envconfig.PrefixLookuper(EnvPrefix, l)); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	_, noColor := l.Lookup(NoColorEnv)
	cfg.Color = !noColor

	if cfg.Retries < 0 {
		return nil, fmt.Errorf("load config: %sRETRIES must not be negative", EnvPrefix)
	}
	if cfg.Retries > MaxRetries {
		return nil, fmt.Errorf("load config: %sRETRIES must be at most %d", EnvPrefix, MaxRetries)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("load config: %sTIMEOUT must be positive", EnvPrefix)
	}

	cfg.InstallDirSet = cfg.InstallDir != ""
	if !cfg.InstallDirSet {
		cfg.InstallDir = DefaultInstallDir()
	}

	return &cfg, nil
}

// KeyringPath returns the keyring location and whether it was configured
// explicitly. The default lives in the user config directory.
func (cfg *Config) KeyringPath() (string, bool) {
	if cfg.Keyring != "" {
		return cfg.Keyring, true
	}

	return DefaultKeyringPath(), false
}

// DefaultInstallDir is ~/.local/bin, or empty when the home directory is
// unknown.
func DefaultInstallDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".local", "bin")
}

// DefaultKeyringPath is <user config dir>/hcdl/hashicorp.asc.
func DefaultKeyringPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "hcdl", KeyringFilename)
	}

	return filepath.Join(dir, "hcdl", KeyringFilename)
}
