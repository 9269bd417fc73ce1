package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileEnv overrides the config file location
	ConfigFileEnv = EnvPrefix + "CONFIG"
	// ConfigFilename is the config file stored under the user config dir
	ConfigFilename = "config.yaml"
)

// fileConfig is the raw YAML structure of the config file.
type fileConfig struct {
	CheckpointURL string  `yaml:"checkpoint_url"`
	InstallDir    string  `yaml:"install_dir"`
	KeyURL        string  `yaml:"key_url"`
	Keyring       string  `yaml:"keyring"`
	ReleasesURL   string  `yaml:"releases_url"`
	Retries       *int    `yaml:"retries"`
	Timeout       string  `yaml:"timeout"`
	Log           fileLog `yaml:"log"`
}

type fileLog struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// vars flattens the file into the variable names Load reads.
func (fc *fileConfig) vars() map[string]string {
	m := map[string]string{}
	set := func(key, value string) {
		if value != "" {
			m[EnvPrefix+key] = value
		}
	}

	set("CHECKPOINT_URL", fc.CheckpointURL)
	set("INSTALL_DIR", fc.InstallDir)
	set("KEY_URL", fc.KeyURL)
	set("KEYRING", fc.Keyring)
	set("RELEASES_URL", fc.ReleasesURL)
	set("TIMEOUT", fc.Timeout)
	set("LOG_FORMAT", fc.Log.Format)
	set("LOG_LEVEL", fc.Log.Level)
	if fc.Retries != nil {
		m[EnvPrefix+"RETRIES"] = strconv.Itoa(*fc.Retries)
	}

	return m
}

// LoadFile reads the YAML config file at path into a lookuper keyed by
// environment variable name. A missing file yields an empty lookuper.
func LoadFile(path string) (envconfig.Lookuper, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return envconfig.MapLookuper(map[string]string{}), nil
		}
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return envconfig.MapLookuper(fc.vars()), nil
}

// FilePath returns the config file location: HCDL_CONFIG when set, otherwise
// <user config dir>/hcdl/config.yaml.
func FilePath(l envconfig.Lookuper) string {
	if p, ok := l.Lookup(ConfigFileEnv); ok && p != "" {
		return p
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "hcdl", ConfigFilename)
}

// layered returns the first value found across its lookupers.
type layered []envconfig.Lookuper

func (l layered) Lookup(key string) (string, bool) {
	for _, lookuper := range l {
		if v, ok := lookuper.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// Resolve loads the config file named by env and then the environment on
// top of it. Environment variables win over file values.
func Resolve(ctx context.Context, env envconfig.Lookuper) (*Config, error) {
	var file envconfig.Lookuper = envconfig.MapLookuper(map[string]string{})

	if path := FilePath(env); path != "" {
		var err error
		file, err = LoadFile(path)
		if err != nil {
			return nil, err
		}
	}

	return Load(ctx, layered{env, file})
}
