package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// DefaultConfigDir returns the cyrene configuration directory.
// CYRENE_CONFIG_DIR wins over $XDG_CONFIG_HOME/cyrene.
func DefaultConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Load reads the config file at path. A missing file is created from a
// commented template and an empty Config is returned. Environment
// overrides are bound so they take precedence over file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{Path: path, Cause: err}
		}
		if err := writeDefault(path); err != nil {
			return nil, &ConfigError{Path: path, Cause: err}
		}
	} else if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{Path: path, Cause: err}
	}

	return &Config{
		AppsDir:      v.GetString(keyAppsDir),
		PluginsDir:   v.GetString(keyPluginsDir),
		InstallDir:   v.GetString(keyInstallDir),
		CacheDir:     v.GetString(keyCacheDir),
		LockfilePath: v.GetString(keyLockfilePath),
	}, nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}
