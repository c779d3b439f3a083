package config

import "fmt"

// Config is the user configuration file. Empty fields fall back to
// environment overrides and then to OS-standard directories.
type Config struct {
	AppsDir      string `mapstructure:"apps_dir"`
	PluginsDir   string `mapstructure:"plugins_dir"`
	InstallDir   string `mapstructure:"install_dir"`
	CacheDir     string `mapstructure:"cache_dir"`
	LockfilePath string `mapstructure:"lockfile_path"`
}

// ConfigError reports a configuration file that cannot be read or parsed.
type ConfigError struct {
	Path  string
	Cause error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Cause)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
