package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// ErrInvalidName is returned when an app name or version cannot be used as
// a single path component.
var ErrInvalidName = errors.New("invalid name")

// executable is replaced in tests.
var executable = os.Executable

// Dirs holds every on-disk location cyrene reads or writes.
type Dirs struct {
	AppsDir          string
	PluginsDir       string
	ExeDir           string
	ConfigDir        string
	CacheDir         string
	LockfilePath     string
	VersionCachePath string
}

// ResolveDirs computes the directory layout. Values in cfg (which already
// carry environment overrides) win; anything left empty falls back to the
// XDG base directories, and the exe dir falls back to the directory of the
// running executable.
func ResolveDirs(cfg *Config, configDir string) (*Dirs, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	dataDir := filepath.Join(xdg.DataHome, AppName)

	d := &Dirs{
		AppsDir:    firstNonEmpty(cfg.AppsDir, filepath.Join(dataDir, "apps")),
		PluginsDir: firstNonEmpty(cfg.PluginsDir, filepath.Join(dataDir, "plugins")),
		ConfigDir:  configDir,
		CacheDir:   firstNonEmpty(cfg.CacheDir, filepath.Join(xdg.CacheHome, AppName)),
	}
	d.LockfilePath = firstNonEmpty(cfg.LockfilePath, filepath.Join(configDir, LockfileName))
	d.VersionCachePath = filepath.Join(d.CacheDir, VersionCacheName)

	if cfg.InstallDir != "" {
		d.ExeDir = cfg.InstallDir
	} else {
		exe, err := executable()
		if err != nil {
			return nil, fmt.Errorf("locate cyrene executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		d.ExeDir = filepath.Dir(exe)
	}

	for _, p := range []*string{&d.AppsDir, &d.PluginsDir, &d.ExeDir, &d.ConfigDir, &d.CacheDir, &d.LockfilePath, &d.VersionCachePath} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", *p, err)
		}
		*p = abs
	}

	return d, nil
}

// Init creates the directories cyrene writes into.
func (d *Dirs) Init() error {
	for _, dir := range []string{d.AppsDir, d.PluginsDir, d.ConfigDir, d.CacheDir, d.ExeDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// InstallationRoot is apps_dir/<app>.
func (d *Dirs) InstallationRoot(app string) string {
	return filepath.Join(d.AppsDir, app)
}

// InstallationPath is apps_dir/<app>/<version>.
func (d *Dirs) InstallationPath(app, version string) string {
	return filepath.Join(d.AppsDir, app, version)
}

// PluginPath is plugins_dir/<app>.lua.
func (d *Dirs) PluginPath(app string) string {
	return filepath.Join(d.PluginsDir, app+PluginExt)
}

// LinkPath is exe_dir/<binary>.
func (d *Dirs) LinkPath(binary string) string {
	return filepath.Join(d.ExeDir, binary)
}

// PluginNames lists the apps that have a plugin script.
func (d *Dirs) PluginNames() ([]string, error) {
	entries, err := os.ReadDir(d.PluginsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read plugins dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != PluginExt {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), PluginExt))
	}
	return names, nil
}

// ValidateName checks that s can be used as one path component
// (an app name, a version, or a binary name).
func ValidateName(kind, s string) error {
	switch {
	case s == "", s == ".", s == "..":
		return fmt.Errorf("%w: %s %q", ErrInvalidName, kind, s)
	case strings.ContainsAny(s, `/\`) || strings.ContainsRune(s, 0):
		return fmt.Errorf("%w: %s %q contains a path separator", ErrInvalidName, kind, s)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
