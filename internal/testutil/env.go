// Package testutil provides helpers for testing cyrene in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/damillora/cyrene/internal/config"
)

// SetupTestEnv points every cyrene directory at a fresh temp directory and
// returns the resolved layout. The CYRENE_* variables are set too, so code
// that loads the config itself sees the same layout.
//
// Cleanup is handled by t.TempDir and t.Setenv.
func SetupTestEnv(t *testing.T) *config.Dirs {
	t.Helper()

	tmpDir := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(tmpDir); err == nil {
		tmpDir = resolved
	}

	cfg := &config.Config{
		AppsDir:    filepath.Join(tmpDir, "data", "apps"),
		PluginsDir: filepath.Join(tmpDir, "data", "plugins"),
		InstallDir: filepath.Join(tmpDir, "bin"),
		CacheDir:   filepath.Join(tmpDir, "cache"),
	}
	configDir := filepath.Join(tmpDir, "config")

	t.Setenv(config.EnvConfigDir, configDir)
	t.Setenv(config.EnvAppsDir, cfg.AppsDir)
	t.Setenv(config.EnvPluginsDir, cfg.PluginsDir)
	t.Setenv(config.EnvInstallDir, cfg.InstallDir)
	t.Setenv(config.EnvCacheDir, cfg.CacheDir)
	// Plugins must never see a real token in tests.
	t.Setenv("GITHUB_TOKEN", "")

	dirs, err := config.ResolveDirs(cfg, configDir)
	if err != nil {
		t.Fatalf("resolve test dirs: %v", err)
	}
	if err := dirs.Init(); err != nil {
		t.Fatalf("create test dirs: %v", err)
	}
	return dirs
}

// WritePlugin writes a plugin script for app and returns its path.
func WritePlugin(t *testing.T, dirs *config.Dirs, app, source string) string {
	t.Helper()

	path := dirs.PluginPath(app)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write plugin %s: %v", app, err)
	}
	return path
}

// FakeInstall creates the install directory of app@version holding the given
// files (relative path to content). Files are made executable.
func FakeInstall(t *testing.T, dirs *config.Dirs, app, version string, files map[string]string) string {
	t.Helper()

	dir := dirs.InstallationPath(app, version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create install dir: %v", err)
	}
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("create %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, []byte(content), 0o755); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return dir
}
